package definitions

import "fmt"

// VarbitDefinition maps a varbit onto a bit range of a player variable.
type VarbitDefinition struct {
	ID                  uint32
	VarpID              uint16
	LeastSignificantBit uint8
	MostSignificantBit  uint8
}

// Mask returns the varbit's bit mask before shifting by
// LeastSignificantBit.
func (v VarbitDefinition) Mask() uint32 {
	width := uint(v.MostSignificantBit) - uint(v.LeastSignificantBit) + 1
	if width >= 32 {
		return 0xFFFFFFFF
	}
	return 1<<width - 1
}

// Value extracts the varbit from the value of its varp.
func (v VarbitDefinition) Value(varp uint32) uint32 {
	return varp >> v.LeastSignificantBit & v.Mask()
}

// DecodeVarbit decodes a varbit definition opcode stream.
func DecodeVarbit(id uint32, buf []byte) (VarbitDefinition, error) {
	def := VarbitDefinition{ID: id}
	r := &opcodeReader{buf: buf}
	for {
		op, err := r.u8()
		if err != nil {
			return def, fmt.Errorf("varbit %d: %w", id, err)
		}
		switch op {
		case 0:
			return def, nil
		case 1:
			if def.VarpID, err = r.u16(); err != nil {
				return def, fmt.Errorf("varbit %d varp: %w", id, err)
			}
			if def.LeastSignificantBit, err = r.u8(); err != nil {
				return def, fmt.Errorf("varbit %d lsb: %w", id, err)
			}
			if def.MostSignificantBit, err = r.u8(); err != nil {
				return def, fmt.Errorf("varbit %d msb: %w", id, err)
			}
		default:
			return def, UnknownOpcodeError{Definition: "varbit", ID: id, Opcode: op}
		}
	}
}
