package definitions

import "fmt"

// InventoryDefinition describes a container of items such as the player's
// backpack (id 93).
type InventoryDefinition struct {
	ID       uint32
	Capacity *uint16
	Stock    []InventoryStock
}

// InventoryStock is an item a shop-like inventory starts with.
type InventoryStock struct {
	ItemID uint16
	Amount uint16
}

// DecodeInventory decodes an inventory definition opcode stream.
func DecodeInventory(id uint32, buf []byte) (InventoryDefinition, error) {
	def := InventoryDefinition{ID: id}
	r := &opcodeReader{buf: buf}
	for {
		op, err := r.u8()
		if err != nil {
			return def, fmt.Errorf("inventory %d: %w", id, err)
		}
		switch op {
		case 0:
			return def, nil
		case 2:
			capacity, err := r.u16()
			if err != nil {
				return def, fmt.Errorf("inventory %d capacity: %w", id, err)
			}
			def.Capacity = &capacity
		case 4:
			n, err := r.u8()
			if err != nil {
				return def, fmt.Errorf("inventory %d stock: %w", id, err)
			}
			def.Stock = make([]InventoryStock, n)
			for i := range def.Stock {
				item, err := r.u16()
				if err != nil {
					return def, fmt.Errorf("inventory %d stock %d: %w", id, i, err)
				}
				amount, err := r.u16()
				if err != nil {
					return def, fmt.Errorf("inventory %d stock %d: %w", id, i, err)
				}
				def.Stock[i] = InventoryStock{ItemID: item, Amount: amount}
			}
		default:
			return def, UnknownOpcodeError{Definition: "inventory", ID: id, Opcode: op}
		}
	}
}
