package definitions

import (
	"encoding/binary"
	"fmt"
	"io"
)

// UnknownOpcodeError is returned when a definition stream contains an opcode
// the decoder does not know.
type UnknownOpcodeError struct {
	Definition string
	ID         uint32
	Opcode     uint8
}

func (e UnknownOpcodeError) Error() string {
	return fmt.Sprintf("%s %d: unknown opcode %d", e.Definition, e.ID, e.Opcode)
}

// opcodeReader reads the big-endian fields of an opcode stream.
type opcodeReader struct {
	buf []byte
	pos int
}

func (r *opcodeReader) u8() (uint8, error) {
	if r.pos+1 > len(r.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *opcodeReader) u16() (uint16, error) {
	if r.pos+2 > len(r.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}
