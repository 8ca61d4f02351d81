// internal/decode/decode.go
package decode

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSpec marks a register description that can never produce a valid request.
var ErrInvalidSpec = errors.New("decode: invalid register spec")

// Width is the bit width of one measurement value.
type Width int

const (
	Width16 Width = 16
	Width32 Width = 32
)

// Registers returns how many 16-bit registers hold one value of this width.
// Unknown widths return 0.
func (w Width) Registers() uint16 {
	switch w {
	case Width16:
		return 1
	case Width32:
		return 2
	default:
		return 0
	}
}

func (w Width) Valid() bool {
	return w.Registers() != 0
}

func (w Width) String() string {
	switch w {
	case Width16:
		return "int16"
	case Width32:
		return "int32"
	default:
		return fmt.Sprintf("width(%d)", int(w))
	}
}

// ParseWidth accepts the spellings used in configuration files.
func ParseWidth(s string) (Width, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "16", "int16", "16bit":
		return Width16, nil
	case "32", "int32", "32bit":
		return Width32, nil
	default:
		return 0, fmt.Errorf("%w: unknown width %q", ErrInvalidSpec, s)
	}
}

// RegisterSpec describes how to read and interpret one measurement.
// Byte order is big-endian; 32-bit values are stored low word first.
type RegisterSpec struct {
	Address uint16
	Width   Width
	Scaling float64
}

// Count is the number of registers to request.
func (s RegisterSpec) Count() uint16 {
	return s.Width.Registers()
}

// Validate reports specs that would make the read request itself invalid.
func (s RegisterSpec) Validate() error {
	if !s.Width.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidSpec, s.Width)
	}
	if !(s.Scaling > 0) {
		return fmt.Errorf("%w: scaling must be > 0, got %v", ErrInvalidSpec, s.Scaling)
	}
	if int(s.Address)+int(s.Count()) > 0x10000 {
		return fmt.Errorf("%w: address %d + count %d exceeds register space", ErrInvalidSpec, s.Address, s.Count())
	}
	return nil
}

// Decode converts raw register words into a signed, scaled value.
//
// 16-bit: the single word is a big-endian int16.
// 32-bit: words[0] is the low half, words[1] the high half (little-endian word order).
//
// A word count that does not match the width is a wiring bug and panics.
func Decode(words []uint16, w Width, scaling float64) float64 {
	if want := int(w.Registers()); want == 0 || len(words) != want {
		panic(fmt.Sprintf("decode: %s needs %d registers, got %d", w, w.Registers(), len(words)))
	}

	switch w {
	case Width16:
		return float64(int16(words[0])) / scaling
	default:
		raw := uint32(words[1])<<16 | uint32(words[0])
		return float64(int32(raw)) / scaling
	}
}

// Encode32 splits v into two registers in the same word order Decode expects.
func Encode32(v int32) []uint16 {
	u := uint32(v)
	return []uint16{uint16(u), uint16(u >> 16)}
}
