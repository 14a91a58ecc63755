package arm64

import (
	"fmt"

	"github.com/tetratelabs/a64emit/internal/asm"
)

// MoveWideOp is the opc field of move wide (immediate) instructions.
type MoveWideOp uint8

const (
	MOVN MoveWideOp = 0b00
	MOVZ MoveWideOp = 0b10
	MOVK MoveWideOp = 0b11
)

// String implements fmt.Stringer.
func (op MoveWideOp) String() string {
	switch op {
	case MOVN:
		return "movn"
	case MOVZ:
		return "movz"
	case MOVK:
		return "movk"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(op))
	}
}

// MoveWide is one instruction of a constant materialization sequence. Shift is 0, 16, 32 or 48.
type MoveWide struct {
	Op    MoveWideOp
	Imm16 uint16
	Shift uint32
}

// SplitMoveWide decomposes v into a MOVZ or MOVN followed by as few MOVKs as possible. The base
// is MOVN when more halfwords are 0xffff than 0x0000, since MOVN fills the untouched
// halfwords with ones.
//
// For Size32, v must fit in 32 bits.
func SplitMoveWide(v uint64, size Size) []MoveWide {
	size = sizeBits("mov", size)
	halfwords := 4
	if size == Size32 {
		if v>>32 != 0 {
			asm.Panicf(asm.ErrRange, "mov", "%#x does not fit in 32 bits", v)
		}
		halfwords = 2
	}

	var zeros, ones int
	for i := 0; i < halfwords; i++ {
		switch uint16(v >> (16 * i)) {
		case 0:
			zeros++
		case 0xffff:
			ones++
		}
	}

	base, fill := MOVZ, uint16(0)
	if ones > zeros {
		base, fill = MOVN, 0xffff
	}

	var seq []MoveWide
	for i := 0; i < halfwords; i++ {
		hw := uint16(v >> (16 * i))
		if hw == fill {
			continue
		}
		if len(seq) == 0 {
			imm := hw
			if base == MOVN {
				imm = ^hw
			}
			seq = append(seq, MoveWide{Op: base, Imm16: imm, Shift: uint32(16 * i)})
		} else {
			seq = append(seq, MoveWide{Op: MOVK, Imm16: hw, Shift: uint32(16 * i)})
		}
	}
	if len(seq) == 0 {
		// Every halfword equals the fill: zero, or all ones.
		seq = append(seq, MoveWide{Op: base})
	}
	return seq
}
