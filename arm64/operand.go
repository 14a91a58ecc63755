package arm64

import "github.com/tetratelabs/a64emit/internal/asm"

// Shift describes the shifted-register form of the last operand. The zero value is no shift.
type Shift struct {
	Type   ShiftType
	Amount uint8
}

// NoShift leaves the register operand unchanged.
var NoShift = Shift{}

// LSL shifts the register operand left by amount.
func LSL(amount uint8) Shift { return Shift{Type: SHIFT_LSL, Amount: amount} }

// LSR shifts the register operand right by amount, filling with zeros.
func LSR(amount uint8) Shift { return Shift{Type: SHIFT_LSR, Amount: amount} }

// ASR shifts the register operand right by amount, replicating the sign bit.
func ASR(amount uint8) Shift { return Shift{Type: SHIFT_ASR, Amount: amount} }

// ROR rotates the register operand right by amount. Only logical instructions accept it.
func ROR(amount uint8) Shift { return Shift{Type: SHIFT_ROR, Amount: amount} }

// Extend describes the extended-register form of the last operand of ADD and SUB.
type Extend struct {
	Type ExtendType
	// Amount is a left shift applied after extension, 0 to 4.
	Amount uint8
}

// sizeBits validates the data width and returns it.
func sizeBits(op string, s Size) Size {
	if s != Size32 && s != Size64 {
		asm.Panicf(asm.ErrRange, op, "invalid size %d", uint8(s))
	}
	return s
}

// registerBits validates r and returns its encoding.
func registerBits(op string, r Register) uint32 {
	if r > REGZERO {
		asm.Panicf(asm.ErrRange, op, "invalid register %d", uint8(r))
	}
	return uint32(r)
}

// shiftBits validates the shift against the data width. ROR exists for logical instructions only.
func shiftBits(op string, s Shift, size Size, allowROR bool) (ShiftType, uint32) {
	if s.Type > SHIFT_ROR || (s.Type == SHIFT_ROR && !allowROR) {
		asm.Panicf(asm.ErrRange, op, "unsupported shift type %d", s.Type)
	}
	if uint(s.Amount) >= size.Bits() {
		asm.Panicf(asm.ErrRange, op, "shift amount %d must be less than %d", s.Amount, size.Bits())
	}
	return s.Type, uint32(s.Amount)
}

// extendBits validates the extend descriptor.
func extendBits(op string, e Extend) (ExtendType, uint32) {
	if e.Type > EXTEND_SXTX {
		asm.Panicf(asm.ErrRange, op, "unsupported extend type %d", e.Type)
	}
	if e.Amount > 4 {
		asm.Panicf(asm.ErrRange, op, "extend shift amount %d must be at most 4", e.Amount)
	}
	return e.Type, uint32(e.Amount)
}

// splitImm12 returns the imm12 field and the "shift by 12" flag that reproduce v.
func splitImm12(op string, v uint32) (imm12, shift12 uint32) {
	switch {
	case v <= 0xfff:
		return v, 0
	case v&0xfff == 0 && v <= 0xfff000:
		return v >> 12, 1
	default:
		asm.Panicf(asm.ErrRange, op, "immediate %#x is not a 12-bit value, optionally shifted by 12", v)
		return
	}
}
