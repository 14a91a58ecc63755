package arm64

import "fmt"

// Register is an AArch64 general purpose register number.
//
// Register 31 is the zero register or the stack pointer depending on the operand it is used
// in, so REGZERO and REGSP share the same number.
//
// Note: naming convension is the same as Go assembler: https://go.dev/doc/asm
type Register uint8

// Arm64-specific registers.
// https://developer.arm.com/documentation/dui0801/a/Overview-of-AArch64-state/Predeclared-core-register-names-in-AArch64-state
const (
	REG_R0 Register = iota
	REG_R1
	REG_R2
	REG_R3
	REG_R4
	REG_R5
	REG_R6
	REG_R7
	REG_R8
	REG_R9
	REG_R10
	REG_R11
	REG_R12
	REG_R13
	REG_R14
	REG_R15
	REG_R16
	REG_R17
	REG_R18
	REG_R19
	REG_R20
	REG_R21
	REG_R22
	REG_R23
	REG_R24
	REG_R25
	REG_R26
	REG_R27
	REG_R28
	REG_R29
	REG_R30
	REGZERO
)

const (
	// REGSP is the stack pointer, valid where the encoding reads register 31 as SP.
	REGSP = REGZERO
	// REGLINK is the link register written by BL and BLR.
	REGLINK = REG_R30
)

// String implements fmt.Stringer.
func (r Register) String() string {
	switch {
	case r == REGZERO:
		return "zr"
	case r < REGZERO:
		return fmt.Sprintf("r%d", r)
	default:
		return fmt.Sprintf("invalid(%d)", uint8(r))
	}
}

// Size is the data width an instruction operates on.
type Size uint8

const (
	// Size32 selects the W view of registers.
	Size32 Size = iota
	// Size64 selects the X view of registers.
	Size64
)

// Bits returns the width in bits.
func (s Size) Bits() uint {
	if s == Size64 {
		return 64
	}
	return 32
}

// sf is the "sixty-four" bit most integer encodings carry in bit 31.
func (s Size) sf() uint32 {
	if s == Size64 {
		return 1
	}
	return 0
}

// String implements fmt.Stringer.
func (s Size) String() string {
	if s == Size64 {
		return "64"
	}
	return "32"
}

// Condition is the 4-bit condition field of conditional instructions.
// https://community.arm.com/arm-community-blogs/b/architectures-and-processors-blog/posts/condition-codes-1-condition-flags-and-codes
type Condition uint8

// Arm64-specific condition codes, in encoding order.
const (
	COND_EQ Condition = iota
	COND_NE
	COND_HS
	COND_LO
	COND_MI
	COND_PL
	COND_VS
	COND_VC
	COND_HI
	COND_LS
	COND_GE
	COND_LT
	COND_GT
	COND_LE
	COND_AL
	COND_NV
)

var conditionNames = [...]string{
	COND_EQ: "eq", COND_NE: "ne", COND_HS: "hs", COND_LO: "lo",
	COND_MI: "mi", COND_PL: "pl", COND_VS: "vs", COND_VC: "vc",
	COND_HI: "hi", COND_LS: "ls", COND_GE: "ge", COND_LT: "lt",
	COND_GT: "gt", COND_LE: "le", COND_AL: "al", COND_NV: "nv",
}

// String implements fmt.Stringer.
func (c Condition) String() string {
	if int(c) < len(conditionNames) {
		return conditionNames[c]
	}
	return fmt.Sprintf("invalid(%d)", uint8(c))
}

// Invert returns the opposite condition. AL and NV have no opposite and are returned as is.
func (c Condition) Invert() Condition {
	if c >= COND_AL {
		return c
	}
	return c ^ 1
}

// ShiftType is the shift applied to the last register operand of data processing instructions.
type ShiftType uint8

const (
	SHIFT_LSL ShiftType = iota
	SHIFT_LSR
	SHIFT_ASR
	SHIFT_ROR
)

// ExtendType is the extension applied to the last register operand of extended-register
// arithmetic.
type ExtendType uint8

const (
	EXTEND_UXTB ExtendType = iota
	EXTEND_UXTH
	EXTEND_UXTW
	EXTEND_UXTX
	EXTEND_SXTB
	EXTEND_SXTH
	EXTEND_SXTW
	EXTEND_SXTX
)

// PrefetchOp is the 5-bit prfop operand of PRFM: type, target cache level and policy.
type PrefetchOp uint8

const (
	PLDL1KEEP PrefetchOp = 0b00000
	PLDL1STRM PrefetchOp = 0b00001
	PLDL2KEEP PrefetchOp = 0b00010
	PLDL2STRM PrefetchOp = 0b00011
	PLDL3KEEP PrefetchOp = 0b00100
	PLDL3STRM PrefetchOp = 0b00101
	PLIL1KEEP PrefetchOp = 0b01000
	PLIL1STRM PrefetchOp = 0b01001
	PSTL1KEEP PrefetchOp = 0b10000
	PSTL1STRM PrefetchOp = 0b10001
)

// nopWord is the NOP instruction, also used as the placeholder of reserved slots.
const nopWord uint32 = 0xd503201f
