package arm64

// aluOp selects one data processing instruction of the add/subtract and logical groups.
type aluOp uint8

const (
	aluOpAdd aluOp = iota
	aluOpAddS
	aluOpSub
	aluOpSubS
	aluOpAnd
	aluOpAndS
	aluOpOrr
	aluOpEor
	// Logical (shifted register) only: the second operand is inverted.
	aluOpBic
	aluOpBicS
	aluOpOrn
	aluOpEon
)

var aluOpNames = [...]string{
	aluOpAdd: "add", aluOpAddS: "adds", aluOpSub: "sub", aluOpSubS: "subs",
	aluOpAnd: "and", aluOpAndS: "ands", aluOpOrr: "orr", aluOpEor: "eor",
	aluOpBic: "bic", aluOpBicS: "bics", aluOpOrn: "orn", aluOpEon: "eon",
}

// String implements fmt.Stringer.
func (op aluOp) String() string {
	return aluOpNames[op]
}

func (op aluOp) isAddSub() bool {
	return op <= aluOpSubS
}

// addSubBits returns the op and S bits (30 and 29) of the add/subtract groups.
func (op aluOp) addSubBits() uint32 {
	switch op {
	case aluOpAdd:
		return 0b00
	case aluOpAddS:
		return 0b01
	case aluOpSub:
		return 0b10
	case aluOpSubS:
		return 0b11
	default:
		panic("BUG: " + op.String() + " is not add/subtract")
	}
}

// logicalBits returns the opc field (bits 29 and 30) and the N bit of the logical groups.
func (op aluOp) logicalBits() (opc, n uint32) {
	switch op {
	case aluOpAnd:
		return 0b00, 0
	case aluOpOrr:
		return 0b01, 0
	case aluOpEor:
		return 0b10, 0
	case aluOpAndS:
		return 0b11, 0
	case aluOpBic:
		return 0b00, 1
	case aluOpOrn:
		return 0b01, 1
	case aluOpEon:
		return 0b10, 1
	case aluOpBicS:
		return 0b11, 1
	default:
		panic("BUG: " + op.String() + " is not logical")
	}
}

// encodeAdr encodes as "ADR" or "ADRP" in
// https://developer.arm.com/documentation/ddi0602/2022-06/Base-Instructions/ADR--Form-PC-relative-address-
// https://developer.arm.com/documentation/ddi0602/2022-06/Base-Instructions/ADRP--Form-PC-relative-address-to-4KB-page-
//
// imm21 is in bytes for ADR and in pages for ADRP.
func encodeAdr(page bool, rd uint32, imm21 int64) (ret uint32) {
	ret = uint32(imm21&0b11)<<29 | 0b10000<<24 | uint32(imm21>>2&0x7ffff)<<5 | rd
	if page {
		ret |= 0b1 << 31
	}
	return
}

// encodeAddSubImmediate encodes as Add/subtract (immediate) in
// https://developer.arm.com/documentation/ddi0596/2020-12/Index-by-Encoding/Data-Processing----Immediate?lang=en
func encodeAddSubImmediate(op aluOp, size Size, rd, rn, imm12, shift12 uint32) uint32 {
	return size.sf()<<31 | op.addSubBits()<<29 | 0b100010<<23 | shift12<<22 | (imm12&0xfff)<<10 | rn<<5 | rd
}

// encodeAddSubShiftedRegister encodes as Add/subtract (shifted register) in
// https://developer.arm.com/documentation/ddi0596/2020-12/Index-by-Encoding/Data-Processing----Register?lang=en#addsub_shift
func encodeAddSubShiftedRegister(op aluOp, size Size, rd, rn, rm uint32, shift ShiftType, amount uint32) uint32 {
	return size.sf()<<31 | op.addSubBits()<<29 | 0b01011<<24 | uint32(shift)<<22 | rm<<16 | (amount&0x3f)<<10 | rn<<5 | rd
}

// encodeAddSubExtendedRegister encodes as Add/subtract (extended register) in
// https://developer.arm.com/documentation/ddi0596/2020-12/Index-by-Encoding/Data-Processing----Register?lang=en#addsub_ext
func encodeAddSubExtendedRegister(op aluOp, size Size, rd, rn, rm uint32, ext ExtendType, amount uint32) uint32 {
	return size.sf()<<31 | op.addSubBits()<<29 | 0b01011_001<<21 | rm<<16 | uint32(ext)<<13 | (amount&0b111)<<10 | rn<<5 | rd
}

// encodeLogicalImmediate encodes as Logical (immediate) in
// https://developer.arm.com/documentation/ddi0596/2020-12/Index-by-Encoding/Data-Processing----Immediate?lang=en#log_imm
func encodeLogicalImmediate(op aluOp, size Size, rd, rn uint32, imm LogicalImmediate) uint32 {
	opc, _ := op.logicalBits()
	return size.sf()<<31 | opc<<29 | 0b100100<<23 | uint32(imm.N)<<22 | uint32(imm.Immr)<<16 | uint32(imm.Imms)<<10 | rn<<5 | rd
}

// encodeLogicalShiftedRegister encodes as Logical (shifted register) in
// https://developer.arm.com/documentation/ddi0596/2020-12/Index-by-Encoding/Data-Processing----Register?lang=en#log_shift
func encodeLogicalShiftedRegister(op aluOp, size Size, rd, rn, rm uint32, shift ShiftType, amount uint32) uint32 {
	opc, n := op.logicalBits()
	return size.sf()<<31 | opc<<29 | 0b01010<<24 | uint32(shift)<<22 | n<<21 | rm<<16 | (amount&0x3f)<<10 | rn<<5 | rd
}

// encodeMoveWideImmediate encodes as Move wide (immediate) in
// https://developer.arm.com/documentation/ddi0596/2020-12/Index-by-Encoding/Data-Processing----Immediate?lang=en#movewide
func encodeMoveWideImmediate(op MoveWideOp, size Size, rd uint32, imm16 uint16, shift uint32) uint32 {
	return size.sf()<<31 | uint32(op)<<29 | 0b100101<<23 | (shift/16)<<21 | uint32(imm16)<<5 | rd
}

// encodeBitfield encodes as Bitfield in
// https://developer.arm.com/documentation/ddi0596/2020-12/Index-by-Encoding/Data-Processing----Immediate?lang=en#bitfield
//
// signed selects SBFM over UBFM.
func encodeBitfield(signed bool, size Size, rd, rn, immr, imms uint32) uint32 {
	opc := uint32(0b10)
	if signed {
		opc = 0b00
	}
	return size.sf()<<31 | opc<<29 | 0b100110<<23 | size.sf()<<22 | (immr&0x3f)<<16 | (imms&0x3f)<<10 | rn<<5 | rd
}

// encodeConditionalBranch encodes as "B.cond" or "BC.cond" in
// https://developer.arm.com/documentation/ddi0596/2021-12/Base-Instructions/B-cond--Branch-conditionally-
// https://developer.arm.com/documentation/ddi0602/2022-06/Base-Instructions/BC-cond--Branch-Consistent-conditionally-
//
// imm19 is in words.
func encodeConditionalBranch(cond Condition, imm19 int64, consistent bool) (ret uint32) {
	ret = 0b01010100<<24 | uint32(imm19&0x7ffff)<<5 | uint32(cond&0xf)
	if consistent {
		ret |= 0b1 << 4
	}
	return
}

// encodeUnconditionalBranch encodes as "B" or "BL" in
// https://developer.arm.com/documentation/ddi0596/2021-12/Base-Instructions/B--Branch-
// https://developer.arm.com/documentation/ddi0596/2021-12/Base-Instructions/BL--Branch-with-Link-
//
// imm26 is in words.
func encodeUnconditionalBranch(link bool, imm26 int64) (ret uint32) {
	ret = 0b101<<26 | uint32(imm26&0x3ffffff)
	if link {
		ret |= 0b1 << 31
	}
	return
}

// encodeCompareAndBranch encodes as "CBZ" or "CBNZ" in
// https://developer.arm.com/documentation/ddi0596/2021-12/Base-Instructions/CBZ--Compare-and-Branch-on-Zero-
//
// imm19 is in words.
func encodeCompareAndBranch(size Size, nonZero bool, rt uint32, imm19 int64) (ret uint32) {
	ret = size.sf()<<31 | 0b011010<<25 | uint32(imm19&0x7ffff)<<5 | rt
	if nonZero {
		ret |= 0b1 << 24
	}
	return
}

// encodeTestAndBranch encodes as "TBZ" or "TBNZ" in
// https://developer.arm.com/documentation/ddi0596/2021-12/Base-Instructions/TBZ--Test-bit-and-Branch-if-Zero-
//
// imm14 is in words. Bit 5 of the tested bit number lands in bit 31 of the instruction.
func encodeTestAndBranch(nonZero bool, rt, bit uint32, imm14 int64) (ret uint32) {
	ret = (bit>>5&1)<<31 | 0b011011<<25 | (bit&0x1f)<<19 | uint32(imm14&0x3fff)<<5 | rt
	if nonZero {
		ret |= 0b1 << 24
	}
	return
}

// loadLiteralOpc is the opc field of the "Load register (literal)" class.
type loadLiteralOpc uint32

const (
	ldrLiteralW    loadLiteralOpc = 0b00
	ldrLiteralX    loadLiteralOpc = 0b01
	ldrswLiteral   loadLiteralOpc = 0b10
	prfmLiteralOpc loadLiteralOpc = 0b11
)

// ldrLiteralOpc returns the opc of LDR (literal) for the register width.
func ldrLiteralOpc(size Size) loadLiteralOpc {
	if size == Size64 {
		return ldrLiteralX
	}
	return ldrLiteralW
}

// encodeLoadLiteral encodes as "LDR (literal)", "LDRSW (literal)" or "PRFM (literal)" in
// https://developer.arm.com/documentation/ddi0596/2020-12/Base-Instructions/LDR--literal---Load-Register--literal--
//
// imm19 is in words. For PRFM, rt holds the prefetch operation.
func encodeLoadLiteral(opc loadLiteralOpc, rt uint32, imm19 int64) uint32 {
	return uint32(opc)<<30 | 0b011000<<24 | uint32(imm19&0x7ffff)<<5 | rt
}

// encodeUnconditionalBranchRegister encodes as Unconditional branch (register) in
// https://developer.arm.com/documentation/ddi0596/2020-12/Index-by-Encoding/Branches--Exception-Generating-and-System-instructions?lang=en#branch_reg
//
// opc is 0b0000 for BR, 0b0001 for BLR and 0b0010 for RET.
func encodeUnconditionalBranchRegister(opc, rn uint32) uint32 {
	return 0b1101011<<25 | opc<<21 | 0b11111<<16 | rn<<5
}

// encodeBreakpoint encodes as "BRK" in
// https://developer.arm.com/documentation/ddi0596/2020-12/Base-Instructions/BRK--Breakpoint-instruction-
func encodeBreakpoint(imm16 uint16) uint32 {
	return 0b11010100_001<<21 | uint32(imm16)<<5
}
