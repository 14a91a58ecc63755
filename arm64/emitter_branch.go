package arm64

import "github.com/tetratelabs/a64emit/internal/asm"

// B branches to l.
func (e *Emitter) B(l *Label) {
	e.reference(l, relocation{kind: UnconditionalBranch26, op: "b"})
}

// BL branches to l and writes the return address to REGLINK.
func (e *Emitter) BL(l *Label) {
	e.reference(l, relocation{kind: UnconditionalBranch26, op: "bl", link: true})
}

// BCond branches to l when cond holds.
func (e *Emitter) BCond(cond Condition, l *Label) {
	op := "b." + conditionOperand("b.cond", cond).String()
	e.reference(l, relocation{kind: ConditionalBranch19, op: op, cond: cond})
}

// BCCond is BCond with the hint that the branch is consistent, which needs FEAT_HBC.
func (e *Emitter) BCCond(cond Condition, l *Label) {
	op := "bc." + conditionOperand("bc.cond", cond).String()
	e.reference(l, relocation{kind: ConditionalBranch19, op: op, cond: cond, consistent: true})
}

// Cbz branches to l when rt is zero.
func (e *Emitter) Cbz(size Size, rt Register, l *Label) {
	e.reference(l, relocation{kind: CompareAndBranch19, op: "cbz", reg: registerBits("cbz", rt), size: sizeBits("cbz", size)})
}

// Cbnz branches to l when rt is not zero.
func (e *Emitter) Cbnz(size Size, rt Register, l *Label) {
	e.reference(l, relocation{kind: CompareAndBranch19, op: "cbnz", reg: registerBits("cbnz", rt), size: sizeBits("cbnz", size), nonZero: true})
}

// Tbz branches to l when bit of rt is zero. Bits 0 to 31 test the W view, 32 to 63 the X view.
func (e *Emitter) Tbz(rt Register, bit uint, l *Label) {
	e.reference(l, relocation{kind: TestAndBranch14, op: "tbz", reg: registerBits("tbz", rt), bit: testBit("tbz", bit)})
}

// Tbnz branches to l when bit of rt is one.
func (e *Emitter) Tbnz(rt Register, bit uint, l *Label) {
	e.reference(l, relocation{kind: TestAndBranch14, op: "tbnz", reg: registerBits("tbnz", rt), bit: testBit("tbnz", bit), nonZero: true})
}

// Adr writes the address of l to rd with a single ADR, reaching ±1MiB.
func (e *Emitter) Adr(rd Register, l *Label) {
	e.reference(l, addressRelocation(AddressGenShort, rd))
}

// LongAddressGen writes the address of l to rd using two slots: ADR when in reach, otherwise
// ADRP alone for page-aligned targets or ADRP+ADD, reaching ±4GiB.
func (e *Emitter) LongAddressGen(rd Register, l *Label) {
	e.reference(l, addressRelocation(AddressGenLong, rd))
}

// Adrp writes the address of l to rd with a single ADRP. l must be bound on a 4KiB boundary
// within ±4GiB of the page of the reference.
func (e *Emitter) Adrp(rd Register, l *Label) {
	e.reference(l, addressRelocation(AddressGenPage, rd))
}

// LdrLiteral loads the 32 or 64-bit word at l into rt.
func (e *Emitter) LdrLiteral(size Size, rt Register, l *Label) {
	size = sizeBits("ldr", size)
	e.reference(l, relocation{kind: LoadLiteral19, op: "ldr", reg: registerBits("ldr", rt), size: size, literal: ldrLiteralOpc(size)})
}

// LdrswLiteral loads the 32-bit word at l into rt, sign-extended to 64 bits.
func (e *Emitter) LdrswLiteral(rt Register, l *Label) {
	e.reference(l, relocation{kind: LoadLiteral19, op: "ldrsw", reg: registerBits("ldrsw", rt), size: Size64, literal: ldrswLiteral})
}

// PrfmLiteral hints that the memory at l will be accessed as described by op.
func (e *Emitter) PrfmLiteral(op PrefetchOp, l *Label) {
	if op > 0b11111 {
		asm.Panicf(asm.ErrRange, "prfm", "invalid prefetch operation %d", uint8(op))
	}
	e.reference(l, relocation{kind: LoadLiteral19, op: "prfm", reg: uint32(op), literal: prfmLiteralOpc})
}

// Br branches to the address in rn.
func (e *Emitter) Br(rn Register) {
	e.emit("br", encodeUnconditionalBranchRegister(0b0000, registerBits("br", rn)))
}

// Blr branches to the address in rn and writes the return address to REGLINK.
func (e *Emitter) Blr(rn Register) {
	e.emit("blr", encodeUnconditionalBranchRegister(0b0001, registerBits("blr", rn)))
}

// Ret returns to the address in rn, usually REGLINK.
func (e *Emitter) Ret(rn Register) {
	e.emit("ret", encodeUnconditionalBranchRegister(0b0010, registerBits("ret", rn)))
}

func conditionOperand(op string, cond Condition) Condition {
	if cond > COND_NV {
		asm.Panicf(asm.ErrRange, op, "invalid condition %d", uint8(cond))
	}
	return cond
}

func testBit(op string, bit uint) uint32 {
	if bit > 63 {
		asm.Panicf(asm.ErrRange, op, "bit %d must be at most 63", bit)
	}
	return uint32(bit)
}
