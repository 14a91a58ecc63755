package arm64

import "github.com/tetratelabs/a64emit/internal/asm"

// Nop emits a NOP.
func (e *Emitter) Nop() {
	e.emit("nop", nopWord)
}

// Brk emits a breakpoint with the given comment.
func (e *Emitter) Brk(imm uint16) {
	e.emit("brk", encodeBreakpoint(imm))
}

// Dc32 emits a raw 32-bit data word.
func (e *Emitter) Dc32(word uint32) {
	e.emit(".word", word)
}

func (e *Emitter) addSubImmediate(op aluOp, size Size, rd, rn Register, imm uint32) {
	name := op.String()
	size = sizeBits(name, size)
	imm12, shift12 := splitImm12(name, imm)
	e.emit(name, encodeAddSubImmediate(op, size, registerBits(name, rd), registerBits(name, rn), imm12, shift12))
}

// AddImm emits rd = rn + imm. imm is 0 to 4095, or a multiple of 4096 up to 0xfff000.
// Register 31 is SP for both rd and rn.
func (e *Emitter) AddImm(size Size, rd, rn Register, imm uint32) {
	e.addSubImmediate(aluOpAdd, size, rd, rn, imm)
}

// AddsImm is AddImm setting the flags. rd 31 is the zero register.
func (e *Emitter) AddsImm(size Size, rd, rn Register, imm uint32) {
	e.addSubImmediate(aluOpAddS, size, rd, rn, imm)
}

// SubImm emits rd = rn - imm.
func (e *Emitter) SubImm(size Size, rd, rn Register, imm uint32) {
	e.addSubImmediate(aluOpSub, size, rd, rn, imm)
}

// SubsImm is SubImm setting the flags.
func (e *Emitter) SubsImm(size Size, rd, rn Register, imm uint32) {
	e.addSubImmediate(aluOpSubS, size, rd, rn, imm)
}

// CmpImm compares rn with imm.
func (e *Emitter) CmpImm(size Size, rn Register, imm uint32) {
	e.addSubImmediate(aluOpSubS, size, REGZERO, rn, imm)
}

// CmnImm compares rn with -imm.
func (e *Emitter) CmnImm(size Size, rn Register, imm uint32) {
	e.addSubImmediate(aluOpAddS, size, REGZERO, rn, imm)
}

func (e *Emitter) aluShiftedRegister(op aluOp, size Size, rd, rn, rm Register, shift Shift) {
	name := op.String()
	size = sizeBits(name, size)
	d, n, m := registerBits(name, rd), registerBits(name, rn), registerBits(name, rm)
	typ, amount := shiftBits(name, shift, size, !op.isAddSub())
	if op.isAddSub() {
		e.emit(name, encodeAddSubShiftedRegister(op, size, d, n, m, typ, amount))
	} else {
		e.emit(name, encodeLogicalShiftedRegister(op, size, d, n, m, typ, amount))
	}
}

// Add emits rd = rn + shift(rm). Register 31 is the zero register.
func (e *Emitter) Add(size Size, rd, rn, rm Register, shift Shift) {
	e.aluShiftedRegister(aluOpAdd, size, rd, rn, rm, shift)
}

// Adds is Add setting the flags.
func (e *Emitter) Adds(size Size, rd, rn, rm Register, shift Shift) {
	e.aluShiftedRegister(aluOpAddS, size, rd, rn, rm, shift)
}

// Sub emits rd = rn - shift(rm).
func (e *Emitter) Sub(size Size, rd, rn, rm Register, shift Shift) {
	e.aluShiftedRegister(aluOpSub, size, rd, rn, rm, shift)
}

// Subs is Sub setting the flags.
func (e *Emitter) Subs(size Size, rd, rn, rm Register, shift Shift) {
	e.aluShiftedRegister(aluOpSubS, size, rd, rn, rm, shift)
}

// Cmp compares rn with shift(rm).
func (e *Emitter) Cmp(size Size, rn, rm Register, shift Shift) {
	e.aluShiftedRegister(aluOpSubS, size, REGZERO, rn, rm, shift)
}

// Neg emits rd = -shift(rm).
func (e *Emitter) Neg(size Size, rd, rm Register, shift Shift) {
	e.aluShiftedRegister(aluOpSub, size, rd, REGZERO, rm, shift)
}

func (e *Emitter) addSubExtended(op aluOp, size Size, rd, rn, rm Register, ext Extend) {
	name := op.String()
	size = sizeBits(name, size)
	typ, amount := extendBits(name, ext)
	e.emit(name, encodeAddSubExtendedRegister(op, size, registerBits(name, rd), registerBits(name, rn), registerBits(name, rm), typ, amount))
}

// AddExt emits rd = rn + extend(rm). Register 31 is SP for rd and rn.
func (e *Emitter) AddExt(size Size, rd, rn, rm Register, ext Extend) {
	e.addSubExtended(aluOpAdd, size, rd, rn, rm, ext)
}

// SubExt emits rd = rn - extend(rm).
func (e *Emitter) SubExt(size Size, rd, rn, rm Register, ext Extend) {
	e.addSubExtended(aluOpSub, size, rd, rn, rm, ext)
}

func (e *Emitter) logicalImmediate(op aluOp, size Size, rd, rn Register, v uint64) {
	name := op.String()
	size = sizeBits(name, size)
	imm, ok := EncodeLogicalImmediate(v, size)
	if !ok {
		asm.Panicf(asm.ErrRange, name, "%#x is not a %s-bit logical immediate", v, size)
	}
	e.emit(name, encodeLogicalImmediate(op, size, registerBits(name, rd), registerBits(name, rn), imm))
}

// AndImm emits rd = rn & imm. imm must be a logical immediate, see EncodeLogicalImmediate.
// rd 31 is SP.
func (e *Emitter) AndImm(size Size, rd, rn Register, imm uint64) {
	e.logicalImmediate(aluOpAnd, size, rd, rn, imm)
}

// AndsImm is AndImm setting the flags. rd 31 is the zero register.
func (e *Emitter) AndsImm(size Size, rd, rn Register, imm uint64) {
	e.logicalImmediate(aluOpAndS, size, rd, rn, imm)
}

// OrrImm emits rd = rn | imm.
func (e *Emitter) OrrImm(size Size, rd, rn Register, imm uint64) {
	e.logicalImmediate(aluOpOrr, size, rd, rn, imm)
}

// EorImm emits rd = rn ^ imm.
func (e *Emitter) EorImm(size Size, rd, rn Register, imm uint64) {
	e.logicalImmediate(aluOpEor, size, rd, rn, imm)
}

// TstImm sets the flags on rn & imm.
func (e *Emitter) TstImm(size Size, rn Register, imm uint64) {
	e.logicalImmediate(aluOpAndS, size, REGZERO, rn, imm)
}

// And emits rd = rn & shift(rm).
func (e *Emitter) And(size Size, rd, rn, rm Register, shift Shift) {
	e.aluShiftedRegister(aluOpAnd, size, rd, rn, rm, shift)
}

// Ands is And setting the flags.
func (e *Emitter) Ands(size Size, rd, rn, rm Register, shift Shift) {
	e.aluShiftedRegister(aluOpAndS, size, rd, rn, rm, shift)
}

// Bic emits rd = rn &^ shift(rm).
func (e *Emitter) Bic(size Size, rd, rn, rm Register, shift Shift) {
	e.aluShiftedRegister(aluOpBic, size, rd, rn, rm, shift)
}

// Bics is Bic setting the flags.
func (e *Emitter) Bics(size Size, rd, rn, rm Register, shift Shift) {
	e.aluShiftedRegister(aluOpBicS, size, rd, rn, rm, shift)
}

// Orr emits rd = rn | shift(rm).
func (e *Emitter) Orr(size Size, rd, rn, rm Register, shift Shift) {
	e.aluShiftedRegister(aluOpOrr, size, rd, rn, rm, shift)
}

// Orn emits rd = rn | ^shift(rm).
func (e *Emitter) Orn(size Size, rd, rn, rm Register, shift Shift) {
	e.aluShiftedRegister(aluOpOrn, size, rd, rn, rm, shift)
}

// Eor emits rd = rn ^ shift(rm).
func (e *Emitter) Eor(size Size, rd, rn, rm Register, shift Shift) {
	e.aluShiftedRegister(aluOpEor, size, rd, rn, rm, shift)
}

// Eon emits rd = rn ^ ^shift(rm).
func (e *Emitter) Eon(size Size, rd, rn, rm Register, shift Shift) {
	e.aluShiftedRegister(aluOpEon, size, rd, rn, rm, shift)
}

// Tst sets the flags on rn & shift(rm).
func (e *Emitter) Tst(size Size, rn, rm Register, shift Shift) {
	e.aluShiftedRegister(aluOpAndS, size, REGZERO, rn, rm, shift)
}

// Mov copies rm to rd. Register 31 is the zero register; use MovSP for the stack pointer.
func (e *Emitter) Mov(size Size, rd, rm Register) {
	e.aluShiftedRegister(aluOpOrr, size, rd, REGZERO, rm, NoShift)
}

// MovSP copies rn to rd where register 31 is the stack pointer.
func (e *Emitter) MovSP(size Size, rd, rn Register) {
	e.addSubImmediate(aluOpAdd, size, rd, rn, 0)
}

// Mvn emits rd = ^shift(rm).
func (e *Emitter) Mvn(size Size, rd, rm Register, shift Shift) {
	e.aluShiftedRegister(aluOpOrn, size, rd, REGZERO, rm, shift)
}

func (e *Emitter) moveWide(op MoveWideOp, size Size, rd Register, imm uint16, shift uint32) {
	name := op.String()
	size = sizeBits(name, size)
	if shift%16 != 0 || shift >= uint32(size.Bits()) {
		asm.Panicf(asm.ErrRange, name, "shift %d must be a multiple of 16 less than %d", shift, size.Bits())
	}
	e.emit(name, encodeMoveWideImmediate(op, size, registerBits(name, rd), imm, shift))
}

// Movz emits rd = imm << shift.
func (e *Emitter) Movz(size Size, rd Register, imm uint16, shift uint32) {
	e.moveWide(MOVZ, size, rd, imm, shift)
}

// Movn emits rd = ^(imm << shift).
func (e *Emitter) Movn(size Size, rd Register, imm uint16, shift uint32) {
	e.moveWide(MOVN, size, rd, imm, shift)
}

// Movk replaces the halfword of rd at shift with imm.
func (e *Emitter) Movk(size Size, rd Register, imm uint16, shift uint32) {
	e.moveWide(MOVK, size, rd, imm, shift)
}

// LoadConstant materializes v in rd with the fewest instructions among a single ORR of a
// logical immediate and a move wide sequence. For Size32, v must fit in 32 bits.
func (e *Emitter) LoadConstant(size Size, rd Register, v uint64) {
	size = sizeBits("mov", size)
	reg := registerBits("mov", rd)
	if rd == REGZERO {
		asm.Panicf(asm.ErrRange, "mov", "destination cannot be the zero register")
	}
	seq := SplitMoveWide(v, size)
	if len(seq) > 1 {
		if imm, ok := EncodeLogicalImmediate(v, size); ok {
			e.emit("orr", encodeLogicalImmediate(aluOpOrr, size, reg, uint32(REGZERO), imm))
			return
		}
	}
	e.ensure("mov", len(seq))
	for _, mw := range seq {
		e.emit(mw.Op.String(), encodeMoveWideImmediate(mw.Op, size, reg, mw.Imm16, mw.Shift))
	}
}

func (e *Emitter) shiftImmediate(op string, signed bool, size Size, rd, rn Register, immr, imms uint32) {
	e.emit(op, encodeBitfield(signed, size, registerBits(op, rd), registerBits(op, rn), immr, imms))
}

func checkShiftImmediate(op string, size Size, amount uint) {
	sizeBits(op, size)
	if amount >= size.Bits() {
		asm.Panicf(asm.ErrRange, op, "shift amount %d must be less than %d", amount, size.Bits())
	}
}

// LslImm emits rd = rn << amount.
func (e *Emitter) LslImm(size Size, rd, rn Register, amount uint) {
	checkShiftImmediate("lsl", size, amount)
	width := uint32(size.Bits())
	a := uint32(amount)
	e.shiftImmediate("lsl", false, size, rd, rn, (width-a)%width, width-1-a)
}

// LsrImm emits rd = rn >> amount, filling with zeros.
func (e *Emitter) LsrImm(size Size, rd, rn Register, amount uint) {
	checkShiftImmediate("lsr", size, amount)
	e.shiftImmediate("lsr", false, size, rd, rn, uint32(amount), uint32(size.Bits())-1)
}

// AsrImm emits rd = rn >> amount, filling with the sign bit.
func (e *Emitter) AsrImm(size Size, rd, rn Register, amount uint) {
	checkShiftImmediate("asr", size, amount)
	e.shiftImmediate("asr", true, size, rd, rn, uint32(amount), uint32(size.Bits())-1)
}
