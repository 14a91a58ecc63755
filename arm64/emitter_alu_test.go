package arm64

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmitter_Alu(t *testing.T) {
	for _, tc := range []struct {
		name string
		emit func(e *Emitter)
		exp  []uint32
	}{
		{name: "add imm", emit: func(e *Emitter) { e.AddImm(Size64, REG_R30, REG_R30, 4) }, exp: []uint32{0x910013de}},
		{name: "add imm lsl 12", emit: func(e *Emitter) { e.AddImm(Size64, REG_R0, REG_R1, 0x1000) }, exp: []uint32{0x91400420}},
		{name: "cmp imm", emit: func(e *Emitter) { e.CmpImm(Size32, REG_R0, 1) }, exp: []uint32{0x7100041f}},
		{name: "mov sp", emit: func(e *Emitter) { e.MovSP(Size64, REG_R0, REGSP) }, exp: []uint32{0x910003e0}},
		{name: "sub lsl", emit: func(e *Emitter) { e.Sub(Size64, REG_R0, REG_R1, REG_R2, LSL(3)) }, exp: []uint32{0xcb020c20}},
		{name: "add ext", emit: func(e *Emitter) { e.AddExt(Size64, REG_R0, REGSP, REG_R1, Extend{Type: EXTEND_UXTW, Amount: 2}) }, exp: []uint32{0x8b214be0}},
		{name: "and imm", emit: func(e *Emitter) { e.AndImm(Size64, REG_R0, REG_R1, 0xff) }, exp: []uint32{0x92401c20}},
		{name: "mov", emit: func(e *Emitter) { e.Mov(Size64, REG_R0, REG_R1) }, exp: []uint32{0xaa0103e0}},
		{name: "movz", emit: func(e *Emitter) { e.Movz(Size64, REG_R0, 0x1234, 16) }, exp: []uint32{0xd2a24680}},
		{name: "movk", emit: func(e *Emitter) { e.Movk(Size64, REG_R0, 0xffff, 48) }, exp: []uint32{0xf2ffffe0}},
		{name: "lsl", emit: func(e *Emitter) { e.LslImm(Size64, REG_R0, REG_R1, 4) }, exp: []uint32{0xd37cec20}},
		{name: "lsr", emit: func(e *Emitter) { e.LsrImm(Size32, REG_R0, REG_R1, 4) }, exp: []uint32{0x53047c20}},
		{name: "asr", emit: func(e *Emitter) { e.AsrImm(Size64, REG_R0, REG_R1, 63) }, exp: []uint32{0x937ffc20}},
		{name: "load small", emit: func(e *Emitter) { e.LoadConstant(Size64, REG_R0, 0x1234) }, exp: []uint32{0xd2824680}},
		{name: "load all ones", emit: func(e *Emitter) { e.LoadConstant(Size64, REG_R0, ^uint64(0)) }, exp: []uint32{0x92800000}},
		{name: "load two halfwords", emit: func(e *Emitter) { e.LoadConstant(Size64, REG_R0, 0x1234_0000_5678) }, exp: []uint32{0xd28acf00, 0xf2c24680}},
		{name: "dc32", emit: func(e *Emitter) { e.Dc32(0xdeadbeef) }, exp: []uint32{0xdeadbeef}},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEmitter(t, 64)
			tc.emit(e)
			require.Equal(t, tc.exp, words(e))
		})
	}
}

func TestEmitter_LoadConstant_LogicalImmediate(t *testing.T) {
	const v = 0x00ff_00ff_00ff_00ff
	require.Len(t, SplitMoveWide(v, Size64), 4)
	imm, ok := EncodeLogicalImmediate(v, Size64)
	require.True(t, ok)

	e := newTestEmitter(t, 64)
	e.LoadConstant(Size64, REG_R7, v)
	require.Equal(t, []uint32{encodeLogicalImmediate(aluOpOrr, Size64, 7, 31, imm)}, words(e))
}

func TestEmitter_AluErrors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		emit   func(e *Emitter)
		expErr string
	}{
		{
			name:   "imm12",
			emit:   func(e *Emitter) { e.AddImm(Size64, REG_R0, REG_R0, 0x1001) },
			expErr: "BUG: add: out of range: immediate 0x1001 is not a 12-bit value, optionally shifted by 12",
		},
		{
			name:   "logical immediate",
			emit:   func(e *Emitter) { e.OrrImm(Size32, REG_R0, REG_R0, 0) },
			expErr: "BUG: orr: out of range: 0x0 is not a 32-bit logical immediate",
		},
		{
			name:   "shift amount",
			emit:   func(e *Emitter) { e.LslImm(Size32, REG_R0, REG_R1, 32) },
			expErr: "BUG: lsl: out of range: shift amount 32 must be less than 32",
		},
		{
			name:   "register shift amount",
			emit:   func(e *Emitter) { e.Add(Size32, REG_R0, REG_R1, REG_R2, LSL(32)) },
			expErr: "BUG: add: out of range: shift amount 32 must be less than 32",
		},
		{
			name:   "ror on add",
			emit:   func(e *Emitter) { e.Add(Size64, REG_R0, REG_R1, REG_R2, ROR(1)) },
			expErr: "BUG: add: out of range: unsupported shift type 3",
		},
		{
			name:   "extend amount",
			emit:   func(e *Emitter) { e.SubExt(Size64, REG_R0, REG_R1, REG_R2, Extend{Type: EXTEND_SXTW, Amount: 5}) },
			expErr: "BUG: sub: out of range: extend shift amount 5 must be at most 4",
		},
		{
			name:   "move wide shift",
			emit:   func(e *Emitter) { e.Movz(Size32, REG_R0, 1, 32) },
			expErr: "BUG: movz: out of range: shift 32 must be a multiple of 16 less than 32",
		},
		{
			name:   "invalid register",
			emit:   func(e *Emitter) { e.Mov(Size64, REG_R0, Register(32)) },
			expErr: "BUG: orr: out of range: invalid register 32",
		},
		{
			name:   "load into zero register",
			emit:   func(e *Emitter) { e.LoadConstant(Size64, REGZERO, 1) },
			expErr: "BUG: mov: out of range: destination cannot be the zero register",
		},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEmitter(t, 64)
			err := Guard(func() { tc.emit(e) })
			require.ErrorIs(t, err, ErrRange)
			require.EqualError(t, err, tc.expErr)
			require.Equal(t, 0, e.Len())
		})
	}
}
