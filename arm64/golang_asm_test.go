package arm64

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/twitchyliquid64/golang-asm/obj"
	goarm64 "github.com/twitchyliquid64/golang-asm/obj/arm64"

	"github.com/tetratelabs/a64emit/internal/asm/golang_asm"
)

// TestEmitter_GolangAsm cross-checks emitted words against the Go toolchain assembler.
func TestEmitter_GolangAsm(t *testing.T) {
	threeRegs := func(as obj.As, rd, rn, rm int16) func(b *golang_asm.Builder) {
		return func(b *golang_asm.Builder) {
			p := b.NewProg()
			p.As = as
			p.From.Type = obj.TYPE_REG
			p.From.Reg = rm
			p.Reg = rn
			p.To.Type = obj.TYPE_REG
			p.To.Reg = rd
			b.AddInstruction(p)
		}
	}

	for _, tc := range []struct {
		name  string
		emit  func(e *Emitter)
		build func(b *golang_asm.Builder)
	}{
		{
			name: "add x30, x30, #4",
			emit: func(e *Emitter) { e.AddImm(Size64, REG_R30, REG_R30, 4) },
			build: func(b *golang_asm.Builder) {
				p := b.NewProg()
				p.As = goarm64.AADD
				p.From.Type = obj.TYPE_CONST
				p.From.Offset = 4
				p.Reg = goarm64.REG_R30
				p.To.Type = obj.TYPE_REG
				p.To.Reg = goarm64.REG_R30
				b.AddInstruction(p)
			},
		},
		{
			name:  "add x0, x1, x2",
			emit:  func(e *Emitter) { e.Add(Size64, REG_R0, REG_R1, REG_R2, NoShift) },
			build: threeRegs(goarm64.AADD, goarm64.REG_R0, goarm64.REG_R1, goarm64.REG_R2),
		},
		{
			name:  "sub x5, x6, x7",
			emit:  func(e *Emitter) { e.Sub(Size64, REG_R5, REG_R6, REG_R7, NoShift) },
			build: threeRegs(goarm64.ASUB, goarm64.REG_R5, goarm64.REG_R6, goarm64.REG_R7),
		},
		{
			name:  "and x0, x1, x2",
			emit:  func(e *Emitter) { e.And(Size64, REG_R0, REG_R1, REG_R2, NoShift) },
			build: threeRegs(goarm64.AAND, goarm64.REG_R0, goarm64.REG_R1, goarm64.REG_R2),
		},
		{
			name:  "orr w3, w4, w5",
			emit:  func(e *Emitter) { e.Orr(Size32, REG_R3, REG_R4, REG_R5, NoShift) },
			build: threeRegs(goarm64.AORRW, goarm64.REG_R3, goarm64.REG_R4, goarm64.REG_R5),
		},
		{
			name:  "eor x8, x9, x10",
			emit:  func(e *Emitter) { e.Eor(Size64, REG_R8, REG_R9, REG_R10, NoShift) },
			build: threeRegs(goarm64.AEOR, goarm64.REG_R8, goarm64.REG_R9, goarm64.REG_R10),
		},
		{
			name: "nop",
			emit: func(e *Emitter) { e.Nop() },
			build: func(b *golang_asm.Builder) {
				p := b.NewProg()
				p.As = goarm64.ANOOP
				b.AddInstruction(p)
			},
		},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			exp, err := golang_asm.Assemble("arm64", 1, tc.build)
			require.NoError(t, err)

			e := newTestEmitter(t, 64)
			tc.emit(e)
			require.Equal(t, exp, words(e))
		})
	}
}
