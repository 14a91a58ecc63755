// Package golang_asm wraps golang-asm, the assembler of the Go toolchain, as a reference to
// cross-check hand-written instruction encodings in tests.
package golang_asm

import (
	"encoding/binary"
	"fmt"
	"sync"

	goasm "github.com/twitchyliquid64/golang-asm"
	"github.com/twitchyliquid64/golang-asm/obj"
)

// golang-asm is not goroutine-safe.
var lock sync.Mutex

// Builder collects golang-asm instructions.
type Builder struct {
	b *goasm.Builder
}

// NewProg returns a new instruction. It is only part of the output once passed to AddInstruction.
func (b *Builder) NewProg() *obj.Prog {
	return b.b.NewProg()
}

// AddInstruction appends p to the program.
func (b *Builder) AddInstruction(p *obj.Prog) {
	b.b.AddInstruction(p)
}

// Assemble runs build against a fresh builder for arch and returns the first n instruction
// words of the output. golang-asm pads its output, so n must be given.
//
// golang-asm takes the first instruction of a program as its TEXT entry and does not emit it,
// so Assemble adds a leading obj.ANOP ahead of the instructions added by build.
func Assemble(arch string, n int, build func(b *Builder)) ([]uint32, error) {
	lock.Lock()
	defer lock.Unlock()

	gb, err := goasm.NewBuilder(arch, 1024)
	if err != nil {
		return nil, fmt.Errorf("failed to create a new assembly builder: %w", err)
	}
	b := &Builder{b: gb}
	head := gb.NewProg()
	head.As = obj.ANOP
	gb.AddInstruction(head)
	build(b)

	code := gb.Assemble()
	if len(code) < 4*n {
		return nil, fmt.Errorf("assembled %d bytes, want at least %d", len(code), 4*n)
	}
	words := make([]uint32, n)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[4*i:])
	}
	return words, nil
}
