// Package arm64 emits AArch64 machine code into a buffer and resolves labels into
// PC-relative encodings.
//
// Instructions are written in a single pass. A reference to a label that is not bound yet
// reserves the worst case number of slots for its RelocationKind, filled with NOPs, and is
// rewritten in place by Bind. Code emitted in between never moves.
//
// Invalid requests (out of range immediates or distances, label misuse, full buffers) are
// bugs in the caller: emission panics with an *Error and writes nothing for the failing
// instruction. Guard converts such panics back into errors.
package arm64

import (
	"fmt"
	"io"

	"github.com/tetratelabs/a64emit/internal/asm"
)

// Position is an opaque handle to an instruction slot of an Emitter.
type Position = asm.Position

// Error is the value emission panics with.
type Error = asm.Error

// Kinds of Error, usable with errors.Is.
var (
	ErrRange    = asm.ErrRange
	ErrProtocol = asm.ErrProtocol
	ErrCapacity = asm.ErrCapacity
)

// Guard runs fn and returns the *Error it panicked with, if any. Other panics propagate.
func Guard(fn func()) error {
	return asm.Guard(fn)
}

// Emitter writes instructions in program order. It is not safe for concurrent use: use one
// Emitter per compilation task.
type Emitter struct {
	buf   *asm.CodeBuffer
	trace io.Writer
	// pending holds the labels with unresolved references.
	pending map[*Label]struct{}
}

// NewEmitter allocates an Emitter and its code buffer. A nil config means NewEmitterConfig.
func NewEmitter(config *EmitterConfig) (*Emitter, error) {
	if config == nil {
		config = NewEmitterConfig()
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	buf, err := asm.NewCodeBuffer(config.capacity, config.executable)
	if err != nil {
		return nil, err
	}
	return &Emitter{buf: buf, trace: config.trace, pending: map[*Label]struct{}{}}, nil
}

// CurrentOffset returns the position of the next instruction.
func (e *Emitter) CurrentOffset() Position {
	return e.buf.CurrentOffset()
}

// Len returns the number of bytes emitted.
func (e *Emitter) Len() int {
	return e.buf.Len()
}

// Bytes returns the code emitted so far, aliasing the buffer. References to unbound labels
// read as NOPs.
func (e *Emitter) Bytes() []byte {
	return e.buf.Bytes()
}

// WordAt returns the instruction word at pos.
func (e *Emitter) WordAt(pos Position) uint32 {
	return e.buf.WordAt(pos)
}

// Addr returns the address of the first instruction.
func (e *Emitter) Addr() uintptr {
	return e.buf.Addr()
}

// AddressOf returns the absolute address of pos.
func (e *Emitter) AddressOf(pos Position) uintptr {
	return e.buf.AddressOf(pos)
}

// Finalize completes emission and returns the code. It fails while labels have unresolved
// references. With executable memory, the returned bytes are read+execute and stay valid
// until Close.
func (e *Emitter) Finalize() ([]byte, error) {
	if n := len(e.pending); n > 0 {
		return nil, fmt.Errorf("finalize: %d labels with unresolved references: %w", n, ErrProtocol)
	}
	return e.buf.Finalize()
}

// Close releases the code buffer.
func (e *Emitter) Close() error {
	return e.buf.Close()
}

// ensure panics unless slots more instructions fit.
func (e *Emitter) ensure(op string, slots int) {
	if e.buf.Closed() {
		asm.Panicf(ErrProtocol, op, "emitter closed")
	}
	if e.buf.Available() < slots*asm.WordSize {
		asm.Panicf(ErrCapacity, op, "%d slots requested, %d bytes left", slots, e.buf.Available())
	}
}

func (e *Emitter) emit(op string, word uint32) {
	off := e.buf.Len()
	e.buf.Append(word)
	e.tracef("%08x: %08x  %s\n", off, word, op)
}

func (e *Emitter) patch(op string, pos Position, word uint32) {
	e.buf.WriteAt(pos, word)
	e.tracef("%08x: %08x  %s (patch)\n", pos.Offset(), word, op)
}

func (e *Emitter) tracef(format string, args ...interface{}) {
	if e.trace != nil {
		fmt.Fprintf(e.trace, format, args...)
	}
}
