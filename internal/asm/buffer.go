// Package asm holds the parts of machine code emission that are independent of the
// instruction set: the code buffer and the fatal error taxonomy.
package asm

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/tetratelabs/a64emit/internal/platform"
)

// WordSize is the size of one instruction slot.
const WordSize = 4

// Position is an opaque handle to a word slot in a CodeBuffer. Positions are obtained from
// CodeBuffer.CurrentOffset and can only be written through CodeBuffer.WriteAt, which checks
// them against the live cursor.
type Position struct {
	off int
}

// Offset returns the byte offset of the position from the start of its buffer.
func (p Position) Offset() int {
	return p.off
}

// Advance returns the position n words after p.
func (p Position) Advance(n int) Position {
	return Position{off: p.off + n*WordSize}
}

// String implements fmt.Stringer.
func (p Position) String() string {
	return fmt.Sprintf("%#x", p.off)
}

// CodeBuffer is a fixed-capacity region where instruction words are written.
//
// Words are appended at a cursor which only moves forward. Slots behind the cursor can be
// overwritten with WriteAt, which is the sole backpatch primitive. Slots reserved with Reserve
// must each be written once before Finalize succeeds.
//
// The first byte of the buffer is always 4KiB aligned, so page distances computed on offsets
// equal page distances of the final addresses.
//
// Buffers created with executable memory hold memory which is NOT managed by the garbage
// collector and must be released by calling Close.
type CodeBuffer struct {
	// code is the page-aligned view that offsets are relative to.
	code []byte
	// mem is the full mapping, or nil for heap memory.
	mem       []byte
	cursor    int
	reserved  map[int]struct{}
	finalized bool
	closed    bool
}

// NewCodeBuffer allocates a buffer of capacity bytes. When executable is true, the memory is
// mapped from the operating system and can be switched to read+execute by Finalize.
func NewCodeBuffer(capacity int, executable bool) (*CodeBuffer, error) {
	if capacity <= 0 || capacity%WordSize != 0 {
		return nil, fmt.Errorf("invalid code buffer capacity %d: %w", capacity, ErrCapacity)
	}
	b := &CodeBuffer{reserved: map[int]struct{}{}}
	if executable {
		size := (capacity + platform.PageSize - 1) &^ (platform.PageSize - 1)
		mem, err := platform.MmapCodeSegment(size)
		if err != nil {
			return nil, err
		}
		b.mem = mem
		b.code = mem[:capacity:capacity]
		return b, nil
	}
	mem := make([]byte, capacity+platform.PageSize)
	pad := int(-uintptr(unsafe.Pointer(&mem[0])) & (platform.PageSize - 1))
	b.code = mem[pad : pad+capacity : pad+capacity]
	return b, nil
}

// Executable reports whether the buffer is backed by mapped memory.
func (b *CodeBuffer) Executable() bool {
	return b.mem != nil
}

// Cap returns the capacity in bytes.
func (b *CodeBuffer) Cap() int {
	return len(b.code)
}

// Len returns the number of bytes written so far.
func (b *CodeBuffer) Len() int {
	return b.cursor
}

// Bytes returns the bytes written so far. The slice aliases the buffer.
func (b *CodeBuffer) Bytes() []byte {
	b.live("bytes")
	return b.code[:b.cursor:b.cursor]
}

// Addr returns the address of the first byte of the buffer.
func (b *CodeBuffer) Addr() uintptr {
	b.live("address")
	return uintptr(unsafe.Pointer(&b.code[0]))
}

// CurrentOffset returns the position of the next appended word.
func (b *CodeBuffer) CurrentOffset() Position {
	return Position{off: b.cursor}
}

// AddressOf returns the absolute address of pos, which may be any slot behind the cursor or
// the cursor itself.
func (b *CodeBuffer) AddressOf(pos Position) uintptr {
	b.live("address")
	if pos.off%WordSize != 0 {
		Panicf(ErrProtocol, "address", "offset %s is not word aligned", pos)
	}
	if pos.off < 0 || pos.off > b.cursor {
		Panicf(ErrProtocol, "address", "offset %s past cursor %#x", pos, b.cursor)
	}
	return b.Addr() + uintptr(pos.off)
}

// PositionAt converts an absolute address inside the written region back to a position.
func (b *CodeBuffer) PositionAt(addr uintptr) (Position, error) {
	if b.closed {
		return Position{}, fmt.Errorf("position: buffer closed: %w", ErrProtocol)
	}
	base := b.Addr()
	if addr < base || addr >= base+uintptr(b.cursor) {
		return Position{}, fmt.Errorf("address %#x outside of buffer [%#x, %#x)", addr, base, base+uintptr(b.cursor))
	}
	off := int(addr - base)
	if off%WordSize != 0 {
		return Position{}, fmt.Errorf("address %#x is not word aligned", addr)
	}
	return Position{off: off}, nil
}

// Append writes word at the cursor and advances it by one slot.
func (b *CodeBuffer) Append(word uint32) {
	b.live("append")
	if b.finalized {
		Panicf(ErrProtocol, "append", "buffer already finalized")
	}
	if b.cursor+WordSize > len(b.code) {
		Panicf(ErrCapacity, "append", "%d bytes in use of %d", b.cursor, len(b.code))
	}
	binary.LittleEndian.PutUint32(b.code[b.cursor:], word)
	b.cursor += WordSize
}

// Closed reports whether Close was called.
func (b *CodeBuffer) Closed() bool {
	return b.closed
}

// Available returns the remaining capacity in bytes.
func (b *CodeBuffer) Available() int {
	return len(b.code) - b.cursor
}

// WriteAt overwrites the word at pos, which must be behind the cursor. A reserved slot is
// considered final once written.
func (b *CodeBuffer) WriteAt(pos Position, word uint32) {
	b.live("write")
	if b.finalized {
		Panicf(ErrProtocol, "write", "buffer already finalized")
	}
	b.check("write", pos)
	binary.LittleEndian.PutUint32(b.code[pos.off:], word)
	delete(b.reserved, pos.off)
}

// WordAt returns the word stored at pos.
func (b *CodeBuffer) WordAt(pos Position) uint32 {
	b.check("read", pos)
	return binary.LittleEndian.Uint32(b.code[pos.off:])
}

// Reserve marks count already written slots starting at pos as not yet final.
func (b *CodeBuffer) Reserve(pos Position, count int) {
	if count <= 0 {
		Panicf(ErrProtocol, "reserve", "invalid slot count %d", count)
	}
	for i := 0; i < count; i++ {
		p := pos.Advance(i)
		b.check("reserve", p)
		if _, ok := b.reserved[p.off]; ok {
			Panicf(ErrProtocol, "reserve", "slot %s already reserved", p)
		}
	}
	for i := 0; i < count; i++ {
		b.reserved[pos.Advance(i).off] = struct{}{}
	}
}

// Pending returns the number of reserved slots not yet written.
func (b *CodeBuffer) Pending() int {
	return len(b.reserved)
}

// live panics once the buffer is closed.
func (b *CodeBuffer) live(op string) {
	if b.closed {
		Panicf(ErrProtocol, op, "buffer closed")
	}
}

// check panics unless pos is an aligned slot behind the cursor.
func (b *CodeBuffer) check(op string, pos Position) {
	b.live(op)
	if pos.off%WordSize != 0 {
		Panicf(ErrProtocol, op, "offset %s is not word aligned", pos)
	}
	if pos.off < 0 || pos.off >= b.cursor {
		Panicf(ErrProtocol, op, "offset %s not behind cursor %#x", pos, b.cursor)
	}
}

// Finalize completes the buffer and returns the code. Executable buffers become read+execute.
// Finalize fails while reserved slots are pending.
func (b *CodeBuffer) Finalize() ([]byte, error) {
	if b.closed {
		return nil, fmt.Errorf("finalize: buffer closed: %w", ErrProtocol)
	}
	if b.finalized {
		return nil, fmt.Errorf("finalize: buffer already finalized: %w", ErrProtocol)
	}
	if n := len(b.reserved); n > 0 {
		return nil, fmt.Errorf("finalize: %d reserved slots never written: %w", n, ErrProtocol)
	}
	if b.mem != nil {
		if err := platform.MprotectRX(b.mem); err != nil {
			return nil, fmt.Errorf("finalize: %w", err)
		}
	}
	b.finalized = true
	return b.Bytes(), nil
}

// Close releases mapped memory. Any later use of the buffer panics with ErrProtocol. Close is
// idempotent.
func (b *CodeBuffer) Close() (err error) {
	if b.closed {
		return nil
	}
	if b.mem != nil {
		err = platform.MunmapCodeSegment(b.mem)
	}
	b.closed = true
	b.mem = nil
	b.code = nil
	b.cursor = 0
	return err
}
