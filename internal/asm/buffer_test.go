package asm_test

import (
	"errors"
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/a64emit/internal/asm"
	"github.com/tetratelabs/a64emit/internal/platform"
)

const nop = 0xd503201f

func TestNewCodeBuffer(t *testing.T) {
	for _, capacity := range []int{0, -4, 6} {
		_, err := asm.NewCodeBuffer(capacity, false)
		require.ErrorIs(t, err, asm.ErrCapacity)
	}

	withCodeBuffer(t, 64, func(buf *asm.CodeBuffer) {
		require.Equal(t, 64, buf.Cap())
		require.Equal(t, 0, buf.Len())
		require.Equal(t, 64, buf.Available())
		require.Equal(t, []byte{}, buf.Bytes())
		require.Equal(t, 0, buf.CurrentOffset().Offset())
		require.Zero(t, buf.Addr()&(platform.PageSize-1), "buffer must start on a page")
	})
}

func TestCodeBufferAppend(t *testing.T) {
	withCodeBuffer(t, 16, func(buf *asm.CodeBuffer) {
		values := []uint32{0, 1, nop, 0xffffffff}
		bytes := unsafe.Slice(*(**byte)(unsafe.Pointer(&values)), 4*len(values))

		for i, v := range values {
			require.Equal(t, 4*i, buf.CurrentOffset().Offset())
			buf.Append(v)
			require.Equal(t, 4*(i+1), buf.Len())
			require.Equal(t, bytes[:4*(i+1)], buf.Bytes())
		}

		err := asm.Guard(func() { buf.Append(nop) })
		require.EqualError(t, err, "BUG: append: capacity exceeded: 16 bytes in use of 16")
		require.Equal(t, 16, buf.Len())
	})
}

func TestCodeBufferWriteAt(t *testing.T) {
	withCodeBuffer(t, 64, func(buf *asm.CodeBuffer) {
		first := buf.CurrentOffset()
		buf.Append(nop)
		second := buf.CurrentOffset()
		buf.Append(nop)

		buf.WriteAt(second, 0x1000003e)
		require.Equal(t, uint32(0x1000003e), buf.WordAt(second))
		require.Equal(t, uint32(nop), buf.WordAt(first))
		require.Equal(t, 8, buf.Len(), "WriteAt never moves the cursor")

		for _, tc := range []struct {
			name string
			pos  asm.Position
			exp  string
		}{
			{name: "at cursor", pos: buf.CurrentOffset(), exp: "BUG: write: protocol violation: offset 0x8 not behind cursor 0x8"},
			{name: "after cursor", pos: buf.CurrentOffset().Advance(3), exp: "BUG: write: protocol violation: offset 0x14 not behind cursor 0x8"},
			{name: "before start", pos: first.Advance(-1), exp: "BUG: write: protocol violation: offset -0x4 not behind cursor 0x8"},
		} {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				err := asm.Guard(func() { buf.WriteAt(tc.pos, 0) })
				require.EqualError(t, err, tc.exp)
				require.True(t, errors.Is(err, asm.ErrProtocol))
			})
		}
	})
}

func TestCodeBufferReserve(t *testing.T) {
	withCodeBuffer(t, 64, func(buf *asm.CodeBuffer) {
		site := buf.CurrentOffset()
		buf.Append(nop)
		buf.Append(nop)
		buf.Reserve(site, 2)
		require.Equal(t, 2, buf.Pending())

		err := asm.Guard(func() { buf.Reserve(site.Advance(1), 1) })
		require.EqualError(t, err, "BUG: reserve: protocol violation: slot 0x4 already reserved")

		buf.Append(nop)
		err = asm.Guard(func() { buf.Reserve(site.Advance(2), 2) })
		require.EqualError(t, err, "BUG: reserve: protocol violation: offset 0xc not behind cursor 0xc")
		require.Equal(t, 2, buf.Pending(), "failed reservations must not be partially applied")

		_, err = buf.Finalize()
		require.ErrorIs(t, err, asm.ErrProtocol)

		buf.WriteAt(site, nop)
		require.Equal(t, 1, buf.Pending())
		buf.WriteAt(site.Advance(1), 0x1000003e)
		require.Equal(t, 0, buf.Pending())

		code, err := buf.Finalize()
		require.NoError(t, err)
		require.Equal(t, []byte{0x1f, 0x20, 0x03, 0xd5, 0x3e, 0x00, 0x00, 0x10, 0x1f, 0x20, 0x03, 0xd5}, code)

		_, err = buf.Finalize()
		require.ErrorIs(t, err, asm.ErrProtocol)
		require.ErrorIs(t, asm.Guard(func() { buf.Append(nop) }), asm.ErrProtocol)
	})
}

func TestCodeBufferAddresses(t *testing.T) {
	withCodeBuffer(t, 64, func(buf *asm.CodeBuffer) {
		buf.Append(nop)
		pos := buf.CurrentOffset()
		buf.Append(nop)

		addr := buf.AddressOf(pos)
		require.Equal(t, buf.Addr()+4, addr)

		back, err := buf.PositionAt(addr)
		require.NoError(t, err)
		require.Equal(t, pos, back)

		_, err = buf.PositionAt(addr + 2)
		require.EqualError(t, err, fmt.Sprintf("address %#x is not word aligned", addr+2))
		_, err = buf.PositionAt(addr + 4)
		require.Error(t, err)
		_, err = buf.PositionAt(buf.Addr() - 4)
		require.Error(t, err)
	})
}

func TestCodeBufferAddressOfCursor(t *testing.T) {
	withCodeBuffer(t, 64, func(buf *asm.CodeBuffer) {
		require.Equal(t, buf.Addr(), buf.AddressOf(buf.CurrentOffset()))

		buf.Append(nop)
		cursor := buf.CurrentOffset()
		require.Equal(t, buf.Addr()+4, buf.AddressOf(cursor))

		err := asm.Guard(func() { buf.AddressOf(cursor.Advance(1)) })
		require.ErrorIs(t, err, asm.ErrProtocol)
		err = asm.Guard(func() { buf.WriteAt(cursor, nop) })
		require.ErrorIs(t, err, asm.ErrProtocol)
	})
}

func TestCodeBufferClose(t *testing.T) {
	buf, err := asm.NewCodeBuffer(16, false)
	require.NoError(t, err)
	buf.Append(nop)
	pos := buf.CurrentOffset()
	buf.Append(nop)

	require.NoError(t, buf.Close())
	require.NoError(t, buf.Close())

	for name, use := range map[string]func(){
		"addr":       func() { buf.Addr() },
		"address of": func() { buf.AddressOf(pos) },
		"bytes":      func() { buf.Bytes() },
		"append":     func() { buf.Append(nop) },
		"write at":   func() { buf.WriteAt(pos, nop) },
		"word at":    func() { buf.WordAt(pos) },
		"reserve":    func() { buf.Reserve(pos, 1) },
	} {
		err := asm.Guard(use)
		require.ErrorIs(t, err, asm.ErrProtocol, name)
		require.Contains(t, err.Error(), "buffer closed", name)
	}

	_, err = buf.Finalize()
	require.ErrorIs(t, err, asm.ErrProtocol)
	_, err = buf.PositionAt(0)
	require.ErrorIs(t, err, asm.ErrProtocol)
}

func TestCodeBufferExecutable(t *testing.T) {
	if !platform.ExecutableMemorySupported {
		t.Skip()
	}

	buf, err := asm.NewCodeBuffer(8, true)
	require.NoError(t, err)
	require.True(t, buf.Executable())
	require.Zero(t, buf.Addr()&(platform.PageSize-1))

	buf.Append(nop)
	buf.Append(0xd65f03c0)
	code, err := buf.Finalize()
	require.NoError(t, err)
	require.Equal(t, []byte{0x1f, 0x20, 0x03, 0xd5, 0xc0, 0x03, 0x5f, 0xd6}, code)

	require.NoError(t, buf.Close())
	require.NoError(t, buf.Close())
}

func withCodeBuffer(t *testing.T, capacity int, f func(*asm.CodeBuffer)) {
	buf, err := asm.NewCodeBuffer(capacity, false)
	require.NoError(t, err)
	defer func() { require.NoError(t, buf.Close()) }()
	f(buf)
}
