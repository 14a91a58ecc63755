package platform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func requireExecutableMemory(t *testing.T) {
	if !ExecutableMemorySupported {
		t.Skip()
	}
}

func TestMmapCodeSegment(t *testing.T) {
	requireExecutableMemory(t)

	code, err := MmapCodeSegment(PageSize)
	require.NoError(t, err)
	defer func() { require.NoError(t, MunmapCodeSegment(code)) }()

	require.Equal(t, PageSize, len(code))
	// Fresh anonymous mappings are zeroed and writable.
	require.Equal(t, make([]byte, PageSize), code)
	code[0] = 0x1f

	t.Run("panic on zero length", func(t *testing.T) {
		require.PanicsWithError(t, "BUG: MmapCodeSegment with zero length", func() {
			_, _ = MmapCodeSegment(0)
		})
	})
}

func TestMunmapCodeSegment(t *testing.T) {
	requireExecutableMemory(t)

	code, err := MmapCodeSegment(PageSize)
	require.NoError(t, err)
	require.NoError(t, MunmapCodeSegment(code))

	require.PanicsWithError(t, "BUG: MunmapCodeSegment with zero length", func() {
		_ = MunmapCodeSegment(nil)
	})
}

func TestMprotectRX(t *testing.T) {
	requireExecutableMemory(t)

	code, err := MmapCodeSegment(PageSize)
	require.NoError(t, err)
	defer func() { require.NoError(t, MunmapCodeSegment(code)) }()

	copy(code, []byte{0x1f, 0x20, 0x03, 0xd5})
	require.NoError(t, MprotectRX(code))
	// Still readable after the switch.
	require.Equal(t, []byte{0x1f, 0x20, 0x03, 0xd5}, code[:4])

	require.PanicsWithError(t, "BUG: MprotectRX with zero length", func() {
		_ = MprotectRX(nil)
	})
}
