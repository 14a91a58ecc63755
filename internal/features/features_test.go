package features_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/a64emit/internal/features"
)

func TestEnableFromEnvironment(t *testing.T) {
	t.Setenv(features.EnvVarName, "hugepages, nope,heapmem,hugepages")
	features.EnableFromEnvironment()

	require.Equal(t, []string{"hugepages", "heapmem"}, features.List())
	require.True(t, features.Have("hugepages"))
	require.True(t, features.Have("heapmem"))
	require.False(t, features.Have("nope"))
}

func TestBufferSize(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv(features.BufferSizeEnvVarName, "")
		n, err := features.BufferSize()
		require.NoError(t, err)
		require.Equal(t, 65536, n)
	})

	t.Run("from environment", func(t *testing.T) {
		t.Setenv(features.BufferSizeEnvVarName, "16MiB")
		n, err := features.BufferSize()
		require.NoError(t, err)
		require.Equal(t, 16<<20, n)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv(features.BufferSizeEnvVarName, "lots")
		_, err := features.BufferSize()
		require.Error(t, err)
	})

	t.Run("changed after first read", func(t *testing.T) {
		t.Setenv(features.BufferSizeEnvVarName, "4KiB")
		n, err := features.BufferSize()
		require.NoError(t, err)
		require.Equal(t, 4096, n)

		t.Setenv(features.BufferSizeEnvVarName, "8KiB")
		n, err = features.BufferSize()
		require.NoError(t, err)
		require.Equal(t, 8192, n)
	})
}

func TestParseSize(t *testing.T) {
	for _, tc := range []struct {
		in  string
		exp int
	}{
		{in: "4", exp: 4},
		{in: "4k", exp: 4096},
		{in: "1MiB", exp: 1 << 20},
		{in: "2g", exp: 2 << 30},
	} {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			n, err := features.ParseSize(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.exp, n)
		})
	}

	for _, in := range []string{"0", "6", "-4", "many"} {
		_, err := features.ParseSize(in)
		require.Error(t, err, in)
	}
}

func TestTrace(t *testing.T) {
	t.Setenv(features.TraceEnvVarName, "")
	require.False(t, features.Trace())
	t.Setenv(features.TraceEnvVarName, "1")
	require.True(t, features.Trace())
	t.Setenv(features.TraceEnvVarName, "")
	require.False(t, features.Trace())
}
