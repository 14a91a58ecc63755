package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionOf(t *testing.T) {
	for _, tc := range []struct {
		name string
		info debug.BuildInfo
		exp  string
	}{
		{name: "main module", info: debug.BuildInfo{Main: debug.Module{Path: modulePath, Version: "v1.2.3"}}, exp: "v1.2.3"},
		{name: "devel", info: debug.BuildInfo{Main: debug.Module{Path: modulePath, Version: "(devel)"}}, exp: Default},
		{
			name: "dependency",
			info: debug.BuildInfo{
				Main: debug.Module{Path: "example.com/host"},
				Deps: []*debug.Module{{Path: modulePath, Version: "v0.1.0"}},
			},
			exp: "v0.1.0",
		},
		{name: "unrelated", info: debug.BuildInfo{Main: debug.Module{Path: "example.com/host"}}, exp: Default},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.exp, versionOf(&tc.info))
		})
	}
}

func TestGetVersion(t *testing.T) {
	require.NotEmpty(t, GetVersion())
}
