// Package version reports the version of the a64emit module the running binary was built with.
package version

import "runtime/debug"

// Default is returned when the version cannot be read from the build information, such as in
// tests or when built from a work tree.
const Default = "dev"

const modulePath = "github.com/tetratelabs/a64emit"

// GetVersion returns the version of this module as recorded by the Go toolchain.
func GetVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Default
	}
	return versionOf(info)
}

func versionOf(info *debug.BuildInfo) string {
	if info.Main.Path == modulePath && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	for _, dep := range info.Deps {
		if dep.Path == modulePath {
			return dep.Version
		}
	}
	return Default
}
