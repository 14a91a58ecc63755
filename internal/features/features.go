// Package features implements a feature flagging mechanism and the environment defaults of
// the emitter.
//
// Features are intended to control properties of the code that can only be
// enabled globally.
package features

import (
	"fmt"
	"strings"
	"sync"

	"github.com/docker/go-units"
	"github.com/xyproto/env/v2"
)

const (
	// EnvVarName is the name of the environment variable which contains the
	// list of feature flags.
	EnvVarName = "A64EMIT_FEATURES"

	// BufferSizeEnvVarName holds the default code buffer capacity, in a human-readable
	// form such as "64KiB" or "16MiB".
	BufferSizeEnvVarName = "A64EMIT_BUFFER_SIZE"

	// TraceEnvVarName enables the emission trace on stderr when set to a true value.
	TraceEnvVarName = "A64EMIT_TRACE"

	// DefaultBufferSize is used when BufferSizeEnvVarName is unset.
	DefaultBufferSize = 64 * units.KiB
)

var (
	lock sync.RWMutex
	list []string
)

func init() {
	// Read through to os.Getenv so values set after the first lookup are seen.
	env.Unload()
	EnableFromEnvironment()
}

// EnableFromEnvironment extracts the list of features enabled from the
// A64EMIT_FEATURES environment variable.
func EnableFromEnvironment() {
	Enable(strings.Split(env.Str(EnvVarName), ",")...)
}

// Enable the list of features passed as arguments.
//
// The function is idempotent and atomic, features that are already present are
// skipped.
//
// Unrecognized features are ignored.
func Enable(features ...string) {
	lock.Lock()
	defer lock.Unlock()

	enabled := list

	for _, f := range features {
		f = strings.TrimSpace(f)
		if supported(f) && !have(enabled, f) {
			enabled = append(enabled, f)
		}
	}

	list = enabled
}

// List returns the current list of features enabled.
//
// The program must treat the returned slice as read-only.
func List() []string {
	lock.RLock()
	defer lock.RUnlock()
	return list
}

// Have returns true if the given feature is enabled.
func Have(feature string) bool {
	lock.RLock()
	features := list
	lock.RUnlock()
	return have(features, feature)
}

func have(list []string, feature string) bool {
	for _, f := range list {
		if f == feature {
			return true
		}
	}
	return false
}

func supported(feature string) bool {
	switch feature {
	case "hugepages", "heapmem":
		return true
	default:
		return false
	}
}

// BufferSize returns the code buffer capacity configured in the environment, or
// DefaultBufferSize.
func BufferSize() (int, error) {
	s := env.Str(BufferSizeEnvVarName)
	if s == "" {
		return DefaultBufferSize, nil
	}
	return ParseSize(s)
}

// ParseSize parses a human-readable byte size. Sizes must be positive multiples of 4, the
// width of one instruction.
func ParseSize(s string) (int, error) {
	n, err := units.RAMInBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n <= 0 || n%4 != 0 {
		return 0, fmt.Errorf("invalid size %q: must be a positive multiple of 4 bytes", s)
	}
	return int(n), nil
}

// Trace reports whether TraceEnvVarName is set to a true value.
func Trace() bool {
	return env.Bool(TraceEnvVarName)
}
