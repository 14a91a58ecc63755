package arm64

import (
	"fmt"
	"io"
	"os"

	"github.com/tetratelabs/a64emit/internal/features"
	"github.com/tetratelabs/a64emit/internal/platform"
)

// ExecutableMemorySupported is true when emitters can write into memory that can be made
// executable on this platform.
const ExecutableMemorySupported = platform.ExecutableMemorySupported

// EmitterConfig controls emitter behavior, with the default implementation as NewEmitterConfig.
//
// Values are immutable: every WithXxx method returns a modified copy.
type EmitterConfig struct {
	capacity   int
	executable bool
	trace      io.Writer
	// err is a problem found in the environment defaults, reported by NewEmitter.
	err error
}

// clone ensures all fields are copied even if nil.
func (c *EmitterConfig) clone() *EmitterConfig {
	return &EmitterConfig{
		capacity:   c.capacity,
		executable: c.executable,
		trace:      c.trace,
		err:        c.err,
	}
}

// NewEmitterConfig returns the default configuration, read from the environment:
//
//   - A64EMIT_BUFFER_SIZE sets the capacity, such as "16MiB". Defaults to 64KiB.
//   - A64EMIT_TRACE writes the emission trace to stderr when true.
//   - "heapmem" in A64EMIT_FEATURES disables executable memory.
func NewEmitterConfig() *EmitterConfig {
	ret := &EmitterConfig{
		executable: ExecutableMemorySupported && !features.Have("heapmem"),
	}
	ret.capacity, ret.err = features.BufferSize()
	if features.Trace() {
		ret.trace = os.Stderr
	}
	return ret
}

// WithCapacity sets the size of the code buffer in bytes. It must be a positive multiple of 4.
// Emission panics with ErrCapacity once the buffer is full.
func (c *EmitterConfig) WithCapacity(capacity int) *EmitterConfig {
	ret := c.clone()
	ret.capacity = capacity
	ret.err = nil
	return ret
}

// WithExecutableMemory selects memory mapped from the operating system, which Finalize makes
// read+execute, instead of Go heap memory. This defaults to ExecutableMemorySupported.
func (c *EmitterConfig) WithExecutableMemory(enabled bool) *EmitterConfig {
	ret := c.clone()
	ret.executable = enabled
	return ret
}

// WithTrace writes one line per emitted or backpatched word to w. nil disables tracing.
func (c *EmitterConfig) WithTrace(w io.Writer) *EmitterConfig {
	ret := c.clone()
	ret.trace = w
	return ret
}

func (c *EmitterConfig) validate() error {
	if c.err != nil {
		return c.err
	}
	if c.executable && !ExecutableMemorySupported {
		return fmt.Errorf("executable memory is not supported on this platform")
	}
	return nil
}
