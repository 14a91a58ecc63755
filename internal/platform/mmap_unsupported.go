//go:build !(darwin || freebsd || netbsd || openbsd || linux)

package platform

import (
	"fmt"
	"runtime"
)

// ExecutableMemorySupported is true when code segments can be mapped and made executable.
const ExecutableMemorySupported = false

var errUnsupported = fmt.Errorf("mmap unsupported on GOOS=%s. Use heap memory instead.", runtime.GOOS)

func mmapCodeSegment(int) ([]byte, error) {
	panic(errUnsupported)
}

func munmapCodeSegment([]byte) error {
	panic(errUnsupported)
}

func mprotectRX([]byte) error {
	panic(errUnsupported)
}
