//go:build darwin || freebsd || netbsd || openbsd || linux

package platform

import "golang.org/x/sys/unix"

// ExecutableMemorySupported is true when code segments can be mapped and made executable.
const ExecutableMemorySupported = true

func mapCodeSegment(size, flags int) ([]byte, error) {
	// Anonymous as this is not an actual file, but a memory,
	// Private as this is in-process memory region.
	flags |= unix.MAP_ANON | unix.MAP_PRIVATE
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, flags)
}

func munmapCodeSegment(code []byte) error {
	return unix.Munmap(code)
}

func mprotectRX(code []byte) error {
	return unix.Mprotect(code, unix.PROT_READ|unix.PROT_EXEC)
}
