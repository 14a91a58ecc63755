// Package platform maps and protects the memory that holds emitted machine code.
package platform

import (
	"errors"
	"fmt"
)

// PageSize is the granule ADRP addresses. Code segments always start on a boundary of it.
const PageSize = 4096

// MmapCodeSegment maps a zeroed, writable region of size bytes suitable for holding code.
// Call MprotectRX once the code is complete to make it executable.
//
// See https://man7.org/linux/man-pages/man2/mmap.2.html for mmap API and flags.
func MmapCodeSegment(size int) ([]byte, error) {
	if size == 0 {
		panic(errors.New("BUG: MmapCodeSegment with zero length"))
	}
	b, err := mmapCodeSegment(size)
	if err != nil {
		return nil, fmt.Errorf("mmap %d bytes: %w", size, err)
	}
	return b, nil
}

// MunmapCodeSegment unmaps the given memory region.
func MunmapCodeSegment(code []byte) error {
	if len(code) == 0 {
		panic(errors.New("BUG: MunmapCodeSegment with zero length"))
	}
	return munmapCodeSegment(code)
}

// MprotectRX switches the region to read and execute, revoking write access.
func MprotectRX(code []byte) error {
	if len(code) == 0 {
		panic(errors.New("BUG: MprotectRX with zero length"))
	}
	return mprotectRX(code)
}
