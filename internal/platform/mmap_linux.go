package platform

import (
	"golang.org/x/sys/unix"

	"github.com/tetratelabs/a64emit/internal/features"
)

// hugePageSize is the transparent huge page size of arm64 and amd64 kernels with 4KiB pages.
const hugePageSize = 2 << 20

func mmapCodeSegment(size int) ([]byte, error) {
	b, err := mapCodeSegment(size, 0)
	if err != nil {
		return nil, err
	}
	if features.Have("hugepages") && size&(hugePageSize-1) == 0 {
		// Advisory only: the kernel may ignore it when THP is disabled.
		_ = unix.Madvise(b, unix.MADV_HUGEPAGE)
	}
	return b, nil
}
