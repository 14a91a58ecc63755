//go:build darwin || freebsd || netbsd || openbsd

package platform

func mmapCodeSegment(size int) ([]byte, error) {
	return mapCodeSegment(size, 0)
}
