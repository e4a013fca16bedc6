//go:build !unix

package fileutil

import (
	"errors"
	"os"
)

var errUnsupported = errors.New("fileutil: mmap not supported on this platform")

// Mmap is unavailable here; callers fall back to reading the file.
func Mmap(f *os.File, length int) ([]byte, error) {
	return nil, errUnsupported
}

// Munmap matches the unix signature and never has anything to release.
func Munmap(b []byte) error {
	return nil
}
