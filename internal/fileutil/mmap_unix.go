//go:build unix

// Package fileutil wraps the platform memory-mapping primitives used for the
// read-only dictionary artifact.
package fileutil

import (
	"os"

	"golang.org/x/sys/unix"
)

// Mmap maps length bytes of f read-only and shared.
func Mmap(f *os.File, length int) ([]byte, error) {
	return unix.Mmap(int(f.Fd()), 0, length, unix.PROT_READ, unix.MAP_SHARED)
}

// Munmap releases a mapping produced by Mmap.
func Munmap(b []byte) error {
	return unix.Munmap(b)
}
