//go:build !unix

package mmap

import (
	"io"
	"os"
)

// Fallback for platforms without mmap: read the whole file into memory.
// Correct, but each process holds its own copy.
func osMap(f *os.File, size int64) ([]byte, func([]byte) error, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, nil, err
	}
	return data, nil, nil
}

func osAdviseRandom([]byte) error { return nil }
