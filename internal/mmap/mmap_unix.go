//go:build unix

package mmap

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func osMap(f *os.File, size int64) ([]byte, func([]byte) error, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("mmap %s: %w", f.Name(), err)
	}
	return data, unix.Munmap, nil
}

func osAdviseRandom(data []byte) error {
	return unix.Madvise(data, unix.MADV_RANDOM)
}
