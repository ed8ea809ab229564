// Package mmap provides read-only memory-mapped file access.
//
// The container engine uses it to expose the serialized index trailer as a
// shared, zero-copy buffer: every process mapping the same file shares the
// kernel's page-cache pages instead of holding a private copy.
//
// On platforms without mmap support the package falls back to reading the
// file into memory; callers keep working, they just lose the sharing.
package mmap

import (
	"os"
	"sync/atomic"
)

// Mapping represents a read-only memory-mapped file. It owns the mapped
// byte slice and is responsible for unmapping it.
type Mapping struct {
	data   []byte
	closed atomic.Bool
	// unmap is the platform-specific release function; nil for the
	// read-into-memory fallback and for empty files.
	unmap func([]byte) error
}

// Open maps the file at path into memory as read-only.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := fi.Size()
	if size == 0 {
		return &Mapping{}, nil
	}

	data, unmap, err := osMap(f, size)
	if err != nil {
		return nil, err
	}
	return &Mapping{data: data, unmap: unmap}, nil
}

// Bytes returns the mapped bytes. The slice, and any view taken into it,
// is valid only until Close.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int { return len(m.data) }

// AdviseRandom hints to the kernel that the mapping will be accessed at
// random offsets. Best effort; a no-op where unsupported.
func (m *Mapping) AdviseRandom() error {
	if m.closed.Load() || m.data == nil {
		return nil
	}
	return osAdviseRandom(m.data)
}

// Close unmaps the memory. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if m.unmap != nil && m.data != nil {
		err := m.unmap(m.data)
		m.data = nil
		return err
	}
	m.data = nil
	return nil
}
