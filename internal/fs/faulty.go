package fs

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// ErrInjected is the default error surfaced by injected faults.
var ErrInjected = errors.New("injected fault")

// Fault defines specific failure behavior for matching files.
type Fault struct {
	// FailAfterBytes fails writes once this many bytes were written to
	// the file. -1 disables the limit.
	FailAfterBytes int64
	FailOnSync     bool
	FailOnClose    bool
	Err            error
}

func (f Fault) err() error {
	if f.Err != nil {
		return f.Err
	}
	return ErrInjected
}

// FaultyFS is a FileSystem wrapper that injects errors into files whose
// name contains a registered pattern.
type FaultyFS struct {
	FS FileSystem

	mu    sync.Mutex
	rules map[string]Fault
}

// NewFaultyFS creates a FaultyFS wrapping fs (or Default if nil).
func NewFaultyFS(fsys FileSystem) *FaultyFS {
	if fsys == nil {
		fsys = Default
	}
	return &FaultyFS{FS: fsys, rules: make(map[string]Fault)}
}

// AddRule registers a fault for files whose name contains pattern.
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[pattern] = fault
}

func (f *FaultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	file, err := f.FS.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	fault := Fault{FailAfterBytes: -1}
	for pattern, rule := range f.rules {
		if strings.Contains(name, pattern) {
			fault = rule
		}
	}
	f.mu.Unlock()

	return &faultyFile{File: file, fault: fault}, nil
}

func (f *FaultyFS) Stat(name string) (os.FileInfo, error) { return f.FS.Stat(name) }

type faultyFile struct {
	File
	fault   Fault
	written int64
}

func (f *faultyFile) Write(p []byte) (int, error) {
	if err := f.checkWrite(len(p)); err != nil {
		return 0, err
	}
	return f.File.Write(p)
}

func (f *faultyFile) WriteAt(p []byte, off int64) (int, error) {
	if err := f.checkWrite(len(p)); err != nil {
		return 0, err
	}
	return f.File.WriteAt(p, off)
}

func (f *faultyFile) checkWrite(n int) error {
	if f.fault.FailAfterBytes >= 0 && f.written+int64(n) > f.fault.FailAfterBytes {
		return f.fault.err()
	}
	f.written += int64(n)
	return nil
}

func (f *faultyFile) Sync() error {
	if f.fault.FailOnSync {
		return f.fault.err()
	}
	return f.File.Sync()
}

func (f *faultyFile) Close() error {
	if f.fault.FailOnClose {
		_ = f.File.Close()
		return f.fault.err()
	}
	return f.File.Close()
}
