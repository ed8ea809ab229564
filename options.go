package syrah

import "github.com/syrahdb/syrah/internal/fs"

type options struct {
	fsys        fs.FileSystem
	logger      *Logger
	sharedIndex bool
}

// Option configures Open behavior.
type Option func(*options)

// WithLogger configures the logger used for lifecycle events. If nil is
// passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithSharedIndex makes read handles serve index lookups from a read-only
// memory-mapped view of the trailer instead of a private deserialized
// copy. Reader processes mapping the same path then share the page cache.
// Ignored in write mode.
func WithSharedIndex() Option {
	return func(o *options) {
		o.sharedIndex = true
	}
}

// WithFileSystem overrides the file system implementation. Used in tests
// to inject faults.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys == nil {
			fsys = fs.Default
		}
		o.fsys = fsys
	}
}
