package syrah

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/syrahdb/syrah/codec"
	"github.com/syrahdb/syrah/index"
	"github.com/syrahdb/syrah/internal/fs"
	"github.com/syrahdb/syrah/internal/mmap"
)

// Mode selects how a container file is opened. It is fixed for the
// lifetime of a handle; there is no transition between read and write.
type Mode int

const (
	ModeRead Mode = iota + 1
	ModeWrite
)

// String returns the string representation of the Mode.
func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	default:
		return "invalid"
	}
}

// File is a handle onto one syrah container. It owns the descriptor, the
// header fields and the index, and performs single-threaded blocking I/O:
// a File must not be shared across goroutines or processes. Concurrent
// consumers each open their own handle on the same path.
type File struct {
	opts options

	path    string
	mode    Mode
	f       fs.File
	header  *fileHeader
	writer  *index.Writer // write mode
	view    index.View    // read mode
	mapping *mmap.Mapping // read mode with WithSharedIndex
	cursor  int64         // write mode: next payload position
}

// Open opens the container at path in the given mode.
//
// Write mode truncates or creates the file, writes a provisional header
// with zeroed index fields, and starts an empty index. Read mode validates
// the header and deserializes the index trailer; the payload region is
// only ever fetched lazily per lookup.
func Open(path string, mode Mode, opts ...Option) (*File, error) {
	o := options{fsys: fs.Default, logger: NoopLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	f := &File{opts: o}
	if err := f.Open(path, mode); err != nil {
		return nil, err
	}
	return f, nil
}

// Open re-opens the handle onto path, implicitly closing any prior handle
// first. Worker processes use this to obtain their own descriptor instead
// of inheriting one: seek position is per-descriptor state, so an
// inherited descriptor is not safe to share.
func (f *File) Open(path string, mode Mode) error {
	if mode != ModeRead && mode != ModeWrite {
		return fmt.Errorf("%w: %d", ErrInvalidMode, mode)
	}
	if f.f != nil {
		if err := f.Close(); err != nil {
			return err
		}
	}

	f.path = path
	f.mode = mode
	f.writer = nil
	f.view = nil
	f.mapping = nil
	f.cursor = 0

	var err error
	switch mode {
	case ModeRead:
		err = f.openRead()
	case ModeWrite:
		err = f.openWrite()
	}
	if err != nil {
		return err
	}

	f.opts.logger.Debug("opened container",
		"path", path,
		"mode", mode.String(),
		"items", f.NumItems(),
	)
	return nil
}

func (f *File) openWrite() error {
	file, err := f.opts.fsys.OpenFile(f.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.path, err)
	}

	f.header = newFileHeader()
	if _, err := file.WriteAt(f.header.encode(), 0); err != nil {
		_ = file.Close()
		return fmt.Errorf("write provisional header: %w", err)
	}

	f.f = file
	f.writer = index.NewWriter()
	f.cursor = headerSize
	return nil
}

func (f *File) openRead() error {
	file, err := f.opts.fsys.OpenFile(f.path, os.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.path, err)
	}

	buf := make([]byte, headerSize)
	n, err := file.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		_ = file.Close()
		return fmt.Errorf("read header: %w", err)
	}
	header, err := decodeHeader(buf[:n])
	if err != nil {
		_ = file.Close()
		return err
	}

	fi, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("stat %s: %w", f.path, err)
	}
	if header.indexOffset < headerSize || header.indexLength < 0 ||
		header.indexOffset+header.indexLength > fi.Size() {
		_ = file.Close()
		return fmt.Errorf("%w: index trailer [%d, %d) out of bounds (file size %d)",
			ErrCorruptHeader, header.indexOffset, header.indexOffset+header.indexLength, fi.Size())
	}

	view, mapping, err := f.loadIndex(file, header)
	if err != nil {
		_ = file.Close()
		return err
	}

	f.f = file
	f.header = header
	f.view = view
	f.mapping = mapping
	return nil
}

// loadIndex deserializes the trailer, either into private column slices or,
// with WithSharedIndex, into a zero-copy view over a mapping of the file.
func (f *File) loadIndex(file fs.File, header *fileHeader) (index.View, *mmap.Mapping, error) {
	if f.opts.sharedIndex {
		mapping, err := mmap.Open(f.path)
		if err != nil {
			return nil, nil, err
		}
		data := mapping.Bytes()
		if int64(len(data)) < header.indexOffset+header.indexLength {
			_ = mapping.Close()
			return nil, nil, fmt.Errorf("%w: mapping shorter than index trailer", ErrCorruptHeader)
		}
		_ = mapping.AdviseRandom()

		view, err := index.NewSharedView(data[header.indexOffset : header.indexOffset+header.indexLength])
		if err != nil {
			_ = mapping.Close()
			return nil, nil, err
		}
		return view, mapping, nil
	}

	blob := make([]byte, header.indexLength)
	if n, err := file.ReadAt(blob, header.indexOffset); err != nil && !(err == io.EOF && n == len(blob)) {
		return nil, nil, fmt.Errorf("read index trailer: %w", err)
	}
	view, err := index.Deserialize(blob)
	if err != nil {
		return nil, nil, err
	}
	return view, nil, nil
}

// AddItem appends one item to the container. Write mode only.
//
// Each value must be a supported array type (ErrTypeMismatch otherwise).
// Payloads are written at the current cursor in sorted key order, then the
// full entry map is handed to the index, which enforces the key set and
// per-key type stability established by the first item.
//
// A rejected AddItem does not roll back payload bytes already written for
// the call: the cursor stays advanced and the bytes become dead space that
// no index entry addresses. The file stays readable either way.
func (f *File) AddItem(item map[string]any) error {
	if f.f == nil {
		return ErrNotOpen
	}
	if f.mode != ModeWrite {
		return fmt.Errorf("%w: AddItem requires write mode, handle is %s", ErrWrongMode, f.mode)
	}

	keys := make([]string, 0, len(item))
	for key := range item {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	entries := make(map[string]index.Entry, len(item))
	for _, key := range keys {
		payload, tag, err := codec.Encode(item[key])
		if err != nil {
			return fmt.Errorf("key %q: %w: %w", key, ErrTypeMismatch, err)
		}

		n, err := f.f.WriteAt(payload, f.cursor)
		f.cursor += int64(n)
		if err != nil {
			return fmt.Errorf("write payload for key %q: %w", key, err)
		}

		entries[key] = index.Entry{
			Offset:  f.cursor - int64(n),
			Size:    int64(len(payload)),
			TypeTag: tag,
		}
	}

	return f.writer.AddItem(entries)
}

// GetItem reads every array of item i. Read mode only.
func (f *File) GetItem(i int) (map[string]any, error) {
	if f.f == nil {
		return nil, ErrNotOpen
	}
	if f.mode != ModeRead {
		return nil, fmt.Errorf("%w: GetItem requires read mode, handle is %s", ErrWrongMode, f.mode)
	}
	if i < 0 || i >= f.view.Len() {
		return nil, &index.ErrOutOfRange{Index: i, Count: f.view.Len()}
	}

	item := make(map[string]any, len(f.view.Keys()))
	for _, key := range f.view.Keys() {
		v, err := f.readArray(i, key, "")
		if err != nil {
			return nil, err
		}
		item[key] = v
	}
	return item, nil
}

// GetArray reads one array of item i. Read mode only.
func (f *File) GetArray(i int, key string) (any, error) {
	return f.getArray(i, key, "")
}

// GetArrayAs reads one array of item i, decoding its payload bytes as tag
// instead of the type recorded in the index. Escape hatch for
// reinterpreting a stored array.
func (f *File) GetArrayAs(i int, key string, tag codec.TypeTag) (any, error) {
	return f.getArray(i, key, tag)
}

func (f *File) getArray(i int, key string, override codec.TypeTag) (any, error) {
	if f.f == nil {
		return nil, ErrNotOpen
	}
	if f.mode != ModeRead {
		return nil, fmt.Errorf("%w: GetArray requires read mode, handle is %s", ErrWrongMode, f.mode)
	}
	return f.readArray(i, key, override)
}

func (f *File) readArray(i int, key string, override codec.TypeTag) (any, error) {
	offset, err := f.view.Offset(i, key)
	if err != nil {
		return nil, err
	}
	size, err := f.view.Size(i, key)
	if err != nil {
		return nil, err
	}
	tag, err := f.view.TypeTag(key)
	if err != nil {
		return nil, err
	}
	if override != "" {
		tag = override
	}

	// A full read that ends exactly at EOF may still report io.EOF; a
	// short read means the index points past the payload region.
	payload := make([]byte, size)
	if n, err := f.f.ReadAt(payload, offset); err != nil && !(err == io.EOF && n == len(payload)) {
		return nil, fmt.Errorf("read payload for key %q of item %d: %w", key, i, err)
	}
	return codec.Decode(payload, tag)
}

// NumItems returns the number of items in the container, 0 if no index is
// present.
func (f *File) NumItems() int {
	switch {
	case f.view != nil:
		return f.view.Len()
	case f.writer != nil:
		return f.writer.Len()
	default:
		return 0
	}
}

// Keys returns the container's key set in sorted order, nil if no index is
// present.
func (f *File) Keys() []string {
	switch {
	case f.view != nil:
		return f.view.Keys()
	case f.writer != nil:
		return f.writer.Keys()
	default:
		return nil
	}
}

// Version returns the format version recorded in the header, "" before the
// first Open.
func (f *File) Version() string {
	if f.header == nil {
		return ""
	}
	return f.header.Version()
}

// Close releases the handle. On a write handle it first flushes: the index
// trailer is written at the cursor, the header is rewritten in place with
// the final trailer position, and the file is synced. A failed flush is
// propagated — the header is never left pointing at an unwritten trailer,
// since the provisional header carries zeroed index fields until flush
// succeeds. Double close is a no-op.
func (f *File) Close() error {
	if f.f == nil {
		return nil
	}

	var flushErr error
	if f.mode == ModeWrite {
		flushErr = f.flush()
	}

	closeErr := f.f.Close()
	f.f = nil

	if f.mapping != nil {
		if err := f.mapping.Close(); err != nil && closeErr == nil {
			closeErr = err
		}
		f.mapping = nil
	}

	f.opts.logger.Debug("closed container", "path", f.path, "mode", f.mode.String())

	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// flush finalizes a write handle: trailer first, then the header that
// points at it, then sync.
func (f *File) flush() error {
	blob, err := f.writer.Serialize()
	if err != nil {
		return fmt.Errorf("serialize index: %w", err)
	}

	if _, err := f.f.WriteAt(blob, f.cursor); err != nil {
		return fmt.Errorf("write index trailer: %w", err)
	}
	f.header.indexOffset = f.cursor
	f.header.indexLength = int64(len(blob))

	if _, err := f.f.WriteAt(f.header.encode(), 0); err != nil {
		return fmt.Errorf("finalize header: %w", err)
	}
	if err := f.f.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	f.opts.logger.Debug("flushed container",
		"path", f.path,
		"items", f.writer.Len(),
		"index_offset", f.header.indexOffset,
		"index_length", f.header.indexLength,
	)
	return nil
}

// With opens the container at path, runs fn on the handle, and closes it
// on every exit path, including when fn fails or panics. The close error
// is returned when fn succeeds.
func With(path string, mode Mode, fn func(*File) error, opts ...Option) (err error) {
	f, err := Open(path, mode, opts...)
	if err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()
	return fn(f)
}
