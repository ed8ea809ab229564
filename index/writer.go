package index

import (
	"encoding/binary"
	"slices"

	"github.com/syrahdb/syrah/codec"
)

// column holds the per-item metadata of one key plus its per-key type tag.
type column struct {
	offsets []int64
	sizes   []int64
	tag     codec.TypeTag
}

// Writer builds an index incrementally while items are written. It is
// append-only: entries are only ever added for the next item, fully in
// memory, and serialized exactly once when the file is closed.
type Writer struct {
	keys    []string // established by the first item, kept sorted
	columns map[string]*column
	count   int
}

// NewWriter creates an empty index writer.
func NewWriter() *Writer {
	return &Writer{columns: make(map[string]*column)}
}

// Len returns the number of items added so far.
func (w *Writer) Len() int { return w.count }

// Keys returns the established key set in sorted order.
func (w *Writer) Keys() []string { return w.keys }

// AddItem records the entries of the next item.
//
// The first call establishes the key set and, per key, the permanent type
// tag. Every call validates that the entry key set equals the established
// set (ErrSchemaMismatch), that each entry carries a valid offset, size and
// tag (ErrMalformedEntry), and that each key's tag matches the one recorded
// at first call (ErrTypeInconsistency).
func (w *Writer) AddItem(entries map[string]Entry) error {
	for _, e := range entries {
		if err := e.validate(); err != nil {
			return err
		}
	}

	if w.count == 0 && len(w.keys) == 0 {
		keys := make([]string, 0, len(entries))
		for key := range entries {
			keys = append(keys, key)
		}
		slices.Sort(keys)
		for _, key := range keys {
			w.columns[key] = &column{tag: entries[key].TypeTag}
		}
		w.keys = keys
	} else if err := w.checkKeys(entries); err != nil {
		return err
	}

	for key, e := range entries {
		col := w.columns[key]
		if e.TypeTag != col.tag {
			return &ErrTypeInconsistency{Key: key, Want: col.tag, Got: e.TypeTag}
		}
	}

	// Validation passed for the whole item; mutate the columns only now so
	// a rejected call leaves the index untouched.
	for key, e := range entries {
		col := w.columns[key]
		col.offsets = append(col.offsets, e.Offset)
		col.sizes = append(col.sizes, e.Size)
	}
	w.count++

	return nil
}

func (w *Writer) checkKeys(entries map[string]Entry) error {
	if len(entries) != len(w.keys) {
		return w.schemaMismatch(entries)
	}
	for _, key := range w.keys {
		if _, ok := entries[key]; !ok {
			return w.schemaMismatch(entries)
		}
	}
	return nil
}

func (w *Writer) schemaMismatch(entries map[string]Entry) error {
	got := make([]string, 0, len(entries))
	for key := range entries {
		got = append(got, key)
	}
	slices.Sort(got)
	return &ErrSchemaMismatch{Want: w.keys, Got: got}
}

// Serialize packs the index into its trailer blob (see the package doc for
// the layout). The item count is not stored; readers infer it from the
// column lengths.
func (w *Writer) Serialize() ([]byte, error) {
	// keyCount + per key: two short prefixes and strings + two 8-byte
	// prefixed int64 columns.
	size := binary.MaxVarintLen64
	for _, key := range w.keys {
		size += 2*binary.MaxVarintLen64 + len(key) + len(w.columns[key].tag)
		size += 2 * (binary.MaxVarintLen64 + 8*w.count)
	}
	buf := make([]byte, 0, size)

	buf = binary.AppendUvarint(buf, uint64(len(w.keys)))
	for _, key := range w.keys {
		col := w.columns[key]

		buf = binary.AppendUvarint(buf, uint64(len(key)))
		buf = append(buf, key...)

		buf = binary.AppendUvarint(buf, uint64(len(col.tag)))
		buf = append(buf, col.tag...)

		buf = appendColumn(buf, col.offsets)
		buf = appendColumn(buf, col.sizes)
	}
	return buf, nil
}

func appendColumn(buf []byte, xs []int64) []byte {
	buf = binary.AppendUvarint(buf, uint64(8*len(xs)))
	for _, x := range xs {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(x))
	}
	return buf
}
