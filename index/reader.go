package index

import (
	"encoding/binary"
	"fmt"

	"github.com/syrahdb/syrah/codec"
)

// Reader is a fully deserialized, immutable index. It materializes the
// int64 columns in private memory; use SharedView instead when many reader
// processes should share one mapped copy.
type Reader struct {
	keys    []string
	columns map[string]column
	count   int
}

var _ View = (*Reader)(nil)

// Deserialize parses a trailer blob into a Reader. The item count is the
// common column length across all keys; disagreement or any framing damage
// fails with ErrCorrupt.
func Deserialize(data []byte) (*Reader, error) {
	d := decoder{data: data}

	keyCount, err := d.uvarint("key count")
	if err != nil {
		return nil, err
	}

	r := &Reader{columns: make(map[string]column, keyCount)}
	count := -1

	for i := uint64(0); i < keyCount; i++ {
		key, err := d.bytes("key")
		if err != nil {
			return nil, err
		}
		tag, err := d.bytes("type tag")
		if err != nil {
			return nil, err
		}
		offsets, err := d.column("offsets")
		if err != nil {
			return nil, err
		}
		sizes, err := d.column("sizes")
		if err != nil {
			return nil, err
		}

		if len(offsets) != len(sizes) {
			return nil, fmt.Errorf("%w: key %q has %d offsets but %d sizes", ErrCorrupt, key, len(offsets), len(sizes))
		}
		if count >= 0 && len(offsets) != count {
			return nil, fmt.Errorf("%w: key %q has %d items, previous keys have %d", ErrCorrupt, key, len(offsets), count)
		}
		count = len(offsets)

		if _, ok := r.columns[string(key)]; ok {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrCorrupt, key)
		}
		r.keys = append(r.keys, string(key))
		r.columns[string(key)] = column{
			offsets: offsets,
			sizes:   sizes,
			tag:     codec.TypeTag(tag),
		}
	}
	if d.pos != len(d.data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(d.data)-d.pos)
	}
	if count > 0 {
		r.count = count
	}

	return r, nil
}

// Len returns the item count.
func (r *Reader) Len() int { return r.count }

// Keys returns the key set in sorted order.
func (r *Reader) Keys() []string { return r.keys }

// Offset returns the payload byte position of key's array for item i.
func (r *Reader) Offset(i int, key string) (int64, error) {
	col, err := r.lookup(i, key, FieldOffset)
	if err != nil {
		return 0, err
	}
	return col.offsets[i], nil
}

// Size returns the payload byte length of key's array for item i.
func (r *Reader) Size(i int, key string) (int64, error) {
	col, err := r.lookup(i, key, FieldSize)
	if err != nil {
		return 0, err
	}
	return col.sizes[i], nil
}

// TypeTag returns the element type tag shared by all items for key.
func (r *Reader) TypeTag(key string) (codec.TypeTag, error) {
	col, err := r.lookup(0, key, FieldTypeTag)
	if err != nil {
		return "", err
	}
	return col.tag, nil
}

// lookup resolves key and, for per-item fields, bounds-checks i. Per-key
// fields ignore the item index.
func (r *Reader) lookup(i int, key string, f Field) (column, error) {
	col, ok := r.columns[key]
	if !ok {
		return column{}, &ErrUnknownKey{Key: key}
	}
	if f.Kind() == PerItem && (i < 0 || i >= r.count) {
		return column{}, &ErrOutOfRange{Index: i, Count: r.count}
	}
	return col, nil
}

// decoder walks a trailer blob. Every read is bounds-checked so damaged
// input degrades to ErrCorrupt, never a panic.
type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) uvarint(what string) (uint64, error) {
	v, n := binary.Uvarint(d.data[d.pos:])
	if n <= 0 {
		return 0, fmt.Errorf("%w: invalid %s length", ErrCorrupt, what)
	}
	d.pos += n
	return v, nil
}

func (d *decoder) bytes(what string) ([]byte, error) {
	n, err := d.uvarint(what)
	if err != nil {
		return nil, err
	}
	if uint64(len(d.data)-d.pos) < n {
		return nil, fmt.Errorf("%w: short buffer for %s", ErrCorrupt, what)
	}
	b := d.data[d.pos : d.pos+int(n)]
	d.pos += int(n)
	return b, nil
}

func (d *decoder) column(what string) ([]int64, error) {
	b, err := d.bytes(what)
	if err != nil {
		return nil, err
	}
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("%w: %s column length %d is not a multiple of 8", ErrCorrupt, what, len(b))
	}
	xs := make([]int64, len(b)/8)
	for i := range xs {
		xs[i] = int64(binary.LittleEndian.Uint64(b[8*i:]))
	}
	return xs, nil
}
