package index

import (
	"encoding/binary"
	"fmt"

	"github.com/syrahdb/syrah/codec"
)

// SharedView is a read-only index view that reads the int64 columns
// directly out of the serialized trailer bytes instead of materializing
// private copies.
//
// When the trailer bytes come from a memory-mapped region of the container
// file, every reader process mapping the same path shares the underlying
// pages, so N workers pay for one copy of the column data instead of N.
// Construct it once (typically before forking workers); it never mutates
// the blob and is safe for concurrent readers afterward. The view aliases
// the blob, so the mapping must stay valid for the view's lifetime.
type SharedView struct {
	data  []byte
	keys  []string
	cols  map[string]sharedColumn
	count int
}

// sharedColumn records where a key's flattened columns start inside the
// shared buffer. A lookup is start + 8*item.
type sharedColumn struct {
	offsetsStart int
	sizesStart   int
	tag          codec.TypeTag
}

var _ View = (*SharedView)(nil)

// NewSharedView parses a trailer blob without copying its columns. It
// applies the same integrity checks as Deserialize.
func NewSharedView(data []byte) (*SharedView, error) {
	d := decoder{data: data}

	keyCount, err := d.uvarint("key count")
	if err != nil {
		return nil, err
	}

	v := &SharedView{data: data, cols: make(map[string]sharedColumn, keyCount)}
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

		offsetsStart, offsetsLen, err := d.columnSpan("offsets")
		if err != nil {
			return nil, err
		}
		sizesStart, sizesLen, err := d.columnSpan("sizes")
		if err != nil {
			return nil, err
		}

		if offsetsLen != sizesLen {
			return nil, fmt.Errorf("%w: key %q has %d offsets but %d sizes", ErrCorrupt, key, offsetsLen, sizesLen)
		}
		if count >= 0 && offsetsLen != count {
			return nil, fmt.Errorf("%w: key %q has %d items, previous keys have %d", ErrCorrupt, key, offsetsLen, count)
		}
		count = offsetsLen

		if _, ok := v.cols[string(key)]; ok {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrCorrupt, key)
		}
		v.keys = append(v.keys, string(key))
		v.cols[string(key)] = sharedColumn{
			offsetsStart: offsetsStart,
			sizesStart:   sizesStart,
			tag:          codec.TypeTag(tag),
		}
	}
	if d.pos != len(d.data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(d.data)-d.pos)
	}
	if count > 0 {
		v.count = count
	}

	return v, nil
}

// columnSpan reads a column's length prefix and skips its body, returning
// the body's position and its element count.
func (d *decoder) columnSpan(what string) (start, n int, err error) {
	length, err := d.uvarint(what)
	if err != nil {
		return 0, 0, err
	}
	if length%8 != 0 {
		return 0, 0, fmt.Errorf("%w: %s column length %d is not a multiple of 8", ErrCorrupt, what, length)
	}
	if uint64(len(d.data)-d.pos) < length {
		return 0, 0, fmt.Errorf("%w: short buffer for %s", ErrCorrupt, what)
	}
	start = d.pos
	d.pos += int(length)
	return start, int(length / 8), nil
}

// Len returns the item count.
func (v *SharedView) Len() int { return v.count }

// Keys returns the key set in sorted order.
func (v *SharedView) Keys() []string { return v.keys }

// Offset returns the payload byte position of key's array for item i.
func (v *SharedView) Offset(i int, key string) (int64, error) {
	col, err := v.lookup(i, key, FieldOffset)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(v.data[col.offsetsStart+8*i:])), nil
}

// Size returns the payload byte length of key's array for item i.
func (v *SharedView) Size(i int, key string) (int64, error) {
	col, err := v.lookup(i, key, FieldSize)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(v.data[col.sizesStart+8*i:])), nil
}

// TypeTag returns the element type tag shared by all items for key.
func (v *SharedView) TypeTag(key string) (codec.TypeTag, error) {
	col, err := v.lookup(0, key, FieldTypeTag)
	if err != nil {
		return "", err
	}
	return col.tag, nil
}

func (v *SharedView) lookup(i int, key string, f Field) (sharedColumn, error) {
	col, ok := v.cols[key]
	if !ok {
		return sharedColumn{}, &ErrUnknownKey{Key: key}
	}
	if f.Kind() == PerItem && (i < 0 || i >= v.count) {
		return sharedColumn{}, &ErrOutOfRange{Index: i, Count: v.count}
	}
	return col, nil
}
