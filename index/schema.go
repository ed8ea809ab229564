package index

import "github.com/syrahdb/syrah/codec"

// Field identifies one metadata field of the index.
type Field uint8

const (
	FieldOffset Field = iota
	FieldSize
	FieldTypeTag
)

// String returns the string representation of the Field.
func (f Field) String() string {
	switch f {
	case FieldOffset:
		return "offset"
	case FieldSize:
		return "size"
	case FieldTypeTag:
		return "type_tag"
	default:
		return "unknown"
	}
}

// Kind tells whether a field stores one value per item or one value per key.
type Kind uint8

const (
	// PerItem fields are int64 columns with one entry per item.
	PerItem Kind = iota
	// PerKey fields hold a single value shared by every item of a key.
	PerKey
)

// Kind returns the declared kind of the field. The split is fixed by the
// format: offsets and sizes vary per item, the type tag never does.
func (f Field) Kind() Kind {
	if f == FieldTypeTag {
		return PerKey
	}
	return PerItem
}

// Entry is the metadata recorded for one key of one item.
type Entry struct {
	Offset  int64
	Size    int64
	TypeTag codec.TypeTag
}

// validate rejects entries that could not have come from a completed
// payload write.
func (e Entry) validate() error {
	if e.Offset < 0 || e.Size < 0 || e.TypeTag == "" {
		return ErrMalformedEntry
	}
	return nil
}

// View provides read-only access to a fully built index. It is implemented
// by Reader and SharedView; both are immutable after construction and safe
// for concurrent readers.
type View interface {
	// Len returns the item count.
	Len() int
	// Keys returns the key set in sorted order. The returned slice must
	// not be modified.
	Keys() []string
	// Offset returns the payload byte position of key's array for item i.
	Offset(i int, key string) (int64, error)
	// Size returns the payload byte length of key's array for item i.
	Size(i int, key string) (int64, error)
	// TypeTag returns the element type tag shared by all items for key.
	TypeTag(key string) (codec.TypeTag, error)
}
