package index

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syrahdb/syrah/codec"
)

var (
	// ErrCorrupt is returned when a serialized index cannot be parsed or
	// its column lengths disagree.
	ErrCorrupt = errors.New("corrupt index")

	// ErrMalformedEntry is returned when an item entry carries an invalid
	// offset, size or type tag.
	ErrMalformedEntry = errors.New("malformed index entry")
)

// ErrOutOfRange indicates an item index at or beyond the item count.
type ErrOutOfRange struct {
	Index int
	Count int
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("item %d out of range (%d items)", e.Index, e.Count)
}

// ErrUnknownKey indicates a key absent from the index.
type ErrUnknownKey struct {
	Key string
}

func (e *ErrUnknownKey) Error() string {
	return fmt.Sprintf("unknown key %q", e.Key)
}

// ErrSchemaMismatch indicates an item whose key set differs from the key
// set established by the first item.
type ErrSchemaMismatch struct {
	Want []string
	Got  []string
}

func (e *ErrSchemaMismatch) Error() string {
	return fmt.Sprintf("item keys {%s} do not match established keys {%s}",
		strings.Join(e.Got, ", "), strings.Join(e.Want, ", "))
}

// ErrTypeInconsistency indicates a key whose type tag changed after being
// set by the first item.
type ErrTypeInconsistency struct {
	Key  string
	Want codec.TypeTag
	Got  codec.TypeTag
}

func (e *ErrTypeInconsistency) Error() string {
	return fmt.Sprintf("key %q has type %q, previously recorded as %q", e.Key, e.Got, e.Want)
}
