package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// TypeTag is the compact identifier for an array's element type. It is
// stored once per key in the file index and shared by all items.
type TypeTag string

// Supported type tags.
const (
	Bool    TypeTag = "bool"
	Int8    TypeTag = "int8"
	Uint8   TypeTag = "uint8"
	Int16   TypeTag = "int16"
	Uint16  TypeTag = "uint16"
	Int32   TypeTag = "int32"
	Uint32  TypeTag = "uint32"
	Int64   TypeTag = "int64"
	Uint64  TypeTag = "uint64"
	Float32 TypeTag = "float32"
	Float64 TypeTag = "float64"
	String  TypeTag = "str"

	// Float16 and Float128 are reserved in the type table for
	// compatibility with files produced by other implementations.
	// Go has no element type for them, so Encode never emits these
	// tags and Decode rejects them as unsupported.
	Float16  TypeTag = "float16"
	Float128 TypeTag = "float128"
)

// tagIDs is the fixed bidirectional supported-type table, keyed by the
// numeric type ids of the original format.
var tagIDs = map[uint8]TypeTag{
	0:  Bool,
	1:  Int8,
	2:  Uint8,
	3:  Int16,
	4:  Uint16,
	5:  Int32,
	6:  Uint32,
	7:  Int64,
	8:  Uint64,
	11: Float32,
	12: Float64,
	13: Float128,
	19: String,
	23: Float16,
}

var idByTag = func() map[TypeTag]uint8 {
	m := make(map[TypeTag]uint8, len(tagIDs))
	for id, tag := range tagIDs {
		m[tag] = id
	}
	return m
}()

// TagByID returns the type tag for a numeric type id.
func TagByID(id uint8) (TypeTag, bool) {
	tag, ok := tagIDs[id]
	return tag, ok
}

// IDByTag returns the numeric type id for a type tag.
func IDByTag(tag TypeTag) (uint8, bool) {
	id, ok := idByTag[tag]
	return id, ok
}

// ElemSize returns the fixed element width in bytes for tag, or 0 for
// variable-width (text) and unsupported tags.
func ElemSize(tag TypeTag) int {
	switch tag {
	case Bool, Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	default:
		return 0
	}
}

// Encode serializes a supported array value to its flat payload bytes and
// the matching type tag.
//
// Numeric and boolean slices become raw little-endian element spans with no
// header; shape information is not stored. String slices are concatenated
// and encoded as UTF-8 under the str tag. Any other value fails with
// ErrUnsupportedType.
func Encode(v any) ([]byte, TypeTag, error) {
	switch xs := v.(type) {
	case []bool:
		buf := make([]byte, len(xs))
		for i, x := range xs {
			if x {
				buf[i] = 1
			}
		}
		return buf, Bool, nil
	case []int8:
		buf := make([]byte, len(xs))
		for i, x := range xs {
			buf[i] = byte(x)
		}
		return buf, Int8, nil
	case []uint8:
		buf := make([]byte, len(xs))
		copy(buf, xs)
		return buf, Uint8, nil
	case []int16:
		buf := make([]byte, 0, 2*len(xs))
		for _, x := range xs {
			buf = binary.LittleEndian.AppendUint16(buf, uint16(x))
		}
		return buf, Int16, nil
	case []uint16:
		buf := make([]byte, 0, 2*len(xs))
		for _, x := range xs {
			buf = binary.LittleEndian.AppendUint16(buf, x)
		}
		return buf, Uint16, nil
	case []int32:
		buf := make([]byte, 0, 4*len(xs))
		for _, x := range xs {
			buf = binary.LittleEndian.AppendUint32(buf, uint32(x))
		}
		return buf, Int32, nil
	case []uint32:
		buf := make([]byte, 0, 4*len(xs))
		for _, x := range xs {
			buf = binary.LittleEndian.AppendUint32(buf, x)
		}
		return buf, Uint32, nil
	case []int64:
		buf := make([]byte, 0, 8*len(xs))
		for _, x := range xs {
			buf = binary.LittleEndian.AppendUint64(buf, uint64(x))
		}
		return buf, Int64, nil
	case []uint64:
		buf := make([]byte, 0, 8*len(xs))
		for _, x := range xs {
			buf = binary.LittleEndian.AppendUint64(buf, x)
		}
		return buf, Uint64, nil
	case []float32:
		buf := make([]byte, 0, 4*len(xs))
		for _, x := range xs {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(x))
		}
		return buf, Float32, nil
	case []float64:
		buf := make([]byte, 0, 8*len(xs))
		for _, x := range xs {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(x))
		}
		return buf, Float64, nil
	case []string:
		return []byte(strings.Join(xs, "")), String, nil
	default:
		return nil, "", &ErrUnsupportedType{GoType: fmt.Sprintf("%T", v)}
	}
}

// Decode reinterprets payload bytes as a flat array of the tagged element
// type. The str tag yields a one-element []string holding the UTF-8 text.
// Unknown tags fail with ErrUnsupportedType; payloads whose length is not a
// multiple of the element width fail with ErrMisalignedPayload.
func Decode(payload []byte, tag TypeTag) (any, error) {
	if tag == String {
		return []string{string(payload)}, nil
	}

	width := ElemSize(tag)
	if width == 0 {
		return nil, &ErrUnsupportedType{Tag: tag}
	}
	if len(payload)%width != 0 {
		return nil, &ErrMisalignedPayload{Tag: tag, Length: len(payload), Width: width}
	}
	n := len(payload) / width

	switch tag {
	case Bool:
		xs := make([]bool, n)
		for i, b := range payload {
			xs[i] = b != 0
		}
		return xs, nil
	case Int8:
		xs := make([]int8, n)
		for i, b := range payload {
			xs[i] = int8(b)
		}
		return xs, nil
	case Uint8:
		xs := make([]uint8, n)
		copy(xs, payload)
		return xs, nil
	case Int16:
		xs := make([]int16, n)
		for i := range xs {
			xs[i] = int16(binary.LittleEndian.Uint16(payload[2*i:]))
		}
		return xs, nil
	case Uint16:
		xs := make([]uint16, n)
		for i := range xs {
			xs[i] = binary.LittleEndian.Uint16(payload[2*i:])
		}
		return xs, nil
	case Int32:
		xs := make([]int32, n)
		for i := range xs {
			xs[i] = int32(binary.LittleEndian.Uint32(payload[4*i:]))
		}
		return xs, nil
	case Uint32:
		xs := make([]uint32, n)
		for i := range xs {
			xs[i] = binary.LittleEndian.Uint32(payload[4*i:])
		}
		return xs, nil
	case Int64:
		xs := make([]int64, n)
		for i := range xs {
			xs[i] = int64(binary.LittleEndian.Uint64(payload[8*i:]))
		}
		return xs, nil
	case Uint64:
		xs := make([]uint64, n)
		for i := range xs {
			xs[i] = binary.LittleEndian.Uint64(payload[8*i:])
		}
		return xs, nil
	case Float32:
		xs := make([]float32, n)
		for i := range xs {
			xs[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[4*i:]))
		}
		return xs, nil
	case Float64:
		xs := make([]float64, n)
		for i := range xs {
			xs[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[8*i:]))
		}
		return xs, nil
	default:
		return nil, &ErrUnsupportedType{Tag: tag}
	}
}
