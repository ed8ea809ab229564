package codec

import "fmt"

// ErrUnsupportedType indicates a value or tag outside the supported-type
// table. Unlisted types are rejected, never coerced.
type ErrUnsupportedType struct {
	// GoType is set when encoding rejected a Go value.
	GoType string
	// Tag is set when decoding rejected a type tag.
	Tag TypeTag
}

func (e *ErrUnsupportedType) Error() string {
	if e.GoType != "" {
		return fmt.Sprintf("unsupported array type %s", e.GoType)
	}
	return fmt.Sprintf("unsupported type tag %q", e.Tag)
}

// ErrMisalignedPayload indicates a payload whose byte length is not a
// multiple of the tagged element width.
type ErrMisalignedPayload struct {
	Tag    TypeTag
	Length int
	Width  int
}

func (e *ErrMisalignedPayload) Error() string {
	return fmt.Sprintf("payload length %d is not a multiple of %d (%s elements)", e.Length, e.Width, e.Tag)
}
