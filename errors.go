package syrah

import "errors"

var (
	// ErrInvalidMode is returned by Open for modes other than ModeRead
	// and ModeWrite.
	ErrInvalidMode = errors.New("invalid open mode")

	// ErrNotOpen is returned when an operation is attempted before Open
	// or after Close.
	ErrNotOpen = errors.New("file not open")

	// ErrWrongMode is returned when a read operation is attempted on a
	// write handle or vice versa.
	ErrWrongMode = errors.New("operation not permitted in this mode")

	// ErrCorruptHeader is returned when opening a file for read whose
	// header does not carry the syrah magic bytes or is too short.
	ErrCorruptHeader = errors.New("corrupt header")

	// ErrTypeMismatch is returned by AddItem when a value is not a
	// supported array type. It wraps the codec error.
	ErrTypeMismatch = errors.New("value is not a supported array type")
)
