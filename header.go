package syrah

import (
	"encoding/binary"
	"fmt"
)

// Format constants. The byte order of every header field and payload is
// little-endian; this is part of the format's compatibility contract.
const (
	// headerSize is the fixed header region: magic (2) + version (4) +
	// index offset (8) + index length (8). Payloads start right after it.
	headerSize = 22

	magicOff   = 0
	versionOff = 2
	indexOff   = 6
	lengthOff  = 14
)

// magicBytes identifies a syrah container; validated on open for read.
var magicBytes = [2]byte{'G', 'S'}

// Format version written into new files: a reserved leading byte plus
// major, minor, patch. Informational; readers do not reject on mismatch.
const (
	versionMajor = 0
	versionMinor = 3
	versionPatch = 0
)

// fileHeader is the fixed-size header at offset 0 of every container.
// In write mode a provisional header with zeroed index fields is written
// first and rewritten in place at close with the final trailer position.
type fileHeader struct {
	version     [4]byte // reserved, major, minor, patch
	indexOffset int64
	indexLength int64
}

func newFileHeader() *fileHeader {
	return &fileHeader{version: [4]byte{0, versionMajor, versionMinor, versionPatch}}
}

// Version returns the header's format version as "major.minor.patch".
func (h *fileHeader) Version() string {
	return fmt.Sprintf("%d.%d.%d", h.version[1], h.version[2], h.version[3])
}

func (h *fileHeader) encode() []byte {
	buf := make([]byte, headerSize)
	copy(buf[magicOff:], magicBytes[:])
	copy(buf[versionOff:], h.version[:])
	binary.LittleEndian.PutUint64(buf[indexOff:], uint64(h.indexOffset))
	binary.LittleEndian.PutUint64(buf[lengthOff:], uint64(h.indexLength))
	return buf
}

func decodeHeader(buf []byte) (*fileHeader, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes, want at least %d", ErrCorruptHeader, len(buf), headerSize)
	}
	if buf[magicOff] != magicBytes[0] || buf[magicOff+1] != magicBytes[1] {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorruptHeader, buf[magicOff:magicOff+2])
	}

	h := &fileHeader{}
	copy(h.version[:], buf[versionOff:])
	h.indexOffset = int64(binary.LittleEndian.Uint64(buf[indexOff:]))
	h.indexLength = int64(binary.LittleEndian.Uint64(buf[lengthOff:]))
	return h, nil
}
