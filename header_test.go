package syrah

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderEncodeDecode(t *testing.T) {
	h := newFileHeader()
	h.indexOffset = 1234
	h.indexLength = 567

	buf := h.encode()
	require.Len(t, buf, headerSize)

	// Byte-exact layout: magic, version, index offset, index length.
	assert.Equal(t, []byte{'G', 'S'}, buf[0:2])
	assert.Equal(t, []byte{0, versionMajor, versionMinor, versionPatch}, buf[2:6])
	assert.Equal(t, []byte{0xD2, 0x04, 0, 0, 0, 0, 0, 0}, buf[6:14])
	assert.Equal(t, []byte{0x37, 0x02, 0, 0, 0, 0, 0, 0}, buf[14:22])

	got, err := decodeHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, h.indexOffset, got.indexOffset)
	assert.Equal(t, h.indexLength, got.indexLength)
	assert.Equal(t, h.Version(), got.Version())
}

func TestDecodeHeaderBadMagic(t *testing.T) {
	buf := newFileHeader().encode()
	for i := 0; i < 2; i++ {
		corrupted := append([]byte{}, buf...)
		corrupted[i] ^= 0xFF
		_, err := decodeHeader(corrupted)
		require.ErrorIs(t, err, ErrCorruptHeader, "flipped byte %d", i)
	}
}

func TestDecodeHeaderShort(t *testing.T) {
	_, err := decodeHeader([]byte{'G', 'S', 0})
	require.ErrorIs(t, err, ErrCorruptHeader)

	_, err = decodeHeader(nil)
	require.ErrorIs(t, err, ErrCorruptHeader)
}

func TestDecodeHeaderIgnoresVersion(t *testing.T) {
	h := newFileHeader()
	h.version = [4]byte{0, 9, 9, 9}
	got, err := decodeHeader(h.encode())
	require.NoError(t, err)
	assert.Equal(t, "9.9.9", got.Version())
}
