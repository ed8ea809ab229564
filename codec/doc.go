// Package codec maps array values to flat payload bytes and back.
//
// Syrah intentionally treats the payload encoding as a compatibility
// boundary: payloads are raw little-endian element spans with no header,
// so the bytes written here are the bytes on disk. Changing the encoding
// of any supported type is a breaking format change.
package codec
