// Package index implements the per-key columnar table that makes random
// access into a syrah container possible.
//
// For every array key the index holds two parallel int64 columns, offsets
// and sizes, with one entry per item, plus a single type tag shared by all
// items for that key. The whole table is built append-only in memory while
// writing and serialized exactly once as the file trailer; readers
// deserialize it once at open and treat it as immutable.
//
// # Serialized layout
//
// The trailer is a length-prefixed binary blob, little-endian throughout:
//
//	uvarint key_count
//	per key, in sorted key order:
//	  uvarint len(key)      key bytes
//	  uvarint len(tag)      tag bytes
//	  uvarint len(offsets)  offsets column, raw int64 (8 bytes per item)
//	  uvarint len(sizes)    sizes column,   raw int64
//
// No item count is stored; readers infer it from the column lengths and
// require every column of every key to agree.
package index
