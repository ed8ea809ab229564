// Package syrah implements a single-writer, many-reader, random-access
// container for collections of named, independently typed numeric and byte
// arrays.
//
// A file is a fixed 22-byte header, an append-only payload region, and a
// serialized index trailer. The index maps every array key to per-item
// offset/size columns plus one type tag per key, so opening a file and
// fetching any item costs O(1) seeks instead of a scan.
//
// # Writing
//
//	f, err := syrah.Open(path, syrah.ModeWrite)
//	if err != nil { ... }
//	defer f.Close()
//
//	err = f.AddItem(map[string]any{
//		"label": []int32{4},
//		"vec":   []float32{0.1, 0.2, 0.3},
//	})
//
// The first item fixes the key set and each key's element type for the
// file's lifetime. Close serializes the index and finalizes the header.
//
// # Reading
//
//	f, err := syrah.Open(path, syrah.ModeRead)
//	if err != nil { ... }
//	defer f.Close()
//
//	vec, err := f.GetArray(1, "vec") // []float32
//	item, err := f.GetItem(2)        // map[string]any
//
// A handle is single-threaded: seek position is per-descriptor state, so
// concurrent consumers must each call Open on their own handle (each worker
// process re-opens the path rather than inheriting a descriptor). Any
// number of readers may work on a fully written file without coordination;
// exactly one writer is supported per file, and concurrent writers are
// undefined behavior.
//
// With WithSharedIndex the reader serves index lookups straight from a
// memory-mapped view of the trailer, so many reader processes on one
// machine share the page cache instead of each deserializing a private
// copy.
package syrah
