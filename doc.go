// Package pak encodes and decodes PAK archive containers: a single
// sequential file holding a compressed index of a directory/file tree
// followed by each file's raw-DEFLATE payload.
//
// A container is laid out as
//
//	global header | extended header | compressed index | data section
//
// where the index is the tree flattened depth-first, each directory
// carrying the count of flat entries that belong to it. Two historical
// index layouts exist ([LayoutTimed], [LayoutLegacy]); the container does
// not self-describe which one it uses, so callers select one with
// [WithLayout].
//
// Decode a container with [Decode] or [DecodeFile], then read single
// files with [Archive.ReadFile] or write the whole tree to disk with
// [Archive.ExtractDir]. Build containers from a filesystem tree with
// [BuildFS], from an explicit pre-order descriptor list with [Build], or
// from a JSON manifest with [BuildManifest].
//
// Round trips are content-identical, not byte-identical: the DEFLATE
// encoder is free to produce different bytes for the same input, and all
// offsets are recomputed on every encode.
package pak
