package index

// TimeSize is the width of the per-entry timestamp blob in the timed
// layout. Its internal structure is unknown and is preserved opaquely.
const TimeSize = 24

// FlagDir marks an entry as a directory in the attribute flags. The
// remaining bits have no known meaning and are carried through unchanged.
const FlagDir = 0x10

// Entry is one node of the pre-order flat entry list.
//
// On the wire a directory immediately precedes its descendants; ChildCount
// is the total number of flat entries (direct children plus all nested
// descendants) that belong to it. Paths are not stored: they are rebuilt
// from the ancestor chain while parsing, and only the leaf name is written
// while serializing.
type Entry struct {
	// Path is the fully-qualified slash-separated path after parsing.
	// Serialization uses only the final path element.
	Path string

	// Dir reports whether Attr has FlagDir set.
	Dir bool

	// Offset is the file's byte offset relative to the data section.
	Offset uint64

	// Size is the file's uncompressed size in bytes.
	Size uint64

	// Packed is the file's compressed size in bytes. Equal to Size when
	// the payload is stored without compression.
	Packed uint64

	// ChildCount is the directory's total descendant count.
	ChildCount uint32

	// Attr holds the raw attribute flags.
	Attr uint32

	// Time is the raw timestamp blob (timed layout only).
	Time [TimeSize]byte
}

// Name returns the final element of the entry path.
func (e *Entry) Name() string {
	for i := len(e.Path) - 1; i >= 0; i-- {
		if e.Path[i] == '/' {
			return e.Path[i+1:]
		}
	}
	return e.Path
}
