package index

import "encoding/binary"

// Layout selects one of the two historically observed 52-byte entry
// header layouts. The container does not self-describe which layout it
// uses; the choice is the operator's.
type Layout int

const (
	// LayoutTimed is the layout current tooling emits:
	// offset u64, usize u64, csize u64, flags u32, 24-byte time blob.
	LayoutTimed Layout = iota

	// LayoutLegacy is the older layout: 13 little-endian u32 slots with
	// slot 0 = offset, slot 2 = usize/child count, slot 4 = csize,
	// slot 6 = flags, remaining slots zero. No timestamp.
	LayoutLegacy
)

// String implements fmt.Stringer for log and error output.
func (l Layout) String() string {
	switch l {
	case LayoutTimed:
		return "timed"
	case LayoutLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// headerSize is the fixed per-entry header width shared by both layouts.
const headerSize = 52

// minEntrySize is the smallest possible serialized entry: a fixed header,
// an empty name, and the null terminator. Used to bound child counts.
const minEntrySize = headerSize + 1

// putHeader writes the fixed header for e into dst[:headerSize].
// Directories populate only the usize slot (child count) and flags.
func (l Layout) putHeader(dst []byte, e *Entry) {
	le := binary.LittleEndian
	offset, usize, csize := e.Offset, e.Size, e.Packed
	if e.Dir {
		offset, usize, csize = 0, uint64(e.ChildCount), 0
	}

	switch l {
	case LayoutLegacy:
		clear(dst[:headerSize])
		le.PutUint32(dst[0:], uint32(offset))
		le.PutUint32(dst[8:], uint32(usize))
		le.PutUint32(dst[16:], uint32(csize))
		le.PutUint32(dst[24:], e.Attr)
	default:
		le.PutUint64(dst[0:], offset)
		le.PutUint64(dst[8:], usize)
		le.PutUint64(dst[16:], csize)
		le.PutUint32(dst[24:], e.Attr)
		copy(dst[28:headerSize], e.Time[:])
	}
}

// readHeader decodes the fixed header at src[:headerSize] into e.
// Path, Dir, and ChildCount are the parser's responsibility.
func (l Layout) readHeader(src []byte, e *Entry) {
	le := binary.LittleEndian

	switch l {
	case LayoutLegacy:
		e.Offset = uint64(le.Uint32(src[0:]))
		e.Size = uint64(le.Uint32(src[8:]))
		e.Packed = uint64(le.Uint32(src[16:]))
		e.Attr = le.Uint32(src[24:])
	default:
		e.Offset = le.Uint64(src[0:])
		e.Size = le.Uint64(src[8:])
		e.Packed = le.Uint64(src[16:])
		e.Attr = le.Uint32(src[24:])
		copy(e.Time[:], src[28:headerSize])
	}
}
