// Package header encodes and decodes the container's fixed global and
// extended headers, including the offset-recovery heuristic on decode.
package header

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Magic identifies a container file.
var Magic = []byte{'P', 'A', 'K', 0}

const (
	// GlobalSize is the width of the global header at offset 0.
	GlobalSize = 16

	// ExtSize is the width of the extended header.
	ExtSize = 24

	// versionTag is written into the global header. Observed constant;
	// decoders do not require it to round-trip.
	versionTag = 0x00060010

	// DefaultOffset is the extended header offset written by this encoder.
	DefaultOffset = 16

	// DefaultIndexRel is the index offset relative to the extended header
	// written by this encoder.
	DefaultIndexRel = 24
)

// ErrHeader is returned when the magic does not match or no candidate
// offset yields a structurally valid extended header.
var ErrHeader = errors.New("header: invalid")

// Header holds the decoded global and extended header fields.
//
// Reserved1 and Reserved2 have unknown semantics and are carried through
// decode, manifest, and encode unchanged.
type Header struct {
	Offset      uint32 // extended header offset from container start
	IndexRel    uint32 // compressed index offset from the extended header
	RootCount   uint32 // flat entries at tree depth 0
	IndexSize   uint32 // uncompressed index size
	IndexPacked uint32 // compressed index size
	Reserved1   uint32
	Reserved2   uint32
}

// IndexOffset returns the compressed index offset from container start.
func (h Header) IndexOffset() uint32 { return h.Offset + h.IndexRel }

// DataOffset returns the data section offset from container start.
func (h Header) DataOffset() uint32 { return h.IndexOffset() + h.IndexPacked }

// Encode emits everything up to the compressed index: the global header,
// the extended header at Offset, and any declared padding before the
// index. Offset below GlobalSize or IndexRel below ExtSize take the
// defaults, so a zero Header encodes the canonical 40-byte layout.
func (h *Header) Encode() []byte {
	offset, indexRel := h.Offset, h.IndexRel
	if offset < GlobalSize {
		offset = DefaultOffset
	}
	if indexRel < ExtSize {
		indexRel = DefaultIndexRel
	}

	out := make([]byte, int(offset)+int(indexRel))
	le := binary.LittleEndian

	copy(out[0:], Magic)
	le.PutUint32(out[4:], offset)
	le.PutUint32(out[8:], versionTag)
	// out[12:16] reserved, always zero.

	ext := out[offset:]
	le.PutUint32(ext[0:], indexRel)
	le.PutUint32(ext[4:], h.Reserved1)
	le.PutUint32(ext[8:], h.RootCount)
	le.PutUint32(ext[12:], h.IndexSize)
	le.PutUint32(ext[16:], h.IndexPacked)
	le.PutUint32(ext[20:], h.Reserved2)

	return out
}

// Decode reads and validates the headers from a whole container.
//
// Some producers store more than the extended header offset in the global
// header's offset field. Decode tries the low 16 bits first, then the raw
// 32-bit value, and accepts the first candidate whose extended header fits
// the container, declares index sizes consistent with its root count
// (zero only for an empty tree), and derives an in-bounds data offset.
// This is a compatibility shim for observed containers, not a general
// recovery mechanism.
func Decode(container []byte) (Header, error) {
	if len(container) < GlobalSize {
		return Header{}, fmt.Errorf("%w: %d bytes is too short for the global header", ErrHeader, len(container))
	}
	if !bytes.Equal(container[:4], Magic) {
		return Header{}, fmt.Errorf("%w: bad magic %q", ErrHeader, container[:4])
	}

	le := binary.LittleEndian
	stored := le.Uint32(container[4:])

	candidates := []uint32{stored & 0xFFFF}
	if stored != candidates[0] {
		candidates = append(candidates, stored)
	}

	for _, c := range candidates {
		if int64(c)+ExtSize > int64(len(container)) {
			continue
		}
		ext := container[c : c+ExtSize]

		h := Header{
			Offset:      c,
			IndexRel:    le.Uint32(ext[0:]),
			Reserved1:   le.Uint32(ext[4:]),
			RootCount:   le.Uint32(ext[8:]),
			IndexSize:   le.Uint32(ext[12:]),
			IndexPacked: le.Uint32(ext[16:]),
			Reserved2:   le.Uint32(ext[20:]),
		}
		// An empty container legitimately declares a zero-size index. A
		// zero size alongside declared roots (or a packed blob claiming
		// to inflate to nothing) cannot be valid.
		empty := h.IndexSize == 0 && h.RootCount == 0
		if (h.IndexSize == 0 || h.IndexPacked == 0) && !empty {
			continue
		}
		dataOff := int64(c) + int64(h.IndexRel) + int64(h.IndexPacked)
		if dataOff > int64(len(container)) {
			continue
		}
		return h, nil
	}

	return Header{}, fmt.Errorf("%w: no valid extended header", ErrHeader)
}
