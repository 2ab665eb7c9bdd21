// Package index serializes the container's recursive directory/file tree
// to and from its flat, depth-first binary form.
//
// A directory entry is immediately followed by its descendants; the
// directory's usize slot holds the total count of flat entries belonging
// to it. Parsing reconstructs fully-qualified paths by prefixing each name
// with its ancestor chain.
package index

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/meigma/pak/internal/names"
)

// ErrCorrupt is returned when the index buffer cannot be trusted:
// a truncated entry header, a name without a terminator, or a child
// count larger than the remaining buffer could possibly hold.
var ErrCorrupt = errors.New("index: corrupt")

// Codec reads and writes the flat index for one layout.
type Codec struct {
	layout Layout
	logger *slog.Logger
}

// New creates a Codec for the given layout. A nil logger discards
// diagnostics.
func New(layout Layout, logger *slog.Logger) *Codec {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Codec{layout: layout, logger: logger}
}

// Layout returns the layout the codec was constructed with.
func (c *Codec) Layout() Layout { return c.layout }

// Serialize writes entries to the flat binary form in the order given.
//
// The caller supplies the pre-order list; Serialize neither reorders nor
// validates tree shape. Names that cannot be encoded as Shift-JIS fall
// back to UTF-8 with a warning.
func (c *Codec) Serialize(entries []Entry) []byte {
	var buf bytes.Buffer
	var hdr [headerSize]byte

	for i := range entries {
		e := &entries[i]
		if c.layout == LayoutLegacy && !e.Dir &&
			(e.Offset > math.MaxUint32 || e.Size > math.MaxUint32 || e.Packed > math.MaxUint32) {
			c.logger.Warn("entry does not fit the legacy layout's 32-bit fields, truncating",
				"path", e.Path, "offset", e.Offset, "size", e.Size, "packed", e.Packed)
		}
		c.layout.putHeader(hdr[:], e)
		buf.Write(hdr[:])

		raw, fallback := names.Encode(e.Name())
		if fallback {
			c.logger.Warn("name not representable in Shift-JIS, storing UTF-8", "path", e.Path)
		}
		buf.Write(raw)
		buf.WriteByte(0)
	}

	return buf.Bytes()
}

// Parse decodes rootCount top-level entries (and, recursively, their
// descendant blocks) from buf, returning the pre-order flat list with
// fully-qualified paths.
func (c *Codec) Parse(buf []byte, rootCount uint32) ([]Entry, error) {
	// Every entry needs at least minEntrySize bytes, so a count the
	// buffer cannot hold is corruption, not a deep tree.
	if int(rootCount) > len(buf)/minEntrySize {
		return nil, fmt.Errorf("%w: %d root entries declared, %d bytes remain", ErrCorrupt, rootCount, len(buf))
	}

	pos := 0
	var entries []Entry
	for i := uint32(0); i < rootCount; i++ {
		var e Entry
		var err error
		pos, e, err = c.readEntry(buf, pos, "")
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)

		if e.Dir {
			next, children, err := c.parseBlock(buf, pos, e.ChildCount, e.Path)
			if err != nil {
				return nil, err
			}
			entries = append(entries, children...)
			pos = next
		}
	}
	if pos < len(buf) {
		c.logger.Debug("trailing bytes after index entries", "pos", pos, "len", len(buf))
	}
	return entries, nil
}

// parseBlock consumes exactly budget flat entries starting at pos. A
// directory's serialized count is its total descendant count, so a nested
// directory's own block draws down the enclosing budget rather than
// adding to it.
func (c *Codec) parseBlock(buf []byte, pos int, budget uint32, prefix string) (int, []Entry, error) {
	if int(budget) > (len(buf)-pos)/minEntrySize {
		return 0, nil, fmt.Errorf("%w: %d entries declared at offset %d, %d bytes remain", ErrCorrupt, budget, pos, len(buf)-pos)
	}

	entries := make([]Entry, 0, budget)
	remaining := int(budget)
	for remaining > 0 {
		var e Entry
		var err error
		pos, e, err = c.readEntry(buf, pos, prefix)
		if err != nil {
			return 0, nil, err
		}
		remaining--
		entries = append(entries, e)

		if e.Dir {
			if int(e.ChildCount) > remaining {
				return 0, nil, fmt.Errorf("%w: directory %q declares %d descendants, %d entries remain in its parent's block",
					ErrCorrupt, e.Path, e.ChildCount, remaining)
			}
			next, children, err := c.parseBlock(buf, pos, e.ChildCount, e.Path)
			if err != nil {
				return 0, nil, err
			}
			entries = append(entries, children...)
			pos = next
			remaining -= int(e.ChildCount)
		}
	}

	return pos, entries, nil
}

// readEntry decodes one entry header and name at pos, returning the
// position after the name terminator.
func (c *Codec) readEntry(buf []byte, pos int, prefix string) (int, Entry, error) {
	if pos+headerSize > len(buf) {
		return 0, Entry{}, fmt.Errorf("%w: truncated entry header at offset %d", ErrCorrupt, pos)
	}

	var e Entry
	c.layout.readHeader(buf[pos:], &e)

	nameEnd := bytes.IndexByte(buf[pos+headerSize:], 0)
	if nameEnd < 0 {
		return 0, Entry{}, fmt.Errorf("%w: unterminated name at offset %d", ErrCorrupt, pos+headerSize)
	}
	name := names.Decode(buf[pos+headerSize : pos+headerSize+nameEnd])
	pos += headerSize + nameEnd + 1

	e.Path = name
	if prefix != "" {
		e.Path = prefix + "/" + name
	}

	if e.Attr&FlagDir != 0 {
		e.Dir = true
		if e.Size > uint64(len(buf)-pos)/minEntrySize {
			return 0, Entry{}, fmt.Errorf("%w: directory %q declares %d descendants, %d bytes remain", ErrCorrupt, e.Path, e.Size, len(buf)-pos)
		}
		e.ChildCount = uint32(e.Size)
		e.Offset, e.Size, e.Packed = 0, 0, 0
	}

	return pos, e, nil
}
