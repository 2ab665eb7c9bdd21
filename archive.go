package pak

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/meigma/pak/internal/header"
	"github.com/meigma/pak/internal/index"
	"github.com/meigma/pak/internal/payload"
)

// Header holds the decoded global and extended header fields. Reserved
// fields are opaque and round-trip unchanged.
type Header = header.Header

// Archive is a decoded container: the header, the pre-order entry list
// with fully-qualified paths, and the raw container bytes for slicing
// file payloads.
type Archive struct {
	header  header.Header
	entries []index.Entry
	data    []byte
	layout  Layout
	logger  *slog.Logger
	maxSize uint64
}

// Decode parses a whole container.
//
// It locates and validates the headers, inflates the index blob, and
// parses the entry tree. File payloads are not touched until extraction.
// The data slice is retained by the Archive; callers must not modify it.
func Decode(data []byte, opts ...Option) (*Archive, error) {
	cfg := newConfig(opts)

	hdr, err := header.Decode(data)
	if err != nil {
		return nil, err
	}

	blob := data[hdr.IndexOffset():hdr.DataOffset()]
	raw, err := payload.Decompress(blob, int(hdr.IndexSize))
	if err != nil {
		return nil, fmt.Errorf("%w: index: %v", ErrPayload, err)
	}

	entries, err := index.New(cfg.layout, cfg.logger).Parse(raw, hdr.RootCount)
	if err != nil {
		return nil, err
	}

	a := &Archive{
		header:  hdr,
		entries: entries,
		data:    data,
		layout:  cfg.layout,
		logger:  cfg.log(),
		maxSize: cfg.maxFileSize,
	}

	if sum := a.packedTotal(); sum != uint64(len(data))-uint64(hdr.DataOffset()) {
		a.logger.Warn("data section length disagrees with entry sizes",
			"entries_total", sum, "data_section", uint64(len(data))-uint64(hdr.DataOffset()))
	}

	return a, nil
}

// DecodeFile reads and decodes a container from disk.
func DecodeFile(path string, opts ...Option) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, opts...)
}

// Header returns a copy of the decoded header.
func (a *Archive) Header() Header { return a.header }

// Layout returns the layout the archive was decoded with.
func (a *Archive) Layout() Layout { return a.layout }

// Len returns the number of entries, directories included.
func (a *Archive) Len() int { return len(a.entries) }

// Entries returns a copy of the pre-order entry list.
func (a *Archive) Entries() []Entry {
	out := make([]Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Entry returns the entry for the given slash-separated path.
func (a *Archive) Entry(path string) (Entry, bool) {
	for i := range a.entries {
		if a.entries[i].Path == path {
			return a.entries[i], true
		}
	}
	return Entry{}, false
}

// ReadFile returns the uncompressed content of the named file.
func (a *Archive) ReadFile(path string) ([]byte, error) {
	e, ok := a.Entry(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s: no such entry", ErrRange, path)
	}
	if e.Dir {
		return nil, fmt.Errorf("%w: %s: is a directory", ErrRange, path)
	}
	return a.fileBytes(&e)
}

// fileBytes slices an entry's payload out of the data section and
// inflates it unless it is stored uncompressed.
func (a *Archive) fileBytes(e *Entry) ([]byte, error) {
	if a.maxSize > 0 && (e.Size > a.maxSize || e.Packed > a.maxSize) {
		return nil, fmt.Errorf("%w: %s: entry exceeds configured size limit %d", ErrRange, e.Path, a.maxSize)
	}

	off := uint64(a.header.DataOffset()) + e.Offset
	if e.Offset > uint64(len(a.data)) || off+e.Packed > uint64(len(a.data)) || off+e.Packed < off {
		return nil, fmt.Errorf("%w: %s: bytes %d..%d, container holds %d",
			ErrRange, e.Path, off, off+e.Packed, len(a.data))
	}
	raw := a.data[off : off+e.Packed]

	// Stored without compression; zero-length entries always take this path.
	if e.Packed == e.Size {
		out := make([]byte, e.Size)
		copy(out, raw)
		return out, nil
	}

	out, err := payload.Decompress(raw, int(e.Size))
	if err != nil {
		if errors.Is(err, payload.ErrSize) {
			return nil, fmt.Errorf("%w: %s: %v", ErrSizeMismatch, e.Path, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrPayload, e.Path, err)
	}
	return out, nil
}

// packedTotal sums the compressed sizes of all file entries.
func (a *Archive) packedTotal() uint64 {
	var sum uint64
	for i := range a.entries {
		if !a.entries[i].Dir {
			sum += a.entries[i].Packed
		}
	}
	return sum
}
