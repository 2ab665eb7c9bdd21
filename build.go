package pak

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/pak/internal/header"
	"github.com/meigma/pak/internal/index"
	"github.com/meigma/pak/internal/payload"
)

// DataFunc supplies the raw bytes for one file descriptor. It is invoked
// once per build, possibly concurrently with other descriptors' funcs.
type DataFunc func() ([]byte, error)

// BuildEntry describes one node of the pre-order entry list handed to
// Build. Offsets and sizes are always recomputed; a BuildEntry carries
// only identity, attributes, and (for files) a byte source.
type BuildEntry struct {
	// Path is the slash-separated path. Only the final element is stored
	// in the index; the position in the list determines the tree shape.
	Path string

	// Dir marks a directory descriptor.
	Dir bool

	// ChildCount is the directory's total descendant count (direct
	// children plus all nested descendants).
	ChildCount uint32

	// Attr holds the raw attribute flags. The directory bit is forced to
	// match Dir.
	Attr uint32

	// Time is the opaque timestamp blob (timed layout only).
	Time [index.TimeSize]byte

	// Data supplies file content. nil for directories.
	Data DataFunc
}

// Build encodes a container from an ordered pre-order descriptor list.
//
// Files are compressed (concurrently, see WithWorkers) and placed in the
// data section contiguously in descriptor order; payloads that do not
// shrink under deflate are stored raw, which the decoder detects by
// compressed size equaling uncompressed size. A missing or unreadable
// byte source aborts the whole build with ErrSourceNotFound — no partial
// container is returned.
func Build(ctx context.Context, entries []BuildEntry, opts ...Option) ([]byte, error) {
	cfg := newConfig(opts)

	if err := validateTree(entries); err != nil {
		return nil, err
	}
	for i := range entries {
		if !entries[i].Dir && entries[i].Data == nil {
			return nil, fmt.Errorf("%w: %s: no byte source", ErrSourceNotFound, entries[i].Path)
		}
	}

	sizes := make([]uint64, len(entries))
	blobs := make([][]byte, len(entries))

	workers := cfg.workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range entries {
		i := i
		be := &entries[i]
		if be.Dir {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			raw, err := be.Data()
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrSourceNotFound, be.Path, err)
			}
			packed, err := payload.Compress(raw)
			if err != nil {
				return fmt.Errorf("compress %s: %w", be.Path, err)
			}
			// Store raw when deflate does not win. Equal lengths must be
			// stored raw: the decoder treats packed == size as stored.
			if len(packed) >= len(raw) {
				packed = raw
			}
			sizes[i] = uint64(len(raw))
			blobs[i] = packed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Single sequential pass: assign contiguous offsets in entry order.
	idxEntries := make([]index.Entry, len(entries))
	var data bytes.Buffer
	var cursor uint64
	for i := range entries {
		be := &entries[i]
		e := index.Entry{Path: be.Path, Attr: be.Attr, Time: be.Time}
		if be.Dir {
			e.Dir = true
			e.Attr |= index.FlagDir
			e.ChildCount = be.ChildCount
		} else {
			e.Attr &^= index.FlagDir
			e.Offset = cursor
			e.Size = sizes[i]
			e.Packed = uint64(len(blobs[i]))
			data.Write(blobs[i])
			cursor += e.Packed
		}
		idxEntries[i] = e
	}

	rawIndex := index.New(cfg.layout, cfg.logger).Serialize(idxEntries)
	packedIndex, err := payload.Compress(rawIndex)
	if err != nil {
		return nil, fmt.Errorf("compress index: %w", err)
	}

	hdr := header.Header{
		Offset:      cfg.headerOffset,
		IndexRel:    cfg.indexRel,
		RootCount:   rootEntryCount(idxEntries),
		IndexSize:   uint32(len(rawIndex)),
		IndexPacked: uint32(len(packedIndex)),
		Reserved1:   cfg.reserved1,
		Reserved2:   cfg.reserved2,
	}

	cfg.log().Info("container assembled",
		"entries", len(entries),
		"index_size", hdr.IndexSize,
		"index_packed", hdr.IndexPacked,
		"data_size", data.Len())

	out := hdr.Encode()
	out = append(out, packedIndex...)
	out = append(out, data.Bytes()...)
	return out, nil
}

// BuildFS encodes a container from a filesystem tree, walking fsys in
// lexical order. Directories are included (empty ones too); symlinks and
// other non-regular files are skipped. Child counts and root count are
// computed from the walk.
func BuildFS(ctx context.Context, fsys fs.FS, opts ...Option) ([]byte, error) {
	var entries []BuildEntry
	dirAt := make(map[string]int)

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == "." {
			return nil
		}
		if !d.IsDir() && !d.Type().IsRegular() {
			return nil
		}

		if d.IsDir() {
			dirAt[p] = len(entries)
			entries = append(entries, BuildEntry{Path: p, Dir: true, Attr: index.FlagDir})
		} else {
			entries = append(entries, BuildEntry{Path: p, Data: readFileFunc(fsys, p)})
		}

		// Every ancestor directory gains one descendant.
		for dir := path.Dir(p); dir != "."; dir = path.Dir(dir) {
			entries[dirAt[dir]].ChildCount++
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %v", ErrSourceNotFound, err)
		}
		return nil, err
	}

	return Build(ctx, entries, opts...)
}

// readFileFunc defers reading a file until the build pass, mapping a
// vanished file to ErrSourceNotFound at Build time.
func readFileFunc(fsys fs.FS, p string) DataFunc {
	return func() ([]byte, error) {
		return fs.ReadFile(fsys, p)
	}
}

// validateTree checks what the index codec deliberately does not: every
// directory's child count must fit in the entries that follow it.
func validateTree(entries []BuildEntry) error {
	for i := range entries {
		if entries[i].Dir && int(entries[i].ChildCount) > len(entries)-i-1 {
			return fmt.Errorf("%w: directory %q declares %d descendants, %d entries follow",
				ErrIndexCorrupt, entries[i].Path, entries[i].ChildCount, len(entries)-i-1)
		}
	}
	return nil
}

// rootEntryCount walks the flat list skipping each directory's descendant
// block to count depth-0 entries.
func rootEntryCount(entries []index.Entry) uint32 {
	var n uint32
	for i := 0; i < len(entries); {
		n++
		if entries[i].Dir {
			i += 1 + int(entries[i].ChildCount)
		} else {
			i++
		}
	}
	return n
}
