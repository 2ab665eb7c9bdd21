package pak

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"

	"github.com/meigma/pak/internal/index"
)

// Manifest is the JSON interchange form of a container's index: the
// header fields plus the pre-order entry list. It exists for human
// inspection and for pre-staging a container's content outside the
// binary format; BuildManifest accepts it as an encode-time input.
type Manifest struct {
	Header  ManifestHeader  `json:"header"`
	Entries []ManifestEntry `json:"entries"`
}

// ManifestHeader mirrors the extended header. Offsets and sizes are
// informational on input: every build recomputes them.
type ManifestHeader struct {
	HeaderOffset uint32 `json:"header_offset"`
	IndexRel     uint32 `json:"index_rel"`
	RootCount    uint32 `json:"root_count"`
	IndexSize    uint32 `json:"index_uncompressed"`
	IndexPacked  uint32 `json:"index_compressed"`
	Unknown1     uint32 `json:"unknown1"`
	Unknown2     uint32 `json:"unknown2"`
}

// ManifestEntry is one entry of the interchange document. Type is "dir"
// or "file"; Offset, Packed, and Size are meaningful for files only, and
// TimeHex holds the raw 24-byte timestamp blob when present.
type ManifestEntry struct {
	Type       string `json:"type"`
	Path       string `json:"path"`
	Attributes uint32 `json:"attributes"`
	ChildCount uint32 `json:"child_count,omitempty"`
	Offset     uint64 `json:"offset"`
	Packed     uint64 `json:"compressed_size"`
	Size       uint64 `json:"uncompressed_size"`
	TimeHex    string `json:"time_hex,omitempty"`
}

const (
	entryTypeDir  = "dir"
	entryTypeFile = "file"
)

// Manifest produces the interchange document for a decoded archive.
func (a *Archive) Manifest() *Manifest {
	m := &Manifest{
		Header: ManifestHeader{
			HeaderOffset: a.header.Offset,
			IndexRel:     a.header.IndexRel,
			RootCount:    a.header.RootCount,
			IndexSize:    a.header.IndexSize,
			IndexPacked:  a.header.IndexPacked,
			Unknown1:     a.header.Reserved1,
			Unknown2:     a.header.Reserved2,
		},
		Entries: make([]ManifestEntry, 0, len(a.entries)),
	}

	for i := range a.entries {
		e := &a.entries[i]
		me := ManifestEntry{
			Path:       e.Path,
			Attributes: e.Attr,
		}
		if a.layout == LayoutTimed {
			me.TimeHex = hex.EncodeToString(e.Time[:])
		}
		if e.Dir {
			me.Type = entryTypeDir
			me.ChildCount = e.ChildCount
		} else {
			me.Type = entryTypeFile
			me.Offset = e.Offset
			me.Packed = e.Packed
			me.Size = e.Size
		}
		m.Entries = append(m.Entries, me)
	}
	return m
}

// ParseManifest decodes the JSON interchange document.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	for i := range m.Entries {
		if t := m.Entries[i].Type; t != entryTypeDir && t != entryTypeFile {
			return nil, fmt.Errorf("parse manifest: entry %q has unknown type %q", m.Entries[i].Path, t)
		}
	}
	return &m, nil
}

// JSON renders the manifest indented for inspection.
func (m *Manifest) JSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// BuildManifest encodes a container from a manifest and a filesystem
// holding the file content at each file entry's path. Entry order, child
// counts, attributes, timestamps, and the opaque header fields come from
// the manifest; offsets and sizes are recomputed.
func BuildManifest(ctx context.Context, m *Manifest, src fs.FS, opts ...Option) ([]byte, error) {
	entries := make([]BuildEntry, 0, len(m.Entries))
	for i := range m.Entries {
		me := &m.Entries[i]
		be := BuildEntry{
			Path: me.Path,
			Attr: me.Attributes,
		}
		if raw, err := hex.DecodeString(me.TimeHex); err == nil {
			copy(be.Time[:], raw)
		}
		switch me.Type {
		case entryTypeDir:
			be.Dir = true
			be.ChildCount = me.ChildCount
			if be.Attr == 0 {
				be.Attr = index.FlagDir
			}
		case entryTypeFile:
			be.Data = readFileFunc(src, me.Path)
		default:
			return nil, fmt.Errorf("manifest entry %q has unknown type %q", me.Path, me.Type)
		}
		entries = append(entries, be)
	}

	// Manifest header fields travel through unless explicitly overridden.
	buildOpts := append([]Option{
		WithHeaderLayout(m.Header.HeaderOffset, m.Header.IndexRel),
		WithReserved(m.Header.Unknown1, m.Header.Unknown2),
	}, opts...)

	return Build(ctx, entries, buildOpts...)
}
