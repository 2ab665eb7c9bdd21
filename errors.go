package pak

import (
	"errors"

	"github.com/meigma/pak/internal/header"
	"github.com/meigma/pak/internal/index"
)

// Errors re-exported from the internal codecs.
var (
	// ErrHeader is returned when the magic does not match or no candidate
	// offset yields a valid extended header. Decode cannot proceed.
	ErrHeader = header.ErrHeader

	// ErrIndexCorrupt is returned when the index cannot be trusted: a
	// truncated entry header, an unterminated name, or a child count
	// exceeding the remaining buffer. Fatal for the whole parse.
	ErrIndexCorrupt = index.ErrCorrupt
)

// Errors raised by the assembler and extractor.
var (
	// ErrPayload is returned when a deflate stream is malformed, or when
	// the inflated index disagrees with its declared size.
	ErrPayload = errors.New("pak: payload")

	// ErrSizeMismatch is returned when a file's inflated length disagrees
	// with its declared uncompressed size. Fatal per entry; skippable with
	// ExtractWithBestEffort.
	ErrSizeMismatch = errors.New("pak: size mismatch")

	// ErrRange is returned when an entry's data slice would exceed the
	// container bounds.
	ErrRange = errors.New("pak: out of range")

	// ErrSourceNotFound is returned when a file referenced by a build
	// input cannot be read. The whole build aborts; no partial container
	// is produced.
	ErrSourceNotFound = errors.New("pak: source not found")
)
