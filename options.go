package pak

import (
	"io"
	"log/slog"

	"github.com/meigma/pak/internal/index"
)

// Re-exported index types. The index layout is part of the public
// contract: callers must know which layout their containers use.
type (
	// Entry is one node of the decoded pre-order entry list.
	Entry = index.Entry

	// Layout selects the on-wire entry header layout.
	Layout = index.Layout
)

const (
	// LayoutTimed is the 52-byte entry header with 64-bit fields and a
	// 24-byte timestamp blob. This is the default.
	LayoutTimed = index.LayoutTimed

	// LayoutLegacy is the older 13-slot 32-bit entry header.
	LayoutLegacy = index.LayoutLegacy

	// FlagDir is the attribute bit marking a directory entry.
	FlagDir = index.FlagDir
)

// config carries the knobs shared by Decode and Build.
type config struct {
	layout       Layout
	logger       *slog.Logger
	maxFileSize  uint64
	workers      int
	headerOffset uint32
	indexRel     uint32
	reserved1    uint32
	reserved2    uint32
}

func newConfig(opts []Option) config {
	cfg := config{layout: LayoutTimed}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// log returns the configured logger, falling back to a discard logger.
func (c *config) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.logger
}

// Option configures Decode and Build.
type Option func(*config)

// WithLayout selects the index layout. The container format does not
// self-describe its layout; this is an operator decision. Default
// LayoutTimed.
func WithLayout(l Layout) Option {
	return func(c *config) {
		c.layout = l
	}
}

// WithLogger attaches a logger for diagnostics (name-encoding fallbacks,
// structural warnings). nil discards.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMaxFileSize caps the per-entry compressed and uncompressed sizes
// honored during extraction. 0 disables the limit (default).
func WithMaxFileSize(limit uint64) Option {
	return func(c *config) {
		c.maxFileSize = limit
	}
}

// WithWorkers sets the number of concurrent per-file compressions during
// Build. 0 uses GOMAXPROCS (default); 1 forces the sequential path.
func WithWorkers(n int) Option {
	return func(c *config) {
		if n < 0 {
			n = 0
		}
		c.workers = n
	}
}

// WithHeaderLayout overrides the extended header offset and the index
// offset relative to it. Zero values keep the canonical 16/24 layout.
func WithHeaderLayout(headerOffset, indexRel uint32) Option {
	return func(c *config) {
		c.headerOffset = headerOffset
		c.indexRel = indexRel
	}
}

// WithReserved sets the two opaque extended-header fields. Their
// semantics are unknown; they round-trip unchanged.
func WithReserved(r1, r2 uint32) Option {
	return func(c *config) {
		c.reserved1 = r1
		c.reserved2 = r2
	}
}

// ExtractOption configures Archive.ExtractDir and Archive.ExtractAll.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	bestEffort bool
}

// ExtractWithBestEffort continues past per-file payload and range errors,
// returning them joined after all entries have been attempted. The
// default aborts on the first failing entry.
func ExtractWithBestEffort(enabled bool) ExtractOption {
	return func(c *extractConfig) {
		c.bestEffort = enabled
	}
}
