package pak

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ExtractAll returns the uncompressed content of every file entry, keyed
// by fully-qualified path.
//
// By default the first failing entry aborts the extraction. With
// ExtractWithBestEffort, per-file payload, size, and range errors are
// collected and returned joined, and every other file is still extracted.
func (a *Archive) ExtractAll(opts ...ExtractOption) (map[string][]byte, error) {
	cfg := extractConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	out := make(map[string][]byte, len(a.entries))
	var errs []error
	for i := range a.entries {
		e := &a.entries[i]
		if e.Dir {
			continue
		}
		content, err := a.fileBytes(e)
		if err != nil {
			if !cfg.bestEffort {
				return nil, err
			}
			a.logger.Warn("skipping entry", "path", e.Path, "error", err)
			errs = append(errs, err)
			continue
		}
		out[e.Path] = content
	}
	return out, errors.Join(errs...)
}

// ExtractDir writes the archive's tree under destDir.
//
// Directory entries become directories; file entries are written
// atomically via a temp file and rename. Entry paths must be valid
// slash-separated relative paths; anything else (absolute, "..", NUL)
// aborts regardless of best-effort mode.
func (a *Archive) ExtractDir(destDir string, opts ...ExtractOption) error {
	cfg := extractConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	for i := range a.entries {
		if !fs.ValidPath(a.entries[i].Path) {
			return &fs.PathError{Op: "extract", Path: a.entries[i].Path, Err: fs.ErrInvalid}
		}
	}

	var errs []error
	for i := range a.entries {
		e := &a.entries[i]
		target := filepath.Join(destDir, filepath.FromSlash(e.Path))

		if e.Dir {
			if err := os.MkdirAll(target, 0o750); err != nil {
				return fmt.Errorf("extract %s: %w", e.Path, err)
			}
			continue
		}

		content, err := a.fileBytes(e)
		if err != nil {
			if !cfg.bestEffort {
				return err
			}
			a.logger.Warn("skipping entry", "path", e.Path, "error", err)
			errs = append(errs, err)
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
			return fmt.Errorf("extract %s: %w", e.Path, err)
		}
		if err := writeFileAtomic(target, content); err != nil {
			return fmt.Errorf("extract %s: %w", e.Path, err)
		}
		a.logger.Debug("extracted", "path", e.Path, "size", e.Size)
	}
	return errors.Join(errs...)
}

// writeFileAtomic writes data to a temp file then renames it over target,
// so a failed extraction never leaves a truncated file behind.
func writeFileAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".pak-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
