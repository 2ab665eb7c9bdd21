package pak

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// BuildFile packs the directory tree rooted at srcDir and writes the
// container to destPath. It is BuildFS + WriteContainer for callers
// working with plain paths.
func BuildFile(ctx context.Context, destPath, srcDir string, opts ...Option) error {
	data, err := BuildFS(ctx, os.DirFS(srcDir), opts...)
	if err != nil {
		return err
	}
	return WriteContainer(destPath, data)
}

// WriteContainer writes an encoded container to path atomically (temp
// file + rename), creating parent directories as needed.
func WriteContainer(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create container directory: %w", err)
		}
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("write container: %w", err)
	}
	return nil
}
