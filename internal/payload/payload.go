// Package payload implements the container's raw DEFLATE transform:
// headerless streams, no checksum, exact size bookkeeping.
package payload

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// Sentinel errors. Callers match with errors.Is.
var (
	// ErrCorrupt is returned when a deflate stream cannot be inflated.
	ErrCorrupt = errors.New("payload: corrupt deflate stream")

	// ErrSize is returned when the inflated length disagrees with the
	// declared uncompressed size.
	ErrSize = errors.New("payload: size mismatch")
)

// Compress deflates data at maximum effort and returns the raw stream.
//
// Independent encodes of the same input are not guaranteed byte-identical;
// only the inflated content is.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("create deflate writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress inflates a raw deflate stream and verifies that it yields
// exactly expected bytes.
func Decompress(data []byte, expected int) ([]byte, error) {
	if expected < 0 {
		return nil, fmt.Errorf("%w: negative expected size %d", ErrSize, expected)
	}

	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	out := make([]byte, expected)
	n, err := io.ReadFull(r, out)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrSize, expected, n)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	// The stream must end exactly at the declared size.
	var extra [1]byte
	if m, _ := r.Read(extra[:]); m != 0 {
		return nil, fmt.Errorf("%w: stream longer than declared %d bytes", ErrSize, expected)
	}

	return out, nil
}
