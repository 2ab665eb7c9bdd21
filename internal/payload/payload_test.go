package payload

import (
	"bytes"
	"compress/flate"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	cases := map[string][]byte{
		"empty":          {},
		"small":          []byte("hello pak"),
		"zeros":          bytes.Repeat([]byte{0}, 4096),
		"incompressible": incompressible(1024),
	}
	for name, data := range cases {
		data := data
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			packed, err := Compress(data)
			require.NoError(t, err)
			require.NotEmpty(t, packed)

			got, err := Decompress(packed, len(data))
			require.NoError(t, err)
			assert.Equal(t, data, got)
		})
	}
}

func TestCompressEmitsRawStream(t *testing.T) {
	t.Parallel()

	packed, err := Compress([]byte("raw deflate, no framing"))
	require.NoError(t, err)

	// A raw stream must inflate with the stdlib flate reader: no zlib or
	// gzip header to strip, no trailing checksum.
	r := flate.NewReader(bytes.NewReader(packed))
	defer r.Close()
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("raw deflate, no framing"), got)
}

func TestDecompressShortDeclaredSize(t *testing.T) {
	t.Parallel()

	packed, err := Compress([]byte("0123456789"))
	require.NoError(t, err)

	_, err = Decompress(packed, 9)
	assert.ErrorIs(t, err, ErrSize)
}

func TestDecompressLongDeclaredSize(t *testing.T) {
	t.Parallel()

	packed, err := Compress([]byte("0123456789"))
	require.NoError(t, err)

	_, err = Decompress(packed, 11)
	assert.ErrorIs(t, err, ErrSize)
}

func TestDecompressCorruptStream(t *testing.T) {
	t.Parallel()

	_, err := Decompress([]byte{0xff, 0xff, 0xff, 0xff}, 16)
	require.Error(t, err)
}

func TestDecompressNegativeExpected(t *testing.T) {
	t.Parallel()

	_, err := Decompress(nil, -1)
	assert.ErrorIs(t, err, ErrSize)
}

// incompressible returns bytes with no structure for deflate to exploit.
func incompressible(n int) []byte {
	out := make([]byte, n)
	seed := uint32(0x9e3779b9)
	for i := range out {
		seed = seed*1664525 + 1013904223
		out[i] = byte(seed >> 24)
	}
	return out
}
