package header

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// container assembles a minimal container: encoded headers plus a fake
// index blob of h.IndexPacked bytes and data bytes.
func container(t *testing.T, h Header, dataLen int) []byte {
	t.Helper()
	out := h.Encode()
	out = append(out, make([]byte, int(h.IndexPacked)+dataLen)...)
	return out
}

func TestEncodeLayout(t *testing.T) {
	t.Parallel()

	h := Header{
		RootCount:   3,
		IndexSize:   120,
		IndexPacked: 60,
		Reserved1:   0xAABB,
		Reserved2:   0xCCDD,
	}
	out := h.Encode()
	require.Len(t, out, GlobalSize+ExtSize)

	le := binary.LittleEndian
	assert.Equal(t, Magic, out[:4])
	assert.Equal(t, uint32(DefaultOffset), le.Uint32(out[4:]))
	assert.Zero(t, le.Uint32(out[12:]), "reserved global field must be zero")

	ext := out[DefaultOffset:]
	assert.Equal(t, uint32(DefaultIndexRel), le.Uint32(ext[0:]))
	assert.Equal(t, uint32(0xAABB), le.Uint32(ext[4:]))
	assert.Equal(t, uint32(3), le.Uint32(ext[8:]))
	assert.Equal(t, uint32(120), le.Uint32(ext[12:]))
	assert.Equal(t, uint32(60), le.Uint32(ext[16:]))
	assert.Equal(t, uint32(0xCCDD), le.Uint32(ext[20:]))
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	in := Header{RootCount: 2, IndexSize: 100, IndexPacked: 40, Reserved1: 7, Reserved2: 9}
	buf := container(t, in, 10)

	got, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(DefaultOffset), got.Offset)
	assert.Equal(t, uint32(DefaultIndexRel), got.IndexRel)
	assert.Equal(t, in.RootCount, got.RootCount)
	assert.Equal(t, in.IndexSize, got.IndexSize)
	assert.Equal(t, in.IndexPacked, got.IndexPacked)
	assert.Equal(t, in.Reserved1, got.Reserved1)
	assert.Equal(t, in.Reserved2, got.Reserved2)
	assert.Equal(t, uint32(40), got.IndexOffset())
	assert.Equal(t, uint32(80), got.DataOffset())
}

func TestDecodeBadMagic(t *testing.T) {
	t.Parallel()

	buf := container(t, Header{IndexSize: 1, IndexPacked: 1}, 0)
	buf[0] = 'Q'

	_, err := Decode(buf)
	assert.ErrorIs(t, err, ErrHeader)
}

func TestDecodeTooShort(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte("PAK\x00"))
	assert.ErrorIs(t, err, ErrHeader)
}

func TestDecodeHighBitsIgnored(t *testing.T) {
	t.Parallel()

	// Some producers store extra data in the upper half of the offset
	// field. The low 16 bits still locate a valid extended header.
	buf := container(t, Header{IndexSize: 10, IndexPacked: 5}, 0)
	binary.LittleEndian.PutUint32(buf[4:], 0xABCD0000|DefaultOffset)

	got, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(DefaultOffset), got.Offset)
}

func TestDecodeFullFieldFallback(t *testing.T) {
	t.Parallel()

	// Extended header placed beyond the 16-bit range: only the raw
	// 32-bit interpretation finds it.
	const off = 0x12340
	buf := make([]byte, off+ExtSize+5)
	copy(buf, Magic)
	le := binary.LittleEndian
	le.PutUint32(buf[4:], off)

	ext := buf[off:]
	le.PutUint32(ext[0:], ExtSize) // index immediately follows
	le.PutUint32(ext[12:], 20)     // uncompressed
	le.PutUint32(ext[16:], 5)      // compressed

	got, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(off), got.Offset)
	assert.Equal(t, uint32(off+ExtSize+5), got.DataOffset())
}

func TestDecodeRejectsZeroIndexSizesWithRoots(t *testing.T) {
	t.Parallel()

	// Declared roots cannot live in a zero-size index.
	buf := container(t, Header{RootCount: 3, IndexSize: 0, IndexPacked: 0}, 0)

	_, err := Decode(buf)
	assert.ErrorIs(t, err, ErrHeader)
}

func TestDecodeRejectsZeroPackedNonZeroSize(t *testing.T) {
	t.Parallel()

	buf := container(t, Header{RootCount: 1, IndexSize: 64, IndexPacked: 0}, 64)

	_, err := Decode(buf)
	assert.ErrorIs(t, err, ErrHeader)
}

func TestDecodeAcceptsEmptyIndex(t *testing.T) {
	t.Parallel()

	// An empty tree: no roots, nothing in the index.
	buf := container(t, Header{}, 0)

	got, err := Decode(buf)
	require.NoError(t, err)
	assert.Zero(t, got.RootCount)
	assert.Zero(t, got.IndexSize)
	assert.Equal(t, uint32(GlobalSize+ExtSize), got.DataOffset())
}

func TestDecodeRejectsOutOfBoundsData(t *testing.T) {
	t.Parallel()

	h := Header{IndexSize: 10, IndexPacked: 50}
	buf := h.Encode() // no index bytes appended: data offset exceeds length

	_, err := Decode(buf)
	assert.ErrorIs(t, err, ErrHeader)
}
