package msc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompressionDecompressionStream_RoundTrip(t *testing.T) {
	cs := NewCompressionStream()
	require.NoError(t, cs.Compress([]byte("hello ")))
	require.NoError(t, cs.Compress([]byte("world")))
	compressed, err := cs.Finish()
	require.NoError(t, err)

	ds := NewDecompressionStream()
	require.NoError(t, ds.Decompress(compressed))
	out, err := ds.Finish()
	require.NoError(t, err)
	require.Equal(t, "hello world", string(out))
}

func TestCompressionStream_RejectsUseAfterFinish(t *testing.T) {
	cs := NewCompressionStream()
	_, err := cs.Finish()
	require.NoError(t, err)

	require.ErrorIs(t, cs.Compress([]byte("x")), ErrStreamClosed)
	_, err = cs.Finish()
	require.ErrorIs(t, err, ErrStreamClosed)
}

func TestDecompressionStream_RejectsUseAfterFinish(t *testing.T) {
	cs := NewCompressionStream()
	compressed, err := cs.Finish()
	require.NoError(t, err)

	ds := NewDecompressionStream()
	require.NoError(t, ds.Decompress(compressed))
	_, err = ds.Finish()
	require.NoError(t, err)

	require.ErrorIs(t, ds.Decompress([]byte("x")), ErrStreamClosed)
	_, err = ds.Finish()
	require.ErrorIs(t, err, ErrStreamClosed)
}

func TestCompressionStream_LargeInputSpansMultipleChunks(t *testing.T) {
	large := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 5000)

	cs := NewCompressionStream()
	require.NoError(t, cs.Compress([]byte(large)))
	compressed, err := cs.Finish()
	require.NoError(t, err)
	require.Less(t, len(compressed), len(large))

	ds := NewDecompressionStream()
	require.NoError(t, ds.Decompress(compressed))
	out, err := ds.Finish()
	require.NoError(t, err)
	require.Equal(t, large, string(out))
}
