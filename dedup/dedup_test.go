package dedup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDedup_KeepsFirstOfEachFeature(t *testing.T) {
	compare := func(path string) (string, error) { return path[:1], nil }
	out, err := Dedup(compare, []string{"a1", "a2", "b1", "a3", "b2"})
	require.NoError(t, err)
	require.Equal(t, []string{"a1", "b1"}, out)
}

func TestDedup_EmptyInput(t *testing.T) {
	compare := func(path string) (string, error) { return path, nil }
	out, err := Dedup(compare, nil)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestChecksumComparisonFunction_IdenticalContentMatches(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "one.txt")
	p2 := filepath.Join(dir, "two.txt")
	p3 := filepath.Join(dir, "three.txt")
	require.NoError(t, os.WriteFile(p1, []byte("same content"), 0o644))
	require.NoError(t, os.WriteFile(p2, []byte("same content"), 0o644))
	require.NoError(t, os.WriteFile(p3, []byte("different content"), 0o644))

	compare := ChecksumComparisonFunction(nil)
	out, err := Dedup(compare, []string{p1, p2, p3})
	require.NoError(t, err)
	require.Equal(t, []string{p1, p3}, out)
}

func TestChecksumComparisonFunction_LargeFileAcrossChunkBoundary(t *testing.T) {
	dir := t.TempDir()
	big := make([]byte, chunkSize+100)
	for i := range big {
		big[i] = byte(i)
	}
	p1 := filepath.Join(dir, "big1.bin")
	p2 := filepath.Join(dir, "big2.bin")
	require.NoError(t, os.WriteFile(p1, big, 0o644))
	require.NoError(t, os.WriteFile(p2, big, 0o644))

	compare := ChecksumComparisonFunction(nil)
	out, err := Dedup(compare, []string{p1, p2})
	require.NoError(t, err)
	require.Equal(t, []string{p1}, out)
}
