package fspart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cryguy/secompress/principal"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestPartition_SortedWalkOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", "b")
	writeFile(t, dir, "a.txt", "a")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	writeFile(t, filepath.Join(dir, "sub"), "c.txt", "c")

	access := func(du DataUnit) principal.Principal {
		return principal.New(principal.Attr{Name: "name", Value: du.Name})
	}
	frags, err := Partition(dir, access, principal.DefaultPartitionPolicy)
	require.NoError(t, err)

	var names []string
	for _, f := range frags {
		names = append(names, filepath.Base(f.Path))
	}
	require.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, names)
}

func TestPartition_ClassifiesByPrincipal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "alice_1.txt", "1")
	writeFile(t, dir, "alice_2.txt", "2")
	writeFile(t, dir, "bob_1.txt", "3")

	access := func(du DataUnit) principal.Principal {
		prefix, _, _ := strings.Cut(du.Name, "_")
		return principal.New(principal.Attr{Name: "name", Value: prefix})
	}
	frags, err := Partition(dir, access, principal.DefaultPartitionPolicy)
	require.NoError(t, err)
	require.Len(t, frags, 3)
	require.Equal(t, frags[0].Bucket, frags[1].Bucket)
	require.NotEqual(t, frags[0].Bucket, frags[2].Bucket)
}

func TestPartition_EmptyBucketLabelGetsSyntheticID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.txt", "1")
	writeFile(t, dir, "two.txt", "2")

	access := func(du DataUnit) principal.Principal {
		return principal.New(principal.Attr{Name: "name", Value: du.Name})
	}
	emptyPolicy := func(principal.Principal) principal.Bucket { return "" }

	frags, err := Partition(dir, access, emptyPolicy)
	require.NoError(t, err)
	require.Len(t, frags, 2)
	require.NotEmpty(t, frags[0].Bucket)
	require.NotEmpty(t, frags[1].Bucket)
	require.NotEqual(t, frags[0].Bucket, frags[1].Bucket)
}

func TestPartition_SkipsNonRegularEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "real.txt", "x")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "emptydir"), 0o755))

	access := func(du DataUnit) principal.Principal { return principal.Null() }
	frags, err := Partition(dir, access, principal.DefaultPartitionPolicy)
	require.NoError(t, err)
	require.Len(t, frags, 1)
	require.Equal(t, "real.txt", filepath.Base(frags[0].Path))
}
