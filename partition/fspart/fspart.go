// Package fspart implements the filesystem partitioner: it walks a
// directory in deterministic order and assigns each regular file to a
// bucket via caller-supplied access control and partition policies
// (spec.md §4.4). Round-trip is not required for this format — its output
// feeds dedup, not the Multi-Stream Codec.
package fspart

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/cryguy/secompress/principal"
)

// DataUnit is the smallest classifiable element of a filesystem: an
// absolute path plus its leaf (base) name.
type DataUnit struct {
	Path string
	Name string
}

// Fragment is one (bucket, path) pair in deterministic walk order.
type Fragment struct {
	Bucket string
	Path   string
}

// Partition walks root in lexicographic order at every directory level
// and classifies each regular file it finds. The returned slice preserves
// walk order.
func Partition(root string, access principal.AccessControl[DataUnit], partition principal.PartitionPolicy) ([]Fragment, error) {
	// A partition policy that returns "" for distinct principals would
	// otherwise merge their files into one indistinguishable bucket; give
	// each such principal a synthetic label instead, stable for the
	// duration of this call and unique across runs.
	synthetic := make(map[string]string)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var out []Fragment
	err = walkSorted(absRoot, func(path string) error {
		du := DataUnit{Path: path, Name: filepath.Base(path)}
		p := access(du)
		bucket := partition(p)
		if bucket == "" {
			key := p.Key()
			label, ok := synthetic[key]
			if !ok {
				label = "fspart-" + uuid.NewString()
				synthetic[key] = label
			}
			bucket = label
		}
		out = append(out, Fragment{Bucket: bucket, Path: path})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// walkSorted visits every regular file under root in document order: at
// each directory level, entries are processed in lexicographic order of
// their names, matching spec.md §5's "sorted walk" ordering requirement
// (os.walk in the Python original does not itself sort, but a caller
// relying on deterministic output needs it, so this partitioner sorts
// explicitly rather than depending on directory-entry return order).
func walkSorted(dir string, visit func(path string) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		if e.IsDir() {
			if err := walkSorted(full, visit); err != nil {
				return err
			}
			continue
		}
		info, err := e.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			continue
		}
		if err := visit(full); err != nil {
			return err
		}
	}
	return nil
}
