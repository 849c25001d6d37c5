// Package e2e wires each partitioner to the Multi-Stream Codec, giving
// callers a single function per supported format that goes straight from
// an input (file, reader, directory) to a safely compressed blob and
// back, instead of composing a partitioner and a codec by hand.
package e2e

import (
	"io"
	"sort"

	"github.com/cryguy/secompress/dedup"
	"github.com/cryguy/secompress/msc"
	"github.com/cryguy/secompress/partition/fspart"
	"github.com/cryguy/secompress/partition/sqlitepart"
	"github.com/cryguy/secompress/partition/xmlpart"
	"github.com/cryguy/secompress/principal"
)

// CompressSQLite partitions the SQLite database at path by row and
// compresses the result with MSC.
func CompressSQLite(path string, access principal.AccessControl[sqlitepart.DataUnit], partition principal.PartitionPolicy, opts ...msc.Option) ([]byte, error) {
	frags, err := sqlitepart.Partition(path, access, partition)
	if err != nil {
		return nil, err
	}
	enc, err := msc.NewEncoder(opts...)
	if err != nil {
		return nil, err
	}
	for _, f := range frags {
		if err := enc.Compress(f.Bucket, f.Data); err != nil {
			return nil, err
		}
	}
	return enc.Finish()
}

// DecompressSQLite reverses CompressSQLite, returning the original
// database file bytes.
func DecompressSQLite(blob []byte, opts ...msc.Option) ([]byte, error) {
	dec, err := msc.NewDecoder(opts...)
	if err != nil {
		return nil, err
	}
	return dec.Decode(blob)
}

// CompressXML partitions r by element and compresses the result with
// MSC, per the XML-element access control scenario.
func CompressXML(r io.Reader, access principal.AccessControl[xmlpart.DataUnit], partition principal.PartitionPolicy, opts ...msc.Option) ([]byte, error) {
	frags, err := xmlpart.Partition(r, access, partition)
	if err != nil {
		return nil, err
	}
	enc, err := msc.NewEncoder(opts...)
	if err != nil {
		return nil, err
	}
	for _, f := range frags {
		if err := enc.Compress(f.Bucket, f.Data); err != nil {
			return nil, err
		}
	}
	return enc.Finish()
}

// DecompressXML reverses CompressXML, returning the original document
// bytes.
func DecompressXML(blob []byte, opts ...msc.Option) ([]byte, error) {
	dec, err := msc.NewDecoder(opts...)
	if err != nil {
		return nil, err
	}
	return dec.Decode(blob)
}

// DedupFilesByBucket partitions the files under root and deduplicates
// within each bucket independently, per spec.md §4.7: files from
// different principals are never compared against each other, only
// against other files the same principal already owns.
func DedupFilesByBucket(root string, access principal.AccessControl[fspart.DataUnit], partition principal.PartitionPolicy, compare dedup.ComparisonFunc) ([]string, error) {
	frags, err := fspart.Partition(root, access, partition)
	if err != nil {
		return nil, err
	}

	byBucket := make(map[string][]string)
	var buckets []string
	for _, f := range frags {
		if _, ok := byBucket[f.Bucket]; !ok {
			buckets = append(buckets, f.Bucket)
		}
		byBucket[f.Bucket] = append(byBucket[f.Bucket], f.Path)
	}
	sort.Strings(buckets)

	var out []string
	for _, bucket := range buckets {
		deduped, err := dedup.Dedup(compare, byBucket[bucket])
		if err != nil {
			return nil, err
		}
		out = append(out, deduped...)
	}
	return out, nil
}
