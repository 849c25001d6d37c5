// Package principal implements the identity and policy types shared by every
// partitioner: Principal, Bucket, and the two pure caller-supplied callbacks
// (access control and partition policy) that decide how raw bytes get
// isolated from each other before compression.
package principal

import (
	"sort"
	"strconv"
	"strings"
)

// NullBucket is the stable sentinel bucket label that a partition policy
// must return for the null principal (format metadata: headers, schema
// rows, index pages, structural padding).
const NullBucket = "\x00null"

// Attr is a single named attribute of a Principal. Value is restricted to
// strings, int64s and bools so that two Principals with the same attribute
// set always compare and hash identically; nested maps would break that.
type Attr struct {
	Name  string
	Value any
}

// Principal is an opaque identity value. It is never mutated after
// construction: New returns a value that callers pass around by copy.
//
// Equality and hashing are derived from the sorted attribute set plus the
// Null flag, matching the source library's Principal.__hash__ (hash of the
// sorted attribute repr).
type Principal struct {
	attrs []Attr // kept sorted by Name
	null  bool
}

// New builds a Principal from a set of attributes. Duplicate attribute
// names are accepted and resolved by keeping the last occurrence, mirroring a Python
// dict literal's last-write-wins semantics.
func New(attrs ...Attr) Principal {
	m := make(map[string]any, len(attrs))
	for _, a := range attrs {
		m[a.Name] = a.Value
	}
	out := make([]Attr, 0, len(m))
	for k, v := range m {
		out = append(out, Attr{Name: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return Principal{attrs: out}
}

// Null returns the sentinel principal standing for bytes that belong to no
// one. A partition policy must map it to NullBucket.
func Null() Principal {
	return Principal{null: true}
}

// IsNull reports whether p is the null principal.
func (p Principal) IsNull() bool { return p.null }

// Attr returns the value stored under name and whether it was present.
func (p Principal) Attr(name string) (any, bool) {
	for _, a := range p.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// Key returns a deterministic string derived from the sorted attribute set
// and the null flag. Two Principals are equal iff their Key is equal; this
// is also what the default partition policies bucket on.
func (p Principal) Key() string {
	if p.null {
		return NullBucket
	}
	var b strings.Builder
	for i, a := range p.attrs {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(a.Name)
		b.WriteByte('=')
		b.WriteString(formatAttrValue(a.Value))
	}
	return b.String()
}

// Equal reports whether p and q refer to the same identity.
func (p Principal) Equal(q Principal) bool { return p.Key() == q.Key() }

func formatAttrValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return strconv.Quote(stringify(v))
	}
}

func stringify(v any) string {
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return ""
}

// Bucket is a string label identifying a co-compression group. The
// partition policy decides whether two distinct principals share a bucket.
type Bucket = string

// AccessControl maps a format-specific data unit to the Principal that
// controls it. Implementations must be pure and total, and must return
// Null() for data units that carry no per-principal content (structural
// metadata).
type AccessControl[T any] func(unit T) Principal

// PartitionPolicy maps a Principal to the Bucket its data should be
// co-compressed with. Implementations must be pure and total; Null()
// principals must always map to NullBucket.
type PartitionPolicy func(p Principal) Bucket

// DefaultPartitionPolicy buckets principals by their own identity: two
// principals share a bucket iff they are Equal. This mirrors the source
// library's basic_partition_policy (bucket = str(principal)).
func DefaultPartitionPolicy(p Principal) Bucket {
	if p.IsNull() {
		return NullBucket
	}
	return p.Key()
}

// AttributePartitionPolicy returns a PartitionPolicy that buckets
// principals by the string form of a single named attribute (e.g. a
// "group_id" or "is_contact" attribute), mirroring the source library's
// attribute_based_partition_policy. Principals missing the attribute, and
// the null principal, fall back to NullBucket.
func AttributePartitionPolicy(name string) PartitionPolicy {
	return func(p Principal) Bucket {
		if p.IsNull() {
			return NullBucket
		}
		v, ok := p.Attr(name)
		if !ok {
			return NullBucket
		}
		return formatAttrValue(v)
	}
}
