package principal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrincipalEquality(t *testing.T) {
	t.Run("SameAttributesDifferentOrder", func(t *testing.T) {
		a := New(Attr{Name: "gid", Value: int64(1)}, Attr{Name: "name", Value: "alice"})
		b := New(Attr{Name: "name", Value: "alice"}, Attr{Name: "gid", Value: int64(1)})
		require.True(t, a.Equal(b))
		require.Equal(t, a.Key(), b.Key())
	})

	t.Run("DifferentAttributes", func(t *testing.T) {
		a := New(Attr{Name: "gid", Value: int64(1)})
		b := New(Attr{Name: "gid", Value: int64(2)})
		require.False(t, a.Equal(b))
	})

	t.Run("DuplicateAttributeNameLastWriteWins", func(t *testing.T) {
		a := New(Attr{Name: "gid", Value: int64(1)}, Attr{Name: "gid", Value: int64(2)})
		v, ok := a.Attr("gid")
		require.True(t, ok)
		require.Equal(t, int64(2), v)
	})

	t.Run("NullIsDistinctFromEmpty", func(t *testing.T) {
		require.False(t, Null().Equal(New()))
		require.True(t, Null().IsNull())
		require.False(t, New().IsNull())
	})
}

func TestDefaultPartitionPolicy(t *testing.T) {
	require.Equal(t, NullBucket, DefaultPartitionPolicy(Null()))

	p := New(Attr{Name: "gid", Value: int64(7)})
	q := New(Attr{Name: "gid", Value: int64(7)})
	require.Equal(t, DefaultPartitionPolicy(p), DefaultPartitionPolicy(q))

	r := New(Attr{Name: "gid", Value: int64(8)})
	require.NotEqual(t, DefaultPartitionPolicy(p), DefaultPartitionPolicy(r))
}

func TestAttributePartitionPolicy(t *testing.T) {
	policy := AttributePartitionPolicy("gid")

	t.Run("GroupsByAttribute", func(t *testing.T) {
		p := New(Attr{Name: "gid", Value: int64(1)}, Attr{Name: "name", Value: "alice"})
		q := New(Attr{Name: "gid", Value: int64(1)}, Attr{Name: "name", Value: "bob"})
		require.Equal(t, policy(p), policy(q))
	})

	t.Run("MissingAttributeFallsBackToNull", func(t *testing.T) {
		require.Equal(t, NullBucket, policy(New(Attr{Name: "name", Value: "alice"})))
	})

	t.Run("NullPrincipalIsAlwaysNull", func(t *testing.T) {
		require.Equal(t, NullBucket, policy(Null()))
	})
}
