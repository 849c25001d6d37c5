package msc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, calls []struct {
	bucket string
	data   []byte
}) []byte {
	t.Helper()
	enc, err := NewEncoder()
	require.NoError(t, err)
	for _, c := range calls {
		require.NoError(t, enc.Compress(c.bucket, c.data))
	}
	blob, err := enc.Finish()
	require.NoError(t, err)

	dec, err := NewDecoder()
	require.NoError(t, err)
	out, err := dec.Decode(blob)
	require.NoError(t, err)
	return out
}

func TestEncoderDecoder_EmptyInput(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)
	blob, err := enc.Finish()
	require.NoError(t, err)

	dec, err := NewDecoder()
	require.NoError(t, err)
	out, err := dec.Decode(blob)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestEncoderDecoder_SingleBucketUsedManyTimes(t *testing.T) {
	calls := []struct {
		bucket string
		data   []byte
	}{
		{"alice", []byte("one ")},
		{"alice", []byte("two ")},
		{"alice", []byte("three")},
	}
	out := roundTrip(t, calls)
	require.Equal(t, "one two three", string(out))
}

func TestEncoderDecoder_ManyBucketsEachUsedOnce(t *testing.T) {
	calls := []struct {
		bucket string
		data   []byte
	}{
		{"alice", []byte("A")},
		{"bob", []byte("B")},
		{"carol", []byte("C")},
	}
	out := roundTrip(t, calls)
	require.Equal(t, "ABC", string(out))
}

func TestEncoderDecoder_InterleavedBuckets(t *testing.T) {
	calls := []struct {
		bucket string
		data   []byte
	}{
		{"null", []byte("[hdr]")},
		{"7", []byte("msgA")},
		{"7", []byte("msgB")},
		{"2", []byte("msgC")},
		{"7", []byte("msgD")},
		{"null", []byte("[tail]")},
	}
	out := roundTrip(t, calls)
	require.Equal(t, "[hdr]msgAmsgBmsgCmsgD[tail]", string(out))
}

// TestEncoder_DistinctBucketsDoNotShareDictionary is spec.md §8 scenario 2:
// compressing the same plaintext twice under two distinct buckets must
// produce a strictly longer blob than compressing it twice under one
// bucket, because two buckets never share a single zlib stream's
// dictionary state. A regression that accidentally multiplexed buckets
// onto one stream would make these sizes equal.
func TestEncoder_DistinctBucketsDoNotShareDictionary(t *testing.T) {
	repeated := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 64)

	sameBucket, err := NewEncoder()
	require.NoError(t, err)
	require.NoError(t, sameBucket.Compress("a", repeated))
	require.NoError(t, sameBucket.Compress("a", repeated))
	sameBlob, err := sameBucket.Finish()
	require.NoError(t, err)

	distinctBuckets, err := NewEncoder()
	require.NoError(t, err)
	require.NoError(t, distinctBuckets.Compress("a", repeated))
	require.NoError(t, distinctBuckets.Compress("b", repeated))
	distinctBlob, err := distinctBuckets.Finish()
	require.NoError(t, err)

	require.Greater(t, len(distinctBlob), len(sameBlob))
}

func TestEncoder_RejectsDelimiterInPlaintext(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)
	data := append([]byte("before"), DefaultStreamSwitchDelim...)
	data = append(data, []byte("after")...)
	err = enc.Compress("alice", data)
	require.ErrorIs(t, err, ErrDelimiterInData)
}

func TestEncoder_CustomStreamSwitchDelim(t *testing.T) {
	delim := []byte{0x01, 0x02}
	enc, err := NewEncoder(WithStreamSwitchDelim(delim))
	require.NoError(t, err)
	require.NoError(t, enc.Compress("alice", []byte("hello")))
	blob, err := enc.Finish()
	require.NoError(t, err)

	dec, err := NewDecoder(WithStreamSwitchDelim(delim))
	require.NoError(t, err)
	out, err := dec.Decode(blob)
	require.NoError(t, err)
	require.Equal(t, "hello", string(out))
}

func TestNewEncoder_RejectsDuplicateByteDelimiter(t *testing.T) {
	_, err := NewEncoder(WithStreamSwitchDelim([]byte{0x01, 0x01}))
	require.ErrorIs(t, err, ErrDuplicateDelimiterByte)
}

func TestDecoder_MalformedHeaderRejected(t *testing.T) {
	dec, err := NewDecoder()
	require.NoError(t, err)
	_, err = dec.Decode([]byte{'{', OutputDelim})
	require.ErrorIs(t, err, ErrMalformedHeader)
}

func TestSplitRecords_TrimsTrailingEmptyRecord(t *testing.T) {
	parts := splitRecords([]byte{'a', OutputDelim, 'b', OutputDelim}, OutputDelim)
	require.Equal(t, [][]byte{{'a'}, {'b'}}, parts)
}

func TestSplitRecords_NoDelimiterReturnsWholeInput(t *testing.T) {
	data := []byte("abc")
	parts := splitRecords(data, []byte(nil))
	require.Len(t, parts, 1)
	require.True(t, bytes.Equal(parts[0], data))
}
