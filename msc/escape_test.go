package msc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEscapeOutputDelim_RoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x00, 0x01, 0x02},
		{OutputDelim},
		{escapeByte},
		{escapeByte, OutputDelim, escapeByte, escapeByte, OutputDelim},
		bytes(256),
	}
	for _, c := range cases {
		escaped := escapeOutputDelim(c)
		for _, b := range escaped {
			require.NotEqual(t, byte(OutputDelim), b, "escaped output must never contain a literal OutputDelim byte")
		}
		unescaped, err := unescapeOutputDelim(escaped)
		require.NoError(t, err)
		require.Equal(t, c, unescaped)
	}
}

func TestUnescapeOutputDelim_RejectsBadFollower(t *testing.T) {
	_, err := unescapeOutputDelim([]byte{escapeByte, 'x'})
	require.ErrorIs(t, err, ErrMalformedEscape)
}

func TestUnescapeOutputDelim_RejectsTruncatedEscape(t *testing.T) {
	_, err := unescapeOutputDelim([]byte{escapeByte})
	require.ErrorIs(t, err, ErrMalformedEscape)
}

func bytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}
