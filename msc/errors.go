package msc

import "errors"

// Usage errors: the caller broke a contract. These are fatal and must
// surface immediately, per spec.md §7.1.
var (
	// ErrStreamClosed is returned when Compress or Finish is called on a
	// stream that has already been finished.
	ErrStreamClosed = errors.New("msc: stream closed")

	// ErrDelimiterInData is returned by Encoder.Compress when the caller's
	// plaintext contains the stream-switch delimiter.
	ErrDelimiterInData = errors.New("msc: data contains stream switch delimiter")

	// ErrDuplicateDelimiterByte is returned when a caller-supplied
	// StreamSwitchDelim contains a repeated byte (invariant 5 of spec.md §3).
	ErrDuplicateDelimiterByte = errors.New("msc: stream switch delimiter has duplicate bytes")
)

// Format errors: the framed blob violates the format. These are fatal and
// never attempt partial recovery, per spec.md §7.2 — silent recovery could
// mis-assign bytes across principals, which is a security failure.
var (
	// ErrMalformedHeader is returned when the first record of a framed blob
	// is not a valid JSON array of bucket labels.
	ErrMalformedHeader = errors.New("msc: malformed stream switch header")

	// ErrMalformedEscape is returned when unescaping an output-delimiter
	// escape sequence encounters a byte that is neither 'Z' nor ':' after
	// an escape byte.
	ErrMalformedEscape = errors.New("msc: malformed escape sequence")

	// ErrTruncatedFrame is returned when the decoder's stream-switch list
	// references more fragments of a bucket than were actually framed.
	ErrTruncatedFrame = errors.New("msc: truncated frame")
)
