// Package msc implements the Multi-Stream Codec: a framing format that
// multiplexes N independent zlib streams into one self-delimiting byte
// blob (spec.md §3-4), so that bytes belonging to one principal's bucket
// can never influence the compressed size or dictionary state of
// another's.
package msc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DefaultStreamSwitchDelim is appended after every (bucket, data) call so
// that, after a bucket's plaintext is reassembled, individual calls can be
// told apart again. It must contain no duplicate bytes (invariant 5,
// spec.md §3) so a stray single byte adjacent to the delimiter can never
// be mistaken for it.
var DefaultStreamSwitchDelim = []byte{0x5B, 0x7C} // "[|"

// Option configures an Encoder or Decoder.
type Option func(*options)

type options struct {
	streamSwitchDelim []byte
}

func buildOptions(opts []Option) (options, error) {
	o := options{streamSwitchDelim: DefaultStreamSwitchDelim}
	for _, opt := range opts {
		opt(&o)
	}
	if hasDuplicateByte(o.streamSwitchDelim) {
		return options{}, ErrDuplicateDelimiterByte
	}
	return o, nil
}

// WithStreamSwitchDelim overrides the delimiter appended after each
// Compress call's plaintext. Callers must satisfy invariant 5 (no
// duplicate bytes); violating it is rejected at construction.
func WithStreamSwitchDelim(delim []byte) Option {
	return func(o *options) { o.streamSwitchDelim = delim }
}

func hasDuplicateByte(b []byte) bool {
	var seen [256]bool
	for _, c := range b {
		if seen[c] {
			return true
		}
		seen[c] = true
	}
	return false
}

// Encoder multiplexes compressed bytes from many buckets into one framed
// blob. An Encoder owns its compression streams exclusively and is not
// safe for concurrent use.
type Encoder struct {
	opts         options
	streams      map[string]*CompressionStream
	order        []string // insertion order of first use, flushed in this order
	streamSwitch []string
}

// NewEncoder constructs an Encoder with lazily-created per-bucket
// compression streams.
func NewEncoder(opts ...Option) (*Encoder, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Encoder{
		opts:    o,
		streams: make(map[string]*CompressionStream),
	}, nil
}

// Compress feeds data into the stream owned by bucket, creating that
// stream on first use. It fails with ErrDelimiterInData if data contains
// the stream-switch delimiter (the caller's data fed into compress must
// not contain it, per invariant 4, spec.md §3).
func (e *Encoder) Compress(bucket string, data []byte) error {
	if bytes.Contains(data, e.opts.streamSwitchDelim) {
		return ErrDelimiterInData
	}
	stream, ok := e.streams[bucket]
	if !ok {
		stream = NewCompressionStream()
		e.streams[bucket] = stream
		e.order = append(e.order, bucket)
	}
	e.streamSwitch = append(e.streamSwitch, bucket)

	payload := make([]byte, 0, len(data)+len(e.opts.streamSwitchDelim))
	payload = append(payload, data...)
	payload = append(payload, e.opts.streamSwitchDelim...)
	return stream.Compress(payload)
}

// Finish flushes every stream and emits the framed blob described in
// spec.md §3:
//
//	stream_switch_json OUTPUT_DELIM esc(stream_1) OUTPUT_DELIM ... esc(stream_k) OUTPUT_DELIM
func (e *Encoder) Finish() ([]byte, error) {
	header, err := json.Marshal(e.streamSwitch)
	if err != nil {
		return nil, fmt.Errorf("msc: encoding stream switch header: %w", err)
	}

	var out bytes.Buffer
	out.Write(header)
	out.WriteByte(OutputDelim)

	for _, bucket := range e.order {
		flushed, err := e.streams[bucket].Finish()
		if err != nil {
			return nil, fmt.Errorf("msc: finishing stream %q: %w", bucket, err)
		}
		out.Write(escapeOutputDelim(flushed))
		out.WriteByte(OutputDelim)
	}
	return out.Bytes(), nil
}

// Decoder demultiplexes a framed blob produced by Encoder back into the
// original call-order concatenation of plaintext.
type Decoder struct {
	opts options
}

// NewDecoder constructs a Decoder. Options must match those used to build
// the Encoder that produced the blob being decoded.
func NewDecoder(opts ...Option) (*Decoder, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Decoder{opts: o}, nil
}

// Decode parses a framed blob and reconstructs the original byte
// sequence: for any sequence of (bucket, data) Encoder.Compress calls,
// Decode(Encoder output) equals the concatenation of data in call order
// (spec.md §4.3's correctness property).
func (d *Decoder) Decode(blob []byte) ([]byte, error) {
	records := splitRecords(blob, OutputDelim)
	if len(records) == 0 {
		return nil, ErrMalformedHeader
	}

	var streamSwitch []string
	if err := json.Unmarshal(records[0], &streamSwitch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}

	// Create one DecompressionStream per distinct bucket, in first-seen
	// order, and feed each its corresponding record.
	order := make([]string, 0)
	streams := make(map[string]*DecompressionStream)
	for _, bucket := range streamSwitch {
		if _, ok := streams[bucket]; !ok {
			streams[bucket] = NewDecompressionStream()
			order = append(order, bucket)
		}
	}

	streamRecords := records[1:]
	if len(streamRecords) < len(order) {
		return nil, ErrTruncatedFrame
	}
	for i, bucket := range order {
		unescaped, err := unescapeOutputDelim(streamRecords[i])
		if err != nil {
			return nil, err
		}
		if err := streams[bucket].Decompress(unescaped); err != nil {
			return nil, err
		}
	}

	// Flush every stream and split its plaintext into per-call fragments
	// on the stream-switch delimiter.
	queues := make(map[string][][]byte, len(streams))
	for bucket, stream := range streams {
		plaintext, err := stream.Finish()
		if err != nil {
			return nil, fmt.Errorf("msc: finishing stream %q: %w", bucket, err)
		}
		queues[bucket] = splitRecords(plaintext, d.opts.streamSwitchDelim)
	}

	var out bytes.Buffer
	cursor := make(map[string]int, len(queues))
	for _, bucket := range streamSwitch {
		i := cursor[bucket]
		frags := queues[bucket]
		if i >= len(frags) {
			return nil, ErrTruncatedFrame
		}
		out.Write(frags[i])
		cursor[bucket] = i + 1
	}
	return out.Bytes(), nil
}

// splitRecords splits data on every occurrence of a single delimiter byte
// (OutputDelim's use) or on a multi-byte delimiter sequence
// (StreamSwitchDelim's use), trimming the final empty tail that results
// because every record in a well-formed blob is itself delimiter-terminated.
func splitRecords(data []byte, delim any) [][]byte {
	var sep []byte
	switch d := delim.(type) {
	case byte:
		sep = []byte{d}
	case []byte:
		sep = d
	}
	if len(sep) == 0 {
		return [][]byte{data}
	}
	parts := bytes.Split(data, sep)
	if n := len(parts); n > 0 && len(parts[n-1]) == 0 {
		parts = parts[:n-1]
	}
	return parts
}
