package msc

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"sync"
)

// streamState is one of open (accepting input) or finished (closed, no
// further input accepted). Compress/Decompress reject FINISHED; Finish
// transitions OPEN -> FINISHED exactly once.
type streamState int

const (
	stateOpen streamState = iota
	stateFinished
)

// CompressionStream wraps a single zlib deflate stream in the default
// configuration (no gzip header, default compression level), matching
// spec.md §4.1. Compress accumulates; Finish flushes the tail and closes
// the stream. The zero value is not usable — use NewCompressionStream.
type CompressionStream struct {
	buf    bytes.Buffer
	writer io.WriteCloser
	state  streamState
}

// NewCompressionStream constructs a CompressionStream backed by
// compress/zlib at the default compression level, the grounded stdlib
// counterpart of the teacher's newCompressWriter dispatch in
// compression.go (this library is not format-pluggable: the MSC framing
// format fixes the substrate to zlib per spec.md §4.1).
func NewCompressionStream() *CompressionStream {
	cs := &CompressionStream{}
	cs.writer = zlib.NewWriter(&cs.buf)
	return cs
}

// Compress accumulates data into the stream's internal deflate buffer.
// It returns ErrStreamClosed if Finish has already been called.
func (c *CompressionStream) Compress(data []byte) error {
	if c.state == stateFinished {
		return ErrStreamClosed
	}
	if _, err := c.writer.Write(data); err != nil {
		return fmt.Errorf("msc: compress: %w", err)
	}
	return nil
}

// Finish flushes any buffered deflate state, closes the stream, and
// returns the complete compressed byte sequence accumulated across every
// Compress call. It returns ErrStreamClosed if called more than once.
func (c *CompressionStream) Finish() ([]byte, error) {
	if c.state == stateFinished {
		return nil, ErrStreamClosed
	}
	if err := c.writer.Close(); err != nil {
		return nil, fmt.Errorf("msc: finish: %w", err)
	}
	c.state = stateFinished
	out := make([]byte, c.buf.Len())
	copy(out, c.buf.Bytes())
	return out, nil
}

// DecompressionStream is the dual of CompressionStream: Decompress
// accumulates compressed bytes, Finish flushes and returns the complete
// decompressed plaintext.
//
// Internally it drives the zlib reader from a background goroutine fed by
// an io.Pipe, the same shape as the teacher's streaming
// __decompressInit/__decompressChunk/__decompressFlush trio in
// compression.go — the only way to get incremental decompression out of
// compress/zlib's blocking Reader without buffering the whole input
// up front.
type DecompressionStream struct {
	pw   *io.PipeWriter
	done chan struct{}

	mu  sync.Mutex
	out bytes.Buffer
	err error

	state streamState
}

// NewDecompressionStream constructs a DecompressionStream and starts its
// background zlib reader goroutine.
func NewDecompressionStream() *DecompressionStream {
	pr, pw := io.Pipe()
	d := &DecompressionStream{
		pw:   pw,
		done: make(chan struct{}),
	}

	go func() {
		defer close(d.done)
		defer func() { _ = pr.Close() }()

		r, err := zlib.NewReader(pr)
		if err != nil {
			d.mu.Lock()
			d.err = fmt.Errorf("msc: zlib reader: %w", err)
			d.mu.Unlock()
			return
		}
		defer func() { _ = r.Close() }()

		buf := make([]byte, 32*1024)
		for {
			n, rerr := r.Read(buf)
			if n > 0 {
				d.mu.Lock()
				d.out.Write(buf[:n])
				d.mu.Unlock()
			}
			if rerr != nil {
				if rerr != io.EOF {
					d.mu.Lock()
					d.err = fmt.Errorf("msc: decompress: %w", rerr)
					d.mu.Unlock()
				}
				return
			}
		}
	}()

	return d
}

// Decompress feeds compressed bytes to the stream. It returns
// ErrStreamClosed once Finish has been called.
func (d *DecompressionStream) Decompress(data []byte) error {
	if d.state == stateFinished {
		return ErrStreamClosed
	}
	// PipeWriter.Write blocks until the background reader goroutine has
	// consumed all of data; the write runs on its own goroutine and the
	// caller waits for its result, so Decompress returns only after that.
	errCh := make(chan error, 1)
	go func() {
		_, err := d.pw.Write(data)
		errCh <- err
	}()
	if err := <-errCh; err != nil {
		return fmt.Errorf("msc: decompress: %w", err)
	}
	return nil
}

// Finish closes the input side of the pipe, waits for the background
// reader to drain, and returns the full decompressed plaintext
// accumulated across every Decompress call. It returns ErrStreamClosed if
// called more than once.
func (d *DecompressionStream) Finish() ([]byte, error) {
	if d.state == stateFinished {
		return nil, ErrStreamClosed
	}
	_ = d.pw.Close()
	<-d.done

	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = stateFinished
	if d.err != nil {
		return nil, d.err
	}
	out := make([]byte, d.out.Len())
	copy(out, d.out.Bytes())
	return out, nil
}
