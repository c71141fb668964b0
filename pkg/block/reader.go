// Package block reads a byte stream in fixed-capacity blocks that never
// split a line: every block except the last ends right after a terminator byte.
package block

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// DefaultSize is the block capacity used when none is configured.
const DefaultSize = 65536

// DefaultTerminator is the byte that ends a line.
const DefaultTerminator = '\n'

// LineTooLongError is returned when a full block contains no terminator,
// so the line starting at Offset cannot fit in one block.
type LineTooLongError struct {
	Offset int64 // absolute offset of the line start
	Size   int   // block capacity
}

func (e *LineTooLongError) Error() string {
	return fmt.Sprintf("line at offset %d exceeds block size of %d bytes", e.Offset, e.Size)
}

// StreamError wraps a failure of the underlying reader.
type StreamError struct {
	Offset int64 // absolute offset at which the read failed
	Err    error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("read failed at offset %d: %v", e.Offset, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// Reader splits a stream into blocks.
//
// Bytes after the last terminator of a full block are carried over to the
// front of the next block instead of seeking the stream back, so
// non-seekable inputs work. The returned slice aliases the internal buffer
// and is valid until the next call to Next.
type Reader struct {
	r          io.Reader
	buf        []byte
	terminator byte
	n          int   // bytes held in buf
	consumed   int   // bytes of buf handed out by the previous call
	offset     int64 // absolute offset of buf[0]
	last       int64 // absolute offset of the last returned block
	eof        bool
	final      bool
}

// NewReader creates a Reader with the given block capacity and terminator byte.
// A non-positive size selects DefaultSize.
func NewReader(r io.Reader, size int, terminator byte) *Reader {
	if size <= 0 {
		size = DefaultSize
	}
	return &Reader{
		r:          r,
		buf:        make([]byte, size),
		terminator: terminator,
	}
}

// Size returns the block capacity.
func (br *Reader) Size() int {
	return len(br.buf)
}

// Offset returns the absolute stream offset of the block last returned by Next.
func (br *Reader) Offset() int64 {
	return br.last
}

// Final reports whether the block last returned by Next was the last one.
// The last block may end with an unterminated fragment.
func (br *Reader) Final() bool {
	return br.final
}

// Next returns the next block. It returns io.EOF once the stream is exhausted,
// *LineTooLongError when a full block holds no terminator, and *StreamError
// when the underlying reader fails.
func (br *Reader) Next() ([]byte, error) {
	if br.consumed > 0 {
		copy(br.buf, br.buf[br.consumed:br.n])
		br.n -= br.consumed
		br.offset += int64(br.consumed)
		br.consumed = 0
	}

	if !br.eof && br.n < len(br.buf) {
		k, err := io.ReadFull(br.r, br.buf[br.n:])
		br.n += k
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			br.eof = true
		default:
			return nil, &StreamError{Offset: br.offset + int64(br.n), Err: err}
		}
	}

	if br.n == 0 {
		br.final = true
		return nil, io.EOF
	}

	br.last = br.offset
	if br.eof {
		br.consumed = br.n
		br.final = true
		return br.buf[:br.n], nil
	}

	i := bytes.LastIndexByte(br.buf[:br.n], br.terminator)
	if i < 0 {
		return nil, &LineTooLongError{Offset: br.offset, Size: len(br.buf)}
	}
	br.consumed = i + 1
	return br.buf[:i+1], nil
}
