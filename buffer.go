// Copyright 2024 The pgcopy Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pgcopy

import "github.com/JohnCGriffin/overflow"

// byteReader is a bounds-checked cursor over a borrowed, read-only byte
// slice. It never copies the input and never advances past its length.
// All multi-byte reads are big-endian on the wire; byteReader assembles
// them byte-wise rather than through a typed pointer cast, so a misaligned
// cursor position is never undefined behavior.
type byteReader struct {
	buf []byte
	pos int
}

func newByteReader(buf []byte) *byteReader {
	return &byteReader{buf: buf}
}

func (r *byteReader) len() int {
	return len(r.buf)
}

func (r *byteReader) cursor() int {
	return r.pos
}

// remaining returns the number of unread bytes.
func (r *byteReader) remaining() int {
	return len(r.buf) - r.pos
}

// canConsume reports whether n more bytes can be read from the current
// cursor without reading past the end of the buffer, and without the
// cursor arithmetic overflowing.
func (r *byteReader) canConsume(n int) error {
	if n < 0 {
		return newErrorf(ErrKindBounds, "negative length %d", n)
	}
	end, ok := overflow.Add(r.pos, n)
	if !ok {
		return ErrCursorOverflow
	}
	if end > len(r.buf) {
		return ErrTruncated
	}
	return nil
}

// readU8 reads one byte at the cursor and advances it by 1.
func (r *byteReader) readU8() (byte, error) {
	if err := r.canConsume(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// readI16 reads a big-endian signed 16-bit integer and advances the cursor
// by 2.
func (r *byteReader) readI16() (int16, error) {
	if err := r.canConsume(2); err != nil {
		return 0, err
	}
	b := r.buf[r.pos : r.pos+2]
	v := uint16(b[0])<<8 | uint16(b[1])
	r.pos += 2
	return int16(v), nil
}

// readU32 reads a big-endian unsigned 32-bit integer and advances the
// cursor by 4.
func (r *byteReader) readU32() (uint32, error) {
	if err := r.canConsume(4); err != nil {
		return 0, err
	}
	b := r.buf[r.pos : r.pos+4]
	v := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	r.pos += 4
	return v, nil
}

// readI32 reads a big-endian signed 32-bit integer and advances the cursor
// by 4.
func (r *byteReader) readI32() (int32, error) {
	v, err := r.readU32()
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// readBytes returns a sub-slice of the next n bytes at the cursor (no copy)
// and advances the cursor by n.
func (r *byteReader) readBytes(n int) ([]byte, error) {
	if err := r.canConsume(n); err != nil {
		return nil, err
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// beU16 loads a big-endian uint16 from the start of b. Callers must have
// already checked len(b) >= 2.
func beU16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

// beU32 loads a big-endian uint32 from the start of b. Callers must have
// already checked len(b) >= 4.
func beU32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// beU64 loads a big-endian uint64 from the start of b. Callers must have
// already checked len(b) >= 8.
func beU64(b []byte) uint64 {
	return uint64(b[0])<<56 | uint64(b[1])<<48 | uint64(b[2])<<40 | uint64(b[3])<<32 |
		uint64(b[4])<<24 | uint64(b[5])<<16 | uint64(b[6])<<8 | uint64(b[7])
}

