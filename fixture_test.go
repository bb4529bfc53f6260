// Copyright 2024 The pgcopy Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pgcopy

import (
	"bytes"
	"encoding/binary"
	"math"
)

// frameBuilder assembles a COPY BINARY payload byte-by-byte for tests. It
// exists purely to keep test fixtures readable; it has no relationship to
// the decoder's own encoding (this package never emits the format).
type frameBuilder struct {
	buf bytes.Buffer
}

func newFrame(withOIDs bool) *frameBuilder {
	b := &frameBuilder{}
	b.buf.Write(PostgresSignature[:])
	if withOIDs {
		binary.Write(&b.buf, binary.BigEndian, flagsWithOIDs)
	} else {
		binary.Write(&b.buf, binary.BigEndian, flagsNone)
	}
	binary.Write(&b.buf, binary.BigEndian, uint32(0)) // ext_len
	return b
}

func (b *frameBuilder) row(oid uint32, withOIDs bool, fieldCount int16) *frameBuilder {
	binary.Write(&b.buf, binary.BigEndian, fieldCount)
	if withOIDs {
		binary.Write(&b.buf, binary.BigEndian, oid)
	}
	return b
}

func (b *frameBuilder) field(data []byte) *frameBuilder {
	binary.Write(&b.buf, binary.BigEndian, int32(len(data)))
	b.buf.Write(data)
	return b
}

func (b *frameBuilder) null() *frameBuilder {
	binary.Write(&b.buf, binary.BigEndian, int32(-1))
	return b
}

func (b *frameBuilder) end() *frameBuilder {
	binary.Write(&b.buf, binary.BigEndian, int16(-1))
	return b
}

func (b *frameBuilder) bytes() []byte {
	return b.buf.Bytes()
}

func i16be(v int16) []byte {
	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, uint16(v))
	return out
}

func i32be(v int32) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, uint32(v))
	return out
}

func i64be(v int64) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, uint64(v))
	return out
}

func boolBytes(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

func f32be(v float32) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, math.Float32bits(v))
	return out
}

func f64be(v float64) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, math.Float64bits(v))
	return out
}
