// Copyright 2024 The pgcopy Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pgcopy

import (
	"github.com/apache/arrow/go/v7/arrow/memory"
	"github.com/pkg/errors"
)

// maxColumns is the largest column count this package accepts: the
// uint16 range. The row-level field_count on the wire is a signed 16-bit
// integer, so a type tuple of more than 32767 columns can never match a
// data row.
const maxColumns = 65535

// Options configures a single Decode call. The zero value is a valid,
// fully functional configuration: a default Go allocator and a no-op
// logger.
type Options struct {
	// Allocator backs every column buffer allocated during decode. If nil,
	// memory.NewGoAllocator() is used. Pass a
	// memory.CheckedAllocator-wrapped allocator in tests to verify no
	// buffer is leaked on an error path.
	Allocator memory.Allocator
	// Logger receives diagnostic events (a decode failure, the final row
	// count). Never
	// consulted for control flow. If nil, logging is a no-op.
	Logger Logger
}

func (o Options) allocator() memory.Allocator {
	if o.Allocator != nil {
		return o.Allocator
	}
	return memory.NewGoAllocator()
}

func (o Options) logger() Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return nopLogger{}
}

// Decode decodes a complete PostgreSQL COPY BINARY payload against the
// given ordered column types, returning one (values, mask) pair per
// column. The returned arrays own their backing buffers; release them
// (Values.Release(), Mask.Release()) when done.
//
// Decode is a pure function of (buf, types) plus allocator state: it does
// no I/O, performs no retries, and is safe to call concurrently with other
// Decode calls over disjoint inputs.
func Decode(buf []byte, types []TypeID) ([]ColumnResult, error) {
	return DecodeWithOptions(buf, types, Options{})
}

// DecodeWithOptions is Decode with an explicit Options, primarily so
// callers (and tests) can supply their own allocator or logger.
func DecodeWithOptions(buf []byte, types []TypeID, opts Options) ([]ColumnResult, error) {
	if len(types) == 0 {
		return nil, newError(ErrKindFraming, "column count must be at least one")
	}
	if len(types) > maxColumns {
		return nil, ErrTooManyColumns
	}
	for i, id := range types {
		if !isKnownType(id) {
			return nil, unknownTypeError(i, id)
		}
	}

	log := opts.logger()
	results, rowCount, err := decodeFrame(opts.allocator(), buf, types)
	if err != nil {
		log.Print("pgcopy: decode failed: ", err)
		// WithStack attaches a capture-site stack trace (retrievable via
		// "%+v") without altering Error()'s text or breaking errors.Is/As
		// against the DecodeError it wraps.
		return nil, errors.WithStack(err)
	}
	log.Print("pgcopy: decoded ", rowCount, " rows across ", len(types), " columns")
	return results, nil
}
