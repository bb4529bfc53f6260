// Copyright 2024 The pgcopy Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pgcopy

import "github.com/apache/arrow/go/v7/arrow/memory"

// PostgresSignature is the 11-byte constant every COPY BINARY stream must
// begin with: "PGCOPY\n\xff\r\n\0". Exposed for callers that want to verify
// a stream before invoking Decode.
var PostgresSignature = [11]byte{'P', 'G', 'C', 'O', 'P', 'Y', '\n', 0xFF, '\r', '\n', 0x00}

const (
	flagsNone     uint32 = 0x00000000
	flagsWithOIDs uint32 = 0x00010000
)

// endOfData is the field_count value that terminates the row loop.
const endOfData int16 = -1

// nullFieldLen is the datalen value marking a NULL field.
const nullFieldLen int32 = -1

// decodeFrame drives the envelope: signature, flags, header extension,
// then the row loop, until the end-of-data sentinel. It returns the
// finalized per-column (values, mask) pairs and the number of rows
// written.
func decodeFrame(mem memory.Allocator, buf []byte, types []TypeID) ([]ColumnResult, int, error) {
	r := newByteReader(buf)

	sig, err := r.readBytes(len(PostgresSignature))
	if err != nil || string(sig) != string(PostgresSignature[:]) {
		return nil, 0, ErrMissingSignature
	}

	flags, err := r.readU32()
	if err != nil {
		return nil, 0, wrapError(ErrKindFraming, err, "reading header flags")
	}
	if flags != flagsNone && flags != flagsWithOIDs {
		return nil, 0, ErrBadFlags
	}
	withOIDs := flags == flagsWithOIDs

	extLen, err := r.readU32()
	if err != nil {
		return nil, 0, wrapError(ErrKindFraming, err, "reading header extension length")
	}
	if extLen != 0 {
		return nil, 0, ErrHeaderExtension
	}

	cs, err := allocateColumns(mem, types)
	if err != nil {
		return nil, 0, err
	}

	ncolumns := len(types)
	rowCount := 0

	for {
		fieldCount, err := r.readI16()
		if err != nil {
			cs.freeAll()
			return nil, 0, wrapError(ErrKindBounds, err, "reading row field count")
		}
		if fieldCount == endOfData {
			break
		}
		if int(fieldCount) != ncolumns {
			cs.freeAll()
			return nil, 0, fieldCountError(rowCount, int(fieldCount), ncolumns)
		}

		if withOIDs {
			if _, err := r.readU32(); err != nil {
				cs.freeAll()
				return nil, 0, wrapError(ErrKindBounds, err, "reading row OID")
			}
		}

		if rowCount == cs.capacity {
			if err := cs.grow(); err != nil {
				return nil, 0, err
			}
		}

		if err := decodeRow(r, cs, rowCount, ncolumns); err != nil {
			cs.freeAll()
			return nil, 0, err
		}
		rowCount++
	}

	results, err := cs.finalize(rowCount)
	if err != nil {
		return nil, 0, err
	}
	return results, rowCount, nil
}

// decodeRow reads every field of one row into row's slot of each column.
// If a parse fails partway through the row, the remaining (not yet
// written) columns of this row are filled with their type's null
// sentinel so that the group destructor sees a fully-defined row before
// the caller frees everything.
func decodeRow(r *byteReader, cs *columnSet, row, ncolumns int) error {
	for col := 0; col < ncolumns; col++ {
		dataLen, err := r.readI32()
		if err != nil {
			fillRemainingNulls(cs, row, col, ncolumns)
			return wrapError(ErrKindBounds, err, "reading field length")
		}

		if dataLen == nullFieldLen {
			if err := cs.columns[col].setNull(row); err != nil {
				fillRemainingNulls(cs, row, col+1, ncolumns)
				return err
			}
			continue
		}
		if dataLen < 0 {
			fillRemainingNulls(cs, row, col, ncolumns)
			return newErrorf(ErrKindFraming, "row %d column %d: invalid negative field length %d", row, col, dataLen)
		}

		raw, err := r.readBytes(int(dataLen))
		if err != nil {
			fillRemainingNulls(cs, row, col, ncolumns)
			return wrapError(ErrKindBounds, err, "reading field value")
		}

		if err := cs.columns[col].setValue(row, raw); err != nil {
			fillRemainingNulls(cs, row, col+1, ncolumns)
			return err
		}
	}
	return nil
}

// fillRemainingNulls writes the null sentinel into columns [from, ncolumns)
// of row so that every column buffer is in a defined state before it is
// freed. Errors from setNull here are ignored: the sentinels are always
// the right size for their own column, so writeNull cannot fail in
// practice, and the original error is what must reach the caller.
func fillRemainingNulls(cs *columnSet, row, from, ncolumns int) {
	for col := from; col < ncolumns; col++ {
		_ = cs.columns[col].setNull(row)
	}
}

