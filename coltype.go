// Copyright 2024 The pgcopy Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pgcopy

import (
	"encoding/binary"
	"math"

	"github.com/apache/arrow/go/v7/arrow"
)

// TypeID identifies one of the nine column types this decoder understands.
// Values 0..8 are process-wide constants; they never change meaning once
// assigned, so a TypeID is safe to persist alongside decoded data.
type TypeID int8

const (
	TypeInt16    TypeID = 0
	TypeInt32    TypeID = 1
	TypeInt64    TypeID = 2
	TypeFloat32  TypeID = 3
	TypeFloat64  TypeID = 4
	TypeBool     TypeID = 5
	TypeObject   TypeID = 6 // variable-length text
	TypeDatetime TypeID = 7 // datetime64[us]
	TypeDate     TypeID = 8 // datetime64[D], widened to 8 bytes
)

// TypeIDMap is the name->id mapping exposed for introspection, letting a
// caller build a column type tuple from configuration or CLI input instead
// of hard-coding TypeID constants.
var TypeIDMap = map[string]TypeID{
	"int16":          TypeInt16,
	"int32":          TypeInt32,
	"int64":          TypeInt64,
	"float32":        TypeFloat32,
	"float64":        TypeFloat64,
	"bool":           TypeBool,
	"object":         TypeObject,
	"datetime64[us]": TypeDatetime,
	"datetime64[D]":  TypeDate,
}

// datetimeEpochShiftUS is the number of microseconds between the Postgres
// epoch (2000-01-01) and the Unix epoch (1970-01-01).
const datetimeEpochShiftUS int64 = 946684800000000

// dateEpochShiftDays is the number of days between the Postgres epoch
// (2000-01-01) and the Unix epoch (1970-01-01).
const dateEpochShiftDays int64 = 10957

// notATimeSentinel is the bit pattern written into a NULL datetime or date
// slot: all bits set, the widespread datetime-NaT convention.
const notATimeSentinel uint64 = math.MaxUint64

// fixedTypeDescriptor describes one fixed-width column type: its on-wire
// and in-memory width, how to decode one field into a destination slot, how
// to write that slot's NULL sentinel, and the Arrow type its finalized
// array carries. Descriptors are immutable, process-wide constants.
type fixedTypeDescriptor struct {
	name      string
	elemSize  int
	arrowType arrow.DataType
	parse     func(dst, src []byte) error
	writeNull func(dst []byte) error
}

func checkWireSize(id TypeID, got, want int) error {
	if got != want {
		return newErrorf(ErrKindTypeMismatch,
			"column type %d: field length %d does not match expected width %d", id, got, want)
	}
	return nil
}

var fixedDescriptors = map[TypeID]*fixedTypeDescriptor{
	TypeInt16: {
		name: "int16", elemSize: 2, arrowType: arrow.PrimitiveTypes.Int16,
		parse: func(dst, src []byte) error {
			if err := checkWireSize(TypeInt16, len(src), 2); err != nil {
				return err
			}
			binary.LittleEndian.PutUint16(dst, beU16(src))
			return nil
		},
		writeNull: func(dst []byte) error {
			dst[0], dst[1] = 0, 0
			return nil
		},
	},
	TypeInt32: {
		name: "int32", elemSize: 4, arrowType: arrow.PrimitiveTypes.Int32,
		parse: func(dst, src []byte) error {
			if err := checkWireSize(TypeInt32, len(src), 4); err != nil {
				return err
			}
			binary.LittleEndian.PutUint32(dst, beU32(src))
			return nil
		},
		writeNull: func(dst []byte) error {
			for i := range dst[:4] {
				dst[i] = 0
			}
			return nil
		},
	},
	TypeInt64: {
		name: "int64", elemSize: 8, arrowType: arrow.PrimitiveTypes.Int64,
		parse: func(dst, src []byte) error {
			if err := checkWireSize(TypeInt64, len(src), 8); err != nil {
				return err
			}
			binary.LittleEndian.PutUint64(dst, beU64(src))
			return nil
		},
		writeNull: func(dst []byte) error {
			for i := range dst[:8] {
				dst[i] = 0
			}
			return nil
		},
	},
	TypeFloat32: {
		name: "float32", elemSize: 4, arrowType: arrow.PrimitiveTypes.Float32,
		parse: func(dst, src []byte) error {
			if err := checkWireSize(TypeFloat32, len(src), 4); err != nil {
				return err
			}
			// Bit-copy: the on-wire bytes are already the IEEE-754 bit
			// pattern, no numeric conversion happens.
			binary.LittleEndian.PutUint32(dst, beU32(src))
			return nil
		},
		writeNull: func(dst []byte) error {
			for i := range dst[:4] {
				dst[i] = 0
			}
			return nil
		},
	},
	TypeFloat64: {
		name: "float64", elemSize: 8, arrowType: arrow.PrimitiveTypes.Float64,
		parse: func(dst, src []byte) error {
			if err := checkWireSize(TypeFloat64, len(src), 8); err != nil {
				return err
			}
			binary.LittleEndian.PutUint64(dst, beU64(src))
			return nil
		},
		writeNull: func(dst []byte) error {
			for i := range dst[:8] {
				dst[i] = 0
			}
			return nil
		},
	},
	TypeBool: {
		// Arrow's native Boolean type bit-packs at 1 bit/value. Values here
		// are decoded one byte at a time into a fixed-width slot like every
		// other column, so a bool column is finalized as Uint8 rather than
		// the bit-packed Boolean type; see DESIGN.md.
		name: "bool", elemSize: 1, arrowType: arrow.PrimitiveTypes.Uint8,
		parse: func(dst, src []byte) error {
			if err := checkWireSize(TypeBool, len(src), 1); err != nil {
				return err
			}
			dst[0] = src[0]
			return nil
		},
		writeNull: func(dst []byte) error {
			dst[0] = 0
			return nil
		},
	},
	TypeDatetime: {
		name: "datetime64[us]", elemSize: 8, arrowType: arrow.FixedWidthTypes.Timestamp_us,
		parse: func(dst, src []byte) error {
			if err := checkWireSize(TypeDatetime, len(src), 8); err != nil {
				return err
			}
			us := int64(beU64(src)) + datetimeEpochShiftUS
			binary.LittleEndian.PutUint64(dst, uint64(us))
			return nil
		},
		writeNull: func(dst []byte) error {
			if len(dst) != 8 {
				return newErrorf(ErrKindTypeMismatch, "datetime null sentinel requires an 8-byte slot, got %d", len(dst))
			}
			binary.LittleEndian.PutUint64(dst, notATimeSentinel)
			return nil
		},
	},
	TypeDate: {
		name: "datetime64[D]", elemSize: 8, arrowType: arrow.PrimitiveTypes.Int64,
		parse: func(dst, src []byte) error {
			if err := checkWireSize(TypeDate, len(src), 4); err != nil {
				return err
			}
			days := int64(int32(beU32(src))) + dateEpochShiftDays
			binary.LittleEndian.PutUint64(dst, uint64(days))
			return nil
		},
		writeNull: func(dst []byte) error {
			if len(dst) != 8 {
				return newErrorf(ErrKindTypeMismatch, "date null sentinel requires an 8-byte slot, got %d", len(dst))
			}
			binary.LittleEndian.PutUint64(dst, notATimeSentinel)
			return nil
		},
	},
}

// elementSize returns the in-memory element width for id. TypeObject
// reports 0: its storage is a Go string slice rather than a fixed-width
// buffer.
func elementSize(id TypeID) (int, error) {
	if id == TypeObject {
		return 0, nil
	}
	desc, ok := fixedDescriptors[id]
	if !ok {
		return 0, newErrorf(ErrKindFraming, "unknown column type-id %d", id)
	}
	return desc.elemSize, nil
}

func isKnownType(id TypeID) bool {
	if id == TypeObject {
		return true
	}
	_, ok := fixedDescriptors[id]
	return ok
}
