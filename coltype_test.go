// Copyright 2024 The pgcopy Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pgcopy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeIDMapMatchesSpec(t *testing.T) {
	want := map[string]TypeID{
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
	assert.Equal(t, want, TypeIDMap)
}

func TestNumericNullSentinelsAreZero(t *testing.T) {
	for _, id := range []TypeID{TypeInt16, TypeInt32, TypeInt64, TypeFloat32, TypeFloat64, TypeBool} {
		desc := fixedDescriptors[id]
		dst := make([]byte, desc.elemSize)
		for i := range dst {
			dst[i] = 0xFF
		}
		require.NoError(t, desc.writeNull(dst))
		for _, b := range dst {
			assert.Equalf(t, byte(0), b, "type %v null sentinel", id)
		}
	}
}

func TestTemporalNullSentinelIsAllOnes(t *testing.T) {
	for _, id := range []TypeID{TypeDatetime, TypeDate} {
		desc := fixedDescriptors[id]
		dst := make([]byte, 8)
		require.NoError(t, desc.writeNull(dst))
		for _, b := range dst {
			assert.Equal(t, byte(0xFF), b)
		}
	}
}

func TestTemporalNullSentinelRejectsWrongSize(t *testing.T) {
	for _, id := range []TypeID{TypeDatetime, TypeDate} {
		desc := fixedDescriptors[id]
		err := desc.writeNull(make([]byte, 4))
		assert.Error(t, err)
	}
}

func TestFixedWidthParseRejectsMismatchedLength(t *testing.T) {
	desc := fixedDescriptors[TypeInt16]
	dst := make([]byte, 2)
	err := desc.parse(dst, []byte{1, 2, 3})
	require.Error(t, err)
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, ErrKindTypeMismatch, decodeErr.Kind)
}

func TestIsKnownType(t *testing.T) {
	assert.True(t, isKnownType(TypeObject))
	assert.True(t, isKnownType(TypeDate))
	assert.False(t, isKnownType(TypeID(42)))
}

func TestElementSize(t *testing.T) {
	n, err := elementSize(TypeInt64)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	n, err = elementSize(TypeObject)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = elementSize(TypeID(42))
	assert.Error(t, err)
}
