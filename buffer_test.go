// Copyright 2024 The pgcopy Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pgcopy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteReaderFixedWidth(t *testing.T) {
	buf := []byte{0x00, 0x2A, 0x00, 0x00, 0x00, 0x2B, 0xFF, 0xFF, 0xFF, 0xFF}
	r := newByteReader(buf)

	i16, err := r.readI16()
	require.NoError(t, err)
	assert.EqualValues(t, 42, i16)

	i32, err := r.readI32()
	require.NoError(t, err)
	assert.EqualValues(t, 43, i32)

	u32, err := r.readU32()
	require.NoError(t, err)
	assert.EqualValues(t, 0xFFFFFFFF, u32)
}

func TestByteReaderBoundsChecked(t *testing.T) {
	r := newByteReader([]byte{0x00, 0x01})
	_, err := r.readI32()
	assert.Error(t, err)
	// cursor must not have advanced on a failed read
	assert.Equal(t, 0, r.cursor())
}

func TestByteReaderCanConsumeEndOfInput(t *testing.T) {
	r := newByteReader([]byte{0x01, 0x02})
	require.NoError(t, r.canConsume(2))
	_, err := r.readBytes(2)
	require.NoError(t, err)
	// cursor at exactly len(buf) is not an error by itself
	require.NoError(t, r.canConsume(0))
	assert.Error(t, r.canConsume(1))
}

func TestByteReaderNeverReadsPastLength(t *testing.T) {
	buf := []byte{1, 2, 3}
	r := newByteReader(buf)
	_, err := r.readBytes(4)
	assert.Error(t, err)
	assert.Equal(t, 0, r.cursor())
}
