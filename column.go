// Copyright 2024 The pgcopy Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pgcopy

import (
	"github.com/JohnCGriffin/overflow"
	"github.com/apache/arrow/go/v7/arrow"
	"github.com/apache/arrow/go/v7/arrow/array"
	"github.com/apache/arrow/go/v7/arrow/bitutil"
	"github.com/apache/arrow/go/v7/arrow/memory"
)

// startingCapacity is the initial row capacity every column buffer is
// allocated with. growthFactor is the multiplier applied on every grow.
// Both numbers are part of the observable allocation profile; do not
// change one without the other.
const (
	startingCapacity = 4096
	growthFactor     = 2
)

// decodedColumn is a dispatch-once-per-column handler: the frame decoder
// resolves one of these per column before the row loop starts, so the hot
// path never performs an indirect type-id lookup per field.
type decodedColumn interface {
	// growTo reallocates the column's buffers to hold at least newCapacity
	// rows, preserving already-written rows.
	growTo(newCapacity int) error
	// capacity returns the column's current row capacity.
	capacity() int
	// setValue decodes raw into row's slot and marks the row present.
	setValue(row int, raw []byte) error
	// setNull writes the type's null sentinel into row's slot and marks
	// the row absent.
	setNull(row int) error
	// finalize builds the (values, mask) array pair for the first
	// rowCount rows and transfers buffer ownership to them.
	finalize(rowCount int) (values arrow.Array, mask arrow.Array, err error)
	// release frees every buffer owned by this column without building
	// arrays; used on the error path.
	release()
}

// safeResize resizes an Arrow resizable buffer, converting any allocator
// panic (the memory package panics rather than returning an error on
// allocation failure) into an ErrKindResource DecodeError.
func safeResize(buf *memory.Buffer, n int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newErrorf(ErrKindResource, "buffer resize to %d bytes failed: %v", n, r)
		}
	}()
	buf.Resize(n)
	return nil
}

// ---- fixed-width columns ----

type fixedColumn struct {
	mem    memory.Allocator
	desc   *fixedTypeDescriptor
	cap_   int
	values *memory.Buffer
	mask   *memory.Buffer // bit-packed, bitutil-addressed
}

func newFixedColumn(mem memory.Allocator, desc *fixedTypeDescriptor, initialCapacity int) (*fixedColumn, error) {
	valBytes, ok := overflow.Mul(initialCapacity, desc.elemSize)
	if !ok {
		return nil, newErrorf(ErrKindResource, "initial capacity overflow for column %q", desc.name)
	}
	values := memory.NewResizableBuffer(mem)
	if err := safeResize(values, valBytes); err != nil {
		values.Release()
		return nil, err
	}
	mask := memory.NewResizableBuffer(mem)
	if err := safeResize(mask, int(bitutil.BytesForBits(int64(initialCapacity)))); err != nil {
		values.Release()
		mask.Release()
		return nil, err
	}
	return &fixedColumn{mem: mem, desc: desc, cap_: initialCapacity, values: values, mask: mask}, nil
}

func (c *fixedColumn) capacity() int { return c.cap_ }

func (c *fixedColumn) growTo(newCapacity int) error {
	valBytes, ok := overflow.Mul(newCapacity, c.desc.elemSize)
	if !ok {
		return newErrorf(ErrKindResource, "capacity overflow for column %q at %d rows", c.desc.name, newCapacity)
	}
	if err := safeResize(c.values, valBytes); err != nil {
		return err
	}
	maskBytes := int(bitutil.BytesForBits(int64(newCapacity)))
	if err := safeResize(c.mask, maskBytes); err != nil {
		return err
	}
	c.cap_ = newCapacity
	return nil
}

func (c *fixedColumn) slot(row int) []byte {
	off := row * c.desc.elemSize
	return c.values.Bytes()[off : off+c.desc.elemSize]
}

func (c *fixedColumn) setValue(row int, raw []byte) error {
	if err := c.desc.parse(c.slot(row), raw); err != nil {
		return err
	}
	bitutil.SetBitTo(c.mask.Bytes(), row, true)
	return nil
}

func (c *fixedColumn) setNull(row int) error {
	if err := c.desc.writeNull(c.slot(row)); err != nil {
		return err
	}
	bitutil.SetBitTo(c.mask.Bytes(), row, false)
	return nil
}

func (c *fixedColumn) finalize(rowCount int) (arrow.Array, arrow.Array, error) {
	valData := array.NewData(c.desc.arrowType, rowCount, []*memory.Buffer{nil, c.values}, nil, 0, 0)
	c.values.Release()
	c.values = nil
	values := array.MakeFromData(valData)
	valData.Release()

	maskData := array.NewData(arrow.FixedWidthTypes.Boolean, rowCount, []*memory.Buffer{nil, c.mask}, nil, 0, 0)
	c.mask.Release()
	c.mask = nil
	mask := array.MakeFromData(maskData)
	maskData.Release()

	return values, mask, nil
}

func (c *fixedColumn) release() {
	if c.values != nil {
		c.values.Release()
		c.values = nil
	}
	if c.mask != nil {
		c.mask.Release()
		c.mask = nil
	}
}

// ---- text (object) column ----

// textColumn stores one owned Go string per row, growing the same way a
// fixed-width column's buffers do (doubling from startingCapacity), even
// though the underlying storage is a Go slice rather than an
// allocator-managed buffer: Go's garbage collector, not an explicit
// destructor, reclaims each string's backing bytes. See DESIGN.md.
type textColumn struct {
	mem    memory.Allocator
	cap_   int
	values []string
	mask   *memory.Buffer
}

func newTextColumn(mem memory.Allocator, initialCapacity int) (*textColumn, error) {
	mask := memory.NewResizableBuffer(mem)
	if err := safeResize(mask, int(bitutil.BytesForBits(int64(initialCapacity)))); err != nil {
		mask.Release()
		return nil, err
	}
	return &textColumn{mem: mem, cap_: initialCapacity, values: make([]string, initialCapacity), mask: mask}, nil
}

func (c *textColumn) capacity() int { return c.cap_ }

func (c *textColumn) growTo(newCapacity int) error {
	maskBytes := int(bitutil.BytesForBits(int64(newCapacity)))
	if err := safeResize(c.mask, maskBytes); err != nil {
		return err
	}
	grown := make([]string, newCapacity)
	copy(grown, c.values)
	c.values = grown
	c.cap_ = newCapacity
	return nil
}

func (c *textColumn) setValue(row int, raw []byte) error {
	c.values[row] = string(raw)
	bitutil.SetBitTo(c.mask.Bytes(), row, true)
	return nil
}

func (c *textColumn) setNull(row int) error {
	c.values[row] = ""
	bitutil.SetBitTo(c.mask.Bytes(), row, false)
	return nil
}

func (c *textColumn) finalize(rowCount int) (arrow.Array, arrow.Array, error) {
	bldr := array.NewStringBuilder(c.mem)
	defer bldr.Release()
	bldr.Reserve(rowCount)
	for i := 0; i < rowCount; i++ {
		if bitutil.BitIsSet(c.mask.Bytes(), i) {
			bldr.Append(c.values[i])
		} else {
			bldr.AppendNull()
		}
	}
	values := bldr.NewStringArray()
	c.values = nil

	maskData := array.NewData(arrow.FixedWidthTypes.Boolean, rowCount, []*memory.Buffer{nil, c.mask}, nil, 0, 0)
	c.mask.Release()
	c.mask = nil
	mask := array.MakeFromData(maskData)
	maskData.Release()

	return values, mask, nil
}

func (c *textColumn) release() {
	c.values = nil
	if c.mask != nil {
		c.mask.Release()
		c.mask = nil
	}
}

// newDecodedColumn dispatches once, by type-id, to build the column
// handler used for the remainder of a single decode.
func newDecodedColumn(mem memory.Allocator, id TypeID, initialCapacity int) (decodedColumn, error) {
	if id == TypeObject {
		return newTextColumn(mem, initialCapacity)
	}
	desc, ok := fixedDescriptors[id]
	if !ok {
		return nil, newErrorf(ErrKindFraming, "unknown column type-id %d", id)
	}
	return newFixedColumn(mem, desc, initialCapacity)
}

// ---- column set: the group allocate/grow/free-all manager ----

// columnSet owns every decodedColumn for one decode invocation and applies
// an all-or-nothing allocation and growth policy: any failure mid-allocate
// or mid-grow frees everything acquired so far, so a caller never has to
// reason about a partially allocated column set.
type columnSet struct {
	mem      memory.Allocator
	columns  []decodedColumn
	capacity int
}

func allocateColumns(mem memory.Allocator, types []TypeID) (*columnSet, error) {
	if len(types) == 0 {
		return nil, newError(ErrKindFraming, "column count must be at least one")
	}
	cs := &columnSet{mem: mem, columns: make([]decodedColumn, 0, len(types)), capacity: startingCapacity}
	for _, id := range types {
		col, err := newDecodedColumn(mem, id, startingCapacity)
		if err != nil {
			cs.freeAll()
			return nil, err
		}
		cs.columns = append(cs.columns, col)
	}
	return cs, nil
}

// grow doubles the capacity of every column in the set. If any column
// fails to grow, every column (including ones already grown in this call)
// is released and the error is returned: growth is all-or-nothing.
func (cs *columnSet) grow() error {
	newCapacity, ok := overflow.Mul(cs.capacity, growthFactor)
	if !ok {
		cs.freeAll()
		return newErrorf(ErrKindResource, "row capacity overflow growing past %d", cs.capacity)
	}
	for _, col := range cs.columns {
		if err := col.growTo(newCapacity); err != nil {
			cs.freeAll()
			return err
		}
	}
	cs.capacity = newCapacity
	return nil
}

func (cs *columnSet) freeAll() {
	for _, col := range cs.columns {
		col.release()
	}
	cs.columns = nil
}

// ColumnResult is one decoded column: a value array in the column's native
// layout and a parallel boolean presence mask, both the same length.
type ColumnResult struct {
	Values arrow.Array
	Mask   arrow.Array
}

// finalize builds the (values, mask) pair for every column, transferring
// buffer ownership to the returned arrays.
func (cs *columnSet) finalize(rowCount int) ([]ColumnResult, error) {
	out := make([]ColumnResult, 0, len(cs.columns))
	for _, col := range cs.columns {
		values, mask, err := col.finalize(rowCount)
		if err != nil {
			for _, r := range out {
				r.Values.Release()
				r.Mask.Release()
			}
			cs.freeAll()
			return nil, err
		}
		out = append(out, ColumnResult{Values: values, Mask: mask})
	}
	cs.columns = nil
	return out, nil
}
