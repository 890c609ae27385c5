// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package wasmkit

// Table is the runtime representation of a table instance. Its
// elements are Values holding either a funcref (InternalFunction, tagged) or
// an externref; a null entry is the universal NullRefValue.
type Table struct {
	Type     TableType
	elements []Value
	limiter  ResourceLimiter
}

// NewTable allocates a Table at its declared minimum size, every slot
// initialized to the null reference.
func NewTable(t TableType, lim ResourceLimiter) *Table {
	if lim == nil {
		lim = NoopLimiter{}
	}
	elements := make([]Value, t.Limits.Min)
	for i := range elements {
		elements[i] = NullRefValue()
	}
	return &Table{Type: t, elements: elements, limiter: lim}
}

func (t *Table) Size() uint32 {
	return uint32(len(t.elements))
}

func (t *Table) Get(index uint32) (Value, error) {
	if index >= t.Size() {
		return Value{}, errOutOfBoundsTableAccess
	}
	return t.elements[index], nil
}

func (t *Table) Set(index uint32, v Value) error {
	if index >= t.Size() {
		return errOutOfBoundsTableAccess
	}
	t.elements[index] = v
	return nil
}

// Grow increases the table by delta slots initialized to val, consulting
// the resource limiter. Returns the previous size on success, -1 otherwise.
func (t *Table) Grow(delta uint32, val Value) int32 {
	current := t.Size()
	max := uint32(1<<32 - 1)
	if t.Type.Limits.Max != nil {
		max = *t.Type.Limits.Max
	}
	desired := current + delta
	if desired < current || desired > max {
		return -1
	}
	if !t.limiter.AllowTable(current, desired, max) {
		return -1
	}
	for i := uint32(0); i < delta; i++ {
		t.elements = append(t.elements, val)
	}
	return int32(current)
}

// Init copies n elements from src (already-resolved reference values,
// typically produced from an element segment) into the table.
func (t *Table) Init(destOffset, srcOffset, n uint32, src []Value) error {
	if uint64(srcOffset)+uint64(n) > uint64(len(src)) {
		return errOutOfBoundsTableAccess
	}
	if uint64(destOffset)+uint64(n) > uint64(t.Size()) {
		return errOutOfBoundsTableAccess
	}
	copy(t.elements[destOffset:uint64(destOffset)+uint64(n)], src[srcOffset:uint64(srcOffset)+uint64(n)])
	return nil
}

// Copy copies n elements from this table to dest, supporting self-copy with
// overlap (table.copy with source == destination table).
func (t *Table) Copy(dest *Table, destOffset, srcOffset, n uint32) error {
	if uint64(srcOffset)+uint64(n) > uint64(t.Size()) || uint64(destOffset)+uint64(n) > uint64(dest.Size()) {
		return errOutOfBoundsTableAccess
	}
	copy(dest.elements[destOffset:uint64(destOffset)+uint64(n)], t.elements[srcOffset:uint64(srcOffset)+uint64(n)])
	return nil
}

// Fill sets n elements starting at offset to val.
func (t *Table) Fill(offset, n uint32, val Value) error {
	if uint64(offset)+uint64(n) > uint64(t.Size()) {
		return errOutOfBoundsTableAccess
	}
	region := t.elements[offset : uint64(offset)+uint64(n)]
	for i := range region {
		region[i] = val
	}
	return nil
}
