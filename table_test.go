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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(min uint32, max *uint32) *Table {
	return NewTable(TableType{ElementType: FuncRefType, Limits: Limits{Min: min, Max: max}}, nil)
}

func TestTableInitializesToNull(t *testing.T) {
	tbl := newTestTable(3, nil)
	for i := uint32(0); i < 3; i++ {
		v, err := tbl.Get(i)
		require.NoError(t, err)
		assert.True(t, v.IsNullRef())
	}
}

func TestTableSetGetRoundTrip(t *testing.T) {
	tbl := newTestTable(2, nil)
	f := FuncRefValue(wasmInternalFunction(WasmFuncHandle(1)))
	require.NoError(t, tbl.Set(0, f))
	got, err := tbl.Get(0)
	require.NoError(t, err)
	assert.Equal(t, f, got)
}

func TestTableOutOfBounds(t *testing.T) {
	tbl := newTestTable(1, nil)
	_, err := tbl.Get(5)
	assert.ErrorIs(t, err, errOutOfBoundsTableAccess)
	assert.ErrorIs(t, tbl.Set(5, NullRefValue()), errOutOfBoundsTableAccess)
}

func TestTableGrow(t *testing.T) {
	max := uint32(4)
	tbl := newTestTable(1, &max)
	fill := FuncRefValue(wasmInternalFunction(WasmFuncHandle(9)))
	prev := tbl.Grow(2, fill)
	assert.Equal(t, int32(1), prev)
	assert.Equal(t, uint32(3), tbl.Size())
	v, err := tbl.Get(2)
	require.NoError(t, err)
	assert.Equal(t, fill, v)
	assert.Equal(t, int32(-1), tbl.Grow(10, fill))
}

func TestTableInitAndCopy(t *testing.T) {
	tbl := newTestTable(4, nil)
	src := []Value{I32Value(0), FuncRefValue(wasmInternalFunction(WasmFuncHandle(1))), FuncRefValue(wasmInternalFunction(WasmFuncHandle(2)))}
	require.NoError(t, tbl.Init(1, 1, 2, src))

	dest := newTestTable(4, nil)
	require.NoError(t, tbl.Copy(dest, 0, 1, 2))
	v0, _ := dest.Get(0)
	v1, _ := dest.Get(1)
	assert.Equal(t, src[1], v0)
	assert.Equal(t, src[2], v1)
}
