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

func newTestMemory(minPages uint32, maxPages *uint32) *Memory {
	return NewMemory(MemoryType{Limits: Limits{Min: minPages, Max: maxPages}}, nil)
}

func TestMemoryLoadStoreRoundTrip(t *testing.T) {
	m := newTestMemory(1, nil)
	require.NoError(t, m.Store32(0, 0xDEADBEEF))
	v, err := m.Load32(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), v)

	require.NoError(t, m.Store64(8, 0x0102030405060708))
	v64, err := m.Load64(8)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), v64)
}

func TestMemoryOutOfBoundsAccess(t *testing.T) {
	m := newTestMemory(1, nil)
	_, err := m.Load32(uint64(len(m.Data)) - 1)
	assert.ErrorIs(t, err, errOutOfBoundsMemoryAccess)
}

func TestMemoryGrowRejectsBeyondMax(t *testing.T) {
	max := uint32(2)
	m := newTestMemory(1, &max)
	assert.Equal(t, int32(1), m.Grow(1))
	assert.Equal(t, int32(-1), m.Grow(1))
}

func TestMemoryGrowRelocatesAndPreservesData(t *testing.T) {
	m := newTestMemory(1, nil)
	require.NoError(t, m.Store32(0, 123))
	prev := m.Grow(1)
	assert.Equal(t, int32(1), prev)
	v, err := m.Load32(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(123), v)
}

func TestMemoryCopyOverlapping(t *testing.T) {
	m := newTestMemory(1, nil)
	for i := 0; i < 8; i++ {
		require.NoError(t, m.Store8(uint64(i), byte(i)))
	}
	require.NoError(t, m.Copy(m, 2, 0, 6))
	for i := 0; i < 6; i++ {
		v, err := m.Load8(uint64(2 + i))
		require.NoError(t, err)
		assert.Equal(t, byte(i), v)
	}
}

func TestMemoryFill(t *testing.T) {
	m := newTestMemory(1, nil)
	require.NoError(t, m.Fill(10, 5, 0xAB))
	for i := 10; i < 15; i++ {
		v, err := m.Load8(uint64(i))
		require.NoError(t, err)
		assert.Equal(t, byte(0xAB), v)
	}
}

func TestMemoryInitOutOfBoundsSource(t *testing.T) {
	m := newTestMemory(1, nil)
	err := m.Init(0, 0, 10, []byte{1, 2, 3})
	assert.ErrorIs(t, err, errOutOfBoundsMemoryAccess)
}
