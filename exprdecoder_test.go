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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExprReaderReadsOpcodeAndULEB(t *testing.T) {
	r := newExprReader(asm(op1(opCallWasm), uleb32(300)))
	op, err := r.readOpcode()
	require.NoError(t, err)
	assert.Equal(t, opCallWasm, op)

	idx, err := r.readU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(300), idx)
	assert.True(t, r.done())
}

func TestExprReaderReadsNegativeSLEB(t *testing.T) {
	r := newExprReader(sleb64(-129))
	n, err := r.readI32()
	require.NoError(t, err)
	assert.Equal(t, int32(-129), n)
}

func TestExprReaderReadsFloats(t *testing.T) {
	code := asm(op1(opF32ConstWasm), []byte{0, 0, 0x80, 0x3f}) // 1.0f little-endian
	r := newExprReader(code[1:])
	f, err := r.readF32()
	require.NoError(t, err)
	assert.Equal(t, float32(1.0), f)

	bits := math.Float64bits(2.0)
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(bits >> (8 * i))
	}
	r2 := newExprReader(buf[:])
	d, err := r2.readF64()
	require.NoError(t, err)
	assert.Equal(t, 2.0, d)
}

func TestExprReaderUnexpectedEnd(t *testing.T) {
	r := newExprReader([]byte{})
	_, err := r.readByte()
	assert.Error(t, err)
}

func TestExprReaderMemarg(t *testing.T) {
	r := newExprReader(asm(uleb32(2), uleb32(16)))
	align, offset, err := r.readMemarg()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), align)
	assert.Equal(t, uint32(16), offset)
}
