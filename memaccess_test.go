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

func memarg(align, offset uint32) []byte { return asm(uleb32(align), uleb32(offset)) }

func moduleWithMemory(body []byte, sig FunctionType) *Module {
	return &Module{
		Types:    []FunctionType{sig},
		Memories: []MemoryType{{Limits: Limits{Min: 1}}},
		Funcs:    []Function{{TypeIndex: 0, Body: body}},
		Exports:  []Export{{Name: "f", Kind: FunctionIndexSpace, Index: 0}},
	}
}

func TestMemAccessStoreThenLoadRoundTrips(t *testing.T) {
	sig := FunctionType{ParamTypes: []ValueType{I32, I32}, ResultTypes: []ValueType{I32}}
	body := asm(
		opU32(opLocalGetWasm, 0), opU32(opLocalGetWasm, 1),
		op1(opI32StoreWasm), memarg(2, 0),
		opU32(opLocalGetWasm, 0),
		op1(opI32LoadWasm), memarg(2, 0),
		op1(opEndWasm),
	)
	mod := moduleWithMemory(body, sig)
	rt := NewRuntime()
	inst, err := rt.Instantiate(mod)
	require.NoError(t, err)
	results, err := inst.Invoke("f", I32Value(8), I32Value(123))
	require.NoError(t, err)
	assert.Equal(t, int32(123), results[0].I32())
}

func TestMemAccessLoad8UZeroExtends(t *testing.T) {
	sig := FunctionType{ParamTypes: []ValueType{I32, I32}, ResultTypes: []ValueType{I32}}
	body := asm(
		opU32(opLocalGetWasm, 0), opU32(opLocalGetWasm, 1),
		op1(opI32StoreWasm), memarg(2, 0),
		opU32(opLocalGetWasm, 0),
		op1(opI32Load8UWasm), memarg(0, 0),
		op1(opEndWasm),
	)
	mod := moduleWithMemory(body, sig)
	rt := NewRuntime()
	inst, err := rt.Instantiate(mod)
	require.NoError(t, err)
	results, err := inst.Invoke("f", I32Value(0), I32Value(-1))
	require.NoError(t, err)
	assert.Equal(t, int32(0xFF), results[0].I32())
}

func TestMemAccessOutOfBoundsTraps(t *testing.T) {
	sig := FunctionType{ParamTypes: []ValueType{I32}, ResultTypes: []ValueType{I32}}
	body := asm(
		opU32(opLocalGetWasm, 0),
		op1(opI32LoadWasm), memarg(2, 0),
		op1(opEndWasm),
	)
	mod := moduleWithMemory(body, sig)
	rt := NewRuntime()
	inst, err := rt.Instantiate(mod)
	require.NoError(t, err)

	_, err = inst.Invoke("f", I32Value(65536))
	require.Error(t, err)
	var trap *Trap
	require.ErrorAs(t, err, &trap)
	assert.Equal(t, TrapOutOfBoundsMemoryAccess, trap.Code)
}

func TestMemAccessSizeAndGrow(t *testing.T) {
	sig := FunctionType{ResultTypes: []ValueType{I32}}
	body := asm(
		i32constOp(1), opU32(opMemoryGrowWasm, 0),
		op1(opDropWasm),
		opU32(opMemorySizeWasm, 0),
		op1(opEndWasm),
	)
	mod := moduleWithMemory(body, sig)
	rt := NewRuntime()
	inst, err := rt.Instantiate(mod)
	require.NoError(t, err)
	results, err := inst.Invoke("f")
	require.NoError(t, err)
	assert.Equal(t, int32(2), results[0].I32())
}
