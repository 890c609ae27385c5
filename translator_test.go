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

func TestTranslatorSelectPicksFirstOperandWhenConditionTrue(t *testing.T) {
	sig := FunctionType{ParamTypes: []ValueType{I32, I32, I32}, ResultTypes: []ValueType{I32}}
	body := asm(
		opU32(opLocalGetWasm, 0), opU32(opLocalGetWasm, 1), opU32(opLocalGetWasm, 2),
		op1(opSelectWasm),
		op1(opEndWasm),
	)
	mod := &Module{
		Types:   []FunctionType{sig},
		Funcs:   []Function{{TypeIndex: 0, Body: body}},
		Exports: []Export{{Name: "sel", Kind: FunctionIndexSpace, Index: 0}},
	}
	rt := NewRuntime()
	inst, err := rt.Instantiate(mod)
	require.NoError(t, err)

	results, err := inst.Invoke("sel", I32Value(11), I32Value(22), I32Value(1))
	require.NoError(t, err)
	assert.Equal(t, int32(11), results[0].I32())

	results, err = inst.Invoke("sel", I32Value(11), I32Value(22), I32Value(0))
	require.NoError(t, err)
	assert.Equal(t, int32(22), results[0].I32())
}

func TestTranslatorBlockWithResultTypeYieldsValue(t *testing.T) {
	sig := FunctionType{ParamTypes: []ValueType{I32}, ResultTypes: []ValueType{I32}}
	body := asm(
		op1(opBlockWasm), sleb64(-1), // block (result i32)
		opU32(opLocalGetWasm, 0), i32constOp(1), op1(opI32AddWasm),
		op1(opEndWasm), // end block
		op1(opEndWasm), // end function
	)
	mod := &Module{
		Types:   []FunctionType{sig},
		Funcs:   []Function{{TypeIndex: 0, Body: body}},
		Exports: []Export{{Name: "f", Kind: FunctionIndexSpace, Index: 0}},
	}
	rt := NewRuntime()
	inst, err := rt.Instantiate(mod)
	require.NoError(t, err)

	results, err := inst.Invoke("f", I32Value(41))
	require.NoError(t, err)
	assert.Equal(t, int32(42), results[0].I32())
}

func TestTranslatorLocalTeeKeepsValueOnStack(t *testing.T) {
	sig := FunctionType{ParamTypes: []ValueType{I32}, ResultTypes: []ValueType{I32}}
	body := asm(
		opU32(opLocalGetWasm, 0), i32constOp(1), op1(opI32AddWasm),
		opU32(opLocalTeeWasm, 0),
		opU32(opLocalGetWasm, 0), op1(opI32AddWasm),
		op1(opEndWasm),
	)
	mod := &Module{
		Types:   []FunctionType{sig},
		Funcs:   []Function{{TypeIndex: 0, Body: body}},
		Exports: []Export{{Name: "f", Kind: FunctionIndexSpace, Index: 0}},
	}
	rt := NewRuntime()
	inst, err := rt.Instantiate(mod)
	require.NoError(t, err)

	results, err := inst.Invoke("f", I32Value(4))
	require.NoError(t, err)
	assert.Equal(t, int32(10), results[0].I32())
}
