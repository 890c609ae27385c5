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

func TestEvalConstExprI32Const(t *testing.T) {
	code := asm(i32constOp(42), op1(opEndWasm))
	ctx := &constEvalContext{}
	v, err := evalConstExpr(ctx, code, I32)
	require.NoError(t, err)
	assert.Equal(t, int32(42), v.I32())
}

func TestEvalConstExprGlobalGet(t *testing.T) {
	st := NewStore(nil)
	h, _ := st.allocateGlobal(GlobalType{ValueType: I32, IsMutable: false}, I32Value(7))
	ctx := &constEvalContext{store: st, globals: []GlobalHandle{h}}

	code := asm(opU32(opGlobalGetWasm, 0), op1(opEndWasm))
	v, err := evalConstExpr(ctx, code, I32)
	require.NoError(t, err)
	assert.Equal(t, int32(7), v.I32())
}

func TestEvalConstExprRefFunc(t *testing.T) {
	f := wasmInternalFunction(WasmFuncHandle(3))
	ctx := &constEvalContext{funcs: []InternalFunction{f}}

	code := asm(opU32(opRefFuncWasm, 0), op1(opEndWasm))
	v, err := evalConstExpr(ctx, code, FuncRefType)
	require.NoError(t, err)
	assert.Equal(t, f, v.FuncRef())
}

func TestEvalConstExprRefNull(t *testing.T) {
	ctx := &constEvalContext{}
	code := asm(op1(opRefNullWasm), []byte{0x70}, op1(opEndWasm))
	v, err := evalConstExpr(ctx, code, FuncRefType)
	require.NoError(t, err)
	assert.True(t, v.IsNullRef())
}

func TestEvalConstExprMissingEndFails(t *testing.T) {
	ctx := &constEvalContext{}
	code := i32constOp(1)
	_, err := evalConstExpr(ctx, code, I32)
	assert.Error(t, err)
}
