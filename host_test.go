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

func TestNewHostFunctionInvokedThroughStore(t *testing.T) {
	st := NewStore(nil)
	sig := FunctionType{ParamTypes: []ValueType{I32}, ResultTypes: []ValueType{I32}}
	h := NewHostFunction(st, sig, func(caller *Caller, args []Value) ([]Value, error) {
		return []Value{I32Value(args[0].I32() * 2)}, nil
	})

	assert.True(t, h.IsHost())
	_, host := st.resolveInternalFunction(h)
	require.NotNil(t, host)

	results, err := host.Func(nil, []Value{I32Value(21)})
	require.NoError(t, err)
	assert.Equal(t, int32(42), results[0].I32())
}

func TestCheckHostArityMismatch(t *testing.T) {
	sig := FunctionType{ParamTypes: []ValueType{I32, I32}}
	err := checkHostArity(&sig, []Value{I32Value(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2")
}

func TestCheckHostArityMatches(t *testing.T) {
	sig := FunctionType{ParamTypes: []ValueType{I32, I32}}
	assert.NoError(t, checkHostArity(&sig, []Value{I32Value(1), I32Value(2)}))
}

func TestCheckHostResultArityMismatch(t *testing.T) {
	sig := FunctionType{ResultTypes: []ValueType{I32}}
	err := checkHostResultArity(&sig, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 1")
}

func TestCheckHostResultArityMatches(t *testing.T) {
	sig := FunctionType{ResultTypes: []ValueType{I32, I32}}
	assert.NoError(t, checkHostResultArity(&sig, []Value{I32Value(1), I32Value(2)}))
}
