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
)

func TestInternalFunctionTaggingRoundTrips(t *testing.T) {
	wasmHandle := WasmFuncHandle(7)
	hostHandle := HostFuncHandle(3)

	w := wasmInternalFunction(wasmHandle)
	h := hostInternalFunction(hostHandle)

	assert.False(t, w.IsHost())
	assert.True(t, h.IsHost())
	assert.Equal(t, wasmHandle, w.wasmHandle())
	assert.Equal(t, hostHandle, h.hostHandle())
}

func TestInternalFunctionDistinguishesEqualIndices(t *testing.T) {
	w := wasmInternalFunction(WasmFuncHandle(5))
	h := hostInternalFunction(HostFuncHandle(5))
	assert.NotEqual(t, w, h)
}
