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

func TestGlobalGetSet(t *testing.T) {
	g := NewGlobal(GlobalType{ValueType: I32, IsMutable: true}, I32Value(1))
	assert.Equal(t, int32(1), g.Get().I32())

	g.Set(I32Value(2))
	assert.Equal(t, int32(2), g.Get().I32())
}

func TestGlobalImmutableDeclaredType(t *testing.T) {
	g := NewGlobal(GlobalType{ValueType: F64, IsMutable: false}, F64Value(1.5))
	assert.False(t, g.Type.IsMutable)
	assert.Equal(t, 1.5, g.Get().F64())
}
