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

func TestTypeInternerDeduplicates(t *testing.T) {
	in := newTypeInterner()
	a := FunctionType{ParamTypes: []ValueType{I32}, ResultTypes: []ValueType{I32}}
	b := FunctionType{ParamTypes: []ValueType{I32}, ResultTypes: []ValueType{I32}}
	c := FunctionType{ParamTypes: []ValueType{I64}, ResultTypes: []ValueType{I32}}

	idA := in.Intern(a)
	idB := in.Intern(b)
	idC := in.Intern(c)

	assert.Equal(t, idA, idB)
	assert.NotEqual(t, idA, idC)
	assert.Equal(t, 2, in.Len())
}

func TestTypeInternerResolveRoundTrips(t *testing.T) {
	in := newTypeInterner()
	ft := FunctionType{ParamTypes: []ValueType{F32, F64}, ResultTypes: []ValueType{ExternRefType}}
	id := in.Intern(ft)
	resolved := in.Resolve(id)
	assert.True(t, resolved.Equal(&ft))
}
