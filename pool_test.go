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

func TestEntityPoolAllocateResolve(t *testing.T) {
	p := newEntityPool[int]()
	h1, ptr1 := p.Allocate(10)
	h2, ptr2 := p.Allocate(20)

	assert.Equal(t, 10, *p.Resolve(h1))
	assert.Equal(t, 20, *p.Resolve(h2))
	assert.Same(t, ptr1, p.Resolve(h1))
	assert.Same(t, ptr2, p.Resolve(h2))
	assert.Equal(t, 2, p.Len())
}

func TestEntityPoolPointerStabilityAcrossPageGrowth(t *testing.T) {
	p := newEntityPool[int]()
	var handles []Handle[int]
	var ptrs []*int

	// Allocate enough entries to force at least one page rollover.
	for i := 0; i < entityPoolPageSize*3+7; i++ {
		h, ptr := p.Allocate(i)
		handles = append(handles, h)
		ptrs = append(ptrs, ptr)
	}

	for i, h := range handles {
		require.Same(t, ptrs[i], p.Resolve(h), "pointer for handle %d moved after growth", i)
		assert.Equal(t, i, *p.Resolve(h))
	}
}

func TestEntityPoolMutationThroughResolvedPointer(t *testing.T) {
	p := newEntityPool[int]()
	h, ptr := p.Allocate(1)
	*ptr = 42
	assert.Equal(t, 42, *p.Resolve(h))
}
