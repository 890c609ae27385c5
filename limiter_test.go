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

func TestNoopLimiterApprovesEverything(t *testing.T) {
	lim := NoopLimiter{}
	assert.True(t, lim.AllowMemory(0, 1<<20, 1<<20))
	assert.True(t, lim.AllowTable(0, 1<<20, 1<<20))
}

type rejectingLimiter struct {
	memoryCeiling uint32
}

func (r rejectingLimiter) AllowMemory(current, desired, max uint32) bool {
	return desired <= r.memoryCeiling
}

func (r rejectingLimiter) AllowTable(current, desired, max uint32) bool {
	return false
}

func TestMemoryGrowConsultsLimiter(t *testing.T) {
	m := NewMemory(MemoryType{Limits: Limits{Min: 1}}, rejectingLimiter{memoryCeiling: 2})
	assert.Equal(t, int32(1), m.Grow(1))
	assert.Equal(t, int32(-1), m.Grow(1))
}

func TestTableGrowConsultsLimiter(t *testing.T) {
	tbl := NewTable(TableType{ElementType: FuncRefType, Limits: Limits{Min: 1}}, rejectingLimiter{})
	assert.Equal(t, int32(-1), tbl.Grow(1, NullRefValue()))
}
