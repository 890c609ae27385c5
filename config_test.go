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

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, maxCallDepth, cfg.MaxCallStackDepth)
	assert.Equal(t, defaultStackSize, cfg.InitialStackRegisters)
	assert.False(t, cfg.EnableFuel)
	assert.IsType(t, NoopLimiter{}, cfg.Limiter)
}

func TestRuntimeHonorsCustomInitialStackRegisters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialStackRegisters = 16
	rt := NewRuntimeWithConfig(cfg)
	ex := newExecutor(rt.store, rt)
	assert.Len(t, ex.stack.values, 16)
}
