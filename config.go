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

// Config controls the behavior and resource limits of a Runtime.
type Config struct {
	// MaxCallStackDepth is the hard limit on nested call depth, independent
	// of the register-file size, to keep a deeply recursive but
	// register-cheap function from exhausting Go's own goroutine stack
	// before StackContext runs out. Default: 65536.
	MaxCallStackDepth int

	// InitialStackRegisters is the number of Value slots a fresh
	// StackContext preallocates. Default: 4096.
	InitialStackRegisters int

	// EnableFuel turns on the cooperative instruction-budget poll: the
	// execution loop decrements Fuel at every loop back-edge and call,
	// trapping with TrapOutOfFuel when it reaches zero. Disabled by
	// default; enabling has a measurable per-instruction cost at the
	// points it is checked.
	EnableFuel bool

	// Fuel is the initial instruction budget. Only consulted if EnableFuel
	// is true.
	Fuel uint64

	// Limiter gates memory/table allocation and growth. A nil Limiter
	// defaults to NoopLimiter.
	Limiter ResourceLimiter
}

// DefaultConfig returns a Config with sensible defaults: fuel disabled, no
// resource limiter beyond the module's own declared maximums.
func DefaultConfig() Config {
	return Config{
		MaxCallStackDepth:     maxCallDepth,
		InitialStackRegisters: defaultStackSize,
		Limiter:               NoopLimiter{},
	}
}
