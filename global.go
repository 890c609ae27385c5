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

// Global is the runtime representation of a global variable.
// Mutation is only legal when Type.IsMutable, enforced by validation rather
// than here; the execution loop trusts a translated module's global.set
// instructions to target only mutable globals.
type Global struct {
	Type  GlobalType
	Value Value
}

func NewGlobal(t GlobalType, initial Value) *Global {
	return &Global{Type: t, Value: initial}
}

func (g *Global) Get() Value {
	return g.Value
}

func (g *Global) Set(v Value) {
	g.Value = v
}
