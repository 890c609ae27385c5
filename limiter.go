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

// ResourceLimiter is consulted synchronously whenever a memory or table is
// allocated or grown. A rejection at allocation time (declared minimums)
// fails instantiation with an InstantiationError; a rejection at growth
// time makes memory.grow/table.grow return -1 per Wasm semantics, without
// trapping.
type ResourceLimiter interface {
	// AllowMemory is asked once per memory at allocation time, before any
	// bytes are reserved, with desired set to the declared minimum, and
	// again by every Memory.Grow with desired set to the new page count.
	AllowMemory(current, desired, max uint32) bool
	// AllowTable is asked once per table at allocation time, before any
	// elements are reserved, with desired set to the declared minimum, and
	// again by every Table.Grow with desired set to the new element count.
	AllowTable(current, desired, max uint32) bool
}

// NoopLimiter approves every request: the default behavior of not
// limiting growth at all.
type NoopLimiter struct{}

func (NoopLimiter) AllowMemory(current, desired, max uint32) bool { return true }
func (NoopLimiter) AllowTable(current, desired, max uint32) bool  { return true }
