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

// WasmFuncHandle and HostFuncHandle address entities in the store's two
// function pools. They are kept as distinct pool indices (see pool.go)
// rather than raw pointer arithmetic, since Go does not let us steal the
// low bit of a GC-managed pointer; InternalFunction tags a dense index
// instead. The result is a single 64-bit value that distinguishes wasm
// from host functions and is stable for the life of the store.
type WasmFuncHandle = Handle[WasmFunctionEntity]
type HostFuncHandle = Handle[HostFunctionEntity]

// InternalFunction is a tagged handle uniting wasm and host functions. The
// low bit selects the variant (0 = wasm, 1 = host); the remaining bits hold
// the dense pool index of the entity.
type InternalFunction uint64

const internalFunctionHostTag = 1

func wasmInternalFunction(h WasmFuncHandle) InternalFunction {
	return InternalFunction(uint64(h) << 1)
}

func hostInternalFunction(h HostFuncHandle) InternalFunction {
	return InternalFunction(uint64(h)<<1) | internalFunctionHostTag
}

// IsHost reports whether this handle addresses a host function.
func (f InternalFunction) IsHost() bool {
	return f&internalFunctionHostTag != 0
}

func (f InternalFunction) wasmHandle() WasmFuncHandle {
	return WasmFuncHandle(uint64(f) >> 1)
}

func (f InternalFunction) hostHandle() HostFuncHandle {
	return HostFuncHandle(uint64(f) >> 1)
}
