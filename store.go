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
	"sync"

	"github.com/sirupsen/logrus"
)

// MemoryHandle, TableHandle, GlobalHandle and InstanceHandle address entities
// in the store's respective pools, mirroring WasmFuncHandle/HostFuncHandle
// in handle.go.
type MemoryHandle = Handle[Memory]
type TableHandle = Handle[Table]
type GlobalHandle = Handle[Global]
type InstanceHandle = Handle[InstanceEntity]

// WasmFunctionEntity is the store-resident representation of a locally
// defined function. It starts Uncompiled; its register-IR body is produced
// lazily by the translator the first time the function is invoked or
// referenced via call_indirect, and the Uncompiled->Compiled transition
// happens at most once (compileOnce), memoized thereafter.
type WasmFunctionEntity struct {
	Instance InstanceHandle
	TypeID   FunctionTypeID
	Locals   []ValueType
	Body     []byte
	FuncIdx  uint32

	compileOnce sync.Once
	iseq        *InstructionSequence
	compileErr  error
}

// ensureCompiled runs the translator at most once for this function,
// regardless of how many goroutines call concurrently.
func (f *WasmFunctionEntity) ensureCompiled(st *Store) (*InstructionSequence, error) {
	f.compileOnce.Do(func() {
		f.iseq, f.compileErr = translateFunction(st, f)
	})
	return f.iseq, f.compileErr
}

// Store owns every entity allocated while modules are instantiated: it is
// the arena handing out stable Handles that remain valid even as later
// allocations grow the store's pools.
type Store struct {
	mu sync.Mutex

	typeInterner typeInterner

	wasmFuncs entityPool[WasmFunctionEntity]
	hostFuncs entityPool[HostFunctionEntity]
	instances entityPool[InstanceEntity]
	memories  entityPool[Memory]
	tables    entityPool[Table]
	globals   entityPool[Global]
	iseqs     *iseqArena

	limiter ResourceLimiter
	log     *logrus.Entry
}

// NewStore constructs an empty Store. A nil limiter defaults to NoopLimiter.
func NewStore(limiter ResourceLimiter) *Store {
	if limiter == nil {
		limiter = NoopLimiter{}
	}
	return &Store{
		typeInterner: *newTypeInterner(),
		wasmFuncs:    *newEntityPool[WasmFunctionEntity](),
		hostFuncs:    *newEntityPool[HostFunctionEntity](),
		instances:    *newEntityPool[InstanceEntity](),
		memories:     *newEntityPool[Memory](),
		tables:       *newEntityPool[Table](),
		globals:      *newEntityPool[Global](),
		iseqs:        newIseqArena(),
		limiter:      limiter,
		log:          defaultLogger.WithField("component", "store"),
	}
}

func (s *Store) internType(t FunctionType) FunctionTypeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typeInterner.Intern(t)
}

func (s *Store) resolveType(id FunctionTypeID) *FunctionType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typeInterner.Resolve(id)
}

func (s *Store) allocateWasmFunc(f WasmFunctionEntity) (WasmFuncHandle, *WasmFunctionEntity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wasmFuncs.Allocate(f)
}

func (s *Store) resolveWasmFunc(h WasmFuncHandle) *WasmFunctionEntity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wasmFuncs.Resolve(h)
}

func (s *Store) allocateHostFunc(f HostFunctionEntity) (HostFuncHandle, *HostFunctionEntity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hostFuncs.Allocate(f)
}

func (s *Store) resolveHostFunc(h HostFuncHandle) *HostFunctionEntity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hostFuncs.Resolve(h)
}

func (s *Store) allocateInstance(i InstanceEntity) (InstanceHandle, *InstanceEntity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instances.Allocate(i)
}

func (s *Store) resolveInstance(h InstanceHandle) *InstanceEntity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instances.Resolve(h)
}

func (s *Store) allocateMemory(t MemoryType) (MemoryHandle, *Memory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memories.Allocate(*NewMemory(t, s.limiter))
}

func (s *Store) resolveMemory(h MemoryHandle) *Memory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memories.Resolve(h)
}

func (s *Store) allocateTable(t TableType) (TableHandle, *Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tables.Allocate(*NewTable(t, s.limiter))
}

func (s *Store) resolveTable(h TableHandle) *Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tables.Resolve(h)
}

func (s *Store) allocateGlobal(t GlobalType, initial Value) (GlobalHandle, *Global) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.globals.Allocate(*NewGlobal(t, initial))
}

func (s *Store) resolveGlobal(h GlobalHandle) *Global {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.globals.Resolve(h)
}

// resolveInternalFunction dereferences a tagged InternalFunction against the
// owning store's two function pools.
func (s *Store) resolveInternalFunction(f InternalFunction) (wasm *WasmFunctionEntity, host *HostFunctionEntity) {
	if f.IsHost() {
		return nil, s.resolveHostFunc(f.hostHandle())
	}
	return s.resolveWasmFunc(f.wasmHandle()), nil
}

// isValidInternalFunction reports whether f addresses a function this store
// actually allocated. call_indirect reads f out of a table slot rather than
// from a site the translator fixed at compile time, so a crafted or stale
// funcref must be bounds-checked before it is ever resolved.
func (s *Store) isValidInternalFunction(f InternalFunction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.IsHost() {
		return s.hostFuncs.InBounds(f.hostHandle())
	}
	return s.wasmFuncs.InBounds(f.wasmHandle())
}
