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
	"fmt"

	"github.com/sirupsen/logrus"
)

// Runtime is the embedder-facing entry point: it owns one Store and the
// Config every Instantiate call and resulting Instance invocation obeys.
type Runtime struct {
	store  *Store
	config Config
	log    *logrus.Entry
}

// NewRuntime constructs a Runtime with DefaultConfig.
func NewRuntime() *Runtime {
	return NewRuntimeWithConfig(DefaultConfig())
}

// NewRuntimeWithConfig constructs a Runtime with an explicit Config.
func NewRuntimeWithConfig(config Config) *Runtime {
	return &Runtime{
		store:  NewStore(config.Limiter),
		config: config,
		log:    defaultLogger.WithField("component", "runtime"),
	}
}

// Store returns the Runtime's Store, for embedders that need to allocate
// entities (host functions, standalone memories/tables/globals to import)
// ahead of instantiation.
func (rt *Runtime) Store() *Store { return rt.store }

// ModuleImportBuilder accumulates the entities one imported module namespace
// provides, to be resolved against a Module's import declarations by
// Runtime.Instantiate. A Module that imports from several namespaces is
// satisfied by passing one builder per namespace.
type ModuleImportBuilder struct {
	store      *Store
	moduleName string
	entries    map[string]ExternalValue
}

// NewModuleImportBuilder starts a builder for the imported namespace
// moduleName.
func (rt *Runtime) NewModuleImportBuilder(moduleName string) *ModuleImportBuilder {
	return &ModuleImportBuilder{
		store:      rt.store,
		moduleName: moduleName,
		entries:    map[string]ExternalValue{},
	}
}

// AddHostFunc allocates fn as a host function in the builder's store and
// registers it under name.
func (b *ModuleImportBuilder) AddHostFunc(name string, sig FunctionType, fn HostFunction) *ModuleImportBuilder {
	h := NewHostFunction(b.store, sig, fn)
	b.entries[name] = ExternalValue{Kind: FunctionIndexSpace, Func: h}
	return b
}

// AddMemory registers an already-allocated memory under name.
func (b *ModuleImportBuilder) AddMemory(name string, h MemoryHandle) *ModuleImportBuilder {
	b.entries[name] = ExternalValue{Kind: MemoryIndexSpace, Memory: h}
	return b
}

// AddTable registers an already-allocated table under name.
func (b *ModuleImportBuilder) AddTable(name string, h TableHandle) *ModuleImportBuilder {
	b.entries[name] = ExternalValue{Kind: TableIndexSpace, Table: h}
	return b
}

// AddGlobal registers an already-allocated global under name.
func (b *ModuleImportBuilder) AddGlobal(name string, h GlobalHandle) *ModuleImportBuilder {
	b.entries[name] = ExternalValue{Kind: GlobalIndexSpace, Global: h}
	return b
}

// AddModuleExports re-exposes every export of an already-instantiated
// Instance under this builder's namespace, the common case of one module
// importing another's exports.
func (b *ModuleImportBuilder) AddModuleExports(inst *Instance) *ModuleImportBuilder {
	for name, ev := range inst.entity.Exports {
		b.entries[name] = ev
	}
	return b
}

// Instance is the embedder handle to one allocated and fully instantiated
// module: its active segments have already been copied and its start
// function, if any, has already run.
type Instance struct {
	store   *Store
	runtime *Runtime
	handle  InstanceHandle
	entity  *InstanceEntity
}

// Export looks up a name in the instance's export map.
func (in *Instance) Export(name string) (ExternalValue, bool) {
	ev, ok := in.entity.Exports[name]
	return ev, ok
}

// Memory resolves an exported memory by name, or nil if absent or not a
// memory export.
func (in *Instance) Memory(name string) *Memory {
	ev, ok := in.Export(name)
	if !ok || ev.Kind != MemoryIndexSpace {
		return nil
	}
	return in.store.resolveMemory(ev.Memory)
}

// Global resolves an exported global by name, or nil if absent or not a
// global export.
func (in *Instance) Global(name string) *Global {
	ev, ok := in.Export(name)
	if !ok || ev.Kind != GlobalIndexSpace {
		return nil
	}
	return in.store.resolveGlobal(ev.Global)
}

// Table resolves an exported table by name, or nil if absent or not a
// table export.
func (in *Instance) Table(name string) *Table {
	ev, ok := in.Export(name)
	if !ok || ev.Kind != TableIndexSpace {
		return nil
	}
	return in.store.resolveTable(ev.Table)
}

// Invoke calls an exported function by name, whether it resolves to a
// wasm-defined function or a reexported host import.
func (in *Instance) Invoke(name string, args ...Value) ([]Value, error) {
	ev, ok := in.Export(name)
	if !ok || ev.Kind != FunctionIndexSpace {
		return nil, fmt.Errorf("no exported function %q", name)
	}
	return in.runtime.callFunction(in.handle, ev.Func, args)
}

// callFunction dispatches to a wasm callee via a fresh executor or directly
// to a host callee, the same dispatch doCall performs for calls originating
// inside translated code, but entered here from the embedder.
func (rt *Runtime) callFunction(instHandle InstanceHandle, f InternalFunction, args []Value) ([]Value, error) {
	wasm, host := rt.store.resolveInternalFunction(f)
	if host != nil {
		if err := checkHostArity(&host.Type, args); err != nil {
			return nil, err
		}
		caller := &Caller{store: rt.store, instance: instHandle, runtime: rt}
		return host.Func(caller, args)
	}
	ex := newExecutor(rt.store, rt)
	return ex.invokeWasmFunction(wasm, args)
}

// Instantiate runs the full instantiation sequence: instance allocation,
// then active element and data segment copies, then the start
// function if the module declares one. builders supply the entities each
// imported namespace resolves to; a namespace with no matching builder is an
// instantiation error unless the module declares no imports from it.
func (rt *Runtime) Instantiate(mod *Module, builders ...*ModuleImportBuilder) (*Instance, error) {
	namespaces := map[string]map[string]ExternalValue{}
	for _, b := range builders {
		ns := namespaces[b.moduleName]
		if ns == nil {
			ns = map[string]ExternalValue{}
			namespaces[b.moduleName] = ns
		}
		for name, ev := range b.entries {
			ns[name] = ev
		}
	}

	imports := make([]ResolvedImport, len(mod.Imports))
	for i, imp := range mod.Imports {
		ns, ok := namespaces[imp.ModuleName]
		if !ok {
			return nil, newInstantiationError("resolve-imports", fmt.Errorf("no imports provided for module %q", imp.ModuleName))
		}
		ev, ok := ns[imp.Name]
		if !ok {
			return nil, newInstantiationError("resolve-imports", fmt.Errorf("missing import %q.%q", imp.ModuleName, imp.Name))
		}
		imports[i] = ResolvedImport{Value: ev}
	}

	handle, entity, err := AllocateInstance(rt.store, mod, imports, DefaultRequiredFeatures())
	if err != nil {
		rt.log.WithError(err).Warn("instance allocation failed")
		return nil, err
	}

	if err := applyActiveElements(rt.store, entity, mod); err != nil {
		return nil, newInstantiationError("active-elements", err)
	}
	if err := applyActiveData(rt.store, entity, mod); err != nil {
		return nil, newInstantiationError("active-data", err)
	}

	inst := &Instance{store: rt.store, runtime: rt, handle: handle, entity: entity}

	if mod.StartIndex != nil {
		if _, err := rt.callFunction(handle, entity.Funcs[*mod.StartIndex], nil); err != nil {
			rt.log.WithError(err).Warn("start function trapped")
			return nil, newInstantiationError("start", err)
		}
	}

	rt.log.WithField("exports", len(entity.Exports)).Debug("instance ready")
	return inst, nil
}

// applyActiveElements performs the active-segment copy instantiation defers
// past AllocateInstance: copying each active element segment's
// evaluated references into its target table. Passive and declarative
// segments are handled entirely by AllocateInstance/table.init.
func applyActiveElements(st *Store, inst *InstanceEntity, mod *Module) error {
	ctx := &constEvalContext{store: st, funcs: inst.Funcs, globals: inst.Globals}
	for _, seg := range mod.ElementSegments {
		if seg.Mode != ActiveElementMode {
			continue
		}
		vals, err := evalElementRefs(st, inst, seg)
		if err != nil {
			return err
		}
		offset, err := evalConstExpr(ctx, seg.OffsetExpression, I32)
		if err != nil {
			return err
		}
		tbl := st.resolveTable(inst.Tables[seg.TableIndex])
		if err := tbl.Init(uint32(offset.I32()), 0, uint32(len(vals)), vals); err != nil {
			return err
		}
	}
	return nil
}

// applyActiveData performs the other half of that same deferred step:
// copying each active data segment's bytes into its target memory.
func applyActiveData(st *Store, inst *InstanceEntity, mod *Module) error {
	ctx := &constEvalContext{store: st, funcs: inst.Funcs, globals: inst.Globals}
	for _, seg := range mod.DataSegments {
		if seg.Mode != ActiveDataMode {
			continue
		}
		offset, err := evalConstExpr(ctx, seg.OffsetExpression, I32)
		if err != nil {
			return err
		}
		mem := st.resolveMemory(inst.Memories[seg.MemoryIndex])
		if err := mem.Init(uint32(offset.I32()), 0, uint32(len(seg.Content)), seg.Content); err != nil {
			return err
		}
	}
	return nil
}
