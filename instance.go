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

import "fmt"

// ExternalValue is the result of resolving an export or a resolved import:
// exactly one of the four handle kinds is meaningful, discriminated by Kind.
type ExternalValue struct {
	Kind   IndexSpaceKind
	Func   InternalFunction
	Table  TableHandle
	Memory MemoryHandle
	Global GlobalHandle
}

// InstanceEntity is the merged import+local view of one module
// instantiation. Its index spaces are fixed-length and immutable once
// AllocateInstance returns: indexing never changes after construction, only
// the entities addressed by table/global/memory handles do.
type InstanceEntity struct {
	Types    []FunctionType
	Funcs    []InternalFunction
	Tables   []TableHandle
	Memories []MemoryHandle
	Globals  []GlobalHandle

	// Elements and DataSegments hold the passive-segment payloads surviving
	// past allocation; active segments are recorded empty here, and the
	// instantiation sequence issues the explicit copy instead.
	Elements     [][]Value
	DataSegments [][]byte

	Exports  map[string]ExternalValue
	Features RequiredFeatures
}

// ResolvedImport is one import already satisfied by the embedder, matched to
// its declaration by position within Module.Imports.
type ResolvedImport struct {
	Value ExternalValue
}

// exportIndexOutOfBoundsError reports an export whose declared index falls
// outside the corresponding index space.
type exportIndexOutOfBoundsError struct {
	Kind  IndexSpaceKind
	Index uint32
	Count int
}

func (e *exportIndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("export index %d out of bounds for kind %d (count %d)", e.Index, e.Kind, e.Count)
}

// AllocateInstance runs the instance allocation algorithm: it merges
// imports with module-local definitions into the instance's index
// spaces, allocates every local entity through store, evaluates global
// initializers and passive segments, and builds the export map. It does not
// perform active segment copies or invoke the start function; those belong
// to the caller's instantiation sequence (Runtime.Instantiate).
func AllocateInstance(st *Store, mod *Module, imports []ResolvedImport, features RequiredFeatures) (InstanceHandle, *InstanceEntity, error) {
	// Step 1: reserve the instance handle so locally allocated functions can
	// record it by identity before the instance itself is populated.
	instHandle, inst := st.allocateInstance(InstanceEntity{
		Exports:  map[string]ExternalValue{},
		Features: features,
	})

	// Step 2-3: partition imports by kind, preserving import order, then
	// append module-local definitions.
	var importedFuncs []InternalFunction
	var importedTables []TableHandle
	var importedMemories []MemoryHandle
	var importedGlobals []GlobalHandle

	for i, imp := range mod.Imports {
		if i >= len(imports) {
			return instHandle, inst, newInstantiationError("resolve-imports", fmt.Errorf("missing resolved import for %q.%q", imp.ModuleName, imp.Name))
		}
		ext := imports[i].Value
		switch t := imp.Type.(type) {
		case FunctionTypeIndex:
			if ext.Kind != FunctionIndexSpace {
				return instHandle, inst, newInstantiationError("link-functions", fmt.Errorf("import %q.%q: expected function", imp.ModuleName, imp.Name))
			}
			if err := checkImportedFunctionType(st, ext.Func, mod.Types[t]); err != nil {
				return instHandle, inst, newInstantiationError("link-functions", err)
			}
			importedFuncs = append(importedFuncs, ext.Func)
		case TableType:
			if ext.Kind != TableIndexSpace {
				return instHandle, inst, newInstantiationError("link-tables", fmt.Errorf("import %q.%q: expected table", imp.ModuleName, imp.Name))
			}
			importedTables = append(importedTables, ext.Table)
		case MemoryType:
			if ext.Kind != MemoryIndexSpace {
				return instHandle, inst, newInstantiationError("link-memories", fmt.Errorf("import %q.%q: expected memory", imp.ModuleName, imp.Name))
			}
			importedMemories = append(importedMemories, ext.Memory)
		case GlobalType:
			if ext.Kind != GlobalIndexSpace {
				return instHandle, inst, newInstantiationError("link-globals", fmt.Errorf("import %q.%q: expected global", imp.ModuleName, imp.Name))
			}
			importedGlobals = append(importedGlobals, ext.Global)
		}
	}

	inst.Types = mod.Types

	// Step 4: allocate local functions with the reserved instance handle;
	// signatures are interned.
	funcs := append([]InternalFunction{}, importedFuncs...)
	for i, f := range mod.Funcs {
		typeID := st.internType(mod.Types[f.TypeIndex])
		h, _ := st.allocateWasmFunc(WasmFunctionEntity{
			Instance: instHandle,
			TypeID:   typeID,
			Locals:   f.Locals,
			Body:     f.Body,
			FuncIdx:  uint32(len(importedFuncs) + i),
		})
		funcs = append(funcs, wasmInternalFunction(h))
	}
	inst.Funcs = funcs

	// Step 5: allocate tables and memories, asking the resource limiter for
	// approval at their declared minimums.
	tables := append([]TableHandle{}, importedTables...)
	for _, tt := range mod.Tables {
		if !st.limiter.AllowTable(0, tt.Limits.Min, maxOrDefault(tt.Limits.Max, 1<<32-1)) {
			return instHandle, inst, newInstantiationError("allocate-tables", fmt.Errorf("resource limiter rejected table minimum %d", tt.Limits.Min))
		}
		h, _ := st.allocateTable(tt)
		tables = append(tables, h)
	}
	inst.Tables = tables

	memories := append([]MemoryHandle{}, importedMemories...)
	for _, mt := range mod.Memories {
		if !st.limiter.AllowMemory(0, mt.Limits.Min, maxOrDefault(mt.Limits.Max, maxMemoryPages)) {
			return instHandle, inst, newInstantiationError("allocate-memories", fmt.Errorf("resource limiter rejected memory minimum %d", mt.Limits.Min))
		}
		h, _ := st.allocateMemory(mt)
		memories = append(memories, h)
	}
	inst.Memories = memories

	// Step 6: evaluate each global's constant initializer in a context
	// exposing already-allocated functions and globals produced so far.
	globals := append([]GlobalHandle{}, importedGlobals...)
	for _, g := range mod.Globals {
		ctx := &constEvalContext{store: st, funcs: funcs, globals: globals}
		v, err := evalConstExpr(ctx, g.InitExpression, g.Type.ValueType)
		if err != nil {
			return instHandle, inst, newInstantiationError("evaluate-globals", err)
		}
		h, _ := st.allocateGlobal(g.Type, v)
		globals = append(globals, h)
	}
	inst.Globals = globals

	// Step 7: allocate element segments.
	elements := make([][]Value, len(mod.ElementSegments))
	for i, seg := range mod.ElementSegments {
		if seg.Mode != PassiveElementMode {
			continue
		}
		vals, err := evalElementRefs(st, inst, seg)
		if err != nil {
			return instHandle, inst, newInstantiationError("evaluate-elements", err)
		}
		elements[i] = vals
	}
	inst.Elements = elements

	// Step 8: allocate data segments.
	data := make([][]byte, len(mod.DataSegments))
	for i, seg := range mod.DataSegments {
		if seg.Mode == PassiveDataMode {
			data[i] = seg.Content
		}
	}
	inst.DataSegments = data

	// Step 9: build the export map.
	exports := map[string]ExternalValue{}
	for _, exp := range mod.Exports {
		ev, err := resolveExport(inst, exp)
		if err != nil {
			return instHandle, inst, newInstantiationError("build-exports", err)
		}
		exports[exp.Name] = ev
	}
	inst.Exports = exports

	return instHandle, inst, nil
}

func resolveExport(inst *InstanceEntity, exp Export) (ExternalValue, error) {
	switch exp.Kind {
	case FunctionIndexSpace:
		if int(exp.Index) >= len(inst.Funcs) {
			return ExternalValue{}, &exportIndexOutOfBoundsError{exp.Kind, exp.Index, len(inst.Funcs)}
		}
		return ExternalValue{Kind: FunctionIndexSpace, Func: inst.Funcs[exp.Index]}, nil
	case TableIndexSpace:
		if int(exp.Index) >= len(inst.Tables) {
			return ExternalValue{}, &exportIndexOutOfBoundsError{exp.Kind, exp.Index, len(inst.Tables)}
		}
		return ExternalValue{Kind: TableIndexSpace, Table: inst.Tables[exp.Index]}, nil
	case MemoryIndexSpace:
		if int(exp.Index) >= len(inst.Memories) {
			return ExternalValue{}, &exportIndexOutOfBoundsError{exp.Kind, exp.Index, len(inst.Memories)}
		}
		return ExternalValue{Kind: MemoryIndexSpace, Memory: inst.Memories[exp.Index]}, nil
	case GlobalIndexSpace:
		if int(exp.Index) >= len(inst.Globals) {
			return ExternalValue{}, &exportIndexOutOfBoundsError{exp.Kind, exp.Index, len(inst.Globals)}
		}
		return ExternalValue{Kind: GlobalIndexSpace, Global: inst.Globals[exp.Index]}, nil
	default:
		return ExternalValue{}, fmt.Errorf("unknown export kind %d", exp.Kind)
	}
}

func checkImportedFunctionType(st *Store, f InternalFunction, expected FunctionType) error {
	wasm, host := st.resolveInternalFunction(f)
	var actual *FunctionType
	if wasm != nil {
		actual = st.resolveType(wasm.TypeID)
	} else {
		actual = &host.Type
	}
	if !actual.Equal(&expected) {
		return fmt.Errorf("imported function type mismatch: expected %v, got %v", expected, actual)
	}
	return nil
}

func maxOrDefault(max *uint32, def uint32) uint32 {
	if max == nil {
		return def
	}
	return *max
}
