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

import "slices"

// ValueType classifies the individual values that WebAssembly code computes
// with. They are either NumberType or ReferenceType; vector types (SIMD) are
// not implemented.
// See https://webassembly.github.io/spec/core/syntax/types.html#value-types.
type ValueType interface {
	isValueType()
}

// NumberType classifies numeric values.
type NumberType int

const (
	I32 NumberType = 0x7f
	I64 NumberType = 0x7e
	F32 NumberType = 0x7d
	F64 NumberType = 0x7c
)

func (NumberType) isValueType() {}

// ReferenceType classifies first-class references to entities in the store.
type ReferenceType int

const (
	FuncRefType   ReferenceType = 0x70
	ExternRefType ReferenceType = 0x6f
)

func (ReferenceType) isValueType() {}

func isReferenceType(vt ValueType) bool {
	_, ok := vt.(ReferenceType)
	return ok
}

func isNumberType(vt ValueType) bool {
	_, ok := vt.(NumberType)
	return ok
}

// FunctionType classifies the signature of a function: a vector of
// parameters mapped to a vector of results.
type FunctionType struct {
	ParamTypes  []ValueType
	ResultTypes []ValueType
}

// Equal reports structural equality, used by the type interner.
func (ft *FunctionType) Equal(other *FunctionType) bool {
	if ft == other {
		return true
	}
	if ft == nil || other == nil {
		return false
	}
	return slices.Equal(ft.ParamTypes, other.ParamTypes) &&
		slices.Equal(ft.ResultTypes, other.ResultTypes)
}

func (ft *FunctionType) key() string {
	b := make([]byte, 0, len(ft.ParamTypes)+len(ft.ResultTypes)+1)
	for _, p := range ft.ParamTypes {
		b = append(b, valueTypeByte(p))
	}
	b = append(b, ':')
	for _, r := range ft.ResultTypes {
		b = append(b, valueTypeByte(r))
	}
	return string(b)
}

func valueTypeByte(vt ValueType) byte {
	switch t := vt.(type) {
	case NumberType:
		return byte(t)
	case ReferenceType:
		return byte(t)
	default:
		panic("unreachable: unknown value type")
	}
}

// Limits bound the size of a table or memory.
// See https://webassembly.github.io/spec/core/binary/types.html#limits.
type Limits struct {
	Min uint32
	Max *uint32
}

// TableType classifies a table: an element reference type plus limits.
type TableType struct {
	ElementType ReferenceType
	Limits      Limits
}

// MemoryType classifies a linear memory by its limits, in 64KiB pages.
type MemoryType struct {
	Limits Limits
}

// GlobalType classifies a global variable by its value type and mutability.
type GlobalType struct {
	ValueType ValueType
	IsMutable bool
}

// RequiredFeatures records the WebAssembly feature set the translator and
// execution loop assume are enabled.
type RequiredFeatures struct {
	ReferenceTypes        bool
	BulkMemory            bool
	MutableGlobals        bool
	SaturatingFloatToInt  bool
	SignExtension         bool
}

// DefaultRequiredFeatures returns the feature set this core always
// implements; the module format does not expose capability negotiation, so
// these are enabled unconditionally.
func DefaultRequiredFeatures() RequiredFeatures {
	return RequiredFeatures{
		ReferenceTypes:       true,
		BulkMemory:           true,
		MutableGlobals:       true,
		SaturatingFloatToInt: true,
		SignExtension:        true,
	}
}

// Function is the module-IR representation of a locally defined function
// body, prior to allocation and lazy translation.
type Function struct {
	TypeIndex uint32
	Locals    []ValueType
	Body      []byte
}

// IndexSpaceKind discriminates the four importable/exportable entity kinds.
type IndexSpaceKind int

const (
	FunctionIndexSpace IndexSpaceKind = iota
	TableIndexSpace
	MemoryIndexSpace
	GlobalIndexSpace
)

// ImportType is a marker interface for the type of an import declaration.
type ImportType interface {
	isImportType()
}

// FunctionTypeIndex is the declared type of an imported function.
type FunctionTypeIndex uint32

func (FunctionTypeIndex) isImportType() {}
func (TableType) isImportType()         {}
func (MemoryType) isImportType()        {}
func (GlobalType) isImportType()        {}

// Import represents one entry of a module's import section.
type Import struct {
	ModuleName string
	Name       string
	Type       ImportType
}

// Export represents one entry of a module's export section.
type Export struct {
	Name  string
	Kind  IndexSpaceKind
	Index uint32
}

// ElementMode specifies how an element segment is realized at instantiation.
type ElementMode int

const (
	ActiveElementMode ElementMode = iota
	PassiveElementMode
	DeclarativeElementMode
)

// ElementSegment represents one entry of a module's element section.
type ElementSegment struct {
	Mode  ElementMode
	Kind  ReferenceType
	Funcs []uint32 // function indices, used when Exprs is empty.
	Exprs [][]byte // constant expressions yielding references.

	TableIndex       uint32 // only meaningful when Mode == ActiveElementMode.
	OffsetExpression []byte // only meaningful when Mode == ActiveElementMode.
}

// DataMode specifies how a data segment is realized at instantiation.
type DataMode int

const (
	ActiveDataMode DataMode = iota
	PassiveDataMode
)

// DataSegment represents one entry of a module's data section.
type DataSegment struct {
	Mode    DataMode
	Content []byte

	MemoryIndex       uint32 // only meaningful when Mode == ActiveDataMode.
	OffsetExpression  []byte // only meaningful when Mode == ActiveDataMode.
}

// Module is the validated module IR consumed by instance allocation. It is
// produced by a binary-format parser and validator, both external
// collaborators of this core.
type Module struct {
	Types           []FunctionType
	Imports         []Import
	Exports         []Export
	StartIndex      *uint32
	Tables          []TableType
	Memories        []MemoryType
	Funcs           []Function
	ElementSegments []ElementSegment
	Globals         []GlobalVariable
	DataSegments    []DataSegment
}

// GlobalVariable is the module-IR representation of a locally defined
// global, prior to constant-expression evaluation.
type GlobalVariable struct {
	Type           GlobalType
	InitExpression []byte
}

// SectionElementCount reports the length of the module's own section for an
// index space; it is a small convenience, not part of the binary format.
func (m *Module) SectionElementCount(kind IndexSpaceKind) int {
	switch kind {
	case FunctionIndexSpace:
		return len(m.Funcs)
	case TableIndexSpace:
		return len(m.Tables)
	case MemoryIndexSpace:
		return len(m.Memories)
	case GlobalIndexSpace:
		return len(m.Globals)
	default:
		return 0
	}
}
