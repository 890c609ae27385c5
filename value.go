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

import "math"

// NullReference is the internal representation of a null funcref/externref.
// It is distinct from any valid entity handle bit-pattern (see handle.go).
const NullReference int64 = -1

// Value is an untyped 64-bit cell. Every register in a StackContext and
// every argument/result crossing the embedder boundary is stored as a
// Value; the accessors below reinterpret the bits according to the static
// type the translator already knows at each use site. Reinterpretation is
// bit-exact: no conversion, just a reading of the same 64 bits.
type Value struct {
	bits uint64
}

func I32Value(v int32) Value { return Value{bits: uint64(uint32(v))} }
func I64Value(v int64) Value { return Value{bits: uint64(v)} }
func F32Value(v float32) Value { return Value{bits: uint64(math.Float32bits(v))} }
func F64Value(v float64) Value { return Value{bits: math.Float64bits(v)} }

// FuncRefValue wraps an InternalFunction handle as a funcref value. A null
// funcref is NullRefValue().
func FuncRefValue(f InternalFunction) Value { return Value{bits: uint64(f)} }

// ExternRefValue wraps an opaque host-assigned external reference index.
func ExternRefValue(idx int64) Value { return Value{bits: uint64(idx)} }

// NullRefValue is the null reference, valid for both funcref and externref.
func NullRefValue() Value { n := NullReference; return Value{bits: uint64(n)} }

func (v Value) I32() int32       { return int32(uint32(v.bits)) }
func (v Value) I64() int64       { return int64(v.bits) }
func (v Value) F32() float32     { return math.Float32frombits(uint32(v.bits)) }
func (v Value) F64() float64     { return math.Float64frombits(v.bits) }
func (v Value) Bits() uint64     { return v.bits }
func (v Value) FuncRef() InternalFunction { return InternalFunction(v.bits) }
func (v Value) ExternRef() int64 { return int64(v.bits) }
func (v Value) IsNullRef() bool  { return int64(v.bits) == NullReference }

// DefaultValue returns the zero value for a value type: numeric zero or a
// null reference.
func DefaultValue(vt ValueType) Value {
	switch t := vt.(type) {
	case NumberType:
		return Value{}
	case ReferenceType:
		_ = t
		return NullRefValue()
	default:
		panic("unreachable: unknown value type")
	}
}

// ToAny converts a raw Value into a dynamically typed Go value for embedder
// code that wants one; Instance.Invoke and host functions themselves
// exchange raw Values.
func (v Value) ToAny(vt ValueType) any {
	switch t := vt.(type) {
	case NumberType:
		switch t {
		case I32:
			return v.I32()
		case I64:
			return v.I64()
		case F32:
			return v.F32()
		case F64:
			return v.F64()
		}
	case ReferenceType:
		if v.IsNullRef() {
			return nil
		}
		return v.bits
	}
	panic("unreachable: unknown value type")
}

// ValueFromAny converts a dynamically typed Go value supplied by an embedder
// into a raw Value, type-checking it against vt. The bool result is false on
// a type mismatch; the caller decides how to report that.
func ValueFromAny(a any, vt ValueType) (Value, bool) {
	switch t := vt.(type) {
	case NumberType:
		switch t {
		case I32:
			v, ok := a.(int32)
			return I32Value(v), ok
		case I64:
			v, ok := a.(int64)
			return I64Value(v), ok
		case F32:
			v, ok := a.(float32)
			return F32Value(v), ok
		case F64:
			v, ok := a.(float64)
			return F64Value(v), ok
		}
	case ReferenceType:
		if a == nil {
			return NullRefValue(), true
		}
		switch v := a.(type) {
		case InternalFunction:
			return FuncRefValue(v), true
		case int64:
			return ExternRefValue(v), true
		}
	}
	return Value{}, false
}
