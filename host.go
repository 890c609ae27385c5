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
)

// HostFunction is the signature a Go function must implement to be callable
// from wasm code. caller exposes the calling instance's memories and
// globals by index so host functions can read/write linear memory.
type HostFunction func(caller *Caller, args []Value) ([]Value, error)

// HostFunctionEntity is the store-resident representation of a host import.
type HostFunctionEntity struct {
	Type FunctionType
	Func HostFunction
}

// NewHostFunction allocates a host import in st and returns the tagged
// handle an embedder can place into ResolvedImport.Value.Func or into
// Runtime's import builder.
func NewHostFunction(st *Store, sig FunctionType, fn HostFunction) InternalFunction {
	h, _ := st.allocateHostFunc(HostFunctionEntity{Type: sig, Func: fn})
	return hostInternalFunction(h)
}

// checkHostArity reports whether args matches sig.ParamTypes in count,
// surfaced as a plain error rather than a trap: a host function call from
// Go (not from translated wasm code, which the translator already arity-
// checks at compile time) is the one place a caller can hand in a
// mismatched argument list.
func checkHostArity(sig *FunctionType, args []Value) error {
	if len(args) != len(sig.ParamTypes) {
		return &arityMismatchError{expected: len(sig.ParamTypes), got: len(args)}
	}
	return nil
}

type arityMismatchError struct {
	expected, got int
}

func (e *arityMismatchError) Error() string {
	return fmt.Sprintf("wrong argument count: expected %d, got %d", e.expected, e.got)
}

// checkHostResultArity reports whether results matches sig.ResultTypes in
// count. A host function called from translated wasm code writes its
// results directly into the reserved return-register slots (invokeHost in
// exec.go); unlike checkHostArity's argument count, which the translator
// already fixes at the call site, a host function's own return statement is
// arbitrary Go code and can hand back the wrong number of results.
func checkHostResultArity(sig *FunctionType, results []Value) error {
	if len(results) != len(sig.ResultTypes) {
		return &resultArityMismatchError{expected: len(sig.ResultTypes), got: len(results)}
	}
	return nil
}

type resultArityMismatchError struct {
	expected, got int
}

func (e *resultArityMismatchError) Error() string {
	return fmt.Sprintf("wrong result count: expected %d, got %d", e.expected, e.got)
}
