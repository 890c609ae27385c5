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

	"github.com/pkg/errors"
)

// TrapCode enumerates the reasons execution can trap.
// A trap unwinds the Go call stack as a panic/recover pair at the Invoke
// boundary, carrying a *Trap value, so that internal frames never have to
// thread an error return through every instruction handler.
type TrapCode int

const (
	TrapUnreachable TrapCode = iota
	TrapIntegerOverflow
	TrapIntegerDivideByZero
	TrapInvalidConversionToInteger
	TrapOutOfBoundsMemoryAccess
	TrapOutOfBoundsTableAccess
	TrapIndirectCallTypeMismatch
	TrapUndefinedElement
	TrapUninitializedElement
	TrapInvalidFunctionIndex
	TrapCallStackExhausted
	TrapMemoryOutOfMemory
	TrapTableOutOfMemory
	TrapOutOfFuel
	TrapCustom
)

func (c TrapCode) String() string {
	switch c {
	case TrapUnreachable:
		return "unreachable"
	case TrapIntegerOverflow:
		return "integer overflow"
	case TrapIntegerDivideByZero:
		return "integer divide by zero"
	case TrapInvalidConversionToInteger:
		return "invalid conversion to integer"
	case TrapOutOfBoundsMemoryAccess:
		return "out of bounds memory access"
	case TrapOutOfBoundsTableAccess:
		return "out of bounds table access"
	case TrapIndirectCallTypeMismatch:
		return "indirect call type mismatch"
	case TrapUndefinedElement:
		return "undefined element"
	case TrapUninitializedElement:
		return "uninitialized element"
	case TrapInvalidFunctionIndex:
		return "invalid function index"
	case TrapCallStackExhausted:
		return "call stack exhausted"
	case TrapMemoryOutOfMemory:
		return "out of memory growing linear memory"
	case TrapTableOutOfMemory:
		return "out of memory growing table"
	case TrapOutOfFuel:
		return "out of fuel"
	case TrapCustom:
		return "custom trap"
	default:
		return "unknown trap"
	}
}

// Trap is the value recovered at the Invoke boundary when execution
// traps. It is deliberately not a plain error returned by every instruction
// handler: the execution loop (exec.go) is a tight dispatch loop and cannot
// afford an error check after every instruction.
type Trap struct {
	Code TrapCode

	// Message carries a dynamic diagnostic the fixed TrapCode can't: a host
	// function's own error text, or a translation failure surfaced at the
	// call site. Set only for TrapCustom.
	Message string
}

func (t *Trap) Error() string {
	if t.Message != "" {
		return fmt.Sprintf("wasm trap: %s: %s", t.Code, t.Message)
	}
	return fmt.Sprintf("wasm trap: %s", t.Code)
}

// throwTrap panics with a *Trap; recovered only by
// executor.invokeWasmFunction (exec.go).
func throwTrap(code TrapCode) {
	panic(&Trap{Code: code})
}

// throwCustomTrap panics with a TrapCustom carrying msg, for failures whose
// diagnostic is more specific than any fixed TrapCode: a host function
// returning its own error, or a lazy-compile failure hit at a call site.
func throwCustomTrap(msg string) {
	panic(&Trap{Code: TrapCustom, Message: msg})
}

// Sentinel errors returned by non-trapping entity operations (Memory, Table)
// and promoted to traps by the execution loop, or surfaced directly as plain
// errors to callers that operate outside of a running instruction (e.g.
// instantiation's data/element segment application).
var (
	errOutOfBoundsMemoryAccess = errors.New(TrapOutOfBoundsMemoryAccess.String())
	errOutOfBoundsTableAccess  = errors.New(TrapOutOfBoundsTableAccess.String())
	errCallStackExhausted      = errors.New(TrapCallStackExhausted.String())
	errIndirectCallTypeMismatch = errors.New(TrapIndirectCallTypeMismatch.String())
	errUninitializedElement     = errors.New(TrapUninitializedElement.String())
)

// InstantiationError reports a failure to allocate or link a module
// instance: an import could not be resolved, an import's type did not
// match its declared type, or a start function trapped.
type InstantiationError struct {
	Stage string
	Err   error
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("instantiation failed at %s: %v", e.Stage, e.Err)
}

func (e *InstantiationError) Unwrap() error { return e.Err }

func newInstantiationError(stage string, err error) *InstantiationError {
	return &InstantiationError{Stage: stage, Err: errors.Wrapf(err, "stage %s", stage)}
}

// TranslationError reports a failure of the stack-to-register translator
// to lower a function body, distinct from validation: the translator's own
// structural re-checks reject a body with a missing end, an unsupported
// opcode, a truncated immediate or an out-of-range index.
type TranslationError struct {
	FuncIndex uint32
	Err       error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("failed to translate function %d: %v", e.FuncIndex, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

func newTranslationError(funcIndex uint32, err error) *TranslationError {
	return &TranslationError{FuncIndex: funcIndex, Err: errors.WithStack(err)}
}
