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

// Package benchmarks exercises the register translator and execution loop
// directly against hand-assembled function bodies, rather than against
// parsed .wasm binaries: binary-format parsing sits outside the execution
// core, so these modules are built as already-validated Module IR.
package benchmarks

import (
	"testing"

	wasmkit "github.com/Sajjon/WasmKit"
)

// --- minimal LEB128 assemblers for hand-built function bodies ---

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func sleb(v int64) []byte {
	var out []byte
	more := true
	for more {
		b := byte(v & 0x7F)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			more = false
		} else {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}

const (
	wI32Const = 0x41
	wLocalGet = 0x20
	wLocalSet = 0x21
	wLocalTee = 0x22
	wBlock    = 0x02
	wLoop     = 0x03
	wBr       = 0x0C
	wBrIf     = 0x0D
	wCall     = 0x10
	wEnd      = 0x0B
	wI32Add   = 0x6A
	wI32Sub   = 0x6B
	wI32Mul   = 0x6C
	wI32GeS   = 0x4E
	wI32LeS   = 0x4C
	wEmptyBT  = 0x40
)

func i32const(n int32) []byte { return append([]byte{wI32Const}, sleb(int64(n))...) }
func localGet(i uint32) []byte { return append([]byte{wLocalGet}, uleb(i)...) }
func localSet(i uint32) []byte { return append([]byte{wLocalSet}, uleb(i)...) }
func localTee(i uint32) []byte { return append([]byte{wLocalTee}, uleb(i)...) }
func brIf(label uint32) []byte { return append([]byte{wBrIf}, uleb(label)...) }
func br(label uint32) []byte   { return append([]byte{wBr}, uleb(label)...) }
func call(idx uint32) []byte   { return append([]byte{wCall}, uleb(idx)...) }

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// sumLoopBody computes sum(0..n) iteratively: locals [sum, i].
func sumLoopBody() []byte {
	return concat(
		i32const(0), localSet(1), // sum = 0
		i32const(0), localSet(2), // i = 0
		[]byte{wBlock, wEmptyBT},
		[]byte{wLoop, wEmptyBT},
		localGet(2), localGet(0), []byte{wI32GeS}, brIf(1), // if i >= n: break
		localGet(1), localGet(2), []byte{wI32Add}, localSet(1), // sum += i
		localGet(2), i32const(1), []byte{wI32Add}, localSet(2), // i += 1
		br(0),
		[]byte{wEnd}, // loop
		[]byte{wEnd}, // block
		localGet(1),
		[]byte{wEnd}, // function
	)
}

func buildFactorialModule() *wasmkit.Module {
	// fac(n) = n <= 1 ? 1 : n * fac(n-1), expressed with if/else (funcIdx 0
	// calling itself).
	body := concat(
		localGet(0), i32const(1), []byte{wI32LeS},
		[]byte{0x04, 0x7F}, // if (result i32)
		i32const(1),
		[]byte{0x05}, // else
		localGet(0),
		localGet(0), i32const(1), []byte{wI32Sub},
		call(0),
		[]byte{wI32Mul},
		[]byte{wEnd}, // end if
		[]byte{wEnd}, // end function
	)
	i32 := wasmkit.I32
	sig := wasmkit.FunctionType{ParamTypes: []wasmkit.ValueType{i32}, ResultTypes: []wasmkit.ValueType{i32}}
	return &wasmkit.Module{
		Types: []wasmkit.FunctionType{sig},
		Funcs: []wasmkit.Function{{TypeIndex: 0, Body: body}},
		Exports: []wasmkit.Export{
			{Name: "fac_recursive", Kind: wasmkit.FunctionIndexSpace, Index: 0},
		},
	}
}

func buildSumLoopModule() *wasmkit.Module {
	i32 := wasmkit.I32
	sig := wasmkit.FunctionType{ParamTypes: []wasmkit.ValueType{i32}, ResultTypes: []wasmkit.ValueType{i32}}
	return &wasmkit.Module{
		Types: []wasmkit.FunctionType{sig},
		Funcs: []wasmkit.Function{{
			TypeIndex: 0,
			Locals:    []wasmkit.ValueType{i32, i32},
			Body:      sumLoopBody(),
		}},
		Exports: []wasmkit.Export{
			{Name: "sum_loop", Kind: wasmkit.FunctionIndexSpace, Index: 0},
		},
	}
}

func mustInstance(b *testing.B, mod *wasmkit.Module) *wasmkit.Instance {
	b.Helper()
	rt := wasmkit.NewRuntime()
	inst, err := rt.Instantiate(mod)
	if err != nil {
		b.Fatalf("instantiate: %v", err)
	}
	return inst
}

func BenchmarkSumLoop(b *testing.B) {
	inst := mustInstance(b, buildSumLoopModule())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := inst.Invoke("sum_loop", wasmkit.I32Value(10000)); err != nil {
			b.Fatalf("invoke: %v", err)
		}
	}
}

func BenchmarkFactorialRecursive(b *testing.B) {
	inst := mustInstance(b, buildFactorialModule())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := inst.Invoke("fac_recursive", wasmkit.I32Value(12)); err != nil {
			b.Fatalf("invoke: %v", err)
		}
	}
}

// BenchmarkTranslateOnly isolates the translator's cost from steady-state
// dispatch by instantiating a fresh Runtime (and so a cold, uncompiled
// function) on every iteration.
func BenchmarkTranslateOnly(b *testing.B) {
	mod := buildSumLoopModule()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rt := wasmkit.NewRuntime()
		inst, err := rt.Instantiate(mod)
		if err != nil {
			b.Fatalf("instantiate: %v", err)
		}
		if _, err := inst.Invoke("sum_loop", wasmkit.I32Value(10)); err != nil {
			b.Fatalf("invoke: %v", err)
		}
	}
}
