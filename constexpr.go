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

// constEvalContext exposes the subset of an in-progress instance that a
// constant expression may legally reference: functions (for ref.func) and
// globals allocated earlier in the same global section, which guarantees
// forward references are absent.
type constEvalContext struct {
	store   *Store
	funcs   []InternalFunction
	globals []GlobalHandle
}

// evalConstExpr evaluates a restricted constant expression (one of
// i32.const, i64.const, f32.const, f64.const, global.get, ref.null, ref.func,
// terminated by end) without running any user code.
func evalConstExpr(ctx *constEvalContext, code []byte, resultType ValueType) (Value, error) {
	r := newExprReader(code)
	op, err := r.readOpcode()
	if err != nil {
		return Value{}, err
	}

	var v Value
	switch op {
	case opI32ConstWasm:
		n, err := r.readI32()
		if err != nil {
			return Value{}, err
		}
		v = I32Value(n)
	case opI64ConstWasm:
		n, err := r.readI64()
		if err != nil {
			return Value{}, err
		}
		v = I64Value(n)
	case opF32ConstWasm:
		n, err := r.readF32()
		if err != nil {
			return Value{}, err
		}
		v = F32Value(n)
	case opF64ConstWasm:
		n, err := r.readF64()
		if err != nil {
			return Value{}, err
		}
		v = F64Value(n)
	case opGlobalGetWasm:
		idx, err := r.readU32()
		if err != nil {
			return Value{}, err
		}
		if int(idx) >= len(ctx.globals) {
			return Value{}, fmt.Errorf("constant expression: global index %d out of bounds", idx)
		}
		v = ctx.store.resolveGlobal(ctx.globals[idx]).Get()
	case opRefNullWasm:
		if _, err := r.readRefType(); err != nil {
			return Value{}, err
		}
		v = NullRefValue()
	case opRefFuncWasm:
		idx, err := r.readU32()
		if err != nil {
			return Value{}, err
		}
		if int(idx) >= len(ctx.funcs) {
			return Value{}, fmt.Errorf("constant expression: function index %d out of bounds", idx)
		}
		v = FuncRefValue(ctx.funcs[idx])
	default:
		return Value{}, fmt.Errorf("constant expression: opcode 0x%02x is not a constant instruction", byte(op))
	}

	if end, err := r.readOpcode(); err != nil || end != opEndWasm {
		return Value{}, fmt.Errorf("constant expression: missing terminating end")
	}
	_ = resultType // validated upstream; kept for signature symmetry with the visitor style.
	return v, nil
}

// evalElementRefs evaluates a passive element segment's per-element
// constant expressions into concrete reference Values.
func evalElementRefs(st *Store, inst *InstanceEntity, seg ElementSegment) ([]Value, error) {
	ctx := &constEvalContext{store: st, funcs: inst.Funcs, globals: inst.Globals}
	if len(seg.Exprs) > 0 {
		vals := make([]Value, len(seg.Exprs))
		for i, expr := range seg.Exprs {
			v, err := evalConstExpr(ctx, expr, seg.Kind)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		return vals, nil
	}
	vals := make([]Value, len(seg.Funcs))
	for i, fi := range seg.Funcs {
		if int(fi) >= len(inst.Funcs) {
			return nil, fmt.Errorf("element segment: function index %d out of bounds", fi)
		}
		vals[i] = FuncRefValue(inst.Funcs[fi])
	}
	return vals, nil
}
