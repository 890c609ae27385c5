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

// execNumeric dispatches every typed numeric regOp: comparisons, binary and
// unary arithmetic, and the conversion/reinterpret family. It is reached
// only once the main dispatch switch in run() has excluded every control,
// call, memory and table opcode, keeping that switch's common-case path
// short.
func (ex *executor) execNumeric(sp int, ins *Instruction) {
	a := ex.stack.get(sp, int(ins.B))
	switch ins.Op {
	case opI32Eqz:
		ex.setI32(sp, ins, boolToInt32(a.I32() == 0))
		return
	case opI64Eqz:
		ex.setI32(sp, ins, boolToInt32(a.I64() == 0))
		return
	case opI32Clz:
		ex.setI32(sp, ins, clz32(a.I32()))
		return
	case opI32Ctz:
		ex.setI32(sp, ins, ctz32(a.I32()))
		return
	case opI32Popcnt:
		ex.setI32(sp, ins, popcnt32(a.I32()))
		return
	case opI64Clz:
		ex.setI64(sp, ins, clz64(a.I64()))
		return
	case opI64Ctz:
		ex.setI64(sp, ins, ctz64(a.I64()))
		return
	case opI64Popcnt:
		ex.setI64(sp, ins, popcnt64(a.I64()))
		return
	case opF32Abs:
		ex.setF32(sp, ins, fabs(a.F32()))
		return
	case opF32Neg:
		ex.setF32(sp, ins, -a.F32())
		return
	case opF32Ceil:
		ex.setF32(sp, ins, fceil(a.F32()))
		return
	case opF32Floor:
		ex.setF32(sp, ins, ffloor(a.F32()))
		return
	case opF32Trunc:
		ex.setF32(sp, ins, ftrunc(a.F32()))
		return
	case opF32Nearest:
		ex.setF32(sp, ins, fnearest(a.F32()))
		return
	case opF32Sqrt:
		ex.setF32(sp, ins, float32(math.Sqrt(float64(a.F32()))))
		return
	case opF64Abs:
		ex.setF64(sp, ins, fabs(a.F64()))
		return
	case opF64Neg:
		ex.setF64(sp, ins, -a.F64())
		return
	case opF64Ceil:
		ex.setF64(sp, ins, fceil(a.F64()))
		return
	case opF64Floor:
		ex.setF64(sp, ins, ffloor(a.F64()))
		return
	case opF64Trunc:
		ex.setF64(sp, ins, ftrunc(a.F64()))
		return
	case opF64Nearest:
		ex.setF64(sp, ins, fnearest(a.F64()))
		return
	case opF64Sqrt:
		ex.setF64(sp, ins, math.Sqrt(a.F64()))
		return

	case opI32WrapI64:
		ex.setI32(sp, ins, wrapI64ToI32(a.I64()))
		return
	case opI64ExtendI32S:
		ex.setI64(sp, ins, extendI32S(a.I32()))
		return
	case opI64ExtendI32U:
		ex.setI64(sp, ins, extendI32U(a.I32()))
		return
	case opF32ConvertI32S:
		ex.setF32(sp, ins, convertI32SToF32(a.I32()))
		return
	case opF32ConvertI32U:
		ex.setF32(sp, ins, convertI32UToF32(a.I32()))
		return
	case opF32ConvertI64S:
		ex.setF32(sp, ins, convertI64SToF32(a.I64()))
		return
	case opF32ConvertI64U:
		ex.setF32(sp, ins, convertI64UToF32(a.I64()))
		return
	case opF32DemoteF64:
		ex.setF32(sp, ins, demoteF64ToF32(a.F64()))
		return
	case opF64ConvertI32S:
		ex.setF64(sp, ins, convertI32SToF64(a.I32()))
		return
	case opF64ConvertI32U:
		ex.setF64(sp, ins, convertI32UToF64(a.I32()))
		return
	case opF64ConvertI64S:
		ex.setF64(sp, ins, convertI64SToF64(a.I64()))
		return
	case opF64ConvertI64U:
		ex.setF64(sp, ins, convertI64UToF64(a.I64()))
		return
	case opF64PromoteF32:
		ex.setF64(sp, ins, promoteF32ToF64(a.F32()))
		return
	case opI32ReinterpretF32:
		ex.setI32(sp, ins, reinterpretF32AsI32(a.F32()))
		return
	case opF32ReinterpretI32:
		ex.setF32(sp, ins, reinterpretI32AsF32(a.I32()))
		return
	case opI64ReinterpretF64:
		ex.setI64(sp, ins, reinterpretF64AsI64(a.F64()))
		return
	case opF64ReinterpretI64:
		ex.setF64(sp, ins, reinterpretI64AsF64(a.I64()))
		return
	case opI32Extend8S:
		ex.setI32(sp, ins, signExtend8To32(byte(a.I32())))
		return
	case opI32Extend16S:
		ex.setI32(sp, ins, signExtend16To32(uint16(a.I32())))
		return
	case opI64Extend8S:
		ex.setI64(sp, ins, signExtend8To64(byte(a.I64())))
		return
	case opI64Extend16S:
		ex.setI64(sp, ins, signExtend16To64(uint16(a.I64())))
		return
	case opI64Extend32S:
		ex.setI64(sp, ins, signExtend32To64(uint32(a.I64())))
		return

	case opI32TruncF32S:
		v, err := truncToI32S(a.F32())
		ex.setTruncI32(sp, ins, v, err)
		return
	case opI32TruncF32U:
		v, err := truncToI32U(a.F32())
		ex.setTruncI32(sp, ins, v, err)
		return
	case opI32TruncF64S:
		v, err := truncToI32S(a.F64())
		ex.setTruncI32(sp, ins, v, err)
		return
	case opI32TruncF64U:
		v, err := truncToI32U(a.F64())
		ex.setTruncI32(sp, ins, v, err)
		return
	case opI64TruncF32S:
		v, err := truncToI64S(a.F32())
		ex.setTruncI64(sp, ins, v, err)
		return
	case opI64TruncF32U:
		v, err := truncToI64U(a.F32())
		ex.setTruncI64(sp, ins, v, err)
		return
	case opI64TruncF64S:
		v, err := truncToI64S(a.F64())
		ex.setTruncI64(sp, ins, v, err)
		return
	case opI64TruncF64U:
		v, err := truncToI64U(a.F64())
		ex.setTruncI64(sp, ins, v, err)
		return

	case opI32TruncSatF32S:
		ex.setI32(sp, ins, truncSatToI32S(a.F32()))
		return
	case opI32TruncSatF32U:
		ex.setI32(sp, ins, truncSatToI32U(a.F32()))
		return
	case opI32TruncSatF64S:
		ex.setI32(sp, ins, truncSatToI32S(a.F64()))
		return
	case opI32TruncSatF64U:
		ex.setI32(sp, ins, truncSatToI32U(a.F64()))
		return
	case opI64TruncSatF32S:
		ex.setI64(sp, ins, truncSatToI64S(a.F32()))
		return
	case opI64TruncSatF32U:
		ex.setI64(sp, ins, truncSatToI64U(a.F32()))
		return
	case opI64TruncSatF64S:
		ex.setI64(sp, ins, truncSatToI64S(a.F64()))
		return
	case opI64TruncSatF64U:
		ex.setI64(sp, ins, truncSatToI64U(a.F64()))
		return
	}

	b := ex.stack.get(sp, int(ins.C))
	switch ins.Op {
	case opI32Eq:
		ex.setI32(sp, ins, boolToInt32(numEqual(a.I32(), b.I32())))
	case opI32Ne:
		ex.setI32(sp, ins, boolToInt32(numNotEqual(a.I32(), b.I32())))
	case opI32LtS:
		ex.setI32(sp, ins, boolToInt32(lessThan(a.I32(), b.I32())))
	case opI32LtU:
		ex.setI32(sp, ins, boolToInt32(lessThanU32(a.I32(), b.I32())))
	case opI32GtS:
		ex.setI32(sp, ins, boolToInt32(greaterThan(a.I32(), b.I32())))
	case opI32GtU:
		ex.setI32(sp, ins, boolToInt32(greaterThanU32(a.I32(), b.I32())))
	case opI32LeS:
		ex.setI32(sp, ins, boolToInt32(lessOrEqual(a.I32(), b.I32())))
	case opI32LeU:
		ex.setI32(sp, ins, boolToInt32(lessOrEqualU32(a.I32(), b.I32())))
	case opI32GeS:
		ex.setI32(sp, ins, boolToInt32(greaterOrEqual(a.I32(), b.I32())))
	case opI32GeU:
		ex.setI32(sp, ins, boolToInt32(greaterOrEqualU32(a.I32(), b.I32())))

	case opI64Eq:
		ex.setI32(sp, ins, boolToInt32(numEqual(a.I64(), b.I64())))
	case opI64Ne:
		ex.setI32(sp, ins, boolToInt32(numNotEqual(a.I64(), b.I64())))
	case opI64LtS:
		ex.setI32(sp, ins, boolToInt32(lessThan(a.I64(), b.I64())))
	case opI64LtU:
		ex.setI32(sp, ins, boolToInt32(lessThanU64(a.I64(), b.I64())))
	case opI64GtS:
		ex.setI32(sp, ins, boolToInt32(greaterThan(a.I64(), b.I64())))
	case opI64GtU:
		ex.setI32(sp, ins, boolToInt32(greaterThanU64(a.I64(), b.I64())))
	case opI64LeS:
		ex.setI32(sp, ins, boolToInt32(lessOrEqual(a.I64(), b.I64())))
	case opI64LeU:
		ex.setI32(sp, ins, boolToInt32(lessOrEqualU64(a.I64(), b.I64())))
	case opI64GeS:
		ex.setI32(sp, ins, boolToInt32(greaterOrEqual(a.I64(), b.I64())))
	case opI64GeU:
		ex.setI32(sp, ins, boolToInt32(greaterOrEqualU64(a.I64(), b.I64())))

	case opF32Eq:
		ex.setI32(sp, ins, boolToInt32(numEqual(a.F32(), b.F32())))
	case opF32Ne:
		ex.setI32(sp, ins, boolToInt32(numNotEqual(a.F32(), b.F32())))
	case opF32Lt:
		ex.setI32(sp, ins, boolToInt32(lessThan(a.F32(), b.F32())))
	case opF32Gt:
		ex.setI32(sp, ins, boolToInt32(greaterThan(a.F32(), b.F32())))
	case opF32Le:
		ex.setI32(sp, ins, boolToInt32(lessOrEqual(a.F32(), b.F32())))
	case opF32Ge:
		ex.setI32(sp, ins, boolToInt32(greaterOrEqual(a.F32(), b.F32())))

	case opF64Eq:
		ex.setI32(sp, ins, boolToInt32(numEqual(a.F64(), b.F64())))
	case opF64Ne:
		ex.setI32(sp, ins, boolToInt32(numNotEqual(a.F64(), b.F64())))
	case opF64Lt:
		ex.setI32(sp, ins, boolToInt32(lessThan(a.F64(), b.F64())))
	case opF64Gt:
		ex.setI32(sp, ins, boolToInt32(greaterThan(a.F64(), b.F64())))
	case opF64Le:
		ex.setI32(sp, ins, boolToInt32(lessOrEqual(a.F64(), b.F64())))
	case opF64Ge:
		ex.setI32(sp, ins, boolToInt32(greaterOrEqual(a.F64(), b.F64())))

	case opI32Add:
		ex.setI32(sp, ins, numAdd(a.I32(), b.I32()))
	case opI32Sub:
		ex.setI32(sp, ins, numSub(a.I32(), b.I32()))
	case opI32Mul:
		ex.setI32(sp, ins, numMul(a.I32(), b.I32()))
	case opI32DivS:
		v, err := divS32(a.I32(), b.I32())
		ex.setIntOp32(sp, ins, v, err)
	case opI32DivU:
		v, err := divU32(a.I32(), b.I32())
		ex.setIntOp32(sp, ins, v, err)
	case opI32RemS:
		v, err := remS32(a.I32(), b.I32())
		ex.setIntOp32(sp, ins, v, err)
	case opI32RemU:
		v, err := remU32(a.I32(), b.I32())
		ex.setIntOp32(sp, ins, v, err)
	case opI32And:
		ex.setI32(sp, ins, bitAnd(a.I32(), b.I32()))
	case opI32Or:
		ex.setI32(sp, ins, bitOr(a.I32(), b.I32()))
	case opI32Xor:
		ex.setI32(sp, ins, bitXor(a.I32(), b.I32()))
	case opI32Shl:
		ex.setI32(sp, ins, shl32(a.I32(), b.I32()))
	case opI32ShrS:
		ex.setI32(sp, ins, shrS32(a.I32(), b.I32()))
	case opI32ShrU:
		ex.setI32(sp, ins, shrU32(a.I32(), b.I32()))
	case opI32Rotl:
		ex.setI32(sp, ins, rotl32(a.I32(), b.I32()))
	case opI32Rotr:
		ex.setI32(sp, ins, rotr32(a.I32(), b.I32()))

	case opI64Add:
		ex.setI64(sp, ins, numAdd(a.I64(), b.I64()))
	case opI64Sub:
		ex.setI64(sp, ins, numSub(a.I64(), b.I64()))
	case opI64Mul:
		ex.setI64(sp, ins, numMul(a.I64(), b.I64()))
	case opI64DivS:
		v, err := divS64(a.I64(), b.I64())
		ex.setIntOp64(sp, ins, v, err)
	case opI64DivU:
		v, err := divU64(a.I64(), b.I64())
		ex.setIntOp64(sp, ins, v, err)
	case opI64RemS:
		v, err := remS64(a.I64(), b.I64())
		ex.setIntOp64(sp, ins, v, err)
	case opI64RemU:
		v, err := remU64(a.I64(), b.I64())
		ex.setIntOp64(sp, ins, v, err)
	case opI64And:
		ex.setI64(sp, ins, bitAnd(a.I64(), b.I64()))
	case opI64Or:
		ex.setI64(sp, ins, bitOr(a.I64(), b.I64()))
	case opI64Xor:
		ex.setI64(sp, ins, bitXor(a.I64(), b.I64()))
	case opI64Shl:
		ex.setI64(sp, ins, shl64(a.I64(), b.I64()))
	case opI64ShrS:
		ex.setI64(sp, ins, shrS64(a.I64(), b.I64()))
	case opI64ShrU:
		ex.setI64(sp, ins, shrU64(a.I64(), b.I64()))
	case opI64Rotl:
		ex.setI64(sp, ins, rotl64(a.I64(), b.I64()))
	case opI64Rotr:
		ex.setI64(sp, ins, rotr64(a.I64(), b.I64()))

	case opF32Add:
		ex.setF32(sp, ins, numAdd(a.F32(), b.F32()))
	case opF32Sub:
		ex.setF32(sp, ins, numSub(a.F32(), b.F32()))
	case opF32Mul:
		ex.setF32(sp, ins, numMul(a.F32(), b.F32()))
	case opF32Div:
		ex.setF32(sp, ins, numDiv(a.F32(), b.F32()))
	case opF32Min:
		ex.setF32(sp, ins, fmin(a.F32(), b.F32()))
	case opF32Max:
		ex.setF32(sp, ins, fmax(a.F32(), b.F32()))
	case opF32Copysign:
		ex.setF32(sp, ins, fcopysign(a.F32(), b.F32()))

	case opF64Add:
		ex.setF64(sp, ins, numAdd(a.F64(), b.F64()))
	case opF64Sub:
		ex.setF64(sp, ins, numSub(a.F64(), b.F64()))
	case opF64Mul:
		ex.setF64(sp, ins, numMul(a.F64(), b.F64()))
	case opF64Div:
		ex.setF64(sp, ins, numDiv(a.F64(), b.F64()))
	case opF64Min:
		ex.setF64(sp, ins, fmin(a.F64(), b.F64()))
	case opF64Max:
		ex.setF64(sp, ins, fmax(a.F64(), b.F64()))
	case opF64Copysign:
		ex.setF64(sp, ins, fcopysign(a.F64(), b.F64()))

	default:
		panic("unreachable: unknown numeric opcode")
	}
}

func (ex *executor) setI32(sp int, ins *Instruction, v int32) { ex.stack.set(sp, int(ins.A), I32Value(v)) }
func (ex *executor) setI64(sp int, ins *Instruction, v int64) { ex.stack.set(sp, int(ins.A), I64Value(v)) }
func (ex *executor) setF32(sp int, ins *Instruction, v float32) { ex.stack.set(sp, int(ins.A), F32Value(v)) }
func (ex *executor) setF64(sp int, ins *Instruction, v float64) { ex.stack.set(sp, int(ins.A), F64Value(v)) }

func (ex *executor) setIntOp32(sp int, ins *Instruction, v int32, err error) {
	if err != nil {
		throwTrap(traprCodeFor(err))
	}
	ex.setI32(sp, ins, v)
}

func (ex *executor) setIntOp64(sp int, ins *Instruction, v int64, err error) {
	if err != nil {
		throwTrap(traprCodeFor(err))
	}
	ex.setI64(sp, ins, v)
}

func (ex *executor) setTruncI32(sp int, ins *Instruction, v int32, err error) {
	if err != nil {
		throwTrap(traprCodeFor(err))
	}
	ex.setI32(sp, ins, v)
}

func (ex *executor) setTruncI64(sp int, ins *Instruction, v int64, err error) {
	if err != nil {
		throwTrap(traprCodeFor(err))
	}
	ex.setI64(sp, ins, v)
}

func traprCodeFor(err error) TrapCode {
	switch err {
	case errIntegerDivideByZero:
		return TrapIntegerDivideByZero
	case errIntegerDivideOverflow:
		return TrapIntegerOverflow
	case errInvalidConversionToInteger:
		return TrapInvalidConversionToInteger
	default:
		return TrapUnreachable
	}
}
