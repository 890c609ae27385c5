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

// regOp is a register-IR opcode, distinct from the wasm stack-machine
// opcodes the translator consumes as input.
type regOp uint16

const (
	opNop regOp = iota
	opEndOfExecution

	// Constants and locals.
	opConstI32
	opConstI64
	opConstF32
	opConstF64
	opCopy // copy register B into register A, eliding redundant moves.

	// Control flow. Branch targets are absolute iseq offsets patched by the
	// translator once the destination is known.
	opBr
	opBrIf
	opBrIfFalse
	opBrTable
	opReturn
	opUnreachable

	// Calls.
	opCall
	opCallIndirect

	// Globals. opGlobalGet0/opGlobalSet0 bypass the index lookup for
	// global index 0, the overwhelmingly common case in practice.
	opGlobalGet
	opGlobalSet
	opGlobalGet0
	opGlobalSet0

	// Memory. Offset is folded into Imm at translation time; the dynamic
	// i32 operand is register B.
	opI32Load
	opI64Load
	opF32Load
	opF64Load
	opI32Load8S
	opI32Load8U
	opI32Load16S
	opI32Load16U
	opI64Load8S
	opI64Load8U
	opI64Load16S
	opI64Load16U
	opI64Load32S
	opI64Load32U
	opI32Store
	opI64Store
	opF32Store
	opF64Store
	opI32Store8
	opI32Store16
	opI64Store8
	opI64Store16
	opI64Store32
	opMemorySize
	opMemoryGrow
	opMemoryFill
	opMemoryCopy
	opMemoryInit

	// Table.
	opTableGet
	opTableSet
	opTableSize
	opTableGrow
	opTableFill
	opTableCopy
	opTableInit
	opRefNull
	opRefFunc
	opRefIsNull

	opSelect

	// Numeric. Each carries dest register A plus source registers B, C (C
	// unused for unary ops). The type and operation are both encoded in the
	// opcode itself, following the translator's one-opcode-per-typed-op
	// convention.
	opI32Eqz
	opI32Eq
	opI32Ne
	opI32LtS
	opI32LtU
	opI32GtS
	opI32GtU
	opI32LeS
	opI32LeU
	opI32GeS
	opI32GeU
	opI64Eqz
	opI64Eq
	opI64Ne
	opI64LtS
	opI64LtU
	opI64GtS
	opI64GtU
	opI64LeS
	opI64LeU
	opI64GeS
	opI64GeU
	opF32Eq
	opF32Ne
	opF32Lt
	opF32Gt
	opF32Le
	opF32Ge
	opF64Eq
	opF64Ne
	opF64Lt
	opF64Gt
	opF64Le
	opF64Ge

	opI32Add
	opI32Sub
	opI32Mul
	opI32DivS
	opI32DivU
	opI32RemS
	opI32RemU
	opI32And
	opI32Or
	opI32Xor
	opI32Shl
	opI32ShrS
	opI32ShrU
	opI32Rotl
	opI32Rotr
	opI32Clz
	opI32Ctz
	opI32Popcnt

	opI64Add
	opI64Sub
	opI64Mul
	opI64DivS
	opI64DivU
	opI64RemS
	opI64RemU
	opI64And
	opI64Or
	opI64Xor
	opI64Shl
	opI64ShrS
	opI64ShrU
	opI64Rotl
	opI64Rotr
	opI64Clz
	opI64Ctz
	opI64Popcnt

	opF32Abs
	opF32Neg
	opF32Ceil
	opF32Floor
	opF32Trunc
	opF32Nearest
	opF32Sqrt
	opF32Add
	opF32Sub
	opF32Mul
	opF32Div
	opF32Min
	opF32Max
	opF32Copysign

	opF64Abs
	opF64Neg
	opF64Ceil
	opF64Floor
	opF64Trunc
	opF64Nearest
	opF64Sqrt
	opF64Add
	opF64Sub
	opF64Mul
	opF64Div
	opF64Min
	opF64Max
	opF64Copysign

	opI32WrapI64
	opI32TruncF32S
	opI32TruncF32U
	opI32TruncF64S
	opI32TruncF64U
	opI64ExtendI32S
	opI64ExtendI32U
	opI64TruncF32S
	opI64TruncF32U
	opI64TruncF64S
	opI64TruncF64U
	opF32ConvertI32S
	opF32ConvertI32U
	opF32ConvertI64S
	opF32ConvertI64U
	opF32DemoteF64
	opF64ConvertI32S
	opF64ConvertI32U
	opF64ConvertI64S
	opF64ConvertI64U
	opF64PromoteF32
	opI32ReinterpretF32
	opF32ReinterpretI32
	opI64ReinterpretF64
	opF64ReinterpretI64
	opI32Extend8S
	opI32Extend16S
	opI64Extend8S
	opI64Extend16S
	opI64Extend32S
	opI32TruncSatF32S
	opI32TruncSatF32U
	opI32TruncSatF64S
	opI32TruncSatF64U
	opI64TruncSatF32S
	opI64TruncSatF32U
	opI64TruncSatF64S
	opI64TruncSatF64U
)

// Instruction is one register-IR record. Not every field is meaningful for
// every opcode; the execution loop's dispatch switch documents which fields
// a given opcode reads.
type Instruction struct {
	Op regOp

	// A is the destination register for value-producing ops.
	A uint32
	// B, C, D are source registers; most ops use only B (unary) or B, C
	// (binary). table/memory bulk ops (fill/copy/init) use all three.
	B, C, D uint32

	// Imm carries a constant payload: the bit pattern of an i32/i64/f32/f64
	// const, a memory offset, a branch target (absolute iseq index), a
	// call's tagged InternalFunction callee (the call region's base register
	// is in A), call_indirect's type id, or a global/table/segment index.
	Imm int64
	// Imm2 carries a second immediate, e.g. call_indirect's table index
	// alongside its type id in Imm.
	Imm2 uint32

	// Targets holds br_table's branch target vector; its last element is
	// the default target.
	Targets []uint32
}

// InstructionSequence is a pointer+length view into a store-owned iseq
// arena: copying it copies only the view, never the underlying instructions.
type InstructionSequence struct {
	arena       *iseqArena
	start       int
	length      int
	FrameWidth  uint32
	NumParams   uint32
	NumResults  uint32
}

func (seq InstructionSequence) At(pc int) *Instruction {
	return seq.arena.resolve(seq.start + pc)
}

func (seq InstructionSequence) Len() int {
	return seq.length
}

// iseqArena is the per-store arena that owns every translated function's
// instructions. It pages rather than reallocates (pool.go) so that an
// InstructionSequence's addressing stays valid for the life of the store
// even as later functions are compiled.
type iseqArena struct {
	pool entityPool[Instruction]
}

func newIseqArena() *iseqArena {
	return &iseqArena{pool: *newEntityPool[Instruction]()}
}

// append copies instrs into the arena and returns the InstructionSequence
// view over them. Appends from concurrent compilations are not
// interleaved-safe; callers serialize per-function compilation with
// WasmFunctionEntity.compileOnce and the store-wide mutex guards the pool.
func (a *iseqArena) append(instrs []Instruction, frameWidth, numParams, numResults uint32) InstructionSequence {
	start := a.pool.Len()
	for _, ins := range instrs {
		a.pool.Allocate(ins)
	}
	return InstructionSequence{
		arena:      a,
		start:      start,
		length:     len(instrs),
		FrameWidth: frameWidth,
		NumParams:  numParams,
		NumResults: numResults,
	}
}

func (a *iseqArena) resolve(index int) *Instruction {
	return a.pool.Resolve(Handle[Instruction](index))
}
