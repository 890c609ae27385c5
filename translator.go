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

// stackValue is one entry of the translator's value stack: a register
// number mirroring the wasm operand stack, plus whether that register was
// allocated as a temporary (and so should be freed on pop) or addresses a
// fixed local/param register (which outlives the expression that pushed it).
type stackValue struct {
	reg  uint32
	temp bool
}

// controlKind discriminates the three structured control constructs.
type controlKind int

const (
	ctrlBlock controlKind = iota
	ctrlLoop
	ctrlIf
)

// controlFrame is pushed by block/loop/if and popped by the matching end.
type controlFrame struct {
	kind        controlKind
	blockType   FunctionType
	startHeight int // value-stack height at entry, after popping blockType.Params
	loopStart   int // iseq index the loop's back-edge targets; meaningless for block/if
	elsePatch   int // index of the "if" instruction's false-branch Imm, or -1
	endPatches  []int
	unreachable bool
}

// translator holds the single-pass translation state for one function
// body. It doubles as the visitor a binary-format parser would drive in a
// fuller embedding; here it drives itself directly off an exprReader since
// the binary-format parser is an external collaborator out of scope.
type translator struct {
	store    *Store
	instance *InstanceEntity
	fn       *WasmFunctionEntity

	paramCount uint32
	localCount uint32
	nextReg    uint32
	highWater  uint32

	values  []stackValue
	control []controlFrame
	instrs  []Instruction
}

// translateFunction lowers fn's stack-machine body into a register-IR
// InstructionSequence. It is called at most once per function, from
// WasmFunctionEntity.ensureCompiled.
func translateFunction(st *Store, fn *WasmFunctionEntity) (*InstructionSequence, error) {
	inst := st.resolveInstance(fn.Instance)
	ft := st.resolveType(fn.TypeID)

	tr := &translator{
		store:      st,
		instance:   inst,
		fn:         fn,
		paramCount: uint32(len(ft.ParamTypes)),
		localCount: uint32(len(fn.Locals)),
	}
	tr.nextReg = tr.paramCount + tr.localCount
	tr.highWater = tr.nextReg

	// The implicit outer block: its result types are the function's results,
	// its "end" is translated as a return.
	tr.control = append(tr.control, controlFrame{
		kind:        ctrlBlock,
		blockType:   *ft,
		startHeight: 0,
		elsePatch:   -1,
	})

	r := newExprReader(fn.Body)
	for len(tr.control) > 0 {
		if r.done() {
			return nil, newTranslationError(fn.FuncIdx, fmt.Errorf("malformed expression: missing end"))
		}
		if err := tr.step(r); err != nil {
			return nil, newTranslationError(fn.FuncIdx, err)
		}
	}

	st.mu.Lock()
	seq := st.iseqs.append(tr.instrs, tr.highWater, tr.paramCount, uint32(len(ft.ResultTypes)))
	st.mu.Unlock()
	return &seq, nil
}

func (t *translator) emit(ins Instruction) int {
	t.instrs = append(t.instrs, ins)
	return len(t.instrs) - 1
}

func (t *translator) cur() *controlFrame {
	return &t.control[len(t.control)-1]
}

func (t *translator) allocTemp() uint32 {
	r := t.nextReg
	t.nextReg++
	if t.nextReg > t.highWater {
		t.highWater = t.nextReg
	}
	return r
}

func (t *translator) push(reg uint32, temp bool) {
	t.values = append(t.values, stackValue{reg: reg, temp: temp})
}

func (t *translator) pushTemp() uint32 {
	r := t.allocTemp()
	t.push(r, true)
	return r
}

func (t *translator) pop() uint32 {
	if len(t.values) == 0 {
		// Polymorphic stack: code after an unreachable terminator may pop
		// more than was pushed. Synthesize a fresh temp so emission can
		// still proceed; it is never observed because the enclosing code
		// is unreachable.
		if t.cur().unreachable {
			return t.allocTemp()
		}
		panic("unreachable: value stack underflow in reachable code")
	}
	top := t.values[len(t.values)-1]
	t.values = t.values[:len(t.values)-1]
	if top.temp && top.reg == t.nextReg-1 {
		t.nextReg--
	}
	return top.reg
}

func (t *translator) valueHeight() int {
	return len(t.values)
}

func (t *translator) truncateTo(height int) {
	for len(t.values) > height {
		t.pop()
	}
}

// readBlockType decodes a block's type immediate, one of: empty, a single
// result value type, or a module type index, all packed
// into the binary format's signed LEB128 "blocktype" encoding.
func (t *translator) readBlockType(r *exprReader) (FunctionType, error) {
	v, err := r.readSleb(5)
	if err != nil {
		return FunctionType{}, err
	}
	switch v {
	case -64:
		return FunctionType{}, nil
	case -1:
		return FunctionType{ResultTypes: []ValueType{I32}}, nil
	case -2:
		return FunctionType{ResultTypes: []ValueType{I64}}, nil
	case -3:
		return FunctionType{ResultTypes: []ValueType{F32}}, nil
	case -4:
		return FunctionType{ResultTypes: []ValueType{F64}}, nil
	case -16:
		return FunctionType{ResultTypes: []ValueType{FuncRefType}}, nil
	case -17:
		return FunctionType{ResultTypes: []ValueType{ExternRefType}}, nil
	default:
		if v < 0 || int(v) >= len(t.instance.Types) {
			return FunctionType{}, fmt.Errorf("invalid block type index %d", v)
		}
		return t.instance.Types[v], nil
	}
}

// calleeSignature resolves the FunctionType of an already-allocated
// function handle, wasm or host.
func (t *translator) calleeSignature(f InternalFunction) *FunctionType {
	wasm, host := t.store.resolveInternalFunction(f)
	if wasm != nil {
		return t.store.resolveType(wasm.TypeID)
	}
	return &host.Type
}

// step decodes and translates exactly one instruction.
func (t *translator) step(r *exprReader) error {
	op, err := r.readOpcode()
	if err != nil {
		return err
	}

	switch op {
	case opUnreachableWasm:
		t.emit(Instruction{Op: opUnreachable})
		t.cur().unreachable = true
		return nil
	case opNopWasm:
		return nil

	case opBlockWasm:
		bt, err := t.readBlockType(r)
		if err != nil {
			return err
		}
		t.enterBlock(ctrlBlock, bt)
		return nil
	case opLoopWasm:
		bt, err := t.readBlockType(r)
		if err != nil {
			return err
		}
		t.enterBlock(ctrlLoop, bt)
		t.control[len(t.control)-1].loopStart = len(t.instrs)
		return nil
	case opIfWasm:
		bt, err := t.readBlockType(r)
		if err != nil {
			return err
		}
		cond := t.pop()
		idx := t.emit(Instruction{Op: opBrIfFalse, B: cond})
		t.enterBlock(ctrlIf, bt)
		t.cur().elsePatch = idx
		return nil
	case opElseWasm:
		cf := t.cur()
		endJump := t.emit(Instruction{Op: opBr})
		cf.endPatches = append(cf.endPatches, endJump)
		t.patchBranch(cf.elsePatch, len(t.instrs))
		cf.elsePatch = -1
		// Collapse the "then" branch's results back to startHeight, matching
		// what "end" would do, then give the "else" branch fresh registers
		// for the block's declared params (params with side-effecting
		// reuse across both arms are a rare multi-value-proposal case not
		// modeled here).
		t.truncateToResults(*cf)
		t.truncateTo(cf.startHeight)
		t.pushBlockParams(cf.blockType)
		cf.unreachable = false
		return nil
	case opEndWasm:
		return t.endBlock()

	case opBrWasm:
		label, err := r.readU32()
		if err != nil {
			return err
		}
		idx := t.emit(Instruction{Op: opBr})
		t.recordBranch(label, idx)
		t.cur().unreachable = true
		return nil
	case opBrIfWasm:
		label, err := r.readU32()
		if err != nil {
			return err
		}
		cond := t.pop()
		idx := t.emit(Instruction{Op: opBrIf, B: cond})
		t.recordBranch(label, idx)
		return nil
	case opBrTableWasm:
		count, err := r.readU32()
		if err != nil {
			return err
		}
		labels := make([]uint32, count+1)
		for i := range labels {
			l, err := r.readU32()
			if err != nil {
				return err
			}
			labels[i] = l
		}
		idxReg := t.pop()
		idx := t.emit(Instruction{Op: opBrTable, B: idxReg, Targets: make([]uint32, len(labels))})
		for i, label := range labels {
			t.recordBranchTarget(label, idx, i)
		}
		t.cur().unreachable = true
		return nil
	case opReturnWasm:
		t.emitReturn(t.control[0].blockType.ResultTypes)
		t.cur().unreachable = true
		return nil

	case opCallWasm:
		idx, err := r.readU32()
		if err != nil {
			return err
		}
		if int(idx) >= len(t.instance.Funcs) {
			return fmt.Errorf("call: function index %d out of bounds", idx)
		}
		callee := t.instance.Funcs[idx]
		sig := t.calleeSignature(callee)
		t.emitCall(sig, func(base uint32) Instruction {
			return Instruction{Op: opCall, A: base, Imm: int64(callee)}
		})
		return nil
	case opCallIndirectWasm:
		typeIdx, err := r.readU32()
		if err != nil {
			return err
		}
		tableIdx, err := r.readU32()
		if err != nil {
			return err
		}
		if int(typeIdx) >= len(t.instance.Types) {
			return fmt.Errorf("call_indirect: type index %d out of bounds", typeIdx)
		}
		sig := t.instance.Types[typeIdx]
		typeID := t.store.internType(sig)
		tableReg := t.pop()
		t.emitCall(&sig, func(base uint32) Instruction {
			return Instruction{Op: opCallIndirect, A: base, B: tableReg, Imm: int64(typeID), Imm2: tableIdx}
		})
		return nil

	case opI32ConstWasm, opI64ConstWasm, opF32ConstWasm, opF64ConstWasm:
		return t.stepConst(r, op)

	case opDropWasm:
		t.pop()
		return nil
	case opSelectWasm:
		cond := t.pop()
		b := t.pop()
		a := t.pop()
		dest := t.pushTemp()
		t.emit(Instruction{Op: opSelect, A: dest, B: a, C: b, D: cond})
		return nil

	case opLocalGetWasm:
		idx, err := r.readU32()
		if err != nil {
			return err
		}
		t.push(idx, false)
		return nil
	case opLocalSetWasm, opLocalTeeWasm:
		idx, err := r.readU32()
		if err != nil {
			return err
		}
		v := t.pop()
		if v != idx {
			t.emit(Instruction{Op: opCopy, A: idx, B: v})
		}
		if op == opLocalTeeWasm {
			t.push(idx, false)
		}
		return nil
	case opGlobalGetWasm:
		idx, err := r.readU32()
		if err != nil {
			return err
		}
		dest := t.pushTemp()
		if idx == 0 {
			t.emit(Instruction{Op: opGlobalGet0, A: dest})
		} else {
			t.emit(Instruction{Op: opGlobalGet, A: dest, Imm: int64(idx)})
		}
		return nil
	case opGlobalSetWasm:
		idx, err := r.readU32()
		if err != nil {
			return err
		}
		v := t.pop()
		if idx == 0 {
			t.emit(Instruction{Op: opGlobalSet0, B: v})
		} else {
			t.emit(Instruction{Op: opGlobalSet, B: v, Imm: int64(idx)})
		}
		return nil

	case opTableGetWasm, opTableSetWasm:
		idx, err := r.readU32()
		if err != nil {
			return err
		}
		if op == opTableGetWasm {
			i := t.pop()
			dest := t.pushTemp()
			t.emit(Instruction{Op: opTableGet, A: dest, B: i, Imm: int64(idx)})
		} else {
			v := t.pop()
			i := t.pop()
			t.emit(Instruction{Op: opTableSet, B: i, C: v, Imm: int64(idx)})
		}
		return nil

	case opRefNullWasm:
		if _, err := r.readRefType(); err != nil {
			return err
		}
		dest := t.pushTemp()
		t.emit(Instruction{Op: opRefNull, A: dest})
		return nil
	case opRefIsNullWasm:
		v := t.pop()
		dest := t.pushTemp()
		t.emit(Instruction{Op: opRefIsNull, A: dest, B: v})
		return nil
	case opRefFuncWasm:
		idx, err := r.readU32()
		if err != nil {
			return err
		}
		if int(idx) >= len(t.instance.Funcs) {
			return fmt.Errorf("ref.func: function index %d out of bounds", idx)
		}
		dest := t.pushTemp()
		t.emit(Instruction{Op: opRefFunc, A: dest, Imm: int64(t.instance.Funcs[idx])})
		return nil

	case opMiscPrefixWasm:
		return t.stepMisc(r)
	}

	if op >= opI32LoadWasm && op <= opI64Store32Wasm {
		return t.stepMemAccess(r, op)
	}
	if op == opMemorySizeWasm || op == opMemoryGrowWasm {
		if _, err := r.readU32(); err != nil { // memory index, always 0
			return err
		}
		if op == opMemorySizeWasm {
			dest := t.pushTemp()
			t.emit(Instruction{Op: opMemorySize, A: dest})
		} else {
			delta := t.pop()
			dest := t.pushTemp()
			t.emit(Instruction{Op: opMemoryGrow, A: dest, B: delta})
		}
		return nil
	}

	if regOp, arity, ok := simpleNumericOp(op); ok {
		return t.stepNumeric(r, op, regOp, arity)
	}

	return fmt.Errorf("unsupported opcode 0x%02x", byte(op))
}

func (t *translator) stepMemAccess(r *exprReader, op wasmOpcode) error {
	_, offset, err := r.readMemarg()
	if err != nil {
		return err
	}
	switch op {
	case opI32LoadWasm, opI64LoadWasm, opF32LoadWasm, opF64LoadWasm,
		opI32Load8SWasm, opI32Load8UWasm, opI32Load16SWasm, opI32Load16UWasm,
		opI64Load8SWasm, opI64Load8UWasm, opI64Load16SWasm, opI64Load16UWasm,
		opI64Load32SWasm, opI64Load32UWasm:
		addr := t.pop()
		dest := t.pushTemp()
		t.emit(Instruction{Op: loadRegOp(op), A: dest, B: addr, Imm: int64(offset)})
	default:
		val := t.pop()
		addr := t.pop()
		t.emit(Instruction{Op: storeRegOp(op), B: addr, C: val, Imm: int64(offset)})
	}
	return nil
}

func loadRegOp(op wasmOpcode) regOp {
	switch op {
	case opI32LoadWasm:
		return opI32Load
	case opI64LoadWasm:
		return opI64Load
	case opF32LoadWasm:
		return opF32Load
	case opF64LoadWasm:
		return opF64Load
	case opI32Load8SWasm:
		return opI32Load8S
	case opI32Load8UWasm:
		return opI32Load8U
	case opI32Load16SWasm:
		return opI32Load16S
	case opI32Load16UWasm:
		return opI32Load16U
	case opI64Load8SWasm:
		return opI64Load8S
	case opI64Load8UWasm:
		return opI64Load8U
	case opI64Load16SWasm:
		return opI64Load16S
	case opI64Load16UWasm:
		return opI64Load16U
	case opI64Load32SWasm:
		return opI64Load32S
	case opI64Load32UWasm:
		return opI64Load32U
	}
	panic("unreachable: not a load opcode")
}

func storeRegOp(op wasmOpcode) regOp {
	switch op {
	case opI32StoreWasm:
		return opI32Store
	case opI64StoreWasm:
		return opI64Store
	case opF32StoreWasm:
		return opF32Store
	case opF64StoreWasm:
		return opF64Store
	case opI32Store8Wasm:
		return opI32Store8
	case opI32Store16Wasm:
		return opI32Store16
	case opI64Store8Wasm:
		return opI64Store8
	case opI64Store16Wasm:
		return opI64Store16
	case opI64Store32Wasm:
		return opI64Store32
	}
	panic("unreachable: not a store opcode")
}

func (t *translator) stepMisc(r *exprReader) error {
	sel, err := r.readU32()
	if err != nil {
		return err
	}
	switch sel {
	case miscI32TruncSatF32S, miscI32TruncSatF32U, miscI32TruncSatF64S, miscI32TruncSatF64U,
		miscI64TruncSatF32S, miscI64TruncSatF32U, miscI64TruncSatF64S, miscI64TruncSatF64U:
		src := t.pop()
		dest := t.pushTemp()
		t.emit(Instruction{Op: truncSatRegOp(sel), A: dest, B: src})
		return nil
	case miscMemoryInit:
		dataIdx, err := r.readU32()
		if err != nil {
			return err
		}
		if _, err := r.readByte(); err != nil { // memory index, always 0
			return err
		}
		n, src, dst := t.pop(), t.pop(), t.pop()
		t.emit(Instruction{Op: opMemoryInit, B: dst, C: src, D: n, Imm: int64(dataIdx)})
		return nil
	case miscDataDrop:
		if _, err := r.readU32(); err != nil {
			return err
		}
		return nil
	case miscMemoryCopy:
		if _, err := r.readByte(); err != nil {
			return err
		}
		if _, err := r.readByte(); err != nil {
			return err
		}
		n, src, dst := t.pop(), t.pop(), t.pop()
		t.emit(Instruction{Op: opMemoryCopy, B: dst, C: src, D: n})
		return nil
	case miscMemoryFill:
		if _, err := r.readByte(); err != nil {
			return err
		}
		n, val, dst := t.pop(), t.pop(), t.pop()
		t.emit(Instruction{Op: opMemoryFill, B: dst, C: val, D: n})
		return nil
	case miscTableInit:
		elemIdx, err := r.readU32()
		if err != nil {
			return err
		}
		tableIdx, err := r.readU32()
		if err != nil {
			return err
		}
		n, src, dst := t.pop(), t.pop(), t.pop()
		t.emit(Instruction{Op: opTableInit, B: dst, C: src, D: n, Imm: int64(tableIdx), Imm2: elemIdx})
		return nil
	case miscElemDrop:
		if _, err := r.readU32(); err != nil {
			return err
		}
		return nil
	case miscTableCopy:
		dstIdx, err := r.readU32()
		if err != nil {
			return err
		}
		srcIdx, err := r.readU32()
		if err != nil {
			return err
		}
		n, src, dst := t.pop(), t.pop(), t.pop()
		t.emit(Instruction{Op: opTableCopy, B: dst, C: src, D: n, Imm: int64(dstIdx), Imm2: srcIdx})
		return nil
	case miscTableGrow:
		idx, err := r.readU32()
		if err != nil {
			return err
		}
		n, val := t.pop(), t.pop()
		dest := t.pushTemp()
		t.emit(Instruction{Op: opTableGrow, A: dest, B: n, C: val, Imm: int64(idx)})
		return nil
	case miscTableSize:
		idx, err := r.readU32()
		if err != nil {
			return err
		}
		dest := t.pushTemp()
		t.emit(Instruction{Op: opTableSize, A: dest, Imm: int64(idx)})
		return nil
	case miscTableFill:
		idx, err := r.readU32()
		if err != nil {
			return err
		}
		n, val, dst := t.pop(), t.pop(), t.pop()
		t.emit(Instruction{Op: opTableFill, B: dst, C: val, D: n, Imm: int64(idx)})
		return nil
	}
	return fmt.Errorf("unsupported extended opcode %d", sel)
}

func truncSatRegOp(sel uint32) regOp {
	switch sel {
	case miscI32TruncSatF32S:
		return opI32TruncSatF32S
	case miscI32TruncSatF32U:
		return opI32TruncSatF32U
	case miscI32TruncSatF64S:
		return opI32TruncSatF64S
	case miscI32TruncSatF64U:
		return opI32TruncSatF64U
	case miscI64TruncSatF32S:
		return opI64TruncSatF32S
	case miscI64TruncSatF32U:
		return opI64TruncSatF32U
	case miscI64TruncSatF64S:
		return opI64TruncSatF64S
	case miscI64TruncSatF64U:
		return opI64TruncSatF64U
	}
	panic("unreachable: not a trunc_sat selector")
}

// enterBlock pushes a new control frame. blockType.ParamTypes values are
// already on the stack (they were consumed there); they remain visible to
// the nested block's body per wasm's "multi-value" block-param convention.
func (t *translator) enterBlock(kind controlKind, bt FunctionType) {
	height := t.valueHeight() - len(bt.ParamTypes)
	t.control = append(t.control, controlFrame{
		kind:        kind,
		blockType:   bt,
		startHeight: height,
		elsePatch:   -1,
	})
}

func (t *translator) pushBlockParams(bt FunctionType) {
	for range bt.ParamTypes {
		t.pushTemp()
	}
}

// recordBranch resolves the target of the branch at instrIdx with the given
// relative label depth: a loop frame's start is written into its Imm now;
// for a block/if frame the (not-yet-known) end is recorded for endBlock to
// patch.
func (t *translator) recordBranch(label uint32, instrIdx int) {
	cf := &t.control[len(t.control)-1-int(label)]
	if cf.kind == ctrlLoop {
		t.instrs[instrIdx].Imm = int64(cf.loopStart)
		return
	}
	cf.endPatches = append(cf.endPatches, instrIdx)
}

func (t *translator) recordBranchTarget(label uint32, instrIdx int, targetSlot int) {
	cf := &t.control[len(t.control)-1-int(label)]
	if cf.kind == ctrlLoop {
		t.instrs[instrIdx].Targets[targetSlot] = uint32(cf.loopStart)
		return
	}
	// Pack targetSlot+1 into the high byte to distinguish a Targets[]
	// patch from a plain Imm patch (slot 0) in endBlock's single pending list.
	cf.endPatches = append(cf.endPatches, instrIdx|(targetSlot+1)<<24)
}

func (t *translator) patchBranch(instrIdx int, target int) {
	t.instrs[instrIdx].Imm = int64(target)
}

func (t *translator) endBlock() error {
	cf := t.control[len(t.control)-1]
	end := len(t.instrs)
	for _, p := range cf.endPatches {
		slot := p >> 24
		idx := p &^ (0xFF << 24)
		if slot == 0 {
			t.patchBranch(idx, end)
		} else {
			t.instrs[idx].Targets[slot-1] = uint32(end)
		}
	}
	if cf.elsePatch != -1 {
		// if with no else: the false branch falls straight to end.
		t.patchBranch(cf.elsePatch, end)
	}

	if len(t.control) == 1 {
		// Outer function block: end means return. Pop the control frame
		// only after emitting the return, since emitReturn's pop() may
		// still need to consult it (cur().unreachable) for a polymorphic
		// value stack.
		t.emitReturn(cf.blockType.ResultTypes)
		t.control = t.control[:len(t.control)-1]
		return nil
	}

	t.control = t.control[:len(t.control)-1]

	// Results of the block become the new top of the value stack, each in
	// a fresh temp register so the parent frame's allocation stays
	// consistent regardless of which branch produced them.
	t.truncateToResults(cf)
	return nil
}

// truncateToResults collapses the value stack back to startHeight plus one
// temp register per declared result, copying whichever registers currently
// hold the results into those temps.
func (t *translator) truncateToResults(cf controlFrame) {
	n := len(cf.blockType.ResultTypes)
	results := make([]uint32, n)
	for i := n - 1; i >= 0; i-- {
		results[i] = t.pop()
	}
	t.truncateTo(cf.startHeight)
	for _, r := range results {
		dest := t.pushTemp()
		if dest != r {
			t.emit(Instruction{Op: opCopy, A: dest, B: r})
		}
	}
}

func (t *translator) emitReturn(resultTypes []ValueType) {
	n := len(resultTypes)
	results := make([]uint32, n)
	for i := n - 1; i >= 0; i-- {
		results[i] = t.pop()
	}
	// Results are written into registers [0, n) of this frame: the call
	// region a caller reserves for this function starts at the same
	// frame's base, so a callee's own register 0 and the caller's expected
	// result slot are the same absolute address (the convention emitCall
	// relies on for its own callee).
	base := uint32(0)
	for i, r := range results {
		dest := base + uint32(i)
		if dest != r {
			t.emit(Instruction{Op: opCopy, A: dest, B: r})
		}
	}
	t.emit(Instruction{Op: opReturn})
}

// emitCall lowers a call or call_indirect: it copies argument registers
// into a fresh contiguous call region, emits the call instruction via
// build (which receives the region's base register), and pushes result
// registers reading from that same region.
func (t *translator) emitCall(sig *FunctionType, build func(base uint32) Instruction) {
	args := make([]uint32, len(sig.ParamTypes))
	for i := len(args) - 1; i >= 0; i-- {
		args[i] = t.pop()
	}

	width := frameHeaderSize + maxInt(len(sig.ParamTypes), len(sig.ResultTypes))
	base := t.nextReg + uint32(frameHeaderSize)
	t.nextReg += uint32(width)
	if t.nextReg > t.highWater {
		t.highWater = t.nextReg
	}

	for i, a := range args {
		dest := base + uint32(i)
		if dest != a {
			t.emit(Instruction{Op: opCopy, A: dest, B: a})
		}
	}

	t.emit(build(base))

	t.nextReg = base - uint32(frameHeaderSize)
	for i := range sig.ResultTypes {
		t.push(base+uint32(i), false)
	}
	if len(sig.ResultTypes) > 0 {
		t.nextReg = base + uint32(len(sig.ResultTypes))
		if t.nextReg > t.highWater {
			t.highWater = t.nextReg
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// simpleNumericOp maps a wasm numeric opcode to its register-IR opcode and
// arity (1 = unary, 2 = binary); comparisons and conversions both count as
// their natural arity.
func simpleNumericOp(op wasmOpcode) (regOp, int, bool) {
	if ro, ok := binaryNumericOps[op]; ok {
		return ro, 2, true
	}
	if ro, ok := unaryNumericOps[op]; ok {
		return ro, 1, true
	}
	return 0, 0, false
}

func (t *translator) stepNumeric(r *exprReader, wop wasmOpcode, ro regOp, arity int) error {
	_ = r
	if arity == 2 {
		b := t.pop()
		a := t.pop()
		dest := t.pushTemp()
		t.emit(Instruction{Op: ro, A: dest, B: a, C: b})
		return nil
	}
	a := t.pop()
	dest := t.pushTemp()
	t.emit(Instruction{Op: ro, A: dest, B: a})
	return nil
}

var binaryNumericOps = map[wasmOpcode]regOp{
	opI32EqWasm: opI32Eq, opI32NeWasm: opI32Ne, opI32LtSWasm: opI32LtS, opI32LtUWasm: opI32LtU,
	opI32GtSWasm: opI32GtS, opI32GtUWasm: opI32GtU, opI32LeSWasm: opI32LeS, opI32LeUWasm: opI32LeU,
	opI32GeSWasm: opI32GeS, opI32GeUWasm: opI32GeU,
	opI64EqWasm: opI64Eq, opI64NeWasm: opI64Ne, opI64LtSWasm: opI64LtS, opI64LtUWasm: opI64LtU,
	opI64GtSWasm: opI64GtS, opI64GtUWasm: opI64GtU, opI64LeSWasm: opI64LeS, opI64LeUWasm: opI64LeU,
	opI64GeSWasm: opI64GeS, opI64GeUWasm: opI64GeU,
	opF32EqWasm: opF32Eq, opF32NeWasm: opF32Ne, opF32LtWasm: opF32Lt, opF32GtWasm: opF32Gt,
	opF32LeWasm: opF32Le, opF32GeWasm: opF32Ge,
	opF64EqWasm: opF64Eq, opF64NeWasm: opF64Ne, opF64LtWasm: opF64Lt, opF64GtWasm: opF64Gt,
	opF64LeWasm: opF64Le, opF64GeWasm: opF64Ge,

	opI32AddWasm: opI32Add, opI32SubWasm: opI32Sub, opI32MulWasm: opI32Mul,
	opI32DivSWasm: opI32DivS, opI32DivUWasm: opI32DivU, opI32RemSWasm: opI32RemS, opI32RemUWasm: opI32RemU,
	opI32AndWasm: opI32And, opI32OrWasm: opI32Or, opI32XorWasm: opI32Xor,
	opI32ShlWasm: opI32Shl, opI32ShrSWasm: opI32ShrS, opI32ShrUWasm: opI32ShrU,
	opI32RotlWasm: opI32Rotl, opI32RotrWasm: opI32Rotr,

	opI64AddWasm: opI64Add, opI64SubWasm: opI64Sub, opI64MulWasm: opI64Mul,
	opI64DivSWasm: opI64DivS, opI64DivUWasm: opI64DivU, opI64RemSWasm: opI64RemS, opI64RemUWasm: opI64RemU,
	opI64AndWasm: opI64And, opI64OrWasm: opI64Or, opI64XorWasm: opI64Xor,
	opI64ShlWasm: opI64Shl, opI64ShrSWasm: opI64ShrS, opI64ShrUWasm: opI64ShrU,
	opI64RotlWasm: opI64Rotl, opI64RotrWasm: opI64Rotr,

	opF32AddWasm: opF32Add, opF32SubWasm: opF32Sub, opF32MulWasm: opF32Mul, opF32DivWasm: opF32Div,
	opF32MinWasm: opF32Min, opF32MaxWasm: opF32Max, opF32CopysignWasm: opF32Copysign,
	opF64AddWasm: opF64Add, opF64SubWasm: opF64Sub, opF64MulWasm: opF64Mul, opF64DivWasm: opF64Div,
	opF64MinWasm: opF64Min, opF64MaxWasm: opF64Max, opF64CopysignWasm: opF64Copysign,
}

var unaryNumericOps = map[wasmOpcode]regOp{
	opI32EqzWasm: opI32Eqz, opI64EqzWasm: opI64Eqz,
	opI32ClzWasm: opI32Clz, opI32CtzWasm: opI32Ctz, opI32PopcntWasm: opI32Popcnt,
	opI64ClzWasm: opI64Clz, opI64CtzWasm: opI64Ctz, opI64PopcntWasm: opI64Popcnt,

	opF32AbsWasm: opF32Abs, opF32NegWasm: opF32Neg, opF32CeilWasm: opF32Ceil, opF32FloorWasm: opF32Floor,
	opF32TruncWasm: opF32Trunc, opF32NearestWasm: opF32Nearest, opF32SqrtWasm: opF32Sqrt,
	opF64AbsWasm: opF64Abs, opF64NegWasm: opF64Neg, opF64CeilWasm: opF64Ceil, opF64FloorWasm: opF64Floor,
	opF64TruncWasm: opF64Trunc, opF64NearestWasm: opF64Nearest, opF64SqrtWasm: opF64Sqrt,

	opI32WrapI64Wasm: opI32WrapI64,
	opI32TruncF32SWasm: opI32TruncF32S, opI32TruncF32UWasm: opI32TruncF32U,
	opI32TruncF64SWasm: opI32TruncF64S, opI32TruncF64UWasm: opI32TruncF64U,
	opI64ExtendI32SWasm: opI64ExtendI32S, opI64ExtendI32UWasm: opI64ExtendI32U,
	opI64TruncF32SWasm: opI64TruncF32S, opI64TruncF32UWasm: opI64TruncF32U,
	opI64TruncF64SWasm: opI64TruncF64S, opI64TruncF64UWasm: opI64TruncF64U,
	opF32ConvertI32SWasm: opF32ConvertI32S, opF32ConvertI32UWasm: opF32ConvertI32U,
	opF32ConvertI64SWasm: opF32ConvertI64S, opF32ConvertI64UWasm: opF32ConvertI64U,
	opF32DemoteF64Wasm: opF32DemoteF64,
	opF64ConvertI32SWasm: opF64ConvertI32S, opF64ConvertI32UWasm: opF64ConvertI32U,
	opF64ConvertI64SWasm: opF64ConvertI64S, opF64ConvertI64UWasm: opF64ConvertI64U,
	opF64PromoteF32Wasm: opF64PromoteF32,
	opI32ReinterpretF32Wasm: opI32ReinterpretF32, opF32ReinterpretI32Wasm: opF32ReinterpretI32,
	opI64ReinterpretF64Wasm: opI64ReinterpretF64, opF64ReinterpretI64Wasm: opF64ReinterpretI64,
	opI32Extend8SWasm: opI32Extend8S, opI32Extend16SWasm: opI32Extend16S,
	opI64Extend8SWasm: opI64Extend8S, opI64Extend16SWasm: opI64Extend16S, opI64Extend32SWasm: opI64Extend32S,
}

// i32.const/i64.const/f32.const/f64.const are handled directly in step
// rather than through the numeric-op tables, since they carry an immediate
// rather than popping operands.
func (t *translator) stepConst(r *exprReader, op wasmOpcode) error {
	dest := t.pushTemp()
	switch op {
	case opI32ConstWasm:
		v, err := r.readI32()
		if err != nil {
			return err
		}
		t.emit(Instruction{Op: opConstI32, A: dest, Imm: int64(uint32(v))})
	case opI64ConstWasm:
		v, err := r.readI64()
		if err != nil {
			return err
		}
		t.emit(Instruction{Op: opConstI64, A: dest, Imm: v})
	case opF32ConstWasm:
		v, err := r.readF32()
		if err != nil {
			return err
		}
		t.emit(Instruction{Op: opConstF32, A: dest, Imm: int64(f32bits(v))})
	case opF64ConstWasm:
		v, err := r.readF64()
		if err != nil {
			return err
		}
		t.emit(Instruction{Op: opConstF64, A: dest, Imm: int64(f64bits(v))})
	}
	return nil
}
