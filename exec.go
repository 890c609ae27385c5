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

// Caller is handed to a host function so it can reach the calling
// instance's memories and globals by index, and reenter the runtime.
type Caller struct {
	store    *Store
	instance InstanceHandle
	runtime  *Runtime
}

func (c *Caller) Memory(index uint32) *Memory {
	inst := c.store.resolveInstance(c.instance)
	if int(index) >= len(inst.Memories) {
		return nil
	}
	return c.store.resolveMemory(inst.Memories[index])
}

func (c *Caller) Global(index uint32) *Global {
	inst := c.store.resolveInstance(c.instance)
	if int(index) >= len(inst.Globals) {
		return nil
	}
	return c.store.resolveGlobal(inst.Globals[index])
}

func (c *Caller) Runtime() *Runtime { return c.runtime }

// maxCallDepth bounds the nested-call side stack independently of register
// space, since a deeply recursive but register-cheap function could
// otherwise exhaust Go's own goroutine stack before StackContext.
const maxCallDepth = 1 << 16

// callFrame records what a return needs to resume the caller: its iseq,
// the register (relative to the caller's frame base) its call region starts
// at (where results must be copied to), and whether the instance changed crossing the call (gating
// the md/ms refresh).
type callFrame struct {
	iseq            *InstructionSequence
	callerBase      int
	changedInstance bool
}

// executor drives one top-level invocation: a StackContext
// plus the side stack of callFrame needed to resume a caller, since an
// InstructionSequence and an InstanceHandle cannot themselves live in a
// Value register.
type executor struct {
	store     *Store
	runtime   *Runtime
	stack     *StackContext
	callStack []callFrame

	fuelEnabled bool
	fuel        uint64
	maxDepth    int
}

func newExecutor(st *Store, rt *Runtime) *executor {
	ex := &executor{store: st, runtime: rt, stack: newStackContextSized(0), maxDepth: maxCallDepth}
	if rt != nil {
		ex.stack = newStackContextSized(rt.config.InitialStackRegisters)
		if rt.config.EnableFuel {
			ex.fuelEnabled = true
			ex.fuel = rt.config.Fuel
		}
		if rt.config.MaxCallStackDepth > 0 {
			ex.maxDepth = rt.config.MaxCallStackDepth
		}
	}
	return ex
}

// consumeFuel implements the cooperative instruction-budget poll: checked
// only at loop back-edges and calls, the few points where an ill-behaved
// module could otherwise spin or recurse forever without ever reaching a
// trapping instruction.
func (ex *executor) consumeFuel() {
	if !ex.fuelEnabled {
		return
	}
	if ex.fuel == 0 {
		throwTrap(TrapOutOfFuel)
	}
	ex.fuel--
}

// invokeWasmFunction allocates a root frame, writes arguments into
// registers [0, paramCount), lazily compiles the callee, and drives the
// dispatch loop to completion or trap.
func (ex *executor) invokeWasmFunction(f *WasmFunctionEntity, args []Value) (results []Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if trap, ok := r.(*Trap); ok {
				err = trap
				return
			}
			panic(r)
		}
	}()

	seq, cerr := f.ensureCompiled(ex.store)
	if cerr != nil {
		return nil, cerr
	}

	const rootBase = frameHeaderSize
	if err := ex.stack.ensureCapacity(rootBase, int(seq.FrameWidth)); err != nil {
		return nil, err
	}
	for i, a := range args {
		ex.stack.set(rootBase, i, a)
	}
	_ = ex.stack.pushFrame(rootBase, -1, -1, f.TypeID, f.Instance, int(seq.FrameWidth))

	ex.run(seq, rootBase, f.Instance)

	numResults := int(seq.NumResults)
	results = make([]Value, numResults)
	for i := 0; i < numResults; i++ {
		results[i] = ex.stack.get(rootBase, i)
	}
	return results, nil
}

// run drives the dispatch loop starting at the entry of seq with frame base
// base, until the root frame (identified by a negative return PC) returns.
func (ex *executor) run(seq *InstructionSequence, base int, instHandle InstanceHandle) {
	pc := 0
	sp := base
	active := seq
	inst := ex.store.resolveInstance(instHandle)
	var md []byte
	refreshMemory := func() {
		if len(inst.Memories) > 0 {
			md = ex.store.resolveMemory(inst.Memories[0]).Data
		} else {
			md = nil
		}
	}
	refreshMemory()

	for {
		ins := active.At(pc)
		switch ins.Op {
		case opEndOfExecution:
			return
		case opNop:
			pc++
		case opUnreachable:
			throwTrap(TrapUnreachable)

		case opConstI32, opConstF32:
			ex.stack.set(sp, int(ins.A), Value{bits: uint64(uint32(ins.Imm))})
			pc++
		case opConstI64, opConstF64:
			ex.stack.set(sp, int(ins.A), Value{bits: uint64(ins.Imm)})
			pc++
		case opCopy:
			ex.stack.set(sp, int(ins.A), ex.stack.get(sp, int(ins.B)))
			pc++

		case opBr:
			if int(ins.Imm) <= pc {
				ex.consumeFuel()
			}
			pc = int(ins.Imm)
		case opBrIf:
			if ex.stack.get(sp, int(ins.B)).I32() != 0 {
				if int(ins.Imm) <= pc {
					ex.consumeFuel()
				}
				pc = int(ins.Imm)
			} else {
				pc++
			}
		case opBrIfFalse:
			if ex.stack.get(sp, int(ins.B)).I32() == 0 {
				if int(ins.Imm) <= pc {
					ex.consumeFuel()
				}
				pc = int(ins.Imm)
			} else {
				pc++
			}
		case opBrTable:
			targets := ins.Targets
			sel := ex.stack.get(sp, int(ins.B)).I32()
			if sel < 0 || int(sel) >= len(targets)-1 {
				pc = int(targets[len(targets)-1])
			} else {
				pc = int(targets[sel])
			}

		case opReturn:
			returnPC := ex.stack.frameReturnPC(sp)
			if returnPC < 0 {
				return
			}
			callerSP := ex.stack.framePrevBase(sp)
			frame := ex.callStack[len(ex.callStack)-1]
			ex.callStack = ex.callStack[:len(ex.callStack)-1]
			numResults := int(active.NumResults)
			for i := 0; i < numResults; i++ {
				ex.stack.set(callerSP, frame.callerBase+i, ex.stack.get(sp, i))
			}
			sp = callerSP
			pc = int(returnPC)
			active = frame.iseq
			if frame.changedInstance {
				inst = ex.store.resolveInstance(ex.stack.frameInstance(sp))
				refreshMemory()
			}

		case opCall:
			ex.consumeFuel()
			callee := InternalFunction(ins.Imm)
			var changed bool
			active, sp, pc, changed = ex.doCall(callee, active, sp, pc, int(ins.A))
			if changed {
				inst = ex.store.resolveInstance(ex.stack.frameInstance(sp))
				refreshMemory()
			}
		case opCallIndirect:
			ex.consumeFuel()
			tableIdx := ins.Imm2
			typeID := FunctionTypeID(ins.Imm)
			dynIdx := ex.stack.get(sp, int(ins.B)).I32()
			tbl := ex.store.resolveTable(inst.Tables[tableIdx])
			v, gerr := tbl.Get(uint32(dynIdx))
			if gerr != nil {
				throwTrap(TrapUndefinedElement)
			}
			if v.IsNullRef() {
				throwTrap(TrapUninitializedElement)
			}
			callee := v.FuncRef()
			if !ex.store.isValidInternalFunction(callee) {
				throwTrap(TrapInvalidFunctionIndex)
			}
			if ex.calleeTypeID(callee) != typeID {
				throwTrap(TrapIndirectCallTypeMismatch)
			}
			var changed bool
			active, sp, pc, changed = ex.doCall(callee, active, sp, pc, int(ins.A))
			if changed {
				inst = ex.store.resolveInstance(ex.stack.frameInstance(sp))
				refreshMemory()
			}

		case opGlobalGet0:
			ex.stack.set(sp, int(ins.A), ex.store.resolveGlobal(inst.Globals[0]).Get())
			pc++
		case opGlobalSet0:
			ex.store.resolveGlobal(inst.Globals[0]).Set(ex.stack.get(sp, int(ins.B)))
			pc++
		case opGlobalGet:
			ex.stack.set(sp, int(ins.A), ex.store.resolveGlobal(inst.Globals[ins.Imm]).Get())
			pc++
		case opGlobalSet:
			ex.store.resolveGlobal(inst.Globals[ins.Imm]).Set(ex.stack.get(sp, int(ins.B)))
			pc++

		case opSelect:
			if ex.stack.get(sp, int(ins.D)).I32() != 0 {
				ex.stack.set(sp, int(ins.A), ex.stack.get(sp, int(ins.B)))
			} else {
				ex.stack.set(sp, int(ins.A), ex.stack.get(sp, int(ins.C)))
			}
			pc++

		case opRefNull:
			ex.stack.set(sp, int(ins.A), NullRefValue())
			pc++
		case opRefFunc:
			ex.stack.set(sp, int(ins.A), FuncRefValue(InternalFunction(ins.Imm)))
			pc++
		case opRefIsNull:
			ex.stack.set(sp, int(ins.A), I32Value(boolToInt32(ex.stack.get(sp, int(ins.B)).IsNullRef())))
			pc++

		case opMemorySize:
			ex.stack.set(sp, int(ins.A), I32Value(int32(ex.store.resolveMemory(inst.Memories[0]).Size())))
			pc++
		case opMemoryGrow:
			delta := ex.stack.get(sp, int(ins.B)).I32()
			prev := ex.store.resolveMemory(inst.Memories[0]).Grow(uint32(delta))
			ex.stack.set(sp, int(ins.A), I32Value(prev))
			refreshMemory()
			pc++
		case opMemoryFill:
			dst, val, n := ex.stack.get(sp, int(ins.B)).I32(), ex.stack.get(sp, int(ins.C)).I32(), ex.stack.get(sp, int(ins.D)).I32()
			if err := ex.store.resolveMemory(inst.Memories[0]).Fill(uint32(dst), uint32(n), byte(val)); err != nil {
				throwTrap(TrapOutOfBoundsMemoryAccess)
			}
			pc++
		case opMemoryCopy:
			dst, src, n := ex.stack.get(sp, int(ins.B)).I32(), ex.stack.get(sp, int(ins.C)).I32(), ex.stack.get(sp, int(ins.D)).I32()
			m := ex.store.resolveMemory(inst.Memories[0])
			if err := m.Copy(m, uint32(dst), uint32(src), uint32(n)); err != nil {
				throwTrap(TrapOutOfBoundsMemoryAccess)
			}
			pc++
		case opMemoryInit:
			dst, src, n := ex.stack.get(sp, int(ins.B)).I32(), ex.stack.get(sp, int(ins.C)).I32(), ex.stack.get(sp, int(ins.D)).I32()
			content := inst.DataSegments[ins.Imm]
			if err := ex.store.resolveMemory(inst.Memories[0]).Init(uint32(dst), uint32(src), uint32(n), content); err != nil {
				throwTrap(TrapOutOfBoundsMemoryAccess)
			}
			pc++

		case opTableGet:
			tbl := ex.store.resolveTable(inst.Tables[ins.Imm])
			v, terr := tbl.Get(uint32(ex.stack.get(sp, int(ins.B)).I32()))
			if terr != nil {
				throwTrap(TrapOutOfBoundsTableAccess)
			}
			ex.stack.set(sp, int(ins.A), v)
			pc++
		case opTableSet:
			tbl := ex.store.resolveTable(inst.Tables[ins.Imm])
			if err := tbl.Set(uint32(ex.stack.get(sp, int(ins.B)).I32()), ex.stack.get(sp, int(ins.C))); err != nil {
				throwTrap(TrapOutOfBoundsTableAccess)
			}
			pc++
		case opTableSize:
			ex.stack.set(sp, int(ins.A), I32Value(int32(ex.store.resolveTable(inst.Tables[ins.Imm]).Size())))
			pc++
		case opTableGrow:
			tbl := ex.store.resolveTable(inst.Tables[ins.Imm])
			n := ex.stack.get(sp, int(ins.B)).I32()
			val := ex.stack.get(sp, int(ins.C))
			ex.stack.set(sp, int(ins.A), I32Value(tbl.Grow(uint32(n), val)))
			pc++
		case opTableFill:
			tbl := ex.store.resolveTable(inst.Tables[ins.Imm])
			dst, val, n := ex.stack.get(sp, int(ins.B)).I32(), ex.stack.get(sp, int(ins.C)), ex.stack.get(sp, int(ins.D)).I32()
			if err := tbl.Fill(uint32(dst), uint32(n), val); err != nil {
				throwTrap(TrapOutOfBoundsTableAccess)
			}
			pc++
		case opTableCopy:
			dstTbl := ex.store.resolveTable(inst.Tables[ins.Imm])
			srcTbl := ex.store.resolveTable(inst.Tables[ins.Imm2])
			dst, src, n := ex.stack.get(sp, int(ins.B)).I32(), ex.stack.get(sp, int(ins.C)).I32(), ex.stack.get(sp, int(ins.D)).I32()
			if err := srcTbl.Copy(dstTbl, uint32(dst), uint32(src), uint32(n)); err != nil {
				throwTrap(TrapOutOfBoundsTableAccess)
			}
			pc++
		case opTableInit:
			dstTbl := ex.store.resolveTable(inst.Tables[ins.Imm])
			elems := inst.Elements[ins.Imm2]
			dst, src, n := ex.stack.get(sp, int(ins.B)).I32(), ex.stack.get(sp, int(ins.C)).I32(), ex.stack.get(sp, int(ins.D)).I32()
			if err := dstTbl.Init(uint32(dst), uint32(src), uint32(n), elems); err != nil {
				throwTrap(TrapOutOfBoundsTableAccess)
			}
			pc++

		default:
			if desc, ok := memAccessOps[ins.Op]; ok {
				ex.execMemAccess(md, sp, ins, desc)
				pc++
				break
			}
			ex.execNumeric(sp, ins)
			pc++
		}
	}
}

// doCall dispatches a direct or indirect call. argBase is the call
// region's base register, relative to the caller's frame (ins.A);
// everything needed to resume the caller on return is pushed onto
// ex.callStack. Returns the iseq/frame-base/pc to continue executing and
// whether the callee's instance differs from the caller's.
func (ex *executor) doCall(callee InternalFunction, callerIseq *InstructionSequence, callerSP, callerPC, argBase int) (active *InstructionSequence, sp int, pc int, changedInstance bool) {
	wasm, host := ex.store.resolveInternalFunction(callee)
	if host != nil {
		ex.invokeHost(host, callerSP, argBase)
		return callerIseq, callerSP, callerPC + 1, false
	}

	seq, cerr := wasm.ensureCompiled(ex.store)
	if cerr != nil {
		throwCustomTrap(cerr.Error())
	}
	newSP := callerSP + argBase
	if err := ex.stack.ensureCapacity(newSP, int(seq.FrameWidth)); err != nil {
		throwTrap(TrapCallStackExhausted)
	}
	if len(ex.callStack) >= ex.maxDepth {
		throwTrap(TrapCallStackExhausted)
	}
	changedInstance = ex.stack.frameInstance(callerSP) != wasm.Instance
	ex.callStack = append(ex.callStack, callFrame{iseq: callerIseq, callerBase: argBase, changedInstance: changedInstance})
	_ = ex.stack.pushFrame(newSP, int64(callerPC+1), callerSP, wasm.TypeID, wasm.Instance, int(seq.FrameWidth))
	return seq, newSP, 0, changedInstance
}

// invokeHost reads arguments out of the caller's call region, invokes a
// host function, and writes its results back into the same region,
// matching the convention a wasm callee's return uses.
func (ex *executor) invokeHost(host *HostFunctionEntity, callerSP, argBase int) {
	n := len(host.Type.ParamTypes)
	args := make([]Value, n)
	for i := 0; i < n; i++ {
		args[i] = ex.stack.get(callerSP, argBase+i)
	}
	caller := &Caller{store: ex.store, instance: ex.stack.frameInstance(callerSP), runtime: ex.runtime}
	results, err := host.Func(caller, args)
	if err != nil {
		throwCustomTrap(err.Error())
	}
	if rerr := checkHostResultArity(&host.Type, results); rerr != nil {
		throwCustomTrap(rerr.Error())
	}
	for i, v := range results {
		ex.stack.set(callerSP, argBase+i, v)
	}
}

func (ex *executor) calleeTypeID(f InternalFunction) FunctionTypeID {
	wasm, host := ex.store.resolveInternalFunction(f)
	if wasm != nil {
		return wasm.TypeID
	}
	return ex.store.internType(host.Type)
}
