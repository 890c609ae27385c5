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

import "encoding/binary"

// memAccessKind distinguishes how execMemAccess widens a loaded value or
// narrows a stored one; width is the number of bytes moved.
type memAccessKind int

const (
	accessI32 memAccessKind = iota
	accessI64
	accessF32
	accessF64
)

// memAccessDesc describes one typed load/store opcode: whether it loads or
// stores, how wide the memory access is, how a narrower-than-register load
// sign/zero-extends, and the register-level value kind.
type memAccessDesc struct {
	isLoad bool
	width  int
	signed bool
	kind   memAccessKind
}

// memAccessOps maps every load/store regOp to its access shape. Operating
// directly on the cached md byte slice (rather than re-resolving the
// Memory entity per access) is the one place the execution loop's
// register-hinted (md, ms) state actually matters: this is the hottest
// instruction class in most wasm workloads.
var memAccessOps = map[regOp]memAccessDesc{
	opI32Load:     {isLoad: true, width: 4, kind: accessI32},
	opI64Load:     {isLoad: true, width: 8, kind: accessI64},
	opF32Load:     {isLoad: true, width: 4, kind: accessF32},
	opF64Load:     {isLoad: true, width: 8, kind: accessF64},
	opI32Load8S:   {isLoad: true, width: 1, signed: true, kind: accessI32},
	opI32Load8U:   {isLoad: true, width: 1, kind: accessI32},
	opI32Load16S:  {isLoad: true, width: 2, signed: true, kind: accessI32},
	opI32Load16U:  {isLoad: true, width: 2, kind: accessI32},
	opI64Load8S:   {isLoad: true, width: 1, signed: true, kind: accessI64},
	opI64Load8U:   {isLoad: true, width: 1, kind: accessI64},
	opI64Load16S:  {isLoad: true, width: 2, signed: true, kind: accessI64},
	opI64Load16U:  {isLoad: true, width: 2, kind: accessI64},
	opI64Load32S:  {isLoad: true, width: 4, signed: true, kind: accessI64},
	opI64Load32U:  {isLoad: true, width: 4, kind: accessI64},
	opI32Store:    {isLoad: false, width: 4, kind: accessI32},
	opI64Store:    {isLoad: false, width: 8, kind: accessI64},
	opF32Store:    {isLoad: false, width: 4, kind: accessF32},
	opF64Store:    {isLoad: false, width: 8, kind: accessF64},
	opI32Store8:   {isLoad: false, width: 1, kind: accessI32},
	opI32Store16:  {isLoad: false, width: 2, kind: accessI32},
	opI64Store8:   {isLoad: false, width: 1, kind: accessI64},
	opI64Store16:  {isLoad: false, width: 2, kind: accessI64},
	opI64Store32:  {isLoad: false, width: 4, kind: accessI64},
}

// execMemAccess performs one typed load or store against the default
// memory's cached backing slice. addr is register B; for loads, the
// result is written to register A; for stores, the value is register C.
// ins.Imm is the static offset immediate folded in at translation time.
func (ex *executor) execMemAccess(md []byte, sp int, ins *Instruction, desc memAccessDesc) {
	addr := uint64(uint32(ex.stack.get(sp, int(ins.B)).I32()))
	effective := addr + uint64(ins.Imm)
	end := effective + uint64(desc.width)
	if end < effective || end > uint64(len(md)) {
		throwTrap(TrapOutOfBoundsMemoryAccess)
	}
	region := md[effective:end]

	if desc.isLoad {
		var raw uint64
		switch desc.width {
		case 1:
			raw = uint64(region[0])
		case 2:
			raw = uint64(binary.LittleEndian.Uint16(region))
		case 4:
			raw = uint64(binary.LittleEndian.Uint32(region))
		case 8:
			raw = binary.LittleEndian.Uint64(region)
		}
		ex.stack.set(sp, int(ins.A), decodeLoadedValue(raw, desc))
		return
	}

	val := ex.stack.get(sp, int(ins.C))
	var raw uint64
	switch desc.kind {
	case accessI32, accessF32:
		raw = uint64(uint32(val.Bits()))
	default:
		raw = val.Bits()
	}
	switch desc.width {
	case 1:
		region[0] = byte(raw)
	case 2:
		binary.LittleEndian.PutUint16(region, uint16(raw))
	case 4:
		binary.LittleEndian.PutUint32(region, uint32(raw))
	case 8:
		binary.LittleEndian.PutUint64(region, raw)
	}
}

// decodeLoadedValue widens a raw little-endian payload into a register
// Value, sign- or zero-extending narrower-than-register integer loads per
// desc, matching the wasm load instruction's declared extension mode.
func decodeLoadedValue(raw uint64, desc memAccessDesc) Value {
	switch desc.kind {
	case accessF32:
		return Value{bits: raw}
	case accessF64:
		return Value{bits: raw}
	case accessI64:
		if desc.signed {
			switch desc.width {
			case 1:
				return I64Value(signExtend8To64(byte(raw)))
			case 2:
				return I64Value(signExtend16To64(uint16(raw)))
			case 4:
				return I64Value(signExtend32To64(uint32(raw)))
			}
		}
		return I64Value(int64(raw))
	default: // accessI32
		if desc.signed {
			switch desc.width {
			case 1:
				return I32Value(signExtend8To32(byte(raw)))
			case 2:
				return I32Value(signExtend16To32(uint16(raw)))
			}
		}
		return I32Value(int32(uint32(raw)))
	}
}
