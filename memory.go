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

const (
	// memoryPageSize is the size of one WebAssembly memory page, 64KiB.
	memoryPageSize = 65536
	// maxMemoryPages is the hard ceiling on memory size absent a declared max.
	maxMemoryPages = uint32(1 << 16)
)

// Memory is the runtime representation of a linear memory.
// Growth may relocate Data; any cached (base, size) pair, notably the
// execution loop's (md, ms), must be refreshed after a growth.
type Memory struct {
	Type    MemoryType
	Data    []byte
	limiter ResourceLimiter
}

// NewMemory allocates a Memory at its declared minimum size. It does not
// consult lim itself: lim is kept for Grow, and the minimum is checked
// against the limiter at the allocation call site, where a rejection is an
// InstantiationError.
func NewMemory(t MemoryType, lim ResourceLimiter) *Memory {
	if lim == nil {
		lim = NoopLimiter{}
	}
	return &Memory{
		Type:    t,
		Data:    make([]byte, uint64(t.Limits.Min)*memoryPageSize),
		limiter: lim,
	}
}

// Size returns the current size in pages.
func (m *Memory) Size() uint32 {
	return uint32(len(m.Data) / memoryPageSize)
}

// Grow extends the memory by delta pages, consulting the resource limiter.
// Returns the previous size in pages on success, or -1 (per Wasm semantics,
// not a trap) if the limiter rejects the growth or it would exceed Type.Limits.Max.
func (m *Memory) Grow(delta uint32) int32 {
	current := m.Size()
	max := maxMemoryPages
	if m.Type.Limits.Max != nil {
		max = *m.Type.Limits.Max
	}
	desired := current + delta
	if desired < current || desired > max {
		return -1
	}
	if !m.limiter.AllowMemory(current, desired, max) {
		return -1
	}
	m.Data = append(m.Data, make([]byte, uint64(delta)*memoryPageSize)...)
	return int32(current)
}

// boundsCheck reports whether [offset, offset+size) lies within Data,
// guarding against overflow when offset+size wraps a uint64.
func (m *Memory) boundsCheck(offset uint64, size uint64) bool {
	end := offset + size
	return end >= offset && end <= uint64(len(m.Data))
}

// Load8/16/32/64 read a little-endian integer at effectiveOffset (the
// instruction's static offset immediate plus the dynamic i32 operand,
// already combined and widened to uint64 by the caller).
func (m *Memory) Load8(effectiveOffset uint64) (byte, error) {
	if !m.boundsCheck(effectiveOffset, 1) {
		return 0, errOutOfBoundsMemoryAccess
	}
	return m.Data[effectiveOffset], nil
}

func (m *Memory) Load16(effectiveOffset uint64) (uint16, error) {
	if !m.boundsCheck(effectiveOffset, 2) {
		return 0, errOutOfBoundsMemoryAccess
	}
	b := m.Data[effectiveOffset : effectiveOffset+2]
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

func (m *Memory) Load32(effectiveOffset uint64) (uint32, error) {
	if !m.boundsCheck(effectiveOffset, 4) {
		return 0, errOutOfBoundsMemoryAccess
	}
	b := m.Data[effectiveOffset : effectiveOffset+4]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

func (m *Memory) Load64(effectiveOffset uint64) (uint64, error) {
	if !m.boundsCheck(effectiveOffset, 8) {
		return 0, errOutOfBoundsMemoryAccess
	}
	b := m.Data[effectiveOffset : effectiveOffset+8]
	lo := uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24
	hi := uint64(b[4]) | uint64(b[5])<<8 | uint64(b[6])<<16 | uint64(b[7])<<24
	return lo | hi<<32, nil
}

func (m *Memory) Store8(effectiveOffset uint64, v byte) error {
	if !m.boundsCheck(effectiveOffset, 1) {
		return errOutOfBoundsMemoryAccess
	}
	m.Data[effectiveOffset] = v
	return nil
}

func (m *Memory) Store16(effectiveOffset uint64, v uint16) error {
	if !m.boundsCheck(effectiveOffset, 2) {
		return errOutOfBoundsMemoryAccess
	}
	b := m.Data[effectiveOffset : effectiveOffset+2]
	b[0], b[1] = byte(v), byte(v>>8)
	return nil
}

func (m *Memory) Store32(effectiveOffset uint64, v uint32) error {
	if !m.boundsCheck(effectiveOffset, 4) {
		return errOutOfBoundsMemoryAccess
	}
	b := m.Data[effectiveOffset : effectiveOffset+4]
	b[0], b[1], b[2], b[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
	return nil
}

func (m *Memory) Store64(effectiveOffset uint64, v uint64) error {
	if !m.boundsCheck(effectiveOffset, 8) {
		return errOutOfBoundsMemoryAccess
	}
	b := m.Data[effectiveOffset : effectiveOffset+8]
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return nil
}

// Init copies n bytes from a data segment's content into memory, as driven
// explicitly by the instantiation sequence or a memory.init instruction.
func (m *Memory) Init(destOffset, srcOffset, n uint32, content []byte) error {
	if uint64(srcOffset)+uint64(n) > uint64(len(content)) {
		return errOutOfBoundsMemoryAccess
	}
	if !m.boundsCheck(uint64(destOffset), uint64(n)) {
		return errOutOfBoundsMemoryAccess
	}
	copy(m.Data[destOffset:uint64(destOffset)+uint64(n)], content[srcOffset:uint64(srcOffset)+uint64(n)])
	return nil
}

// Copy copies n bytes from this memory to dest, supporting overlap exactly
// like memmove (the single-memory-index instruction memory.copy uses
// m == dest).
func (m *Memory) Copy(dest *Memory, destOffset, srcOffset, n uint32) error {
	if !m.boundsCheck(uint64(srcOffset), uint64(n)) || !dest.boundsCheck(uint64(destOffset), uint64(n)) {
		return errOutOfBoundsMemoryAccess
	}
	copy(dest.Data[destOffset:uint64(destOffset)+uint64(n)], m.Data[srcOffset:uint64(srcOffset)+uint64(n)])
	return nil
}

// Fill sets n bytes starting at offset to val.
func (m *Memory) Fill(offset, n uint32, val byte) error {
	if !m.boundsCheck(uint64(offset), uint64(n)) {
		return errOutOfBoundsMemoryAccess
	}
	region := m.Data[offset : uint64(offset)+uint64(n)]
	for i := range region {
		region[i] = val
	}
	return nil
}
