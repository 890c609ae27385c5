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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIseqArenaAppendAndAt(t *testing.T) {
	arena := newIseqArena()
	instrs := []Instruction{
		{Op: opConstI32, A: 0, Imm: 7},
		{Op: opReturn},
	}
	seq := arena.append(instrs, 1, 0, 1)
	assert.Equal(t, 2, seq.Len())
	assert.Equal(t, opConstI32, seq.At(0).Op)
	assert.Equal(t, int64(7), seq.At(0).Imm)
	assert.Equal(t, opReturn, seq.At(1).Op)
}

func TestIseqArenaSequencesStayValidAcrossFurtherAppends(t *testing.T) {
	arena := newIseqArena()
	first := arena.append([]Instruction{{Op: opNop}}, 0, 0, 0)

	// Allocate enough further instructions to force page growth in the
	// underlying entityPool; first must still resolve correctly.
	for i := 0; i < entityPoolPageSize*2; i++ {
		arena.append([]Instruction{{Op: opNop}}, 0, 0, 0)
	}

	assert.Equal(t, opNop, first.At(0).Op)
}
