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
	"github.com/stretchr/testify/require"
)

func TestStackContextGetSet(t *testing.T) {
	sc := newStackContextSized(64)
	sc.set(frameHeaderSize, 0, I32Value(7))
	assert.Equal(t, int32(7), sc.get(frameHeaderSize, 0).I32())
}

func TestStackContextPushFrameHeader(t *testing.T) {
	sc := newStackContextSized(64)
	require.NoError(t, sc.pushFrame(frameHeaderSize, -1, 0, FunctionTypeID(3), InstanceHandle(1), 4))
	assert.Equal(t, int64(-1), sc.frameReturnPC(frameHeaderSize))
	assert.Equal(t, 0, sc.framePrevBase(frameHeaderSize))
	assert.Equal(t, FunctionTypeID(3), sc.frameTypeID(frameHeaderSize))
	assert.Equal(t, InstanceHandle(1), sc.frameInstance(frameHeaderSize))
}

func TestStackContextGrowsAndPreservesExistingValues(t *testing.T) {
	sc := newStackContextSized(8)
	sc.set(frameHeaderSize, 0, I32Value(99))
	require.NoError(t, sc.ensureCapacity(frameHeaderSize, 1000))
	assert.Equal(t, int32(99), sc.get(frameHeaderSize, 0).I32())
}

func TestStackContextExhaustionBeyondMax(t *testing.T) {
	sc := newStackContextSized(8)
	err := sc.ensureCapacity(0, maxStackSize+1)
	assert.ErrorIs(t, err, errCallStackExhausted)
}
