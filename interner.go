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

// FunctionTypeID is a dense id assigned by a typeInterner for a FunctionType.
// IDs are stable for the life of the owning store and are compared at
// call_indirect sites to check for IndirectCallTypeMismatch without a
// structural comparison.
type FunctionTypeID uint32

// UninitializedTypeID marks a table slot whose type has never been set;
// it can never equal an interned id because typeInterner never assigns it.
const UninitializedTypeID FunctionTypeID = 1<<32 - 1

// typeInterner deduplicates FunctionTypes into dense ids. resolve(intern(x))
// == x and intern(x) == intern(y) iff x and y are structurally equal.
type typeInterner struct {
	ids   map[string]FunctionTypeID
	types []FunctionType
}

func newTypeInterner() *typeInterner {
	return &typeInterner{ids: map[string]FunctionTypeID{}}
}

// Intern returns the dense id for t, assigning a new one on first sight.
func (in *typeInterner) Intern(t FunctionType) FunctionTypeID {
	key := t.key()
	if id, ok := in.ids[key]; ok {
		return id
	}
	id := FunctionTypeID(len(in.types))
	in.ids[key] = id
	in.types = append(in.types, t)
	return id
}

// Resolve returns the FunctionType that id was assigned to.
func (in *typeInterner) Resolve(id FunctionTypeID) *FunctionType {
	return &in.types[id]
}

// Len reports how many distinct types have been interned.
func (in *typeInterner) Len() int {
	return len(in.types)
}
