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
	"errors"
	"math"
	"math/bits"
)

var (
	errIntegerDivideByZero        = errors.New("integer divide by zero")
	errIntegerDivideOverflow      = errors.New("integer overflow")
	errInvalidConversionToInteger = errors.New("invalid conversion to integer")
)

const (
	maxInt32Plus1  = 2147483648.0
	maxUint32Plus1 = 4294967296.0
	maxInt64Plus1  = 9223372036854775808.0
	maxUint64Plus1 = 18446744073709551616.0
)

type wasmNumber interface {
	int32 | int64 | float32 | float64
}

type wasmFloat interface {
	float32 | float64
}

type wasmInt interface {
	int32 | int64
}

func numEqual[T wasmNumber](a, b T) bool    { return a == b }
func numNotEqual[T wasmNumber](a, b T) bool { return a != b }
func lessThan[T wasmNumber](a, b T) bool    { return a < b }
func lessThanU32(a, b int32) bool           { return uint32(a) < uint32(b) }
func lessThanU64(a, b int64) bool           { return uint64(a) < uint64(b) }
func lessOrEqual[T wasmNumber](a, b T) bool { return a <= b }
func lessOrEqualU32(a, b int32) bool        { return uint32(a) <= uint32(b) }
func lessOrEqualU64(a, b int64) bool        { return uint64(a) <= uint64(b) }
func greaterThan[T wasmNumber](a, b T) bool { return a > b }
func greaterThanU32(a, b int32) bool        { return uint32(a) > uint32(b) }
func greaterThanU64(a, b int64) bool        { return uint64(a) > uint64(b) }
func greaterOrEqual[T wasmNumber](a, b T) bool { return a >= b }
func greaterOrEqualU32(a, b int32) bool        { return uint32(a) >= uint32(b) }
func greaterOrEqualU64(a, b int64) bool        { return uint64(a) >= uint64(b) }

func numAdd[T wasmNumber](a, b T) T { return a + b }
func numSub[T wasmNumber](a, b T) T { return a - b }
func numMul[T wasmNumber](a, b T) T { return a * b }
func numDiv[T wasmFloat](a, b T) T  { return a / b }

func divS32(a, b int32) (int32, error) {
	if b == 0 {
		return 0, errIntegerDivideByZero
	}
	if a == math.MinInt32 && b == -1 {
		return 0, errIntegerDivideOverflow
	}
	return a / b, nil
}

func divS64(a, b int64) (int64, error) {
	if b == 0 {
		return 0, errIntegerDivideByZero
	}
	if a == math.MinInt64 && b == -1 {
		return 0, errIntegerDivideOverflow
	}
	return a / b, nil
}

func divU32(a, b int32) (int32, error) {
	if b == 0 {
		return 0, errIntegerDivideByZero
	}
	return int32(uint32(a) / uint32(b)), nil
}

func divU64(a, b int64) (int64, error) {
	if b == 0 {
		return 0, errIntegerDivideByZero
	}
	return int64(uint64(a) / uint64(b)), nil
}

func remS32(a, b int32) (int32, error) {
	if b == 0 {
		return 0, errIntegerDivideByZero
	}
	return a % b, nil
}

func remS64(a, b int64) (int64, error) {
	if b == 0 {
		return 0, errIntegerDivideByZero
	}
	return a % b, nil
}

func remU32(a, b int32) (int32, error) {
	if b == 0 {
		return 0, errIntegerDivideByZero
	}
	return int32(uint32(a) % uint32(b)), nil
}

func remU64(a, b int64) (int64, error) {
	if b == 0 {
		return 0, errIntegerDivideByZero
	}
	return int64(uint64(a) % uint64(b)), nil
}

func bitAnd[T wasmInt](a, b T) T { return a & b }
func bitOr[T wasmInt](a, b T) T  { return a | b }
func bitXor[T wasmInt](a, b T) T { return a ^ b }

func shl32(a, b int32) int32    { return a << (uint32(b) % 32) }
func shrS32(a, b int32) int32   { return a >> (uint32(b) % 32) }
func shrU32(a, b int32) int32   { return int32(uint32(a) >> (uint32(b) % 32)) }
func shl64(a, b int64) int64    { return a << (uint64(b) % 64) }
func shrS64(a, b int64) int64   { return a >> (uint64(b) % 64) }
func shrU64(a, b int64) int64   { return int64(uint64(a) >> (uint64(b) % 64)) }

func rotl32(a, b int32) int32 { return int32(bits.RotateLeft32(uint32(a), int(b))) }
func rotr32(a, b int32) int32 { return int32(bits.RotateLeft32(uint32(a), -int(b))) }
func rotl64(a, b int64) int64 { return int64(bits.RotateLeft64(uint64(a), int(b))) }
func rotr64(a, b int64) int64 { return int64(bits.RotateLeft64(uint64(a), -int(b))) }

func clz32(a int32) int32    { return int32(bits.LeadingZeros32(uint32(a))) }
func clz64(a int64) int64    { return int64(bits.LeadingZeros64(uint64(a))) }
func ctz32(a int32) int32    { return int32(bits.TrailingZeros32(uint32(a))) }
func ctz64(a int64) int64    { return int64(bits.TrailingZeros64(uint64(a))) }
func popcnt32(a int32) int32 { return int32(bits.OnesCount32(uint32(a))) }
func popcnt64(a int64) int64 { return int64(bits.OnesCount64(uint64(a))) }

func fabs[T wasmFloat](a T) T   { return T(math.Abs(float64(a))) }
func fceil[T wasmFloat](a T) T  { return T(math.Ceil(float64(a))) }
func ffloor[T wasmFloat](a T) T { return T(math.Floor(float64(a))) }
func ftrunc[T wasmFloat](a T) T { return T(math.Trunc(float64(a))) }
func fnearest[T wasmFloat](a T) T {
	f64 := float64(a)
	return T(math.Copysign(math.RoundToEven(f64), f64))
}

func fmin[T wasmFloat](a, b T) T {
	if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
		return T(math.NaN())
	}
	return T(math.Min(float64(a), float64(b)))
}

func fmax[T wasmFloat](a, b T) T {
	if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
		return T(math.NaN())
	}
	return T(math.Max(float64(a), float64(b)))
}

func fcopysign[T wasmFloat](a, b T) T {
	return T(math.Copysign(float64(a), float64(b)))
}
