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

func boolToInt32(v bool) int32 {
	if v {
		return 1
	}
	return 0
}

func signExtend8To32(v byte) int32    { return int32(int8(v)) }
func signExtend16To32(v uint16) int32 { return int32(int16(v)) }

func signExtend8To64(v byte) int64    { return int64(int8(v)) }
func signExtend16To64(v uint16) int64 { return int64(int16(v)) }
func signExtend32To64(v uint32) int64 { return int64(int32(v)) }

func wrapI64ToI32(v int64) int32 { return int32(v) }

func extendI32S(v int32) int64 { return int64(v) }
func extendI32U(v int32) int64 { return int64(uint32(v)) }

func promoteF32ToF64(v float32) float64 { return float64(v) }
func demoteF64ToF32(v float64) float32  { return float32(v) }

func convertI32SToF32(v int32) float32 { return float32(v) }
func convertI32UToF32(v int32) float32 { return float32(uint32(v)) }
func convertI64SToF32(v int64) float32 { return float32(v) }
func convertI64UToF32(v int64) float32 { return float32(uint64(v)) }
func convertI32SToF64(v int32) float64 { return float64(v) }
func convertI32UToF64(v int32) float64 { return float64(uint32(v)) }
func convertI64SToF64(v int64) float64 { return float64(v) }
func convertI64UToF64(v int64) float64 { return float64(uint64(v)) }

// truncToI32S implements i32.trunc_f{32,64}_s: traps on NaN or out-of-range.
func truncToI32S[F wasmFloat](v F) (int32, error) {
	f := float64(v)
	if math.IsNaN(f) {
		return 0, errInvalidConversionToInteger
	}
	t := math.Trunc(f)
	if t < -maxInt32Plus1 || t >= maxInt32Plus1 {
		return 0, errIntegerDivideOverflow
	}
	return int32(t), nil
}

func truncToI32U[F wasmFloat](v F) (int32, error) {
	f := float64(v)
	if math.IsNaN(f) {
		return 0, errInvalidConversionToInteger
	}
	t := math.Trunc(f)
	if t < 0 || t >= maxUint32Plus1 {
		return 0, errIntegerDivideOverflow
	}
	return int32(uint32(t)), nil
}

func truncToI64S[F wasmFloat](v F) (int64, error) {
	f := float64(v)
	if math.IsNaN(f) {
		return 0, errInvalidConversionToInteger
	}
	t := math.Trunc(f)
	if t < -maxInt64Plus1 || t >= maxInt64Plus1 {
		return 0, errIntegerDivideOverflow
	}
	return int64(t), nil
}

func truncToI64U[F wasmFloat](v F) (int64, error) {
	f := float64(v)
	if math.IsNaN(f) {
		return 0, errInvalidConversionToInteger
	}
	t := math.Trunc(f)
	if t < 0 || t >= maxUint64Plus1 {
		return 0, errIntegerDivideOverflow
	}
	return int64(uint64(t)), nil
}

// truncSatToI32S implements the saturating variant: NaN becomes 0,
// out-of-range clamps to the nearest representable bound instead of trapping.
func truncSatToI32S[F wasmFloat](v F) int32 {
	f := float64(v)
	if math.IsNaN(f) {
		return 0
	}
	t := math.Trunc(f)
	if t < -maxInt32Plus1 {
		return math.MinInt32
	}
	if t >= maxInt32Plus1 {
		return math.MaxInt32
	}
	return int32(t)
}

func truncSatToI32U[F wasmFloat](v F) int32 {
	f := float64(v)
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	t := math.Trunc(f)
	if t >= maxUint32Plus1 {
		var maxU32 uint32 = math.MaxUint32
		return int32(maxU32)
	}
	return int32(uint32(t))
}

func truncSatToI64S[F wasmFloat](v F) int64 {
	f := float64(v)
	if math.IsNaN(f) {
		return 0
	}
	t := math.Trunc(f)
	if t < -maxInt64Plus1 {
		return math.MinInt64
	}
	if t >= maxInt64Plus1 {
		return math.MaxInt64
	}
	return int64(t)
}

func truncSatToI64U[F wasmFloat](v F) int64 {
	f := float64(v)
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	t := math.Trunc(f)
	if t >= maxUint64Plus1 {
		var maxU64 uint64 = math.MaxUint64
		return int64(maxU64)
	}
	return int64(uint64(t))
}

func reinterpretI32AsF32(v int32) float32 { return math.Float32frombits(uint32(v)) }
func reinterpretF32AsI32(v float32) int32 { return int32(math.Float32bits(v)) }
func reinterpretI64AsF64(v int64) float64 { return math.Float64frombits(uint64(v)) }
func reinterpretF64AsI64(v float64) int64 { return int64(math.Float64bits(v)) }

func f32bits(v float32) uint32 { return math.Float32bits(v) }
func f64bits(v float64) uint64 { return math.Float64bits(v) }
