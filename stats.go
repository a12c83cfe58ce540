package tiffvis

import "math"

type integer interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int8 | ~int16 | ~int32 | ~int64
}

// intMinMax reduces vals to (min, max) in a single pass. Accumulators start
// at the type extremes, so an empty input yields min > max; callers must
// treat that as a distinct case rather than a valid range.
func intMinMax[T integer](vals []T, typeMin, typeMax T) (T, T) {
	minVal, maxVal := typeMax, typeMin
	for _, v := range vals {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

// floatMinMax64 reduces vals to (min, max) over finite members only.
// NaN and ±Inf are skipped, not clamped. With zero finite members the
// +Inf/-Inf identities are returned unchanged.
func floatMinMax64(vals []float64) (float64, float64) {
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

func floatMinMax32(vals []float32) (float64, float64) {
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		v64 := float64(v)
		if math.IsNaN(v64) || math.IsInf(v64, 0) {
			continue
		}
		if v64 < minVal {
			minVal = v64
		}
		if v64 > maxVal {
			maxVal = v64
		}
	}
	return minVal, maxVal
}

// halfMinMax widens each binary16 bit pattern to float32 before the
// finiteness test and comparison.
func halfMinMax(bits []uint16) (float64, float64) {
	minVal, maxVal := float32(math.Inf(1)), float32(math.Inf(-1))
	for _, h := range bits {
		v := halfToFloat32(h)
		v64 := float64(v)
		if math.IsNaN(v64) || math.IsInf(v64, 0) {
			continue
		}
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return float64(minVal), float64(maxVal)
}

// sampleStats dispatches the min/max reduction for every sample kind,
// reporting the result as float64. Integer results are exact up to the
// float64 mantissa; 64-bit float statistics keep full precision even though
// the canonical buffer narrows the stored values.
func sampleStats(s Samples) (float64, float64) {
	switch s.Kind {
	case KindU8:
		lo, hi := intMinMax(s.U8, 0, math.MaxUint8)
		return float64(lo), float64(hi)
	case KindU16:
		lo, hi := intMinMax(s.U16, 0, math.MaxUint16)
		return float64(lo), float64(hi)
	case KindU32:
		lo, hi := intMinMax(s.U32, 0, math.MaxUint32)
		return float64(lo), float64(hi)
	case KindU64:
		lo, hi := intMinMax(s.U64, 0, math.MaxUint64)
		return float64(lo), float64(hi)
	case KindI8:
		lo, hi := intMinMax(s.I8, math.MinInt8, math.MaxInt8)
		return float64(lo), float64(hi)
	case KindI16:
		lo, hi := intMinMax(s.I16, math.MinInt16, math.MaxInt16)
		return float64(lo), float64(hi)
	case KindI32:
		lo, hi := intMinMax(s.I32, math.MinInt32, math.MaxInt32)
		return float64(lo), float64(hi)
	case KindI64:
		lo, hi := intMinMax(s.I64, math.MinInt64, math.MaxInt64)
		return float64(lo), float64(hi)
	case KindF16:
		return halfMinMax(s.F16)
	case KindF32:
		return floatMinMax32(s.F32)
	case KindF64:
		return floatMinMax64(s.F64)
	default:
		return math.Inf(1), math.Inf(-1)
	}
}
