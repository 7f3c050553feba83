// Package quant implements symmetric per-tensor int8 quantization:
// scale estimation from observed value ranges, weight and bias
// quantization with round-half-to-even, and power-of-two requantization
// shift solving. All functions are pure; precision-loss conditions are
// reported as values, never swallowed.
package quant

import "math"

// QMaxInt8 is the positive end of the symmetric int8 range used when
// deriving scales. The negative end (-128) is reachable only through
// clamping.
const QMaxInt8 = 127

// Scale converts between the real and quantized integer domains by
// division (quantize) or multiplication (dequantize). It is always
// strictly positive. Degenerate marks the all-zero fallback where the
// scale defaults to 1.0.
type Scale struct {
	Value      float64
	Degenerate bool
}

// EstimateScale derives a symmetric scale from a sample of real values:
// max(|v|)/127, or 1.0 when every value is zero.
func EstimateScale(vals []float32) Scale {
	var m float64
	for _, v := range vals {
		a := math.Abs(float64(v))
		if a > m {
			m = a
		}
	}
	if m == 0 {
		return Scale{Value: 1.0, Degenerate: true}
	}
	return Scale{Value: m / QMaxInt8}
}

// QuantizeValue maps a real value into int8 at the given scale, rounding
// half to even and saturating into [-128, 127].
func QuantizeValue(v float32, scale float64) int8 {
	r := math.RoundToEven(float64(v) / scale)
	if r < -128 {
		return -128
	}
	if r > 127 {
		return 127
	}
	return int8(r)
}

// DequantizeValue maps a quantized value back into the real domain.
func DequantizeValue(q int8, scale float64) float64 {
	return float64(q) * scale
}

// QuantizeVector quantizes a real vector elementwise at the given scale.
func QuantizeVector(vals []float32, scale float64) []int8 {
	out := make([]int8, len(vals))
	for i, v := range vals {
		out[i] = QuantizeValue(v, scale)
	}
	return out
}
