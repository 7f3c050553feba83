package quant

import (
	"fmt"
	"math"

	"github.com/samcharles93/qmlp/internal/tensor"
)

// LinearQ holds one quantized affine layer: int8 weights, int32 biases in
// the accumulator domain, and the count of weights that saturated during
// quantization. A nonzero Saturated count means the weight scale could
// not represent the full weight range losslessly.
type LinearQ struct {
	W         tensor.QMat
	B         []int32
	Saturated int
}

// QuantizeLinear converts a float weight matrix and bias vector into a
// quantized layer. Weights are rounded half to even and saturated into
// int8; biases land in the int32 accumulator domain at
// inScale*wScale. A bias that rounds outside the int32 range aborts with
// an error rather than wrapping silently.
func QuantizeLinear(w *tensor.Mat, b []float32, inScale, wScale float64) (*LinearQ, error) {
	if len(b) != w.R {
		return nil, fmt.Errorf("quantize linear: bias length %d does not match %d output rows", len(b), w.R)
	}
	if inScale <= 0 || wScale <= 0 {
		return nil, fmt.Errorf("quantize linear: scales must be positive (in=%g w=%g)", inScale, wScale)
	}

	out := &LinearQ{
		W: tensor.NewQMat(w.R, w.C),
		B: make([]int32, len(b)),
	}
	for i := 0; i < w.R; i++ {
		src := w.Row(i)
		dst := out.W.Row(i)
		for j, v := range src {
			r := math.RoundToEven(float64(v) / wScale)
			if r < -128 || r > 127 {
				out.Saturated++
			}
			dst[j] = QuantizeValue(v, wScale)
		}
	}

	biasScale := inScale * wScale
	for i, v := range b {
		r := math.RoundToEven(float64(v) / biasScale)
		if r < math.MinInt32 || r > math.MaxInt32 {
			return nil, fmt.Errorf("quantize linear: bias[%d]=%g exceeds int32 range at scale %g", i, v, biasScale)
		}
		out.B[i] = int32(r)
	}
	return out, nil
}
