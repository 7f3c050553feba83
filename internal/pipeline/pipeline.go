// Package pipeline assembles a quantized two-layer inference pipeline
// from a floating-point model and a calibration batch, and executes the
// integer-only forward pass that serves as the golden reference for the
// hardware implementation.
package pipeline

import (
	"fmt"

	"github.com/samcharles93/qmlp/internal/tensor"
)

// Warning kinds reported during pipeline construction. None of these are
// fatal; they surface precision loss that would otherwise be silent.
const (
	WarnDegenerateScale  = "degenerate_scale"
	WarnWeightSaturation = "weight_saturation"
	WarnShiftUnderflow   = "shift_underflow"
)

// Warning records one precision-loss condition observed while building a
// pipeline. Tensor names the affected tensor ("x", "w1", "w2", "h1").
type Warning struct {
	Kind   string `json:"kind"`
	Tensor string `json:"tensor"`
	Count  int    `json:"count,omitempty"`
}

func (w Warning) String() string {
	if w.Count > 0 {
		return fmt.Sprintf("%s(%s x%d)", w.Kind, w.Tensor, w.Count)
	}
	return fmt.Sprintf("%s(%s)", w.Kind, w.Tensor)
}

// Layer is one quantized affine stage: int8 weights, int32 biases in the
// accumulator domain, the scales that produced them, and the arithmetic
// right shift applied to the accumulator afterwards.
type Layer struct {
	W tensor.QMat
	B []int32

	InputScale  float64
	WeightScale float64
	Shift       int
}

// Pipeline is an immutable quantized two-layer network: affine, shift,
// clamp, ReLU, affine, argmax. All fields are resolved once by the
// Builder (or Reconstruct) and only read afterwards.
type Pipeline struct {
	L1 Layer
	L2 Layer

	// InputScale quantizes real inputs to int8 (scale_x).
	InputScale float64
	// HiddenScale is the scale the hardware realizes for the hidden
	// activations: L1.InputScale*L1.WeightScale / 2^L1.Shift. It is the
	// input scale of L2.
	HiddenScale float64

	Warnings []Warning
}

// InputDim returns the expected input vector length.
func (p *Pipeline) InputDim() int { return p.L1.W.C }

// HiddenDim returns the hidden layer width.
func (p *Pipeline) HiddenDim() int { return p.L1.W.R }

// OutputDim returns the number of output classes.
func (p *Pipeline) OutputDim() int { return p.L2.W.R }

func (p *Pipeline) validate() error {
	if p.L1.W.R != len(p.L1.B) {
		return fmt.Errorf("layer1 bias length %d does not match %d rows", len(p.L1.B), p.L1.W.R)
	}
	if p.L2.W.C != p.L1.W.R {
		return fmt.Errorf("layer2 input width %d does not match hidden dim %d", p.L2.W.C, p.L1.W.R)
	}
	if p.L2.W.R != len(p.L2.B) {
		return fmt.Errorf("layer2 bias length %d does not match %d rows", len(p.L2.B), p.L2.W.R)
	}
	if p.InputScale <= 0 || p.HiddenScale <= 0 {
		return fmt.Errorf("scales must be positive (input=%g hidden=%g)", p.InputScale, p.HiddenScale)
	}
	if p.L1.Shift < 0 || p.L2.Shift < 0 {
		return fmt.Errorf("shifts must be non-negative (shift1=%d shift2=%d)", p.L1.Shift, p.L2.Shift)
	}
	return nil
}

// Reconstruct rebuilds a pipeline from previously exported tensors and
// scalars, e.g. when verifying an artifact directory. The hidden scale is
// rederived from scale_x, scale_w1 and shift1.
func Reconstruct(w1 tensor.QMat, b1 []int32, w2 tensor.QMat, b2 []int32,
	scaleX, scaleW1, scaleW2 float64, shift1, shift2 int) (*Pipeline, error) {

	if shift1 < 0 || shift2 < 0 {
		return nil, fmt.Errorf("reconstruct pipeline: shifts must be non-negative (shift1=%d shift2=%d)", shift1, shift2)
	}
	hidden := scaleX * scaleW1 / float64(int64(1)<<uint(shift1))
	p := &Pipeline{
		L1:          Layer{W: w1, B: b1, InputScale: scaleX, WeightScale: scaleW1, Shift: shift1},
		L2:          Layer{W: w2, B: b2, InputScale: hidden, WeightScale: scaleW2, Shift: shift2},
		InputScale:  scaleX,
		HiddenScale: hidden,
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("reconstruct pipeline: %w", err)
	}
	return p, nil
}
