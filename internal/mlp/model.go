// Package mlp holds the floating-point two-layer perceptron that is the
// source of a quantized pipeline: affine, ReLU, affine. Training is out
// of scope; weights arrive pre-trained in a safetensors file.
package mlp

import (
	"fmt"

	"github.com/samcharles93/qmlp/internal/tensor"
)

// Model is a trained two-layer perceptron. W1 is [Hidden x Input], W2 is
// [Output x Hidden]; one weight row per output neuron.
type Model struct {
	Input  int
	Hidden int
	Output int

	W1 tensor.Mat
	B1 []float32
	W2 tensor.Mat
	B2 []float32
}

// Validate checks that all weight and bias shapes agree. A model that
// fails validation must not reach quantization; corrupted shapes would
// propagate into the exported artifacts.
func (m *Model) Validate() error {
	if m.Input <= 0 || m.Hidden <= 0 || m.Output <= 0 {
		return fmt.Errorf("invalid dims: input=%d hidden=%d output=%d", m.Input, m.Hidden, m.Output)
	}
	if m.W1.R != m.Hidden || m.W1.C != m.Input {
		return fmt.Errorf("fc1 weight shape [%d x %d] does not match [%d x %d]", m.W1.R, m.W1.C, m.Hidden, m.Input)
	}
	if len(m.B1) != m.Hidden {
		return fmt.Errorf("fc1 bias length %d does not match hidden dim %d", len(m.B1), m.Hidden)
	}
	if m.W2.R != m.Output || m.W2.C != m.Hidden {
		return fmt.Errorf("fc2 weight shape [%d x %d] does not match [%d x %d]", m.W2.R, m.W2.C, m.Output, m.Hidden)
	}
	if len(m.B2) != m.Output {
		return fmt.Errorf("fc2 bias length %d does not match output dim %d", len(m.B2), m.Output)
	}
	return nil
}

// HiddenActivations computes the post-ReLU hidden vector for one input.
// The calibration pass uses these to estimate the target hidden scale.
func (m *Model) HiddenActivations(x []float32) ([]float32, error) {
	if len(x) != m.Input {
		return nil, fmt.Errorf("input length %d does not match input dim %d", len(x), m.Input)
	}
	h := make([]float32, m.Hidden)
	tensor.MatVec(h, &m.W1, x, m.B1)
	for i, v := range h {
		if v < 0 {
			h[i] = 0
		}
	}
	return h, nil
}

// Forward computes float logits for one input vector.
func (m *Model) Forward(x []float32) ([]float32, error) {
	h, err := m.HiddenActivations(x)
	if err != nil {
		return nil, err
	}
	y := make([]float32, m.Output)
	tensor.MatVec(y, &m.W2, h, m.B2)
	return y, nil
}
