package mlp

import (
	"fmt"

	"github.com/samcharles93/qmlp/internal/safetensors"
	"github.com/samcharles93/qmlp/internal/tensor"
)

// Tensor names expected in a model safetensors file.
const (
	TensorW1 = "fc1.weight"
	TensorB1 = "fc1.bias"
	TensorW2 = "fc2.weight"
	TensorB2 = "fc2.bias"
)

// Load reads a two-layer model from a safetensors file. Dimensions are
// taken from the tensor shapes and cross-checked by Validate.
func Load(path string) (*Model, error) {
	f, err := safetensors.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}

	w1, w1Info, err := f.ReadTensorF32(TensorW1)
	if err != nil {
		return nil, err
	}
	if len(w1Info.Shape) != 2 {
		return nil, fmt.Errorf("%s: expected 2-D shape, got %v", TensorW1, w1Info.Shape)
	}
	b1, _, err := f.ReadTensorF32(TensorB1)
	if err != nil {
		return nil, err
	}
	w2, w2Info, err := f.ReadTensorF32(TensorW2)
	if err != nil {
		return nil, err
	}
	if len(w2Info.Shape) != 2 {
		return nil, fmt.Errorf("%s: expected 2-D shape, got %v", TensorW2, w2Info.Shape)
	}
	b2, _, err := f.ReadTensorF32(TensorB2)
	if err != nil {
		return nil, err
	}

	m := &Model{
		Input:  w1Info.Shape[1],
		Hidden: w1Info.Shape[0],
		Output: w2Info.Shape[0],
		W1:     tensor.NewMatFromData(w1Info.Shape[0], w1Info.Shape[1], w1),
		B1:     b1,
		W2:     tensor.NewMatFromData(w2Info.Shape[0], w2Info.Shape[1], w2),
		B2:     b2,
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return m, nil
}
