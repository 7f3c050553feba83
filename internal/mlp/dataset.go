package mlp

import (
	"fmt"

	"github.com/samcharles93/qmlp/internal/safetensors"
	"github.com/samcharles93/qmlp/internal/tensor"
)

// Tensor names expected in a dataset safetensors file.
const (
	TensorImages = "images"
	TensorLabels = "labels"
)

// Dataset is a batch of flattened real-valued inputs with integer
// labels. It serves both as the calibration set and as the pool the
// golden sample is drawn from.
type Dataset struct {
	Images tensor.Mat
	Labels []int
}

// Len returns the number of samples.
func (d *Dataset) Len() int { return d.Images.R }

// Sample returns the i-th input vector and its label.
func (d *Dataset) Sample(i int) ([]float32, int, error) {
	if i < 0 || i >= d.Images.R {
		return nil, 0, fmt.Errorf("sample index %d out of range [0, %d)", i, d.Images.R)
	}
	return d.Images.Row(i), d.Labels[i], nil
}

// FindLabel returns the index of the first sample with the given label.
func (d *Dataset) FindLabel(label int) (int, error) {
	for i, l := range d.Labels {
		if l == label {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no sample with label %d", label)
}

// LoadDataset reads an images/labels pair from a safetensors file and
// checks that the input width matches the model.
func LoadDataset(path string, inputDim int) (*Dataset, error) {
	f, err := safetensors.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}

	images, info, err := f.ReadTensorF32(TensorImages)
	if err != nil {
		return nil, err
	}
	if len(info.Shape) != 2 {
		return nil, fmt.Errorf("%s: expected 2-D shape, got %v", TensorImages, info.Shape)
	}
	if info.Shape[1] != inputDim {
		return nil, fmt.Errorf("dataset input width %d does not match model input dim %d", info.Shape[1], inputDim)
	}

	rawLabels, _, err := f.ReadTensorInts(TensorLabels)
	if err != nil {
		return nil, err
	}
	if len(rawLabels) != info.Shape[0] {
		return nil, fmt.Errorf("label count %d does not match %d samples", len(rawLabels), info.Shape[0])
	}
	labels := make([]int, len(rawLabels))
	for i, l := range rawLabels {
		labels[i] = int(l)
	}

	return &Dataset{
		Images: tensor.NewMatFromData(info.Shape[0], info.Shape[1], images),
		Labels: labels,
	}, nil
}
