package mlp

import (
	"math"
	"testing"

	"github.com/samcharles93/qmlp/internal/tensor"
)

func testModel() *Model {
	return &Model{
		Input:  3,
		Hidden: 2,
		Output: 2,
		W1:     tensor.NewMatFromData(2, 3, []float32{1, 0, -1, 0.5, 0.5, 0.5}),
		B1:     []float32{0.1, -2},
		W2:     tensor.NewMatFromData(2, 2, []float32{1, 1, -1, 2}),
		B2:     []float32{0, 0.25},
	}
}

func TestHiddenActivationsAppliesReLU(t *testing.T) {
	m := testModel()
	h, err := m.HiddenActivations([]float32{1, 1, 1})
	if err != nil {
		t.Fatalf("HiddenActivations: %v", err)
	}
	// pre-ReLU: [0.1, -0.5] -> post-ReLU: [0.1, 0]
	if math.Abs(float64(h[0]-0.1)) > 1e-6 || h[1] != 0 {
		t.Fatalf("got %v, want [0.1 0]", h)
	}
}

func TestForwardMatchesNaive(t *testing.T) {
	m := testModel()
	x := []float32{0.5, -0.25, 1}
	got, err := m.Forward(x)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	h, _ := m.HiddenActivations(x)
	want := make([]float32, m.Output)
	for i := 0; i < m.Output; i++ {
		var sum float32
		for j := 0; j < m.Hidden; j++ {
			sum += m.W2.Row(i)[j] * h[j]
		}
		want[i] = sum + m.B2[i]
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Fatalf("logit %d: got %g, want %g", i, got[i], want[i])
		}
	}
}

func TestForwardRejectsWrongInputLength(t *testing.T) {
	m := testModel()
	if _, err := m.Forward([]float32{1, 2}); err == nil {
		t.Fatal("expected dimension error")
	}
}

func TestValidateCatchesShapeMismatch(t *testing.T) {
	m := testModel()
	if err := m.Validate(); err != nil {
		t.Fatalf("valid model rejected: %v", err)
	}

	bad := testModel()
	bad.B1 = []float32{0}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected bias length error")
	}

	bad = testModel()
	bad.W2 = tensor.NewMat(2, 3)
	if err := bad.Validate(); err == nil {
		t.Fatal("expected weight shape error")
	}
}

func TestDatasetFindLabel(t *testing.T) {
	d := &Dataset{
		Images: tensor.NewMat(3, 2),
		Labels: []int{7, 3, 3},
	}
	idx, err := d.FindLabel(3)
	if err != nil {
		t.Fatalf("FindLabel: %v", err)
	}
	if idx != 1 {
		t.Fatalf("got index %d, want first occurrence 1", idx)
	}
	if _, err := d.FindLabel(9); err == nil {
		t.Fatal("expected error for absent label")
	}
}
