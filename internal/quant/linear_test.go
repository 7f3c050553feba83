package quant

import (
	"testing"

	"github.com/samcharles93/qmlp/internal/tensor"
)

func TestQuantizeLinear(t *testing.T) {
	w := tensor.NewMatFromData(2, 2, []float32{0.1, -0.1, 0.004, 0.025})
	b := []float32{0.5, -0.25}

	lq, err := QuantizeLinear(&w, b, 0.5, 0.01)
	if err != nil {
		t.Fatalf("QuantizeLinear: %v", err)
	}

	wantW := []int8{10, -10, 0, 2} // 0.4 -> 0, 2.5 -> 2 (half to even)
	for i, want := range wantW {
		if lq.W.Data[i] != want {
			t.Errorf("weight %d: got %d, want %d", i, lq.W.Data[i], want)
		}
	}

	// bias scale = 0.5*0.01 = 0.005
	wantB := []int32{100, -50}
	for i, want := range wantB {
		if lq.B[i] != want {
			t.Errorf("bias %d: got %d, want %d", i, lq.B[i], want)
		}
	}
	if lq.Saturated != 0 {
		t.Errorf("unexpected saturation count %d", lq.Saturated)
	}
}

func TestQuantizeLinearCountsSaturation(t *testing.T) {
	w := tensor.NewMatFromData(1, 3, []float32{5.0, -5.0, 0.01})
	b := []float32{0}

	lq, err := QuantizeLinear(&w, b, 1, 0.01)
	if err != nil {
		t.Fatalf("QuantizeLinear: %v", err)
	}
	if lq.Saturated != 2 {
		t.Fatalf("got saturation count %d, want 2", lq.Saturated)
	}
	if lq.W.Data[0] != 127 || lq.W.Data[1] != -128 {
		t.Fatalf("saturated weights: got [%d %d], want [127 -128]", lq.W.Data[0], lq.W.Data[1])
	}
}

func TestQuantizeLinearBiasOverflow(t *testing.T) {
	w := tensor.NewMatFromData(1, 1, []float32{0.01})
	b := []float32{1e9}

	// bias scale = 1e-6 * 0.01 = 1e-8; 1e9/1e-8 is far outside int32.
	if _, err := QuantizeLinear(&w, b, 1e-6, 0.01); err == nil {
		t.Fatal("expected bias range error")
	}
}

func TestQuantizeLinearShapeMismatch(t *testing.T) {
	w := tensor.NewMat(3, 2)
	if _, err := QuantizeLinear(&w, []float32{0, 0}, 1, 1); err == nil {
		t.Fatal("expected bias length error")
	}
}

func TestQuantizeLinearRejectsBadScales(t *testing.T) {
	w := tensor.NewMat(1, 1)
	if _, err := QuantizeLinear(&w, []float32{0}, 0, 1); err == nil {
		t.Fatal("expected error for zero input scale")
	}
	if _, err := QuantizeLinear(&w, []float32{0}, 1, -0.5); err == nil {
		t.Fatal("expected error for negative weight scale")
	}
}
