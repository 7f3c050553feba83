package pipeline

import (
	"reflect"
	"testing"

	"github.com/samcharles93/qmlp/internal/mlp"
	"github.com/samcharles93/qmlp/internal/tensor"
)

// buildTestModel uses weight ranges that are exact powers of two times
// 127 so every estimated scale is an exact binary fraction and the
// expected integers can be computed by hand.
func buildTestModel() *mlp.Model {
	return &mlp.Model{
		Input:  2,
		Hidden: 2,
		Output: 2,
		// max |w| = 1.984375 = 127 * 2^-6 -> scale_w1 = 0.015625
		W1: tensor.NewMatFromData(2, 2, []float32{1.984375, 0, 0, -1.984375}),
		B1: []float32{0.5, 0.25},
		// max |w| = 7.9375 = 127 * 2^-4 -> scale_w2 = 0.0625
		W2: tensor.NewMatFromData(2, 2, []float32{7.9375, 0, 0, 3.96875}),
		B2: []float32{0, 0},
	}
}

func buildTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	b, err := NewBuilder(buildTestModel())
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	// max |x| = 63.5 = 127 * 0.5 -> scale_x = 0.5
	batch := tensor.NewMatFromData(2, 2, []float32{63.5, -63.5, 10, 5})
	if err := b.Calibrate(&batch); err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	p, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return p
}

func TestBuilderResolvesScalesAndShift(t *testing.T) {
	p := buildTestPipeline(t)

	if p.InputScale != 0.5 {
		t.Errorf("input scale: got %g, want 0.5", p.InputScale)
	}
	if p.L1.WeightScale != 0.015625 {
		t.Errorf("w1 scale: got %g, want 0.015625", p.L1.WeightScale)
	}
	if p.L2.WeightScale != 0.0625 {
		t.Errorf("w2 scale: got %g, want 0.0625", p.L2.WeightScale)
	}

	// The rescale multiplier is far below one, so the shift floors to 0
	// and the realized hidden scale stays at scale_x*scale_w1.
	if p.L1.Shift != 0 {
		t.Errorf("shift1: got %d, want 0", p.L1.Shift)
	}
	if p.HiddenScale != 0.0078125 {
		t.Errorf("hidden scale: got %g, want 0.0078125", p.HiddenScale)
	}
	// Layer 2 must see the realized hidden scale, not the target.
	if p.L2.InputScale != p.HiddenScale {
		t.Errorf("layer2 input scale %g != hidden scale %g", p.L2.InputScale, p.HiddenScale)
	}

	var sawUnderflow bool
	for _, w := range p.Warnings {
		if w.Kind == WarnShiftUnderflow {
			sawUnderflow = true
		}
	}
	if !sawUnderflow {
		t.Errorf("expected shift underflow warning, got %v", p.Warnings)
	}
}

func TestBuilderQuantizesWeights(t *testing.T) {
	p := buildTestPipeline(t)

	wantW1 := []int8{127, 0, 0, -127}
	if !reflect.DeepEqual(p.L1.W.Data, wantW1) {
		t.Errorf("W1q: got %v, want %v", p.L1.W.Data, wantW1)
	}
	// bias scale = 0.5 * 0.015625 = 0.0078125
	wantB1 := []int32{64, 32}
	if !reflect.DeepEqual(p.L1.B, wantB1) {
		t.Errorf("b1q: got %v, want %v", p.L1.B, wantB1)
	}
	// 3.96875/0.0625 = 63.5 rounds half to even -> 64.
	wantW2 := []int8{127, 0, 0, 64}
	if !reflect.DeepEqual(p.L2.W.Data, wantW2) {
		t.Errorf("W2q: got %v, want %v", p.L2.W.Data, wantW2)
	}
}

func TestForwardGolden(t *testing.T) {
	p := buildTestPipeline(t)

	xq, err := p.QuantizeInput([]float32{63.5, -63.5})
	if err != nil {
		t.Fatalf("QuantizeInput: %v", err)
	}
	if xq[0] != 127 || xq[1] != -127 {
		t.Fatalf("xq: got %v, want [127 -127]", xq)
	}

	res, err := p.Forward(xq)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	wantAcc1 := []int32{127*127 + 64, 127*127 + 32}
	if !reflect.DeepEqual(res.Acc1, wantAcc1) {
		t.Errorf("acc1: got %v, want %v", res.Acc1, wantAcc1)
	}
	// Both accumulators exceed int8 at shift 0, so the hidden vector
	// clamps to 127 before ReLU.
	wantHidden := []int8{127, 127}
	if !reflect.DeepEqual(res.Hidden, wantHidden) {
		t.Errorf("hidden: got %v, want %v", res.Hidden, wantHidden)
	}
	wantAcc2 := []int32{127 * 127, 64 * 127}
	if !reflect.DeepEqual(res.Acc2, wantAcc2) {
		t.Errorf("acc2: got %v, want %v", res.Acc2, wantAcc2)
	}
	if res.Prediction != 0 {
		t.Errorf("prediction: got %d, want 0", res.Prediction)
	}
}

func TestForwardDeterministic(t *testing.T) {
	p := buildTestPipeline(t)
	x := []int8{5, -7}

	first, err := p.Forward(x)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := p.Forward(x)
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
	}
}

func TestForwardTieBreaksToLowestIndex(t *testing.T) {
	// Identical layer-2 rows force exactly tied int32 logits.
	w1 := tensor.NewQMatFromData(2, 2, []int8{1, 0, 0, 1})
	w2 := tensor.NewQMatFromData(3, 2, []int8{2, 2, 2, 2, 2, 2})
	p, err := Reconstruct(w1, []int32{0, 0}, w2, []int32{10, 10, 10}, 1, 1, 1, 0, 0)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}

	res, err := p.Forward([]int8{3, 3})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if res.Acc2[0] != res.Acc2[1] || res.Acc2[1] != res.Acc2[2] {
		t.Fatalf("expected tied logits, got %v", res.Acc2)
	}
	if res.Prediction != 0 {
		t.Fatalf("tie break: got %d, want 0", res.Prediction)
	}
}

func TestForwardAppliesShiftBeforeReLU(t *testing.T) {
	w1 := tensor.NewQMatFromData(2, 1, []int8{10, -10})
	w2 := tensor.NewQMatFromData(2, 2, []int8{1, 0, 0, 1})
	p, err := Reconstruct(w1, []int32{0, 0}, w2, []int32{0, 0}, 1, 1, 1, 2, 0)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}

	res, err := p.Forward([]int8{6})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	// acc1 = [60, -60]; >>2 = [15, -15]; ReLU -> [15, 0].
	if !reflect.DeepEqual(res.Hidden, []int8{15, 0}) {
		t.Fatalf("hidden: got %v, want [15 0]", res.Hidden)
	}
}

func TestBuildBeforeCalibrate(t *testing.T) {
	b, err := NewBuilder(buildTestModel())
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	if _, err := b.Build(); err != ErrNotCalibrated {
		t.Fatalf("got %v, want ErrNotCalibrated", err)
	}
}

func TestCalibrateRejectsWrongWidth(t *testing.T) {
	b, err := NewBuilder(buildTestModel())
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	batch := tensor.NewMat(4, 3)
	if err := b.Calibrate(&batch); err == nil {
		t.Fatal("expected width mismatch error")
	}
}

func TestReconstructMatchesBuilder(t *testing.T) {
	p := buildTestPipeline(t)

	r, err := Reconstruct(p.L1.W, p.L1.B, p.L2.W, p.L2.B,
		p.InputScale, p.L1.WeightScale, p.L2.WeightScale, p.L1.Shift, p.L2.Shift)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if r.HiddenScale != p.HiddenScale {
		t.Fatalf("hidden scale: got %g, want %g", r.HiddenScale, p.HiddenScale)
	}

	x := []int8{100, -50}
	a, err := p.Forward(x)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	b, err := r.Forward(x)
	if err != nil {
		t.Fatalf("Forward (reconstructed): %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("reconstructed pipeline diverges: %+v vs %+v", b, a)
	}
}
