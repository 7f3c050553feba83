package memfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samcharles93/qmlp/internal/mlp"
	"github.com/samcharles93/qmlp/internal/pipeline"
	"github.com/samcharles93/qmlp/internal/tensor"
)

// runExport executes the full flow once: calibrate, quantize, run the
// golden forward pass, write the artifact set.
func runExport(t *testing.T, dir string) *Artifacts {
	t.Helper()
	model := &mlp.Model{
		Input:  4,
		Hidden: 3,
		Output: 2,
		W1: tensor.NewMatFromData(3, 4, []float32{
			0.9921875, -0.5, 0.25, 0,
			-0.125, 0.0625, 0.5, -0.9921875,
			0.75, 0.75, -0.25, 0.125,
		}),
		B1: []float32{0.05, -0.05, 0},
		W2: tensor.NewMatFromData(2, 3, []float32{
			1.5875, -0.79375, 0.396875,
			-0.79375, 1.5875, 0.79375,
		}),
		B2: []float32{0.01, -0.01},
	}

	builder, err := pipeline.NewBuilder(model)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	batch := tensor.NewMatFromData(3, 4, []float32{
		0.5, -0.25, 1, 0,
		0.125, 0.75, -0.5, 0.25,
		-1, 0.5, 0.25, -0.125,
	})
	if err := builder.Calibrate(&batch); err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	p, err := builder.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	sample := batch.Row(0)
	xq, err := p.QuantizeInput(sample)
	if err != nil {
		t.Fatalf("QuantizeInput: %v", err)
	}
	res, err := p.Forward(xq)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	a := &Artifacts{
		W1:          p.L1.W,
		B1:          p.L1.B,
		W2:          p.L2.W,
		B2:          p.L2.B,
		Shift1:      p.L1.Shift,
		Shift2:      p.L2.Shift,
		ScaleX:      p.InputScale,
		ScaleW1:     p.L1.WeightScale,
		ScaleW2:     p.L2.WeightScale,
		Sample:      xq,
		SampleLabel: 1,
		GoldenPred:  res.Prediction,
	}
	if err := a.Write(dir); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := WriteManifest(dir, NewManifest(p, 1, res.Prediction)); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	return a
}

func TestEndToEndExportIsByteIdentical(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	runExport(t, dirA)
	runExport(t, dirB)

	entries, err := os.ReadDir(dirA)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 13 {
		t.Fatalf("expected 13 artifact files, got %d", len(entries))
	}
	for _, e := range entries {
		a, err := os.ReadFile(filepath.Join(dirA, e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		b, err := os.ReadFile(filepath.Join(dirB, e.Name()))
		if err != nil {
			t.Fatalf("%s missing from second export: %v", e.Name(), err)
		}
		if string(a) != string(b) {
			t.Errorf("%s differs between identical runs", e.Name())
		}
	}
}

func TestEndToEndVerifyRoundTrip(t *testing.T) {
	dir := t.TempDir()
	exported := runExport(t, dir)

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p, err := pipeline.Reconstruct(loaded.W1, loaded.B1, loaded.W2, loaded.B2,
		loaded.ScaleX, loaded.ScaleW1, loaded.ScaleW2, loaded.Shift1, loaded.Shift2)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	res, err := p.Forward(loaded.Sample)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if res.Prediction != exported.GoldenPred {
		t.Fatalf("reloaded pipeline predicts %d, golden is %d", res.Prediction, exported.GoldenPred)
	}
}
