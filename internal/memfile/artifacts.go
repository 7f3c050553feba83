package memfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samcharles93/qmlp/internal/tensor"
)

// Artifacts is the complete export set for one quantized pipeline plus
// its golden sample: everything the hardware tooling loads verbatim.
type Artifacts struct {
	W1 tensor.QMat
	B1 []int32
	W2 tensor.QMat
	B2 []int32

	Shift1 int
	Shift2 int

	ScaleX  float64
	ScaleW1 float64
	ScaleW2 float64

	Sample      []int8
	SampleLabel int
	GoldenPred  int
}

// Write persists every artifact into dir, creating it if necessary.
func (a *Artifacts) Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	steps := []struct {
		name string
		fn   func(string) error
	}{
		{FileW1, func(p string) error { return WriteInt8Mat(p, &a.W1) }},
		{FileB1, func(p string) error { return WriteInt32Vec(p, a.B1) }},
		{FileW2, func(p string) error { return WriteInt8Mat(p, &a.W2) }},
		{FileB2, func(p string) error { return WriteInt32Vec(p, a.B2) }},
		{FileShift1, func(p string) error { return WriteIntScalar(p, a.Shift1) }},
		{FileShift2, func(p string) error { return WriteIntScalar(p, a.Shift2) }},
		{FileScaleX, func(p string) error { return WriteFloatScalar(p, a.ScaleX) }},
		{FileScaleW1, func(p string) error { return WriteFloatScalar(p, a.ScaleW1) }},
		{FileScaleW2, func(p string) error { return WriteFloatScalar(p, a.ScaleW2) }},
		{FileSampleInput, func(p string) error { return WriteInt8Vec(p, a.Sample) }},
		{FileSampleLabel, func(p string) error { return WriteIntScalar(p, a.SampleLabel) }},
		{FileGoldenPred, func(p string) error { return WriteIntScalar(p, a.GoldenPred) }},
	}
	for _, s := range steps {
		if err := s.fn(filepath.Join(dir, s.name)); err != nil {
			return fmt.Errorf("write %s: %w", s.name, err)
		}
	}
	return nil
}

// Load reads a full artifact set back from dir.
func Load(dir string) (*Artifacts, error) {
	var (
		a   Artifacts
		err error
	)
	if a.W1, err = ReadInt8Mat(filepath.Join(dir, FileW1)); err != nil {
		return nil, err
	}
	if a.B1, err = ReadInt32Vec(filepath.Join(dir, FileB1)); err != nil {
		return nil, err
	}
	if a.W2, err = ReadInt8Mat(filepath.Join(dir, FileW2)); err != nil {
		return nil, err
	}
	if a.B2, err = ReadInt32Vec(filepath.Join(dir, FileB2)); err != nil {
		return nil, err
	}
	if a.Shift1, err = ReadIntScalar(filepath.Join(dir, FileShift1)); err != nil {
		return nil, err
	}
	if a.Shift2, err = ReadIntScalar(filepath.Join(dir, FileShift2)); err != nil {
		return nil, err
	}
	if a.ScaleX, err = ReadFloatScalar(filepath.Join(dir, FileScaleX)); err != nil {
		return nil, err
	}
	if a.ScaleW1, err = ReadFloatScalar(filepath.Join(dir, FileScaleW1)); err != nil {
		return nil, err
	}
	if a.ScaleW2, err = ReadFloatScalar(filepath.Join(dir, FileScaleW2)); err != nil {
		return nil, err
	}
	if a.Sample, err = ReadInt8Vec(filepath.Join(dir, FileSampleInput)); err != nil {
		return nil, err
	}
	if a.SampleLabel, err = ReadIntScalar(filepath.Join(dir, FileSampleLabel)); err != nil {
		return nil, err
	}
	if a.GoldenPred, err = ReadIntScalar(filepath.Join(dir, FileGoldenPred)); err != nil {
		return nil, err
	}
	return &a, nil
}
