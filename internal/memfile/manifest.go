package memfile

import (
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/samcharles93/qmlp/internal/pipeline"
)

// Manifest is a machine-readable summary of one export: dimensions,
// scales, shifts, construction warnings and the golden result. It is a
// convenience companion to the .mem files, not part of the hardware
// contract.
type Manifest struct {
	InputDim  int `json:"input_dim"`
	HiddenDim int `json:"hidden_dim"`
	OutputDim int `json:"output_dim"`

	ScaleX      float64 `json:"scale_x"`
	ScaleW1     float64 `json:"scale_w1"`
	ScaleW2     float64 `json:"scale_w2"`
	HiddenScale float64 `json:"hidden_scale"`
	Shift1      int     `json:"shift1"`
	Shift2      int     `json:"shift2"`

	Warnings []pipeline.Warning `json:"warnings,omitempty"`

	SampleLabel int `json:"sample_label"`
	GoldenPred  int `json:"golden_pred"`
}

// NewManifest assembles a manifest from a built pipeline and its golden
// sample result.
func NewManifest(p *pipeline.Pipeline, sampleLabel, goldenPred int) Manifest {
	return Manifest{
		InputDim:    p.InputDim(),
		HiddenDim:   p.HiddenDim(),
		OutputDim:   p.OutputDim(),
		ScaleX:      p.InputScale,
		ScaleW1:     p.L1.WeightScale,
		ScaleW2:     p.L2.WeightScale,
		HiddenScale: p.HiddenScale,
		Shift1:      p.L1.Shift,
		Shift2:      p.L2.Shift,
		Warnings:    p.Warnings,
		SampleLabel: sampleLabel,
		GoldenPred:  goldenPred,
	}
}

// WriteManifest writes the manifest as indented JSON into dir.
func WriteManifest(dir string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, FileManifest), append(data, '\n'), 0o644)
}

// ReadManifest loads a manifest from dir.
func ReadManifest(dir string) (Manifest, error) {
	raw, err := os.ReadFile(filepath.Join(dir, FileManifest))
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return Manifest{}, err
	}
	return m, nil
}
