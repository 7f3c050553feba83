package pipeline

import (
	"errors"
	"fmt"

	"github.com/samcharles93/qmlp/internal/mlp"
	"github.com/samcharles93/qmlp/internal/quant"
	"github.com/samcharles93/qmlp/internal/tensor"
)

// ErrNotCalibrated is returned by Build when no calibration batch has
// been supplied.
var ErrNotCalibrated = errors.New("pipeline: Build called before Calibrate")

// Builder constructs a Pipeline in the one order that is correct:
// calibration resolves scale_x and the hidden target scale, layer 1 is
// quantized, the requantization shift fixes the effective hidden scale,
// and only then can layer 2 be quantized against it. Callers cannot
// reorder those steps; Build performs the whole sequence.
type Builder struct {
	model *mlp.Model

	calibrated  bool
	scaleX      quant.Scale
	hiddenScale quant.Scale
}

// NewBuilder prepares a builder for the given model. The model is
// validated once here; the builder only reads it afterwards.
func NewBuilder(m *mlp.Model) (*Builder, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline builder: %w", err)
	}
	return &Builder{model: m}, nil
}

// Calibrate runs the floating-point model over a batch of real inputs
// and records the observed input range and post-ReLU hidden range. The
// batch is consumed here; it is not retained.
func (b *Builder) Calibrate(batch *tensor.Mat) error {
	if batch.R == 0 {
		return errors.New("pipeline builder: empty calibration batch")
	}
	if batch.C != b.model.Input {
		return fmt.Errorf("pipeline builder: calibration width %d does not match input dim %d", batch.C, b.model.Input)
	}

	b.scaleX = quant.EstimateScale(batch.Data)

	hidden := make([]float32, 0, batch.R*b.model.Hidden)
	for i := 0; i < batch.R; i++ {
		h, err := b.model.HiddenActivations(batch.Row(i))
		if err != nil {
			return err
		}
		hidden = append(hidden, h...)
	}
	b.hiddenScale = quant.EstimateScale(hidden)
	b.calibrated = true
	return nil
}

// Build quantizes both layers and resolves the requantization shift,
// returning an immutable Pipeline. Precision-loss conditions are
// collected as warnings; only structural problems (shape mismatches,
// bias outside int32) abort.
func (b *Builder) Build() (*Pipeline, error) {
	if !b.calibrated {
		return nil, ErrNotCalibrated
	}

	var warnings []Warning
	if b.scaleX.Degenerate {
		warnings = append(warnings, Warning{Kind: WarnDegenerateScale, Tensor: "x"})
	}
	if b.hiddenScale.Degenerate {
		warnings = append(warnings, Warning{Kind: WarnDegenerateScale, Tensor: "h1"})
	}

	scaleW1 := quant.EstimateScale(b.model.W1.Data)
	if scaleW1.Degenerate {
		warnings = append(warnings, Warning{Kind: WarnDegenerateScale, Tensor: "w1"})
	}
	l1, err := quant.QuantizeLinear(&b.model.W1, b.model.B1, b.scaleX.Value, scaleW1.Value)
	if err != nil {
		return nil, fmt.Errorf("layer1: %w", err)
	}
	if l1.Saturated > 0 {
		warnings = append(warnings, Warning{Kind: WarnWeightSaturation, Tensor: "w1", Count: l1.Saturated})
	}

	accScale1 := b.scaleX.Value * scaleW1.Value
	shift := quant.SolveShift(accScale1, b.hiddenScale.Value)
	if shift.Underflow {
		warnings = append(warnings, Warning{Kind: WarnShiftUnderflow, Tensor: "h1"})
	}

	scaleW2 := quant.EstimateScale(b.model.W2.Data)
	if scaleW2.Degenerate {
		warnings = append(warnings, Warning{Kind: WarnDegenerateScale, Tensor: "w2"})
	}
	// Layer 2 quantizes against the scale the hardware actually realizes
	// for the hidden activations, not the calibration target.
	l2, err := quant.QuantizeLinear(&b.model.W2, b.model.B2, shift.EffectiveScale, scaleW2.Value)
	if err != nil {
		return nil, fmt.Errorf("layer2: %w", err)
	}
	if l2.Saturated > 0 {
		warnings = append(warnings, Warning{Kind: WarnWeightSaturation, Tensor: "w2", Count: l2.Saturated})
	}

	p := &Pipeline{
		L1: Layer{
			W:           l1.W,
			B:           l1.B,
			InputScale:  b.scaleX.Value,
			WeightScale: scaleW1.Value,
			Shift:       shift.Amount,
		},
		L2: Layer{
			W:           l2.W,
			B:           l2.B,
			InputScale:  shift.EffectiveScale,
			WeightScale: scaleW2.Value,
			// Logits stay int32 for the final argmax; no rescale.
			Shift: 0,
		},
		InputScale:  b.scaleX.Value,
		HiddenScale: shift.EffectiveScale,
		Warnings:    warnings,
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}
