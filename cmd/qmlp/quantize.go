package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/qmlp/internal/memfile"
	"github.com/samcharles93/qmlp/internal/mlp"
	"github.com/samcharles93/qmlp/internal/pipeline"
	"github.com/samcharles93/qmlp/internal/tensor"
)

func quantizeCmd() *cli.Command {
	var (
		modelPath   string
		datasetPath string
		calibSize   int64
		sampleIndex int64
		sampleLabel int64
	)

	return &cli.Command{
		Name:  "quantize",
		Usage: "Quantize a trained model and export hardware artifacts with a golden prediction",
		Flags: append(append(artifactFlags(), loggingFlags()...),
			&cli.StringFlag{
				Name:        "model",
				Aliases:     []string{"m"},
				Usage:       "path to model .safetensors (fc1/fc2 weights and biases)",
				Destination: &modelPath,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "dataset",
				Usage:       "path to dataset .safetensors (images and labels)",
				Destination: &datasetPath,
				Required:    true,
			},
			&cli.Int64Flag{
				Name:        "calib-size",
				Usage:       "number of leading dataset samples used for calibration",
				Value:       256,
				Destination: &calibSize,
			},
			&cli.Int64Flag{
				Name:        "sample-index",
				Usage:       "dataset index of the golden sample (-1: first sample with --sample-label)",
				Value:       -1,
				Destination: &sampleIndex,
			},
			&cli.Int64Flag{
				Name:        "sample-label",
				Usage:       "label of the golden sample when --sample-index is unset",
				Value:       3,
				Destination: &sampleLabel,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := LoadConfig()
			applyCommonConfig(cmd, cfg)
			applyQuantizeConfig(cmd, cfg, &calibSize, &sampleLabel)
			log := newLogger()

			model, err := mlp.Load(modelPath)
			if err != nil {
				return err
			}
			log.Info("loaded model",
				"input", model.Input, "hidden", model.Hidden, "output", model.Output)

			ds, err := mlp.LoadDataset(datasetPath, model.Input)
			if err != nil {
				return err
			}

			n := int(calibSize)
			if n <= 0 {
				return fmt.Errorf("calib-size must be positive, got %d", n)
			}
			if n > ds.Len() {
				n = ds.Len()
			}
			batch := tensor.NewMatFromData(n, model.Input, ds.Images.Data[:n*model.Input])

			builder, err := pipeline.NewBuilder(model)
			if err != nil {
				return err
			}
			if err := builder.Calibrate(&batch); err != nil {
				return err
			}
			p, err := builder.Build()
			if err != nil {
				return err
			}
			for _, w := range p.Warnings {
				log.Warn("quantization precision loss",
					"kind", w.Kind, "tensor", w.Tensor, "count", w.Count)
			}
			log.Info("built pipeline",
				"scale_x", p.InputScale,
				"scale_w1", p.L1.WeightScale,
				"scale_w2", p.L2.WeightScale,
				"shift1", p.L1.Shift,
				"hidden_scale", p.HiddenScale)

			idx := int(sampleIndex)
			if idx < 0 {
				idx, err = ds.FindLabel(int(sampleLabel))
				if err != nil {
					return err
				}
			}
			sample, label, err := ds.Sample(idx)
			if err != nil {
				return err
			}

			xq, err := p.QuantizeInput(sample)
			if err != nil {
				return err
			}
			res, err := p.Forward(xq)
			if err != nil {
				return err
			}
			log.Info("golden inference",
				"sample_index", idx, "label", label, "prediction", res.Prediction)

			artifacts := &memfile.Artifacts{
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
				SampleLabel: label,
				GoldenPred:  res.Prediction,
			}
			if err := artifacts.Write(artifactsDir); err != nil {
				return err
			}
			if err := memfile.WriteManifest(artifactsDir, memfile.NewManifest(p, label, res.Prediction)); err != nil {
				return err
			}
			log.Info("exported artifacts", "dir", artifactsDir)
			return nil
		},
	}
}
