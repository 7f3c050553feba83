package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/qmlp/internal/memfile"
	"github.com/samcharles93/qmlp/internal/pipeline"
)

func verifyCmd() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Re-run the integer forward pass over an artifact directory and check the golden prediction",
		Flags: append(artifactFlags(), loggingFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := LoadConfig()
			applyCommonConfig(cmd, cfg)
			log := newLogger()

			a, err := memfile.Load(artifactsDir)
			if err != nil {
				return err
			}
			p, err := pipeline.Reconstruct(a.W1, a.B1, a.W2, a.B2,
				a.ScaleX, a.ScaleW1, a.ScaleW2, a.Shift1, a.Shift2)
			if err != nil {
				return err
			}

			res, err := p.Forward(a.Sample)
			if err != nil {
				return err
			}
			if res.Prediction != a.GoldenPred {
				return fmt.Errorf("verification failed: recomputed prediction %d does not match golden %d",
					res.Prediction, a.GoldenPred)
			}

			log.Info("artifacts verified",
				"dir", artifactsDir,
				"prediction", res.Prediction,
				"true_label", a.SampleLabel,
				"label_match", res.Prediction == a.SampleLabel)
			return nil
		},
	}
}
