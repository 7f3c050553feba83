package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/qmlp/internal/memfile"
)

func inspectCmd() *cli.Command {
	var showWarnings bool

	return &cli.Command{
		Name:  "inspect",
		Usage: "Print a summary of an artifact directory",
		Flags: append(artifactFlags(),
			&cli.BoolFlag{
				Name:        "warnings",
				Usage:       "list quantization warnings from the manifest",
				Destination: &showWarnings,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := LoadConfig()
			applyCommonConfig(cmd, cfg)

			a, err := memfile.Load(artifactsDir)
			if err != nil {
				return err
			}

			fmt.Printf("dimensions:   %d -> %d -> %d\n", a.W1.C, a.W1.R, a.W2.R)
			fmt.Printf("scale_x:      %g\n", a.ScaleX)
			fmt.Printf("scale_w1:     %g\n", a.ScaleW1)
			fmt.Printf("scale_w2:     %g\n", a.ScaleW2)
			fmt.Printf("shift1:       %d\n", a.Shift1)
			fmt.Printf("shift2:       %d\n", a.Shift2)
			fmt.Printf("sample label: %d\n", a.SampleLabel)
			fmt.Printf("golden pred:  %d\n", a.GoldenPred)

			m, err := memfile.ReadManifest(artifactsDir)
			if err == nil {
				fmt.Printf("hidden scale: %g\n", m.HiddenScale)
				if showWarnings {
					if len(m.Warnings) == 0 {
						fmt.Println("warnings:     none")
					}
					for _, w := range m.Warnings {
						fmt.Printf("warning:      %s\n", w)
					}
				}
			} else if showWarnings {
				fmt.Println("warnings:     manifest not available")
			}
			return nil
		},
	}
}
