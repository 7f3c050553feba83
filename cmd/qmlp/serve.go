package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/qmlp/internal/api"
	"github.com/samcharles93/qmlp/internal/memfile"
	"github.com/samcharles93/qmlp/internal/pipeline"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve reference inference over an artifact directory",
		Flags: append(append(artifactFlags(), loggingFlags()...),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := LoadConfig()
			applyCommonConfig(cmd, cfg)
			applyServeConfig(cmd, cfg, &addr)
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

			manifest, err := memfile.ReadManifest(artifactsDir)
			if err != nil {
				manifest = memfile.NewManifest(p, a.SampleLabel, a.GoldenPred)
			}

			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			api.NewServer(p, manifest).Register(e)

			log.Info("starting server", "address", addr,
				"input_dim", p.InputDim(), "output_dim", p.OutputDim())
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
