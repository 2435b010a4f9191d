package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/rknncli/rknncli/internal/api"
	"github.com/rknncli/rknncli/internal/logger"
	"github.com/rknncli/rknncli/pkg/rknn"
)

func serveCmd(cfg Config) *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the model inspection REST API",
		Flags: []cli.Flag{
			modelFlag(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			log := logger.FromContext(ctx)
			applyServeConfig(c, cfg, &addr)

			f, err := rknn.Open(modelPath)
			if err != nil {
				return cli.Exit("error: open model: "+err.Error(), 1)
			}
			defer func() { _ = f.Close() }()

			rec, err := f.Record()
			if err != nil {
				return cli.Exit("error: decode model: "+err.Error(), 1)
			}

			server := api.NewServer(modelPath, f.Layout, rec, log)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)

			log.Info("starting server", "address", addr, "model", modelPath)
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
