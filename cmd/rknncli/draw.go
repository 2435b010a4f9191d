package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/rknncli/rknncli/internal/logger"
	"github.com/rknncli/rknncli/internal/render"
	"github.com/rknncli/rknncli/pkg/rknn"
)

func drawCmd(cfg Config) *cli.Command {
	var output string

	return &cli.Command{
		Name:  "draw",
		Usage: "Render the model compute graph as SVG",
		Flags: []cli.Flag{
			modelFlag(),
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "output path for the SVG file (default: <model>.svg)",
				Destination: &output,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			log := logger.FromContext(ctx)

			f, err := rknn.Open(modelPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open model: %v", err), 1)
			}
			defer func() { _ = f.Close() }()

			rec, err := f.Record()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: decode model: %v", err), 1)
			}
			if rec.NodeCount() == 0 {
				return cli.Exit("error: model carries no graph to draw", 1)
			}

			if output == "" {
				output = strings.TrimSuffix(modelPath, ".rknn") + ".svg"
			}
			applyDrawConfig(c, cfg, &output)

			svg := render.Model(rec)
			if err := os.WriteFile(output, svg, 0o644); err != nil {
				return cli.Exit(fmt.Sprintf("error: write svg: %v", err), 1)
			}
			log.Debug("rendered graph", "output", output, "bytes", len(svg))

			fmt.Printf("Visualization saved to: %s\n", output)
			fmt.Printf("Found %d nodes in the model\n", rec.NodeCount())

			ops := rec.SummaryByOpType()
			types := make([]string, 0, len(ops))
			for t := range ops {
				types = append(types, t)
			}
			sort.Strings(types)
			fmt.Println("\nNode type summary:")
			for _, t := range types {
				fmt.Printf("  - %s: %d\n", t, ops[t])
			}
			return nil
		},
	}
}
