package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/rknncli/rknncli/pkg/rknn"
)

func infoCmd() *cli.Command {
	var (
		asJSON      bool
		showTensors bool
		showOps     bool
		tensorLimit int
		tensorName  string
	)

	return &cli.Command{
		Name:  "info",
		Usage: "Show model metadata and input/output information",
		Flags: []cli.Flag{
			modelFlag(),
			&cli.BoolFlag{Name: "json", Usage: "emit the merged model record as JSON", Destination: &asJSON},
			&cli.BoolFlag{Name: "tensors", Usage: "list every tensor", Destination: &showTensors},
			&cli.BoolFlag{Name: "ops", Usage: "show operation type summary", Destination: &showOps},
			&cli.IntFlag{Name: "limit", Usage: "limit tensor listing (0 = no limit)", Value: 50, Destination: &tensorLimit},
			&cli.StringFlag{Name: "filter", Usage: "substring filter for tensor listing", Destination: &tensorName},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx

			stat, err := os.Stat(modelPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: stat model path %q: %v", modelPath, err), 1)
			}
			if stat.IsDir() {
				return cli.Exit("error: model path is a directory", 1)
			}

			f, err := rknn.Open(modelPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open model: %v", err), 1)
			}
			defer func() { _ = f.Close() }()

			rec, err := f.Record()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: decode model: %v", err), 1)
			}

			if asJSON {
				out, err := json.MarshalIndent(struct {
					Layout rknn.Layout       `json:"layout"`
					Model  *rknn.ModelRecord `json:"model"`
				}{f.Layout, rec}, "", "  ")
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: encode json: %v", err), 1)
				}
				fmt.Println(string(out))
				return nil
			}

			fmt.Printf("RKNN Inspect: %s\n", modelPath)
			fmt.Printf("File: %s (%s)\n", filepath.Base(modelPath), formatBytes(uint64(stat.Size())))
			printLayout(f.Layout)
			printModel(rec)
			printBoundary("Inputs", rec.Inputs())
			printBoundary("Outputs", rec.Outputs())

			if showOps {
				printOpSummary(rec.SummaryByOpType())
			}
			if showTensors {
				printTensors(rec.Tensors(), tensorName, tensorLimit)
			}
			return nil
		},
	}
}

func printLayout(l rknn.Layout) {
	fmt.Printf("Container: v%d header=%dB payload=%s trailer=%s\n",
		l.FormatVersion, l.HeaderSize, formatBytes(l.PayloadLength), formatBytes(l.TrailerLength))
}

func printModel(rec *rknn.ModelRecord) {
	section("Model")
	row("name", rec.Name)
	if len(rec.TargetPlatform) > 0 {
		row("target_platform", strings.Join(rec.TargetPlatform, ", "))
	}
	row("source_framework", rec.SourceFramework)
	row("compiler_version", rec.CompilerVersion)
	row("runtime_version", rec.RuntimeVersion)
	rowInt("graphs", len(rec.Graphs))
	rowInt("nodes", rec.NodeCount())
	rowInt("tensors", len(rec.Tensors()))
}

func printBoundary(title string, tensors []rknn.TensorDescriptor) {
	section(title)
	if len(tensors) == 0 {
		fmt.Println("(none)")
		return
	}
	for _, td := range tensors {
		fmt.Println(tensorLine(td))
	}
}

func printOpSummary(ops map[string]int) {
	section("Operations")
	if len(ops) == 0 {
		fmt.Println("(no nodes)")
		return
	}
	types := make([]string, 0, len(ops))
	for t := range ops {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Printf("%-32s %d\n", t, ops[t])
	}
}

func printTensors(tensors []rknn.TensorDescriptor, filter string, limit int) {
	section("Tensors")
	printed := 0
	for _, td := range tensors {
		if filter != "" && !strings.Contains(td.Name, filter) {
			continue
		}
		fmt.Println(tensorLine(td))
		printed++
		if limit > 0 && printed >= limit {
			break
		}
	}
	if limit > 0 && printed < len(tensors) {
		fmt.Printf("... (%d shown of %d)\n", printed, len(tensors))
	}
}

func tensorLine(td rknn.TensorDescriptor) string {
	name := td.Name
	if name == "" {
		name = fmt.Sprintf("tensor_%d", td.ID)
	}
	line := fmt.Sprintf("%-32s id=%-4d shape=%s", name, td.ID, formatShape(td.Shape))
	if td.DType != "" {
		line += " dtype=" + td.DType
	}
	if td.Layout != "" {
		line += " layout=" + td.Layout
	}
	if td.Quant != nil {
		line += fmt.Sprintf(" quant=%s scale=%g zp=%d", td.Quant.Kind, td.Quant.Scale, td.Quant.ZeroPoint)
	}
	return line
}

func formatShape(shape []rknn.Dim) string {
	if len(shape) == 0 {
		return "[]"
	}
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = d.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func section(title string) {
	line := strings.Repeat("-", len(title)+8)
	fmt.Printf("\n%s\n--- %s ---\n%s\n", line, title, line)
}

func row(label, value string) {
	if value == "" {
		return
	}
	fmt.Printf("%-24s %s\n", label+":", value)
}

func rowInt(label string, v int) {
	if v == 0 {
		return
	}
	row(label, fmt.Sprintf("%d", v))
}

func formatBytes(b uint64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case b >= gb:
		return fmt.Sprintf("%.2f GiB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.2f MiB", float64(b)/float64(mb))
	case b >= kb:
		return fmt.Sprintf("%.2f KiB", float64(b)/float64(kb))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
