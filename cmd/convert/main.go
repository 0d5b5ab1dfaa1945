// Command convert performs a one-shot file conversion without the server:
//
//	convert -in data.csv [-out data.xlsx] [-delimiter ";"]
//
// With no -delimiter the separator is auto-detected from the first line.
// No database is involved; history is a server concern.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mkarlsen/convertd/internal/config"
	"github.com/mkarlsen/convertd/internal/core"
	"github.com/mkarlsen/convertd/internal/logging"
)

func main() {
	var (
		in        = flag.String("in", "", "input delimited text file (required)")
		out       = flag.String("out", "", "output .xlsx path (default: <input>_converted.xlsx)")
		delimiter = flag.String("delimiter", "", "field delimiter (default: auto-detect)")
		logLevel  = flag.String("log-level", "info", "log level: debug, info, warn, error")
	)
	flag.Parse()

	logging.Setup(*logLevel, "text")

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: convert -in <file> [-out <file>] [-delimiter <sep>]")
		os.Exit(2)
	}

	outputPath := *out
	if outputPath == "" {
		outputPath = core.DefaultOutputPath(*in)
	}

	cfg := &config.Config{}
	cfg.Convert.MaxConcurrent = 1
	service := core.NewService(nil, cfg)

	result, err := service.Convert(context.Background(), core.ConvertRequest{
		InputPath:  *in,
		OutputPath: outputPath,
		Delimiter:  *delimiter,
	})
	if err != nil {
		slog.Error("conversion failed", "error", err, "hint", core.FormatUserError(err))
		os.Exit(1)
	}

	slog.Info("conversion complete",
		"output", result.OutputPath,
		"rows", result.Rows,
		"cells", result.Cells,
		"unique_strings", result.UniqueStrings,
		"delimiter", result.Delimiter,
		"duration_ms", result.Duration.Milliseconds(),
	)
}
