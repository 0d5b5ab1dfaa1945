package core

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/mkarlsen/convertd/internal/logging"
	"github.com/mkarlsen/convertd/internal/tabular"
	"github.com/mkarlsen/convertd/internal/xlsx"
)

// ConvertRequest describes one conversion.
type ConvertRequest struct {
	// InputPath is the delimited text file to read.
	InputPath string

	// OutputPath is where the spreadsheet archive is written. Any existing
	// file is replaced.
	OutputPath string

	// Delimiter splits lines into fields. Empty means auto-detect from the
	// first line of the input.
	Delimiter string
}

// ConvertResult summarizes a completed conversion.
type ConvertResult struct {
	Rows          int           `json:"rows"`
	Cells         int           `json:"cells"`
	UniqueStrings int           `json:"uniqueStrings"`
	Delimiter     string        `json:"delimiter"`
	OutputPath    string        `json:"outputPath"`
	Duration      time.Duration `json:"-"`
}

// Convert parses the input and writes the spreadsheet archive, recording
// the outcome in history. It acquires a conversion slot first and returns
// ErrTooManyConversions when none frees up in time.
//
// The first error encountered is returned; a failed conversion leaves no
// addressable output file thanks to the writer's temp-and-rename
// discipline.
func (s *Service) Convert(ctx context.Context, req ConvertRequest) (*ConvertResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	start := time.Now()
	result, err := s.convert(req)
	elapsed := time.Since(start)

	s.recordOutcome(ctx, req, result, err, elapsed)

	if err != nil {
		return nil, err
	}
	result.Duration = elapsed
	return result, nil
}

// convert is the sequential parse-then-write pipeline.
func (s *Service) convert(req ConvertRequest) (*ConvertResult, error) {
	delimiter := req.Delimiter
	if delimiter == "" {
		delimiter = tabular.DetectDelimiterFile(req.InputPath)
	}

	grid, pool, err := tabular.ParseFile(req.InputPath, delimiter)
	if err != nil {
		return nil, &SourceError{Path: req.InputPath, Err: err}
	}

	if err := xlsx.WritePackage(grid, pool, req.OutputPath); err != nil {
		if errors.Is(err, xlsx.ErrStringNotPooled) {
			return nil, err
		}
		return nil, &DestError{Path: req.OutputPath, Err: err}
	}

	return &ConvertResult{
		Rows:          grid.RowCount(),
		Cells:         grid.CellCount(),
		UniqueStrings: pool.Len(),
		Delimiter:     delimiter,
		OutputPath:    req.OutputPath,
	}, nil
}

// recordOutcome writes the history entry for a finished conversion. History
// failures are logged and do not affect the conversion result.
func (s *Service) recordOutcome(ctx context.Context, req ConvertRequest, result *ConvertResult, convErr error, elapsed time.Duration) {
	if s.pool == nil {
		return
	}

	entry := HistoryEntry{
		FileName:     filepath.Base(req.InputPath),
		SourceFormat: SourceFormat(req.InputPath),
		TargetFormat: "xlsx",
		Status:       StatusSuccess,
		DurationMS:   elapsed.Milliseconds(),
	}
	if convErr != nil {
		entry.Status = StatusFailed
		entry.Error = convErr.Error()
	} else if result != nil {
		entry.Rows = result.Rows
		entry.Cells = result.Cells
	}

	if _, err := s.RecordConversion(ctx, entry); err != nil {
		logging.FromContext(ctx).Warn("failed to record conversion history",
			"file", entry.FileName,
			"error", err,
		)
	}
}

// SourceFormat derives the history source-format label from a file name,
// falling back to "txt" for extensionless files.
func SourceFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "txt"
	}
	return ext
}

// DefaultOutputPath places the archive next to the input file, named
// "<base>_converted.xlsx".
func DefaultOutputPath(inputPath string) string {
	base := filepath.Base(inputPath)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return filepath.Join(filepath.Dir(inputPath), base+"_converted.xlsx")
}
