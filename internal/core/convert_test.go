package core

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mkarlsen/convertd/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Convert.MaxConcurrent = 2
	return cfg
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func TestConvert_EndToEnd(t *testing.T) {
	service := NewService(nil, testConfig())

	input := writeInput(t, "people.csv", "name,age\nAnna,30\nBoris,25")
	output := filepath.Join(t.TempDir(), "people.xlsx")

	result, err := service.Convert(context.Background(), ConvertRequest{
		InputPath:  input,
		OutputPath: output,
		Delimiter:  ",",
	})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if result.Rows != 3 {
		t.Errorf("expected 3 rows, got %d", result.Rows)
	}
	if result.Cells != 6 {
		t.Errorf("expected 6 cells, got %d", result.Cells)
	}
	if result.UniqueStrings != 6 {
		t.Errorf("expected 6 unique strings, got %d", result.UniqueStrings)
	}
	if result.Delimiter != "," {
		t.Errorf("expected comma delimiter, got %q", result.Delimiter)
	}

	// The output must be a readable ZIP archive.
	zr, err := zip.OpenReader(output)
	if err != nil {
		t.Fatalf("output is not a valid archive: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 9 {
		t.Errorf("expected 9 archive entries, got %d", len(zr.File))
	}
}

func TestConvert_AutoDetectsDelimiter(t *testing.T) {
	service := NewService(nil, testConfig())

	input := writeInput(t, "semi.csv", "a;b;c\nd;e;f")
	output := filepath.Join(t.TempDir(), "semi.xlsx")

	result, err := service.Convert(context.Background(), ConvertRequest{
		InputPath:  input,
		OutputPath: output,
	})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if result.Delimiter != ";" {
		t.Errorf("expected auto-detected semicolon, got %q", result.Delimiter)
	}
	if result.Cells != 6 {
		t.Errorf("expected 6 cells, got %d", result.Cells)
	}
}

func TestConvert_RaggedInput(t *testing.T) {
	service := NewService(nil, testConfig())

	input := writeInput(t, "ragged.csv", "a,b\nc,d,e,f")
	output := filepath.Join(t.TempDir(), "ragged.xlsx")

	result, err := service.Convert(context.Background(), ConvertRequest{
		InputPath:  input,
		OutputPath: output,
		Delimiter:  ",",
	})
	if err != nil {
		t.Fatalf("ragged input must convert without error: %v", err)
	}
	if result.Rows != 2 || result.Cells != 6 {
		t.Errorf("expected 2 rows / 6 cells, got %d / %d", result.Rows, result.Cells)
	}
}

func TestConvert_MissingInput(t *testing.T) {
	service := NewService(nil, testConfig())

	output := filepath.Join(t.TempDir(), "out.xlsx")
	_, err := service.Convert(context.Background(), ConvertRequest{
		InputPath:  filepath.Join(t.TempDir(), "nope.csv"),
		OutputPath: output,
		Delimiter:  ",",
	})

	var srcErr *SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("expected SourceError, got %v", err)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Error("no output may be produced when the source is unreadable")
	}
}

func TestConvert_UnwritableDestination(t *testing.T) {
	service := NewService(nil, testConfig())

	input := writeInput(t, "in.csv", "a,b")
	_, err := service.Convert(context.Background(), ConvertRequest{
		InputPath:  input,
		OutputPath: filepath.Join(t.TempDir(), "no", "such", "dir", "out.xlsx"),
		Delimiter:  ",",
	})

	var dstErr *DestError
	if !errors.As(err, &dstErr) {
		t.Fatalf("expected DestError, got %v", err)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/data/report.csv", "/data/report_converted.xlsx"},
		{"/data/report", "/data/report_converted.xlsx"},
		{"notes.txt", "notes_converted.xlsx"},
	}
	for _, tt := range tests {
		if got := DefaultOutputPath(tt.in); got != tt.want {
			t.Errorf("DefaultOutputPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSourceFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/data/report.CSV", "csv"},
		{"notes.txt", "txt"},
		{"bare", "txt"},
	}
	for _, tt := range tests {
		if got := SourceFormat(tt.in); got != tt.want {
			t.Errorf("SourceFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
