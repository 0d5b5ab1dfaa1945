package tabular

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse_Basic(t *testing.T) {
	grid, pool, err := Parse(strings.NewReader("name,age\nAnna,30\nBoris,25"), ",")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := [][]string{
		{"name", "age"},
		{"Anna", "30"},
		{"Boris", "25"},
	}
	if len(grid.Rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(grid.Rows))
	}
	for r, row := range want {
		if len(grid.Rows[r]) != len(row) {
			t.Fatalf("row %d: expected %d cells, got %d", r, len(row), len(grid.Rows[r]))
		}
		for c, cell := range row {
			if grid.Rows[r][c] != cell {
				t.Errorf("row %d cell %d: expected %q, got %q", r, c, cell, grid.Rows[r][c])
			}
		}
	}

	if pool.Len() != 6 {
		t.Errorf("expected 6 unique strings, got %d", pool.Len())
	}
}

func TestParse_TrimsWhitespace(t *testing.T) {
	grid, _, err := Parse(strings.NewReader("  a , b \n\tc\t,d"), ",")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := [][]string{{"a", "b"}, {"c", "d"}}
	for r, row := range want {
		for c, cell := range row {
			if grid.Rows[r][c] != cell {
				t.Errorf("row %d cell %d: expected %q, got %q", r, c, cell, grid.Rows[r][c])
			}
		}
	}
}

func TestParse_RaggedRowsAccepted(t *testing.T) {
	grid, _, err := Parse(strings.NewReader("a,b\nc,d,e,f\ng"), ",")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	wantLens := []int{2, 4, 1}
	if len(grid.Rows) != len(wantLens) {
		t.Fatalf("expected %d rows, got %d", len(wantLens), len(grid.Rows))
	}
	for r, n := range wantLens {
		if len(grid.Rows[r]) != n {
			t.Errorf("row %d: expected %d cells, got %d (no padding or truncation)", r, n, len(grid.Rows[r]))
		}
	}
}

func TestParse_EmptyTrailingFieldsPreserved(t *testing.T) {
	grid, _, err := Parse(strings.NewReader("a,b,,\n"), ",")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(grid.Rows[0]) != 4 {
		t.Fatalf("expected 4 cells including empty trailing fields, got %d", len(grid.Rows[0]))
	}
	if grid.Rows[0][2] != "" || grid.Rows[0][3] != "" {
		t.Errorf("expected trailing cells to be empty, got %q, %q", grid.Rows[0][2], grid.Rows[0][3])
	}
}

func TestParse_NoQuoteHandling(t *testing.T) {
	// Delimiters inside quotes still split; the format has no quoting rules.
	grid, _, err := Parse(strings.NewReader(`"a,b",c`), ",")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(grid.Rows[0]) != 3 {
		t.Fatalf("expected 3 cells (quotes are not special), got %d", len(grid.Rows[0]))
	}
}

func TestParse_CustomDelimiter(t *testing.T) {
	grid, _, err := Parse(strings.NewReader("a||b||c"), "||")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(grid.Rows[0]) != 3 {
		t.Fatalf("expected 3 cells with multi-char delimiter, got %d", len(grid.Rows[0]))
	}
}

func TestParse_CRLF(t *testing.T) {
	grid, _, err := Parse(strings.NewReader("a,b\r\nc,d\r\n"), ",")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(grid.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(grid.Rows))
	}
	if grid.Rows[0][1] != "b" {
		t.Errorf("expected CR to be stripped, got %q", grid.Rows[0][1])
	}
}

func TestStringPool_FirstOccurrenceOrder(t *testing.T) {
	pool := NewStringPool()
	for _, v := range []string{"x", "y", "x", "z", "y"} {
		pool.Add(v)
	}

	want := []string{"x", "y", "z"}
	got := pool.Values()
	if len(got) != len(want) {
		t.Fatalf("expected pool %v, got %v", want, got)
	}
	for i, v := range want {
		if got[i] != v {
			t.Errorf("pool[%d]: expected %q, got %q", i, v, got[i])
		}
		idx, ok := pool.Index(v)
		if !ok || idx != i {
			t.Errorf("Index(%q): expected (%d, true), got (%d, %v)", v, i, idx, ok)
		}
	}
}

func TestStringPool_IndexMissing(t *testing.T) {
	pool := NewStringPool()
	pool.Add("present")

	if _, ok := pool.Index("absent"); ok {
		t.Error("expected Index to report absent values")
	}
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"commas win", "a,b;c,d", ","},
		{"semicolons win", "a;b;c,d", ";"},
		{"tie goes to comma", "a;b,c", ","},
		{"empty input defaults to comma", "", ","},
		{"no separators defaults to comma", "plain text", ","},
		{"only first line counts", "a,b\nx;y;z;w", ","},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectDelimiter(strings.NewReader(tt.input)); got != tt.want {
				t.Errorf("DetectDelimiter(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("boom")
}

func TestDetectDelimiter_ReadErrorFallsBack(t *testing.T) {
	if got := DetectDelimiter(failingReader{}); got != "," {
		t.Errorf("expected comma fallback on read error, got %q", got)
	}
}

func TestDetectDelimiterFile_MissingFileFallsBack(t *testing.T) {
	got := DetectDelimiterFile(filepath.Join(t.TempDir(), "nope.csv"))
	if got != "," {
		t.Errorf("expected comma fallback for missing file, got %q", got)
	}
}

func TestParseFile_MissingFile(t *testing.T) {
	_, _, err := ParseFile(filepath.Join(t.TempDir(), "nope.csv"), ",")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParse_EmptyDelimiterDefaultsToComma(t *testing.T) {
	grid, _, err := Parse(strings.NewReader("a,b"), "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(grid.Rows[0]) != 2 {
		t.Fatalf("expected comma default, got %d cells", len(grid.Rows[0]))
	}
}

func TestGrid_Counts(t *testing.T) {
	var nilGrid *Grid
	if nilGrid.RowCount() != 0 || nilGrid.CellCount() != 0 {
		t.Error("nil grid should report zero rows and cells")
	}

	grid := &Grid{Rows: [][]string{{"a", "b"}, {"c"}}}
	if grid.RowCount() != 2 {
		t.Errorf("expected 2 rows, got %d", grid.RowCount())
	}
	if grid.CellCount() != 3 {
		t.Errorf("expected 3 cells, got %d", grid.CellCount())
	}
}
