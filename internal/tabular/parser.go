// Package tabular parses delimited text into an in-memory grid and a
// de-duplicated string pool, the two inputs the spreadsheet writer consumes.
//
// Parsing is deliberately simple: line-oriented, split on a literal
// delimiter, no quoting or escaping. A delimiter character inside a field is
// always a field separator. Rows keep whatever cell count their line
// produced; ragged grids are accepted and never padded.
package tabular

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultDelimiter is used when detection cannot decide or reading fails.
const DefaultDelimiter = ","

// maxLineSize bounds a single input line. Delimited exports with lines
// beyond this are almost certainly not tabular text.
const maxLineSize = 4 * 1024 * 1024

// Grid is the full parsed content of one source: an ordered sequence of
// rows, each an ordered sequence of trimmed cell values. Row indices are
// 1-based by position; column indices are 0-based within their row.
type Grid struct {
	Rows [][]string
}

// RowCount returns the number of rows. A nil grid has zero rows.
func (g *Grid) RowCount() int {
	if g == nil {
		return 0
	}
	return len(g.Rows)
}

// CellCount returns the total number of cells across all rows.
func (g *Grid) CellCount() int {
	if g == nil {
		return 0
	}
	n := 0
	for _, row := range g.Rows {
		n += len(row)
	}
	return n
}

// StringPool holds every distinct cell value in first-seen order. The
// position of first occurrence is the value's pool index, and that index is
// the only reference mechanism between sheet data and string storage.
//
// A value-to-index map is maintained alongside the ordered slice so lookups
// are constant time rather than a scan per cell.
type StringPool struct {
	values  []string
	indexOf map[string]int
}

// NewStringPool returns an empty pool.
func NewStringPool() *StringPool {
	return &StringPool{indexOf: make(map[string]int)}
}

// Add records v in the pool. Values already present keep their original
// index; only first occurrences extend the pool.
func (p *StringPool) Add(v string) {
	if _, ok := p.indexOf[v]; ok {
		return
	}
	p.indexOf[v] = len(p.values)
	p.values = append(p.values, v)
}

// Index returns the pool index of v and whether v is pooled.
func (p *StringPool) Index(v string) (int, bool) {
	if p == nil {
		return 0, false
	}
	i, ok := p.indexOf[v]
	return i, ok
}

// Len returns the number of unique values in the pool.
func (p *StringPool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.values)
}

// Values returns the pooled values in first-seen order. The returned slice
// is the pool's backing store; callers must not modify it.
func (p *StringPool) Values() []string {
	if p == nil {
		return nil
	}
	return p.values
}

// Parse reads delimited text from r into a Grid and StringPool.
//
// Each line (terminated by \n or \r\n) becomes one row. The line is split on
// the literal delimiter with empty trailing fields preserved, and every
// field is trimmed of leading and trailing whitespace before it is stored
// and pooled. An empty delimiter falls back to DefaultDelimiter.
func Parse(r io.Reader, delimiter string) (*Grid, *StringPool, error) {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}

	grid := &Grid{}
	pool := NewStringPool()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), delimiter)
		row := make([]string, len(fields))
		for i, f := range fields {
			cell := strings.TrimSpace(f)
			row[i] = cell
			pool.Add(cell)
		}
		grid.Rows = append(grid.Rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read source: %w", err)
	}

	return grid, pool, nil
}

// ParseFile opens path and parses it with Parse, wrapping the stream with
// BOM skipping and UTF-8 sanitization first. A missing or unreadable file
// fails before any grid is produced.
func ParseFile(path, delimiter string) (*Grid, *StringPool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	return Parse(WrapReader(f), delimiter)
}

// DetectDelimiter inspects the first line of r and returns ";" when
// semicolons strictly outnumber commas, "," otherwise. It never fails: an
// empty or unreadable source yields the comma default.
func DetectDelimiter(r io.Reader) string {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	if !scanner.Scan() {
		return DefaultDelimiter
	}
	line := scanner.Text()
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ";"
	}
	return DefaultDelimiter
}

// DetectDelimiterFile is DetectDelimiter over a file path, falling back to
// the comma default when the file cannot be opened.
func DetectDelimiterFile(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return DefaultDelimiter
	}
	defer f.Close()

	return DetectDelimiter(WrapReader(f))
}
