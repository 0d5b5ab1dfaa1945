// Package xlsx serializes a parsed grid and string pool into a spreadsheet
// package: a ZIP archive of nine XML parts that reference each other by
// fixed path. No spreadsheet library is involved; the parts are assembled
// directly so the output is fully under our control.
//
// The parts must be mutually consistent or the archive will not open, even
// if every part is well-formed XML on its own. The manifest, relationship
// files, workbook, metadata and style sheet are constants; only the
// worksheet and the shared-string table vary with input.
package xlsx

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mkarlsen/convertd/internal/tabular"
)

// ErrStringNotPooled reports a cell whose value is missing from the string
// pool. The parser guarantees every cell value is pooled, so hitting this
// means the grid and pool passed to the writer come from different parses.
var ErrStringNotPooled = errors.New("cell value missing from shared string pool")

// Write streams the archive to w. A nil or empty grid produces a valid
// workbook with an empty sheet.
func Write(w io.Writer, grid *tabular.Grid, pool *tabular.StringPool) error {
	sheet, err := sheetPart(grid, pool)
	if err != nil {
		return err
	}

	entries := []struct {
		path    string
		content string
	}{
		{pathContentTypes, contentTypesPart},
		{pathRels, relsPart},
		{pathCoreProps, corePropsPart},
		{pathAppProps, appPropsPart},
		{pathWorkbook, workbookPart},
		{pathWorkbookRels, workbookRelsPart},
		{pathSheet, sheet},
		{pathSharedStrings, sharedStringsPart(pool)},
		{pathStyles, stylesPart},
	}

	zw := zip.NewWriter(w)
	for _, e := range entries {
		f, err := zw.Create(e.path)
		if err != nil {
			return fmt.Errorf("create entry %s: %w", e.path, err)
		}
		if _, err := io.WriteString(f, e.content); err != nil {
			return fmt.Errorf("write entry %s: %w", e.path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}

// WritePackage writes the archive to dest, replacing any existing file.
//
// The archive is first written to a temp file next to dest and renamed into
// place, so an I/O failure mid-write never leaves a truncated archive at
// the destination path.
func WritePackage(grid *tabular.Grid, pool *tabular.StringPool, dest string) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := Write(tmp, grid, pool); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("move archive into place: %w", err)
	}
	return nil
}
