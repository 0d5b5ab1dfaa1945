package xlsx

// parts.go holds the XML content of the nine package parts. Seven parts
// carry no data and are emitted verbatim on every run; only the worksheet
// and the shared-string table depend on the input.

import (
	"fmt"
	"strings"

	"github.com/mkarlsen/convertd/internal/tabular"
)

// Fixed entry paths inside the archive. These are part of the wire contract
// with spreadsheet readers and must not change.
const (
	pathContentTypes  = "[Content_Types].xml"
	pathRels          = "_rels/.rels"
	pathCoreProps     = "docProps/core.xml"
	pathAppProps      = "docProps/app.xml"
	pathWorkbook      = "xl/workbook.xml"
	pathWorkbookRels  = "xl/_rels/workbook.xml.rels"
	pathSheet         = "xl/worksheets/sheet1.xml"
	pathSharedStrings = "xl/sharedStrings.xml"
	pathStyles        = "xl/styles.xml"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>`

// contentTypesPart declares the content type of every part in the package.
const contentTypesPart = xmlHeader +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>` +
	`<Override PartName="/xl/worksheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>` +
	`<Override PartName="/xl/sharedStrings.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"/>` +
	`<Override PartName="/xl/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"/>` +
	`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
	`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>` +
	`</Types>`

// relsPart maps the package root to the workbook and document properties.
const relsPart = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties" Target="docProps/app.xml"/>` +
	`</Relationships>`

// workbookRelsPart wires the workbook to its sheet, styles and shared strings.
const workbookRelsPart = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
	`<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings" Target="sharedStrings.xml"/>` +
	`</Relationships>`

// workbookPart declares the single sheet.
const workbookPart = xmlHeader +
	`<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
	`<sheets><sheet name="Sheet1" sheetId="1" r:id="rId1"/></sheets></workbook>`

// stylesPart is the minimal style sheet readers require to exist.
const stylesPart = xmlHeader +
	`<styleSheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"/>`

// corePropsPart and appPropsPart are constant so two conversions of the same
// input produce byte-identical archives.
const corePropsPart = xmlHeader +
	`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
	`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" ` +
	`xmlns:dcmitype="http://purl.org/dc/dcmitype/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
	`<dc:title>Converted Spreadsheet</dc:title>` +
	`<dc:creator>convertd</dc:creator>` +
	`<cp:lastModifiedBy>convertd</cp:lastModifiedBy>` +
	`<dcterms:created xsi:type="dcterms:W3CDTF">2025-04-15T00:00:00Z</dcterms:created>` +
	`</cp:coreProperties>`

const appPropsPart = xmlHeader +
	`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties" ` +
	`xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes">` +
	`<Application>convertd</Application>` +
	`</Properties>`

// sheetPart renders the worksheet. Every cell is shared-string typed and
// carries its value's pool index. Rows with no cells still emit a row
// element so row numbering stays continuous.
func sheetPart(grid *tabular.Grid, pool *tabular.StringPool) (string, error) {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">`)
	sb.WriteString(`<sheetData>`)

	if grid != nil {
		for r, row := range grid.Rows {
			fmt.Fprintf(&sb, `<row r="%d">`, r+1)
			for c, value := range row {
				idx, ok := pool.Index(value)
				if !ok {
					return "", fmt.Errorf("cell %s value %q: %w", CellRef(c, r+1), value, ErrStringNotPooled)
				}
				fmt.Fprintf(&sb, `<c r="%s" t="s"><v>%d</v></c>`, CellRef(c, r+1), idx)
			}
			sb.WriteString(`</row>`)
		}
	}

	sb.WriteString(`</sheetData></worksheet>`)
	return sb.String(), nil
}

// sharedStringsPart renders the shared-string table in pool order. Since the
// pool only holds unique values, count and uniqueCount are the same figure.
func sharedStringsPart(pool *tabular.StringPool) string {
	values := pool.Values()

	var sb strings.Builder
	sb.WriteString(xmlHeader)
	fmt.Fprintf(&sb,
		`<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="%d" uniqueCount="%d">`,
		len(values), len(values))
	for _, v := range values {
		sb.WriteString(`<si><t xml:space="preserve">`)
		sb.WriteString(escapeText(v))
		sb.WriteString(`</t></si>`)
	}
	sb.WriteString(`</sst>`)
	return sb.String()
}
