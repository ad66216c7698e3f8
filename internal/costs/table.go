package costs

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/h2non/filetype"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// Format identifies how an upload is decoded.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

const (
	// maxXLSRows bounds how many rows are read from a legacy workbook.
	maxXLSRows = 100000
	// xlsScanCols is how far a row without a ROW record is scanned; such rows report no width.
	xlsScanCols = 64
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is an uploaded sheet: a trimmed header row followed by raw data rows.
type Table struct {
	Format  Format
	Headers []string
	Rows    [][]string
}

// Cell returns the trimmed value at (row, col), or "" when the row is short.
func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	return cellValue(t.Rows[row], col)
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ReadTable decodes a CSV, XLSX or XLS upload. The format comes from the file
// extension and falls back to content sniffing. maxBytes <= 0 disables the size limit.
func ReadTable(r io.Reader, filename string, maxBytes int64) (Table, error) {
	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return Table{}, invalidFile(err, "read upload")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return Table{}, invalidFilef("upload exceeds %d bytes", maxBytes)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Table{}, invalidFilef("upload %q is empty", filename)
	}

	format, err := detectFormat(filename, data)
	if err != nil {
		return Table{}, err
	}

	var rows [][]string
	switch format {
	case FormatXLSX:
		rows, err = readXLSX(data)
	case FormatXLS:
		rows, err = readXLS(data)
	default:
		rows, err = readCSV(data)
	}
	if err != nil {
		return Table{}, err
	}

	return buildTable(format, rows)
}

func detectFormat(filename string, data []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	}

	kind, _ := filetype.Match(data)
	switch {
	case kind == filetype.Unknown:
		if utf8.Valid(data) || !bytes.ContainsRune(data, 0) {
			return FormatCSV, nil
		}
	case kind.Extension == "xlsx" || kind.Extension == "zip":
		return FormatXLSX, nil
	case kind.Extension == "xls":
		return FormatXLS, nil
	}
	return "", invalidFilef("unsupported file type for %q", filename)
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, invalidFile(err, "decode csv")
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, invalidFile(err, "parse csv")
	}
	return rows, nil
}

// sniffDelimiter picks the most frequent of ',', ';' and tab on the header line.
// Spreadsheets saved with a Brazilian locale use ';'.
func sniffDelimiter(data []byte) rune {
	header, _, _ := bytes.Cut(data, []byte("\n"))
	best, bestCount := ',', bytes.Count(header, []byte(","))
	for _, candidate := range []rune{';', '\t'} {
		if n := bytes.Count(header, []byte(string(candidate))); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, invalidFile(err, "open xlsx")
	}
	defer func() { _ = f.Close() }()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, invalidFilef("no worksheet found")
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, invalidFile(err, "read xlsx sheet")
	}
	return rows, nil
}

func readXLS(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, invalidFile(err, "open xls")
	}
	if workbook.NumSheets() == 0 {
		return nil, invalidFilef("no worksheet found")
	}
	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return nil, invalidFilef("no worksheet found")
	}

	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow) && i < maxXLSRows; i++ {
		row := xlsRow(sheet, i)
		if row == nil {
			continue
		}
		width := row.LastCol()
		if width == 0 {
			width = xlsScanCols
		}
		cells := make([]string, width)
		for c := row.FirstCol(); c < width; c++ {
			cells[c] = row.Col(c)
		}
		rows = append(rows, trimTrailingBlanks(cells))
	}
	return rows, nil
}

// xlsRow returns nil for rows the workbook never stored. WorkSheet.Row panics on those.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

func trimTrailingBlanks(cells []string) []string {
	end := len(cells)
	for end > 0 && strings.TrimSpace(cells[end-1]) == "" {
		end--
	}
	return cells[:end]
}

func buildTable(format Format, rows [][]string) (Table, error) {
	kept := make([][]string, 0, len(rows))
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		kept = append(kept, row)
	}
	if len(kept) == 0 {
		return Table{}, invalidFilef("file has no header row")
	}

	headers := make([]string, len(kept[0]))
	for i, h := range kept[0] {
		headers[i] = strings.TrimSpace(h)
	}

	return Table{Format: format, Headers: headers, Rows: kept[1:]}, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
