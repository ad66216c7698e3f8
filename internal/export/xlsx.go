package export

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"
)

// WorksheetName is the sheet holding the calculation record.
const WorksheetName = "Precificacao"

// WorksheetHeaders are the column titles, in Record field order.
var WorksheetHeaders = []string{
	"Data", "Cliente", "Serviço", "Horas", "Custo Operacional",
	"Margem %", "Imposto %", "Preço Final", "Lucro",
}

// XLSXRenderer writes the record as a one-row Excel worksheet.
type XLSXRenderer struct{}

// RenderWorkbook implements WorkbookRenderer.
func (XLSXRenderer) RenderWorkbook(rec Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), WorksheetName); err != nil {
		return nil, errors.Wrap(err, "set sheet name")
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create header style")
	}

	moneyFmt := `"R$" #,##0.00`
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return nil, errors.Wrap(err, "create money style")
	}

	header := make([]any, len(WorksheetHeaders))
	for i, h := range WorksheetHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(WorksheetName, "A1", &header); err != nil {
		return nil, errors.Wrap(err, "write header row")
	}
	if err := f.SetCellStyle(WorksheetName, "A1", "I1", headerStyle); err != nil {
		return nil, errors.Wrap(err, "style header row")
	}

	values := []any{
		rec.Date,
		sanitizeCell(rec.Client),
		sanitizeCell(rec.Service),
		rec.Hours,
		rec.OperationalCost,
		rec.MarginPercent,
		rec.TaxPercent,
		rec.FinalPrice,
		rec.Profit,
	}
	if err := f.SetSheetRow(WorksheetName, "A2", &values); err != nil {
		return nil, errors.Wrap(err, "write record row")
	}
	for _, cell := range []string{"E2", "H2", "I2"} {
		if err := f.SetCellStyle(WorksheetName, cell, cell, moneyStyle); err != nil {
			return nil, errors.Wrapf(err, "style %s", cell)
		}
	}

	widths := []float64{12, 28, 36, 8, 18, 10, 10, 16, 16}
	for i, w := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, errors.Wrap(err, "resolve column name")
		}
		if err := f.SetColWidth(WorksheetName, name, name, w); err != nil {
			return nil, errors.Wrapf(err, "set col width %s", name)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, errors.Wrap(err, "write xlsx")
	}
	return buf.Bytes(), nil
}
