package export

import (
	"github.com/cockroachdb/errors"
	"github.com/gocarina/gocsv"
)

// CSVRenderer writes the record as a header line plus one data line.
type CSVRenderer struct{}

// RenderWorkbook implements WorkbookRenderer.
func (CSVRenderer) RenderWorkbook(rec Record) ([]byte, error) {
	rec.Client = sanitizeCell(rec.Client)
	rec.Service = sanitizeCell(rec.Service)

	out, err := gocsv.MarshalBytes([]Record{rec})
	if err != nil {
		return nil, errors.Wrap(err, "marshal csv record")
	}
	return out, nil
}
