// Package export renders a priced case as a client-facing PDF proposal and as a
// one-row worksheet (XLSX or CSV). Renderers know nothing about pricing rules.
package export

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/Simplici0/honorarios/internal/format"
	"github.com/Simplici0/honorarios/internal/pricing"
)

// ErrNotExportable is returned when an evaluation has no valid price to export.
var ErrNotExportable = errors.New("evaluation is not exportable")

// Proposal is the data printed on the client proposal.
type Proposal struct {
	ClientName         string
	ServiceDescription string
	Date               string
	EstimatedHours     int
	HourlyRate         decimal.Decimal
	TotalPrice         decimal.Decimal
	MarginFraction     decimal.Decimal
	TaxFraction        decimal.Decimal
}

// Record is the single worksheet row.
type Record struct {
	Date            string  `csv:"data"`
	Client          string  `csv:"cliente"`
	Service         string  `csv:"servico"`
	Hours           int     `csv:"horas"`
	OperationalCost float64 `csv:"custo_operacional"`
	MarginPercent   float64 `csv:"margem_pct"`
	TaxPercent      float64 `csv:"imposto_pct"`
	FinalPrice      float64 `csv:"preco_final"`
	Profit          float64 `csv:"lucro"`
}

// ProposalRenderer turns a Proposal into document bytes.
type ProposalRenderer interface {
	RenderProposal(Proposal) ([]byte, error)
}

// WorkbookRenderer turns a Record into document bytes.
type WorkbookRenderer interface {
	RenderWorkbook(Record) ([]byte, error)
}

// NewProposal builds the proposal for an exportable evaluation.
func NewProposal(eval pricing.Evaluation, req pricing.CaseRequest, date string) (Proposal, error) {
	if !eval.Exportable {
		return Proposal{}, ErrNotExportable
	}
	return Proposal{
		ClientName:         req.ClientName,
		ServiceDescription: req.ServiceDescription,
		Date:               date,
		EstimatedHours:     req.EstimatedHours,
		HourlyRate:         eval.Pricing.PricePerHour,
		TotalPrice:         eval.Pricing.FinalPrice,
		MarginFraction:     req.MarginFraction,
		TaxFraction:        req.TaxFraction,
	}, nil
}

// NewRecord builds the worksheet row for an exportable evaluation. Money is rounded to cents.
func NewRecord(eval pricing.Evaluation, req pricing.CaseRequest, date string) (Record, error) {
	if !eval.Exportable {
		return Record{}, ErrNotExportable
	}
	return Record{
		Date:            date,
		Client:          req.ClientName,
		Service:         req.ServiceDescription,
		Hours:           req.EstimatedHours,
		OperationalCost: cents(eval.Pricing.OperationalCost),
		MarginPercent:   cents(format.PercentFromFraction(req.MarginFraction)),
		TaxPercent:      cents(format.PercentFromFraction(req.TaxFraction)),
		FinalPrice:      cents(eval.Pricing.FinalPrice),
		Profit:          cents(eval.Pricing.ProfitAmount),
	}, nil
}

func cents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// pdfSafe replaces every rune the PDF core fonts (Windows-1252) cannot draw with '?'.
func pdfSafe(s string) string {
	return strings.Map(func(r rune) rune {
		if _, ok := charmap.Windows1252.EncodeRune(r); ok {
			return r
		}
		return '?'
	}, s)
}

// sanitizeCell prevents formula injection by prefixing dangerous leading
// characters with a single quote.
func sanitizeCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}
