package export

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/Simplici0/honorarios/internal/format"
)

// PDFRenderer draws a single-page proposal with maroto.
type PDFRenderer struct {
	OfficeName string
}

var (
	mutedGray = &props.Color{Red: 110, Green: 110, Blue: 110}
	lightGray = &props.Color{Red: 150, Green: 150, Blue: 150}
)

// RenderProposal implements ProposalRenderer.
func (r PDFRenderer) RenderProposal(p Proposal) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(20).
		WithTopMargin(20).
		WithRightMargin(20).
		Build()

	m := maroto.New(cfg)

	if r.OfficeName != "" {
		addLine(m, 8, r.OfficeName, props.Text{Size: 10, Align: align.Center, Color: mutedGray})
	}
	addLine(m, 14, "PROPOSTA DE HONORÁRIOS", props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center})
	m.AddRows(row.New(8))

	addLine(m, 9, "Cliente: "+p.ClientName, props.Text{Size: 12, Style: fontstyle.Bold})
	addLine(m, 9, "Serviço: "+p.ServiceDescription, props.Text{Size: 12})
	addLine(m, 9, "Data: "+p.Date, props.Text{Size: 12})
	m.AddRows(row.New(8))

	addLine(m, 9, "Escopo e investimento:", props.Text{Size: 12, Style: fontstyle.Bold})
	addLine(m, 9, fmt.Sprintf("Horas estimadas: %dh", p.EstimatedHours), props.Text{Size: 12})
	addLine(m, 9, "Valor base da hora técnica: "+format.BRL(p.HourlyRate), props.Text{Size: 12})
	m.AddRows(row.New(8))

	addLine(m, 12, "VALOR TOTAL DOS HONORÁRIOS: "+format.BRL(p.TotalPrice), props.Text{Size: 14, Style: fontstyle.Bold})
	m.AddRows(row.New(18))

	note := fmt.Sprintf("Nota interna: margem líquida %s | impostos %s",
		format.Percent(p.MarginFraction), format.Percent(p.TaxFraction))
	addLine(m, 6, note, props.Text{Size: 8, Style: fontstyle.Italic, Color: lightGray})

	doc, err := m.Generate()
	if err != nil {
		return nil, errors.Wrap(err, "generate proposal pdf")
	}
	return doc.GetBytes(), nil
}

func addLine(m core.Maroto, height float64, value string, style props.Text) {
	m.AddRows(
		row.New(height).Add(
			col.New(12).Add(text.New(pdfSafe(value), style)),
		),
	)
}
