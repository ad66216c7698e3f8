package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/honorarios/internal/costs"
	"github.com/Simplici0/honorarios/internal/defaults"
	"github.com/Simplici0/honorarios/internal/export"
	"github.com/Simplici0/honorarios/internal/format"
	"github.com/Simplici0/honorarios/internal/pricing"
)

type quoteOutputs struct {
	costsFile string
	pdf       string
	xlsx      string
	csv       string
}

func newQuoteCmd(a *app) *cobra.Command {
	var out quoteOutputs

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Calcula um preço sem abrir a interface web",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuote(cmd, out)
		},
	}

	d := defaults.Builtin()
	f := cmd.Flags()
	f.StringVar(&out.costsFile, "costs-file", "", "planilha de custos (xlsx, xls ou csv); substitui os custos manuais")
	f.StringVar(&out.pdf, "pdf", "", "grava a proposta em PDF neste caminho")
	f.StringVar(&out.xlsx, "xlsx", "", "grava a memória de cálculo em XLSX neste caminho")
	f.StringVar(&out.csv, "csv", "", "grava a memória de cálculo em CSV neste caminho")

	// Flag names mirror the web form fields with '-' in place of '_'.
	f.String("rent", d.Costs.Rent.String(), "condomínio/aluguel")
	f.String("software", d.Costs.Software.String(), "softwares/sistemas")
	f.String("accounting", d.Costs.Accounting.String(), "contador/BPO")
	f.String("payroll", d.Costs.Payroll.String(), "salários da equipe")
	f.String("partner-draw", d.Costs.PartnerDraw.String(), "pró-labore dos sócios")
	f.String("miscellaneous", d.Costs.Miscellaneous.String(), "despesas gerais")
	f.String("available-hours", d.AvailableHours.String(), "horas totais do escritório no mês")
	f.String("efficiency-percent", d.EfficiencyPercent.String(), "eficiência produtiva (50 a 100)")
	f.String("extra-labor-cost", d.ExtraLaborCost.String(), "custo de mão de obra extra")
	f.String("client-name", "", "cliente")
	f.String("service-description", "", "serviço")
	f.String("estimated-hours", strconv.Itoa(d.EstimatedHours), "horas estimadas (1 a 1000)")
	f.String("extra-variable-cost", "0", "custos extras do caso")
	f.String("margin-percent", d.MarginPercent.String(), "margem de lucro (%)")
	f.String("tax-percent", d.TaxPercent.String(), "imposto (%)")

	return cmd
}

func (a *app) runQuote(cmd *cobra.Command, out quoteOutputs) error {
	in, err := parseQuoteValues(func(field string) string {
		flag := cmd.Flags().Lookup(strings.ReplaceAll(field, "_", "-"))
		if flag == nil {
			return ""
		}
		return flag.Value.String()
	})
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	fixedCost := in.Manual.Total()
	if out.costsFile != "" {
		fixedCost = a.uploadedCost(cmd.ErrOrStderr(), out.costsFile)
	}

	eval, err := pricing.Evaluate(fixedCost, in.Profile, in.Case)
	if err != nil && !errors.Is(err, pricing.ErrInvalidMarkup) {
		return err
	}
	printBreakdown(stdout, eval)
	if err != nil {
		return errors.WithHint(err, "reduza margem ou imposto para que a soma fique abaixo de 100%")
	}

	date := format.Date(time.Now(), a.cfg.Location)
	if out.pdf != "" {
		proposal, err := export.NewProposal(eval, in.Case, date)
		if err != nil {
			return err
		}
		doc, err := export.PDFRenderer{OfficeName: a.cfg.OfficeName}.RenderProposal(proposal)
		if err != nil {
			return err
		}
		if err := writeOutput(stdout, out.pdf, doc); err != nil {
			return err
		}
	}

	workbooks := []struct {
		path     string
		renderer export.WorkbookRenderer
	}{
		{out.xlsx, export.XLSXRenderer{}},
		{out.csv, export.CSVRenderer{}},
	}
	for _, wb := range workbooks {
		if wb.path == "" {
			continue
		}
		record, err := export.NewRecord(eval, in.Case, date)
		if err != nil {
			return err
		}
		doc, err := wb.renderer.RenderWorkbook(record)
		if err != nil {
			return err
		}
		if err := writeOutput(stdout, wb.path, doc); err != nil {
			return err
		}
	}

	return nil
}

// uploadedCost reads the cost spreadsheet. A bad file is reported and counts as zero cost.
func (a *app) uploadedCost(stderr io.Writer, path string) decimal.Decimal {
	file, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(stderr, "aviso: %v; custo fixo considerado R$ 0,00\n", err)
		return decimal.Zero
	}
	defer file.Close()

	summary, err := costs.FromUpload(file, path, a.cfg.MaxUploadBytes)
	if err != nil {
		a.log.Warn("cost file rejected", zap.String("file", path), zap.Error(err))
		fmt.Fprintf(stderr, "aviso: %s; custo fixo considerado R$ 0,00\n", uploadErrorMessage(err))
		return decimal.Zero
	}
	if msg := emptyColumnNotice(summary); msg != "" {
		fmt.Fprintf(stderr, "aviso: %s\n", msg)
	}
	if summary.IgnoredCredits.Count > 0 {
		fmt.Fprintf(stderr, "aviso: %d crédito(s) ignorado(s) (%s)\n",
			summary.IgnoredCredits.Count, format.BRL(summary.IgnoredCredits.Sum))
	}
	return summary.Total
}

func printBreakdown(w io.Writer, eval pricing.Evaluation) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Custo fixo mensal:\t%s\n", format.BRL(eval.FixedCost))
	fmt.Fprintf(tw, "Horas faturáveis:\t%s\n", format.Number(eval.Rate.BillableHours))
	fmt.Fprintf(tw, "Custo hora (break-even):\t%s\n", format.BRL(eval.Rate.HourlyRate))
	fmt.Fprintf(tw, "Custo operacional:\t%s\n", format.BRL(eval.Pricing.OperationalCost))
	fmt.Fprintf(tw, "Preço sugerido:\t%s\n", format.BRL(eval.Pricing.FinalPrice))
	fmt.Fprintf(tw, "Imposto:\t%s\n", format.BRL(eval.Pricing.TaxAmount))
	fmt.Fprintf(tw, "Lucro:\t%s\n", format.BRL(eval.Pricing.ProfitAmount))
	fmt.Fprintf(tw, "Preço/hora:\t%s\n", format.BRL(eval.Pricing.PricePerHour))
	_ = tw.Flush()
}

func writeOutput(stdout io.Writer, path string, doc []byte) error {
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	fmt.Fprintf(stdout, "gravado: %s\n", path)
	return nil
}
