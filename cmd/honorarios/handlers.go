package main

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/honorarios/internal/costs"
	"github.com/Simplici0/honorarios/internal/export"
	"github.com/Simplici0/honorarios/internal/format"
	"github.com/Simplici0/honorarios/internal/pricing"
	"github.com/Simplici0/honorarios/web"
)

const (
	pdfContentType  = "application/pdf"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvContentType  = "text/csv; charset=utf-8"

	// multipartMemory bounds the in-memory part of a parsed upload; the rest spills to disk.
	multipartMemory = 8 << 20
	// formOverhead leaves room for the non-file fields next to the largest allowed upload.
	formOverhead = 1 << 20

	maxPreviewItems = 100

	msgInvalidMarkup     = "Margem + impostos atingem 100%: ajuste os percentuais para obter um preço."
	msgZeroCapacity      = "Horas faturáveis zeradas: o custo hora foi considerado R$ 0,00."
	msgNotExportable     = "Nada a exportar: o cálculo atual não tem preço válido."
	msgNoValueColumn     = "Não encontrei coluna de valor."
	msgNoUploadedAmounts = "Nenhum valor encontrado na coluna %s: custo fixo considerado R$ 0,00."
	msgDefaultsSaved     = "Padrões do escritório salvos."
	msgDefaultsFailure   = "Falha ao salvar os padrões do escritório."
)

type baseViewData struct {
	OfficeName     string
	ErrorMessage   string
	SuccessMessage string
}

type homeViewData struct {
	baseViewData
	Form    url.Values
	Upload  *uploadView
	Result  *resultView
	Notices []string
}

type defaultsViewData struct {
	baseViewData
	Form url.Values
}

type uploadView struct {
	FileName string
	Summary  costs.Summary
	Preview  []costs.LineItem
}

type barView struct {
	Label  string
	Amount decimal.Decimal
	Width  int64
}

type resultView struct {
	FixedCost       decimal.Decimal
	BillableHours   decimal.Decimal
	HourlyRate      decimal.Decimal
	OperationalCost decimal.Decimal
	FinalPrice      decimal.Decimal
	TaxAmount       decimal.Decimal
	ProfitAmount    decimal.Decimal
	PricePerHour    decimal.Decimal
	Exportable      bool
	Bars            []barView
}

// calculation is one stateless pass over a submitted form.
type calculation struct {
	Input       quoteInput
	Upload      *uploadView
	UploadError string
	Eval        pricing.Evaluation
	EvalErr     error
}

var templateFuncs = template.FuncMap{
	"brl": format.BRL,
	"pct": format.Percent,
	"num": format.Number,
	"modeLabel": func(m costs.Mode) string {
		if m == costs.LedgerMode {
			return "Despesas (valores negativos)"
		}
		return "Soma da lista"
	},
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	d, err := s.defaults.Get(r.Context())
	if err != nil {
		s.log.Error("load office defaults", zap.Error(err))
		http.Error(w, "failed to load office defaults", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, http.StatusOK, "home.html", homeViewData{
		baseViewData: s.base(),
		Form:         defaultsFormValues(d),
	})
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if !s.parseUploadForm(w, r) {
		return
	}

	calc, err := s.calculate(r)
	if err != nil {
		view := homeViewData{baseViewData: s.base(), Form: r.Form}
		view.ErrorMessage = err.Error()
		s.renderTemplate(w, http.StatusBadRequest, "home.html", view)
		return
	}

	form := r.Form
	switch {
	case calc.Upload != nil:
		form.Set("uploaded_total", calc.Upload.Summary.Total.String())
		form.Set("uploaded_name", calc.Upload.FileName)
	case calc.UploadError != "":
		// A rejected file replaces the previous one; its total must not come back.
		form.Del("uploaded_total")
		form.Del("uploaded_name")
	}

	view := homeViewData{
		baseViewData: s.base(),
		Form:         form,
		Upload:       calc.Upload,
		Result:       newResultView(calc.Eval),
	}
	if calc.UploadError != "" {
		view.Notices = append(view.Notices, calc.UploadError)
	}
	if calc.Upload != nil {
		if msg := emptyColumnNotice(calc.Upload.Summary); msg != "" {
			view.Notices = append(view.Notices, msg)
		}
	}
	if calc.Eval.Rate.ZeroCapacity {
		view.Notices = append(view.Notices, msgZeroCapacity)
	}
	if errors.Is(calc.EvalErr, pricing.ErrInvalidMarkup) {
		view.ErrorMessage = msgInvalidMarkup
	}

	s.renderTemplate(w, http.StatusOK, "home.html", view)
}

func (s *server) handleExportProposal(w http.ResponseWriter, r *http.Request) {
	calc, ok := s.exportableCalculation(w, r)
	if !ok {
		return
	}

	proposal, err := export.NewProposal(calc.Eval, calc.Input.Case, format.Date(s.now(), s.cfg.Location))
	if err != nil {
		http.Error(w, msgNotExportable, http.StatusUnprocessableEntity)
		return
	}
	doc, err := s.proposal.RenderProposal(proposal)
	if err != nil {
		s.log.Error("render proposal", zap.Error(err))
		http.Error(w, "failed to render proposal", http.StatusInternalServerError)
		return
	}

	writeAttachment(w, pdfContentType, "proposta.pdf", doc)
}

func (s *server) handleExportWorksheet(renderer export.WorkbookRenderer, contentType, filename string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calc, ok := s.exportableCalculation(w, r)
		if !ok {
			return
		}

		record, err := export.NewRecord(calc.Eval, calc.Input.Case, format.Date(s.now(), s.cfg.Location))
		if err != nil {
			http.Error(w, msgNotExportable, http.StatusUnprocessableEntity)
			return
		}
		doc, err := renderer.RenderWorkbook(record)
		if err != nil {
			s.log.Error("render worksheet", zap.String("file", filename), zap.Error(err))
			http.Error(w, "failed to render worksheet", http.StatusInternalServerError)
			return
		}

		writeAttachment(w, contentType, filename, doc)
	}
}

func (s *server) handleDefaultsForm(w http.ResponseWriter, r *http.Request) {
	d, err := s.defaults.Get(r.Context())
	if err != nil {
		s.log.Error("load office defaults", zap.Error(err))
		http.Error(w, "failed to load office defaults", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, http.StatusOK, "defaults.html", defaultsViewData{
		baseViewData: s.base(),
		Form:         defaultsFormValues(d),
	})
}

func (s *server) handleDefaultsSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	view := defaultsViewData{baseViewData: s.base(), Form: r.Form}

	in, err := parseQuoteValues(r.FormValue)
	if err != nil {
		view.ErrorMessage = err.Error()
		s.renderTemplate(w, http.StatusBadRequest, "defaults.html", view)
		return
	}

	if err := s.defaults.Update(r.Context(), in.officeDefaults()); err != nil {
		if errors.Is(err, pricing.ErrInvalidInput) {
			view.ErrorMessage = err.Error()
			s.renderTemplate(w, http.StatusBadRequest, "defaults.html", view)
			return
		}
		s.log.Error("save office defaults", zap.Error(err))
		view.ErrorMessage = msgDefaultsFailure
		s.renderTemplate(w, http.StatusInternalServerError, "defaults.html", view)
		return
	}

	s.log.Info("office defaults saved")
	view.SuccessMessage = msgDefaultsSaved
	s.renderTemplate(w, http.StatusOK, "defaults.html", view)
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// parseUploadForm accepts both multipart and urlencoded bodies and writes the error response itself.
func (s *server) parseUploadForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+formOverhead)
	err := r.ParseMultipartForm(multipartMemory)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		http.Error(w, "arquivo acima do limite permitido", http.StatusRequestEntityTooLarge)
		return false
	}
	http.Error(w, "invalid form", http.StatusBadRequest)
	return false
}

// calculate runs the pipeline for the submitted form. Only malformed input is an
// error; upload problems and invalid markup are reported inside the calculation.
func (s *server) calculate(r *http.Request) (calculation, error) {
	in, err := parseQuoteValues(r.FormValue)
	if err != nil {
		return calculation{}, err
	}

	calc := calculation{Input: in}
	fixedCost := s.fixedCost(r, &calc)

	calc.Eval, calc.EvalErr = pricing.Evaluate(fixedCost, in.Profile, in.Case)
	if errors.Is(calc.EvalErr, pricing.ErrInvalidInput) {
		return calculation{}, calc.EvalErr
	}
	return calc, nil
}

func (s *server) fixedCost(r *http.Request, calc *calculation) decimal.Decimal {
	if calc.Input.CostSource == costSourceManual {
		return calc.Input.Manual.Total()
	}

	file, header, err := r.FormFile("costs_file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		if calc.Input.UploadedName == "" {
			return decimal.Zero
		}
		calc.Upload = &uploadView{
			FileName: calc.Input.UploadedName,
			Summary:  costs.Summary{Total: calc.Input.UploadedTotal},
		}
		return calc.Input.UploadedTotal
	}
	if err != nil {
		calc.UploadError = "Erro: " + err.Error()
		return decimal.Zero
	}
	defer file.Close()

	summary, err := costs.FromUpload(file, header.Filename, s.cfg.MaxUploadBytes)
	if err != nil {
		s.log.Warn("cost upload rejected", zap.String("file", header.Filename), zap.Error(err))
		calc.UploadError = uploadErrorMessage(err)
		return decimal.Zero
	}

	s.log.Info("cost upload normalized",
		zap.String("file", header.Filename),
		zap.String("mode", string(summary.Mode)),
		zap.String("value_column", summary.ValueColumn),
		zap.Int("items", len(summary.Items)),
		zap.Int("excluded_rows", summary.ExcludedRows),
	)
	calc.Upload = &uploadView{
		FileName: header.Filename,
		Summary:  summary,
		Preview:  lo.Subset(summary.Items, 0, maxPreviewItems),
	}
	return summary.Total
}

func (s *server) exportableCalculation(w http.ResponseWriter, r *http.Request) (calculation, bool) {
	if !s.parseUploadForm(w, r) {
		return calculation{}, false
	}

	calc, err := s.calculate(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return calculation{}, false
	}
	if !calc.Eval.Exportable {
		http.Error(w, msgNotExportable, http.StatusUnprocessableEntity)
		return calculation{}, false
	}
	return calc, true
}

func uploadErrorMessage(err error) string {
	if errors.Is(err, costs.ErrNoValueColumn) {
		return msgNoValueColumn
	}
	msg := "Erro: " + err.Error()
	if hint := errors.FlattenHints(err); hint != "" {
		msg += " (" + hint + ")"
	}
	return msg
}

// emptyColumnNotice flags a freshly read file whose value column held no amounts.
// Echoed totals carry no mode and are skipped.
func emptyColumnNotice(s costs.Summary) string {
	if s.Mode == "" || len(s.Items) > 0 {
		return ""
	}
	return fmt.Sprintf(msgNoUploadedAmounts, s.ValueColumn)
}

func newResultView(eval pricing.Evaluation) *resultView {
	p := eval.Pricing
	view := &resultView{
		FixedCost:       eval.FixedCost,
		BillableHours:   eval.Rate.BillableHours,
		HourlyRate:      eval.Rate.HourlyRate,
		OperationalCost: p.OperationalCost,
		FinalPrice:      p.FinalPrice,
		TaxAmount:       p.TaxAmount,
		ProfitAmount:    p.ProfitAmount,
		PricePerHour:    p.PricePerHour,
		Exportable:      eval.Exportable,
	}

	bars := []barView{
		{Label: "Custo", Amount: p.OperationalCost},
		{Label: "Imposto", Amount: p.TaxAmount},
		{Label: "Lucro", Amount: p.ProfitAmount},
	}
	peak := lo.MaxBy(bars, func(a, b barView) bool { return a.Amount.GreaterThan(b.Amount) }).Amount
	if peak.IsPositive() {
		for i := range bars {
			bars[i].Width = bars[i].Amount.Div(peak).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
		}
	}
	view.Bars = bars
	return view
}

func (s *server) base() baseViewData {
	return baseViewData{OfficeName: s.cfg.OfficeName}
}

func (s *server) renderTemplate(w http.ResponseWriter, status int, page string, data any) {
	templates, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(
		web.Templates,
		"templates/layout.html",
		"templates/"+page,
	)
	if err != nil {
		s.log.Error("parse template", zap.String("page", page), zap.Error(err))
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		s.log.Error("render template", zap.String("page", page), zap.Error(err))
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, doc []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(doc)
}
