package main

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap/zaptest"

	"github.com/Simplici0/honorarios/internal/config"
	"github.com/Simplici0/honorarios/internal/db"
	"github.com/Simplici0/honorarios/internal/migrations"
	"github.com/Simplici0/honorarios/internal/seed"
)

func newTestServer(t *testing.T) *server {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "server-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := migrations.Up(database, goose.NopLogger()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if _, err := seed.Run(ctx, database); err != nil {
		t.Fatalf("run seed: %v", err)
	}

	cfg := config.Config{
		OfficeName:     "Escritório Teste",
		MaxUploadBytes: 1 << 20,
		Location:       time.UTC,
	}
	srv := newServer(cfg, zaptest.NewLogger(t), database)
	srv.now = func() time.Time { return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC) }
	return srv
}

// caseForm prices 10 hours against R$ 3.200 of fixed cost over 240 billable hours.
func caseForm() url.Values {
	form := url.Values{}
	form.Set("cost_source", "manual")
	form.Set("rent", "3200")
	form.Set("software", "0")
	form.Set("accounting", "0")
	form.Set("payroll", "0")
	form.Set("partner_draw", "0")
	form.Set("miscellaneous", "0")
	form.Set("available_hours", "320")
	form.Set("efficiency_percent", "75")
	form.Set("extra_labor_cost", "0")
	form.Set("client_name", "Maria Souza")
	form.Set("service_description", "Inventário extrajudicial")
	form.Set("estimated_hours", "10")
	form.Set("extra_variable_cost", "0")
	form.Set("margin_percent", "40")
	form.Set("tax_percent", "10")
	return form
}

func postForm(t *testing.T, srv *server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)
	return rec
}

func postMultipart(t *testing.T, srv *server, path string, form url.Values, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for key, values := range form {
		for _, v := range values {
			if err := mw.WriteField(key, v); err != nil {
				t.Fatalf("write field %s: %v", key, err)
			}
		}
	}
	part, err := mw.CreateFormFile("costs_file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)
	return rec
}

func TestHandleHomePrefillsOfficeDefaults(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `value="2071.76"`) {
		t.Fatalf("expected saved rent in form, body=%s", body)
	}
	if !strings.Contains(body, "Escritório Teste") {
		t.Fatalf("expected office name in header")
	}
}

func TestHandleCalculateManualCosts(t *testing.T) {
	srv := newTestServer(t)

	rec := postForm(t, srv, "/calculate", caseForm())

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"R$ 3.200,00", "R$ 13,33", "R$ 133,33", "R$ 266,67", "R$ 26,67", "/export/proposal.pdf"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in result page", want)
		}
	}
}

func TestHandleCalculateInvalidMarkupHidesExports(t *testing.T) {
	srv := newTestServer(t)
	form := caseForm()
	form.Set("margin_percent", "60")
	form.Set("tax_percent", "50")

	rec := postForm(t, srv, "/calculate", form)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "ajuste os percentuais") {
		t.Fatalf("expected invalid markup message, body=%s", body)
	}
	if strings.Contains(body, "/export/proposal.pdf") {
		t.Fatalf("expected export buttons to be hidden")
	}
}

func TestHandleCalculateRejectsInvalidForm(t *testing.T) {
	srv := newTestServer(t)
	form := caseForm()
	form.Set("estimated_hours", "0")

	rec := postForm(t, srv, "/calculate", form)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "estimated_hours deve estar entre 1 e 1000") {
		t.Fatalf("expected validation message, body=%s", rec.Body.String())
	}
}

func TestHandleCalculateUploadedLedger(t *testing.T) {
	srv := newTestServer(t)
	form := caseForm()
	form.Set("cost_source", "upload")

	ledger := "Descrição;Valor\nAluguel;-100\nSoftware;-50\nEstorno;20\nTOTAL;-130\n"
	rec := postMultipart(t, srv, "/calculate", form, "extrato.csv", ledger)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "R$ 150,00") {
		t.Fatalf("expected ledger total R$ 150,00, body=%s", body)
	}
	if !strings.Contains(body, `name="uploaded_total" value="150"`) {
		t.Fatalf("expected uploaded total to be echoed in hidden field")
	}
	if !strings.Contains(body, "R$ 12,50") {
		t.Fatalf("expected final price R$ 12,50")
	}
}

func TestHandleCalculateUploadWithoutValueColumnFallsBackToZero(t *testing.T) {
	srv := newTestServer(t)
	form := caseForm()
	form.Set("cost_source", "upload")

	rec := postMultipart(t, srv, "/calculate", form, "lista.csv", "Descrição,Observação\nAluguel,mensal\n")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, msgNoValueColumn) {
		t.Fatalf("expected missing value column notice, body=%s", body)
	}
	if !strings.Contains(body, "Custo fixo mensal: R$ 0,00") {
		t.Fatalf("expected zero fixed cost")
	}
}

func TestHandleCalculateRejectedUploadDropsPreviousTotal(t *testing.T) {
	srv := newTestServer(t)
	form := caseForm()
	form.Set("cost_source", "upload")
	form.Set("uploaded_total", "4800")
	form.Set("uploaded_name", "custos.xlsx")

	rec := postMultipart(t, srv, "/calculate", form, "lista.csv", "Descrição,Observação\nAluguel,mensal\n")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Custo fixo mensal: R$ 0,00") {
		t.Fatalf("expected zero fixed cost, body=%s", body)
	}
	if !strings.Contains(body, `name="uploaded_total" value=""`) {
		t.Fatalf("expected previous uploaded total to be cleared, body=%s", body)
	}
	if !strings.Contains(body, `name="uploaded_name" value=""`) {
		t.Fatalf("expected previous uploaded name to be cleared")
	}
	if strings.Contains(body, "4800") {
		t.Fatalf("previous uploaded total leaked into the page")
	}
}

func TestHandleCalculateEmptyValueColumnNotice(t *testing.T) {
	srv := newTestServer(t)
	form := caseForm()
	form.Set("cost_source", "upload")

	// The blank "Total" column is picked before "Valor".
	rec := postMultipart(t, srv, "/calculate", form, "custos.csv", "Total,Valor,Descrição\n,100,Aluguel\n,200,Software\n")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Nenhum valor encontrado na coluna Total") {
		t.Fatalf("expected empty value column notice, body=%s", body)
	}
	if !strings.Contains(body, "Custo fixo mensal: R$ 0,00") {
		t.Fatalf("expected zero fixed cost")
	}
}

func TestHandleCalculateReusesEchoedUploadTotal(t *testing.T) {
	srv := newTestServer(t)
	form := caseForm()
	form.Set("cost_source", "upload")
	form.Set("uploaded_total", "4800")
	form.Set("uploaded_name", "custos.xlsx")

	rec := postForm(t, srv, "/calculate", form)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	// 4800 / 240 = 20 per hour, 200 operational, 400 final.
	if !strings.Contains(rec.Body.String(), "R$ 400,00") {
		t.Fatalf("expected final price from echoed total, body=%s", rec.Body.String())
	}
}

func TestHandleExportProposalPDF(t *testing.T) {
	srv := newTestServer(t)

	rec := postForm(t, srv, "/export/proposal.pdf", caseForm())

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != pdfContentType {
		t.Fatalf("unexpected content type %q", got)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "proposta.pdf") {
		t.Fatalf("expected proposta.pdf attachment")
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Fatalf("expected pdf body")
	}
}

func TestHandleExportWorksheets(t *testing.T) {
	srv := newTestServer(t)

	xlsx := postForm(t, srv, "/export/worksheet.xlsx", caseForm())
	if xlsx.Code != http.StatusOK {
		t.Fatalf("expected xlsx status 200, got %d", xlsx.Code)
	}
	if !bytes.HasPrefix(xlsx.Body.Bytes(), []byte("PK")) {
		t.Fatalf("expected zip container for xlsx")
	}

	csv := postForm(t, srv, "/export/worksheet.csv", caseForm())
	if csv.Code != http.StatusOK {
		t.Fatalf("expected csv status 200, got %d", csv.Code)
	}
	body := csv.Body.String()
	if !strings.HasPrefix(body, "data,cliente,servico,horas,custo_operacional,margem_pct,imposto_pct,preco_final,lucro") {
		t.Fatalf("unexpected csv header: %s", body)
	}
	if !strings.Contains(body, "14/03/2025,Maria Souza") {
		t.Fatalf("expected dated csv row: %s", body)
	}
}

func TestHandleExportRejectsInvalidMarkup(t *testing.T) {
	srv := newTestServer(t)
	form := caseForm()
	form.Set("margin_percent", "60")
	form.Set("tax_percent", "50")

	for _, path := range []string{"/export/proposal.pdf", "/export/worksheet.xlsx", "/export/worksheet.csv"} {
		rec := postForm(t, srv, path, form)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("%s: expected status 422, got %d", path, rec.Code)
		}
	}
}

func TestHandleDefaultsSubmitPersists(t *testing.T) {
	srv := newTestServer(t)
	form := caseForm()
	form.Set("rent", "5000")

	rec := postForm(t, srv, "/defaults", form)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), msgDefaultsSaved) {
		t.Fatalf("expected success message")
	}

	home := httptest.NewRecorder()
	srv.routes().ServeHTTP(home, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(home.Body.String(), `name="rent" value="5000"`) {
		t.Fatalf("expected saved rent on calculator form")
	}
}

func TestHandleDefaultsSubmitRejectsInvalidMarkup(t *testing.T) {
	srv := newTestServer(t)
	form := caseForm()
	form.Set("margin_percent", "90")
	form.Set("tax_percent", "10")

	rec := postForm(t, srv, "/defaults", form)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "MarginPercent plus TaxPercent") {
		t.Fatalf("expected validation message, body=%s", rec.Body.String())
	}
}

func TestHandleHealthz(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthz response: %d %q", rec.Code, rec.Body.String())
	}
}
