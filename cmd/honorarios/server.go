package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/honorarios/internal/config"
	"github.com/Simplici0/honorarios/internal/db"
	"github.com/Simplici0/honorarios/internal/defaults"
	"github.com/Simplici0/honorarios/internal/export"
	"github.com/Simplici0/honorarios/internal/logger"
	"github.com/Simplici0/honorarios/internal/migrations"
	"github.com/Simplici0/honorarios/internal/seed"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	cfg      config.Config
	log      *zap.Logger
	db       *sql.DB
	defaults *defaults.Store

	proposal  export.ProposalRenderer
	worksheet export.WorkbookRenderer
	csv       export.WorkbookRenderer

	now func() time.Time
}

func newServer(cfg config.Config, log *zap.Logger, database *sql.DB) *server {
	return &server{
		cfg:       cfg,
		log:       log,
		db:        database,
		defaults:  defaults.NewStore(database),
		proposal:  export.PDFRenderer{OfficeName: cfg.OfficeName},
		worksheet: export.XLSXRenderer{},
		csv:       export.CSVRenderer{},
		now:       time.Now,
	}
}

func (a *app) serve(ctx context.Context) error {
	database, err := db.Open(ctx, a.cfg.DBPath)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer database.Close()

	if err := migrations.Up(database, logger.GooseAdapter{Log: a.log.Sugar()}); err != nil {
		return errors.Wrap(err, "run database migrations")
	}

	stats, err := seed.Run(ctx, database)
	if err != nil {
		return errors.Wrap(err, "seed database")
	}
	a.log.Info("seed finished", zap.Int("inserts", stats.Inserts))

	srv := newServer(a.cfg, a.log, database)
	httpServer := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", a.cfg.Env))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "server stopped")
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown server")
	}
	return nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleHome)
	r.Post("/calculate", s.handleCalculate)
	r.Post("/export/proposal.pdf", s.handleExportProposal)
	r.Post("/export/worksheet.xlsx", s.handleExportWorksheet(s.worksheet, xlsxContentType, "calculo.xlsx"))
	r.Post("/export/worksheet.csv", s.handleExportWorksheet(s.csv, csvContentType, "calculo.csv"))
	r.Get("/defaults", s.handleDefaultsForm)
	r.Post("/defaults", s.handleDefaultsSubmit)
	r.Get("/healthz", s.handleHealthz)

	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
