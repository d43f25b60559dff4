// Package server is the HTTP backend that stores submitted vehicle reports
// and serves them back by date.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"vehicle_log/internal/config"
	"vehicle_log/internal/export"
	"vehicle_log/internal/report"
)

// writeWorkbook renders the export; replaced in tests.
var writeWorkbook = export.Write

// Store is the persistence the server needs.
type Store interface {
	CreateMany(ctx context.Context, records []report.Record) error
	Save(ctx context.Context, rec report.Record) error
	All(ctx context.Context) ([]report.Record, error)
	ByDate(ctx context.Context, date string) ([]report.Record, error)
}

// Server represents the HTTP server
type Server struct {
	config *config.Config
	store  Store
	logger *zap.Logger
	mux    *http.ServeMux
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, store Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		config: cfg,
		store:  store,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("POST /save_reports", s.handleSaveReports)
	s.mux.HandleFunc("POST /save_reports_row", s.handleSaveRow)

	s.mux.HandleFunc("GET /view_logs", s.handleViewLogs)
	s.mux.HandleFunc("GET /view_by_date/{date}", s.handleViewByDate)
	s.mux.HandleFunc("GET /export/{date}", s.handleExport)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Server.Addr(),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleSaveReports(w http.ResponseWriter, r *http.Request) {
	var records []report.Record
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			writeStatus(w, http.StatusBadRequest, "No data received")
			return
		}
		writeStatus(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(records) == 0 {
		writeStatus(w, http.StatusBadRequest, "No data received")
		return
	}

	for _, rec := range records {
		if strings.TrimSpace(rec.City) == "" {
			writeStatus(w, http.StatusBadRequest, "city is required")
			return
		}
	}

	s.logger.Debug("Received reports", zap.Int("records", len(records)))

	if err := s.store.CreateMany(r.Context(), records); err != nil {
		s.storeError(w, "save_reports", err)
		return
	}

	s.logger.Info("Saved reports", zap.Int("records", len(records)))
	writeStatus(w, http.StatusOK, "success")
}

func (s *Server) handleSaveRow(w http.ResponseWriter, r *http.Request) {
	var rec *report.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil && !errors.Is(err, io.EOF) {
		writeStatus(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if rec == nil {
		writeStatus(w, http.StatusBadRequest, "No data received")
		return
	}
	if strings.TrimSpace(rec.City) == "" {
		writeStatus(w, http.StatusBadRequest, "city is required")
		return
	}

	if err := s.store.Save(r.Context(), *rec); err != nil {
		s.storeError(w, "save_reports_row", err)
		return
	}

	s.logger.Debug("Saved row", zap.String("row_id", rec.RowID), zap.String("city", rec.City))
	writeStatus(w, http.StatusOK, "Row saved")
}

func (s *Server) handleViewLogs(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.All(r.Context())
	if err != nil {
		s.storeError(w, "view_logs", err)
		return
	}
	s.renderRecords(w, r, records, "")
}

func (s *Server) handleViewByDate(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	records, err := s.store.ByDate(r.Context(), date)
	if err != nil {
		s.storeError(w, "view_by_date", err)
		return
	}
	s.renderRecords(w, r, records, date)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	records, err := s.store.ByDate(r.Context(), date)
	if err != nil {
		s.storeError(w, "export", err)
		return
	}
	if len(records) == 0 {
		writeStatus(w, http.StatusNotFound, "No records for "+date)
		return
	}

	groups := report.GroupByCity(records)
	var buf bytes.Buffer
	if err := writeWorkbook(&buf, groups); err != nil {
		s.logger.Error("Export failed", zap.String("date", date), zap.Error(err))
		writeStatus(w, http.StatusInternalServerError, "Export failed")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(groups)+`"`)
	w.Write(buf.Bytes())
}

func (s *Server) renderRecords(w http.ResponseWriter, r *http.Request, records []report.Record, filterDate string) {
	if wantsJSON(r) {
		if records == nil {
			records = []report.Record{}
		}
		writeJSON(w, http.StatusOK, records)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(renderLogsPage(records, filterDate)))
}

func (s *Server) storeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, report.ErrInvalidSerial) {
		writeStatus(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error("Storage failure", zap.String("op", op), zap.Error(err))
	writeStatus(w, http.StatusInternalServerError, "Internal server error")
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	writeJSON(w, code, map[string]string{"status": status})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
