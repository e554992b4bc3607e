// Package server exposes the scan orchestrator over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/websectester/websectester/internal/metrics"
	"github.com/websectester/websectester/internal/reportgen"
	"github.com/websectester/websectester/internal/scanner"
)

// ScanService is the orchestrator surface the API needs.
type ScanService interface {
	Submit(targetURL string, scanTypes []string, useBurp, useBrowser bool) (string, error)
	Status(scanID string) (scanner.Record, error)
	History() []scanner.Record
}

// ReportService renders a scan into a report file.
type ReportService interface {
	Generate(scanID, format string) (string, error)
}

type Server struct {
	log     hclog.Logger
	scans   ScanService
	reports ReportService
}

func New(log hclog.Logger, scans ScanService, reports ReportService) *Server {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Server{log: log, scans: scans, reports: reports}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/scan", s.handleStartScan)
	mux.HandleFunc("GET /api/scan/status/{id}", s.handleScanStatus)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/report/{id}", s.handleReport)
	mux.Handle("GET /metrics", metrics.Handler())
	return s.logRequests(mux)
}

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("api server listening", "addr", addr)
	return srv.ListenAndServe()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

type scanRequest struct {
	URL       string   `json:"url"`
	ScanTypes []string `json:"scan_types"`
	UseBurp   bool     `json:"use_burp"`

	// UseSelenium keeps the historical wire name for the browser toggle.
	// Absent means enabled.
	UseSelenium *bool `json:"use_selenium"`
}

func (s *Server) handleStartScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "Target URL is required")
		return
	}

	scanTypes := req.ScanTypes
	if len(scanTypes) == 0 {
		scanTypes = []string{scanner.ModuleAll}
	}
	useBrowser := req.UseSelenium == nil || *req.UseSelenium

	scanID, err := s.scans.Submit(req.URL, scanTypes, req.UseBurp, useBrowser)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"scan_id": scanID,
		"status":  "started",
		"message": "Scan initiated successfully",
	})
}

func (s *Server) handleScanStatus(w http.ResponseWriter, r *http.Request) {
	rec, err := s.scans.Status(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, scanner.ErrScanNotFound) {
			writeError(w, http.StatusNotFound, "Scan not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	records := s.scans.History()
	if records == nil {
		records = []scanner.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "pdf"
	}

	path, err := s.reports.Generate(r.PathValue("id"), format)
	if err != nil {
		switch {
		case errors.Is(err, reportgen.ErrReportNotFound):
			writeError(w, http.StatusNotFound, "Scan not found")
		case errors.Is(err, reportgen.ErrUnsupportedFormat):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.log.Error("report generation failed", "scan_id", r.PathValue("id"), "error", err)
			writeError(w, http.StatusInternalServerError, "report generation failed")
		}
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
