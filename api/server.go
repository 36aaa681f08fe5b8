// Package api provides HTTP API capabilities for the statement analysis
// engine. This is a capability module that can be enabled via the CLI or used
// programmatically.
package api

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/vikramsengal/dukandar-shop-tool/engine"
	"github.com/vikramsengal/dukandar-shop-tool/extract"
	"github.com/vikramsengal/dukandar-shop-tool/tax"
)

// Config holds the API server configuration
type Config struct {
	Port string
}

// DefaultConfig returns the default API configuration
func DefaultConfig() Config {
	return Config{
		Port: ":8080",
	}
}

// Server represents the HTTP API server
type Server struct {
	config Config
	mux    *http.ServeMux
}

// New creates a new API server with the given configuration
func New(cfg Config) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// registerRoutes sets up the API endpoints
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/analyze", s.handleAnalyze)
	s.mux.HandleFunc("/health", s.handleHealth)
}

// Handler returns the http.Handler for the server
// This allows the server to be used with custom http.Server configurations
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	log.Info().Str("addr", s.config.Port).Msg("starting API server")
	return http.ListenAndServe(s.config.Port, s.mux)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleAnalyze accepts a multipart statement upload, optionally with a sales
// ledger, runs the full analysis and returns the report as JSON.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	log.Debug().Str("remote", r.RemoteAddr).Msg("received analyze request")

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse multipart form with 32MB max memory
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Could not parse multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	// The engine works on file paths, so uploads land in a temp directory
	// that lives for the duration of the request.
	tmpDir, err := os.MkdirTemp("", "dukandar-api-*")
	if err != nil {
		http.Error(w, "Could not create working directory: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tmpDir)

	statementPath, err := s.saveUpload(r, "file", tmpDir)
	if err != nil {
		http.Error(w, "Could not read uploaded file: "+err.Error(), http.StatusBadRequest)
		return
	}

	salesPath := ""
	if _, _, serr := r.FormFile("sales"); serr == nil {
		salesPath, err = s.saveUpload(r, "sales", tmpDir)
		if err != nil {
			http.Error(w, "Could not read sales file: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	cfg, err := s.parseConfig(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := engine.Analyze(r.Context(), engine.Input{
		StatementPath: statementPath,
		SalesPath:     salesPath,
		Container:     extract.Container(r.FormValue("container")),
		Config:        cfg,
	})
	if err != nil {
		log.Warn().Err(err).Msg("analysis failed")
		http.Error(w, "Analysis failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// saveUpload copies a multipart form file into dir, keeping the original
// extension so container detection still works.
func (s *Server) saveUpload(r *http.Request, field, dir string) (string, error) {
	file, handler, err := r.FormFile(field)
	if err != nil {
		return "", err
	}
	defer file.Close()

	dst := filepath.Join(dir, field+filepath.Ext(handler.Filename))
	if err := writeFile(dst, file); err != nil {
		return "", err
	}
	return dst, nil
}

func writeFile(path string, src multipart.File) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, src)
	return err
}

// parseConfig builds the engine configuration from the loaded defaults plus
// any per-request form overrides.
func (s *Server) parseConfig(r *http.Request) (engine.Config, error) {
	cfg := engine.ConfigFromViper()

	if v := r.FormValue("gst_rate_pct"); v != "" {
		rate, err := decimal.NewFromString(v)
		if err != nil {
			return cfg, err
		}
		cfg.GSTRatePct = rate
	}
	if v := r.FormValue("basis"); v != "" {
		basis, err := tax.ParseBasis(v)
		if err != nil {
			return cfg, err
		}
		cfg.Basis = basis
	}
	if v := r.FormValue("interstate"); v != "" {
		cfg.Interstate = v == "true"
	}
	if v := r.FormValue("from"); v != "" {
		cfg.DateFrom = v
	}
	if v := r.FormValue("to"); v != "" {
		cfg.DateTo = v
	}
	return cfg, nil
}
