// Package api exposes the analysis pipeline over HTTP. It accepts EEG
// recordings as multipart uploads, runs them through the analyzer, and serves
// stored results back to clients.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"neurodetect/internal/service"
	"neurodetect/internal/signal"
	"neurodetect/internal/storage"
)

const defaultListLimit = 20

// Server handles the REST API for analysis uploads and result retrieval.
type Server struct {
	analyzer       *service.Analyzer
	store          *storage.Store
	server         *http.Server
	hub            *streamHub
	uploadDir      string
	maxUploadBytes int64
}

// Config carries the server's listen and upload settings.
type Config struct {
	Port           int
	UploadDir      string
	MaxUploadBytes int64
}

// NewServer builds the API server. store may be nil, which disables the
// retrieval endpoints' persistence-backed responses.
func NewServer(analyzer *service.Analyzer, store *storage.Store, cfg Config) *Server {
	s := &Server{
		analyzer:       analyzer,
		store:          store,
		hub:            newStreamHub(),
		uploadDir:      cfg.UploadDir,
		maxUploadBytes: cfg.MaxUploadBytes,
	}
	go s.hub.run()

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleRoot).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/api/analysis", s.handleAnalyze).Methods("POST")
	r.HandleFunc("/api/analysis/{id}", s.handleGetAnalysis).Methods("GET")
	r.HandleFunc("/api/analyses", s.handleListAnalyses).Methods("GET")
	r.HandleFunc("/ws/analyses", s.handleStream).Methods("GET")

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return s
}

// Handler returns the configured router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves HTTP until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("API server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully and disconnects stream clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.close()
	return s.server.Shutdown(ctx)
}

// analysisResponse is the upload response payload. The model result keys are
// part of the external contract.
type analysisResponse struct {
	Success       bool        `json:"success"`
	AnalysisID    string      `json:"analysis_id"`
	Filename      string      `json:"filename"`
	Models        modelsBlock `json:"models"`
	Ensemble      interface{} `json:"ensemble"`
	SignalQuality interface{} `json:"signal_quality"`
}

type modelsBlock struct {
	QDA    interface{} `json:"QDA"`
	TabNet interface{} `json:"TabNet"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to NeuroDetect API"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing file field: %w", err))
		return
	}
	defer file.Close()

	path, err := s.saveUpload(file, header.Filename)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to remove uploaded file")
		}
	}()

	record, err := s.analyzer.AnalyzeFile(r.Context(), path, header.Filename)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, signal.ErrEmptySignal) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}

	s.hub.notify(record)

	writeJSON(w, http.StatusOK, analysisResponse{
		Success:    true,
		AnalysisID: record.ID,
		Filename:   record.Filename,
		Models: modelsBlock{
			QDA:    record.QDA,
			TabNet: record.TabNet,
		},
		Ensemble:      record.Ensemble,
		SignalQuality: record.SignalQuality,
	})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, errors.New("persistence disabled"))
		return
	}

	id := mux.Vars(r)["id"]
	record, err := s.store.GetAnalysis(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, []storage.AnalysisRecord{})
		return
	}

	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	records, err := s.store.ListRecent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if records == nil {
		records = []storage.AnalysisRecord{}
	}

	writeJSON(w, http.StatusOK, records)
}

// saveUpload copies the upload into the upload directory under a unique name
// so concurrent uploads of the same filename cannot collide.
func (s *Server) saveUpload(file io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o750); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(s.uploadDir, uuid.NewString()+"_"+filepath.Base(filename))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	log.Warn().Err(err).Int("status", status).Msg("request failed")
	writeJSON(w, status, errorResponse{Success: false, Error: err.Error()})
}
