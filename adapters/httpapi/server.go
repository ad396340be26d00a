// Package httpapi exposes inference runs over HTTP: a JSON API for
// submitting runs and reading back the artifacts a run produced, plus an
// HTML rendering of the stored run report.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"goinfer/app"
	"goinfer/domain/core"
	"goinfer/internal/apperr"
	"goinfer/internal/report"
)

// Server hosts the inference API
type Server struct {
	router  *chi.Mux
	service *app.InferenceService
}

// NewServer creates the API server around an inference service
func NewServer(service *app.InferenceService) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Post("/api/runs", s.handleCreateRun)
	s.router.Get("/api/runs/{id}", s.handleGetRun)
	s.router.Get("/api/runs/{id}/artifacts", s.handleGetArtifacts)
	s.router.Get("/api/runs/{id}/report", s.handleGetReport)
}

// Router returns the configured handler, for tests and embedding
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server on the given port
func (s *Server) Start(port string) error {
	addr := ":" + port
	log.Printf("[API] Starting inference API server on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateRun executes one inference run from a JSON request
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apperr.InvalidInput("request body is not valid JSON"))
		return
	}

	inferenceReq, err := req.toInferenceRequest()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := s.service.Run(r.Context(), inferenceReq)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newRunResponse(result))
}

// handleGetRun returns the manifest that opened a run
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := core.RunID(chi.URLParam(r, "id"))

	manifest, err := s.service.GetManifest(r.Context(), runID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, manifest)
}

// handleGetArtifacts returns every artifact a run produced, in append order
func (s *Server) handleGetArtifacts(w http.ResponseWriter, r *http.Request) {
	runID := core.RunID(chi.URLParam(r, "id"))

	artifacts, err := s.service.GetArtifacts(r.Context(), runID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, artifactsResponse{
		RunID:     runID,
		Artifacts: artifacts,
		Count:     len(artifacts),
	})
}

// handleGetReport renders the stored run report as HTML
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	runID := core.RunID(chi.URLParam(r, "id"))

	md, err := s.service.GetReport(r.Context(), runID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(report.RenderHTML(md)); err != nil {
		log.Printf("[API] Failed to write report for run %s: %v", runID, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

// writeDomainError maps the engine's error taxonomy onto HTTP statuses:
// bad input and missing metadata are the caller's fault, unsupported
// statistics are a declared capability gap, unknown runs are 404.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case core.IsNotFoundError(err):
		writeError(w, http.StatusNotFound, apperr.WithCode(apperr.CodeNotFound, err))
	case core.IsUnsupportedError(err):
		writeError(w, http.StatusUnprocessableEntity, apperr.WithCode(apperr.CodeUnsupported, err))
	case core.IsInputError(err), core.IsMissingMetadataError(err):
		writeError(w, http.StatusBadRequest, apperr.WithCode(apperr.CodeInvalidInput, err))
	default:
		log.Printf("[API] Run failed: %v", err)
		writeError(w, http.StatusInternalServerError, apperr.InternalError("inference run failed"))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{
		Error: err.Error(),
		Code:  apperr.GetCode(err),
	})
}
