// Package ui exposes the analysis service over a JSON HTTP API.
package ui

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"gobest/app"
	"gobest/domain/core"
	"gobest/internal"
	apperrors "gobest/internal/errors"
)

// Server routes analysis requests to the service and keeps completed
// analyses addressable by id. Runs are kept in memory; a repository, when
// configured, additionally persists them.
type Server struct {
	router   *chi.Mux
	service  *app.Service
	repo     app.ResultsRepository // optional
	logger   *internal.Logger
	defaults app.Options

	mu       sync.RWMutex
	analyses map[uuid.UUID]*app.Results
}

// NewServer creates the HTTP server. repo may be nil to disable
// persistence.
func NewServer(service *app.Service, repo app.ResultsRepository, defaults app.Options, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:   chi.NewRouter(),
		service:  service,
		repo:     repo,
		logger:   logger,
		defaults: defaults,
		analyses: make(map[uuid.UUID]*app.Results),
	}
	s.routes()
	return s
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)

	s.router.Route("/analyses", func(r chi.Router) {
		r.Post("/one", s.handleAnalyzeOne)
		r.Post("/two", s.handleAnalyzeTwo)
		r.Post("/upload", s.handleUpload)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetAnalysis)
			r.Get("/hdi", s.handleHDI)
			r.Get("/prob", s.handleProb)
			r.Get("/mode", s.handleMode)
			r.Get("/report", s.handleReport)
		})
	})
}

// store registers a completed analysis in memory and, when configured, in
// the repository. Persistence failures are logged, not fatal: the run
// already cost minutes of sampling.
func (s *Server) store(r *http.Request, res *app.Results) {
	s.mu.Lock()
	s.analyses[res.ID()] = res
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.Save(r.Context(), res); err != nil {
			s.logger.Error("persisting analysis %s: %v", res.ID(), err)
		}
	}
}

// lookup finds an analysis by id, falling back to the repository for runs
// from earlier processes.
func (s *Server) lookup(r *http.Request, id uuid.UUID) (*app.Results, bool) {
	s.mu.RLock()
	res, ok := s.analyses[id]
	s.mu.RUnlock()
	if ok {
		return res, true
	}
	if s.repo == nil {
		return nil, false
	}
	res, err := s.repo.Get(r.Context(), id)
	if err != nil {
		return nil, false
	}
	s.mu.Lock()
	s.analyses[id] = res
	s.mu.Unlock()
	return res, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encoding response: %v", err)
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var status int
	var appErr *apperrors.AppError
	switch {
	case core.IsValidationError(err):
		status = http.StatusBadRequest
		appErr = apperrors.ValidationError(err.Error())
	case core.IsNotFoundError(err):
		status = http.StatusNotFound
		appErr = apperrors.New(apperrors.CodeNotFound, err.Error())
	default:
		status = http.StatusInternalServerError
		appErr = apperrors.New(apperrors.CodeInternalError, err.Error())
	}
	s.writeJSON(w, status, errorResponse{Code: appErr.Code, Message: appErr.Message})
}

func (s *Server) writeInvalidInput(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusBadRequest, errorResponse{
		Code:    apperrors.CodeInvalidInput,
		Message: message,
	})
}
