package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gobest/adapters/excel"
	"gobest/app"
	"gobest/domain/posterior"
)

type analyzeOneRequest struct {
	Data   []float64 `json:"data"`
	RefVal float64   `json:"ref_val"`
	Draws  int       `json:"draws"`
}

type analyzeTwoRequest struct {
	Group1 []float64 `json:"group1"`
	Group2 []float64 `json:"group2"`
	Draws  int       `json:"draws"`
}

type analysisResponse struct {
	ID            uuid.UUID                              `json:"id"`
	Kind          string                                 `json:"kind"`
	Version       string                                 `json:"version"`
	DiagnosticsOK bool                                   `json:"diagnostics_ok"`
	CreatedAt     string                                 `json:"created_at"`
	Summary       map[string]posterior.VariableSummary   `json:"summary"`
}

func (s *Server) analysisResponse(res *app.Results, credibleMass float64) (analysisResponse, error) {
	summary, err := res.Summary(credibleMass)
	if err != nil {
		return analysisResponse{}, err
	}
	return analysisResponse{
		ID:            res.ID(),
		Kind:          res.Model().Kind().String(),
		Version:       res.Model().Version(),
		DiagnosticsOK: res.DiagnosticsOK(),
		CreatedAt:     res.CreatedAt().Format("2006-01-02T15:04:05Z"),
		Summary:       summary,
	}, nil
}

func (s *Server) handleAnalyzeOne(w http.ResponseWriter, r *http.Request) {
	var req analyzeOneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeInvalidInput(w, "invalid JSON body")
		return
	}
	opts := s.defaults
	opts.Draws = req.Draws

	res, err := s.service.AnalyzeOne(r.Context(), req.Data, req.RefVal, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.store(r, res)
	s.respondWithAnalysis(w, res)
}

func (s *Server) handleAnalyzeTwo(w http.ResponseWriter, r *http.Request) {
	var req analyzeTwoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeInvalidInput(w, "invalid JSON body")
		return
	}
	opts := s.defaults
	opts.Draws = req.Draws

	res, err := s.service.AnalyzeTwo(r.Context(), req.Group1, req.Group2, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.store(r, res)
	s.respondWithAnalysis(w, res)
}

// handleUpload runs an analysis on columns of an uploaded spreadsheet.
// Form fields: file, group1 (column name), optional group2, ref_val, draws.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.writeInvalidInput(w, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeInvalidInput(w, "missing file field")
		return
	}
	defer file.Close()

	group1Col := r.FormValue("group1")
	if group1Col == "" {
		s.writeInvalidInput(w, "missing group1 column name")
		return
	}
	group2Col := r.FormValue("group2")

	refVal := 0.0
	if v := r.FormValue("ref_val"); v != "" {
		refVal, err = strconv.ParseFloat(v, 64)
		if err != nil {
			s.writeInvalidInput(w, "invalid ref_val")
			return
		}
	}
	draws := 0
	if v := r.FormValue("draws"); v != "" {
		draws, err = strconv.Atoi(v)
		if err != nil {
			s.writeInvalidInput(w, "invalid draws")
			return
		}
	}

	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		s.writeError(w, err)
		return
	}
	tmp.Close()

	reader := excel.NewGroupReader(tmp.Name())
	opts := s.defaults
	opts.Draws = draws

	var res *app.Results
	if group2Col == "" {
		columns, err := reader.ReadColumns(group1Col)
		if err != nil {
			s.writeInvalidInput(w, err.Error())
			return
		}
		res, err = s.service.AnalyzeOne(r.Context(), columns[0], refVal, opts)
		if err != nil {
			s.writeError(w, err)
			return
		}
	} else {
		columns, err := reader.ReadColumns(group1Col, group2Col)
		if err != nil {
			s.writeInvalidInput(w, err.Error())
			return
		}
		res, err = s.service.AnalyzeTwo(r.Context(), columns[0], columns[1], opts)
		if err != nil {
			s.writeError(w, err)
			return
		}
	}

	s.store(r, res)
	s.respondWithAnalysis(w, res)
}

func (s *Server) respondWithAnalysis(w http.ResponseWriter, res *app.Results) {
	payload, err := s.analysisResponse(res, 0.95)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	res, ok := s.analysisFromRequest(w, r)
	if !ok {
		return
	}
	mass, ok := s.credibleMassParam(w, r)
	if !ok {
		return
	}
	payload, err := s.analysisResponse(res, mass)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleHDI(w http.ResponseWriter, r *http.Request) {
	res, ok := s.analysisFromRequest(w, r)
	if !ok {
		return
	}
	varName := r.URL.Query().Get("var")
	mass, ok := s.credibleMassParam(w, r)
	if !ok {
		return
	}
	low, high, err := res.HDI(varName, mass)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]float64{"hdi_low": low, "hdi_high": high})
}

func (s *Server) handleProb(w http.ResponseWriter, r *http.Request) {
	res, ok := s.analysisFromRequest(w, r)
	if !ok {
		return
	}
	varName := r.URL.Query().Get("var")

	low := math.Inf(-1)
	high := math.Inf(1)
	var err error
	if v := r.URL.Query().Get("low"); v != "" {
		if low, err = strconv.ParseFloat(v, 64); err != nil {
			s.writeInvalidInput(w, "invalid low bound")
			return
		}
	}
	if v := r.URL.Query().Get("high"); v != "" {
		if high, err = strconv.ParseFloat(v, 64); err != nil {
			s.writeInvalidInput(w, "invalid high bound")
			return
		}
	}

	p, err := res.PosteriorProb(varName, low, high)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]float64{"probability": p})
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	res, ok := s.analysisFromRequest(w, r)
	if !ok {
		return
	}
	mode, err := res.PosteriorMode(r.URL.Query().Get("var"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]float64{"mode": mode})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	res, ok := s.analysisFromRequest(w, r)
	if !ok {
		return
	}
	mass, ok := s.credibleMassParam(w, r)
	if !ok {
		return
	}
	html, err := renderReportHTML(res, mass)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(html); err != nil {
		s.logger.Error("writing report: %v", err)
	}
}

func (s *Server) analysisFromRequest(w http.ResponseWriter, r *http.Request) (*app.Results, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeInvalidInput(w, "invalid analysis id")
		return nil, false
	}
	res, ok := s.lookup(r, id)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorResponse{
			Code:    "NOT_FOUND",
			Message: fmt.Sprintf("analysis %s not found", id),
		})
		return nil, false
	}
	return res, true
}

func (s *Server) credibleMassParam(w http.ResponseWriter, r *http.Request) (float64, bool) {
	mass := 0.95
	if v := r.URL.Query().Get("mass"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.writeInvalidInput(w, "invalid credible mass")
			return 0, false
		}
		mass = parsed
	}
	return mass, true
}
