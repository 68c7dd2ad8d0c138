package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /pipeline/files
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.orch.ListFiles(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"files": files})
}

// GET /pipeline/preview/{fileID}?rows=N
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")
	rows := parseIntParam(r, "rows", s.cfg.Import.PreviewRows)

	preview, err := s.orch.PreviewFile(r.Context(), fileID, rows)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, preview)
}

// GET /pipeline/validate/{fileID}
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	summary, err := s.orch.Validate(r.Context(), chi.URLParam(r, "fileID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// POST /pipeline/import/{fileID}
func (s *Server) handleStartImport(w http.ResponseWriter, r *http.Request) {
	job, err := s.orch.StartImport(r.Context(), chi.URLParam(r, "fileID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusAccepted, job)
}

// GET /pipeline/jobs?limit=N
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.orch.ListJobs(r.Context(), parseIntParam(r, "limit", 50))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// GET /pipeline/status/{jobID}
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID, ok := s.jobIDParam(w, r)
	if !ok {
		return
	}
	job, err := s.orch.GetStatus(r.Context(), jobID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, job)
}

// GET /pipeline/staged/{jobID}?limit=N
func (s *Server) handleStagedRows(w http.ResponseWriter, r *http.Request) {
	jobID, ok := s.jobIDParam(w, r)
	if !ok {
		return
	}
	page, err := s.orch.GetStagedRows(r.Context(), jobID, parseIntParam(r, "limit", 500))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// POST /pipeline/approve/{jobID}
func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	jobID, ok := s.jobIDParam(w, r)
	if !ok {
		return
	}
	result, err := s.orch.Approve(r.Context(), jobID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// POST /pipeline/reject/{jobID}
func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	jobID, ok := s.jobIDParam(w, r)
	if !ok {
		return
	}
	result, err := s.orch.Reject(r.Context(), jobID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// jobIDParam extracts and validates the jobID path parameter.
func (s *Server) jobIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	jobID := chi.URLParam(r, "jobID")
	if _, err := uuid.Parse(jobID); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: invalid job id %q", errBadRequest, jobID))
		return "", false
	}
	return jobID, true
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
