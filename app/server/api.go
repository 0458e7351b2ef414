package server

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/go-pkgz/lgr"

	"github.com/jobpilot/jobstore/app/enums"
	"github.com/jobpilot/jobstore/app/store"
)

// addJobsRequest is the body of POST /add-jobs
type addJobsRequest struct {
	URLs           []string `json:"urls"`
	Status         string   `json:"status"`
	UpdateIfExists bool     `json:"update_if_exists"` // defaults to false: existing entries are skipped
}

// refreshJobRequest is the body of POST /refresh-job
type refreshJobRequest struct {
	URL    string `json:"url"`
	Status string `json:"status"`
}

// resetRequest is the body of POST /admin/reset, type is "truncate" or "new"
type resetRequest struct {
	Type string `json:"type"`
}

// resetResponse reports how many entries the reset touched
type resetResponse struct {
	Reset int64 `json:"reset"`
}

// handleAllJobs returns the full snapshot of stored entries
func (s *Server) handleAllJobs(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.GetAll(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to load jobs: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to load jobs")
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

// handleJobsByStatus returns entries filtered by status. An unknown status
// is a client error, not an empty result, so callers can tell "no jobs with
// this status" from "not a valid status".
func (s *Server) handleJobsByStatus(w http.ResponseWriter, r *http.Request) {
	status, err := enums.ParseStatus(r.PathValue("status"))
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := s.store.GetByStatus(r.Context(), status)
	if err != nil {
		log.Printf("[ERROR] failed to load jobs by status %s: %v", status, err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to load jobs")
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

// handleAddJobs applies a conditional batch upsert. Urls failing validation
// are enumerated in the rejected list rather than failing the call; an
// unknown status fails the whole call.
func (s *Server) handleAddJobs(w http.ResponseWriter, r *http.Request) {
	var req addJobsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.URLs) == 0 {
		s.writeJSONError(w, http.StatusBadRequest, "urls required")
		return
	}

	if req.Status == "" {
		req.Status = enums.StatusNew.String()
	}
	status, err := enums.ParseStatus(req.Status)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.store.Upsert(r.Context(), req.URLs, status, req.UpdateIfExists)
	if err != nil {
		log.Printf("[ERROR] failed to add jobs: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to add jobs")
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// handleRefreshJob applies an unconditional upsert and returns the
// resulting entry
func (s *Server) handleRefreshJob(w http.ResponseWriter, r *http.Request) {
	var req refreshJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		s.writeJSONError(w, http.StatusBadRequest, "url required")
		return
	}

	status, err := enums.ParseStatus(req.Status)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := s.store.Refresh(r.Context(), req.URL, status)
	if err != nil {
		if errors.Is(err, store.ErrInvalidURL) {
			s.writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[ERROR] failed to refresh job %s: %v", req.URL, err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to refresh job")
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

// handleNextJob claims the oldest new entry for the automation worker,
// flipping it to active
func (s *Server) handleNextJob(w http.ResponseWriter, r *http.Request) {
	entry, err := s.store.Next(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeJSONError(w, http.StatusNotFound, "no new jobs available")
			return
		}
		log.Printf("[ERROR] failed to claim next job: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to claim next job")
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

// handleReset wipes the table or mass-resets statuses to new, operator
// tooling only
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var n int64
	var err error
	switch req.Type {
	case "truncate":
		n, err = s.store.Truncate(r.Context())
	case "new":
		n, err = s.store.MarkAllNew(r.Context())
	default:
		s.writeJSONError(w, http.StatusBadRequest, "invalid reset type, use 'truncate' or 'new'")
		return
	}
	if err != nil {
		log.Printf("[ERROR] failed to reset jobs (%s): %v", req.Type, err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to reset jobs")
		return
	}

	log.Printf("[INFO] jobs reset with type %s, %d affected", req.Type, n)
	s.writeJSON(w, http.StatusOK, resetResponse{Reset: n})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[WARN] failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes a JSON error response
func (s *Server) writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("[WARN] failed to encode JSON error response: %v", err)
	}
}
