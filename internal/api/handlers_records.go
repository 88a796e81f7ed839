package api

import (
	"encoding/json"
	"net/http"

	"github.com/bmcnabb/qcodex/internal/pipeline"
	"github.com/bmcnabb/qcodex/internal/registry"
	"github.com/go-chi/chi/v5"
)

// jobFromURL resolves the jobID route parameter, writing a 404 when absent.
func (s *Server) jobFromURL(w http.ResponseWriter, r *http.Request) (*pipeline.Job, bool) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return nil, false
	}
	return job, true
}

func (s *Server) handleJobRecords(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobFromURL(w, r)
	if !ok {
		return
	}
	records := job.Records()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":  job.DocID,
		"count":   len(records),
		"records": records,
	})
}

func (s *Server) handleJobDiagnostics(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobFromURL(w, r)
	if !ok {
		return
	}
	diags := job.Diagnostics()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":      job.DocID,
		"count":       len(diags),
		"diagnostics": diags,
	})
}

func (s *Server) handleListCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := s.orchestrator.Registry().List(r.Context())
	if err != nil {
		s.log.Error("list codes failed", "error", err)
		jsonError(w, "registry unavailable", http.StatusInternalServerError)
		return
	}
	if codes == nil {
		codes = []registry.Code{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"count": len(codes),
		"codes": codes,
	})
}
