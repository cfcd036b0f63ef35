package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/diccas/internal/pipeline"
	"github.com/dgallion1/diccas/internal/report"
	"github.com/dgallion1/diccas/internal/writer"
)

var contentTypes = map[writer.Kind]string{
	writer.Vert:   "text/plain; charset=utf-8",
	writer.Conllu: "text/plain; charset=utf-8",
	writer.JSON:   "application/x-ndjson; charset=utf-8",
	writer.Idx:    "text/plain; charset=utf-8",
	writer.Struct: "text/plain; charset=utf-8",
	writer.Report: "text/markdown; charset=utf-8",
}

// completedJob resolves the job in the URL, answering the request itself
// when the job is unknown or not finished.
func (s *Server) completedJob(w http.ResponseWriter, r *http.Request) *pipeline.Job {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return nil
	}
	if st := job.Snapshot().Status; st != pipeline.StatusCompleted {
		jsonError(w, fmt.Sprintf("job is %s", st), http.StatusConflict)
		return nil
	}
	return job
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	kind, ok := writer.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		jsonError(w, "unknown output kind", http.StatusBadRequest)
		return
	}
	job := s.completedJob(w, r)
	if job == nil {
		return
	}
	path, ok := job.File(kind)
	if !ok {
		jsonError(w, "output not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentTypes[kind])
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	job := s.completedJob(w, r)
	if job == nil {
		return
	}
	path, ok := job.File(writer.Report)
	if !ok {
		jsonError(w, "report not available", http.StatusNotFound)
		return
	}
	src, err := os.ReadFile(path)
	if err != nil {
		s.log.Error("read report failed", "job_id", job.ID, "error", err)
		jsonError(w, "failed to read report", http.StatusInternalServerError)
		return
	}
	html, err := report.RenderHTML(src)
	if err != nil {
		jsonError(w, "failed to render report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(html)
}
