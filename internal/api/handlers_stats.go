package api

import (
	"net/http"
)

func (s *Server) handleTaggerStats(w http.ResponseWriter, r *http.Request) {
	if s.taggerStats == nil {
		jsonError(w, "tagger stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tagger": s.cfg.Tagger.URL,
		"stats":  s.taggerStats.Snapshot(),
	})
}
