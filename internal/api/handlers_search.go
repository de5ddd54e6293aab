package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tgrayson/vaultvec/internal/embed"
)

const defaultSearchLimit = 10

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		jsonError(w, "query is required", http.StatusBadRequest)
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultSearchLimit
	}

	vectors, err := s.orchestrator.Embedder().Embed(r.Context(), []string{embed.ForQuery(req.Query)})
	if err != nil {
		s.log.Error("query embedding failed", "error", err)
		jsonError(w, "embedding backend unavailable", http.StatusBadGateway)
		return
	}
	if len(vectors) != 1 {
		jsonError(w, "embedding backend returned no vector", http.StatusBadGateway)
		return
	}

	hits, err := s.orchestrator.Store().Search(r.Context(), vectors[0], req.Limit)
	if err != nil {
		s.log.Error("search failed", "error", err)
		jsonError(w, "search failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   req.Query,
		"results": hits,
	})
}
