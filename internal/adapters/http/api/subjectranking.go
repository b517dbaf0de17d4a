// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// SubjectRankingHandler handles per-subject ranking requests.
type SubjectRankingHandler struct {
	deps Dependencies
}

// NewSubjectRankingHandler creates a new subject ranking handler.
func NewSubjectRankingHandler(deps Dependencies) *SubjectRankingHandler {
	return &SubjectRankingHandler{deps: deps}
}

// HandleGetRankings handles GET /subjects/{subject_id}/rankings requests.
func (h *SubjectRankingHandler) HandleGetRankings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameters after /subjects/
	path := strings.TrimPrefix(r.URL.Path, "/subjects/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "rankings" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	standings, err := h.deps.SubjectRanking(r.Context(), parts[0])
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, standings)
}
