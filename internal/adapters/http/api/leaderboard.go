// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"strconv"
)

// LeaderboardHandler handles global leaderboard requests.
type LeaderboardHandler struct {
	deps   Dependencies
	limits Limits
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps Dependencies, limits Limits) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps, limits: limits}
}

// HandleGetLeaderboard handles GET /leaderboard?page=N&page_size=M requests.
// page defaults to 1 and page_size to the configured default; page_size is
// capped by configuration.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid page", ErrBadRequest))
			return
		}
		page = n
	}

	pageSize := h.limits.DefaultPageSize
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid page_size", ErrBadRequest))
			return
		}
		pageSize = n
	}
	if pageSize > h.limits.MaxPageSize {
		writeError(w, http.StatusBadRequest, "page_size_exceeded", fmt.Errorf("%w: page_size above %d", ErrBadRequest, h.limits.MaxPageSize))
		return
	}

	result, err := h.deps.GlobalRanking(r.Context(), page, pageSize)
	if err != nil {
		if isValidation(err) {
			writeError(w, http.StatusBadRequest, "validation_error", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
