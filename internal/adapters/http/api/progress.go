// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ProgressHandler handles progress tracking requests.
type ProgressHandler struct {
	deps Dependencies
}

// NewProgressHandler creates a new progress handler.
func NewProgressHandler(deps Dependencies) *ProgressHandler {
	return &ProgressHandler{deps: deps}
}

// progressRequest mirrors the request schema for POST /progress.
type progressRequest struct {
	UserID              string  `json:"user_id"`
	TopicID             string  `json:"topic_id"`
	WatchTimePercentage float64 `json:"watch_time_percentage"`
}

func (p progressRequest) validate() error {
	switch {
	case strings.TrimSpace(p.UserID) == "":
		return fmt.Errorf("%w: missing user_id", ErrBadRequest)
	case strings.TrimSpace(p.TopicID) == "":
		return fmt.Errorf("%w: missing topic_id", ErrBadRequest)
	}
	return nil
}

// HandleTrackProgress handles POST /progress requests.
func (h *ProgressHandler) HandleTrackProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	rec, err := h.deps.TrackProgress(r.Context(), req.UserID, req.TopicID, req.WatchTimePercentage)
	if err != nil {
		if isValidation(err) {
			writeError(w, http.StatusBadRequest, "validation_error", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleGetProgress handles GET /progress/{user_id}/{topic_id} requests.
func (h *ProgressHandler) HandleGetProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameters after /progress/
	path := strings.TrimPrefix(r.URL.Path, "/progress/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	rec, err := h.deps.GetProgress(r.Context(), parts[0], parts[1])
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
