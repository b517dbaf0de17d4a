// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/watchrank/watchrank/internal/domain/model"
	"github.com/watchrank/watchrank/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	TrackProgress(ctx context.Context, userID, topicID string, pct float64) (model.ProgressRecord, error)
	GetProgress(ctx context.Context, userID, topicID string) (model.ProgressRecord, error)
	SubjectRanking(ctx context.Context, subjectID string) ([]types.SubjectStanding, error)
	GlobalRanking(ctx context.Context, page, pageSize int) (types.LeaderboardPage, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	progressHandler    *ProgressHandler
	subjectHandler     *SubjectRankingHandler
	leaderboardHandler *LeaderboardHandler
}

// Limits applied by the leaderboard handler.
type Limits struct {
	MaxPageSize     int
	DefaultPageSize int
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, limits Limits) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		progressHandler:    NewProgressHandler(deps),
		subjectHandler:     NewSubjectRankingHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, limits),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/progress", MetricsMiddleware(s.progressHandler.HandleTrackProgress, "progress"))
	mux.HandleFunc("/progress/", MetricsMiddleware(s.progressHandler.HandleGetProgress, "progress_get"))
	mux.HandleFunc("/subjects/", MetricsMiddleware(s.subjectHandler.HandleGetRankings, "subject_rankings"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
