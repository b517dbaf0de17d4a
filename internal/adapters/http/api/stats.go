// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/watchrank/watchrank/internal/domain/types"
)

// StatsProvider supplies the monitoring snapshot served on /stats.
type StatsProvider interface {
	GetStats() types.ServiceStats
}

// StatsHandler serves the service's monitoring snapshot.
type StatsHandler struct {
	stats StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(stats StatsProvider) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.stats.GetStats())
}
