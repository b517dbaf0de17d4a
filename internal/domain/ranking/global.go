package ranking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/watchrank/watchrank/internal/adapters/repository"
	"github.com/watchrank/watchrank/internal/domain/directory"
	"github.com/watchrank/watchrank/internal/domain/types"
	"github.com/watchrank/watchrank/pkg/logger"
	"github.com/watchrank/watchrank/pkg/metrics"
)

// GlobalCalculator computes the platform-wide watch-time leaderboard.
type GlobalCalculator struct {
	store repository.Store
	users directory.UserDirectory
	log   logger.Logger
}

// NewGlobalCalculator wires the calculator's collaborators explicitly.
func NewGlobalCalculator(store repository.Store, users directory.UserDirectory, log logger.Logger) *GlobalCalculator {
	return &GlobalCalculator{store: store, users: users, log: log}
}

// Rank returns one page of users ordered by total accumulated watch-time
// percentage descending, ascending user id on ties. Totals are summed, not
// averaged or capped, so a user with many topics can exceed 100. A page
// past the end of the result set is empty, not an error.
func (c *GlobalCalculator) Rank(ctx context.Context, page, pageSize int) (types.LeaderboardPage, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRankingQueryLatency("global", float64(time.Since(start).Milliseconds()))
	}()
	metrics.RecordRankingQuery("global")

	if page < 1 {
		return types.LeaderboardPage{}, fmt.Errorf("page %d: %w", page, ErrInvalidPage)
	}
	if pageSize < 1 {
		return types.LeaderboardPage{}, fmt.Errorf("page size %d: %w", pageSize, ErrInvalidPageSize)
	}

	records, err := c.store.ListAll(ctx)
	if err != nil {
		return types.LeaderboardPage{}, fmt.Errorf("read progress for leaderboard: %w", err)
	}

	totalByUser := make(map[string]float64)
	for _, rec := range records {
		totalByUser[rec.UserID] += rec.WatchTimePercentage
	}

	entries := make([]types.LeaderboardEntry, 0, len(totalByUser))
	for userID, total := range totalByUser {
		entries = append(entries, types.LeaderboardEntry{
			UserID:         userID,
			TotalWatchTime: total,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalWatchTime != entries[j].TotalWatchTime {
			return entries[i].TotalWatchTime > entries[j].TotalWatchTime
		}
		return entries[i].UserID < entries[j].UserID
	})
	assignLeaderboardRanks(entries)

	result := types.LeaderboardPage{
		Entries:  []types.LeaderboardEntry{},
		Page:     page,
		PageSize: pageSize,
		Total:    len(entries),
	}

	// An enormous page number would overflow the startIdx multiplication;
	// the division form is overflow-free and any page past the last one is
	// empty either way.
	if page-1 > (len(entries)-1)/pageSize {
		return result, nil
	}

	startIdx := (page - 1) * pageSize
	if startIdx >= len(entries) {
		return result, nil
	}
	endIdx := startIdx + pageSize
	if endIdx > len(entries) {
		endIdx = len(entries)
	}

	// Resolve identities only for the returned slice.
	pageEntries := entries[startIdx:endIdx]
	for i := range pageEntries {
		user, lookupErr := c.users.Lookup(ctx, pageEntries[i].UserID)
		if lookupErr != nil {
			// Missing join row: keep the entry with empty identity fields.
			metrics.RecordDirectoryLookupMiss("user")
			c.log.Warn(ctx, "user lookup failed during global ranking; degrading entry",
				logger.String("userID", pageEntries[i].UserID),
				logger.Error(lookupErr),
			)
			continue
		}
		pageEntries[i].Name = user.Name
		pageEntries[i].Email = user.Email
	}

	result.Entries = pageEntries
	return result, nil
}

// assignLeaderboardRanks assigns ranks with equal totals sharing a rank.
func assignLeaderboardRanks(entries []types.LeaderboardEntry) {
	currentRank := 0
	for i := range entries {
		if i == 0 || entries[i].TotalWatchTime != entries[i-1].TotalWatchTime {
			currentRank++
		}
		entries[i].Rank = currentRank
	}
}
