// Package ranking computes the derived orderings served by the API: the
// per-subject completion ranking and the global watch-time leaderboard.
//
// Calculators hold no mutable state between calls; every query reads the
// store fresh, aggregates into explicit per-user accumulators, and applies
// a deterministic sort (primary metric descending, user id ascending on
// ties). Identity lookups that fail degrade the affected row instead of
// aborting the ranking.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/watchrank/watchrank/internal/adapters/repository"
	"github.com/watchrank/watchrank/internal/domain/directory"
	"github.com/watchrank/watchrank/internal/domain/types"
	"github.com/watchrank/watchrank/pkg/logger"
	"github.com/watchrank/watchrank/pkg/metrics"
)

// SubjectCalculator computes completion-rate rankings for one subject.
type SubjectCalculator struct {
	store  repository.Store
	topics directory.SubjectTopicDirectory
	users  directory.UserDirectory
	log    logger.Logger
}

// NewSubjectCalculator wires the calculator's collaborators explicitly.
func NewSubjectCalculator(store repository.Store, topics directory.SubjectTopicDirectory, users directory.UserDirectory, log logger.Logger) *SubjectCalculator {
	return &SubjectCalculator{store: store, topics: topics, users: users, log: log}
}

// Rank returns all users with any progress in the subject's topics, ordered
// by completion rate descending with ascending user id breaking ties.
// Returns ErrSubjectNotFound for an unknown subject and ErrNoTopics for a
// subject with an empty topic set: a ranking over zero topics is undefined,
// not an empty result.
func (c *SubjectCalculator) Rank(ctx context.Context, subjectID string) ([]types.SubjectStanding, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRankingQueryLatency("subject", float64(time.Since(start).Milliseconds()))
	}()
	metrics.RecordRankingQuery("subject")

	topicIDs, err := c.topics.TopicsOf(ctx, subjectID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, fmt.Errorf("subject %s: %w", subjectID, ErrSubjectNotFound)
		}
		return nil, fmt.Errorf("resolve topics for subject %s: %w", subjectID, err)
	}
	if len(topicIDs) == 0 {
		return nil, fmt.Errorf("subject %s: %w", subjectID, ErrNoTopics)
	}

	records, err := c.store.ListByTopics(ctx, topicIDs)
	if err != nil {
		return nil, fmt.Errorf("read progress for subject %s: %w", subjectID, err)
	}

	// Explicit accumulator map; final order comes from the sort below,
	// never from map iteration.
	completedByUser := make(map[string]int)
	for _, rec := range records {
		if _, ok := completedByUser[rec.UserID]; !ok {
			completedByUser[rec.UserID] = 0
		}
		if rec.IsCompleted {
			completedByUser[rec.UserID]++
		}
	}

	totalTopics := len(topicIDs)
	standings := make([]types.SubjectStanding, 0, len(completedByUser))
	for userID, completed := range completedByUser {
		standing := types.SubjectStanding{
			UserID:          userID,
			CompletedTopics: completed,
			CompletionRate:  float64(completed) / float64(totalTopics) * 100,
		}
		if user, lookupErr := c.users.Lookup(ctx, userID); lookupErr != nil {
			// Stale user reference: keep the row, drop the identity.
			metrics.RecordDirectoryLookupMiss("user")
			c.log.Warn(ctx, "user lookup failed during subject ranking; degrading row",
				logger.String("userID", userID),
				logger.String("subjectID", subjectID),
				logger.Error(lookupErr),
			)
		} else {
			standing.User = &user
		}
		standings = append(standings, standing)
	}

	sort.Slice(standings, func(i, j int) bool {
		if standings[i].CompletionRate != standings[j].CompletionRate {
			return standings[i].CompletionRate > standings[j].CompletionRate
		}
		return standings[i].UserID < standings[j].UserID
	})
	assignSubjectRanks(standings)

	return standings, nil
}

// assignSubjectRanks assigns ranks with equal completion rates sharing a rank.
func assignSubjectRanks(standings []types.SubjectStanding) {
	currentRank := 0
	for i := range standings {
		if i == 0 || standings[i].CompletionRate != standings[i-1].CompletionRate {
			currentRank++
		}
		standings[i].Rank = currentRank
	}
}
