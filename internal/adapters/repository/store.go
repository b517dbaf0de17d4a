// Package repository defines the progress store interface and errors.
package repository

import (
	"context"

	"github.com/watchrank/watchrank/internal/domain/model"
)

// Store provides read/write access to progress records.
//
// Upserts for the same (userID, topicID) key are serialized so the final
// stored value is exactly the last committed write; upserts for distinct
// keys do not block each other. Bulk reads never take write locks.
type Store interface {
	// Upsert creates or overwrites the record for (userID, topicID).
	// Returns ErrInvalidPercentage (via model) when pct is outside [0,100].
	Upsert(ctx context.Context, userID, topicID string, pct float64) (model.ProgressRecord, error)

	// Get returns the record for (userID, topicID).
	// Returns ErrNotFound if no record exists.
	Get(ctx context.Context, userID, topicID string) (model.ProgressRecord, error)

	// ListByTopics returns all records whose topic id is in topicIDs.
	ListByTopics(ctx context.Context, topicIDs []string) ([]model.ProgressRecord, error)

	// ListAll returns every stored record.
	ListAll(ctx context.Context) ([]model.ProgressRecord, error)

	// Count returns the number of records tracked by the store.
	Count(ctx context.Context) int
}
