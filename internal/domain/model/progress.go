// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"time"
)

// CompletionThreshold is the watch-time percentage at which a topic
// counts as completed.
const CompletionThreshold = 100.0

// ErrInvalidPercentage signals a watch-time percentage outside [0,100].
var ErrInvalidPercentage = errors.New("watch time percentage must be between 0 and 100")

// ProgressRecord is one learner's watch state for one topic.
// At most one record exists per (UserID, TopicID) pair; the progress
// store owns its identity and mutation.
type ProgressRecord struct {
	UserID              string    `json:"user_id"`
	TopicID             string    `json:"topic_id"`
	WatchTimePercentage float64   `json:"watch_time_percentage"`
	IsCompleted         bool      `json:"is_completed"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ValidatePercentage checks that pct lies in the closed range [0,100].
func ValidatePercentage(pct float64) error {
	if pct < 0 || pct > CompletionThreshold {
		return fmt.Errorf("%w: got %v", ErrInvalidPercentage, pct)
	}
	return nil
}

// Apply overwrites the record's watch time with pct and refreshes the
// completion flag and timestamp. Completion is sticky: once a record has
// reached 100 percent it stays completed even if a later report is lower.
func (r *ProgressRecord) Apply(pct float64, now time.Time) {
	r.WatchTimePercentage = pct
	if pct == CompletionThreshold {
		r.IsCompleted = true
	}
	r.UpdatedAt = now
}

// NewProgressRecord builds the initial record for a (user, topic) pair.
func NewProgressRecord(userID, topicID string, pct float64, now time.Time) ProgressRecord {
	return ProgressRecord{
		UserID:              userID,
		TopicID:             topicID,
		WatchTimePercentage: pct,
		IsCompleted:         pct == CompletionThreshold,
		UpdatedAt:           now,
	}
}
