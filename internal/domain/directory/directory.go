// Package directory defines the read-only collaborator contracts the
// ranking engine consumes. Identity and subject/topic membership are
// owned elsewhere; implementations live under internal/adapters.
package directory

import (
	"context"
	"errors"

	"github.com/watchrank/watchrank/internal/domain/types"
)

// ErrNotFound signals an unknown user or subject.
var ErrNotFound = errors.New("directory entry not found")

// UserDirectory resolves user identifiers to identity details.
type UserDirectory interface {
	// Lookup returns the identity for userID.
	// Returns ErrNotFound if the user is unknown.
	Lookup(ctx context.Context, userID string) (types.User, error)
}

// SubjectTopicDirectory resolves a subject to its topic set.
type SubjectTopicDirectory interface {
	// TopicsOf returns the topic ids belonging to subjectID.
	// Returns ErrNotFound if the subject is unknown.
	TopicsOf(ctx context.Context, subjectID string) ([]string, error)
}
