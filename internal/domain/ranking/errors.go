package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrSubjectNotFound = errors.New("subject not found")
	ErrNoTopics        = errors.New("subject has no topics")
	ErrInvalidPage     = errors.New("page must be >= 1")
	ErrInvalidPageSize = errors.New("page size must be >= 1")
)
