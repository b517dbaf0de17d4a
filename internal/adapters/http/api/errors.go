package api

import (
	"errors"

	"github.com/watchrank/watchrank/internal/adapters/repository"
	"github.com/watchrank/watchrank/internal/domain/directory"
	"github.com/watchrank/watchrank/internal/domain/model"
	"github.com/watchrank/watchrank/internal/domain/ranking"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// isValidation reports whether err is a caller-fixable input error (400).
func isValidation(err error) bool {
	return errors.Is(err, model.ErrInvalidPercentage) ||
		errors.Is(err, ranking.ErrInvalidPage) ||
		errors.Is(err, ranking.ErrInvalidPageSize) ||
		errors.Is(err, ErrBadRequest)
}

// isNotFound reports whether err should surface as a 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound) ||
		errors.Is(err, ranking.ErrSubjectNotFound) ||
		errors.Is(err, ranking.ErrNoTopics) ||
		errors.Is(err, directory.ErrNotFound)
}
