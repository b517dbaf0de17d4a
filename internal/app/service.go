// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/watchrank/watchrank/internal/adapters/repository"
	"github.com/watchrank/watchrank/internal/domain/directory"
	"github.com/watchrank/watchrank/internal/domain/model"
	"github.com/watchrank/watchrank/internal/domain/ranking"
	"github.com/watchrank/watchrank/internal/domain/types"
	"github.com/watchrank/watchrank/pkg/logger"
)

// ErrNotStarted signals an operation invoked before Start.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for the progress tracking and
// ranking engine. The store and both directories are passed in explicitly;
// there is no ambient wiring.
type Service struct {
	mu sync.RWMutex

	// Core components
	store       repository.Store
	users       directory.UserDirectory
	topics      directory.SubjectTopicDirectory
	subjectCalc *ranking.SubjectCalculator
	globalCalc  *ranking.GlobalCalculator

	// Configuration
	shardCount  int
	storageKind string

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects a progress store, overriding the default in-memory one.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
			s.storageKind = "custom"
		}
	}
}

// WithDirectories injects the user and subject/topic collaborators.
func WithDirectories(users directory.UserDirectory, topics directory.SubjectTopicDirectory) Option {
	return func(s *Service) {
		s.users = users
		s.topics = topics
	}
}

// WithShardCount sets the shard count of the default in-memory store.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		shardCount:  16,
		storageKind: "memory",
		logger:      nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting progress tracking service...")

	if s.store == nil {
		s.store = repository.NewMemStore(ctx, repository.WithShardCount(s.shardCount))
		s.logger.Info(ctx, "using in-memory progress store", logger.Int("shards", s.shardCount))
	}
	if s.users == nil || s.topics == nil {
		return fmt.Errorf("service start: user and subject/topic directories are required")
	}

	s.subjectCalc = ranking.NewSubjectCalculator(s.store, s.topics, s.users, s.logger)
	s.globalCalc = ranking.NewGlobalCalculator(s.store, s.users, s.logger)

	s.started = true
	s.logger.Info(ctx, "progress tracking service started",
		logger.String("storage", s.storageKind),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping progress tracking service...")

	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "progress tracking service stopped")
}

// ready reports whether the service components are wired.
func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// TrackProgress validates and upserts one progress report, returning the
// stored record.
func (s *Service) TrackProgress(ctx context.Context, userID, topicID string, pct float64) (model.ProgressRecord, error) {
	if err := s.ready(); err != nil {
		return model.ProgressRecord{}, err
	}

	s.logger.Debug(ctx, "tracking progress",
		logger.String("userID", userID),
		logger.String("topicID", topicID),
		logger.Float64("watchTimePercentage", pct),
	)

	rec, err := s.store.Upsert(ctx, userID, topicID, pct)
	if err != nil {
		s.logger.Error(ctx, "failed to track progress",
			logger.String("userID", userID),
			logger.String("topicID", topicID),
			logger.Error(err),
		)
		return model.ProgressRecord{}, err
	}
	return rec, nil
}

// GetProgress returns the stored record for one (user, topic) pair.
func (s *Service) GetProgress(ctx context.Context, userID, topicID string) (model.ProgressRecord, error) {
	if err := s.ready(); err != nil {
		return model.ProgressRecord{}, err
	}
	return s.store.Get(ctx, userID, topicID)
}

// SubjectRanking returns the completion-rate ordering for one subject.
func (s *Service) SubjectRanking(ctx context.Context, subjectID string) ([]types.SubjectStanding, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.subjectCalc.Rank(ctx, subjectID)
}

// GlobalRanking returns one page of the platform-wide watch-time leaderboard.
func (s *Service) GlobalRanking(ctx context.Context, page, pageSize int) (types.LeaderboardPage, error) {
	if err := s.ready(); err != nil {
		return types.LeaderboardPage{}, err
	}
	return s.globalCalc.Rank(ctx, page, pageSize)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() types.ServiceStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.ServiceStats{
		Started: s.started,
		Storage: s.storageKind,
	}
	if s.started {
		stats.Records = s.store.Count(context.Background())
	}
	return stats
}
