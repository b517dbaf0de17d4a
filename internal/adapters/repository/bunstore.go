package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/watchrank/watchrank/internal/domain/model"
	"github.com/watchrank/watchrank/pkg/metrics"
)

// Postgres-backed Store implementation.
//
// The per-key write contract comes from the database: the upsert is a single
// INSERT ... ON CONFLICT (user_id, topic_id) DO UPDATE statement, so Postgres
// row locking serializes writers on the same key while writers on other keys
// proceed independently. Each bulk read runs as one statement and therefore
// sees a single read snapshot.

// Connection pool settings.
const (
	maxOpenConns    = 25
	maxIdleConns    = 10
	connMaxLifetime = 5 * time.Minute
	pingTimeout     = 10 * time.Second
)

type progressRow struct {
	bun.BaseModel `bun:"table:video_progress,alias:vp"`

	ID                  int64     `bun:"id,pk,autoincrement"`
	UserID              string    `bun:"user_id,notnull"`
	TopicID             string    `bun:"topic_id,notnull"`
	WatchTimePercentage float64   `bun:"watch_time_percentage,notnull"`
	IsCompleted         bool      `bun:"is_completed,notnull"`
	UpdatedAt           time.Time `bun:"updated_at,notnull"`
}

func (r progressRow) toRecord() model.ProgressRecord {
	return model.ProgressRecord{
		UserID:              r.UserID,
		TopicID:             r.TopicID,
		WatchTimePercentage: r.WatchTimePercentage,
		IsCompleted:         r.IsCompleted,
		UpdatedAt:           r.UpdatedAt,
	}
}

// PostgresStore implements Store on top of bun.
type PostgresStore struct {
	db  *bun.DB
	now func() time.Time
}

// NewPostgresStore opens a pooled connection for dsn and verifies it.
func NewPostgresStore(ctx context.Context, dsn string, debug bool) (*PostgresStore, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	sqldb.SetMaxOpenConns(maxOpenConns)
	sqldb.SetMaxIdleConns(maxIdleConns)
	sqldb.SetConnMaxLifetime(connMaxLifetime)

	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &PostgresStore{db: db, now: time.Now}, nil
}

// NewPostgresStoreFromDB wraps an existing bun connection (used by tests).
func NewPostgresStoreFromDB(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

// EnsureSchema creates the progress table and its indexes if missing.
// The unique index on (user_id, topic_id) enforces the one-record-per-pair
// invariant and is the conflict target of the upsert.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*progressRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create video_progress table: %w", err)
	}

	ddl := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS video_progress_user_topic_idx ON video_progress (user_id, topic_id)`,
		`CREATE INDEX IF NOT EXISTS video_progress_topic_idx ON video_progress (topic_id)`,
		`CREATE INDEX IF NOT EXISTS video_progress_user_idx ON video_progress (user_id)`,
	}
	for _, q := range ddl {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create video_progress index: %w", err)
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying bun connection so sibling adapters (the
// postgres directories) can share the pool.
func (s *PostgresStore) DB() *bun.DB {
	return s.db
}

// Upsert implements Store.Upsert as a single atomic statement.
// is_completed stays true once set: the conflict update ORs the stored flag
// with the incoming one.
func (s *PostgresStore) Upsert(ctx context.Context, userID, topicID string, pct float64) (model.ProgressRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := model.ValidatePercentage(pct); err != nil {
		metrics.RecordErrorByComponent("repository", "validation")
		return model.ProgressRecord{}, fmt.Errorf("upsert %s/%s: %w", userID, topicID, err)
	}

	row := &progressRow{
		UserID:              userID,
		TopicID:             topicID,
		WatchTimePercentage: pct,
		IsCompleted:         pct == model.CompletionThreshold,
		UpdatedAt:           s.now(),
	}

	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (user_id, topic_id) DO UPDATE").
		Set("watch_time_percentage = EXCLUDED.watch_time_percentage").
		Set("is_completed = vp.is_completed OR EXCLUDED.is_completed").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "storage")
		return model.ProgressRecord{}, fmt.Errorf("upsert %s/%s: %w: %w", userID, topicID, ErrStorage, err)
	}
	return row.toRecord(), nil
}

// Get implements Store.Get.
func (s *PostgresStore) Get(ctx context.Context, userID, topicID string) (model.ProgressRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	row := new(progressRow)
	err := s.db.NewSelect().
		Model(row).
		Where("vp.user_id = ?", userID).
		Where("vp.topic_id = ?", topicID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.ProgressRecord{}, fmt.Errorf("get %s/%s: %w", userID, topicID, ErrNotFound)
	}
	if err != nil {
		metrics.RecordErrorByComponent("repository", "storage")
		return model.ProgressRecord{}, fmt.Errorf("get %s/%s: %w: %w", userID, topicID, ErrStorage, err)
	}
	return row.toRecord(), nil
}

// ListByTopics implements Store.ListByTopics using the topic_id index.
func (s *PostgresStore) ListByTopics(ctx context.Context, topicIDs []string) ([]model.ProgressRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if len(topicIDs) == 0 {
		return nil, nil
	}

	var rows []progressRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("vp.topic_id IN (?)", bun.In(topicIDs)).
		Scan(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "storage")
		return nil, fmt.Errorf("list by topics: %w: %w", ErrStorage, err)
	}
	return rowsToRecords(rows), nil
}

// ListAll implements Store.ListAll.
func (s *PostgresStore) ListAll(ctx context.Context) ([]model.ProgressRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	var rows []progressRow
	if err := s.db.NewSelect().Model(&rows).Scan(ctx); err != nil {
		metrics.RecordErrorByComponent("repository", "storage")
		return nil, fmt.Errorf("list all: %w: %w", ErrStorage, err)
	}
	return rowsToRecords(rows), nil
}

// Count implements Store.Count. Returns 0 when the count query fails; the
// value feeds stats only.
func (s *PostgresStore) Count(ctx context.Context) int {
	n, err := s.db.NewSelect().Model((*progressRow)(nil)).Count(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "storage")
		return 0
	}
	return n
}

func rowsToRecords(rows []progressRow) []model.ProgressRecord {
	out := make([]model.ProgressRecord, len(rows))
	for i, r := range rows {
		out[i] = r.toRecord()
	}
	return out
}
