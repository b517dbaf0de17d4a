package directoryadapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/watchrank/watchrank/internal/domain/directory"
	"github.com/watchrank/watchrank/internal/domain/types"
)

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID    string `bun:"id,pk"`
	Name  string `bun:"name"`
	Email string `bun:"email"`
}

type subjectRow struct {
	bun.BaseModel `bun:"table:subjects,alias:s"`

	ID string `bun:"id,pk"`
}

type topicRow struct {
	bun.BaseModel `bun:"table:topics,alias:t"`

	ID        string `bun:"id,pk"`
	SubjectID string `bun:"subject_id"`
}

// Postgres serves both directory contracts from users/subjects/topics
// tables owned by the surrounding platform. Read-only.
type Postgres struct {
	db *bun.DB
}

// NewPostgres wraps an existing bun connection.
func NewPostgres(db *bun.DB) *Postgres {
	return &Postgres{db: db}
}

// Lookup implements directory.UserDirectory.
func (p *Postgres) Lookup(ctx context.Context, userID string) (types.User, error) {
	row := new(userRow)
	err := p.db.NewSelect().
		Model(row).
		Where("u.id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return types.User{}, fmt.Errorf("user %s: %w", userID, directory.ErrNotFound)
	}
	if err != nil {
		return types.User{}, fmt.Errorf("lookup user %s: %w", userID, err)
	}
	return types.User{ID: row.ID, Name: row.Name, Email: row.Email}, nil
}

// TopicsOf implements directory.SubjectTopicDirectory. A subject that
// exists but has no topics yields an empty slice, not ErrNotFound; the
// zero-topics rule belongs to the ranking layer.
func (p *Postgres) TopicsOf(ctx context.Context, subjectID string) ([]string, error) {
	exists, err := p.db.NewSelect().
		Model((*subjectRow)(nil)).
		Where("s.id = ?", subjectID).
		Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check subject %s: %w", subjectID, err)
	}
	if !exists {
		return nil, fmt.Errorf("subject %s: %w", subjectID, directory.ErrNotFound)
	}

	var ids []string
	err = p.db.NewSelect().
		Model((*topicRow)(nil)).
		Column("t.id").
		Where("t.subject_id = ?", subjectID).
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("list topics of subject %s: %w", subjectID, err)
	}
	return ids, nil
}
