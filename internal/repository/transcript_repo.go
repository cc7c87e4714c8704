package repository

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"pitchtalk-backend/internal/models"
)

type TranscriptRepo struct {
	pool *pgxpool.Pool
}

func NewTranscriptRepo(pool *pgxpool.Pool) *TranscriptRepo {
	return &TranscriptRepo{pool: pool}
}

// Insert writes an entry. Re-inserting an entry with the same ID is a no-op so
// queue redeliveries stay harmless.
func (r *TranscriptRepo) Insert(ctx context.Context, e *models.TranscriptEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	query := `INSERT INTO transcript_entries (id, request_id, role, content, position, rolled_back, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.RequestID, string(e.Role), e.Content, e.Position, e.RolledBack, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transcript entry: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries, newest first.
func (r *TranscriptRepo) ListRecent(ctx context.Context, limit int) ([]*models.TranscriptEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var entries []*models.TranscriptEntry
	err := pgxscan.Select(ctx, r.pool, &entries,
		`SELECT id, request_id, role, content, position, rolled_back, created_at
		FROM transcript_entries ORDER BY created_at DESC, position DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcript entries: %w", err)
	}
	return entries, nil
}
