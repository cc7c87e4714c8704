package repository

import (
	"context"
	"sync"

	"pitchtalk-backend/internal/models"
)

// ConversationRepo holds the single process-wide conversation in memory.
// It starts empty and lives as long as the process.
type ConversationRepo struct {
	mu    sync.RWMutex
	turns []models.Turn
}

func NewConversationRepo() *ConversationRepo {
	return &ConversationRepo{turns: []models.Turn{}}
}

// Append adds a turn and returns its zero-based position.
func (r *ConversationRepo) Append(ctx context.Context, turn models.Turn) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.turns = append(r.turns, turn)
	return len(r.turns) - 1, nil
}

// List returns a copy of the conversation in insertion order.
func (r *ConversationRepo) List(ctx context.Context) ([]models.Turn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Turn, len(r.turns))
	copy(out, r.turns)
	return out, nil
}

func (r *ConversationRepo) Len(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.turns), nil
}

// Truncate drops every turn at or after position n. Truncating to a length
// greater than the current one is a no-op.
func (r *ConversationRepo) Truncate(ctx context.Context, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n < 0 {
		n = 0
	}
	if n < len(r.turns) {
		clear(r.turns[n:])
		r.turns = r.turns[:n]
	}
	return nil
}

func (r *ConversationRepo) Reset(ctx context.Context) error {
	return r.Truncate(ctx, 0)
}
