package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pitchtalk-backend/internal/models"
)

// Completer is the contract every completion provider satisfies: a persona
// instruction plus the ordered turn history in, generated text out.
type Completer interface {
	Complete(ctx context.Context, system string, turns []models.Turn) (string, error)
	Name() string
}

// rateGate is a token bucket bounding in-flight provider calls.
type rateGate struct {
	tokens chan struct{}
}

func newRateGate(concurrentReqs int) *rateGate {
	if concurrentReqs < 1 {
		concurrentReqs = 1
	}
	tokens := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		tokens <- struct{}{}
	}
	return &rateGate{tokens: tokens}
}

// acquire blocks until a slot is available
func (g *rateGate) acquire(ctx context.Context) error {
	select {
	case <-g.tokens:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for provider slot: %w", ctx.Err())
	}
}

func (g *rateGate) release() {
	g.tokens <- struct{}{}
}

// withOptionalTimeout bounds ctx only when timeout is positive.
func withOptionalTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// providerTurns prepares history for a provider API: empty turns are dropped
// and consecutive turns of the same role are joined, since a failed exchange
// can leave two user turns back to back.
func providerTurns(turns []models.Turn) []models.Turn {
	out := make([]models.Turn, 0, len(turns))
	for _, t := range turns {
		if strings.TrimSpace(t.Content) == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Role == t.Role {
			out[n-1].Content += "\n\n" + t.Content
			continue
		}
		out = append(out, t)
	}
	return out
}
