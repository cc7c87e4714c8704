package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sourcegraph/conc"

	"pitchtalk-backend/internal/models"
)

const ArchiveQueue = "queue:transcript-archive"

const maxAttempts = 3

type transcriptInserter interface {
	Insert(ctx context.Context, e *models.TranscriptEntry) error
}

// queue is the list the pool drains. Pop returns errQueueEmpty when nothing
// arrived within timeout.
type queue interface {
	Push(ctx context.Context, payload []byte) error
	Pop(ctx context.Context, timeout time.Duration) (string, error)
}

var errQueueEmpty = errors.New("queue empty")

type redisQueue struct {
	client *redis.Client
	key    string
}

func (q *redisQueue) Push(ctx context.Context, payload []byte) error {
	return q.client.RPush(ctx, q.key, payload).Err()
}

func (q *redisQueue) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	result, err := q.client.BLPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", errQueueEmpty
	}
	if err != nil {
		return "", err
	}
	if len(result) < 2 {
		return "", errQueueEmpty
	}
	return result[1], nil
}

type archiveJob struct {
	Entry    models.TranscriptEntry `json:"entry"`
	Attempts int                    `json:"attempts"`
}

// Pool moves archived turns from the Redis queue into Postgres.
type Pool struct {
	queue       queue
	repo        transcriptInserter
	workerCount int
	pollTimeout time.Duration
	logger      *slog.Logger

	cancel context.CancelFunc
	wg     conc.WaitGroup
}

func NewPool(redisClient *redis.Client, repo transcriptInserter, workerCount int, logger *slog.Logger) *Pool {
	return newPool(&redisQueue{client: redisClient, key: ArchiveQueue}, repo, workerCount, logger)
}

func newPool(q queue, repo transcriptInserter, workerCount int, logger *slog.Logger) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{
		queue:       q,
		repo:        repo,
		workerCount: workerCount,
		pollTimeout: 5 * time.Second,
		logger:      logger,
	}
}

// Archive enqueues an entry; it satisfies services.TranscriptArchiver.
func (p *Pool) Archive(ctx context.Context, entry models.TranscriptEntry) error {
	data, err := json.Marshal(archiveJob{Entry: entry})
	if err != nil {
		return fmt.Errorf("failed to encode archive job: %w", err)
	}
	if err := p.queue.Push(ctx, data); err != nil {
		return fmt.Errorf("failed to enqueue archive job: %w", err)
	}
	return nil
}

func (p *Pool) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	for i := 0; i < p.workerCount; i++ {
		id := i
		p.wg.Go(func() { p.worker(ctx, id) })
	}

	p.logger.Info("archive workers started", "count", p.workerCount)
}

// Stop signals the workers and waits for in-flight inserts to finish.
func (p *Pool) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	p.wg.Wait()
}

func (p *Pool) worker(ctx context.Context, id int) {
	for {
		if ctx.Err() != nil {
			p.logger.Debug("archive worker shutting down", "worker", id)
			return
		}

		payload, err := p.queue.Pop(ctx, p.pollTimeout)
		if errors.Is(err, errQueueEmpty) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("archive queue read failed", "worker", id, "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		p.process(context.WithoutCancel(ctx), id, payload)
	}
}

func (p *Pool) process(ctx context.Context, id int, payload string) {
	var job archiveJob
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		p.logger.Error("dropping malformed archive job", "worker", id, "error", err)
		return
	}

	insertCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := p.repo.Insert(insertCtx, &job.Entry)
	if err == nil {
		return
	}

	job.Attempts++
	if job.Attempts >= maxAttempts {
		p.logger.Error("giving up on archive job",
			"worker", id,
			"entry_id", job.Entry.ID,
			"attempts", job.Attempts,
			"error", err,
		)
		return
	}

	p.logger.Warn("archive insert failed, requeueing",
		"worker", id,
		"entry_id", job.Entry.ID,
		"attempts", job.Attempts,
		"error", err,
	)
	data, _ := json.Marshal(job)
	if err := p.queue.Push(ctx, data); err != nil {
		p.logger.Error("failed to requeue archive job", "entry_id", job.Entry.ID, "error", err)
	}
}
