package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"pitchtalk-backend/internal/models"
)

// EventPublisher fans conversation events out to live listeners.
type EventPublisher interface {
	Publish(ctx context.Context, event models.ConversationEvent) error
}

// RedisPublisher publishes events on the shared pub/sub channel so every
// server instance's websocket hub receives them.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, event models.ConversationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := p.client.Publish(ctx, models.ConversationUpdatesChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

type broadcaster interface {
	Broadcast(data []byte)
}

// LocalPublisher hands events straight to an in-process hub. Used when Redis
// is not configured.
type LocalPublisher struct {
	hub broadcaster
}

func NewLocalPublisher(hub broadcaster) *LocalPublisher {
	return &LocalPublisher{hub: hub}
}

func (p *LocalPublisher) Publish(ctx context.Context, event models.ConversationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	p.hub.Broadcast(data)
	return nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, models.ConversationEvent) error { return nil }
