package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"pitchtalk-backend/internal/middleware"
	"pitchtalk-backend/internal/models"
)

const MsgUserMessageRequired = "User message is required."

type conversationRepository interface {
	Append(ctx context.Context, turn models.Turn) (int, error)
	List(ctx context.Context) ([]models.Turn, error)
	Truncate(ctx context.Context, n int) error
	Reset(ctx context.Context) error
}

// TranscriptArchiver receives every appended or rolled-back turn for the
// audit archive.
type TranscriptArchiver interface {
	Archive(ctx context.Context, entry models.TranscriptEntry) error
}

type noopArchiver struct{}

func (noopArchiver) Archive(context.Context, models.TranscriptEntry) error { return nil }

type ChatOptions struct {
	SystemPrompt string
	// RollbackOnUpstreamFailure removes the user turn again when the provider
	// call fails. Off by default: the turn is kept.
	RollbackOnUpstreamFailure bool
}

// ChatService accumulates the shared conversation and proxies it to the
// completion provider.
type ChatService struct {
	conversation conversationRepository
	completer    Completer
	publisher    EventPublisher
	archiver     TranscriptArchiver
	opts         ChatOptions
	validate     *validator.Validate
	logger       *slog.Logger

	// exchange serializes whole append-complete-append sequences.
	exchange chan struct{}
}

func NewChatService(
	conversation conversationRepository,
	completer Completer,
	publisher EventPublisher,
	archiver TranscriptArchiver,
	opts ChatOptions,
	logger *slog.Logger,
) *ChatService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if archiver == nil {
		archiver = noopArchiver{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ChatService{
		conversation: conversation,
		completer:    completer,
		publisher:    publisher,
		archiver:     archiver,
		opts:         opts,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		logger:       logger,
		exchange:     make(chan struct{}, 1),
	}
}

// HandleMessage appends the user's turn, asks the provider for a reply with
// the whole conversation as context, appends the reply and returns the full
// conversation. Once the exchange has started it runs to completion even if
// the caller goes away; only LLM_TIMEOUT bounds the provider call.
func (s *ChatService) HandleMessage(ctx context.Context, req models.ChatRequest) ([]models.Turn, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, &ValidationError{Message: MsgUserMessageRequired}
	}

	select {
	case s.exchange <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for conversation: %w", ctx.Err())
	}

	ctx = context.WithoutCancel(ctx)
	var events []turnRecord
	turns, err := s.runExchange(ctx, req.UserMessage, &events)
	<-s.exchange

	// Subscribers and the archive queue are reached outside the exchange lock.
	for _, rec := range events {
		s.recordTurn(ctx, rec)
	}
	return turns, err
}

type turnRecord struct {
	eventType models.EventType
	turn      models.Turn
	pos       int
	at        time.Time
}

func (s *ChatService) runExchange(ctx context.Context, message string, events *[]turnRecord) ([]models.Turn, error) {
	userTurn := models.UserTurn(message)
	userPos, err := s.conversation.Append(ctx, userTurn)
	if err != nil {
		return nil, fmt.Errorf("failed to append user turn: %w", err)
	}
	*events = append(*events, turnRecord{models.EventTurnAppended, userTurn, userPos, time.Now().UTC()})

	history, err := s.conversation.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	start := time.Now()
	reply, err := s.completer.Complete(ctx, s.opts.SystemPrompt, history)
	if err != nil {
		s.logger.Error("completion failed",
			"provider", s.completer.Name(),
			"request_id", middleware.GetRequestID(ctx),
			"turns", len(history),
			"error", err,
		)
		if s.opts.RollbackOnUpstreamFailure {
			if terr := s.conversation.Truncate(ctx, userPos); terr != nil {
				s.logger.Error("failed to roll back user turn", "position", userPos, "error", terr)
			} else {
				*events = append(*events, turnRecord{models.EventTurnRolledBack, userTurn, userPos, time.Now().UTC()})
			}
		}
		return nil, &UpstreamError{Provider: s.completer.Name(), Err: err}
	}
	s.logger.Debug("completion succeeded",
		"provider", s.completer.Name(),
		"turns", len(history),
		"duration", time.Since(start),
	)

	assistantTurn := models.AssistantTurn(reply)
	assistantPos, err := s.conversation.Append(ctx, assistantTurn)
	if err != nil {
		return nil, fmt.Errorf("failed to append assistant turn: %w", err)
	}
	*events = append(*events, turnRecord{models.EventTurnAppended, assistantTurn, assistantPos, time.Now().UTC()})

	return s.conversation.List(ctx)
}

// History returns the current conversation without modifying it.
func (s *ChatService) History(ctx context.Context) ([]models.Turn, error) {
	return s.conversation.List(ctx)
}

// Reset empties the conversation. It waits for an in-flight exchange to finish.
func (s *ChatService) Reset(ctx context.Context) error {
	select {
	case s.exchange <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("waiting for conversation: %w", ctx.Err())
	}
	err := s.conversation.Reset(ctx)
	<-s.exchange
	if err != nil {
		return fmt.Errorf("failed to reset conversation: %w", err)
	}

	s.publish(ctx, models.ConversationEvent{
		Type:      models.EventConversationReset,
		Length:    0,
		RequestID: middleware.GetRequestID(ctx),
		At:        time.Now().UTC(),
	})
	return nil
}

func (s *ChatService) recordTurn(ctx context.Context, rec turnRecord) {
	requestID := middleware.GetRequestID(ctx)
	rolledBack := rec.eventType == models.EventTurnRolledBack

	length := rec.pos + 1
	if rolledBack {
		length = rec.pos
	}

	turn := rec.turn
	s.publish(ctx, models.ConversationEvent{
		Type:      rec.eventType,
		Turn:      &turn,
		Length:    length,
		RequestID: requestID,
		At:        rec.at,
	})

	entry := models.TranscriptEntry{
		ID:         uuid.New(),
		RequestID:  requestID,
		Role:       turn.Role,
		Content:    turn.Content,
		Position:   rec.pos,
		RolledBack: rolledBack,
		CreatedAt:  rec.at,
	}
	if err := s.archiver.Archive(ctx, entry); err != nil {
		s.logger.Warn("failed to archive turn", "request_id", requestID, "position", rec.pos, "error", err)
	}
}

func (s *ChatService) publish(ctx context.Context, event models.ConversationEvent) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("failed to publish conversation event", "type", event.Type, "error", err)
	}
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsUpstream reports whether err came from the completion provider.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
