package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"

	"pitchtalk-backend/internal/models"
)

type AnthropicService struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	gate      *rateGate
}

func NewAnthropicService(
	apiKey string,
	model string,
	maxTokens int,
	concurrentReqs int,
	timeout time.Duration,
	opts ...anthropicoption.RequestOption,
) *AnthropicService {
	// A failed call surfaces immediately; the SDK's retries are disabled.
	clientOpts := append([]anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(apiKey),
		anthropicoption.WithMaxRetries(0),
	}, opts...)

	return &AnthropicService{
		client:    anthropic.NewClient(clientOpts...),
		model:     model,
		maxTokens: int64(maxTokens),
		timeout:   timeout,
		gate:      newRateGate(concurrentReqs),
	}
}

func (s *AnthropicService) Name() string { return "anthropic" }

func (s *AnthropicService) Complete(ctx context.Context, system string, turns []models.Turn) (string, error) {
	if err := s.gate.acquire(ctx); err != nil {
		return "", err
	}
	defer s.gate.release()

	ctx, cancel := withOptionalTimeout(ctx, s.timeout)
	defer cancel()

	msgs := toAnthropicMessages(turns)
	if len(msgs) == 0 {
		return "", fmt.Errorf("no turns to send")
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: s.maxTokens,
		Messages:  msgs,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return text.String(), nil
}

func toAnthropicMessages(turns []models.Turn) []anthropic.MessageParam {
	prepared := providerTurns(turns)
	msgs := make([]anthropic.MessageParam, 0, len(prepared))
	for _, t := range prepared {
		block := anthropic.NewTextBlock(t.Content)
		if t.Role == models.RoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(block))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(block))
		}
	}
	return msgs
}
