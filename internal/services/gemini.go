package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"pitchtalk-backend/internal/models"
)

type GeminiService struct {
	client    *genai.Client
	modelName string
	timeout   time.Duration
	gate      *rateGate
	logger    *slog.Logger
}

func NewGeminiService(
	ctx context.Context,
	apiKey string,
	modelName string,
	concurrentReqs int,
	timeout time.Duration,
	logger *slog.Logger,
) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiService{
		client:    client,
		modelName: modelName,
		timeout:   timeout,
		gate:      newRateGate(concurrentReqs),
		logger:    logger,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

func (s *GeminiService) Name() string { return "gemini" }

func (s *GeminiService) Complete(ctx context.Context, system string, turns []models.Turn) (string, error) {
	if err := s.gate.acquire(ctx); err != nil {
		return "", err
	}
	defer s.gate.release()

	ctx, cancel := withOptionalTimeout(ctx, s.timeout)
	defer cancel()

	history, last, err := toGeminiHistory(turns)
	if err != nil {
		return "", err
	}

	model := s.client.GenerativeModel(s.modelName)
	model.SetTemperature(0.7)
	if system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}

	cs := model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			s.logger.Warn("gemini stopped early", "candidate", i, "finish_reason", cand.FinishReason.String())
		}
	}

	return extractText(resp), nil
}

// toGeminiHistory splits turns into the chat history and the message to send.
// Gemini names the assistant role "model".
func toGeminiHistory(turns []models.Turn) ([]*genai.Content, string, error) {
	prepared := providerTurns(turns)
	if len(prepared) == 0 {
		return nil, "", fmt.Errorf("no turns to send")
	}

	last := prepared[len(prepared)-1]
	if last.Role != models.RoleUser {
		return nil, "", fmt.Errorf("last turn must come from the user, got %q", last.Role)
	}

	history := make([]*genai.Content, 0, len(prepared)-1)
	for _, t := range prepared[:len(prepared)-1] {
		role := "user"
		if t.Role == models.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(t.Content)},
		})
	}

	return history, last.Content, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
