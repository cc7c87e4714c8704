package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitchtalk-backend/internal/models"
)

type capturedMessage struct {
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type capturedRequest struct {
	Model     string            `json:"model"`
	MaxTokens int               `json:"max_tokens"`
	System    []json.RawMessage `json:"system"`
	Messages  []capturedMessage `json:"messages"`
}

type requestCapture struct {
	mu  sync.Mutex
	req capturedRequest
}

func (c *requestCapture) get() capturedRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.req
}

func newAnthropicTestServer(t *testing.T, status int, body string, captured *requestCapture, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			http.NotFound(w, r)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		if captured != nil {
			captured.mu.Lock()
			json.Unmarshal(raw, &captured.req)
			captured.mu.Unlock()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAnthropicService_Complete(t *testing.T) {
	var capture requestCapture
	var hits atomic.Int32
	srv := newAnthropicTestServer(t, http.StatusOK, `{
		"id": "msg_01",
		"type": "message",
		"role": "assistant",
		"model": "claude-3-haiku-20240307",
		"content": [{"type": "text", "text": "Hi there!"}],
		"stop_reason": "end_turn",
		"stop_sequence": null,
		"usage": {"input_tokens": 12, "output_tokens": 3}
	}`, &capture, &hits)

	svc := NewAnthropicService("sk-test", "claude-3-haiku-20240307", 256, 2, time.Second,
		anthropicoption.WithBaseURL(srv.URL+"/"))

	reply, err := svc.Complete(context.Background(), "You are a football analyst.", []models.Turn{
		models.UserTurn("Hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi there!", reply)

	captured := capture.get()
	assert.Equal(t, "claude-3-haiku-20240307", captured.Model)
	assert.Equal(t, 256, captured.MaxTokens)
	require.Len(t, captured.System, 1)
	assert.Contains(t, string(captured.System[0]), "You are a football analyst.")
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Equal(t, "Hello", captured.Messages[0].Content[0].Text)
}

func TestAnthropicService_ErrorIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := newAnthropicTestServer(t, http.StatusInternalServerError,
		`{"type":"error","error":{"type":"api_error","message":"overloaded"}}`, nil, &hits)

	svc := NewAnthropicService("sk-test", "claude-3-haiku-20240307", 256, 1, 0,
		anthropicoption.WithBaseURL(srv.URL+"/"))

	_, err := svc.Complete(context.Background(), "persona", []models.Turn{models.UserTurn("Hello")})
	require.Error(t, err)
	assert.EqualValues(t, 1, hits.Load())
}

func TestToAnthropicMessages(t *testing.T) {
	msgs := toAnthropicMessages([]models.Turn{
		models.UserTurn("a"),
		models.AssistantTurn("b"),
		models.UserTurn("c"),
	})
	require.Len(t, msgs, 3)
	assert.EqualValues(t, "user", msgs[0].Role)
	assert.EqualValues(t, "assistant", msgs[1].Role)
	assert.EqualValues(t, "user", msgs[2].Role)
}
