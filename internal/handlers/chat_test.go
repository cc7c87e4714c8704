package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitchtalk-backend/internal/models"
	"pitchtalk-backend/internal/repository"
	"pitchtalk-backend/internal/services"
)

type stubCompleter struct {
	reply string
	err   error
}

func (c *stubCompleter) Name() string { return "stub" }

func (c *stubCompleter) Complete(ctx context.Context, system string, turns []models.Turn) (string, error) {
	return c.reply, c.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestChatHandler(completer services.Completer) (*ChatHandler, *repository.ConversationRepo) {
	repo := repository.NewConversationRepo()
	svc := services.NewChatService(repo, completer, nil, nil, services.ChatOptions{SystemPrompt: "persona"}, testLogger())
	return NewChatHandler(svc, testLogger()), repo
}

func postAI(h *ChatHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/ai", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Converse(rr, req)
	return rr
}

func TestChatHandler_Converse_Success(t *testing.T) {
	h, _ := newTestChatHandler(&stubCompleter{reply: "Hi there!"})

	rr := postAI(h, `{"userMessage": "Hello"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t,
		`{"conversationHistory":[{"role":"user","content":"Hello"},{"role":"assistant","content":"Hi there!"}]}`,
		rr.Body.String())
}

func TestChatHandler_Converse_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty message", `{"userMessage": ""}`},
		{"missing message", `{}`},
		{"wrong type", `{"userMessage": 42}`},
		{"malformed json", `{"userMessage": `},
		{"empty body", ``},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, repo := newTestChatHandler(&stubCompleter{reply: "unused"})

			rr := postAI(h, tc.body)

			require.Equal(t, http.StatusBadRequest, rr.Code)
			assert.JSONEq(t, `{"error":"User message is required."}`, rr.Body.String())

			n, _ := repo.Len(context.Background())
			assert.Zero(t, n, "conversation must be untouched")
		})
	}
}

func TestChatHandler_Converse_UpstreamFailure(t *testing.T) {
	h, repo := newTestChatHandler(&stubCompleter{err: errors.New("provider exploded")})

	rr := postAI(h, `{"userMessage": "Hello"}`)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Error processing your request."}`, rr.Body.String())
	assert.NotContains(t, rr.Body.String(), "exploded")

	turns, _ := repo.List(context.Background())
	assert.Equal(t, []models.Turn{models.UserTurn("Hello")}, turns)
}

func TestChatHandler_Converse_AccumulatesAcrossRequests(t *testing.T) {
	h, _ := newTestChatHandler(&stubCompleter{reply: "ok"})

	postAI(h, `{"userMessage": "first"}`)
	rr := postAI(h, `{"userMessage": "second"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp models.ChatResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, []models.Turn{
		models.UserTurn("first"),
		models.AssistantTurn("ok"),
		models.UserTurn("second"),
		models.AssistantTurn("ok"),
	}, resp.ConversationHistory)
}

func TestChatHandler_History(t *testing.T) {
	h, _ := newTestChatHandler(&stubCompleter{reply: "Hi there!"})

	req := httptest.NewRequest(http.MethodGet, "/ai/history", nil)
	rr := httptest.NewRecorder()
	h.History(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"conversationHistory":[]}`, rr.Body.String())

	postAI(h, `{"userMessage": "Hello"}`)

	rr = httptest.NewRecorder()
	h.History(rr, req)
	assert.JSONEq(t,
		`{"conversationHistory":[{"role":"user","content":"Hello"},{"role":"assistant","content":"Hi there!"}]}`,
		rr.Body.String())
}

func TestChatHandler_Reset(t *testing.T) {
	h, repo := newTestChatHandler(&stubCompleter{reply: "Hi"})
	postAI(h, `{"userMessage": "Hello"}`)

	rr := httptest.NewRecorder()
	h.Reset(rr, httptest.NewRequest(http.MethodDelete, "/ai/history", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	n, _ := repo.Len(context.Background())
	assert.Zero(t, n)
}

func TestRootHandler(t *testing.T) {
	h := NewRootHandler("Welcome")

	rr := httptest.NewRecorder()
	h.Ping(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong\n", rr.Body.String())

	rr = httptest.NewRecorder()
	h.Greeting(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "Welcome", rr.Body.String())

	rr = httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
