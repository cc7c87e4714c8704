package router

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitchtalk-backend/internal/handlers"
	"pitchtalk-backend/internal/models"
	"pitchtalk-backend/internal/repository"
	"pitchtalk-backend/internal/services"
)

type echoCompleter struct{}

func (echoCompleter) Name() string { return "echo" }

func (echoCompleter) Complete(ctx context.Context, system string, turns []models.Turn) (string, error) {
	return "Hi there!", nil
}

func newTestRouter(opts Options) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := services.NewChatService(repository.NewConversationRepo(), echoCompleter{}, nil, nil, services.ChatOptions{}, logger)
	return New(
		handlers.NewRootHandler("Welcome"),
		handlers.NewChatHandler(svc, logger),
		nil,
		opts,
	)
}

func TestRouter_Ping(t *testing.T) {
	r := newTestRouter(Options{FrontendURL: "http://localhost:3000"})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong\n", rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestRouter_PostAI(t *testing.T) {
	r := newTestRouter(Options{FrontendURL: "http://localhost:3000"})

	req := httptest.NewRequest(http.MethodPost, "/ai", strings.NewReader(`{"userMessage":"Hello"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t,
		`{"conversationHistory":[{"role":"user","content":"Hello"},{"role":"assistant","content":"Hi there!"}]}`,
		rr.Body.String())

	// ping is unaffected by conversation state
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, "pong\n", rr.Body.String())
}

func TestRouter_KeepsCallerRequestID(t *testing.T) {
	r := newTestRouter(Options{FrontendURL: "http://localhost:3000"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, "Welcome", rr.Body.String())
	assert.Equal(t, "req-123", rr.Header().Get("X-Request-ID"))
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := newTestRouter(Options{FrontendURL: "http://localhost:3000"})

	req := httptest.NewRequest(http.MethodOptions, "/ai", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_ResetOnlyWhenEnabled(t *testing.T) {
	disabled := newTestRouter(Options{FrontendURL: "http://localhost:3000"})
	rr := httptest.NewRecorder()
	disabled.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/ai/history", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	enabled := newTestRouter(Options{FrontendURL: "http://localhost:3000", DevRoutes: true})
	rr = httptest.NewRecorder()
	enabled.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/ai/history", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRouter_GetAIIsNotAllowed(t *testing.T) {
	r := newTestRouter(Options{FrontendURL: "http://localhost:3000"})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ai", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

type fixedTranscripts []*models.TranscriptEntry

func (f fixedTranscripts) ListRecent(ctx context.Context, limit int) ([]*models.TranscriptEntry, error) {
	return f, nil
}

func TestRouter_TranscriptOnlyOnDevRoutes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	transcripts := handlers.NewTranscriptHandler(fixedTranscripts{
		{Role: models.RoleUser, Content: "Hello"},
	}, logger)

	prod := newTestRouter(Options{FrontendURL: "http://localhost:3000", Transcripts: transcripts})
	rr := httptest.NewRecorder()
	prod.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ai/transcript", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	dev := newTestRouter(Options{FrontendURL: "http://localhost:3000", DevRoutes: true, Transcripts: transcripts})
	rr = httptest.NewRecorder()
	dev.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ai/transcript", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"content":"Hello"`)
}
