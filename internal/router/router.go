package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"pitchtalk-backend/internal/handlers"
	"pitchtalk-backend/internal/middleware"
)

type Options struct {
	FrontendURL string
	// DevRoutes mounts DELETE /ai/history and, with Transcripts set,
	// GET /ai/transcript.
	DevRoutes   bool
	Transcripts *handlers.TranscriptHandler
}

func New(
	rootHandler *handlers.RootHandler,
	chatHandler *handlers.ChatHandler,
	wsHandler http.HandlerFunc,
	opts Options,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(opts.FrontendURL))

	r.Get("/", rootHandler.Greeting)
	r.Get("/ping", rootHandler.Ping)
	r.Get("/health", rootHandler.Health)

	// ──── Chat Routes ────
	r.Route("/ai", func(r chi.Router) {
		r.Post("/", chatHandler.Converse)
		r.Get("/history", chatHandler.History)
		if opts.DevRoutes {
			r.Delete("/history", chatHandler.Reset)
			if opts.Transcripts != nil {
				r.Get("/transcript", opts.Transcripts.List)
			}
		}
	})

	// ──── WebSocket ────
	if wsHandler != nil {
		r.Get("/ws", wsHandler)
	}

	return r
}
