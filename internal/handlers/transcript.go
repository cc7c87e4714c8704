package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"pitchtalk-backend/internal/middleware"
	"pitchtalk-backend/internal/models"
)

type transcriptLister interface {
	ListRecent(ctx context.Context, limit int) ([]*models.TranscriptEntry, error)
}

// TranscriptHandler exposes the archived transcript for local inspection.
type TranscriptHandler struct {
	transcripts transcriptLister
	logger      *slog.Logger
}

func NewTranscriptHandler(transcripts transcriptLister, logger *slog.Logger) *TranscriptHandler {
	return &TranscriptHandler{
		transcripts: transcripts,
		logger:      logger,
	}
}

// List handles GET /ai/transcript?limit=N.
func (h *TranscriptHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorResp("limit must be a positive integer"))
			return
		}
		limit = n
	}

	entries, err := h.transcripts.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("transcript listing failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, errorResp(msgProcessingFailed))
		return
	}
	if entries == nil {
		entries = []*models.TranscriptEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}
