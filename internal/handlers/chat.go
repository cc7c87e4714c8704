package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"pitchtalk-backend/internal/middleware"
	"pitchtalk-backend/internal/models"
	"pitchtalk-backend/internal/services"
)

const msgProcessingFailed = "Error processing your request."

type chatService interface {
	HandleMessage(ctx context.Context, req models.ChatRequest) ([]models.Turn, error)
	History(ctx context.Context) ([]models.Turn, error)
	Reset(ctx context.Context) error
}

type ChatHandler struct {
	chatService chatService
	logger      *slog.Logger
}

func NewChatHandler(chatService chatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// Converse handles POST /ai.
func (h *ChatHandler) Converse(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp(services.MsgUserMessageRequired))
		return
	}

	turns, err := h.chatService.HandleMessage(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{ConversationHistory: turns})
}

// History handles GET /ai/history.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	turns, err := h.chatService.History(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{ConversationHistory: turns})
}

// Reset handles DELETE /ai/history.
func (h *ChatHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.chatService.Reset(r.Context()); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChatHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case services.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorResp(err.Error()))
	default:
		h.logger.Error("chat request failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"upstream", services.IsUpstream(err),
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, errorResp(msgProcessingFailed))
	}
}
