package stream

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/viridian/backend/internal/service/conversation"
	"github.com/zhouzirui/viridian/backend/pkg/utils"
)

// Handler streams a text turn as Server-Sent Events.
type Handler struct {
	svc *conversation.Service
}

// New creates a new stream handler
func New(svc *conversation.Service) *Handler {
	return &Handler{svc: svc}
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Emotion   string `json:"emotion,omitempty"`
	Source    string `json:"source,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

// RegisterRoutes 注册流式路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	message := strings.TrimSpace(r.URL.Query().Get("message"))
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	// 会话不存在时在写入 SSE 头之前返回 404
	if _, err := h.svc.State(r.Context(), sessionID); err != nil {
		if errors.Is(err, conversation.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	utils.SendSSEEvent(w, flusher, "start", StreamResponse{Event: "start", SessionID: sessionID})

	result, err := h.svc.ProcessText(r.Context(), sessionID, message)
	if err != nil {
		log.Printf("[stream] turn failed for session=%s: %v", sessionID, err)
		utils.SendSSEEvent(w, flusher, "error", StreamResponse{Event: "error", SessionID: sessionID, Error: "turn failed"})
		return
	}

	utils.SendSSEEvent(w, flusher, "emotion", StreamResponse{
		Event:     "emotion",
		SessionID: sessionID,
		Emotion:   string(result.Emotion),
		Source:    result.Source,
	})
	utils.SendSSEEvent(w, flusher, "message", StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		Content:   result.Reply,
	})
	utils.SendSSEEvent(w, flusher, "end", StreamResponse{
		Event:     "end",
		SessionID: sessionID,
		Finished:  true,
	})

	log.Printf("[stream] completed turn for session=%s", sessionID)
}
