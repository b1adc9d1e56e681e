package session

import (
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/viridian/backend/internal/service/conversation"
	"github.com/zhouzirui/viridian/backend/pkg/utils"
)

// maxAudioUpload 单次上传音频的上限（32MB）。
const maxAudioUpload = 32 << 20

// Handler 会话相关的HTTP处理器
type Handler struct {
	svc *conversation.Service
}

// New 创建会话处理器
func New(svc *conversation.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册会话路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleStart)
	r.Route("/session/{sessionID}", func(sr chi.Router) {
		sr.Post("/text", h.handleText)
		sr.Post("/audio", h.handleAudio)
		sr.Post("/end", h.handleEnd)
		sr.Get("/state", h.handleState)
		sr.Get("/transcript", h.handleTranscript)
	})
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.StartSession(r.Context())
	if err != nil {
		log.Printf("[session] start failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to start session")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleText(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.ProcessText(r.Context(), chi.URLParam(r, "sessionID"), payload.Text)
	if err != nil {
		respondServiceError(w, err, "Internal server error")
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioUpload)
	if err := r.ParseMultipartForm(maxAudioUpload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to read audio file")
		return
	}

	format := r.FormValue("format")
	if format == "" {
		format = inferAudioFormat(header.Filename)
	}

	result, err := h.svc.ProcessAudio(r.Context(), chi.URLParam(r, "sessionID"), audio, format)
	if err != nil {
		respondServiceError(w, err, "Audio processing failed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleEnd(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.EndSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err, "Failed to generate summary")
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.State(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err, "failed to load state")
		return
	}
	utils.RespondJSON(w, http.StatusOK, state)
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	messages, err := h.svc.Transcript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err, "failed to load transcript")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// respondServiceError 将业务错误映射为HTTP状态码
func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, conversation.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, conversation.ErrEmptyText), errors.Is(err, conversation.ErrEmptyAudio):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, conversation.ErrSpeechDisabled):
		utils.RespondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.Printf("[session] %s: %v", strings.ToLower(fallback), err)
		utils.RespondError(w, http.StatusInternalServerError, fallback)
	}
}

// inferAudioFormat 从文件名推断音频格式
func inferAudioFormat(filename string) string {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".mp3", ".wav", ".webm", ".ogg", ".m4a", ".aac":
		return strings.TrimPrefix(ext, ".")
	default:
		return "webm"
	}
}
