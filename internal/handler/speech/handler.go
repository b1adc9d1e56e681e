package speech

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	speechmodel "github.com/zhouzirui/viridian/backend/internal/model/speech"
	"github.com/zhouzirui/viridian/backend/pkg/utils"
)

// ClipSource 抽象语音合成结果的读取，便于测试与替换实现
type ClipSource interface {
	Enabled() bool
	LatestClip(sessionID string) (speechmodel.Clip, bool)
}

// Handler 语音服务的HTTP处理器
type Handler struct {
	clips ClipSource
}

// New 创建语音处理器
func New(clips ClipSource) *Handler {
	return &Handler{clips: clips}
}

// RegisterRoutes 注册语音相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/speech", func(sr chi.Router) {
		sr.Get("/health", h.handleHealth)
		sr.Get("/{sessionID}/latest", h.handleLatest)
	})
}

func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	if !h.clips.Enabled() {
		utils.RespondError(w, http.StatusServiceUnavailable, "speech synthesis unavailable")
		return
	}

	clip, ok := h.clips.LatestClip(chi.URLParam(r, "sessionID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "no audio for session")
		return
	}

	if r.URL.Query().Get("meta") == "1" {
		utils.RespondJSON(w, http.StatusOK, clip)
		return
	}

	w.Header().Set("Content-Type", contentType(clip.Format))
	w.Header().Set("Content-Length", strconv.Itoa(len(clip.Audio)))
	w.Header().Set("X-Reply-Emotion", clip.Emotion)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(clip.Audio)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "disabled"
	if h.clips.Enabled() {
		status = "healthy"
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"service": "speech",
	})
}

func contentType(format string) string {
	switch format {
	case "wav":
		return "audio/wav"
	case "ogg":
		return "audio/ogg"
	case "pcm":
		return "audio/pcm"
	default:
		return "audio/mpeg"
	}
}
