package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/zhouzirui/viridian/backend/internal/handler/session"
	"github.com/zhouzirui/viridian/backend/internal/handler/speech"
	"github.com/zhouzirui/viridian/backend/internal/handler/stream"
	"github.com/zhouzirui/viridian/backend/internal/service/conversation"
	"github.com/zhouzirui/viridian/backend/pkg/utils"
)

// requestTimeout bounds a single request; audio turns include ASR round trips.
const requestTimeout = 60 * time.Second

// Dependencies 路由所需的服务集合；Speech 与 Metrics 可为空。
type Dependencies struct {
	Conversation   *conversation.Service
	Speech         speech.ClipSource
	Metrics        http.Handler
	AllowedOrigins []string
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(corsOptions(deps.AllowedOrigins)))

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	sessionHandler := session.New(deps.Conversation)
	streamHandler := stream.New(deps.Conversation)

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(requestTimeout))

		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		sessionHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)

		if deps.Speech != nil {
			speech.New(deps.Speech).RegisterRoutes(api)
		}
	})

	return r
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Reply-Emotion"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}
