package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/zhouzirui/viridian/backend/internal/config"
	"github.com/zhouzirui/viridian/backend/internal/handler"
	"github.com/zhouzirui/viridian/backend/internal/metrics"
	"github.com/zhouzirui/viridian/backend/internal/service/chat"
	"github.com/zhouzirui/viridian/backend/internal/service/conversation"
	emotionservice "github.com/zhouzirui/viridian/backend/internal/service/emotion"
	"github.com/zhouzirui/viridian/backend/internal/service/speech"
	"github.com/zhouzirui/viridian/backend/internal/service/summary"
	"github.com/zhouzirui/viridian/backend/internal/service/therapy"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	transcripts, closeStore := newTranscriptService(ctx, cfg.Store)
	defer closeStore()

	// Initialize emotion classifier (LLM with keyword fallback)
	var chatModel model.ChatModel
	if cfg.AI.EmotionLLMEnabled {
		if cfg.AI.Enabled() {
			chatModel, err = cfg.AI.NewChatModel(ctx)
			if err != nil {
				log.Printf("warning: failed to initialize Ark chat model: %v", err)
			}
		} else {
			log.Println("Ark 凭证未配置，情绪分类使用关键词规则")
		}
	}
	emotionSvc, err := emotionservice.NewService(ctx, chatModel, emotionservice.Config{Enabled: cfg.AI.EmotionLLMEnabled})
	if err != nil {
		log.Fatalf("failed to initialize emotion service: %v", err)
	}
	if emotionSvc.Enabled() {
		log.Println("Emotion classifier service enabled")
	} else {
		log.Println("Emotion classifier using keyword heuristics")
	}

	rnd := therapy.NewClockRandom()
	if cfg.Therapy.Seed != nil {
		rnd = therapy.NewRandom(*cfg.Therapy.Seed)
		log.Printf("reply randomness seeded with %d", *cfg.Therapy.Seed)
	}

	recorder := metrics.NewRecorder()
	engine := therapy.NewEngine(
		therapy.WithStyle(cfg.Therapy.Style),
		therapy.WithRandom(rnd),
		therapy.WithObserver(recorder),
	)

	speechSvc := speech.NewService(&cfg.Speech)
	deps := conversation.Dependencies{
		Transcripts: transcripts,
		Classifier:  emotionSvc,
		Engine:      engine,
		Summaries:   summary.NewAggregator(),
		Metrics:     recorder,
	}
	if speechSvc.Enabled() {
		deps.Transcriber = speechSvc
		deps.Speaker = speechSvc
		log.Println("Speech service initialized successfully")
	} else {
		log.Println("语音服务凭证未配置，跳过语音功能初始化")
	}

	router := handler.NewRouter(handler.Dependencies{
		Conversation:   conversation.NewService(deps),
		Speech:         speechSvc,
		Metrics:        recorder.Handler(),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	startServer(ctx, cfg.Server, router)

	// let queued replies finish speaking before exit
	speechSvc.Wait()
}

func newTranscriptService(ctx context.Context, storeCfg config.StoreConfig) (*chat.Service, func()) {
	if storeCfg.RedisURL == "" {
		log.Println("REDIS_URL not set, keeping transcripts in memory")
		return chat.NewService(nil), func() {}
	}

	opts, err := redis.ParseURL(storeCfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	log.Printf("transcripts stored in redis (ttl %s)", storeCfg.TTL)
	return chat.NewService(chat.NewRedisStore(client, storeCfg.TTL)), func() {
		if err := client.Close(); err != nil {
			log.Printf("warning: failed to close redis client: %v", err)
		}
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Viridian backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
