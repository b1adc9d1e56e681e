package config

import (
	"testing"
	"time"

	"github.com/zhouzirui/viridian/backend/internal/service/therapy"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "CORS_ALLOWED_ORIGINS", "THERAPY_REPLY_STYLE", "THERAPY_RANDOM_SEED",
		"ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "Model", "ARK_TEMPERATURE", "ARK_MAX_TOKENS",
		"AI_EMOTION_LLM_ENABLED", "SPEECH_APP_ID", "SPEECH_ACCESS_TOKEN", "SPEECH_API_KEY",
		"SPEECH_TIMEOUT", "SPEECH_TTS_SPEED", "SPEECH_TTS_VOLUME", "SPEECH_ASR_CONCURRENT",
		"REDIS_URL", "REDIS_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if len(cfg.Server.AllowedOrigins) != 0 {
		t.Fatalf("origins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Therapy.Style != therapy.StyleAdaptive || cfg.Therapy.Seed != nil {
		t.Fatalf("therapy = %+v", cfg.Therapy)
	}
	if cfg.AI.Enabled() || cfg.AI.EmotionLLMEnabled {
		t.Fatalf("ai should be disabled: %+v", cfg.AI)
	}
	if cfg.Speech.Timeout != 30 || cfg.Speech.TTSSpeed != 1.0 {
		t.Fatalf("speech = %+v", cfg.Speech)
	}
	if cfg.Store.RedisURL != "" || cfg.Store.TTL != 24*time.Hour {
		t.Fatalf("store = %+v", cfg.Store)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("THERAPY_REPLY_STYLE", "Classic")
	t.Setenv("THERAPY_RANDOM_SEED", "42")
	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("Model", "ep-123")
	t.Setenv("AI_EMOTION_LLM_ENABLED", "true")
	t.Setenv("SPEECH_APP_ID", "app")
	t.Setenv("SPEECH_API_KEY", "token")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REDIS_TTL", "2h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("origins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Therapy.Style != therapy.StyleClassic || cfg.Therapy.Seed == nil || *cfg.Therapy.Seed != 42 {
		t.Fatalf("therapy = %+v", cfg.Therapy)
	}
	if !cfg.AI.Enabled() || !cfg.AI.EmotionLLMEnabled {
		t.Fatalf("ai = %+v", cfg.AI)
	}
	if cfg.Speech.AppID != "app" || cfg.Speech.AccessToken != "token" {
		t.Fatalf("speech = %+v", cfg.Speech)
	}
	if cfg.Store.TTL != 2*time.Hour {
		t.Fatalf("ttl = %v", cfg.Store.TTL)
	}
}

func TestLoadZeroSeedIsFixed(t *testing.T) {
	clearEnv(t)
	t.Setenv("THERAPY_RANDOM_SEED", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Therapy.Seed == nil || *cfg.Therapy.Seed != 0 {
		t.Fatalf("expected explicit zero seed, got %v", cfg.Therapy.Seed)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":                "80 80",
		"THERAPY_REPLY_STYLE": "poetic",
		"THERAPY_RANDOM_SEED": "abc",
		"ARK_TEMPERATURE":     "warm",
		"SPEECH_TIMEOUT":      "soon",
		"REDIS_TTL":           "forever",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("ARK_TEMPERATURE", "")
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}
