package speech

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/zhouzirui/viridian/backend/internal/analysis/emotion"
	speechmodel "github.com/zhouzirui/viridian/backend/internal/model/speech"
	"github.com/zhouzirui/viridian/backend/internal/store"
)

// UnrecognizedAudio stands in for a transcription that produced no text.
const UnrecognizedAudio = "[Could not understand audio]"

// ErrDisabled 表示未配置语音凭证。
var ErrDisabled = errors.New("speech service disabled")

type transcriber interface {
	Transcribe(ctx context.Context, sessionID string, audio []byte, format string) (string, error)
}

type synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (speechmodel.Clip, error)
}

type clipSlot struct {
	clip *speechmodel.Clip
}

// Service 语音服务：识别同步进行，合成在后台串行执行。
type Service struct {
	enabled bool
	asr     transcriber
	tts     synthesizer
	voice   string
	timeout time.Duration

	// one synthesis at a time
	speakMu sync.Mutex
	pending sync.WaitGroup
	clips   *store.Keyed[clipSlot]
}

// NewService 创建语音服务实例；缺少凭证时服务处于禁用状态。
func NewService(cfg *speechmodel.SpeechConfig) *Service {
	if cfg == nil {
		cfg = &speechmodel.SpeechConfig{}
	}
	_, _, credErr := resolveCredentials(cfg)
	return newService(NewASRClient(cfg), NewTTSClient(cfg), cfg, credErr == nil)
}

func newService(asr transcriber, tts synthesizer, cfg *speechmodel.SpeechConfig, enabled bool) *Service {
	timeout := 30 * time.Second
	if cfg != nil && cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}
	var voice string
	if cfg != nil {
		voice = cfg.TTSVoice
	}
	return &Service{
		enabled: enabled,
		asr:     asr,
		tts:     tts,
		voice:   voice,
		timeout: timeout,
		clips:   store.NewKeyed(func() clipSlot { return clipSlot{} }),
	}
}

// Enabled 返回语音服务是否可用。
func (s *Service) Enabled() bool {
	return s != nil && s.enabled
}

// Transcribe 返回音频的识别文本；识别为空时返回 UnrecognizedAudio。
func (s *Service) Transcribe(ctx context.Context, sessionID string, audio []byte, format string) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.asr.Transcribe(ctx, sessionID, audio, format)
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return UnrecognizedAudio, nil
	}
	return strings.TrimSpace(text), nil
}

// Speak 在后台合成回复语音，不阻塞调用方；失败只记录日志。
func (s *Service) Speak(sessionID, text string, label emotion.Label) {
	if !s.Enabled() || strings.TrimSpace(text) == "" {
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		s.speakMu.Lock()
		defer s.speakMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		clip, err := s.tts.Synthesize(ctx, SynthesisRequest{
			SessionID: sessionID,
			Text:      text,
			Voice:     s.voice,
			Emotion:   VoiceEmotionFor(label),
		})
		if err != nil {
			log.Printf("[TTS] synthesis failed for session %s: %v", sessionID, err)
			return
		}

		clip.Emotion = string(label.Normalize())
		s.clips.Update(sessionID, func(slot *clipSlot) {
			slot.clip = &clip
		})
		log.Printf("[TTS] session %s clip ready (%d bytes)", sessionID, len(clip.Audio))
	}()
}

// LatestClip 返回会话最近一次合成的语音。
func (s *Service) LatestClip(sessionID string) (speechmodel.Clip, bool) {
	var (
		clip speechmodel.Clip
		ok   bool
	)
	s.clips.View(sessionID, func(slot *clipSlot) {
		if slot.clip != nil {
			clip, ok = *slot.clip, true
		}
	})
	return clip, ok
}

// Wait 阻塞直到所有后台合成结束，用于优雅退出。
func (s *Service) Wait() {
	s.pending.Wait()
}
