package emotion

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	analysis "github.com/zhouzirui/viridian/backend/internal/analysis/emotion"
)

// Source reports which path produced a classification.
type Source string

const (
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
)

// Config 控制情绪分析服务的行为。
type Config struct {
	Enabled bool
}

// Result 表示一次情绪分类的结果。
type Result struct {
	Label      analysis.Label
	Source     Source
	Confidence float32
	Reason     string
}

// classifier is the slice of compose.Runnable the service needs.
type classifier interface {
	Invoke(ctx context.Context, input map[string]any, opts ...compose.Option) (*schema.Message, error)
}

// Service 使用大模型对用户输入做情绪分类，并在必要时回退到关键词规则。
type Service struct {
	enabled    bool
	classifier classifier
	fallback   func(text string) analysis.Decision
}

// NewService 创建情绪分析服务。chatModel 为空或未启用时只使用关键词规则。
func NewService(ctx context.Context, chatModel model.ChatModel, cfg Config) (*Service, error) {
	svc := &Service{
		enabled:  cfg.Enabled && chatModel != nil,
		fallback: analysis.Analyze,
	}

	if !svc.enabled {
		return svc, nil
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(emotionSystemPrompt),
		schema.UserMessage(emotionUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile emotion classifier chain: %w", err)
	}

	svc.classifier = runnable
	return svc, nil
}

// Enabled 返回大模型分类是否启用。
func (s *Service) Enabled() bool {
	return s != nil && s.enabled && s.classifier != nil
}

// Classify 返回六种情绪标签之一，从不失败。
func (s *Service) Classify(ctx context.Context, text string) analysis.Label {
	return s.ClassifyDetailed(ctx, text).Label
}

// ClassifyDetailed is Classify with the source and confidence attached.
func (s *Service) ClassifyDetailed(ctx context.Context, text string) Result {
	text = strings.TrimSpace(text)
	if text == "" || !s.Enabled() {
		return s.fallbackResult(text)
	}

	msg, err := s.classifier.Invoke(ctx, map[string]any{"user_message": text})
	if err != nil {
		log.Printf("[emotion] classifier invoke failed, use fallback: %v", err)
		return s.fallbackResult(text)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return s.fallbackResult(text)
	}

	payload, err := parseClassifierOutput(msg.Content)
	if err != nil {
		log.Printf("[emotion] classifier output parse failed, use fallback: %v", err)
		return s.fallbackResult(text)
	}

	label, ok := analysis.Parse(payload.Emotion)
	if !ok {
		log.Printf("[emotion] classifier returned unknown label %q, use fallback", payload.Emotion)
		return s.fallbackResult(text)
	}

	confidence := payload.Confidence
	if confidence <= 0 {
		confidence = 0.6
	}
	if confidence > 1 {
		confidence = 1
	}

	return Result{
		Label:      label,
		Source:     SourceLLM,
		Confidence: confidence,
		Reason:     strings.TrimSpace(payload.Reason),
	}
}

func (s *Service) fallbackResult(text string) Result {
	fallback := s.fallback
	if fallback == nil {
		fallback = analysis.Analyze
	}
	decision := fallback(text)

	confidence := float32(0.3)
	if decision.Score > 0 {
		confidence = 0.55
	}

	return Result{
		Label:      decision.Emotion.Normalize(),
		Source:     SourceFallback,
		Confidence: confidence,
		Reason:     "fallback",
	}
}

// parseClassifierOutput 解析大模型返回的 JSON。
func parseClassifierOutput(content string) (*classifierPayload, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object")
	}

	payload := &classifierPayload{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), payload); err != nil {
		return nil, err
	}
	return payload, nil
}

type classifierPayload struct {
	Emotion    string  `json:"emotion"`
	Confidence float32 `json:"confidence"`
	Reason     string  `json:"reason"`
}

const emotionSystemPrompt = "You are an emotion classifier for a supportive listening service. Read the user's message and decide which single emotion it expresses.\nReturn only one JSON object with the fields: emotion (one of sadness/anger/fear/joy/love/neutral), confidence (a number between 0 and 1) and reason (one short sentence). Do not output anything else."

const emotionUserPrompt = "User message:\n{user_message}\n\nReturn the JSON now."
