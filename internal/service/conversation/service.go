// Package conversation runs one user turn end to end: classification,
// summary bookkeeping, transcript logging and reply synthesis.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/zhouzirui/viridian/backend/internal/analysis/emotion"
	"github.com/zhouzirui/viridian/backend/internal/model/chat"
	chatService "github.com/zhouzirui/viridian/backend/internal/service/chat"
	emotionService "github.com/zhouzirui/viridian/backend/internal/service/emotion"
	"github.com/zhouzirui/viridian/backend/internal/service/summary"
	"github.com/zhouzirui/viridian/backend/internal/service/therapy"
	"github.com/zhouzirui/viridian/backend/internal/store"
)

var (
	ErrSessionNotFound = chatService.ErrSessionNotFound
	ErrEmptyText       = errors.New("text is required")
	ErrEmptyAudio      = errors.New("audio is required")
	ErrSpeechDisabled  = errors.New("speech recognition unavailable")
)

// Classifier labels a user message.
type Classifier interface {
	ClassifyDetailed(ctx context.Context, text string) emotionService.Result
}

// Transcriber turns uploaded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, sessionID string, audio []byte, format string) (string, error)
}

// Speaker voices a reply without blocking the caller.
type Speaker interface {
	Speak(sessionID, text string, label emotion.Label)
}

// Metrics receives pipeline counters.
type Metrics interface {
	SessionStarted()
	SummaryGenerated()
	ObserveClassification(source string)
}

// Dependencies 组装对话流程所需的协作者；Transcriber、Speaker 与 Metrics 可为空。
type Dependencies struct {
	Transcripts *chatService.Service
	Classifier  Classifier
	Engine      *therapy.Engine
	Summaries   *summary.Aggregator
	Transcriber Transcriber
	Speaker     Speaker
	Metrics     Metrics
}

// Service 串联一次对话回合的各个步骤。
type Service struct {
	transcripts *chatService.Service
	classifier  Classifier
	engine      *therapy.Engine
	summaries   *summary.Aggregator
	transcriber Transcriber
	speaker     Speaker
	metrics     Metrics

	// serialises whole turns per session
	turns *store.Keyed[struct{}]
}

// TurnResult is what one turn hands back to the caller.
type TurnResult struct {
	SessionID string        `json:"sessionId"`
	Text      string        `json:"text"`
	Reply     string        `json:"reply"`
	Emotion   emotion.Label `json:"emotion"`
	Source    string        `json:"source"`
}

// EndResult 会话结束时的总结；未产生任何消息时 Summary 为空。
type EndResult struct {
	Summary *string          `json:"summary"`
	Stats   *summary.Summary `json:"stats"`
}

// NewService builds the pipeline; missing core collaborators get in-process defaults.
func NewService(deps Dependencies) *Service {
	s := &Service{
		transcripts: deps.Transcripts,
		classifier:  deps.Classifier,
		engine:      deps.Engine,
		summaries:   deps.Summaries,
		transcriber: deps.Transcriber,
		speaker:     deps.Speaker,
		metrics:     deps.Metrics,
		turns:       store.NewKeyed(func() struct{} { return struct{}{} }),
	}
	if s.transcripts == nil {
		s.transcripts = chatService.NewService(nil)
	}
	if s.classifier == nil {
		s.classifier = mustKeywordClassifier()
	}
	if s.engine == nil {
		s.engine = therapy.NewEngine()
	}
	if s.summaries == nil {
		s.summaries = summary.NewAggregator()
	}
	return s
}

func mustKeywordClassifier() *emotionService.Service {
	svc, err := emotionService.NewService(context.Background(), nil, emotionService.Config{})
	if err != nil {
		panic(err)
	}
	return svc
}

// StartSession provisions a new anonymous session.
func (s *Service) StartSession(ctx context.Context) (chat.Session, error) {
	session, err := s.transcripts.CreateSession(ctx)
	if err != nil {
		return chat.Session{}, err
	}
	if s.metrics != nil {
		s.metrics.SessionStarted()
	}
	log.Printf("[turn] session started: %s", session.ID)
	return session, nil
}

// ProcessText handles a typed message.
func (s *Service) ProcessText(ctx context.Context, sessionID, text string) (TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return TurnResult{}, ErrEmptyText
	}
	return s.processTurn(ctx, sessionID, text)
}

// ProcessAudio transcribes an upload, runs it as a turn and voices the reply.
func (s *Service) ProcessAudio(ctx context.Context, sessionID string, audio []byte, format string) (TurnResult, error) {
	if len(audio) == 0 {
		return TurnResult{}, ErrEmptyAudio
	}
	if s.transcriber == nil {
		return TurnResult{}, ErrSpeechDisabled
	}
	if _, err := s.transcripts.GetSession(ctx, sessionID); err != nil {
		return TurnResult{}, err
	}

	text, err := s.transcriber.Transcribe(ctx, sessionID, audio, format)
	if err != nil {
		return TurnResult{}, fmt.Errorf("transcribe: %w", err)
	}

	result, err := s.processTurn(ctx, sessionID, text)
	if err != nil {
		return TurnResult{}, err
	}

	if s.speaker != nil {
		s.speaker.Speak(sessionID, result.Reply, result.Emotion)
	}
	return result, nil
}

// processTurn runs one turn under the session's turn lock, so turns on the
// same session reach the transcript, history and summary in arrival order.
func (s *Service) processTurn(ctx context.Context, sessionID, text string) (TurnResult, error) {
	if _, err := s.transcripts.GetSession(ctx, sessionID); err != nil {
		return TurnResult{}, err
	}

	var (
		result TurnResult
		err    error
	)
	s.turns.Update(sessionID, func(*struct{}) {
		result, err = s.runTurn(ctx, sessionID, text)
	})
	return result, err
}

func (s *Service) runTurn(ctx context.Context, sessionID, text string) (TurnResult, error) {
	if err := s.save(ctx, sessionID, chat.SenderUser, text, ""); err != nil {
		return TurnResult{}, err
	}

	classified := s.classifier.ClassifyDetailed(ctx, text)
	label := classified.Label.Normalize()
	if s.metrics != nil {
		s.metrics.ObserveClassification(string(classified.Source))
	}

	marker := fmt.Sprintf("[Detected emotion: %s]", label)
	if err := s.save(ctx, sessionID, chat.SenderSystem, marker, label); err != nil {
		return TurnResult{}, err
	}

	// history and summary take the turn together, once the marker is stored
	reply := s.engine.HandleTurn(sessionID, text, label)
	s.summaries.Update(sessionID, text, label)

	if err := s.save(ctx, sessionID, chat.SenderBot, reply, label); err != nil {
		return TurnResult{}, err
	}

	log.Printf("[turn] session=%s emotion=%s source=%s", sessionID, label, classified.Source)
	return TurnResult{
		SessionID: sessionID,
		Text:      text,
		Reply:     reply,
		Emotion:   label,
		Source:    string(classified.Source),
	}, nil
}

func (s *Service) save(ctx context.Context, sessionID, sender, content string, label emotion.Label) error {
	err := s.transcripts.SaveMessage(ctx, chat.Message{
		SessionID: sessionID,
		Sender:    sender,
		Content:   content,
		Emotion:   string(label),
	})
	if err != nil {
		return fmt.Errorf("save %s message: %w", sender, err)
	}
	return nil
}

// EndSession produces the closing summary. Sessions with no turns yield a nil summary.
func (s *Service) EndSession(ctx context.Context, sessionID string) (EndResult, error) {
	if _, err := s.transcripts.GetSession(ctx, sessionID); err != nil {
		return EndResult{}, err
	}

	stats := s.summaries.Generate(sessionID)
	if stats == nil {
		return EndResult{}, nil
	}

	report := stats.Report()
	if s.metrics != nil {
		s.metrics.SummaryGenerated()
	}
	log.Printf("[turn] session ended: %s dominant=%s messages=%d", sessionID, stats.DominantEmotion, stats.MessageCount)
	return EndResult{Summary: &report, Stats: stats}, nil
}

// State reports the detector view of a session.
func (s *Service) State(ctx context.Context, sessionID string) (therapy.State, error) {
	if _, err := s.transcripts.GetSession(ctx, sessionID); err != nil {
		return therapy.State{}, err
	}
	return s.engine.Snapshot(sessionID), nil
}

// Transcript returns the ordered message log.
func (s *Service) Transcript(ctx context.Context, sessionID string) ([]chat.Message, error) {
	return s.transcripts.LoadTranscript(ctx, sessionID)
}
