package therapy

import (
	"github.com/zhouzirui/viridian/backend/internal/analysis/emotion"
)

// Style selects how replies are composed.
type Style string

const (
	// StyleAdaptive uses the pattern / progression / intensity decision list.
	StyleAdaptive Style = "adaptive"
	// StyleClassic uses acknowledgement, theme memory, reflection, question and support.
	StyleClassic Style = "classic"
)

// ParseStyle falls back to adaptive for unknown values.
func ParseStyle(raw string) Style {
	if Style(raw) == StyleClassic {
		return StyleClassic
	}
	return StyleAdaptive
}

// State is the detector view of one session after a turn.
type State struct {
	History     []emotion.Label     `json:"history"`
	Pattern     emotion.Pattern     `json:"pattern"`
	Intensity   emotion.Intensity   `json:"intensity"`
	Progression emotion.Progression `json:"progression"`
}

// Turn describes a processed turn; observers receive one per HandleTurn.
type Turn struct {
	SessionID string
	Emotion   emotion.Label
	State     State
	Branch    Branch
	Reply     string
}

// Observer is notified after every turn, outside the session lock.
type Observer interface {
	ObserveTurn(Turn)
}

// Engine ties history, detectors and grammar together.
type Engine struct {
	history  *HistoryStore
	grammar  *Grammar
	style    Style
	observer Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithRandom injects the random source used by the grammar.
func WithRandom(rnd Random) Option {
	return func(e *Engine) { e.grammar = NewGrammar(rnd) }
}

// WithStyle selects the reply composition style.
func WithStyle(style Style) Option {
	return func(e *Engine) { e.style = style }
}

// WithObserver registers a turn observer such as the metrics recorder.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// NewEngine creates an engine with its own history store.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		history: NewHistoryStore(),
		style:   StyleAdaptive,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.grammar == nil {
		e.grammar = NewGrammar(nil)
	}
	return e
}

// History exposes the engine's history store.
func (e *Engine) History() *HistoryStore {
	return e.history
}

// HandleTurn records the emotion, runs the detectors on the updated history
// and composes the reply. The whole turn runs under the session lock, so
// concurrent turns for one session never interleave.
func (e *Engine) HandleTurn(sessionID, userText string, label emotion.Label) string {
	label = label.Normalize()

	var (
		state  State
		reply  string
		branch Branch
	)
	e.history.update(sessionID, func(s *session) {
		s.record(label)
		s.log = append(s.log, Entry{Sender: SenderUser, Text: userText})
		state = detect(s.history)

		if e.style == StyleClassic {
			reply, branch = e.grammar.ComposeClassic(label, DetectTheme(s.log)), BranchClassic
		} else {
			reply, branch = e.grammar.compose(label, state.Pattern, state.Progression, state.Intensity)
		}

		s.log = append(s.log, Entry{Sender: SenderBot, Text: reply})
	})

	if e.observer != nil {
		e.observer.ObserveTurn(Turn{
			SessionID: sessionID,
			Emotion:   label,
			State:     state,
			Branch:    branch,
			Reply:     reply,
		})
	}
	return reply
}

// DetectPattern runs the pattern detector on the session's current window.
func (e *Engine) DetectPattern(sessionID string) emotion.Pattern {
	return emotion.DetectPattern(e.history.History(sessionID))
}

// EstimateIntensity runs the intensity estimator on the session's current window.
func (e *Engine) EstimateIntensity(sessionID string) emotion.Intensity {
	return emotion.EstimateIntensity(e.history.History(sessionID))
}

// DetectProgression runs the progression detector on the session's current window.
func (e *Engine) DetectProgression(sessionID string) emotion.Progression {
	return emotion.DetectProgression(e.history.History(sessionID))
}

// Snapshot reports history and all detector outputs from one consistent read.
// Unknown sessions report an empty history with default detector values.
func (e *Engine) Snapshot(sessionID string) State {
	state := detect(nil)
	e.history.sessions.View(sessionID, func(s *session) {
		state = detect(s.history)
	})
	return state
}

func detect(history []emotion.Label) State {
	out := make([]emotion.Label, len(history))
	copy(out, history)
	return State{
		History:     out,
		Pattern:     emotion.DetectPattern(history),
		Intensity:   emotion.EstimateIntensity(history),
		Progression: emotion.DetectProgression(history),
	}
}
