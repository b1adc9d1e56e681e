// Package summary accumulates each session's messages and emotions for the
// end-of-session report.
package summary

import (
	"github.com/zhouzirui/viridian/backend/internal/analysis/emotion"
	"github.com/zhouzirui/viridian/backend/internal/store"
)

// Summary 是会话结束时的情绪统计与叙述。
type Summary struct {
	SessionID          string        `json:"sessionId"`
	DominantEmotion    emotion.Label `json:"dominantEmotion"`
	MessageCount       int           `json:"messageCount"`
	EmotionalVariation int           `json:"emotionalVariation"`
	Narrative          string        `json:"narrative"`
}

type record struct {
	messages []string
	emotions []emotion.Label
}

func newRecord() record {
	return record{
		messages: make([]string, 0, 16),
		emotions: make([]emotion.Label, 0, 16),
	}
}

// Aggregator collects (text, emotion) pairs per session.
type Aggregator struct {
	records *store.Keyed[record]
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{records: store.NewKeyed(newRecord)}
}

// Update appends one turn, creating the session record on first use.
func (a *Aggregator) Update(sessionID, text string, label emotion.Label) {
	a.records.Update(sessionID, func(r *record) {
		r.messages = append(r.messages, text)
		r.emotions = append(r.emotions, label.Normalize())
	})
}

// Generate returns nil for sessions that never received an Update.
func (a *Aggregator) Generate(sessionID string) *Summary {
	var out *Summary
	a.records.View(sessionID, func(r *record) {
		if len(r.emotions) == 0 {
			return
		}
		dominant, distinct := dominantEmotion(r.emotions)
		out = &Summary{
			SessionID:          sessionID,
			DominantEmotion:    dominant,
			MessageCount:       len(r.messages),
			EmotionalVariation: distinct,
			Narrative:          narrative(dominant, distinct),
		}
	})
	return out
}

// dominantEmotion returns the mode and the number of distinct labels.
// On a tie the label seen first in the session wins.
func dominantEmotion(emotions []emotion.Label) (emotion.Label, int) {
	counts := make(map[emotion.Label]int, len(emotions))
	order := make([]emotion.Label, 0, 6)
	for _, label := range emotions {
		if counts[label] == 0 {
			order = append(order, label)
		}
		counts[label]++
	}

	best := order[0]
	for _, label := range order[1:] {
		if counts[label] > counts[best] {
			best = label
		}
	}
	return best, len(order)
}
