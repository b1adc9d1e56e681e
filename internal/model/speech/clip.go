package speech

import "time"

// Clip is one synthesized reply kept for playback.
type Clip struct {
	SessionID string    `json:"sessionId"`
	Text      string    `json:"text"`
	Emotion   string    `json:"emotion"`
	Format    string    `json:"format"`
	Audio     []byte    `json:"-"`
	Duration  int64     `json:"duration"` // milliseconds
	RequestID string    `json:"requestId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
