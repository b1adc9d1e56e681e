package chat

import "time"

// Session captures one anonymous conversation.
type Session struct {
	ID        string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}
