package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zhouzirui/viridian/backend/internal/model/chat"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyContent    = errors.New("message content is required")
)

// TranscriptStore persists sessions and their ordered message log.
type TranscriptStore interface {
	PutSession(ctx context.Context, session chat.Session) error
	GetSession(ctx context.Context, sessionID string) (chat.Session, error)
	Append(ctx context.Context, message chat.Message) error
	Load(ctx context.Context, sessionID string) ([]chat.Message, error)
}

// Service encapsulates conversation transcript management.
type Service struct {
	store TranscriptStore
}

// NewService wraps store; a nil store falls back to the in-memory one.
func NewService(store TranscriptStore) *Service {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Service{store: store}
}

// CreateSession provisions an anonymous session.
func (s *Service) CreateSession(ctx context.Context) (chat.Session, error) {
	session := chat.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.PutSession(ctx, session); err != nil {
		return chat.Session{}, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// SaveMessage appends a message to the session transcript.
func (s *Service) SaveMessage(ctx context.Context, message chat.Message) error {
	if message.SessionID == "" {
		return ErrSessionNotFound
	}
	if message.Content == "" {
		return ErrEmptyContent
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	return s.store.Append(ctx, message)
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(ctx context.Context, sessionID string) (chat.Session, error) {
	return s.store.GetSession(ctx, sessionID)
}

// LoadTranscript returns stored messages for the provided session.
func (s *Service) LoadTranscript(ctx context.Context, sessionID string) ([]chat.Message, error) {
	return s.store.Load(ctx, sessionID)
}
