package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sakurane/tsumugi/backend/internal/model/chat"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrBlankTurn       = errors.New("turn text is blank")
)

const openingLine = "Hello, I'm Tsumugi. I'm here to listen. How are you feeling today?"

// Service encapsulates conversation state management.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	turns    map[string][]chat.Turn
}

// NewService bootstraps the in-memory transcript store.
func NewService() *Service {
	return &Service{
		sessions: make(map[string]chat.Session),
		turns:    make(map[string][]chat.Turn),
	}
}

// CreateSession provisions an anonymous session with default settings and the
// companion's opening line already on the transcript.
func (s *Service) CreateSession(_ context.Context) (chat.Session, error) {
	session := chat.Session{
		ID:        uuid.NewString(),
		Settings:  chat.DefaultSettings(),
		CreatedAt: time.Now().UTC(),
	}

	opener := chat.Turn{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      chat.RoleCompanion,
		Text:      openingLine,
		CreatedAt: session.CreatedAt,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.turns[session.ID] = []chat.Turn{opener}
	s.mu.Unlock()

	return session, nil
}

// AppendTurn appends a turn to the session transcript and returns the stored
// copy with its assigned identifier.
func (s *Service) AppendTurn(_ context.Context, turn chat.Turn) (chat.Turn, error) {
	if turn.SessionID == "" {
		return chat.Turn{}, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[turn.SessionID]; !ok {
		return chat.Turn{}, ErrSessionNotFound
	}

	turn.ID = uuid.NewString()
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	s.turns[turn.SessionID] = append(s.turns[turn.SessionID], turn)
	return turn, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// UpdateSettings replaces the session settings through an explicit save
// action. Settings are not persisted; only the mood store is durable.
func (s *Service) UpdateSettings(_ context.Context, sessionID string, settings chat.Settings) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}

	session.Settings = settings
	s.sessions[sessionID] = session
	return session, nil
}

// LoadTranscript returns stored turns for the provided session.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns, ok := s.turns[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Turn, len(turns))
	copy(copied, turns)
	return copied, nil
}
