package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/ledger-system/internal/core/domain"
	"github.com/99minutos/ledger-system/internal/core/ports"
)

const maxIDAttempts = 3

// UserLookup resolves a username to its current user record.
type UserLookup interface {
	Lookup(username string) (*domain.User, bool)
}

// SessionOptions tunes a SessionManager. Zero values select the defaults.
type SessionOptions struct {
	// TTL bounds a session's lifetime. Zero disables expiry.
	TTL   time.Duration
	NewID TokenSource
	Now   func() time.Time
}

// SessionManager issues, resolves and revokes login sessions.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	repo     ports.SessionRepository
	users    UserLookup
	newID    TokenSource
	ttl      time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

func NewSessionManager(repo ports.SessionRepository, users UserLookup, opts SessionOptions, log zerolog.Logger) *SessionManager {
	if opts.NewID == nil {
		opts.NewID = RandomToken
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SessionManager{
		sessions: make(map[string]domain.Session),
		repo:     repo,
		users:    users,
		newID:    opts.NewID,
		ttl:      opts.TTL,
		now:      opts.Now,
		log:      log,
	}
}

// Load replaces the in-memory sessions with the repository contents.
func (m *SessionManager) Load(ctx context.Context) error {
	sessions, err := m.repo.LoadSessions(ctx)
	if err != nil {
		return fmt.Errorf("load sessions: %w: %w", domain.ErrStorage, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions = make(map[string]domain.Session, len(sessions))
	for _, s := range sessions {
		m.sessions[s.SessionID] = s
	}
	m.log.Info().Int("count", len(m.sessions)).Msg("sessions loaded")
	return nil
}

// Create opens a session for username and persists it before returning.
func (m *SessionManager) Create(ctx context.Context, username string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := m.uniqueID()
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	session := domain.Session{
		SessionID: id,
		Username:  username,
		CreatedAt: m.now().UTC(),
	}
	m.sessions[id] = session

	if err := m.repo.SaveSession(ctx, session); err != nil {
		delete(m.sessions, id)
		return "", fmt.Errorf("save session: %w: %w", domain.ErrStorage, err)
	}

	m.log.Info().Str("username", username).Str("session", shortID(id)).Msg("session created")
	return id, nil
}

// Resolve maps a session id to its user. It stops at the first miss: empty
// id, unknown session, expired session, or a user that no longer exists.
func (m *SessionManager) Resolve(sessionID string) (*domain.User, bool) {
	if sessionID == "" {
		return nil, false
	}

	m.mu.RLock()
	session, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if session.Expired(m.now(), m.ttl) {
		return nil, false
	}
	return m.users.Lookup(session.Username)
}

// Revoke removes every session with the given id. The in-memory removal
// stands even when the repository delete fails.
func (m *SessionManager) Revoke(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionID)
	if err := m.repo.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w: %w", domain.ErrStorage, err)
	}

	m.log.Info().Str("session", shortID(sessionID)).Msg("session revoked")
	return nil
}

// Sweep deletes expired sessions and returns how many were removed.
func (m *SessionManager) Sweep(ctx context.Context) (int, error) {
	if m.ttl <= 0 {
		return 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, s := range m.sessions {
		if !s.Expired(now, m.ttl) {
			continue
		}
		delete(m.sessions, id)
		if err := m.repo.DeleteSession(ctx, id); err != nil {
			return removed, fmt.Errorf("sweep session: %w: %w", domain.ErrStorage, err)
		}
		removed++
	}
	return removed, nil
}

// Count returns the number of sessions held in memory.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *SessionManager) uniqueID() (string, error) {
	for range maxIDAttempts {
		id, err := m.newID()
		if err != nil {
			return "", err
		}
		if _, taken := m.sessions[id]; id != "" && !taken {
			return id, nil
		}
	}
	return "", domain.ErrTokenCollision
}
