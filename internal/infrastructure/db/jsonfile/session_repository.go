package jsonfile

import (
	"context"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/99minutos/ledger-system/internal/core/domain"
	"github.com/99minutos/ledger-system/internal/core/ports"
)

// SessionRepository persists sessions to <dir>/sessions.json.
type SessionRepository struct {
	mu       sync.Mutex
	path     string
	sessions map[string]domain.Session
}

var _ ports.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(dir string) *SessionRepository {
	return &SessionRepository{
		path:     filepath.Join(dir, SessionsFile),
		sessions: make(map[string]domain.Session),
	}
}

// LoadSessions reads the file. Duplicate ids collapse to the last entry.
func (r *SessionRepository) LoadSessions(_ context.Context) ([]domain.Session, error) {
	sessions, err := readArray[domain.Session](r.path)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions = make(map[string]domain.Session, len(sessions))
	for _, s := range sessions {
		r.sessions[s.SessionID] = s
	}
	return sortedSessions(r.sessions), nil
}

func (r *SessionRepository) SaveSession(_ context.Context, s domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := maps.Clone(r.sessions)
	next[s.SessionID] = s
	return r.commit(next)
}

func (r *SessionRepository) DeleteSession(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return nil
	}
	next := maps.Clone(r.sessions)
	delete(next, sessionID)
	return r.commit(next)
}

// commit writes next and adopts it as the cached state. Caller holds r.mu.
func (r *SessionRepository) commit(next map[string]domain.Session) error {
	if err := writeArray(r.path, sortedSessions(next)); err != nil {
		return err
	}
	r.sessions = next
	return nil
}

func sortedSessions(m map[string]domain.Session) []domain.Session {
	out := slices.Collect(maps.Values(m))
	slices.SortFunc(out, func(a, b domain.Session) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.SessionID, b.SessionID)
	})
	return out
}
