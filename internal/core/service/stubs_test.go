package service

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/ledger-system/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	users   map[string]domain.User
	loadErr error
	saveErr error
	saves   int
}

func newStubUserRepo(users ...domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]domain.User)}
	for _, u := range users {
		r.users[u.Username] = u
	}
	return r
}

func (r *stubUserRepo) LoadUsers(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *stubUserRepo) SaveUsers(_ context.Context, users ...domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	for _, u := range users {
		r.users[u.Username] = u
	}
	return nil
}

func (r *stubUserRepo) get(username string) domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[username]
}

func (r *stubUserRepo) failSaves(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveErr = err
}

type stubSessionRepo struct {
	mu        sync.Mutex
	sessions  map[string]domain.Session
	saveErr   error
	deleteErr error
	deleted   []string
}

func newStubSessionRepo(sessions ...domain.Session) *stubSessionRepo {
	r := &stubSessionRepo{sessions: make(map[string]domain.Session)}
	for _, s := range sessions {
		r.sessions[s.SessionID] = s
	}
	return r
}

func (r *stubSessionRepo) LoadSessions(_ context.Context) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (r *stubSessionRepo) SaveSession(_ context.Context, s domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.sessions[s.SessionID] = s
	return nil
}

func (r *stubSessionRepo) DeleteSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.sessions, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubSessionRepo) has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	return ok
}

// sequenceIDs returns a TokenSource that yields ids in order and then
// repeats the last one.
func sequenceIDs(ids ...string) TokenSource {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		id := ids[i]
		if i < len(ids)-1 {
			i++
		}
		return id, nil
	}
}

// ---------------------------------------------------------------------------
// Helper: a fully wired ledger seeded with alex, john and katy (300 each).
// ---------------------------------------------------------------------------

type fixture struct {
	userRepo    *stubUserRepo
	sessionRepo *stubSessionRepo
	users       *CredentialStore
	sessions    *SessionManager
	csrf        *CSRFManager
	ledger      *LedgerService
}

func newFixture(t *testing.T, sessionOpts SessionOptions, csrfOpts CSRFOptions) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		userRepo:    newStubUserRepo(),
		sessionRepo: newStubSessionRepo(),
	}
	f.users = NewCredentialStore(f.userRepo, bcrypt.MinCost, zerolog.Nop())
	require.NoError(t, f.users.Load(ctx))
	_, err := f.users.Seed(ctx, DefaultSeedUsers)
	require.NoError(t, err)

	f.sessions = NewSessionManager(f.sessionRepo, f.users, sessionOpts, zerolog.Nop())
	require.NoError(t, f.sessions.Load(ctx))
	f.csrf = NewCSRFManager(csrfOpts)
	f.ledger = NewLedgerService(f.users, f.sessions, f.csrf, zerolog.Nop())
	return f
}

func (f *fixture) balance(t *testing.T, username string) int64 {
	t.Helper()
	u, ok := f.users.Lookup(username)
	require.True(t, ok, "user %s not found", username)
	return u.Balance
}

// login returns a session id and a csrf token for username.
func (f *fixture) login(t *testing.T, username string) (string, string) {
	t.Helper()
	ctx := context.Background()
	sid, err := f.ledger.Login(ctx, username, "123456")
	require.NoError(t, err)
	view, err := f.ledger.ViewAccount(ctx, sid)
	require.NoError(t, err)
	require.NotNil(t, view)
	return sid, view.CSRFToken
}
