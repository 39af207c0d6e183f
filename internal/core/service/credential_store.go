package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/ledger-system/internal/core/domain"
	"github.com/99minutos/ledger-system/internal/core/ports"
)

// SeedUser describes an account created at bootstrap when the store is empty.
type SeedUser struct {
	Username string
	Password string
	Balance  int64
}

// DefaultSeedUsers is the bootstrap account set.
var DefaultSeedUsers = []SeedUser{
	{Username: "alex", Password: "123456", Balance: 300},
	{Username: "john", Password: "123456", Balance: 300},
	{Username: "katy", Password: "123456", Balance: 300},
}

// mutation runs under the store's write lock. It returns the records it
// changed and an undo func that reverts those changes in memory.
type mutation func(users map[string]*domain.User) (changed []*domain.User, undo func(), err error)

// CredentialStore owns the in-memory user set and serializes every change to
// it together with the matching persistence write.
type CredentialStore struct {
	mu    sync.RWMutex
	users map[string]*domain.User
	repo  ports.UserRepository
	cost  int
	log   zerolog.Logger
}

func NewCredentialStore(repo ports.UserRepository, bcryptCost int, log zerolog.Logger) *CredentialStore {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &CredentialStore{
		users: make(map[string]*domain.User),
		repo:  repo,
		cost:  bcryptCost,
		log:   log,
	}
}

// Load replaces the in-memory user set with the repository contents.
func (s *CredentialStore) Load(ctx context.Context) error {
	users, err := s.repo.LoadUsers(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w: %w", domain.ErrStorage, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[string]*domain.User, len(users))
	for i := range users {
		u := users[i]
		s.users[u.Username] = &u
	}
	s.log.Info().Int("count", len(s.users)).Msg("users loaded")
	return nil
}

// Seed creates the given accounts when no user exists yet and reports how
// many were created.
func (s *CredentialStore) Seed(ctx context.Context, seeds []SeedUser) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.users) > 0 || len(seeds) == 0 {
		return 0, nil
	}

	created := make([]domain.User, 0, len(seeds))
	for _, seed := range seeds {
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), s.cost)
		if err != nil {
			return 0, fmt.Errorf("hash seed password: %w", err)
		}
		created = append(created, domain.User{
			Username: seed.Username,
			Password: string(hash),
			Balance:  seed.Balance,
		})
	}

	if err := s.repo.SaveUsers(ctx, created...); err != nil {
		return 0, fmt.Errorf("save seed users: %w: %w", domain.ErrStorage, err)
	}
	for i := range created {
		u := created[i]
		s.users[u.Username] = &u
	}
	s.log.Info().Int("count", len(created)).Msg("seed users created")
	return len(created), nil
}

// Lookup returns a copy of the user with the given username.
func (s *CredentialStore) Lookup(username string) (*domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return nil, false
	}
	cp := *u
	return &cp, true
}

// Authenticate returns the user only when both username and password match
// exactly. Legacy plaintext passwords are upgraded to bcrypt on success.
func (s *CredentialStore) Authenticate(ctx context.Context, username, password string) (*domain.User, bool) {
	u, ok := s.Lookup(username)
	if !ok {
		return nil, false
	}

	if isBcryptHash(u.Password) {
		if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
			return nil, false
		}
		return u, true
	}

	if subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
		return nil, false
	}
	s.upgradePassword(ctx, username, u.Password, password)
	return u, true
}

// Count returns the number of known users.
func (s *CredentialStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *CredentialStore) upgradePassword(ctx context.Context, username, legacy, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to hash legacy password")
		return
	}

	err = s.mutate(ctx, func(users map[string]*domain.User) ([]*domain.User, func(), error) {
		u, ok := users[username]
		if !ok || u.Password != legacy {
			return nil, nil, nil
		}
		u.Password = string(hash)
		return []*domain.User{u}, func() { u.Password = legacy }, nil
	})
	if err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to upgrade legacy password")
		return
	}
	s.log.Info().Str("username", username).Msg("legacy password upgraded")
}

// mutate applies fn and persists the records it changed. When the save fails
// the in-memory change is undone and the previous values are written back on
// a best-effort basis, so a partially applied batch does not linger.
func (s *CredentialStore) mutate(ctx context.Context, fn mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, undo, err := fn(s.users)
	if err != nil {
		return err
	}
	if len(changed) == 0 {
		return nil
	}

	if err := s.repo.SaveUsers(ctx, snapshot(changed)...); err != nil {
		if undo != nil {
			undo()
			if restoreErr := s.repo.SaveUsers(ctx, snapshot(changed)...); restoreErr != nil {
				s.log.Error().Err(restoreErr).Msg("failed to restore users after aborted write")
			}
		}
		return fmt.Errorf("save users: %w: %w", domain.ErrStorage, err)
	}
	return nil
}

func snapshot(users []*domain.User) []domain.User {
	out := make([]domain.User, len(users))
	for i, u := range users {
		out[i] = *u
	}
	return out
}

func isBcryptHash(v string) bool {
	_, err := bcrypt.Cost([]byte(v))
	return err == nil
}
