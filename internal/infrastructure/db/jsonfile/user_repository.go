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

// UserRepository persists users to <dir>/users.json.
type UserRepository struct {
	mu    sync.Mutex
	path  string
	users map[string]domain.User
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(dir string) *UserRepository {
	return &UserRepository{
		path:  filepath.Join(dir, UsersFile),
		users: make(map[string]domain.User),
	}
}

func (r *UserRepository) LoadUsers(_ context.Context) ([]domain.User, error) {
	users, err := readArray[domain.User](r.path)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.users = make(map[string]domain.User, len(users))
	for _, u := range users {
		r.users[u.Username] = u
	}
	return users, nil
}

// SaveUsers upserts by username and rewrites the file. On a failed write
// the cached state is left as it was before the call.
func (r *UserRepository) SaveUsers(_ context.Context, users ...domain.User) error {
	if len(users) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := maps.Clone(r.users)
	for _, u := range users {
		next[u.Username] = u
	}

	if err := writeArray(r.path, sortedUsers(next)); err != nil {
		return err
	}
	r.users = next
	return nil
}

func sortedUsers(m map[string]domain.User) []domain.User {
	out := slices.Collect(maps.Values(m))
	slices.SortFunc(out, func(a, b domain.User) int {
		return strings.Compare(a.Username, b.Username)
	})
	return out
}
