package ports

import (
	"context"

	"github.com/99minutos/ledger-system/internal/core/domain"
)

// UserRepository persists ledger users.
type UserRepository interface {
	LoadUsers(ctx context.Context) ([]domain.User, error)
	// SaveUsers upserts the given records by username. Records not passed
	// are left untouched.
	SaveUsers(ctx context.Context, users ...domain.User) error
}
