package ports

import (
	"context"

	"github.com/99minutos/ledger-system/internal/core/domain"
)

// SessionRepository persists login sessions with point updates.
type SessionRepository interface {
	LoadSessions(ctx context.Context) ([]domain.Session, error)
	SaveSession(ctx context.Context, session domain.Session) error
	// DeleteSession removes every stored session carrying sessionID.
	DeleteSession(ctx context.Context, sessionID string) error
}
