package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/ledger-system/internal/core/domain"
	"github.com/99minutos/ledger-system/internal/core/ports"
)

// LedgerService implements ports.LedgerService on top of the credential
// store, session manager, CSRF manager and transfer engine.
type LedgerService struct {
	users     *CredentialStore
	sessions  *SessionManager
	csrf      *CSRFManager
	transfers *TransferEngine
	log       zerolog.Logger
}

var _ ports.LedgerService = (*LedgerService)(nil)

func NewLedgerService(users *CredentialStore, sessions *SessionManager, csrf *CSRFManager, log zerolog.Logger) *LedgerService {
	return &LedgerService{
		users:     users,
		sessions:  sessions,
		csrf:      csrf,
		transfers: NewTransferEngine(users, sessions, csrf, log),
		log:       log,
	}
}

func (s *LedgerService) Login(ctx context.Context, username, password string) (string, error) {
	user, ok := s.users.Authenticate(ctx, username, password)
	if !ok {
		s.log.Info().Str("username", username).Msg("login rejected")
		return "", domain.ErrUnauthenticated
	}
	return s.sessions.Create(ctx, user.Username)
}

func (s *LedgerService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Revoke(ctx, sessionID)
}

// ViewAccount issues a fresh CSRF token on every authenticated view.
func (s *LedgerService) ViewAccount(_ context.Context, sessionID string) (*ports.AccountView, error) {
	user, ok := s.sessions.Resolve(sessionID)
	if !ok {
		return nil, nil
	}

	token, err := s.csrf.Issue(user.Username)
	if err != nil {
		return nil, err
	}

	return &ports.AccountView{
		Username:  user.Username,
		Balance:   user.Balance,
		CSRFToken: token,
	}, nil
}

func (s *LedgerService) Transfer(ctx context.Context, in ports.TransferInput) (*ports.TransferResult, error) {
	return s.transfers.Transfer(ctx, in)
}

// SessionCount and CSRFTokenCount feed the state gauges.
func (s *LedgerService) SessionCount() int { return s.sessions.Count() }

func (s *LedgerService) CSRFTokenCount() int { return s.csrf.Count() }
