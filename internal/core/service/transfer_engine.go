package service

import (
	"context"
	"errors"
	"math"

	"github.com/rs/zerolog"

	"github.com/99minutos/ledger-system/internal/core/domain"
	"github.com/99minutos/ledger-system/internal/core/ports"
)

// TransferEngine moves funds between two accounts once every gate passes.
type TransferEngine struct {
	users    *CredentialStore
	sessions *SessionManager
	csrf     *CSRFManager
	log      zerolog.Logger
}

func NewTransferEngine(users *CredentialStore, sessions *SessionManager, csrf *CSRFManager, log zerolog.Logger) *TransferEngine {
	return &TransferEngine{users: users, sessions: sessions, csrf: csrf, log: log}
}

// Transfer checks, in order: amount, session, CSRF token, self-transfer,
// recipient, funds. The debit, credit and persistence happen under the
// credential store lock; a failed save leaves both balances unchanged.
func (e *TransferEngine) Transfer(ctx context.Context, in ports.TransferInput) (*ports.TransferResult, error) {
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return nil, err
	}

	sender, ok := e.sessions.Resolve(in.SessionID)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	if !e.csrf.Redeem(sender.Username, in.CSRFToken) {
		e.log.Warn().Str("username", sender.Username).Msg("transfer rejected: invalid csrf token")
		return nil, domain.ErrInvalidCSRF
	}

	if sender.Username == in.Recipient {
		return nil, domain.ErrSelfTransfer
	}

	var result ports.TransferResult
	err = e.users.mutate(ctx, func(users map[string]*domain.User) ([]*domain.User, func(), error) {
		from, ok := users[sender.Username]
		if !ok {
			return nil, nil, domain.ErrUnauthenticated
		}
		to, ok := users[in.Recipient]
		if !ok {
			return nil, nil, domain.ErrRecipientNotFound
		}
		if from.Balance < amount {
			return nil, nil, domain.ErrInsufficientFunds
		}
		if to.Balance > math.MaxInt64-amount {
			return nil, nil, domain.ErrInvalidAmount
		}

		from.Balance -= amount
		to.Balance += amount
		result = ports.TransferResult{
			From:    from.Username,
			To:      to.Username,
			Amount:  amount,
			Balance: from.Balance,
		}

		undo := func() {
			from.Balance += amount
			to.Balance -= amount
		}
		return []*domain.User{from, to}, undo, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrStorage) {
			e.log.Error().Err(err).Str("from", sender.Username).Str("to", in.Recipient).Msg("transfer rolled back")
		}
		return nil, err
	}

	e.log.Info().
		Str("from", result.From).
		Str("to", result.To).
		Int64("amount", result.Amount).
		Msg("transfer committed")
	return &result, nil
}
