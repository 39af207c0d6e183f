package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/ledger-system/internal/core/domain"
	"github.com/99minutos/ledger-system/internal/core/ports"
)

func TestLedgerService_Login(t *testing.T) {
	f := newFixture(t, SessionOptions{}, CSRFOptions{})
	ctx := context.Background()

	sid, err := f.ledger.Login(ctx, "alex", "123456")
	require.NoError(t, err)
	assert.NotEmpty(t, sid)
	assert.Equal(t, 1, f.ledger.SessionCount())

	_, err = f.ledger.Login(ctx, "alex", "wrong")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = f.ledger.Login(ctx, "nobody", "123456")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Equal(t, 1, f.ledger.SessionCount())
}

func TestLedgerService_ViewAccount(t *testing.T) {
	f := newFixture(t, SessionOptions{}, CSRFOptions{})
	ctx := context.Background()

	view, err := f.ledger.ViewAccount(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, view, "anonymous callers get no account view")

	sid, err := f.ledger.Login(ctx, "katy", "123456")
	require.NoError(t, err)

	first, err := f.ledger.ViewAccount(ctx, sid)
	require.NoError(t, err)
	second, err := f.ledger.ViewAccount(ctx, sid)
	require.NoError(t, err)

	assert.Equal(t, "katy", first.Username)
	assert.Equal(t, int64(300), first.Balance)
	assert.NotEqual(t, first.CSRFToken, second.CSRFToken, "each view issues a fresh token")
	assert.Equal(t, 2, f.ledger.CSRFTokenCount())
}

func TestLedgerService_Logout(t *testing.T) {
	f := newFixture(t, SessionOptions{}, CSRFOptions{})
	ctx := context.Background()
	sid, tok := f.login(t, "alex")

	require.NoError(t, f.ledger.Logout(ctx, sid))

	view, err := f.ledger.ViewAccount(ctx, sid)
	require.NoError(t, err)
	assert.Nil(t, view)

	_, err = f.ledger.Transfer(ctx, ports.TransferInput{SessionID: sid, CSRFToken: tok, Recipient: "john", Amount: "1"})
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

// Two users log in, alex sends john 100, then a forged request carrying a
// token alex never received is refused without moving money.
func TestLedgerService_EndToEnd(t *testing.T) {
	f := newFixture(t, SessionOptions{}, CSRFOptions{})
	ctx := context.Background()

	alexSID, alexTok := f.login(t, "alex")
	johnSID, _ := f.login(t, "john")

	_, err := f.ledger.Transfer(ctx, ports.TransferInput{
		SessionID: alexSID, CSRFToken: alexTok, Recipient: "john", Amount: "100",
	})
	require.NoError(t, err)

	alexView, err := f.ledger.ViewAccount(ctx, alexSID)
	require.NoError(t, err)
	johnView, err := f.ledger.ViewAccount(ctx, johnSID)
	require.NoError(t, err)
	assert.Equal(t, int64(200), alexView.Balance)
	assert.Equal(t, int64(400), johnView.Balance)

	_, err = f.ledger.Transfer(ctx, ports.TransferInput{
		SessionID: alexSID, CSRFToken: "attacker-guess", Recipient: "katy", Amount: "50",
	})
	require.ErrorIs(t, err, domain.ErrInvalidCSRF)
	assert.Equal(t, int64(200), f.balance(t, "alex"))
	assert.Equal(t, int64(300), f.balance(t, "katy"))
}

func TestLedgerService_SessionSurvivesReload(t *testing.T) {
	f := newFixture(t, SessionOptions{}, CSRFOptions{})
	ctx := context.Background()
	sid, err := f.ledger.Login(ctx, "john", "123456")
	require.NoError(t, err)

	reloaded := NewSessionManager(f.sessionRepo, f.users, SessionOptions{}, f.sessions.log)
	require.NoError(t, reloaded.Load(ctx))

	u, ok := reloaded.Resolve(sid)
	require.True(t, ok)
	assert.Equal(t, "john", u.Username)
}
