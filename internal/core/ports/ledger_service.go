package ports

import "context"

// AccountView is what an authenticated caller sees of their own account.
type AccountView struct {
	Username  string
	Balance   int64
	CSRFToken string
}

// TransferInput carries a raw transfer request as received from the caller.
// Amount is kept unparsed so that validation happens in one place.
type TransferInput struct {
	SessionID string
	CSRFToken string
	Recipient string
	Amount    string
}

// TransferResult is returned after a committed transfer.
type TransferResult struct {
	From    string
	To      string
	Amount  int64
	Balance int64 // sender balance after the transfer
}

// LedgerService is the inbound operation surface.
type LedgerService interface {
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, sessionID string) error
	// ViewAccount returns nil without error for anonymous callers.
	ViewAccount(ctx context.Context, sessionID string) (*AccountView, error)
	Transfer(ctx context.Context, in TransferInput) (*TransferResult, error)
}
