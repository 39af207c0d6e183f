package domain

import "errors"

var (
	ErrInvalidAmount     = errors.New("amount must be a positive integer")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrInvalidCSRF       = errors.New("invalid csrf token")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSelfTransfer      = errors.New("cannot transfer to the same account")

	// ErrStorage wraps every persistence failure surfaced to callers.
	ErrStorage = errors.New("storage failure")

	ErrTokenCollision = errors.New("could not generate a unique identifier")
)
