package domain

import (
	"errors"
	"fmt"
)

// Auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenExpired       = errors.New("token expired")
	ErrSessionExpired     = errors.New("session expired")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrPrincipalNotFound  = errors.New("principal not found")
)

// Request lifecycle errors.
var (
	ErrRequestNotFound   = errors.New("property request not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrMissingFields     = errors.New("all fields are required")
	ErrInvalidPrice      = errors.New("invalid price value")
	ErrMissingDocument   = errors.New("ownership document is required")
)

// Ledger errors. These are operational outcomes, never surfaced as a
// failure of an already-committed approval.
var (
	ErrLedgerUnreachable = errors.New("ledger unreachable")
	ErrLedgerRejected    = errors.New("ledger rejected transaction")
	ErrSignerFailure     = errors.New("transaction signing failed")
)

// Field names used in DuplicateFieldError.
const (
	FieldUsername      = "username"
	FieldNationalID    = "national_id"
	FieldWalletAddress = "wallet_address"
)

// DuplicateFieldError reports which unique field collided during signup
// or roster creation.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	switch e.Field {
	case FieldNationalID:
		return "national ID already registered"
	case FieldWalletAddress:
		return "wallet address already registered"
	default:
		return "username already exists"
	}
}

// UnregisteredWalletError names a wallet address that does not resolve to
// an active registered end user.
type UnregisteredWalletError struct {
	Address string
}

func (e *UnregisteredWalletError) Error() string {
	return fmt.Sprintf("wallet address %s is not registered", e.Address)
}
