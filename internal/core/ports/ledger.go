package ports

import (
	"context"

	"github.com/landledger/property-transfer/internal/core/domain"
)

// LedgerClient submits a mint call to the external chain and waits for
// confirmation. It is a remote, fallible, slow dependency: a timeout means
// "unknown outcome", not "failure": the transaction may still land after
// the call returns. It never persists state.
type LedgerClient interface {
	// Mint records the transfer on-chain and returns the transaction
	// reference. Fails with domain.ErrLedgerUnreachable,
	// domain.ErrLedgerRejected, or domain.ErrSignerFailure.
	Mint(ctx context.Context, r *domain.PropertyRequest) (string, error)
}

// MintQueue decouples the approval transition from the ledger round-trip.
// A job, once enqueued, runs to completion or timeout independent of the
// triggering call's lifetime.
type MintQueue interface {
	Enqueue(requestID string)
}
