package ports

import (
	"context"
	"time"

	"github.com/landledger/property-transfer/internal/core/domain"
)

// RequestRepository persists property requests. Requests are never deleted.
type RequestRepository interface {
	Insert(ctx context.Context, r *domain.PropertyRequest) error
	FindByRequestID(ctx context.Context, requestID string) (*domain.PropertyRequest, error)

	// TransitionIfPending atomically sets the status only when the stored
	// status is still pending, returning the updated request. It fails
	// with domain.ErrRequestNotFound when no request matches and
	// domain.ErrInvalidTransition when the request exists but is already
	// terminal. This conditional write is the concurrency arbiter for the
	// whole lifecycle.
	TransitionIfPending(ctx context.Context, requestID string, status domain.RequestStatus) (*domain.PropertyRequest, error)

	// SetTransactionRefIfNull records the mint outcome at most once: a
	// transaction reference, once set, is never cleared or overwritten.
	SetTransactionRefIfNull(ctx context.Context, requestID, ref string) error

	ListAll(ctx context.Context) ([]domain.PropertyRequest, error)
	ListByWallet(ctx context.Context, wallet string) ([]domain.PropertyRequest, error)
	ListOwnedBy(ctx context.Context, buyerWallet string) ([]domain.PropertyRequest, error)

	// ListApprovedUnminted returns approved requests with no transaction
	// reference whose last update is older than the cutoff. Input to the
	// reconciliation sweep.
	ListApprovedUnminted(ctx context.Context, updatedBefore time.Time) ([]domain.PropertyRequest, error)

	CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error)
}
