package ports

import (
	"context"

	"github.com/landledger/property-transfer/internal/core/domain"
)

// CreateRequestInput carries the fields of a new property transfer request.
// DocumentRef references a blob already accepted by the upload collaborator;
// the service deletes it on every failure exit so no orphaned file survives
// a rejected creation.
type CreateRequestInput struct {
	SellerWallet string
	BuyerWallet  string
	Description  string
	Price        string
	DocumentRef  string
}

// RequestService owns the property-request state machine. No other
// component mutates a PropertyRequest.
type RequestService interface {
	Create(ctx context.Context, in CreateRequestInput) (*domain.PropertyRequest, error)

	// Transition moves a pending request to approved or rejected. The
	// write is conditional on the request still being pending, so of two
	// concurrent calls exactly one succeeds. Approval commits locally
	// first and hands the mint to a background worker; a ledger failure
	// never fails the approval.
	Transition(ctx context.Context, requestID string, target domain.RequestStatus) (*domain.PropertyRequest, error)

	ListAll(ctx context.Context) ([]domain.PropertyRequest, error)
	// ListMine returns requests where the wallet is seller or buyer.
	ListMine(ctx context.Context, wallet string) ([]domain.PropertyRequest, error)
	// ListOwned returns approved requests where the wallet is the buyer.
	ListOwned(ctx context.Context, wallet string) ([]domain.PropertyRequest, error)
}
