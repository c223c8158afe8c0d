package service

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/landledger/property-transfer/internal/core/domain"
	"github.com/landledger/property-transfer/internal/core/ports"
)

// RequestService implements the property-request lifecycle.
type RequestService struct {
	requests   ports.RequestRepository
	principals ports.PrincipalRepository
	blobs      ports.BlobStore
	mints      ports.MintQueue
	log        zerolog.Logger
}

func NewRequestService(
	requests ports.RequestRepository,
	principals ports.PrincipalRepository,
	blobs ports.BlobStore,
	mints ports.MintQueue,
	log zerolog.Logger,
) *RequestService {
	return &RequestService{
		requests:   requests,
		principals: principals,
		blobs:      blobs,
		mints:      mints,
		log:        log,
	}
}

// Create validates and persists a new pending request. Checks run in a
// fixed order and the first failure wins. An already-uploaded document is
// deleted on every failure exit.
func (s *RequestService) Create(ctx context.Context, in ports.CreateRequestInput) (*domain.PropertyRequest, error) {
	req, err := s.create(ctx, in)
	if err != nil && in.DocumentRef != "" {
		if delErr := s.blobs.Delete(ctx, in.DocumentRef); delErr != nil {
			s.log.Warn().Err(delErr).Str("document", in.DocumentRef).Msg("failed to delete orphaned upload")
		}
	}
	return req, err
}

func (s *RequestService) create(ctx context.Context, in ports.CreateRequestInput) (*domain.PropertyRequest, error) {
	seller := strings.TrimSpace(in.SellerWallet)
	buyer := strings.TrimSpace(in.BuyerWallet)

	for _, wallet := range []string{seller, buyer} {
		if _, err := s.principals.FindEndUserByWallet(ctx, wallet); err != nil {
			if isNotFound(err) {
				return nil, &domain.UnregisteredWalletError{Address: wallet}
			}
			return nil, err
		}
	}

	description := strings.TrimSpace(in.Description)
	price := strings.TrimSpace(in.Price)
	if description == "" || price == "" {
		return nil, domain.ErrMissingFields
	}
	if !validPrice(price) {
		return nil, domain.ErrInvalidPrice
	}
	if in.DocumentRef == "" {
		return nil, domain.ErrMissingDocument
	}

	now := time.Now().UTC()
	req := &domain.PropertyRequest{
		RequestID:    newRequestID(now),
		SellerWallet: seller,
		BuyerWallet:  buyer,
		Description:  description,
		Price:        price,
		DocumentRef:  in.DocumentRef,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.requests.Insert(ctx, req); err != nil {
		s.log.Error().Err(err).Msg("failed to create property request")
		return nil, err
	}

	s.log.Info().Str("request_id", req.RequestID).Str("seller", seller).Str("buyer", buyer).Msg("property request created")
	return req, nil
}

// Transition moves a request out of pending. Rejection is a pure state
// write. Approval commits locally first and then hands the mint to the
// background queue: the request is approved regardless of ledger outcome,
// and an approved request with no transaction reference is the observable
// "approved locally, not yet on-chain" sub-state.
func (s *RequestService) Transition(ctx context.Context, requestID string, target domain.RequestStatus) (*domain.PropertyRequest, error) {
	if !target.ValidTarget() {
		return nil, domain.ErrInvalidTransition
	}

	req, err := s.requests.TransitionIfPending(ctx, requestID, target)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("request_id", requestID).Str("status", string(target)).Msg("request transitioned")

	if target == domain.StatusApproved {
		s.mints.Enqueue(req.RequestID)
	}
	return req, nil
}

func (s *RequestService) ListAll(ctx context.Context) ([]domain.PropertyRequest, error) {
	return s.requests.ListAll(ctx)
}

func (s *RequestService) ListMine(ctx context.Context, wallet string) ([]domain.PropertyRequest, error) {
	return s.requests.ListByWallet(ctx, wallet)
}

func (s *RequestService) ListOwned(ctx context.Context, wallet string) ([]domain.PropertyRequest, error) {
	return s.requests.ListOwnedBy(ctx, wallet)
}

// validPrice reports whether s parses as a positive decimal. big.Rat keeps
// the check exact for values beyond float64 precision.
func validPrice(s string) bool {
	r, ok := new(big.Rat).SetString(s)
	return ok && r.Sign() > 0
}

const requestIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// newRequestID builds the 16-character request identifier: base36
// milliseconds plus a 4-character random suffix, uppercased and
// zero-padded. Low collision probability, enforced unique at storage.
func newRequestID(now time.Time) string {
	id := strconv.FormatInt(now.UnixMilli(), 36) + randomBase36(4)
	id = strings.ToUpper(id)
	for len(id) < 16 {
		id += "0"
	}
	return id[:16]
}

func randomBase36(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// fallback: derive from the clock
		return strconv.FormatInt(time.Now().UnixNano(), 36)[:n]
	}
	for i := range b {
		b[i] = requestIDAlphabet[int(b[i])%len(requestIDAlphabet)]
	}
	return string(b)
}
