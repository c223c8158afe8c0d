package domain

import "time"

// RequestStatus represents the lifecycle state of a property transfer request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// Terminal reports whether no further transition is permitted from s.
// A retried transition on a terminal request must fail, never silently
// succeed, to prevent double-minting.
func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ValidTarget reports whether s is a status a transition may move to.
func (s RequestStatus) ValidTarget() bool {
	return s == StatusApproved || s == StatusRejected
}

// PropertyRequest is the core workflow aggregate. It is created by an end
// user, mutated only through status transitions, and never deleted; the
// full history of transfer attempts is retained.
type PropertyRequest struct {
	ID           string `json:"id"`
	RequestID    string `json:"request_id"`
	SellerWallet string `json:"seller_wallet_address"`
	BuyerWallet  string `json:"buyer_wallet_address"`
	Description  string `json:"full_description"`
	// Price is a positive decimal carried as a string so no precision is
	// lost between the API, storage, and the ledger's wei conversion.
	Price          string        `json:"property_price"`
	DocumentRef    string        `json:"ownership_document"`
	Status         RequestStatus `json:"status"`
	TransactionRef string        `json:"transaction_hash,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Minted reports whether the request has been reflected on the ledger.
// An approved request with Minted() == false is the reconciliation
// sub-state: approved locally, not yet on-chain.
func (r *PropertyRequest) Minted() bool {
	return r.TransactionRef != ""
}
