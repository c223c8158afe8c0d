package ledger

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"

	"github.com/landledger/property-transfer/internal/core/domain"
)

const testContract = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

type fakeBackend struct {
	mu            sync.Mutex
	sent          []*types.Transaction
	sendErr       error
	nonceErr      error
	receiptStatus uint64
	// receiptAfter withholds the receipt for the first n polls.
	receiptAfter int
	polls        int
}

func (b *fakeBackend) PendingNonceAt(_ context.Context, _ common.Address) (uint64, error) {
	if b.nonceErr != nil {
		return 0, b.nonceErr
	}
	return 7, nil
}

func (b *fakeBackend) SuggestGasPrice(_ context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (b *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sendErr != nil {
		return b.sendErr
	}
	b.sent = append(b.sent, tx)
	return nil
}

func (b *fakeBackend) TransactionReceipt(_ context.Context, txHash common.Hash) (*types.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.polls++
	if b.polls <= b.receiptAfter {
		return nil, ethereum.NotFound
	}
	return &types.Receipt{Status: b.receiptStatus, TxHash: txHash}, nil
}

func newTestClient(t *testing.T, backend Backend, confirmTimeout time.Duration) *Client {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signer := &LocalSigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainID: big.NewInt(1337),
	}
	c, err := NewClient(backend, signer, Options{
		ContractAddress: testContract,
		GasLimit:        500_000,
		ConfirmTimeout:  confirmTimeout,
		PollInterval:    5 * time.Millisecond,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

func mintRequest() *domain.PropertyRequest {
	return &domain.PropertyRequest{
		RequestID:    "K2H5X90ABCD12340",
		SellerWallet: "0x1111111111111111111111111111111111111111",
		BuyerWallet:  "0x2222222222222222222222222222222222222222",
		Description:  "plot 7, block C",
		Price:        "1.5",
	}
}

func TestClient_Mint_Confirmed(t *testing.T) {
	backend := &fakeBackend{receiptStatus: types.ReceiptStatusSuccessful, receiptAfter: 2}
	c := newTestClient(t, backend, time.Second)

	ref, err := c.Mint(context.Background(), mintRequest())
	if err != nil {
		t.Fatalf("Mint returned error: %v", err)
	}
	if len(backend.sent) != 1 {
		t.Fatalf("expected one submitted transaction, got %d", len(backend.sent))
	}
	if ref != backend.sent[0].Hash().Hex() {
		t.Fatalf("reference %q does not match submitted transaction %q", ref, backend.sent[0].Hash().Hex())
	}
	if to := backend.sent[0].To(); to == nil || *to != common.HexToAddress(testContract) {
		t.Fatalf("transaction not addressed to the contract: %v", to)
	}
}

func TestClient_Mint_Reverted(t *testing.T) {
	backend := &fakeBackend{receiptStatus: types.ReceiptStatusFailed}
	c := newTestClient(t, backend, time.Second)

	_, err := c.Mint(context.Background(), mintRequest())
	if !errors.Is(err, domain.ErrLedgerRejected) {
		t.Fatalf("expected ErrLedgerRejected for a reverted transaction, got %v", err)
	}
}

func TestClient_Mint_NodeDown(t *testing.T) {
	backend := &fakeBackend{nonceErr: errors.New("connection refused")}
	c := newTestClient(t, backend, time.Second)

	_, err := c.Mint(context.Background(), mintRequest())
	if !errors.Is(err, domain.ErrLedgerUnreachable) {
		t.Fatalf("expected ErrLedgerUnreachable, got %v", err)
	}
}

func TestClient_Mint_NodeRefusesTransaction(t *testing.T) {
	backend := &fakeBackend{sendErr: errors.New("insufficient funds for gas")}
	c := newTestClient(t, backend, time.Second)

	_, err := c.Mint(context.Background(), mintRequest())
	if !errors.Is(err, domain.ErrLedgerRejected) {
		t.Fatalf("expected ErrLedgerRejected when the node refuses, got %v", err)
	}
}

func TestClient_Mint_ConfirmationTimeoutIsUnknownOutcome(t *testing.T) {
	// The receipt never arrives inside the confirmation window.
	backend := &fakeBackend{receiptStatus: types.ReceiptStatusSuccessful, receiptAfter: 1 << 30}
	c := newTestClient(t, backend, 50*time.Millisecond)

	_, err := c.Mint(context.Background(), mintRequest())
	if !errors.Is(err, domain.ErrLedgerUnreachable) {
		t.Fatalf("expected ErrLedgerUnreachable on confirmation timeout, got %v", err)
	}
	// The transaction was still submitted; callers must treat this as
	// "unknown outcome", not "failed".
	if len(backend.sent) != 1 {
		t.Fatalf("expected the transaction to have been submitted, got %d", len(backend.sent))
	}
}

func TestClient_Mint_BadPriceRejectedBeforeSubmission(t *testing.T) {
	backend := &fakeBackend{receiptStatus: types.ReceiptStatusSuccessful}
	c := newTestClient(t, backend, time.Second)

	req := mintRequest()
	req.Price = "not-a-number"
	_, err := c.Mint(context.Background(), req)
	if !errors.Is(err, domain.ErrLedgerRejected) {
		t.Fatalf("expected ErrLedgerRejected, got %v", err)
	}
	if len(backend.sent) != 0 {
		t.Fatalf("nothing must reach the node for an invalid price")
	}
}

func TestToWei(t *testing.T) {
	cases := []struct {
		price string
		want  string
	}{
		{"1", "1000000000000000000"},
		{"1.5", "1500000000000000000"},
		{"0.000000000000000001", "1"},
		// below one wei truncates to zero
		{"0.0000000000000000001", "0"},
		{"12345.6789", "12345678900000000000000"},
	}
	for _, tc := range cases {
		got, err := toWei(tc.price)
		if err != nil {
			t.Fatalf("toWei(%q) returned error: %v", tc.price, err)
		}
		if got.String() != tc.want {
			t.Fatalf("toWei(%q) = %s, want %s", tc.price, got, tc.want)
		}
	}

	for _, bad := range []string{"", "abc", "0", "-1"} {
		if _, err := toWei(bad); err == nil {
			t.Fatalf("toWei(%q) should fail", bad)
		}
	}
}
