// Package ledger talks to the property-verification contract on an EVM
// chain. It submits the mint transaction and waits for its receipt; it
// never persists anything, so outcomes are the caller's to record.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/landledger/property-transfer/internal/core/domain"
)

// mintABI describes the single contract entry point this service calls.
const mintABI = `[{
	"type": "function",
	"name": "createPropertyToken",
	"stateMutability": "nonpayable",
	"inputs": [
		{"name": "tokenURI", "type": "string"},
		{"name": "price", "type": "uint256"},
		{"name": "buyer", "type": "address"},
		{"name": "description", "type": "string"}
	],
	"outputs": [{"name": "tokenId", "type": "uint256"}]
}]`

const defaultConfirmTimeout = 90 * time.Second

// Backend is the subset of ethclient.Client the ledger client needs,
// abstracted so tests can run against a fake node.
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Signer holds the submitting account. Key custody stays behind this
// interface; the client never sees private-key material.
type Signer interface {
	Address() common.Address
	SignTx(ctx context.Context, tx *types.Transaction) (*types.Transaction, error)
}

// Options configures a Client.
type Options struct {
	ContractAddress string
	GasLimit        uint64
	// ConfirmTimeout bounds the wait for a receipt. Expiry means the
	// outcome is unknown, not that the transaction failed.
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
}

// Client implements ports.LedgerClient against an EVM node.
type Client struct {
	backend        Backend
	signer         Signer
	contract       common.Address
	contractABI    abi.ABI
	gasLimit       uint64
	confirmTimeout time.Duration
	pollInterval   time.Duration
	log            zerolog.Logger
}

func NewClient(backend Backend, signer Signer, opts Options, log zerolog.Logger) (*Client, error) {
	parsed, err := abi.JSON(strings.NewReader(mintABI))
	if err != nil {
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}
	if !common.IsHexAddress(opts.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", opts.ContractAddress)
	}
	if opts.ConfirmTimeout <= 0 {
		opts.ConfirmTimeout = defaultConfirmTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.GasLimit == 0 {
		opts.GasLimit = 500_000
	}
	return &Client{
		backend:        backend,
		signer:         signer,
		contract:       common.HexToAddress(opts.ContractAddress),
		contractABI:    parsed,
		gasLimit:       opts.GasLimit,
		confirmTimeout: opts.ConfirmTimeout,
		pollInterval:   opts.PollInterval,
		log:            log,
	}, nil
}

// Mint records the transfer on-chain: it packs the createPropertyToken
// call, signs and submits it, and blocks until the receipt arrives or the
// confirmation timeout elapses.
func (c *Client) Mint(ctx context.Context, r *domain.PropertyRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	price, err := toWei(r.Price)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrLedgerRejected, err)
	}

	tokenURI := "ipfs://property/" + r.RequestID
	data, err := c.contractABI.Pack("createPropertyToken",
		tokenURI, price, common.HexToAddress(r.BuyerWallet), r.Description)
	if err != nil {
		return "", fmt.Errorf("%w: pack call: %v", domain.ErrLedgerRejected, err)
	}

	nonce, err := c.backend.PendingNonceAt(ctx, c.signer.Address())
	if err != nil {
		return "", fmt.Errorf("%w: nonce: %v", domain.ErrLedgerUnreachable, err)
	}
	gasPrice, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: gas price: %v", domain.ErrLedgerUnreachable, err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &c.contract,
		Gas:      c.gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := c.signer.SignTx(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSignerFailure, err)
	}

	if err := c.backend.SendTransaction(ctx, signed); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: submit: %v", domain.ErrLedgerUnreachable, err)
		}
		// The node replied and refused the transaction.
		return "", fmt.Errorf("%w: %v", domain.ErrLedgerRejected, err)
	}

	txHash := signed.Hash()
	c.log.Info().Str("request_id", r.RequestID).Str("tx", txHash.Hex()).Msg("mint transaction submitted")

	receipt, err := c.waitReceipt(ctx, txHash)
	if err != nil {
		return "", err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", fmt.Errorf("%w: transaction %s reverted", domain.ErrLedgerRejected, txHash.Hex())
	}
	return txHash.Hex(), nil
}

// waitReceipt polls for inclusion. Timeout maps to ErrLedgerUnreachable:
// the transaction was submitted and may still land, so callers must treat
// this as "unknown outcome".
func (c *Client) waitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.backend.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: receipt: %v", domain.ErrLedgerUnreachable, err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: confirmation timeout for %s", domain.ErrLedgerUnreachable, txHash.Hex())
		case <-ticker.C:
		}
	}
}

// weiPerEther is 10^18, the ledger's fixed-point scale.
var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// toWei converts a decimal price string to the ledger's native unit,
// truncating anything below one wei.
func toWei(price string) (*big.Int, error) {
	r, ok := new(big.Rat).SetString(price)
	if !ok || r.Sign() <= 0 {
		return nil, fmt.Errorf("invalid price %q", price)
	}
	r.Mul(r, new(big.Rat).SetInt(weiPerEther))
	return new(big.Int).Quo(r.Num(), r.Denom()), nil
}
