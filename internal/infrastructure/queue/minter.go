package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/landledger/property-transfer/internal/api/metrics"
	"github.com/landledger/property-transfer/internal/core/domain"
	"github.com/landledger/property-transfer/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// InFlightGuard abstracts the Redis mint guard.
type InFlightGuard interface {
	Acquire(ctx context.Context, requestID string) (bool, error)
	Release(ctx context.Context, requestID string) error
}

// Minter executes mint jobs on a fixed set of workers, sharded by request
// id so retries of the same request never run concurrently with each
// other. Jobs run on a detached context: abandoning the approval call that
// enqueued a mint does not abort it.
type Minter struct {
	workers  []chan string
	requests ports.RequestRepository
	ledger   ports.LedgerClient
	guard    InFlightGuard
	log      zerolog.Logger
}

func NewMinter(numWorkers int, requests ports.RequestRepository, ledger ports.LedgerClient, guard InFlightGuard, log zerolog.Logger) *Minter {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	m := &Minter{
		workers:  make([]chan string, numWorkers),
		requests: requests,
		ledger:   ledger,
		guard:    guard,
		log:      log,
	}
	for i := range m.workers {
		m.workers[i] = make(chan string, channelBuffer)
	}
	return m
}

// Start launches the worker goroutines. Workers stop when ctx is
// cancelled; an in-progress mint still runs to completion or timeout.
func (m *Minter) Start(ctx context.Context) {
	for i, ch := range m.workers {
		go m.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a request id to its worker. Non-blocking up to the channel
// buffer; beyond that the reconciliation sweep picks the request up later.
func (m *Minter) Enqueue(requestID string) {
	i := m.shardIndex(requestID)
	select {
	case m.workers[i] <- requestID:
		metrics.MintQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(m.workers[i])))
	default:
		m.log.Warn().Str("request_id", requestID).Msg("mint queue full, deferring to reconciler")
	}
}

func (m *Minter) shardIndex(requestID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(requestID))
	return int(h.Sum32()) % len(m.workers)
}

func (m *Minter) runWorker(ctx context.Context, id int, ch <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case requestID, ok := <-ch:
			if !ok {
				return
			}
			metrics.MintQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
			m.process(requestID)
		}
	}
}

// process runs one mint attempt. The context is detached from whatever
// call enqueued the job; only the ledger round-trip itself is bounded.
func (m *Minter) process(requestID string) {
	ctx := context.Background()
	log := m.log.With().Str("request_id", requestID).Logger()

	held, err := m.guard.Acquire(ctx, requestID)
	if err != nil {
		// Proceed unguarded, but remember we own no claim: releasing one
		// we never acquired could drop another worker's in-flight claim.
		held = false
		log.Warn().Err(err).Msg("mint guard unavailable, proceeding unguarded")
	} else if !held {
		log.Debug().Msg("mint already in flight, skipping")
		return
	}

	req, err := m.requests.FindByRequestID(ctx, requestID)
	if err != nil {
		log.Error().Err(err).Msg("mint job: request lookup failed")
		m.release(ctx, requestID, held)
		return
	}
	if req.Status != domain.StatusApproved || req.Minted() {
		m.release(ctx, requestID, held)
		return
	}

	start := time.Now()
	ref, err := m.ledger.Mint(ctx, req)
	metrics.MintDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.MintsTotal.WithLabelValues(mintOutcome(err)).Inc()
		// The request stays approved with a null transaction reference;
		// the reconciler retries and operators can spot the sub-state.
		log.Error().Err(err).Msg("mint failed, request remains approved without transaction reference")

		if errors.Is(err, domain.ErrLedgerUnreachable) {
			// Unknown outcome: keep the guard claim until its TTL
			// expires so an immediate retry cannot double-submit.
			return
		}
		m.release(ctx, requestID, held)
		return
	}

	if err := m.requests.SetTransactionRefIfNull(ctx, requestID, ref); err != nil {
		log.Error().Err(err).Str("tx", ref).Msg("mint succeeded but reference not persisted")
	} else {
		log.Info().Str("tx", ref).Msg("mint confirmed")
		metrics.MintsTotal.WithLabelValues("confirmed").Inc()
	}
	m.release(ctx, requestID, held)
}

// release frees the guard claim, but only when this worker acquired it.
func (m *Minter) release(ctx context.Context, requestID string, held bool) {
	if !held {
		return
	}
	if err := m.guard.Release(ctx, requestID); err != nil {
		m.log.Warn().Err(err).Str("request_id", requestID).Msg("mint guard release failed")
	}
}

func mintOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrLedgerUnreachable):
		return "unreachable"
	case errors.Is(err, domain.ErrSignerFailure):
		return "signer_error"
	default:
		return "rejected"
	}
}
