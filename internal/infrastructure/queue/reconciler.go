package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/landledger/property-transfer/internal/api/metrics"
	"github.com/landledger/property-transfer/internal/core/ports"
)

// Reconciler periodically sweeps approved requests that still lack a
// transaction reference and re-enqueues their mint. Together with the
// in-flight guard and the set-once reference write this gives the ledger
// an at-least-once contract without double-minting.
type Reconciler struct {
	requests ports.RequestRepository
	mints    ports.MintQueue
	interval time.Duration
	// minAge keeps the sweep away from requests whose first mint attempt
	// may still be running.
	minAge time.Duration
	log    zerolog.Logger
}

func NewReconciler(requests ports.RequestRepository, mints ports.MintQueue, interval, minAge time.Duration, log zerolog.Logger) *Reconciler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if minAge <= 0 {
		minAge = 10 * time.Minute
	}
	return &Reconciler{
		requests: requests,
		mints:    mints,
		interval: interval,
		minAge:   minAge,
		log:      log,
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (r *Reconciler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.sweep(ctx)
			}
		}
	}()
}

func (r *Reconciler) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-r.minAge)
	stale, err := r.requests.ListApprovedUnminted(ctx, cutoff)
	if err != nil {
		r.log.Error().Err(err).Msg("reconciler sweep failed")
		return
	}

	metrics.UnmintedApproved.Set(float64(len(stale)))
	if len(stale) == 0 {
		return
	}

	r.log.Warn().Int("count", len(stale)).Msg("approved requests without transaction reference, re-enqueueing mints")
	for i := range stale {
		r.mints.Enqueue(stale[i].RequestID)
	}
}
