package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type recordingQueue struct {
	mu       sync.Mutex
	enqueued []string
}

func (q *recordingQueue) Enqueue(requestID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueued = append(q.enqueued, requestID)
}

func (q *recordingQueue) ids() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.enqueued...)
}

func TestReconciler_SweepReenqueuesStale(t *testing.T) {
	stale := approvedRequest("STALE1")
	fresh := approvedRequest("FRESH1")
	fresh.UpdatedAt = time.Now().UTC() // too recent, first attempt may still run
	minted := approvedRequest("DONE1")
	minted.TransactionRef = "0xTX"

	repo := newMemRequestRepo(stale, fresh, minted)
	sink := &recordingQueue{}
	r := NewReconciler(repo, sink, time.Minute, 10*time.Minute, zerolog.Nop())

	r.sweep(context.Background())

	ids := sink.ids()
	if len(ids) != 1 || ids[0] != "STALE1" {
		t.Fatalf("expected only the stale unminted request, got %v", ids)
	}
}

func TestReconciler_SweepEmptyEnqueuesNothing(t *testing.T) {
	repo := newMemRequestRepo()
	sink := &recordingQueue{}
	r := NewReconciler(repo, sink, time.Minute, 10*time.Minute, zerolog.Nop())

	r.sweep(context.Background())

	if len(sink.ids()) != 0 {
		t.Fatalf("expected no enqueues, got %v", sink.ids())
	}
}
