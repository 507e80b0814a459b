// Package state tracks sync runs: an in-process registry that answers
// "what changed since T" queries and wakes long-poll subscribers, plus a
// service that drives the run phase machine and persists each mutation.
package state

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/canopyhq/pos-sync-server/internal/status"
)

type waiter struct {
	since time.Time
	ch    chan []*status.SyncRun
}

// maxRunsPerScope bounds how many runs the registry keeps per scope. The
// full history lives in the sync_run table; the registry only holds the
// most recent runs so a long-lived process does not grow without bound.
const maxRunsPerScope = 10

// RunRegistry holds the most recent runs per scope and notifies long-poll
// subscribers when any run mutates. Subscriptions fire at most once and
// are then discarded; clients re-subscribe with a newer watermark.
type RunRegistry struct {
	mu      sync.Mutex
	runs    map[uuid.UUID]*status.SyncRun
	byScope map[string][]uuid.UUID
	waiters map[uint64]*waiter
	nextID  uint64
}

// NewRunRegistry creates an empty registry.
func NewRunRegistry() *RunRegistry {
	return &RunRegistry{
		runs:    make(map[uuid.UUID]*status.SyncRun),
		byScope: make(map[string][]uuid.UUID),
		waiters: make(map[uint64]*waiter),
	}
}

// Record stores a snapshot of the run and wakes every subscriber whose
// watermark the mutation passes. Once a scope exceeds its retention bound
// the oldest run for that scope is dropped; runs are created in time order,
// so the in-flight run is always the newest and never evicted.
func (r *RunRegistry) Record(run *status.SyncRun) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, known := r.runs[run.ID]; !known {
		key := run.Scope.Key()
		ids := append(r.byScope[key], run.ID)
		if len(ids) > maxRunsPerScope {
			delete(r.runs, ids[0])
			ids = ids[1:]
		}
		r.byScope[key] = ids
	}
	r.runs[run.ID] = run.Clone()

	for id, w := range r.waiters {
		if !run.Modified.After(w.since) {
			continue
		}
		w.ch <- r.modifiedSinceLocked(w.since)
		delete(r.waiters, id)
	}
}

// Get returns a copy of one run, or nil.
func (r *RunRegistry) Get(id uuid.UUID) *status.SyncRun {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[id]
	if !ok {
		return nil
	}
	return run.Clone()
}

// ModifiedSince returns copies of all runs mutated strictly after since,
// oldest first.
func (r *RunRegistry) ModifiedSince(since time.Time) []*status.SyncRun {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.modifiedSinceLocked(since)
}

func (r *RunRegistry) modifiedSinceLocked(since time.Time) []*status.SyncRun {
	var out []*status.SyncRun
	for _, run := range r.runs {
		if run.Modified.After(since) {
			out = append(out, run.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Modified.Before(out[j].Modified) })
	return out
}

// Recent returns up to limit runs, most recently modified first.
func (r *RunRegistry) Recent(limit int) []*status.SyncRun {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*status.SyncRun, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, run.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Modified.After(out[j].Modified) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Subscribe registers a one-shot subscription for mutations strictly after
// since. If such runs already exist the channel is satisfied immediately.
// The returned cancel function releases the subscription; it is safe to
// call after delivery.
func (r *RunRegistry) Subscribe(since time.Time) (<-chan []*status.SyncRun, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// buffered so Record never blocks on a slow subscriber
	ch := make(chan []*status.SyncRun, 1)

	if existing := r.modifiedSinceLocked(since); len(existing) > 0 {
		ch <- existing
		return ch, func() {}
	}

	id := r.nextID
	r.nextID++
	r.waiters[id] = &waiter{since: since, ch: ch}

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.waiters, id)
	}
	return ch, cancel
}
