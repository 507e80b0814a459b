package state

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/canopyhq/pos-sync-server/internal/logger"
	"github.com/canopyhq/pos-sync-server/internal/status"
)

// RunStore persists run mutations for the audit trail. The registry stays
// the source for long-poll reads; the store is write-through.
type RunStore interface {
	InsertRun(ctx context.Context, run *status.SyncRun) error
	UpdateRun(ctx context.Context, run *status.SyncRun) error
}

// Service drives the run phase machine. Every mutation is recorded in the
// registry first, waking long-poll subscribers, then written through to the
// store. A store failure is logged but never fails the sync itself.
type Service struct {
	registry *RunRegistry
	store    RunStore
}

// NewService creates a run service. store may be nil, in which case runs
// live only in the registry.
func NewService(registry *RunRegistry, store RunStore) *Service {
	return &Service{registry: registry, store: store}
}

// Registry exposes the underlying registry for read paths.
func (s *Service) Registry() *RunRegistry {
	return s.registry
}

// Begin creates a run in the STARTED phase.
func (s *Service) Begin(ctx context.Context, scope status.Scope, initiatedBy string) *status.SyncRun {
	now := time.Now().UTC()
	run := &status.SyncRun{
		ID:          uuid.New(),
		Scope:       scope,
		InitiatedBy: initiatedBy,
		Status:      status.RunPhaseStarted,
		Created:     now,
		Modified:    now,
	}
	s.registry.Record(run)
	if s.store != nil {
		if err := s.store.InsertRun(ctx, run); err != nil {
			logger.Errorf("Failed to persist run %s: %v", run.ID, err)
		}
	}
	return run
}

// Transition moves the run to the next phase. Invalid transitions are
// rejected so a terminal run can never be reopened.
func (s *Service) Transition(ctx context.Context, run *status.SyncRun, next status.RunPhase) error {
	if !run.Status.CanTransition(next) {
		return fmt.Errorf("invalid run transition %s -> %s", run.Status, next)
	}
	run.Status = next
	run.Modified = time.Now().UTC()
	s.record(ctx, run)
	return nil
}

// Complete moves the run to COMPLETED with its final item count. message
// carries any non-fatal diagnostics, such as records skipped along the way;
// empty means a clean run.
func (s *Service) Complete(ctx context.Context, run *status.SyncRun, itemCount int, message string) error {
	if !run.Status.CanTransition(status.RunPhaseCompleted) {
		return fmt.Errorf("invalid run transition %s -> %s", run.Status, status.RunPhaseCompleted)
	}
	run.Status = status.RunPhaseCompleted
	run.ItemCount = itemCount
	run.Message = message
	run.Modified = time.Now().UTC()
	s.record(ctx, run)
	return nil
}

// Fail moves the run to FAILED carrying the failure message. Failing an
// already terminal run is a no-op.
func (s *Service) Fail(ctx context.Context, run *status.SyncRun, message string) {
	if run.Status.Terminal() {
		return
	}
	run.Status = status.RunPhaseFailed
	run.Message = message
	run.Modified = time.Now().UTC()
	s.record(ctx, run)
}

func (s *Service) record(ctx context.Context, run *status.SyncRun) {
	s.registry.Record(run)
	if s.store != nil {
		if err := s.store.UpdateRun(ctx, run); err != nil {
			logger.Errorf("Failed to persist run %s: %v", run.ID, err)
		}
	}
}
