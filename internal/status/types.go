// Package status defines the run status state machine shared by the sync
// orchestrator, the run registry, and the HTTP API. Phase strings are the
// wire contract for any UI polling layer and must not change casually.
package status

import (
	"time"

	"github.com/google/uuid"
)

// RunPhase represents the current phase of a synchronization run
type RunPhase string

const (
	// RunPhaseStarted means the run record was created and nothing has been fetched yet
	RunPhaseStarted RunPhase = "STARTED"

	// RunPhaseStartedRemoteInventory means the inventory feed fetch has begun
	RunPhaseStartedRemoteInventory RunPhase = "STARTED_REMOTE_INVENTORY"

	// RunPhaseCompletedRemoteInventory means all inventory feed pages were fetched
	RunPhaseCompletedRemoteInventory RunPhase = "COMPLETED_REMOTE_INVENTORY"

	// RunPhaseUpdatingInventory means the local reconciliation transaction is in progress
	RunPhaseUpdatingInventory RunPhase = "UPDATING_INVENTORY"

	// RunPhaseStartedRemoteSync means the customer feed fetch has begun
	RunPhaseStartedRemoteSync RunPhase = "STARTED_REMOTE_SYNC"

	// RunPhaseCompletedRemoteSync means all customer feed pages were fetched
	RunPhaseCompletedRemoteSync RunPhase = "COMPLETED_REMOTE_SYNC"

	// RunPhaseUpdatingUsers means customer records are being upserted locally
	RunPhaseUpdatingUsers RunPhase = "UPDATING_USERS"

	// RunPhaseCompleted means the run finished successfully (terminal)
	RunPhaseCompleted RunPhase = "COMPLETED"

	// RunPhaseFailed means the run failed (terminal)
	RunPhaseFailed RunPhase = "FAILED"
)

// phaseOrder assigns each non-terminal phase a position so that transitions
// only ever move forward within a run.
var phaseOrder = map[RunPhase]int{
	RunPhaseStarted:                  0,
	RunPhaseStartedRemoteInventory:   1,
	RunPhaseStartedRemoteSync:        1,
	RunPhaseCompletedRemoteInventory: 2,
	RunPhaseCompletedRemoteSync:      2,
	RunPhaseUpdatingInventory:        3,
	RunPhaseUpdatingUsers:            3,
}

// Terminal reports whether the phase ends the run.
func (p RunPhase) Terminal() bool {
	return p == RunPhaseCompleted || p == RunPhaseFailed
}

// CanTransition reports whether a run in phase p may move to next.
// FAILED is reachable from any non-terminal phase; otherwise phases only
// move forward. Terminal phases accept no transition.
func (p RunPhase) CanTransition(next RunPhase) bool {
	if p.Terminal() {
		return false
	}
	if next == RunPhaseFailed || next == RunPhaseCompleted {
		return true
	}
	cur, ok := phaseOrder[p]
	if !ok {
		return false
	}
	nxt, ok := phaseOrder[next]
	if !ok {
		return false
	}
	return nxt > cur
}

// ScopeKind identifies what a run executed against.
type ScopeKind string

const (
	// ScopeKindLocation scopes a run to a single location (inventory sync)
	ScopeKindLocation ScopeKind = "location"

	// ScopeKindOrganization scopes a run to a whole organization (customer sync)
	ScopeKindOrganization ScopeKind = "organization"
)

// Scope identifies the target of a sync run.
type Scope struct {
	Kind       ScopeKind `json:"kind"`
	OrgID      string    `json:"org_id"`
	LocationID string    `json:"location_id,omitempty"`
}

// Key returns a stable string identity for the scope.
func (s Scope) Key() string {
	if s.Kind == ScopeKindLocation {
		return string(s.Kind) + ":" + s.OrgID + ":" + s.LocationID
	}
	return string(s.Kind) + ":" + s.OrgID
}

// SyncRun is one execution of the sync pipeline against one scope.
// Runs form an append-only audit trail: rows are mutated in place through
// the phase machine and never deleted. Once terminal, a run is read-only.
type SyncRun struct {
	ID          uuid.UUID `json:"id"`
	Scope       Scope     `json:"scope"`
	InitiatedBy string    `json:"initiated_by,omitempty"`
	Status      RunPhase  `json:"status"`
	Message     string    `json:"message,omitempty"`
	ItemCount   int       `json:"item_count"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
}

// Clone returns a copy of the run, so registry snapshots handed to
// subscribers cannot be mutated by later transitions.
func (r *SyncRun) Clone() *SyncRun {
	c := *r
	return &c
}
