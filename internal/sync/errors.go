// Package sync orchestrates synchronization runs: it walks the configured
// organizations and locations, pulls the POS feeds, and hands snapshots to
// the writer, tracking each target as its own run.
package sync

import (
	"errors"
	"fmt"

	"github.com/canopyhq/pos-sync-server/internal/pos"
)

// Severity buckets an error by how much of the sync it poisons.
type Severity int

const (
	// SeverityItem means one record is bad; skip it and keep the run going.
	SeverityItem Severity = iota

	// SeverityRun means the current target's run fails, but other targets
	// still get their turn.
	SeverityRun

	// SeverityFatal means local persistence is broken; abort the whole
	// cycle rather than fail every remaining target the same way.
	SeverityFatal
)

// ConfigurationError marks a target that cannot be synced as configured,
// typically missing POS credentials. The target's run fails; the
// configuration is reported, not guessed around.
type ConfigurationError struct {
	Target string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("target %s is not configured for sync: %s", e.Target, e.Reason)
}

// ReconciliationError wraps a failure writing a snapshot locally. Unlike a
// feed problem this is on our side and will hit every target, so it aborts
// the cycle.
type ReconciliationError struct {
	Target string
	Err    error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("failed to reconcile %s: %v", e.Target, e.Err)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

// Classify maps an error to its severity. Unknown errors default to
// SeverityRun: the target fails, the cycle continues.
func Classify(err error) Severity {
	var validationErr *pos.ValidationError
	if errors.As(err, &validationErr) {
		return SeverityItem
	}
	var reconcileErr *ReconciliationError
	if errors.As(err, &reconcileErr) {
		return SeverityFatal
	}
	return SeverityRun
}
