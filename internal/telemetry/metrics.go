// Package telemetry exposes the server's metrics through OpenTelemetry,
// exported in Prometheus format.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/canopyhq/pos-sync-server/internal/status"
)

// SyncMetrics records per-run measurements. A nil *SyncMetrics is a valid
// no-op receiver, so callers never need to branch on whether telemetry is
// enabled.
type SyncMetrics struct {
	runsTotal   metric.Int64Counter
	runDuration metric.Float64Histogram
	runItems    metric.Int64Histogram
}

// NewSyncMetrics creates the sync instruments on the given provider.
// A nil provider disables telemetry and returns a nil, still-usable value.
func NewSyncMetrics(mp metric.MeterProvider) (*SyncMetrics, error) {
	if mp == nil {
		return nil, nil
	}
	meter := mp.Meter("pos-sync-server")

	runsTotal, err := meter.Int64Counter("pos_sync_runs_total",
		metric.WithDescription("Completed sync runs by scope kind and final status"))
	if err != nil {
		return nil, fmt.Errorf("failed to create runs counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram("pos_sync_run_duration_seconds",
		metric.WithDescription("Wall-clock duration of sync runs"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	runItems, err := meter.Int64Histogram("pos_sync_run_items",
		metric.WithDescription("Items written per completed sync run"))
	if err != nil {
		return nil, fmt.Errorf("failed to create items histogram: %w", err)
	}

	return &SyncMetrics{
		runsTotal:   runsTotal,
		runDuration: runDuration,
		runItems:    runItems,
	}, nil
}

// ObserveRun records the outcome of one finished run.
func (m *SyncMetrics) ObserveRun(ctx context.Context, run *status.SyncRun, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("scope_kind", string(run.Scope.Kind)),
		attribute.String("status", string(run.Status)),
	)
	m.runsTotal.Add(ctx, 1, attrs)
	m.runDuration.Record(ctx, duration.Seconds(), attrs)
	if run.Status == status.RunPhaseCompleted {
		m.runItems.Record(ctx, int64(run.ItemCount), attrs)
	}
}
