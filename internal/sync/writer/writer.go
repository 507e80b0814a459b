// Package writer contains the SyncWriter interface and implementations.
// The writer is the reconciliation primitive: it converges local state to a
// remote POS snapshot, either by tombstone-sweep-then-upsert (inventory,
// where absence from the feed means "gone") or by pure upsert (customers,
// where history accumulates).
package writer

import (
	"context"

	"github.com/canopyhq/pos-sync-server/internal/pos"
)

// InventoryResult summarizes one inventory reconciliation.
type InventoryResult struct {
	// Upserted is the number of products written
	Upserted int

	// Swept is the number of previously active rows tombstoned before the
	// upsert pass. Rows re-upserted during the pass come back; the rest
	// stay swept, which is how removals are represented.
	Swept int64
}

// SyncWriter persists POS snapshots into the local store.
//
//go:generate mockgen -destination=mocks/mock_sync_writer.go -package=mocks -source=writer.go SyncWriter
type SyncWriter interface {
	// ReconcileInventory runs the tombstone-sweep-then-upsert mode for one
	// location inside a single transaction: every active product for the
	// location is swept, then each item is upserted by (location, posId)
	// with its tombstone recomputed from the hide rules. Any error rolls
	// the whole transaction back.
	ReconcileInventory(ctx context.Context, locationID string, items []*pos.InventoryItem, actor string) (*InventoryResult, error)

	// UpsertCustomers runs the pure-upsert mode for one feed page: records
	// are batch-upserted by (vendor, posOrgId, posId). Each call commits
	// independently; absence from later pages never deletes a record.
	UpsertCustomers(ctx context.Context, vendor string, records []*pos.CustomerRecord, actor string) (int64, error)
}
