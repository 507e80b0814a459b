package writer

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/canopyhq/pos-sync-server/internal/db/sqlc"
	"github.com/canopyhq/pos-sync-server/internal/logger"
	"github.com/canopyhq/pos-sync-server/internal/pos"
)

// dbSyncWriter persists snapshots into PostgreSQL through the generated
// sqlc queries.
type dbSyncWriter struct {
	pool *pgxpool.Pool
}

// NewDBSyncWriter creates a SyncWriter backed by the given pool.
func NewDBSyncWriter(pool *pgxpool.Pool) SyncWriter {
	return &dbSyncWriter{pool: pool}
}

// ReconcileInventory sweeps and re-upserts one location's catalog in a
// single serializable transaction so readers never observe the swept
// intermediate state.
func (w *dbSyncWriter) ReconcileInventory(ctx context.Context, locationID string, items []*pos.InventoryItem, actor string) (*InventoryResult, error) {
	tx, err := w.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin inventory transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			logger.Errorf("Failed to rollback inventory transaction: %v", err)
		}
	}()

	q := sqlc.New(tx)

	swept, err := q.SweepLocationProducts(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to sweep products for location %s: %w", locationID, err)
	}

	for _, item := range items {
		if err := w.upsertItem(ctx, q, locationID, item, actor); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit inventory transaction: %w", err)
	}

	return &InventoryResult{Upserted: len(items), Swept: swept}, nil
}

func (w *dbSyncWriter) upsertItem(ctx context.Context, q *sqlc.Queries, locationID string, item *pos.InventoryItem, actor string) error {
	productID, err := q.UpsertProduct(ctx, sqlc.UpsertProductParams{
		LocationID:         locationID,
		PosID:              item.PosID,
		Name:               item.Name,
		Category:           item.Category,
		Strain:             item.Strain,
		Quantity:           item.Quantity,
		PricingType:        string(item.PricingType),
		NotAvailableOnline: item.NotAvailableOnline,
		Deleted:            Hidden(item),
		CreatedBy:          actor,
		ModifiedBy:         actor,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", item.PosID, err)
	}

	pricingID, err := q.UpsertProductPricing(ctx, sqlc.UpsertProductPricingParams{
		ProductID:   productID,
		UnitPrice:   item.UnitPrice,
		PricingTier: item.PricingTier,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert pricing for product %s: %w", item.PosID, err)
	}

	// Weight tiers are replaced wholesale; the feed is the only source of
	// truth for them.
	if err := q.DeletePricingWeights(ctx, pricingID); err != nil {
		return fmt.Errorf("failed to clear weight tiers for product %s: %w", item.PosID, err)
	}
	for _, wp := range item.WeightPrices {
		if err := q.InsertPricingWeight(ctx, sqlc.InsertPricingWeightParams{
			PricingID:   pricingID,
			WeightLabel: wp.Label,
			Price:       wp.Price,
		}); err != nil {
			return fmt.Errorf("failed to insert weight tier for product %s: %w", item.PosID, err)
		}
	}

	for _, img := range item.Images {
		if err := q.UpsertProductImage(ctx, sqlc.UpsertProductImageParams{
			ProductID: productID,
			Size:      img.Size,
			Url:       img.URL,
		}); err != nil {
			return fmt.Errorf("failed to upsert image for product %s: %w", item.PosID, err)
		}
	}

	return nil
}

// UpsertCustomers stages one page into a temp table with COPY and merges it
// into pos_customer in a single statement. The temp table drops on commit.
func (w *dbSyncWriter) UpsertCustomers(ctx context.Context, vendor string, records []*pos.CustomerRecord, actor string) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := w.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to begin customer transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			logger.Errorf("Failed to rollback customer transaction: %v", err)
		}
	}()

	q := sqlc.New(tx)

	if err := q.CreateTempCustomerTable(ctx); err != nil {
		return 0, fmt.Errorf("failed to create temp customer table: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"temp_pos_customer"},
		[]string{"vendor", "pos_org_id", "pos_id", "first_name", "last_name", "email", "phone", "modified_by"},
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			r := records[i]
			return []any{vendor, r.PosOrgID, r.PosID, r.FirstName, r.LastName, r.Email, r.Phone, actor}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy customers into temp table: %w", err)
	}

	affected, err := q.UpsertCustomersFromTemp(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert customers: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit customer transaction: %w", err)
	}

	return affected, nil
}
