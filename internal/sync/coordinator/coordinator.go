// Package coordinator schedules recurring sync cycles. It owns no sync
// logic itself; it only decides when the manager runs.
package coordinator

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/canopyhq/pos-sync-server/internal/config"
	"github.com/canopyhq/pos-sync-server/internal/logger"
	possync "github.com/canopyhq/pos-sync-server/internal/sync"
)

// initiatedBy identifies scheduled runs in the run audit trail.
const initiatedBy = "scheduler"

// Syncer runs sync cycles on demand.
type Syncer interface {
	SyncInventory(ctx context.Context, initiatedBy string) (*possync.Summary, error)
	SyncCustomers(ctx context.Context, initiatedBy string) (*possync.Summary, error)
}

// Coordinator triggers inventory and customer cycles on their configured
// intervals. An interval of zero disables that loop.
type Coordinator struct {
	syncer            Syncer
	inventoryInterval time.Duration
	customerInterval  time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a coordinator with explicit intervals.
func New(syncer Syncer, inventoryInterval, customerInterval time.Duration) *Coordinator {
	return &Coordinator{
		syncer:            syncer,
		inventoryInterval: inventoryInterval,
		customerInterval:  customerInterval,
	}
}

// NewFromConfig creates a coordinator from the sync configuration.
// Returns nil when no interval is configured.
func NewFromConfig(cfg *config.SyncConfig, syncer Syncer) (*Coordinator, error) {
	var inventoryInterval, customerInterval time.Duration
	var err error

	if cfg.InventoryInterval != "" {
		if inventoryInterval, err = time.ParseDuration(cfg.InventoryInterval); err != nil {
			return nil, err
		}
	}
	if cfg.CustomerInterval != "" {
		if customerInterval, err = time.ParseDuration(cfg.CustomerInterval); err != nil {
			return nil, err
		}
	}
	if inventoryInterval == 0 && customerInterval == 0 {
		return nil, nil
	}
	return New(syncer, inventoryInterval, customerInterval), nil
}

// Start launches the scheduling loops. Each loop waits a random fraction of
// its interval before the first cycle so multiple replicas do not sync in
// lockstep.
func (c *Coordinator) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	if c.inventoryInterval > 0 {
		c.wg.Add(1)
		go c.loop(ctx, "inventory", c.inventoryInterval, c.syncer.SyncInventory)
	}
	if c.customerInterval > 0 {
		c.wg.Add(1)
		go c.loop(ctx, "customers", c.customerInterval, c.syncer.SyncCustomers)
	}
}

// Stop cancels the loops and waits for any in-flight cycle to return.
func (c *Coordinator) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

func (c *Coordinator) loop(ctx context.Context, name string, interval time.Duration, cycle func(context.Context, string) (*possync.Summary, error)) {
	defer c.wg.Done()

	jitter := rand.N(interval/10 + 1)
	select {
	case <-time.After(jitter):
	case <-ctx.Done():
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		logger.Debugf("Starting scheduled %s sync", name)
		summary, err := cycle(ctx, initiatedBy)
		if err != nil {
			logger.Errorw("Scheduled sync cycle failed",
				"cycle", name,
				"error", err)
		} else {
			logger.Debugw("Scheduled sync cycle finished",
				"cycle", name,
				"status", summary.Status,
				"count", summary.Count)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
