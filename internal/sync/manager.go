package sync

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/canopyhq/pos-sync-server/internal/config"
	"github.com/canopyhq/pos-sync-server/internal/logger"
	"github.com/canopyhq/pos-sync-server/internal/pos"
	"github.com/canopyhq/pos-sync-server/internal/status"
	"github.com/canopyhq/pos-sync-server/internal/sync/state"
	"github.com/canopyhq/pos-sync-server/internal/sync/writer"
	"github.com/canopyhq/pos-sync-server/internal/telemetry"
)

// Onboarder creates accounts for synced customers that lack one. Run as a
// follow-up step after a customer cycle, never as part of a run.
type Onboarder interface {
	OnboardMissing(ctx context.Context) (int, error)
}

// Cycle outcome statuses.
const (
	StatusCompleted = "completed"
	StatusPartial   = "partial"
)

// Summary aggregates the outcome of one sync cycle across all its targets.
// Count is the number of records written; Message carries the first
// per-target failure when the cycle is partial.
type Summary struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Count   int    `json:"count"`
}

// Manager orchestrates sync cycles. Targets are processed strictly in
// configuration order, organizations first, then their locations; one
// target's failure never blocks the targets after it unless the failure is
// on our side of the write path.
type Manager struct {
	cfg     *config.Config
	factory pos.ClientFactory
	writer  writer.SyncWriter
	runs    *state.Service
	metrics *telemetry.SyncMetrics

	onboarder Onboarder
}

// NewManager creates a sync manager. metrics and onboarder may be nil.
func NewManager(cfg *config.Config, factory pos.ClientFactory, w writer.SyncWriter, runs *state.Service, metrics *telemetry.SyncMetrics, onboarder Onboarder) *Manager {
	return &Manager{
		cfg:       cfg,
		factory:   factory,
		writer:    w,
		runs:      runs,
		metrics:   metrics,
		onboarder: onboarder,
	}
}

// SyncInventory runs one inventory cycle over every configured location.
// Per-location failures become FAILED runs and the cycle moves on; only a
// local write failure aborts the cycle, since it would fail every remaining
// location identically.
func (m *Manager) SyncInventory(ctx context.Context, initiatedBy string) (*Summary, error) {
	filter := m.cfg.Sync.LocationFilter()
	summary := &Summary{Status: StatusCompleted}

	for i := range m.cfg.Organizations {
		org := &m.cfg.Organizations[i]
		for j := range org.Locations {
			loc := &org.Locations[j]
			if filter != nil && !filter[loc.ID] {
				continue
			}

			count, err := m.syncLocation(ctx, org, loc, initiatedBy)
			if err == nil {
				summary.Count += count
				continue
			}
			if Classify(err) == SeverityFatal {
				return nil, err
			}
			summary.Status = StatusPartial
			if summary.Message == "" {
				summary.Message = err.Error()
			}
			logger.Errorw("Inventory sync failed for location",
				"org_id", org.ID,
				"location_id", loc.ID,
				"error", err)
		}
	}
	return summary, nil
}

func (m *Manager) syncLocation(ctx context.Context, org *config.OrganizationConfig, loc *config.LocationConfig, initiatedBy string) (int, error) {
	scope := status.Scope{
		Kind:       status.ScopeKindLocation,
		OrgID:      org.ID,
		LocationID: loc.ID,
	}
	run := m.runs.Begin(ctx, scope, initiatedBy)
	started := time.Now()

	items, skipped, fetchErr := m.fetchInventory(ctx, org, loc, run)
	if fetchErr != nil {
		m.runs.Fail(ctx, run, fetchErr.Error())
		m.observeRun(ctx, run, started)
		return 0, fetchErr
	}

	if err := m.runs.Transition(ctx, run, status.RunPhaseUpdatingInventory); err != nil {
		return 0, err
	}

	res, err := m.writer.ReconcileInventory(ctx, loc.ID, items, initiatedBy)
	if err != nil {
		reconcileErr := &ReconciliationError{Target: loc.ID, Err: err}
		m.runs.Fail(ctx, run, reconcileErr.Error())
		m.observeRun(ctx, run, started)
		return 0, reconcileErr
	}

	if err := m.runs.Complete(ctx, run, res.Upserted, skipMessage(skipped)); err != nil {
		return 0, err
	}
	m.observeRun(ctx, run, started)
	logger.Infow("Inventory sync completed",
		"org_id", org.ID,
		"location_id", loc.ID,
		"upserted", res.Upserted,
		"skipped", skipped,
		"swept", res.Swept)
	return res.Upserted, nil
}

// skipMessage renders the run diagnostic for records dropped by item-level
// validation. An empty string means nothing was skipped.
func skipMessage(skipped int) string {
	if skipped == 0 {
		return ""
	}
	return fmt.Sprintf("skipped %d invalid records", skipped)
}

// fetchInventory pulls the location's full inventory snapshot and decodes
// it, skipping records the feed hands us in an unprocessable shape. The
// skip count is reported back so the run can carry it as a diagnostic.
func (m *Manager) fetchInventory(ctx context.Context, org *config.OrganizationConfig, loc *config.LocationConfig, run *status.SyncRun) ([]*pos.InventoryItem, int, error) {
	if err := m.runs.Transition(ctx, run, status.RunPhaseStartedRemoteInventory); err != nil {
		return nil, 0, err
	}

	var records []pos.RemoteRecord
	var err error
	if org.Vendor == config.VendorBiotrack {
		records, err = m.readBiotrackInventory(loc)
	} else {
		records, err = m.fetchPaginatedInventory(ctx, org, loc)
	}
	if err != nil {
		return nil, 0, err
	}

	if err := m.runs.Transition(ctx, run, status.RunPhaseCompletedRemoteInventory); err != nil {
		return nil, 0, err
	}

	return m.decodeInventory(ctx, records)
}

func (m *Manager) fetchPaginatedInventory(ctx context.Context, org *config.OrganizationConfig, loc *config.LocationConfig) ([]pos.RemoteRecord, error) {
	posScope, err := m.buildScope(org, loc)
	if err != nil {
		return nil, err
	}
	client, err := m.factory.CreateClient(org.Vendor)
	if err != nil {
		return nil, err
	}

	var records []pos.RemoteRecord
	pager := pos.NewPager(m.cfg.Sync.GetPageLoop())
	_, err = pager.FetchAll(ctx,
		func(ctx context.Context, page int) (*pos.FeedPage, error) {
			return client.FetchCatalogPage(ctx, posScope, page)
		},
		func(page *pos.FeedPage) error {
			records = append(records, page.Records...)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (m *Manager) readBiotrackInventory(loc *config.LocationConfig) ([]pos.RemoteRecord, error) {
	if loc.InventoryCSV == "" {
		return nil, &ConfigurationError{Target: loc.ID, Reason: "no inventory CSV configured"}
	}
	f, err := os.Open(loc.InventoryCSV)
	if err != nil {
		return nil, &ConfigurationError{Target: loc.ID, Reason: fmt.Sprintf("cannot open inventory CSV: %v", err)}
	}
	defer f.Close()

	records, err := pos.ParseInventoryCSV(f)
	if err != nil {
		return nil, err
	}
	return pos.BatchPage(records).Records, nil
}

// decodeInventory decodes records with the configured concurrency bound.
// The default bound of 1 keeps decoding strictly sequential; the results
// preserve feed order either way. The second return value counts records
// dropped by item-level validation.
func (m *Manager) decodeInventory(ctx context.Context, records []pos.RemoteRecord) ([]*pos.InventoryItem, int, error) {
	decoded := make([]*pos.InventoryItem, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(int(m.cfg.Sync.GetItemConcurrency()))
	for i := range records {
		idx := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := pos.DecodeInventoryItem(records[idx])
			if err != nil {
				if Classify(err) == SeverityItem {
					logger.Warnw("Skipping invalid inventory record",
						"pos_id", records[idx].PosID,
						"error", err)
					return nil
				}
				return err
			}
			decoded[idx] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	items := make([]*pos.InventoryItem, 0, len(decoded))
	for _, item := range decoded {
		if item != nil {
			items = append(items, item)
		}
	}
	return items, len(records) - len(items), nil
}

// SyncCustomers runs one customer cycle over every configured organization.
func (m *Manager) SyncCustomers(ctx context.Context, initiatedBy string) (*Summary, error) {
	summary := &Summary{Status: StatusCompleted}

	for i := range m.cfg.Organizations {
		org := &m.cfg.Organizations[i]

		count, err := m.syncOrgCustomers(ctx, org, initiatedBy)
		if err == nil {
			summary.Count += count
			continue
		}
		if Classify(err) == SeverityFatal {
			return nil, err
		}
		summary.Status = StatusPartial
		if summary.Message == "" {
			summary.Message = err.Error()
		}
		logger.Errorw("Customer sync failed for organization",
			"org_id", org.ID,
			"error", err)
	}

	if m.onboarder != nil {
		created, err := m.onboarder.OnboardMissing(ctx)
		if err != nil {
			logger.Errorf("Onboarding pass failed: %v", err)
		} else if created > 0 {
			logger.Infof("Onboarded %d new accounts", created)
		}
	}
	return summary, nil
}

func (m *Manager) syncOrgCustomers(ctx context.Context, org *config.OrganizationConfig, initiatedBy string) (int, error) {
	scope := status.Scope{
		Kind:  status.ScopeKindOrganization,
		OrgID: org.ID,
	}
	run := m.runs.Begin(ctx, scope, initiatedBy)
	started := time.Now()

	pages, skipped, fetchErr := m.fetchCustomers(ctx, org, run)
	if fetchErr != nil {
		m.runs.Fail(ctx, run, fetchErr.Error())
		m.observeRun(ctx, run, started)
		return 0, fetchErr
	}

	if err := m.runs.Transition(ctx, run, status.RunPhaseUpdatingUsers); err != nil {
		return 0, err
	}

	// Pages commit independently, so a mid-cycle failure keeps the pages
	// already written.
	var total int64
	for _, page := range pages {
		n, err := m.writer.UpsertCustomers(ctx, org.Vendor, page, initiatedBy)
		if err != nil {
			reconcileErr := &ReconciliationError{Target: org.ID, Err: err}
			m.runs.Fail(ctx, run, reconcileErr.Error())
			m.observeRun(ctx, run, started)
			return 0, reconcileErr
		}
		total += n
	}

	if err := m.runs.Complete(ctx, run, int(total), skipMessage(skipped)); err != nil {
		return 0, err
	}
	m.observeRun(ctx, run, started)
	logger.Infow("Customer sync completed",
		"org_id", org.ID,
		"upserted", total,
		"skipped", skipped)
	return int(total), nil
}

func (m *Manager) fetchCustomers(ctx context.Context, org *config.OrganizationConfig, run *status.SyncRun) ([][]*pos.CustomerRecord, int, error) {
	if err := m.runs.Transition(ctx, run, status.RunPhaseStartedRemoteSync); err != nil {
		return nil, 0, err
	}

	posScope, err := m.buildScope(org, nil)
	if err != nil {
		return nil, 0, err
	}
	client, err := m.factory.CreateClient(org.Vendor)
	if err != nil {
		return nil, 0, err
	}

	// Compound customer keys carry the vendor org id; globally unique keys
	// leave it empty.
	posOrgID := ""
	if org.Vendor == config.VendorBiotrack {
		posOrgID = posScope.PosOrgID
	}

	var pages [][]*pos.CustomerRecord
	var skipped int
	pager := pos.NewPager(m.cfg.Sync.GetPageLoop())
	_, err = pager.FetchAll(ctx,
		func(ctx context.Context, page int) (*pos.FeedPage, error) {
			return client.FetchConsumerPage(ctx, posScope, page)
		},
		func(page *pos.FeedPage) error {
			var decoded []*pos.CustomerRecord
			for _, rec := range page.Records {
				customer, err := pos.DecodeCustomer(rec, posOrgID)
				if err != nil {
					if Classify(err) == SeverityItem {
						logger.Warnw("Skipping invalid customer record",
							"pos_id", rec.PosID,
							"error", err)
						skipped++
						continue
					}
					return err
				}
				decoded = append(decoded, customer)
			}
			if len(decoded) > 0 {
				pages = append(pages, decoded)
			}
			return nil
		})
	if err != nil {
		return nil, 0, err
	}

	if err := m.runs.Transition(ctx, run, status.RunPhaseCompletedRemoteSync); err != nil {
		return nil, 0, err
	}
	return pages, skipped, nil
}

// buildScope resolves an organization's POS credentials into a fetch scope.
// loc may be nil for organization-scoped feeds.
func (m *Manager) buildScope(org *config.OrganizationConfig, loc *config.LocationConfig) (pos.Scope, error) {
	target := org.ID
	if loc != nil {
		target = loc.ID
	}
	if org.POS == nil {
		return pos.Scope{}, &ConfigurationError{Target: target, Reason: "no POS credentials configured"}
	}
	apiKey, err := org.POS.GetAPIKey()
	if err != nil {
		return pos.Scope{}, &ConfigurationError{Target: target, Reason: err.Error()}
	}

	scope := pos.Scope{
		OrgID:    org.ID,
		Endpoint: org.POS.Endpoint,
		APIKey:   apiKey,
		PosOrgID: org.POS.PosOrgID,
		UserID:   org.POS.UserID,
		PerPage:  org.POS.PerPage,
	}
	if loc != nil {
		scope.LocationID = loc.ID
		scope.FacilityID = loc.FacilityID
	}
	return scope, nil
}

func (m *Manager) observeRun(ctx context.Context, run *status.SyncRun, started time.Time) {
	m.metrics.ObserveRun(ctx, run, time.Since(started))
}
