package sync

import (
	"context"
	"errors"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/canopyhq/pos-sync-server/internal/config"
	"github.com/canopyhq/pos-sync-server/internal/httpclient"
	"github.com/canopyhq/pos-sync-server/internal/pos"
	posmocks "github.com/canopyhq/pos-sync-server/internal/pos/mocks"
	"github.com/canopyhq/pos-sync-server/internal/status"
	"github.com/canopyhq/pos-sync-server/internal/sync/state"
	"github.com/canopyhq/pos-sync-server/internal/sync/writer"
	writermocks "github.com/canopyhq/pos-sync-server/internal/sync/writer/mocks"
)

func testConfig() *config.Config {
	return &config.Config{
		Organizations: []config.OrganizationConfig{
			{
				ID:     "org-1",
				Vendor: config.VendorFreeway,
				POS: &config.POSConfig{
					Endpoint: "https://pos.example.com",
					APIKey:   "key",
					PosOrgID: "mjf-77",
				},
				Locations: []config.LocationConfig{
					{ID: "loc-1", FacilityID: "fac-1"},
				},
			},
		},
	}
}

func catalogRecord(posID, name string, qty float64) pos.RemoteRecord {
	return pos.RemoteRecord{
		PosID: posID,
		Raw: []byte(`{"productName":"` + name + `","quantityAvailable":` +
			strconv.FormatFloat(qty, 'f', -1, 64) + `,"pricingType":"unit","unitPrice":10}`),
	}
}

func writeFile(path, data string) error {
	return os.WriteFile(path, []byte(data), 0o600)
}

func consumerRecord(posID, email string) pos.RemoteRecord {
	return pos.RemoteRecord{
		PosID: posID,
		Raw:   []byte(`{"firstName":"Ann","lastName":"Lee","emailAddress":"` + email + `","phoneNumber":"5035551234"}`),
	}
}

func runForScope(t *testing.T, svc *state.Service, scope status.Scope) *status.SyncRun {
	t.Helper()
	for _, run := range svc.Registry().Recent(0) {
		if run.Scope == scope {
			return run
		}
	}
	t.Fatalf("no run recorded for scope %s", scope.Key())
	return nil
}

func TestSyncInventoryHappyPath(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := posmocks.NewMockClient(ctrl)
	factory := posmocks.NewMockClientFactory(ctrl)
	factory.EXPECT().CreateClient(config.VendorFreeway).Return(client, nil)

	client.EXPECT().FetchCatalogPage(gomock.Any(), gomock.Any(), 1).Return(&pos.FeedPage{
		Records:     []pos.RemoteRecord{catalogRecord("p1", "Blue Dream", 25), catalogRecord("p2", "Low Stock", 1)},
		CurrentPage: 1,
		LastPage:    2,
		Total:       3,
	}, nil)
	client.EXPECT().FetchCatalogPage(gomock.Any(), gomock.Any(), 2).Return(&pos.FeedPage{
		Records:     []pos.RemoteRecord{catalogRecord("p3", "Gelato", 5)},
		CurrentPage: 2,
		LastPage:    2,
		Total:       3,
	}, nil)

	store := writer.NewInMemoryStore()
	runs := state.NewService(state.NewRunRegistry(), nil)
	mgr := NewManager(testConfig(), factory, store, runs, nil, nil)

	summary, err := mgr.SyncInventory(context.Background(), "tester")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, summary.Status)
	assert.Equal(t, 3, summary.Count)

	assert.Equal(t, []string{"p1", "p3"}, store.ActiveProductIDs("loc-1"))
	low := store.Product("loc-1", "p2")
	require.NotNil(t, low)
	assert.True(t, low.Deleted, "below-threshold quantity is stored hidden")

	run := runForScope(t, runs, status.Scope{
		Kind:       status.ScopeKindLocation,
		OrgID:      "org-1",
		LocationID: "loc-1",
	})
	assert.Equal(t, status.RunPhaseCompleted, run.Status)
	assert.Equal(t, 3, run.ItemCount)
	assert.Empty(t, run.Message, "a clean run carries no diagnostic")
	assert.Equal(t, "tester", run.InitiatedBy)
}

func TestSyncInventorySkipsInvalidRecords(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := posmocks.NewMockClient(ctrl)
	factory := posmocks.NewMockClientFactory(ctrl)
	factory.EXPECT().CreateClient(config.VendorFreeway).Return(client, nil)

	client.EXPECT().FetchCatalogPage(gomock.Any(), gomock.Any(), 1).Return(&pos.FeedPage{
		Records: []pos.RemoteRecord{
			catalogRecord("p1", "Blue Dream", 25),
			{PosID: "p2", Raw: []byte(`{"productName":"No Quantity"}`)},
			{PosID: "p3", Raw: []byte(`{"quantityAvailable":5,"uom":"furlong"}`)},
		},
		CurrentPage: 1,
		LastPage:    1,
	}, nil)

	store := writer.NewInMemoryStore()
	runs := state.NewService(state.NewRunRegistry(), nil)
	mgr := NewManager(testConfig(), factory, store, runs, nil, nil)

	_, err := mgr.SyncInventory(context.Background(), "tester")
	require.NoError(t, err)

	assert.Equal(t, []string{"p1"}, store.ActiveProductIDs("loc-1"))
	run := runForScope(t, runs, status.Scope{
		Kind:       status.ScopeKindLocation,
		OrgID:      "org-1",
		LocationID: "loc-1",
	})
	assert.Equal(t, status.RunPhaseCompleted, run.Status)
	assert.Equal(t, 1, run.ItemCount, "invalid records are skipped, not failed")
	assert.Equal(t, "skipped 2 invalid records", run.Message, "skips surface as a run diagnostic")
}

func TestSyncInventoryContinuesPastFailedLocation(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Organizations[0].Locations = []config.LocationConfig{
		{ID: "loc-1", FacilityID: "fac-1"},
		{ID: "loc-2", FacilityID: "fac-2"},
	}

	ctrl := gomock.NewController(t)
	client := posmocks.NewMockClient(ctrl)
	factory := posmocks.NewMockClientFactory(ctrl)
	factory.EXPECT().CreateClient(config.VendorFreeway).Return(client, nil).Times(2)

	gomock.InOrder(
		client.EXPECT().FetchCatalogPage(gomock.Any(), gomock.Any(), 1).
			Return(nil, &httpclient.HTTPError{StatusCode: 503, URL: "https://pos.example.com"}),
		client.EXPECT().FetchCatalogPage(gomock.Any(), gomock.Any(), 1).Return(&pos.FeedPage{
			Records:     []pos.RemoteRecord{catalogRecord("p1", "Blue Dream", 25)},
			CurrentPage: 1,
			LastPage:    1,
		}, nil),
	)

	store := writer.NewInMemoryStore()
	runs := state.NewService(state.NewRunRegistry(), nil)
	mgr := NewManager(cfg, factory, store, runs, nil, nil)

	summary, err := mgr.SyncInventory(context.Background(), "tester")
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, summary.Status)
	assert.Contains(t, summary.Message, "503")

	failed := runForScope(t, runs, status.Scope{
		Kind: status.ScopeKindLocation, OrgID: "org-1", LocationID: "loc-1",
	})
	assert.Equal(t, status.RunPhaseFailed, failed.Status)
	assert.Contains(t, failed.Message, "503")

	ok := runForScope(t, runs, status.Scope{
		Kind: status.ScopeKindLocation, OrgID: "org-1", LocationID: "loc-2",
	})
	assert.Equal(t, status.RunPhaseCompleted, ok.Status)
	assert.Equal(t, []string{"p1"}, store.ActiveProductIDs("loc-2"))
}

func TestSyncInventoryMissingConfigurationFailsRun(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Organizations[0].POS = nil

	ctrl := gomock.NewController(t)
	factory := posmocks.NewMockClientFactory(ctrl)

	store := writer.NewInMemoryStore()
	runs := state.NewService(state.NewRunRegistry(), nil)
	mgr := NewManager(cfg, factory, store, runs, nil, nil)

	summary, err := mgr.SyncInventory(context.Background(), "tester")
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, summary.Status)

	run := runForScope(t, runs, status.Scope{
		Kind: status.ScopeKindLocation, OrgID: "org-1", LocationID: "loc-1",
	})
	assert.Equal(t, status.RunPhaseFailed, run.Status)
	assert.Contains(t, run.Message, "not configured")
}

func TestSyncInventoryWriteFailureAbortsCycle(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Organizations[0].Locations = []config.LocationConfig{
		{ID: "loc-1", FacilityID: "fac-1"},
		{ID: "loc-2", FacilityID: "fac-2"},
	}

	ctrl := gomock.NewController(t)
	client := posmocks.NewMockClient(ctrl)
	factory := posmocks.NewMockClientFactory(ctrl)
	factory.EXPECT().CreateClient(config.VendorFreeway).Return(client, nil)
	client.EXPECT().FetchCatalogPage(gomock.Any(), gomock.Any(), 1).Return(&pos.FeedPage{
		Records:     []pos.RemoteRecord{catalogRecord("p1", "Blue Dream", 25)},
		CurrentPage: 1,
		LastPage:    1,
	}, nil)

	w := writermocks.NewMockSyncWriter(ctrl)
	w.EXPECT().ReconcileInventory(gomock.Any(), "loc-1", gomock.Any(), "tester").
		Return(nil, errors.New("connection refused"))

	runs := state.NewService(state.NewRunRegistry(), nil)
	mgr := NewManager(cfg, factory, w, runs, nil, nil)

	_, err := mgr.SyncInventory(context.Background(), "tester")
	require.Error(t, err)
	assert.Equal(t, SeverityFatal, Classify(err))

	// loc-2 never got a run: the cycle aborted
	for _, run := range runs.Registry().Recent(0) {
		assert.NotEqual(t, "loc-2", run.Scope.LocationID)
	}
}

func TestSyncInventoryLocationFilter(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Organizations[0].Locations = []config.LocationConfig{
		{ID: "loc-1", FacilityID: "fac-1"},
		{ID: "loc-2", FacilityID: "fac-2"},
	}
	cfg.Sync.Locations = "loc-2"

	ctrl := gomock.NewController(t)
	client := posmocks.NewMockClient(ctrl)
	factory := posmocks.NewMockClientFactory(ctrl)
	factory.EXPECT().CreateClient(config.VendorFreeway).Return(client, nil)
	client.EXPECT().FetchCatalogPage(gomock.Any(), gomock.Any(), 1).Return(&pos.FeedPage{
		Records:     []pos.RemoteRecord{catalogRecord("p1", "Blue Dream", 25)},
		CurrentPage: 1,
		LastPage:    1,
	}, nil)

	store := writer.NewInMemoryStore()
	runs := state.NewService(state.NewRunRegistry(), nil)
	mgr := NewManager(cfg, factory, store, runs, nil, nil)

	_, err := mgr.SyncInventory(context.Background(), "tester")
	require.NoError(t, err)

	assert.Empty(t, store.ActiveProductIDs("loc-1"))
	assert.Equal(t, []string{"p1"}, store.ActiveProductIDs("loc-2"))
}

type countingOnboarder struct {
	calls int
}

func (o *countingOnboarder) OnboardMissing(_ context.Context) (int, error) {
	o.calls++
	return 0, nil
}

func TestSyncCustomersHappyPath(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := posmocks.NewMockClient(ctrl)
	factory := posmocks.NewMockClientFactory(ctrl)
	factory.EXPECT().CreateClient(config.VendorFreeway).Return(client, nil)

	client.EXPECT().FetchConsumerPage(gomock.Any(), gomock.Any(), 1).Return(&pos.FeedPage{
		Records:     []pos.RemoteRecord{consumerRecord("c1", "ann@example.com")},
		CurrentPage: 1,
		LastPage:    2,
		Total:       2,
	}, nil)
	client.EXPECT().FetchConsumerPage(gomock.Any(), gomock.Any(), 2).Return(&pos.FeedPage{
		Records:     []pos.RemoteRecord{consumerRecord("c2", "ben@example.com")},
		CurrentPage: 2,
		LastPage:    2,
		Total:       2,
	}, nil)

	store := writer.NewInMemoryStore()
	runs := state.NewService(state.NewRunRegistry(), nil)
	onboarder := &countingOnboarder{}
	mgr := NewManager(testConfig(), factory, store, runs, nil, onboarder)

	summary, err := mgr.SyncCustomers(context.Background(), "scheduler")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, summary.Status)
	assert.Equal(t, 2, summary.Count)

	assert.Equal(t, 2, store.CustomerCount())
	// MJ Freeway customer ids are globally unique, so no vendor org id
	assert.NotNil(t, store.Customer("mjfreeway", "", "c1"))

	run := runForScope(t, runs, status.Scope{
		Kind:  status.ScopeKindOrganization,
		OrgID: "org-1",
	})
	assert.Equal(t, status.RunPhaseCompleted, run.Status)
	assert.Equal(t, 2, run.ItemCount)
	assert.Equal(t, 1, onboarder.calls, "onboarding runs once per cycle")
}

func TestSyncCustomersSkipsInvalidRecords(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := posmocks.NewMockClient(ctrl)
	factory := posmocks.NewMockClientFactory(ctrl)
	factory.EXPECT().CreateClient(config.VendorFreeway).Return(client, nil)

	client.EXPECT().FetchConsumerPage(gomock.Any(), gomock.Any(), 1).Return(&pos.FeedPage{
		Records: []pos.RemoteRecord{
			consumerRecord("c1", "ann@example.com"),
			{Raw: []byte(`{"firstName":"No","lastName":"ID"}`)},
		},
		CurrentPage: 1,
		LastPage:    1,
	}, nil)

	store := writer.NewInMemoryStore()
	runs := state.NewService(state.NewRunRegistry(), nil)
	mgr := NewManager(testConfig(), factory, store, runs, nil, nil)

	_, err := mgr.SyncCustomers(context.Background(), "scheduler")
	require.NoError(t, err)

	assert.Equal(t, 1, store.CustomerCount())
	run := runForScope(t, runs, status.Scope{Kind: status.ScopeKindOrganization, OrgID: "org-1"})
	assert.Equal(t, status.RunPhaseCompleted, run.Status)
	assert.Equal(t, 1, run.ItemCount)
	assert.Equal(t, "skipped 1 invalid records", run.Message)
}

func TestSyncCustomersBiotrackCompoundKey(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Organizations: []config.OrganizationConfig{
			{
				ID:     "org-bt",
				Vendor: config.VendorBiotrack,
				POS: &config.POSConfig{
					Endpoint: "https://bt.example.com",
					APIKey:   "key",
					PosOrgID: "bt-55",
				},
			},
		},
	}

	ctrl := gomock.NewController(t)
	client := posmocks.NewMockClient(ctrl)
	factory := posmocks.NewMockClientFactory(ctrl)
	factory.EXPECT().CreateClient(config.VendorBiotrack).Return(client, nil)

	client.EXPECT().FetchConsumerPage(gomock.Any(), gomock.Any(), 1).Return(&pos.FeedPage{
		Records:     []pos.RemoteRecord{consumerRecord("77", "ann@example.com")},
		CurrentPage: 1,
		LastPage:    1,
	}, nil)

	store := writer.NewInMemoryStore()
	runs := state.NewService(state.NewRunRegistry(), nil)
	mgr := NewManager(cfg, factory, store, runs, nil, nil)

	_, err := mgr.SyncCustomers(context.Background(), "scheduler")
	require.NoError(t, err)

	// Biotrack customer ids are only unique per vendor org
	assert.NotNil(t, store.Customer("biotrack", "bt-55", "77"))
}

func TestSyncCustomersContinuesPastFailedOrg(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Organizations = append(cfg.Organizations, config.OrganizationConfig{
		ID:     "org-2",
		Vendor: config.VendorFreeway,
		POS: &config.POSConfig{
			Endpoint: "https://pos2.example.com",
			APIKey:   "key2",
			PosOrgID: "mjf-88",
		},
	})

	ctrl := gomock.NewController(t)
	client := posmocks.NewMockClient(ctrl)
	factory := posmocks.NewMockClientFactory(ctrl)
	factory.EXPECT().CreateClient(config.VendorFreeway).Return(client, nil).Times(2)

	gomock.InOrder(
		client.EXPECT().FetchConsumerPage(gomock.Any(), gomock.Any(), 1).
			Return(nil, &httpclient.NoResponseError{URL: "https://pos.example.com", Err: errors.New("timeout")}),
		client.EXPECT().FetchConsumerPage(gomock.Any(), gomock.Any(), 1).Return(&pos.FeedPage{
			Records:     []pos.RemoteRecord{consumerRecord("c1", "ann@example.com")},
			CurrentPage: 1,
			LastPage:    1,
		}, nil),
	)

	store := writer.NewInMemoryStore()
	runs := state.NewService(state.NewRunRegistry(), nil)
	mgr := NewManager(cfg, factory, store, runs, nil, nil)

	summary, err := mgr.SyncCustomers(context.Background(), "scheduler")
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, summary.Status)

	failed := runForScope(t, runs, status.Scope{Kind: status.ScopeKindOrganization, OrgID: "org-1"})
	assert.Equal(t, status.RunPhaseFailed, failed.Status)

	ok := runForScope(t, runs, status.Scope{Kind: status.ScopeKindOrganization, OrgID: "org-2"})
	assert.Equal(t, status.RunPhaseCompleted, ok.Status)
	assert.Equal(t, 1, store.CustomerCount())
}

func TestSyncInventoryBiotrackReadsCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	csvPath := dir + "/inventory.csv"
	csvData := "inventoryid,name,quantity,uom\n" +
		"b1,Sour Diesel,40,gm\n" +
		"b2,Preroll,1,ea\n"
	require.NoError(t, writeFile(csvPath, csvData))

	cfg := &config.Config{
		Organizations: []config.OrganizationConfig{
			{
				ID:     "org-bt",
				Vendor: config.VendorBiotrack,
				POS: &config.POSConfig{
					Endpoint: "https://bt.example.com",
					APIKey:   "key",
					PosOrgID: "bt-55",
				},
				Locations: []config.LocationConfig{
					{ID: "loc-bt", InventoryCSV: csvPath},
				},
			},
		},
	}

	ctrl := gomock.NewController(t)
	factory := posmocks.NewMockClientFactory(ctrl)

	store := writer.NewInMemoryStore()
	runs := state.NewService(state.NewRunRegistry(), nil)
	mgr := NewManager(cfg, factory, store, runs, nil, nil)

	_, err := mgr.SyncInventory(context.Background(), "tester")
	require.NoError(t, err)

	assert.Equal(t, []string{"b1"}, store.ActiveProductIDs("loc-bt"))
	preroll := store.Product("loc-bt", "b2")
	require.NotNil(t, preroll)
	assert.True(t, preroll.Deleted, "single preroll is below the unit threshold")

	run := runForScope(t, runs, status.Scope{
		Kind: status.ScopeKindLocation, OrgID: "org-bt", LocationID: "loc-bt",
	})
	assert.Equal(t, status.RunPhaseCompleted, run.Status)
	assert.Equal(t, 2, run.ItemCount)
}
