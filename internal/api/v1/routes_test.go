package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopyhq/pos-sync-server/internal/status"
	possync "github.com/canopyhq/pos-sync-server/internal/sync"
	"github.com/canopyhq/pos-sync-server/internal/sync/state"
)

type fakeSyncer struct {
	inventory atomic.Int32
	customers atomic.Int32
	block     chan struct{}
}

func (s *fakeSyncer) SyncInventory(_ context.Context, _ string) (*possync.Summary, error) {
	s.inventory.Add(1)
	if s.block != nil {
		<-s.block
	}
	return &possync.Summary{Status: possync.StatusCompleted}, nil
}

func (s *fakeSyncer) SyncCustomers(_ context.Context, _ string) (*possync.Summary, error) {
	s.customers.Add(1)
	return &possync.Summary{Status: possync.StatusCompleted}, nil
}

func recordRun(reg *state.RunRegistry, modified time.Time, phase status.RunPhase) *status.SyncRun {
	run := &status.SyncRun{
		ID: uuid.New(),
		Scope: status.Scope{
			Kind:       status.ScopeKindLocation,
			OrgID:      "org-1",
			LocationID: "loc-1",
		},
		Status:   phase,
		Created:  modified,
		Modified: modified,
	}
	reg.Record(run)
	return run
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	server := NewServer(&fakeSyncer{}, state.NewRunRegistry())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestTriggerInventorySync(t *testing.T) {
	t.Parallel()

	syncer := &fakeSyncer{}
	server := NewServer(syncer, state.NewRunRegistry())

	req := httptest.NewRequest(http.MethodPost, "/v1/sync/inventory", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp TriggerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "started", resp.Status)

	assert.Eventually(t, func() bool {
		return syncer.inventory.Load() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestTriggerConflictsWhileRunning(t *testing.T) {
	t.Parallel()

	syncer := &fakeSyncer{block: make(chan struct{})}
	server := NewServer(syncer, state.NewRunRegistry())

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sync/inventory", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)

	assert.Eventually(t, func() bool {
		return syncer.inventory.Load() == 1
	}, time.Second, 5*time.Millisecond)

	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sync/inventory", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// customers are guarded independently
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sync/customers", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	close(syncer.block)
}

func TestListRuns(t *testing.T) {
	t.Parallel()

	registry := state.NewRunRegistry()
	base := time.Now()
	recordRun(registry, base, status.RunPhaseCompleted)
	recordRun(registry, base.Add(time.Second), status.RunPhaseFailed)

	server := NewServer(&fakeSyncer{}, registry)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/runs", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp RunsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Runs, 2)
	assert.Equal(t, status.RunPhaseFailed, resp.Runs[0].Status, "most recent first")
}

func TestListRunsEmpty(t *testing.T) {
	t.Parallel()

	server := NewServer(&fakeSyncer{}, state.NewRunRegistry())
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/runs", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"runs":[]}`, rec.Body.String())
}

func TestListRunsBadLimit(t *testing.T) {
	t.Parallel()

	server := NewServer(&fakeSyncer{}, state.NewRunRegistry())
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/runs?limit=zero", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWatchRunsImmediate(t *testing.T) {
	t.Parallel()

	registry := state.NewRunRegistry()
	since := time.Now()
	recordRun(registry, since.Add(time.Second), status.RunPhaseCompleted)

	server := NewServer(&fakeSyncer{}, registry)
	url := "/v1/runs/updates?since=" + since.Format(time.RFC3339Nano)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp RunsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Runs, 1)
}

func TestWatchRunsTimesOut(t *testing.T) {
	t.Parallel()

	server := NewServer(&fakeSyncer{}, state.NewRunRegistry())
	url := "/v1/runs/updates?since=" + time.Now().Format(time.RFC3339Nano) + "&timeout=1"
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestWatchRunsWakesOnMutation(t *testing.T) {
	t.Parallel()

	registry := state.NewRunRegistry()
	server := NewServer(&fakeSyncer{}, registry)
	since := time.Now()

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		url := "/v1/runs/updates?since=" + since.Format(time.RFC3339Nano) + "&timeout=5"
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
		done <- rec
	}()

	time.Sleep(50 * time.Millisecond)
	recordRun(registry, since.Add(time.Second), status.RunPhaseStarted)

	select {
	case rec := <-done:
		require.Equal(t, http.StatusOK, rec.Code)
		var resp RunsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Runs, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("watch request never returned")
	}
}

func TestWatchRunsRequiresSince(t *testing.T) {
	t.Parallel()

	server := NewServer(&fakeSyncer{}, state.NewRunRegistry())
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/runs/updates", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/runs/updates?since=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
