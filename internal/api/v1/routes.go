package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/canopyhq/pos-sync-server/internal/logger"
	"github.com/canopyhq/pos-sync-server/internal/status"
	possync "github.com/canopyhq/pos-sync-server/internal/sync"
	"github.com/canopyhq/pos-sync-server/internal/sync/state"
)

const (
	// defaultInitiator is recorded on runs triggered without an explicit
	// initiator.
	defaultInitiator = "api"

	// defaultWatchTimeout is how long a watch request waits for a run
	// mutation before giving up with 204.
	defaultWatchTimeout = 30 * time.Second

	// maxWatchTimeout caps client-requested watch timeouts.
	maxWatchTimeout = 60 * time.Second

	defaultRunsLimit = 50
)

// SyncService triggers sync cycles.
type SyncService interface {
	SyncInventory(ctx context.Context, initiatedBy string) (*possync.Summary, error)
	SyncCustomers(ctx context.Context, initiatedBy string) (*possync.Summary, error)
}

// TriggerResponse acknowledges an accepted sync trigger.
type TriggerResponse struct {
	Status string `json:"status"`
}

// RunsResponse wraps a list of runs.
type RunsResponse struct {
	Runs []*status.SyncRun `json:"runs"`
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Routes defines the routes for the sync API with dependency injection
type Routes struct {
	syncer   SyncService
	registry *state.RunRegistry

	// one trigger of each kind at a time; concurrent triggers get 409
	inventoryMu sync.Mutex
	customerMu  sync.Mutex
}

// NewRoutes creates a new Routes instance
func NewRoutes(syncer SyncService, registry *state.RunRegistry) *Routes {
	return &Routes{
		syncer:   syncer,
		registry: registry,
	}
}

// Router creates a new router for the sync API
func Router(syncer SyncService, registry *state.RunRegistry) http.Handler {
	routes := NewRoutes(syncer, registry)

	r := chi.NewRouter()

	r.Post("/sync/inventory", routes.triggerInventorySync)
	r.Post("/sync/customers", routes.triggerCustomerSync)

	r.Route("/runs", func(r chi.Router) {
		r.Get("/", routes.listRuns)
		r.Get("/updates", routes.watchRuns)
	})

	return r
}

// triggerInventorySync starts an inventory cycle in the background and
// returns immediately; progress is observable through the runs endpoints.
func (rt *Routes) triggerInventorySync(w http.ResponseWriter, r *http.Request) {
	rt.trigger(w, r, &rt.inventoryMu, "inventory", rt.syncer.SyncInventory)
}

// triggerCustomerSync starts a customer cycle in the background.
func (rt *Routes) triggerCustomerSync(w http.ResponseWriter, r *http.Request) {
	rt.trigger(w, r, &rt.customerMu, "customers", rt.syncer.SyncCustomers)
}

func (rt *Routes) trigger(w http.ResponseWriter, r *http.Request, mu *sync.Mutex, name string, cycle func(context.Context, string) (*possync.Summary, error)) {
	initiatedBy := r.URL.Query().Get("initiated_by")
	if initiatedBy == "" {
		initiatedBy = defaultInitiator
	}

	if !mu.TryLock() {
		writeError(w, http.StatusConflict, "a "+name+" sync is already running")
		return
	}

	// detached from the request context so the cycle survives the response
	go func() {
		defer mu.Unlock()
		summary, err := cycle(context.Background(), initiatedBy)
		if err != nil {
			logger.Errorw("Triggered sync cycle failed",
				"cycle", name,
				"error", err)
			return
		}
		logger.Infow("Triggered sync cycle finished",
			"cycle", name,
			"status", summary.Status,
			"count", summary.Count)
	}()

	writeJSON(w, http.StatusAccepted, TriggerResponse{Status: "started"})
}

// listRuns returns recent runs, most recently modified first.
func (rt *Routes) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	runs := rt.registry.Recent(limit)
	if runs == nil {
		runs = []*status.SyncRun{}
	}
	writeJSON(w, http.StatusOK, RunsResponse{Runs: runs})
}

// watchRuns long-polls for run mutations strictly after the since
// watermark. Runs that already mutated answer immediately; otherwise the
// request parks until a mutation or the timeout, which answers 204.
func (rt *Routes) watchRuns(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "since is required (RFC3339)")
		return
	}
	since, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "since must be RFC3339")
		return
	}

	timeout := defaultWatchTimeout
	if rawTimeout := r.URL.Query().Get("timeout"); rawTimeout != "" {
		seconds, err := strconv.Atoi(rawTimeout)
		if err != nil || seconds <= 0 {
			writeError(w, http.StatusBadRequest, "timeout must be a positive number of seconds")
			return
		}
		timeout = time.Duration(seconds) * time.Second
		if timeout > maxWatchTimeout {
			timeout = maxWatchTimeout
		}
	}

	ch, cancel := rt.registry.Subscribe(since)
	defer cancel()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case runs := <-ch:
		writeJSON(w, http.StatusOK, RunsResponse{Runs: runs})
	case <-timer.C:
		w.WriteHeader(http.StatusNoContent)
	case <-r.Context().Done():
		// client went away
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg})
}
