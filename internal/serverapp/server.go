package serverapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"taskden/internal/config"
	"taskden/internal/httpmw"
	"taskden/internal/kvstore"
	"taskden/internal/task"
	"taskden/internal/telemetry"
)

type Options struct {
	Config  *config.Config
	DataDir string
	Logger  *log.Logger
	Clock   task.Clock
}

// NewHandler assembles the HTTP surface: a blob store picked by config, the
// task manager and its routes, optional telemetry, and the health probes,
// all wrapped in the standard middleware chain.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if strings.TrimSpace(opts.DataDir) == "" {
		opts.DataDir = "data"
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	kv, err := openBackend(opts.Config.Storage.Backend, opts.DataDir)
	if err != nil {
		return nil, err
	}

	store := task.NewStore(kv)
	mgr := task.NewManager(store, opts.Clock, opts.Logger)
	mgr.SetShowCompleted(opts.Config.Tasks.ShowCompletedDefault)
	mgr.SetSeedOnLoadFailure(opts.Config.Tasks.SeedOnLoadFailure)

	var events telemetry.Repository
	if opts.Config.Telemetry.Enabled {
		events = telemetry.NewMemoryRepository()
		mgr.SetEventRecorder(events)
	}

	if err := mgr.Load(context.Background()); err != nil {
		opts.Logger.Printf("[serverapp] starting without saved tasks: %v", err)
	}

	taskHandler := task.NewHandler(mgr)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks", taskHandler.TasksRoot)
	mux.HandleFunc("/api/tasks/", taskHandler.TasksSub)
	mux.HandleFunc("/api/tasks/view", taskHandler.TasksView)
	mux.HandleFunc("/api/tasks/filter", taskHandler.TasksFilter)
	mux.HandleFunc("/api/tasks/show-completed", taskHandler.TasksShowCompleted)
	mux.HandleFunc("/api/tasks/refresh", taskHandler.TasksRefresh)
	mux.HandleFunc("/api/errors/last", taskHandler.ErrorsLast)
	mux.HandleFunc("/api/errors/ack", taskHandler.ErrorsAck)

	if events != nil {
		mux.HandleFunc("/api/stats", statsHandler(events))
	}

	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(opts.Config); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "taskden",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := store.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "task storage unavailable",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "taskden",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	return httpmw.Chain(
		mux,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
	), nil
}

func openBackend(backend, dataDir string) (kvstore.Store, error) {
	switch backend {
	case config.BackendMemory:
		return kvstore.NewMemoryStore(), nil
	case config.BackendFile:
		return kvstore.NewFileStore(filepath.Join(dataDir, "tasks"))
	case config.BackendSQLite:
		return kvstore.OpenSQLiteStore(filepath.Join(dataDir, "taskden.db"))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

func statsHandler(events telemetry.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var since time.Time
		if raw := strings.TrimSpace(r.URL.Query().Get("since")); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{
					"error": "since must be RFC3339",
				})
				return
			}
			since = parsed
		}
		evts, err := events.GetEvents(since, nil)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		stats, err := telemetry.CalculateStats(evts, since)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
