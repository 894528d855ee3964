// Command offstatusd is a read-only HTTP status server for a store
// backend, the OFF analogue of the teacher's storage health monitor
// (_examples/TheEntropyCollective-noisefs/pkg/storage/health.go): it polls
// Backend.HealthCheck on an interval and serves the latest result over
// gorilla/mux routes.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/Digital-Defiance/brightchain-off/internal/config"
	"github.com/Digital-Defiance/brightchain-off/internal/logging"
	"github.com/Digital-Defiance/brightchain-off/pkg/store"
	"github.com/Digital-Defiance/brightchain-off/pkg/store/backends/diskfs"
	"github.com/Digital-Defiance/brightchain-off/pkg/store/backends/memdisk"
)

// monitor polls a store.Backend on an interval and serves the most recent
// HealthStatus, so HTTP requests never block on a live backend probe.
type monitor struct {
	backend  store.Backend
	interval time.Duration
	logger   *logging.Logger

	mu     sync.RWMutex
	latest store.HealthStatus
}

func newMonitor(backend store.Backend, interval time.Duration, logger *logging.Logger) *monitor {
	return &monitor{backend: backend, interval: interval, logger: logger}
}

func (m *monitor) run(ctx context.Context) {
	m.poll(ctx)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

func (m *monitor) poll(ctx context.Context) {
	status := m.backend.HealthCheck(ctx)
	m.mu.Lock()
	m.latest = status
	m.mu.Unlock()
	m.logger.Debug("health check", map[string]interface{}{"healthy": status.Healthy, "status": status.Status})
}

func (m *monitor) snapshot() store.HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}

func (m *monitor) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status := m.snapshot()
	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(status)
}

func openBackend(cfg *config.Config) (store.Backend, error) {
	switch cfg.Store.Backend {
	case "diskfs":
		return diskfs.New(cfg.Store.Root)
	default:
		return memdisk.New(), nil
	}
}

func main() {
	configFile := flag.String("config", "", "configuration file path")
	addr := flag.String("addr", ":8089", "listen address")
	interval := flag.Duration("interval", 15*time.Second, "health poll interval")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logging.InfoLevel
	}
	logger := logging.New(logging.Config{Level: level, Format: logging.TextFormat, Output: os.Stdout}).WithComponent("offstatusd")

	backend, err := openBackend(cfg)
	if err != nil {
		logger.Error("failed to open store backend", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mon := newMonitor(backend, *interval, logger)
	go mon.run(ctx)

	router := mux.NewRouter()
	router.HandleFunc("/healthz", mon.handleHealthz).Methods(http.MethodGet)
	router.HandleFunc("/", mon.handleHealthz).Methods(http.MethodGet)

	srv := &http.Server{Addr: *addr, Handler: router}

	go func() {
		logger.Info("listening", map[string]interface{}{"addr": *addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", map[string]interface{}{"error": err.Error()})
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down", nil)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
	cancel()
}
