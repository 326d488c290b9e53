package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	// Registers the bedrock provider with the agentruntime registry.
	_ "github.com/opsline/rcachat/internal/adapter/bedrock"
	rcahttp "github.com/opsline/rcachat/internal/adapter/http"
	rcaotel "github.com/opsline/rcachat/internal/adapter/otel"
	"github.com/opsline/rcachat/internal/adapter/ristretto"
	"github.com/opsline/rcachat/internal/adapter/ws"
	"github.com/opsline/rcachat/internal/config"
	"github.com/opsline/rcachat/internal/domain/chat"
	"github.com/opsline/rcachat/internal/logger"
	"github.com/opsline/rcachat/internal/middleware"
	"github.com/opsline/rcachat/internal/port/agentruntime"
	"github.com/opsline/rcachat/internal/resilience"
	"github.com/opsline/rcachat/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	slog.SetDefault(log)
	defer logCloser.Close()

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"agent_id", cfg.Agent.ID,
		"region", cfg.Agent.Region,
		"provider", cfg.Runtime.Provider,
	)

	ctx := context.Background()

	// --- Telemetry ---
	if cfg.Telemetry.Enabled {
		shutdown, err := rcaotel.Setup(ctx, cfg.Logging.Service, cfg.Telemetry.Endpoint)
		if err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Warn("telemetry shutdown", "error", err)
			}
		}()
	}

	// Instruments work against the no-op global provider when telemetry is
	// disabled, so the recorder is wired unconditionally.
	metrics, err := rcaotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Remote agent runtime ---
	runtime, err := agentruntime.New(cfg.Runtime.Provider, map[string]string{
		"region":       cfg.Agent.Region,
		"max_retries":  fmt.Sprintf("%d", cfg.Runtime.MaxRetries),
		"read_timeout": cfg.Runtime.ReadTimeout.String(),
	})
	if err != nil {
		return fmt.Errorf("agent runtime: %w", err)
	}

	breaker := resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Cooldown)

	agentSvc, err := service.NewAgentService(chat.AgentIdentity{
		AgentID:      cfg.Agent.ID,
		AgentAliasID: cfg.Agent.AliasID,
		Region:       cfg.Agent.Region,
		Environment:  cfg.Agent.Environment,
	}, runtime,
		service.WithBreaker(breaker),
		service.WithRecorder(metrics),
	)
	if err != nil {
		return fmt.Errorf("agent service: %w", err)
	}

	// --- Idempotency cache ---
	idemCache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer idemCache.Close()

	// --- HTTP ---
	hub := ws.NewHub()
	handlers := &rcahttp.Handlers{
		Agent:   agentSvc,
		History: service.NewHistory(),
		Hub:     hub,
	}

	r := chi.NewRouter()
	r.Use(rcahttp.CORS(cfg.Server.CORSOrigin))
	r.Use(rcahttp.SecurityHeaders)
	// RequestID must run before Logger so log lines carry the id.
	r.Use(middleware.RequestID)
	r.Use(rcahttp.Logger)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if cfg.Telemetry.Enabled {
		r.Use(rcaotel.HTTPMiddleware(cfg.Logging.Service))
	}

	r.Get("/health", healthHandler(cfg, hub))
	r.Get("/ws", hub.HandleWS)
	rcahttp.MountUI(r)
	rcahttp.MountRoutes(r, handlers, idemCache, cfg.Cache.TTL)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// Write timeout must cover a full agent invocation, which can run
		// for minutes with deep tool use.
		WriteTimeout: cfg.Runtime.ReadTimeout + time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)

	g.Go(func() error {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// healthHandler reports service status and the configured agent target.
func healthHandler(cfg *config.Config, hub *ws.Hub) http.HandlerFunc {
	type healthStatus struct {
		Status      string `json:"status"`
		AgentID     string `json:"agent_id"`
		Region      string `json:"region"`
		Environment string `json:"environment"`
		WSClients   int    `json:"ws_clients"`
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		status := healthStatus{
			Status:      "ok",
			AgentID:     cfg.Agent.ID,
			Region:      cfg.Agent.Region,
			Environment: cfg.Agent.Environment,
			WSClients:   hub.ConnectionCount(),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(status)
	}
}
