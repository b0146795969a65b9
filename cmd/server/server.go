package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/JaimeStill/lyceum/internal/config"
	"github.com/JaimeStill/lyceum/internal/infrastructure"
)

// Server wires the lifecycle orchestrator API onto the shared
// infrastructure and owns the process from startup to shutdown.
type Server struct {
	cfg     *config.Config
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("infrastructure: %w", err)
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, fmt.Errorf("modules: %w", err)
	}

	router := buildRouter(infra)
	modules.Mount(router)

	return &Server{
		cfg:     cfg,
		infra:   infra,
		modules: modules,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// Run starts the server and blocks until ctx is cancelled or the process
// receives SIGINT or SIGTERM, then shuts down within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := s.start(); err != nil {
		return err
	}

	<-ctx.Done()
	return s.shutdown(s.cfg.ShutdownTimeoutDuration())
}

func (s *Server) start() error {
	if err := s.infra.Start(); err != nil {
		return err
	}
	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	s.infra.Logger.Info("lyceum starting",
		"addr", s.cfg.Server.Addr(),
		"env", s.cfg.Env(),
		"version", s.cfg.Version,
		"api", s.modules.API.Prefix(),
		"ledger", ledgerKind(s.infra),
	)

	go s.reportReadiness()
	return nil
}

// reportReadiness logs the first readiness result once every startup hook
// has run. A failing check here usually means the database or blob store
// was unreachable at boot.
func (s *Server) reportReadiness() {
	s.infra.Lifecycle.WaitForStartup()

	ctx, cancel := context.WithTimeout(s.infra.Lifecycle.Context(), readinessTimeout)
	defer cancel()

	failures, ready := s.infra.Lifecycle.Ready(ctx)
	if ready {
		s.infra.Logger.Info("lyceum ready")
		return
	}
	for name, err := range failures {
		s.infra.Logger.Warn("readiness check failing", "check", name, "error", err)
	}
}

func (s *Server) shutdown(timeout time.Duration) error {
	started := time.Now()
	s.infra.Logger.Info("lyceum stopping", "timeout", timeout)

	if err := s.infra.Lifecycle.Shutdown(timeout); err != nil {
		return err
	}

	s.infra.Logger.Info("lyceum stopped", "elapsed", time.Since(started))
	return nil
}

// ledgerKind names where credentials exhaustion is recorded.
func ledgerKind(infra *infrastructure.Infrastructure) string {
	if infra.Cache != nil {
		return "redis"
	}
	return "memory"
}
