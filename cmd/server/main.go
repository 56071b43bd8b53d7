package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"lanmap/internal/adapter"
	"lanmap/internal/config"
	"lanmap/internal/domain"
	"lanmap/internal/handler"
	"lanmap/internal/hub"
	"lanmap/internal/loader"
	"lanmap/internal/metrics"
	"lanmap/internal/repository/sqlite"
	"lanmap/internal/service"
	"lanmap/internal/watcher"
)

func main() {
	configPath := flag.String("config", "", "config file path (overrides search path)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	flag.Parse()

	log := logrus.New()

	cfg, path, err := loadConfig(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	configureLogging(log, cfg.Log)
	if path != "" {
		log.WithField("path", path).Info("config loaded")
	} else {
		log.Info("no config file found, using defaults")
	}

	clock := clockwork.NewRealClock()

	// Snapshot store
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer repo.Close()
	log.WithField("path", cfg.Database.Path).Info("database opened")

	// Static inventory
	inventory := loader.NewStore(cfg.Inventory.Path, log)
	if cfg.Inventory.Path != "" {
		if err := inventory.Load(); err != nil {
			log.WithError(err).Warn("failed to load static inventory")
		}
	}

	// Adapters
	registry := adapter.NewRegistry(log)
	registerAdapters(registry, cfg, inventory, clock, log)

	// Engine
	bus := service.NewEventBus()
	met := metrics.New(prometheus.DefaultRegisterer)
	rec := service.NewReconciler(cfg.Pass.ActivityThresholdSeconds, domain.NewOUITable(cfg.Vendors))

	ctrl := service.NewController(service.ControllerConfig{
		Interval: cfg.Pass.Interval.Std(),
		Deadline: cfg.Pass.Deadline.Std(),
		CacheTTL: cfg.Pass.CacheTTL.Std(),
		Gateways: gateways(cfg),
	}, registry, rec, repo, met, bus, clock, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ctrl.Hydrate(ctx); err != nil {
		log.WithError(err).Warn("failed to hydrate cached graph")
	}

	// SSE hub fed from the event bus
	sseHub := hub.New(log)
	go sseHub.Run(ctx)

	eventChan := make(chan service.Event, 100)
	bus.Subscribe(eventChan)
	go func() {
		for event := range eventChan {
			sseHub.Broadcast(event)
		}
	}()

	// Inventory watcher: changed file -> reload, next pass sees it
	if cfg.Inventory.Path != "" {
		w := watcher.New(cfg.Inventory.Path, func() {
			if err := inventory.Load(); err != nil {
				log.WithError(err).Warn("inventory reload failed")
				return
			}
			bus.Publish(service.Event{Type: service.EventInventoryReload})
		}, log)
		go func() {
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Warn("inventory watcher stopped")
			}
		}()
	}

	// Pass scheduler
	go func() {
		if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("controller stopped")
		}
	}()

	// HTTP API
	api := handler.New(ctrl, repo, sseHub, promhttp.Handler(), log)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Routes(cfg.Server.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("shutdown incomplete")
	}
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

func configureLogging(log *logrus.Logger, cfg config.LogConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func registerAdapters(registry *adapter.Registry, cfg *config.Config, inventory *loader.Store, clock clockwork.Clock, log *logrus.Logger) {
	if a := cfg.Adapters.Realtime; a.IsEnabled() {
		mustRegister(registry, adapter.NewRealtime(a.BaseURL, a.Timeout.Std(), a.RetryCount(2), clock, log), log)
	}
	if a := cfg.Adapters.PortConfig; a.IsEnabled() {
		mustRegister(registry, adapter.NewPortConfig(a.BaseURL, a.Timeout.Std(), a.RetryCount(2), clock, log), log)
	}
	if a := cfg.Adapters.Lease; a.IsEnabled() {
		mustRegister(registry, adapter.NewLease(a.BaseURL, a.Timeout.Std(), a.RetryCount(2), clock, log), log)
	}
	if a := cfg.Adapters.ARP; a.IsEnabled() {
		mustRegister(registry, adapter.NewARP(a.BaseURL, a.Timeout.Std(), a.RetryCount(2), clock, log), log)
	}
	if cfg.Inventory.Path != "" {
		mustRegister(registry, adapter.NewStatic(inventory, clock, log), log)
	}
}

func mustRegister(registry *adapter.Registry, a adapter.Adapter, log *logrus.Logger) {
	if err := registry.Register(a); err != nil {
		log.WithError(err).Fatal("failed to register adapter")
	}
}

func gateways(cfg *config.Config) []domain.GatewayDescriptor {
	out := make([]domain.GatewayDescriptor, 0, len(cfg.Gateways))
	for _, gw := range cfg.Gateways {
		out = append(out, domain.GatewayDescriptor{ID: gw.ID, Name: gw.Name, IP: gw.IP})
	}
	return out
}
