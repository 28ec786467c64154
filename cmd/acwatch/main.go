package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/joshp123/acwatch/internal/config"
	"github.com/joshp123/acwatch/internal/core"
	"github.com/joshp123/acwatch/internal/plugins"
	"github.com/joshp123/acwatch/internal/publish"
	"github.com/joshp123/acwatch/internal/rate"
	"github.com/joshp123/acwatch/internal/refresh"
	"github.com/joshp123/acwatch/internal/router"
	"github.com/joshp123/acwatch/internal/server"
	"github.com/joshp123/acwatch/internal/session"
	"github.com/joshp123/acwatch/internal/store"
)

const (
	healthSyncInterval = 15 * time.Second
	shutdownTimeout    = 5 * time.Second
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      logLevel(),
		TimeFormat: time.DateTime,
	}))

	cfg, err := loadConfig(envOrDefault("ACWATCH_CONFIG", config.DefaultPath))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	providers := plugins.Compiled(cfg, logger)
	if err := core.ValidateProviders(providers); err != nil {
		log.Fatalf("providers: %v", err)
	}
	if err := core.ValidateEnabledProviders(providers, config.EnabledProviders(cfg)); err != nil {
		log.Fatalf("providers: %v", err)
	}
	if len(providers) == 0 {
		logger.Warn("no providers configured; /api/units will serve an empty list")
	}
	if dir := os.Getenv("ACWATCH_DASHBOARD_DIR"); dir != "" {
		if err := core.WriteDashboards(dir, providers); err != nil {
			log.Fatalf("dashboards: %v", err)
		}
		logger.Info("wrote provider dashboards", "dir", dir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	unitStore := store.New()
	controller, err := refresh.NewController(logger, refresh.Config{
		Clock:    clock,
		Fetcher:  core.NewFetcher(providers),
		Store:    unitStore,
		Name:     "bridge",
		Interval: cfg.Core.PollInterval,
	})
	if err != nil {
		log.Fatalf("refresh: %v", err)
	}

	collectors := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "acwatch_build_info",
			Help: "Build information",
		}, func() float64 { return 1 }),
	}
	collectors = append(collectors, controller.Collectors()...)
	collectors = append(collectors, session.MetricsCollectors()...)
	collectors = append(collectors, rate.MetricsCollectors()...)

	var bridge *publish.Bridge
	if cfg.MQTT != nil {
		password, err := config.ReadSecret("", cfg.MQTT.PasswordFile)
		if err != nil {
			log.Fatalf("mqtt: %v", err)
		}
		client, err := publish.Dial(publish.Config{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			Username:    cfg.MQTT.Username,
			Password:    password,
			TopicPrefix: cfg.MQTT.TopicPrefix,
		})
		if err != nil {
			log.Fatalf("mqtt: %v", err)
		}
		defer client.Close()
		bridge = publish.NewBridge(logger, client, unitStore, cfg.MQTT.TopicPrefix)
		collectors = append(collectors, bridge.Collectors()...)
	}

	registry := core.NewRegistry(providers)
	httpServer := server.NewHTTPServer(cfg.Core.HTTPAddr, server.NewMux(server.Routes{
		Store:    unitStore,
		Registry: registry,
		Metrics:  core.MetricsRegistry(providers, collectors...),
	}))

	grpcServer, err := server.NewGRPCServer(cfg.Core.GRPCAddr)
	if err != nil {
		log.Fatalf("grpc listen: %v", err)
	}

	if err := controller.Start(ctx); err != nil {
		log.Fatalf("refresh start: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http listening", "addr", cfg.Core.HTTPAddr)
		return httpServer.ListenAndServe()
	})
	g.Go(func() error {
		logger.Info("grpc listening", "addr", cfg.Core.GRPCAddr)
		return grpcServer.Serve()
	})
	g.Go(func() error {
		router.SyncHealth(gctx, clock, healthSyncInterval, grpcServer.Health, providers)
		return nil
	})
	if bridge != nil {
		g.Go(func() error { return bridge.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		controller.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		grpcServer.Stop()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("serve: %v", err)
	}
	logger.Info("shutdown complete")
}

// loadConfig falls back to environment-only config when the file is absent.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

func logLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(envOrDefault("ACWATCH_LOG_LEVEL", "info"))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
