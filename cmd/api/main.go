package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/backoffice/api/controllers"
	"github.com/angelmondragon/backoffice/api/routes"
	"github.com/angelmondragon/backoffice/internal/backoffice"
	"github.com/angelmondragon/backoffice/internal/cron"
	"github.com/angelmondragon/backoffice/internal/ledger"
	"github.com/angelmondragon/backoffice/internal/seed"
	"github.com/angelmondragon/backoffice/pkg/clock"
	"github.com/angelmondragon/backoffice/pkg/config"
	"github.com/angelmondragon/backoffice/pkg/db"
	"github.com/angelmondragon/backoffice/pkg/env"
	"github.com/angelmondragon/backoffice/pkg/instance"
	"github.com/angelmondragon/backoffice/pkg/logger"
	"github.com/angelmondragon/backoffice/pkg/metrics"
	"github.com/angelmondragon/backoffice/pkg/migrate"
	"github.com/angelmondragon/backoffice/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Instance:    instance.ID(),
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reorderPoint := cfg.Inventory.DefaultReorderPoint
	store := ledger.New(ledger.Options{
		Clock:               clock.System{},
		DefaultReorderPoint: &reorderPoint,
	})
	readiness := map[string]controllers.Pinger{}

	if cfg.DB.Enabled() {
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			os.Exit(1)
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing database", err)
			}
		}()
		readiness["database"] = dbClient

		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "failed to run dev migrations", err)
			os.Exit(1)
		}

		loader, err := seed.NewLoader(dbClient, seed.NewRepository(dbClient.DB()), logg)
		if err != nil {
			logg.Error(ctx, "failed to create seed loader", err)
			os.Exit(1)
		}
		if _, err := loader.Load(ctx, store); err != nil {
			logg.Error(ctx, "failed to seed ledger", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(ctx, "no reference database configured, ledger starts empty")
	}

	deps := routes.Deps{Readiness: readiness}
	var housekeepingLock cron.Lock
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		readiness["redis"] = redisClient
		deps.Idempotency = redisClient

		housekeepingLock, err = cron.NewRedisLock(redisClient, redisClient.LockKey("housekeeping"), cfg.Housekeeping.LockTTL)
		if err != nil {
			logg.Error(ctx, "failed to create housekeeping lock", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(ctx, "no redis configured, idempotency keys are not enforced")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps.Gatherer = registry

	svc, err := backoffice.NewService(backoffice.Deps{
		Store:    store,
		Metrics:  metrics.NewLedgerMetrics(registry),
		Logger:   logg,
		FeedSize: cfg.Notifications.FeedSize,
	})
	if err != nil {
		logg.Error(ctx, "failed to create back-office service", err)
		os.Exit(1)
	}

	if cfg.Housekeeping.Enabled {
		housekeeping, err := newHousekeeping(cfg, logg, svc, housekeepingLock, registry)
		if err != nil {
			logg.Error(ctx, "failed to create housekeeping loop", err)
			os.Exit(1)
		}
		go func() {
			if err := housekeeping.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logg.Error(ctx, "housekeeping loop exited", err)
			}
		}()
	}

	addr := ":" + env.First(cfg.App.Port, "PORT")
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, svc, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server shutting down gracefully")
	}
}

func newHousekeeping(cfg *config.Config, logg *logger.Logger, svc *backoffice.Service, lock cron.Lock, reg prometheus.Registerer) (*cron.Service, error) {
	retention, err := cron.NewNotificationRetentionJob(logg, svc.Notifications(), cfg.Housekeeping.NotificationRetention, nil)
	if err != nil {
		return nil, err
	}
	digest, err := cron.NewStockDigestJob(logg, svc)
	if err != nil {
		return nil, err
	}
	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Jobs:     []cron.Job{digest, retention},
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(reg),
		Interval: cfg.Housekeeping.Interval,
	})
}
