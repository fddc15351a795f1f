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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/vendorkyc-backend/internal/cron"
	"github.com/angelmondragon/vendorkyc-backend/internal/vendors"
	"github.com/angelmondragon/vendorkyc-backend/pkg/config"
	"github.com/angelmondragon/vendorkyc-backend/pkg/db"
	"github.com/angelmondragon/vendorkyc-backend/pkg/instance"
	"github.com/angelmondragon/vendorkyc-backend/pkg/logger"
	"github.com/angelmondragon/vendorkyc-backend/pkg/metrics"
	"github.com/angelmondragon/vendorkyc-backend/pkg/migrate"
	"github.com/angelmondragon/vendorkyc-backend/pkg/outbox"
	"github.com/angelmondragon/vendorkyc-backend/pkg/redis"
)

const serviceName = "cron-worker"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "instance": instance.GetID()})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	jobMetrics := metrics.NewCronJobMetrics(registry)

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(serviceName, cfg.App.Env), 0)
	if err != nil {
		return err
	}

	jobs, err := buildJobs(cfg, logg, dbClient, jobMetrics)
	if err != nil {
		return err
	}
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: jobs,
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		return err
	}

	metricsServer := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logg.Info(ctx, "starting cron worker")
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})
	group.Go(func() error {
		if err := service.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	if err := group.Wait(); err != nil {
		return err
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
	return nil
}

func buildJobs(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, jobMetrics *metrics.CronJobMetrics) (*cron.Registry, error) {
	retention, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:        logg,
		DB:            dbClient,
		Repository:    outbox.NewRepository(dbClient.DB()),
		RetentionDays: cfg.Cron.OutboxRetentionDays,
	})
	if err != nil {
		return nil, err
	}
	backlog, err := cron.NewReviewBacklogJob(cron.ReviewBacklogJobParams{
		Logger:     logg,
		Repository: vendors.NewRepository(dbClient.DB()),
		Gauge:      jobMetrics,
		SLA:        time.Duration(cfg.Cron.ReviewSLAHours) * time.Hour,
	})
	if err != nil {
		return nil, err
	}

	jobs := cron.NewRegistry()
	for _, job := range []cron.Job{retention, backlog} {
		if err := jobs.Register(job); err != nil {
			return nil, err
		}
	}
	return jobs, nil
}
