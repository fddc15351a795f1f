package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/vendorkyc-backend/api/routes"
	"github.com/angelmondragon/vendorkyc-backend/internal/auth"
	"github.com/angelmondragon/vendorkyc-backend/internal/documents"
	"github.com/angelmondragon/vendorkyc-backend/internal/users"
	"github.com/angelmondragon/vendorkyc-backend/internal/vendors"
	"github.com/angelmondragon/vendorkyc-backend/pkg/auth/session"
	"github.com/angelmondragon/vendorkyc-backend/pkg/config"
	"github.com/angelmondragon/vendorkyc-backend/pkg/db"
	"github.com/angelmondragon/vendorkyc-backend/pkg/logger"
	"github.com/angelmondragon/vendorkyc-backend/pkg/metrics"
	"github.com/angelmondragon/vendorkyc-backend/pkg/migrate"
	"github.com/angelmondragon/vendorkyc-backend/pkg/outbox"
	"github.com/angelmondragon/vendorkyc-backend/pkg/redis"
	"github.com/angelmondragon/vendorkyc-backend/pkg/storage"
	"github.com/angelmondragon/vendorkyc-backend/pkg/storage/gcs"
	"github.com/angelmondragon/vendorkyc-backend/pkg/storage/local"
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
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	store, err := newObjectStore(ctx, cfg, logg)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	userRepo := users.NewRepository(dbClient.DB())
	vendorRepo := vendors.NewRepository(dbClient.DB())

	vendorService, err := vendors.NewService(vendors.ServiceParams{
		TxRunner:   dbClient,
		Repository: vendorRepo,
		Outbox:     outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		Metrics:    metrics.NewVendorMetrics(registry),
		Logger:     logg,
	})
	if err != nil {
		return err
	}

	documentService, err := documents.NewService(vendorService, store, cfg.Storage.MaxUploadBytes(), logg)
	if err != nil {
		return err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		TxRunner:       dbClient,
		UserRepo:       userRepo,
		VendorRepo:     vendorRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	})
	if err != nil {
		return err
	}

	if admin, err := auth.EnsureBootstrapAdmin(ctx, dbClient, userRepo, cfg.Admin, cfg.Password); err != nil {
		return err
	} else if admin != nil {
		logg.Info(logg.WithField(ctx, "admin_email", admin.Email), "bootstrap admin ensured")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, store, redisClient, sessionManager,
			metrics.NewHTTPMetrics(registry), registry, routes.Services{
				Auth:      authService,
				Vendors:   vendorService,
				Documents: documentService,
			}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":             cfg.App.Env,
		"addr":            addr,
		"storage_backend": cfg.Storage.Backend,
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newObjectStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (storage.ObjectStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Backend)) {
	case config.StorageBackendGCS:
		client, err := gcs.NewClient(ctx, cfg.Storage, cfg.GCP, logg)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		store, err := local.New(cfg.Storage.LocalDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}
