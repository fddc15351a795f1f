package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/vendorkyc-backend/api/controllers"
	"github.com/angelmondragon/vendorkyc-backend/api/middleware"
	"github.com/angelmondragon/vendorkyc-backend/internal/auth"
	"github.com/angelmondragon/vendorkyc-backend/internal/documents"
	"github.com/angelmondragon/vendorkyc-backend/internal/vendors"
	"github.com/angelmondragon/vendorkyc-backend/pkg/auth/session"
	"github.com/angelmondragon/vendorkyc-backend/pkg/config"
	"github.com/angelmondragon/vendorkyc-backend/pkg/enums"
	"github.com/angelmondragon/vendorkyc-backend/pkg/logger"
	"github.com/angelmondragon/vendorkyc-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/vendorkyc-backend/pkg/redis"
)

// RedisStore is the Redis surface the HTTP layer needs. A nil store disables
// rate limiting and idempotency replay.
type RedisStore interface {
	pkgredis.RateLimiter
	pkgredis.IdempotencyStore
	Ping(ctx context.Context) error
}

// Services groups the domain services exposed over HTTP.
type Services struct {
	Auth      auth.Service
	Vendors   vendors.Service
	Documents documents.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	storeP controllers.Pinger,
	redisStore RedisStore,
	sessions session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	var (
		limiter     pkgredis.RateLimiter
		idempotency pkgredis.IdempotencyStore
		redisProbe  controllers.Pinger
	)
	if redisStore != nil {
		limiter, idempotency, redisProbe = redisStore, redisStore, redisStore
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg,
			controllers.HealthProbe{Name: "db", Pinger: dbP},
			controllers.HealthProbe{Name: "redis", Pinger: redisProbe},
			controllers.HealthProbe{Name: "storage", Pinger: storeP},
		))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/vendor/login", controllers.AuthVendorLogin(svc.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/admin/login", controllers.AuthAdminLogin(svc.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Post("/logout", controllers.AuthLogout(svc.Auth, logg))
			r.Get("/me", controllers.AuthMe(svc.Auth, logg))
		})
	})

	r.Route("/api/v1/vendors", func(r chi.Router) {
		r.With(
			middleware.AuthRateLimit(registerPolicy, limiter, logg),
			middleware.Idempotency(idempotency, logg),
		).Post("/register", controllers.VendorRegister(svc.Vendors, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Use(middleware.RequireRole(enums.UserRoleVendor, logg))
			r.Get("/profile", controllers.VendorProfile(svc.Vendors, logg))
			r.Put("/{vendorId}", controllers.VendorUpdateProfile(svc.Vendors, logg))
			r.Post("/{vendorId}/documents", controllers.VendorDocumentUpload(svc.Documents, cfg.Storage.MaxUploadBytes(), logg))
			r.Delete("/{vendorId}/documents/{documentId}", controllers.VendorDocumentDelete(svc.Documents, logg))
		})

		// Owners and admins both read documents; the service checks which.
		r.With(middleware.Auth(cfg.JWT, sessions, logg)).
			Get("/{vendorId}/documents/{documentId}/file", controllers.VendorDocumentFile(svc.Documents, logg))
	})

	r.Route("/api/v1/admin/vendors", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))
		r.Get("/", controllers.AdminVendorList(svc.Vendors, logg))
		r.Get("/stats", controllers.AdminVendorStats(svc.Vendors, logg))
		r.Get("/{vendorId}", controllers.AdminVendorGet(svc.Vendors, logg))
		// Idempotency runs per route so it sees the full pattern.
		r.With(middleware.Idempotency(idempotency, logg)).
			Put("/{vendorId}/status", controllers.AdminVendorSetStatus(svc.Vendors, logg))
	})

	return r
}
