package controllers

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/vendorkyc-backend/api/responses"
	"github.com/angelmondragon/vendorkyc-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/vendorkyc-backend/pkg/errors"
	"github.com/angelmondragon/vendorkyc-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency probed by the readiness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthProbe names a dependency for readiness reporting.
type HealthProbe struct {
	Name   string
	Pinger Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-VendorKYC-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every probe concurrently and fails on the first error.
func HealthReady(cfg *config.Config, logg *logger.Logger, probes ...HealthProbe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-VendorKYC-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		for _, probe := range probes {
			probe := probe
			if probe.Pinger == nil {
				continue
			}
			g.Go(func() error {
				if err := probe.Pinger.Ping(gctx); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, probe.Name+" unavailable").
						WithDetails(map[string]string{"dependency": probe.Name})
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
