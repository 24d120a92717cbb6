package controllers

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/mallcart/api/responses"
	"github.com/angelmondragon/mallcart/pkg/config"
	pkgerrors "github.com/angelmondragon/mallcart/pkg/errors"
	"github.com/angelmondragon/mallcart/pkg/logger"
)

const (
	EnvHeader         = "X-Mallcart-Env"
	readyCheckTimeout = 2 * time.Second
	statusLive        = "live"
	statusReady       = "ready"
	statusCheckOK     = "ok"
)

// Pinger is a dependency that readiness reports on.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(EnvHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": statusLive})
	}
}

// HealthReady pings every dependency concurrently and answers 503 with per-check
// details when any of them fails.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks map[string]Pinger) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name, p := range checks {
		if p != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(EnvHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		var (
			mu      sync.Mutex
			results = make(map[string]string, len(names))
		)
		g, gctx := errgroup.WithContext(ctx)
		for _, name := range names {
			pinger := checks[name]
			g.Go(func() error {
				status := statusCheckOK
				err := pinger.Ping(gctx)
				if err != nil {
					status = err.Error()
				}
				mu.Lock()
				results[name] = status
				mu.Unlock()
				return err
			})
		}

		if err := g.Wait(); err != nil {
			logg.Warn(logg.WithFields(r.Context(), map[string]any{"checks": results}), "health.not_ready")
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dependency unavailable").WithDetails(results))
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": statusReady, "checks": results})
	}
}
