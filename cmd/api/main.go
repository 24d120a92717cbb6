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
	"go.uber.org/multierr"

	"github.com/angelmondragon/mallcart/api/controllers"
	"github.com/angelmondragon/mallcart/api/routes"
	"github.com/angelmondragon/mallcart/internal/backend"
	"github.com/angelmondragon/mallcart/internal/cart"
	"github.com/angelmondragon/mallcart/internal/cartevents"
	"github.com/angelmondragon/mallcart/pkg/config"
	"github.com/angelmondragon/mallcart/pkg/env"
	"github.com/angelmondragon/mallcart/pkg/instance"
	"github.com/angelmondragon/mallcart/pkg/logger"
	"github.com/angelmondragon/mallcart/pkg/metrics"
	"github.com/angelmondragon/mallcart/pkg/pubsub"
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

	slots, err := backend.Open(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, slots.Close())
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	observers := cart.Observers{metrics.NewCartMetrics(reg)}
	checks := map[string]controllers.Pinger{"storage": slots}

	if cfg.Events.Enabled() {
		events, evErr := pubsub.NewClient(ctx, cfg.Events, logg)
		if evErr != nil {
			return evErr
		}
		defer func() {
			err = multierr.Append(err, events.Close())
		}()
		observers = append(observers, cartevents.NewPublisher(events.CartPublisher(), cartevents.Options{Logger: logg}))
		checks["events"] = events
	}

	factory := cart.Factory{
		Storage:   slots.Slots,
		KeyPrefix: cfg.Cart.KeyPrefix,
		Logger:    logg,
		Observer:  observers,
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"backend":  slots.Name,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, factory, checks, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "api server shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
