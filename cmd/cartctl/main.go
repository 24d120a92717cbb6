package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/mallcart/internal/backend"
	"github.com/angelmondragon/mallcart/pkg/auth/session"
	"github.com/angelmondragon/mallcart/pkg/config"
	"github.com/angelmondragon/mallcart/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cartctl"})
	_ = godotenv.Load()

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "cartctl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Output:      os.Stderr,
	})

	ctx := logg.WithFields(context.Background(), map[string]any{"cmd": opts.cmd, "backend": cfg.Cart.Backend})
	slots, err := backend.Open(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to open cart backend", err)
		os.Exit(1)
	}

	a := &app{
		cfg:   cfg,
		logg:  logg,
		slots: slots.Slots,
		env:   session.EnvGetter{Prefix: config.EnvPrefix},
		out:   os.Stdout,
	}
	runErr := a.run(ctx, opts)
	if err := slots.Close(); err != nil {
		logg.Error(ctx, "error closing cart backend", err)
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(1)
	}
}
