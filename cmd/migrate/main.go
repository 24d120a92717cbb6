package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/mallcart/pkg/config"
	"github.com/angelmondragon/mallcart/pkg/db"
	"github.com/angelmondragon/mallcart/pkg/logger"
	"github.com/angelmondragon/mallcart/pkg/migrate"
)

func main() {
	ctx := context.Background()
	// bootstrap logger early (then re-init after config load)
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|create|validate")
	dir := flag.String("dir", "", "read migrations from this directory instead of the embedded set")

	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")

	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	src := migrate.Embedded()
	if *dir != "" {
		src = migrate.FromDisk(*dir)
	}

	ctx = logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
		"dir": src.Dir,
	})

	// Commands that do NOT require DB
	switch *cmd {
	case "create":
		if *name == "" {
			fail("missing -name for create")
		}
		target := *dir
		if target == "" {
			target = migrate.DefaultDir
		}
		path, err := migrate.CreateSQLMigration(target, *name, time.Now())
		if err != nil {
			fail("failed to create migration: %v", err)
		}
		fmt.Println("created migration:", path)
		return

	case "validate":
		if err := migrate.Validate(src); err != nil {
			fail("migration validation failed: %v", err)
		}
		fmt.Println("migration validation passed")
		return
	}

	requireResource(ctx, logg, "database dsn", cfg.DB.EnsureDSN())
	dialect, err := migrate.Dialect(cfg.DB.Driver)
	requireResource(ctx, logg, "database dialect", err)

	sqlDB, closeDB, err := openSQL(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer closeDB()

	logg.Info(ctx, "migrate ready")

	switch *cmd {
	case "up", "down", "status":
		if err := migrate.Run(ctx, sqlDB, dialect, src, *cmd); err != nil {
			fail("goose %s failed: %v", *cmd, err)
		}

	case "version":
		if *version == "" {
			current, err := migrate.CurrentVersion(sqlDB, dialect)
			if err != nil {
				fail("reading db version failed: %v", err)
			}
			fmt.Println("current version:", current)
			return
		}
		if err := migrate.MigrateToVersion(ctx, sqlDB, dialect, src, *version); err != nil {
			fail("goose version migrate failed: %v", err)
		}

	default:
		fail("unknown -cmd value: %s", *cmd)
	}
}

// openSQL uses lib/pq directly for postgres; sqlite goes through the gorm client.
func openSQL(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*sql.DB, func(), error) {
	if strings.EqualFold(cfg.Driver, config.DriverSQLite) {
		client, err := db.New(ctx, cfg, logg)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := client.SQL()
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return sqlDB, func() { _ = client.Close() }, nil
	}

	sqlDB, err := migrate.OpenPostgres(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	return sqlDB, func() { _ = sqlDB.Close() }, nil
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
