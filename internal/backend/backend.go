// Package backend opens the slot storage selected by MALLCART_CART_BACKEND.
package backend

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/multierr"

	"github.com/angelmondragon/mallcart/internal/cart"
	"github.com/angelmondragon/mallcart/pkg/config"
	"github.com/angelmondragon/mallcart/pkg/db"
	"github.com/angelmondragon/mallcart/pkg/logger"
	"github.com/angelmondragon/mallcart/pkg/migrate"
	"github.com/angelmondragon/mallcart/pkg/redis"
	"github.com/angelmondragon/mallcart/pkg/storage/memory"
)

// Slots is a cart storage that can also drop a slot.
type Slots interface {
	cart.Storage
	Delete(ctx context.Context, key string) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Backend is an opened slot store plus the connections behind it.
type Backend struct {
	Name  string
	Slots Slots

	ping    pinger
	closers []io.Closer
}

// Open connects the configured backend. The sql backend also applies dev
// auto-migrations.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*Backend, error) {
	switch cfg.Cart.Backend {
	case config.BackendMemory, "":
		store := memory.New()
		return &Backend{Name: config.BackendMemory, Slots: store, ping: store}, nil

	case config.BackendRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrapping redis: %w", err)
		}
		return &Backend{
			Name:    config.BackendRedis,
			Slots:   redis.NewSlotStore(client, cfg.Redis.SlotTTL),
			ping:    client,
			closers: []io.Closer{client},
		}, nil

	case config.BackendSQL:
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrapping database: %w", err)
		}
		if err := migrate.MaybeRunDev(ctx, cfg, logg, client); err != nil {
			return nil, multierr.Append(fmt.Errorf("running dev migrations: %w", err), client.Close())
		}
		return &Backend{
			Name:    config.BackendSQL,
			Slots:   cart.NewSlotRepository(client.DB()),
			ping:    client,
			closers: []io.Closer{client},
		}, nil
	}
	return nil, fmt.Errorf("unsupported cart backend %q", cfg.Cart.Backend)
}

func (b *Backend) Ping(ctx context.Context) error {
	if b == nil || b.ping == nil {
		return nil
	}
	return b.ping.Ping(ctx)
}

// Close releases every connection and reports all failures.
func (b *Backend) Close() error {
	if b == nil {
		return nil
	}
	var err error
	for _, c := range b.closers {
		err = multierr.Append(err, c.Close())
	}
	b.closers = nil
	return err
}
