package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/angelmondragon/mallcart/internal/backend"
	"github.com/angelmondragon/mallcart/internal/cart"
	"github.com/angelmondragon/mallcart/pkg/auth"
	"github.com/angelmondragon/mallcart/pkg/auth/session"
	"github.com/angelmondragon/mallcart/pkg/config"
	"github.com/angelmondragon/mallcart/pkg/logger"
)

var errUsage = errors.New("usage: cartctl -cmd show|add|update|remove|clear|whoami|purge [flags]")

type options struct {
	cmd       string
	token     string
	identity  string
	product   string
	productID string
	quantity  float64
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("cartctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.cmd, "cmd", "show", "command: show|add|update|remove|clear|whoami|purge")
	fs.StringVar(&opts.token, "token", "", "session token; defaults to the MALLCART_TOKEN/MALLCART_AUTH_TOKEN env slots")
	fs.StringVar(&opts.identity, "identity", "", "cart identity, bypassing token decoding")
	fs.StringVar(&opts.product, "product", "", "product JSON (for add)")
	fs.StringVar(&opts.productID, "product-id", "", "product id (for update and remove)")
	fs.Float64Var(&opts.quantity, "quantity", 1, "quantity (for add and update)")
	if err := fs.Parse(args); err != nil {
		return options{}, fmt.Errorf("%w: %v", errUsage, err)
	}
	opts.cmd = strings.ToLower(strings.TrimSpace(opts.cmd))
	return opts, nil
}

type app struct {
	cfg   *config.Config
	logg  *logger.Logger
	slots backend.Slots
	env   session.Getter
	out   io.Writer
}

func (a *app) resolver(opts options) cart.IdentityResolver {
	if id := strings.TrimSpace(opts.identity); id != "" {
		return cart.StaticIdentity(id)
	}
	var src session.TokenSource = session.SlotTokenSource{
		Getter:  a.env,
		Primary: a.cfg.Cart.TokenSlot,
		Legacy:  a.cfg.Cart.LegacyTokenSlot,
	}
	if opts.token != "" {
		src = session.StaticTokenSource(opts.token)
	}
	return auth.NewResolver(src, auth.ResolverOptions{
		Claims: a.cfg.Cart.IdentityClaims,
		Guest:  a.cfg.Cart.GuestIdentity,
		Logger: a.logg,
	})
}

func (a *app) keyPrefix() string {
	if a.cfg.Cart.KeyPrefix != "" {
		return a.cfg.Cart.KeyPrefix
	}
	return cart.DefaultKeyPrefix
}

var commands = map[string]bool{
	"show": true, "add": true, "update": true, "remove": true,
	"clear": true, "whoami": true, "purge": true,
}

func (a *app) run(ctx context.Context, opts options) error {
	if !commands[opts.cmd] {
		return fmt.Errorf("%w: unknown -cmd %q", errUsage, opts.cmd)
	}
	resolver := a.resolver(opts)

	switch opts.cmd {
	case "whoami":
		identity := resolver.ResolveIdentity(ctx)
		return a.print(map[string]string{
			"identity": identity,
			"key":      cart.StorageKey(a.keyPrefix(), identity),
		})

	case "purge":
		key := cart.StorageKey(a.keyPrefix(), resolver.ResolveIdentity(ctx))
		if err := a.slots.Delete(ctx, key); err != nil {
			return fmt.Errorf("purging %s: %w", key, err)
		}
		return a.print(map[string]string{"purged": key})
	}

	store, err := cart.New(ctx, cart.Options{
		Storage:   a.slots,
		Resolver:  resolver,
		KeyPrefix: a.keyPrefix(),
		Logger:    a.logg,
	})
	if err != nil {
		return err
	}

	switch opts.cmd {
	case "show":
	case "add":
		product, err := cart.ParseProduct([]byte(opts.product))
		if err != nil {
			return fmt.Errorf("parsing -product: %w", err)
		}
		if product.Identity() == "" {
			return errors.New("-product has no id")
		}
		store.AddToCart(ctx, product, cart.AddQuantity(opts.quantity))
	case "update":
		if opts.productID == "" {
			return errors.New("missing -product-id for update")
		}
		store.UpdateQuantity(ctx, opts.productID, cart.TargetQuantity(opts.quantity))
	case "remove":
		if opts.productID == "" {
			return errors.New("missing -product-id for remove")
		}
		store.RemoveFromCart(ctx, opts.productID)
	case "clear":
		store.ClearCart(ctx)
	}

	return a.print(newView(store.Key(ctx), store.Snapshot()))
}

type view struct {
	Key       string          `json:"key"`
	Items     []cart.LineItem `json:"items"`
	ItemCount int             `json:"itemCount"`
	Total     json.Number     `json:"total"`
}

func newView(key string, v cart.View) view {
	items := v.Items
	if items == nil {
		items = []cart.LineItem{}
	}
	return view{
		Key:       key,
		Items:     items,
		ItemCount: v.ItemCount,
		Total:     json.Number(v.Total.String()),
	}
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
