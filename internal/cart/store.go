package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/angelmondragon/mallcart/pkg/logger"
	"github.com/shopspring/decimal"
)

// Options wires a Store to its collaborators.
type Options struct {
	Storage   Storage
	Resolver  IdentityResolver
	KeyPrefix string
	Logger    *logger.Logger
	Observer  Observer
}

// Store owns the line items of one session's cart and writes them through to Storage
// after every mutation. Persistence failures never surface to callers: the in-memory
// state stays authoritative for the session.
type Store struct {
	storage  Storage
	resolver IdentityResolver
	prefix   string
	logg     *logger.Logger
	observer Observer

	mu    sync.Mutex
	items []LineItem
	open  bool
}

// New builds a store and loads the items persisted for the current identity.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Storage == nil {
		return nil, fmt.Errorf("cart storage required")
	}
	if opts.Resolver == nil {
		return nil, fmt.Errorf("identity resolver required")
	}
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	s := &Store{
		storage:  opts.Storage,
		resolver: opts.Resolver,
		prefix:   prefix,
		logg:     logg,
		observer: opts.Observer,
	}
	s.Reload(ctx)
	return s, nil
}

// Identity resolves the current partition identity.
func (s *Store) Identity(ctx context.Context) string {
	return s.resolver.ResolveIdentity(ctx)
}

// Key resolves the storage key for the current identity. It is never cached.
func (s *Store) Key(ctx context.Context) string {
	return StorageKey(s.prefix, s.Identity(ctx))
}

// Reload re-resolves the identity and replaces the items with what is persisted for it.
func (s *Store) Reload(ctx context.Context) {
	identity := s.Identity(ctx)
	key := StorageKey(s.prefix, identity)
	items, err := s.load(ctx, key)

	s.mu.Lock()
	s.items = items
	change := s.changeLocked(ChangeLoad, identity, key, "", 0)
	s.mu.Unlock()

	change.Err = err
	s.notify(ctx, change)
}

func (s *Store) load(ctx context.Context, key string) ([]LineItem, error) {
	ctx = s.logg.WithCartKey(ctx, key)
	value, found, err := s.storage.Get(ctx, key)
	if err != nil {
		s.logg.Error(ctx, "cart.load_failed", err)
		return []LineItem{}, err
	}
	if !found {
		return []LineItem{}, nil
	}
	items, err := decodeItems(value)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart.load_corrupted")
		return []LineItem{}, err
	}
	return items, nil
}

// AddToCart merges quantity into the line for the product, appending a new line when
// the product is not in the cart yet. Quantities below one count as one. A product
// without any id is ignored.
func (s *Store) AddToCart(ctx context.Context, product Product, quantity int) {
	id := product.Identity()
	if id == "" {
		s.logg.Warn(ctx, "cart.add_missing_product_id")
		return
	}
	qty := atLeastOne(quantity)

	s.mu.Lock()
	var resulting int
	if idx := s.indexLocked(id); idx >= 0 {
		resulting = atLeastOne(s.items[idx].Quantity + qty)
		s.items[idx].Quantity = resulting
	} else {
		item := product.lineItem(id, qty)
		resulting = item.Quantity
		s.items = append(s.items, item)
	}
	change := s.commitLocked(ctx, ChangeAdd, id, resulting)
	s.mu.Unlock()

	s.notify(ctx, change)
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero or less
// removes the line; an unknown product id leaves the items unchanged.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	if quantity <= 0 {
		s.RemoveFromCart(ctx, productID)
		return
	}
	id := strings.TrimSpace(productID)

	s.mu.Lock()
	resulting := 0
	if idx := s.indexLocked(id); idx >= 0 {
		resulting = atLeastOne(quantity)
		s.items[idx].Quantity = resulting
	}
	change := s.commitLocked(ctx, ChangeUpdate, id, resulting)
	s.mu.Unlock()

	s.notify(ctx, change)
}

// RemoveFromCart drops the line for productID; unknown ids are a no-op.
func (s *Store) RemoveFromCart(ctx context.Context, productID string) {
	id := strings.TrimSpace(productID)

	s.mu.Lock()
	if idx := s.indexLocked(id); idx >= 0 {
		s.items = append(s.items[:idx:idx], s.items[idx+1:]...)
	}
	change := s.commitLocked(ctx, ChangeRemove, id, 0)
	s.mu.Unlock()

	s.notify(ctx, change)
}

// ClearCart empties the cart and persists an empty list under the same key.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	s.items = []LineItem{}
	change := s.commitLocked(ctx, ChangeClear, "", 0)
	s.mu.Unlock()

	s.notify(ctx, change)
}

func (s *Store) OpenCart() {
	s.mu.Lock()
	s.open = true
	s.mu.Unlock()
}

func (s *Store) CloseCart() {
	s.mu.Lock()
	s.open = false
	s.mu.Unlock()
}

func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return itemCount(s.items)
}

func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return total(s.items)
}

// Snapshot returns every observable value under a single lock.
func (s *Store) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		Items:     s.copyLocked(),
		ItemCount: itemCount(s.items),
		Total:     total(s.items),
		IsOpen:    s.open,
	}
}

func (s *Store) copyLocked() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) indexLocked(productID string) int {
	if productID == "" {
		return -1
	}
	for i, item := range s.items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// commitLocked writes the full item list through to storage. Failures are logged and
// reported on the returned change only.
func (s *Store) commitLocked(ctx context.Context, kind ChangeKind, productID string, quantity int) Change {
	identity := s.Identity(ctx)
	key := StorageKey(s.prefix, identity)
	change := s.changeLocked(kind, identity, key, productID, quantity)

	payload, err := encodeItems(s.items)
	if err == nil {
		err = s.storage.Set(ctx, key, payload)
	}
	if err != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"cart_key": key, "change": string(kind)})
		s.logg.Error(logCtx, "cart.persist_failed", err)
		change.Err = err
	}
	return change
}

func (s *Store) changeLocked(kind ChangeKind, identity, key, productID string, quantity int) Change {
	return Change{
		Kind:      kind,
		Identity:  identity,
		Key:       key,
		ProductID: productID,
		Quantity:  quantity,
		ItemCount: itemCount(s.items),
		Total:     total(s.items),
	}
}

func (s *Store) notify(ctx context.Context, change Change) {
	if s.observer != nil {
		s.observer.CartChanged(ctx, change)
	}
}

// Factory opens stores that share one storage backend and observer, one per session.
type Factory struct {
	Storage   Storage
	KeyPrefix string
	Logger    *logger.Logger
	Observer  Observer
}

// Open builds a store for the session identified by resolver.
func (f Factory) Open(ctx context.Context, resolver IdentityResolver) (*Store, error) {
	return New(ctx, Options{
		Storage:   f.Storage,
		Resolver:  resolver,
		KeyPrefix: f.KeyPrefix,
		Logger:    f.Logger,
		Observer:  f.Observer,
	})
}
