package cart

import (
	"context"
	"encoding/json"
	"math"
	"strings"
)

// Storage is the durable key-value substrate a cart mirrors itself into.
// Get reports found=false for a missing key; errors are tolerated by the store.
type Storage interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// IdentityResolver yields the partition identity for the current session. It must
// always return a usable identity (falling back to a guest identity) and is only a
// storage partition key, never an authorization decision.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context) string
}

// IdentityFunc adapts a function to IdentityResolver.
type IdentityFunc func(ctx context.Context) string

func (fn IdentityFunc) ResolveIdentity(ctx context.Context) string {
	return fn(ctx)
}

// StaticIdentity always resolves to the given identity.
func StaticIdentity(identity string) IdentityResolver {
	return IdentityFunc(func(context.Context) string { return identity })
}

// StorageKey builds the persisted slot key for an identity.
func StorageKey(prefix, identity string) string {
	return prefix + identity
}

func encodeItems(items []LineItem) (string, error) {
	if items == nil {
		items = []LineItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// decodeItems parses a persisted slot. Entries that are not objects or carry no product
// id are skipped and duplicate ids are merged so a loaded cart honors the same
// invariants as a mutated one.
func decodeItems(value string) ([]LineItem, error) {
	dec := json.NewDecoder(strings.NewReader(value))
	dec.UseNumber()
	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	items := make([]LineItem, 0, len(raw))
	index := make(map[string]int, len(raw))
	for _, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		product := ProductFromMap(obj)
		id := product.Identity()
		if id == "" {
			continue
		}
		qty := storedQuantity(obj["quantity"])
		if i, dup := index[id]; dup {
			items[i].Quantity += qty
			continue
		}
		index[id] = len(items)
		items = append(items, product.lineItem(id, qty))
	}
	return items, nil
}

func storedQuantity(v any) int {
	f, ok := NumberValue(v)
	if !ok || math.IsNaN(f) || f < 1 {
		return 1
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Floor(f))
}
