package cart

import (
	"context"

	"github.com/shopspring/decimal"
)

type ChangeKind string

const (
	ChangeLoad   ChangeKind = "load"
	ChangeAdd    ChangeKind = "add"
	ChangeUpdate ChangeKind = "update"
	ChangeRemove ChangeKind = "remove"
	ChangeClear  ChangeKind = "clear"
)

// Change describes one load or mutation after it has been applied in memory.
type Change struct {
	Kind      ChangeKind
	Identity  string
	Key       string
	ProductID string
	// Quantity is the resulting quantity of the touched line; zero when it is gone.
	Quantity  int
	ItemCount int
	Total     decimal.Decimal
	// Err is the swallowed persistence error for this change, if any.
	Err error
}

// Observer is notified after every load and mutation, outside the store lock.
type Observer interface {
	CartChanged(ctx context.Context, change Change)
}

type ObserverFunc func(ctx context.Context, change Change)

func (fn ObserverFunc) CartChanged(ctx context.Context, change Change) {
	fn(ctx, change)
}

// Observers fans a change out to every non-nil observer in order.
type Observers []Observer

func (o Observers) CartChanged(ctx context.Context, change Change) {
	for _, obs := range o {
		if obs != nil {
			obs.CartChanged(ctx, change)
		}
	}
}
