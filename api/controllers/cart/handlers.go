package cart

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/mallcart/api/middleware"
	"github.com/angelmondragon/mallcart/api/responses"
	"github.com/angelmondragon/mallcart/api/validators"
	cartsvc "github.com/angelmondragon/mallcart/internal/cart"
	"github.com/angelmondragon/mallcart/pkg/auth"
	pkgerrors "github.com/angelmondragon/mallcart/pkg/errors"
	"github.com/angelmondragon/mallcart/pkg/logger"
)

// Opener builds a cart store for the identity of a single request.
type Opener interface {
	Open(ctx context.Context, resolver cartsvc.IdentityResolver) (*cartsvc.Store, error)
}

// CartFetch returns the caller's cart view.
func CartFetch(opener Opener, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, ok := openStore(w, r, opener, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, newCartView(store.Snapshot()))
	}
}

// CartAddItem merges a product into the cart. The product may use any supported
// upstream layout.
func CartAddItem(opener Opener, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := payload.toProduct()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, ok := openStore(w, r, opener, logg)
		if !ok {
			return
		}
		store.AddToCart(r.Context(), product, payload.addQuantity())
		responses.WriteSuccess(w, newCartView(store.Snapshot()))
	}
}

// CartUpdateItem sets the quantity of a line; zero or less removes it.
func CartUpdateItem(opener Opener, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, ok := openStore(w, r, opener, logg)
		if !ok {
			return
		}
		store.UpdateQuantity(r.Context(), productID, cartsvc.TargetQuantity(*payload.Quantity))
		responses.WriteSuccess(w, newCartView(store.Snapshot()))
	}
}

func CartRemoveItem(opener Opener, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, ok := openStore(w, r, opener, logg)
		if !ok {
			return
		}
		store.RemoveFromCart(r.Context(), productID)
		responses.WriteSuccess(w, newCartView(store.Snapshot()))
	}
}

func CartClear(opener Opener, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, ok := openStore(w, r, opener, logg)
		if !ok {
			return
		}
		store.ClearCart(r.Context())
		responses.WriteSuccess(w, newCartView(store.Snapshot()))
	}
}

func openStore(w http.ResponseWriter, r *http.Request, opener Opener, logg *logger.Logger) (*cartsvc.Store, bool) {
	if opener == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
		return nil, false
	}
	store, err := opener.Open(r.Context(), requestIdentity)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open cart"))
		return nil, false
	}
	return store, true
}

var requestIdentity = cartsvc.IdentityFunc(func(ctx context.Context) string {
	if identity := middleware.IdentityFromContext(ctx); identity != "" {
		return identity
	}
	return auth.DefaultGuestIdentity
})

func productIDParam(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "productId"))
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return id, nil
}
