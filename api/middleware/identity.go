package middleware

import (
	"net/http"

	"github.com/angelmondragon/mallcart/pkg/auth"
	"github.com/angelmondragon/mallcart/pkg/auth/session"
	"github.com/angelmondragon/mallcart/pkg/config"
	"github.com/angelmondragon/mallcart/pkg/logger"
)

// Identity resolves the cart partition for the request from its bearer header or
// token cookies. It never rejects: requests without a usable token are guests.
func Identity(cfg config.CartConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	opts := auth.ResolverOptions{
		Claims: cfg.IdentityClaims,
		Guest:  cfg.GuestIdentity,
		Logger: logg,
	}
	cookies := []string{cfg.TokenSlot, cfg.LegacyTokenSlot}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			src := session.RequestTokenSource{Request: r, Cookies: cookies}
			identity := auth.NewResolver(src, opts).ResolveIdentity(r.Context())

			ctx := WithIdentity(r.Context(), identity)
			if logg != nil {
				ctx = logg.WithIdentity(ctx, identity)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
