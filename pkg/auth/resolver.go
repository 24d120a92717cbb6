package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/mallcart/pkg/auth/session"
	"github.com/angelmondragon/mallcart/pkg/logger"
)

const DefaultGuestIdentity = "guest"

type ResolverOptions struct {
	Claims []string
	Guest  string
	Logger *logger.Logger
}

// Resolver maps the session's token to a cart partition identity. It never fails:
// anything it cannot decode resolves to the guest identity.
type Resolver struct {
	source session.TokenSource
	claims []string
	guest  string
	logg   *logger.Logger
}

func NewResolver(source session.TokenSource, opts ResolverOptions) *Resolver {
	claims := opts.Claims
	if len(claims) == 0 {
		claims = DefaultIdentityClaims
	}
	guest := strings.TrimSpace(opts.Guest)
	if guest == "" {
		guest = DefaultGuestIdentity
	}
	return &Resolver{source: source, claims: claims, guest: guest, logg: opts.Logger}
}

func (r *Resolver) Guest() string {
	return r.guest
}

func (r *Resolver) ResolveIdentity(ctx context.Context) string {
	if r.source == nil {
		return r.guest
	}
	token, err := r.source.Token(ctx)
	if err != nil || token == "" {
		return r.guest
	}
	identity, err := DecodeIdentity(token, r.claims)
	if err != nil {
		if r.logg != nil && !errors.Is(err, ErrNoIdentityClaim) {
			r.logg.Debug(r.logg.WithField(ctx, "reason", err.Error()), "auth.token_undecodable")
		}
		return r.guest
	}
	return identity
}
