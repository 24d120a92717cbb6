// Package session locates the bearer token a client presents. Tokens found here are
// only ever decoded for cart partitioning, never trusted for authorization.
package session

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/angelmondragon/mallcart/pkg/env"
)

// DefaultCookie is the cookie consulted when a request carries no Authorization header.
const DefaultCookie = "token"

var ErrNoToken = errors.New("no token present")

type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type TokenFunc func(ctx context.Context) (string, error)

func (fn TokenFunc) Token(ctx context.Context) (string, error) {
	return fn(ctx)
}

// StaticTokenSource always yields the same token.
type StaticTokenSource string

func (s StaticTokenSource) Token(context.Context) (string, error) {
	token := strings.TrimSpace(string(s))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Getter reads a named client-side storage slot.
type Getter interface {
	Lookup(ctx context.Context, name string) (string, bool)
}

// SlotTokenSource reads the primary slot and falls back to the legacy slot.
type SlotTokenSource struct {
	Getter  Getter
	Primary string
	Legacy  string
}

func (s SlotTokenSource) Token(ctx context.Context) (string, error) {
	if s.Getter == nil {
		return "", ErrNoToken
	}
	for _, name := range []string{s.Primary, s.Legacy} {
		if name == "" {
			continue
		}
		if v, ok := s.Getter.Lookup(ctx, name); ok {
			if token := stripBearer(v); token != "" {
				return token, nil
			}
		}
	}
	return "", ErrNoToken
}

// EnvGetter maps slot names to environment variables: slot "authToken" is read from
// <Prefix>_AUTH_TOKEN.
type EnvGetter struct {
	Prefix string
}

func (g EnvGetter) Lookup(_ context.Context, name string) (string, bool) {
	return env.Lookup(env.VarName(g.Prefix, name))
}

// MapGetter is an in-memory Getter.
type MapGetter map[string]string

func (m MapGetter) Lookup(_ context.Context, name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// RequestTokenSource reads the Authorization bearer header, then the named cookies in
// order (DefaultCookie when none are named).
type RequestTokenSource struct {
	Request *http.Request
	Cookies []string
}

func (s RequestTokenSource) Token(context.Context) (string, error) {
	if s.Request == nil {
		return "", ErrNoToken
	}
	if token := stripBearer(s.Request.Header.Get("Authorization")); token != "" {
		return token, nil
	}
	names := s.Cookies
	if len(names) == 0 {
		names = []string{DefaultCookie}
	}
	for _, name := range names {
		if name == "" {
			continue
		}
		if c, err := s.Request.Cookie(name); err == nil {
			if token := strings.TrimSpace(c.Value); token != "" {
				return token, nil
			}
		}
	}
	return "", ErrNoToken
}

// Chain returns the first token any source yields.
type Chain []TokenSource

func (c Chain) Token(ctx context.Context) (string, error) {
	for _, src := range c {
		if src == nil {
			continue
		}
		if token, err := src.Token(ctx); err == nil && token != "" {
			return token, nil
		}
	}
	return "", ErrNoToken
}

func stripBearer(raw string) string {
	token := strings.TrimSpace(raw)
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
