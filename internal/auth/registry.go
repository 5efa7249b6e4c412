// Package auth holds the pluggable credential verifiers: the OAuth
// provider registry and the Telegram widget signature check. The
// registry is an explicit object built once in main and handed to the
// HTTP layer; no provider state lives in package-level variables.
package auth

import (
	"context"
	"sort"
)

// Provider is one external login method. AuthURL returns the URL the
// browser is sent to; ResolveUsername exchanges the callback code and
// derives the username under which the profile is stored (email for
// Google/Facebook, login handle for GitHub).
type Provider interface {
	Name() string
	AuthURL(state string) string
	ResolveUsername(ctx context.Context, code string) (string, error)
}

// Registry maps provider names to configured providers.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds a registry from the given providers, skipping nils
// so callers can pass the result of constructors that disable
// themselves when credentials are missing.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		if p != nil {
			r.providers[p.Name()] = p
		}
	}
	return r
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names lists the registered provider names in stable order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
