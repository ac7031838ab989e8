// Package location resolves the visitor's approximate position through an
// ordered chain of IP-geolocation providers, ending at a configured default.
package location

import (
	"context"
	"log/slog"

	"github.com/nattawatp/quakewatch/internal/models"
)

// Provider is one geolocation strategy. A failed lookup returns an error
// and the resolver moves on to the next provider.
type Provider interface {
	Name() string
	Lookup(ctx context.Context) (models.UserLocation, error)
}

// Resolver tries each provider in order and falls back to the configured
// default location when all of them fail. Resolve never errors.
type Resolver struct {
	providers []Provider
	fallback  models.UserLocation
}

func NewResolver(fallback models.UserLocation, providers ...Provider) *Resolver {
	return &Resolver{
		providers: providers,
		fallback:  fallback,
	}
}

func (r *Resolver) Resolve(ctx context.Context) models.UserLocation {
	for _, p := range r.providers {
		loc, err := p.Lookup(ctx)
		if err != nil {
			slog.Debug("geolocation provider failed", "provider", p.Name(), "error", err)
			continue
		}
		return loc
	}
	slog.Debug("all geolocation providers failed, using default",
		"city", r.fallback.City, "country", r.fallback.Country)
	return r.fallback
}
