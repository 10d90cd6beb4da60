// Package preferences resolves the notification settings that gate every
// outgoing notification kind per channel.
package preferences

import (
	"context"
	"log/slog"

	"github.com/djangocameroon/website-api/internal/domain"
)

// Store loads the singleton settings record.
type Store interface {
	Get(ctx context.Context) (*domain.NotificationSettings, error)
}

// Resolver returns the live notification settings, falling back to the
// hardcoded defaults on any store error. Triggers and batch jobs resolve
// settings once per invocation and thread the value through their service
// calls.
type Resolver struct {
	store Store
	log   *slog.Logger
}

// NewResolver constructs a Resolver backed by the settings store.
func NewResolver(store Store, log *slog.Logger) *Resolver {
	return &Resolver{
		store: store,
		log:   log,
	}
}

// Get never fails: a missing row, a missing table during a migration race, or
// any other store error resolves to domain.DefaultSettings.
func (r *Resolver) Get(ctx context.Context) domain.NotificationSettings {
	if r == nil || r.store == nil {
		return domain.DefaultSettings()
	}

	settings, err := r.store.Get(ctx)
	if err != nil || settings == nil {
		if err != nil && r.log != nil {
			r.log.Debug("using default notification settings", slog.Any("error", err))
		}
		return domain.DefaultSettings()
	}

	return *settings
}
