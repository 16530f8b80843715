package main

import (
	"context"
	"fmt"
	"time"

	"github.com/7977Brahma/tailika-matrimony-platform/compat"
	"github.com/7977Brahma/tailika-matrimony-platform/discovery"
	"github.com/7977Brahma/tailika-matrimony-platform/logging"
	"github.com/7977Brahma/tailika-matrimony-platform/store"
)

// profileStore is everything the handlers need from persistence.
// *store.Store is the production implementation.
type profileStore interface {
	discovery.Store
	Profiles(ctx context.Context, ids []string) (map[string]*compat.Profile, error)
	IsComplete(ctx context.Context, id string) (bool, error)
	Recommendable(ctx context.Context, subjectID, candidateID string) (bool, error)
	UpsertProfile(ctx context.Context, p *compat.Profile) error
	Dismiss(ctx context.Context, subjectID, candidateID string) error
	Credentials(ctx context.Context, email string) (id, passwordHash string, err error)
	TouchOnline(ctx context.Context, id string) error
}

var _ profileStore = (*store.Store)(nil)

// openStore connects to PostgreSQL and creates missing tables.
func openStore(cfg *Config) (*store.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cfg.DatabaseURL == devDatabaseURL {
		logging.Warn().Msg("DATABASE_URL not set, using default connection string")
	}
	s, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}
