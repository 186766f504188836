package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/botucare/clinic-backend/internal/gateway"
	"github.com/botucare/clinic-backend/pkg/logging"
)

// Store keeps the single catalog document in the configuration collection
// and hands out the current value to every computation that needs one.
type Store struct {
	gw     gateway.Gateway
	logger *logging.Logger

	mu      sync.RWMutex
	current Catalog
}

// NewStore loads the persisted catalog, seeding defaults when the collection
// is empty.
func NewStore(ctx context.Context, gw gateway.Gateway, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Store{gw: gw, logger: logger}

	var docs []Catalog
	if err := gw.Query(ctx, gateway.CollectionConfiguration, gateway.Filter{}, &docs); err != nil {
		return nil, fmt.Errorf("catalog: load configuration: %w", err)
	}

	if len(docs) > 0 {
		s.current = docs[0]
		logger.Info("catalog loaded", "version", s.current.Version)
		return s, nil
	}

	seeded := Defaults()
	id, err := gw.Create(ctx, gateway.CollectionConfiguration, seeded)
	if err != nil {
		return nil, fmt.Errorf("catalog: seed defaults: %w", err)
	}
	seeded.ID = id
	s.current = seeded
	logger.Info("catalog seeded with defaults", "version", seeded.Version)
	return s, nil
}

// NewStoreWithCatalog builds a store around a fixed catalog. Used by tests.
func NewStoreWithCatalog(cat Catalog) *Store {
	return &Store{current: cat, logger: logging.Default()}
}

// Current returns the catalog value as of now. Callers hold the returned
// value for the whole computation so aggregation stays deterministic.
func (s *Store) Current() Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Apply persists a partial update and swaps in the new version.
func (s *Store) Apply(ctx context.Context, u Update) (Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Apply(u)
	if s.gw != nil {
		patch := map[string]any{
			"version":             next.Version,
			"diagnoses":           next.Diagnoses,
			"muscles":             next.Muscles,
			"regions":             next.Regions,
			"products":            next.Products,
			"guidanceTypes":       next.GuidanceTypes,
			"postInjectionEvents": next.PostInjectionEvents,
		}
		if err := s.gw.Update(ctx, gateway.CollectionConfiguration, next.ID, patch); err != nil {
			if errors.Is(err, gateway.ErrNotFound) {
				return Catalog{}, fmt.Errorf("catalog: configuration document vanished: %w", err)
			}
			return Catalog{}, fmt.Errorf("catalog: persist update: %w", err)
		}
	}

	s.current = next
	s.logger.Info("catalog updated", "version", next.Version)
	return next, nil
}
