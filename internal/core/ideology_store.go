package core

import (
	"context"
	"fmt"
	"sync"

	"ideospace/internal/spatial"
	"ideospace/pkg/domain"
)

// IdeologyStore owns the in-memory list of ideology reference points.
type IdeologyStore struct {
	gw   domain.Gateway
	opts options

	mu         sync.RWMutex
	ideologies []domain.Ideology
}

// NewIdeologyStore returns an empty store; call Load to populate it.
func NewIdeologyStore(gw domain.Gateway, opts ...Option) *IdeologyStore {
	return &IdeologyStore{gw: gw, opts: buildOptions(opts)}
}

// Load reads every ideology, seeding DefaultIdeologies first when storage
// holds none. A seed that stops partway returns *domain.PartialSeedError
// and leaves the rows written so far loaded.
func (s *IdeologyStore) Load(ctx context.Context) (err error) {
	start := s.opts.now()
	defer func() { s.opts.observe(ctx, "ideology.load", start, err) }()

	rows, err := s.gw.ListIdeologies(ctx)
	if err != nil {
		return fmt.Errorf("load ideologies: %w", err)
	}
	if len(rows) > 0 {
		s.replace(rows)
		return nil
	}

	s.opts.logger.Info("seeding default ideologies", "count", len(DefaultIdeologies))
	var seedErr error
	for i, entry := range DefaultIdeologies {
		if _, err := s.gw.InsertIdeology(ctx, ideologyFromSeed(entry)); err != nil {
			seedErr = &domain.PartialSeedError{Kind: domain.KindIdeology, Seeded: i, Total: len(DefaultIdeologies), Err: err}
			s.opts.logger.Error("ideology seed stopped", "seeded", i, "total", len(DefaultIdeologies), "error", err)
			break
		}
	}
	if err := s.Reload(ctx); err != nil {
		if seedErr != nil {
			return seedErr
		}
		return err
	}
	return seedErr
}

// Reload discards the in-memory list and reads it again from storage.
// On failure the previous list is kept.
func (s *IdeologyStore) Reload(ctx context.Context) error {
	rows, err := s.gw.ListIdeologies(ctx)
	if err != nil {
		return fmt.Errorf("reload ideologies: %w", err)
	}
	s.replace(rows)
	return nil
}

func (s *IdeologyStore) replace(rows []domain.Ideology) {
	s.mu.Lock()
	s.ideologies = rows
	s.mu.Unlock()
	s.opts.logger.Debug("ideologies loaded", "rows", len(rows))
}

// All returns the ideologies in load order.
func (s *IdeologyStore) All() []domain.Ideology {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Ideology(nil), s.ideologies...)
}

// NearestID returns the id of the ideology closest to (x, y), or
// domain.NoID when no ideology is loaded.
func (s *IdeologyStore) NearestID(x, y int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return spatial.Nearest(x, y, spatial.FromIdeologies(s.ideologies))
}

// NameOf returns the name of the ideology with the given id, or
// domain.UnknownIdeology when there is none.
func (s *IdeologyStore) NameOf(id int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, i := range s.ideologies {
		if i.ID == id {
			return i.Name
		}
	}
	return domain.UnknownIdeology
}

// Exists reports whether id names a loaded ideology.
func (s *IdeologyStore) Exists(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, i := range s.ideologies {
		if i.ID == id {
			return true
		}
	}
	return false
}
