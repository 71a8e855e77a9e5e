package core

import (
	"context"
	"fmt"
	"sync"

	"ideospace/internal/spatial"
	"ideospace/pkg/domain"
)

// ideologyIndex is the read side of IdeologyStore used by dependent stores.
type ideologyIndex interface {
	NearestID(x, y int) int
	NameOf(id int) string
	Exists(id int) bool
}

// PartyStore owns party records and computes each party's ideology link
// when it is written.
//
// Writes never patch the in-memory list. The list changes only through
// Reload, which the propagator runs after every successful write.
type PartyStore struct {
	gw         domain.Gateway
	ideologies ideologyIndex
	events     Publisher
	opts       options

	mu      sync.RWMutex
	parties []domain.Party
}

// NewPartyStore returns an empty store. events may be nil, in which case
// callers must Reload after writing.
func NewPartyStore(gw domain.Gateway, ideologies ideologyIndex, events Publisher, opts ...Option) *PartyStore {
	return &PartyStore{gw: gw, ideologies: ideologies, events: events, opts: buildOptions(opts)}
}

// Create persists a new party linked to the nearest ideology and returns
// its id. PartyCreated is emitted only after the row is written; an error
// from propagation is returned alongside the new id.
func (s *PartyStore) Create(ctx context.Context, name string, x, y int) (int, error) {
	start := s.opts.now()
	row := domain.PartyRow{Name: name, IdeologyID: s.ideologies.NearestID(x, y), X: x, Y: y}
	id, err := s.gw.InsertParty(ctx, row)
	s.opts.observe(ctx, "party.create", start, err)
	if err != nil {
		s.opts.logger.Warn("party create failed", "name", name, "error", err)
		return domain.NoID, fmt.Errorf("create party %q: %w", name, err)
	}
	s.opts.logger.Debug("party created", "id", id, "ideology_id", row.IdeologyID)
	return id, s.emit(ctx, domain.PartyCreated, id)
}

// Update recomputes the ideology link for the new position and overwrites
// the row. Voters linked to the party keep their existing party link.
func (s *PartyStore) Update(ctx context.Context, id int, name string, x, y int) error {
	start := s.opts.now()
	row := domain.PartyRow{ID: id, Name: name, IdeologyID: s.ideologies.NearestID(x, y), X: x, Y: y}
	err := s.gw.UpdateParty(ctx, row)
	s.opts.observe(ctx, "party.update", start, err)
	if err != nil {
		s.opts.logger.Warn("party update failed", "id", id, "error", err)
		return fmt.Errorf("update party %d: %w", id, err)
	}
	return s.emit(ctx, domain.PartyUpdated, id)
}

// Delete removes the row. Storage clears voter links to it; VoterStore
// observes that on its next Reload.
func (s *PartyStore) Delete(ctx context.Context, id int) error {
	start := s.opts.now()
	err := s.gw.DeleteParty(ctx, id)
	s.opts.observe(ctx, "party.delete", start, err)
	if err != nil {
		s.opts.logger.Warn("party delete failed", "id", id, "error", err)
		return fmt.Errorf("delete party %d: %w", id, err)
	}
	return s.emit(ctx, domain.PartyDeleted, id)
}

func (s *PartyStore) emit(ctx context.Context, t domain.EventType, id int) error {
	if s.events == nil {
		return nil
	}
	return s.events.Publish(ctx, domain.Event{Type: t, Kind: domain.KindParty, ID: id})
}

// Reload replaces the in-memory list with the persisted rows, resolving
// ideology names through the ideology store. Links to ideologies that no
// longer exist are cleared. On failure the previous list is kept.
func (s *PartyStore) Reload(ctx context.Context) error {
	parties, err := s.load(ctx)
	if err != nil {
		return err
	}
	s.commit(parties)
	return nil
}

// load reads and resolves the persisted rows without touching the loaded
// list.
func (s *PartyStore) load(ctx context.Context) (parties []domain.Party, err error) {
	start := s.opts.now()
	defer func() { s.opts.observe(ctx, "party.reload", start, err) }()

	rows, err := s.gw.ListParties(ctx)
	if err != nil {
		return nil, fmt.Errorf("reload parties: %w", err)
	}
	parties = make([]domain.Party, 0, len(rows))
	for _, r := range rows {
		ideologyID := r.IdeologyID
		if ideologyID != domain.NoID && !s.ideologies.Exists(ideologyID) {
			ideologyID = domain.NoID
		}
		parties = append(parties, domain.Party{
			ID:           r.ID,
			Name:         r.Name,
			IdeologyID:   ideologyID,
			IdeologyName: s.ideologies.NameOf(ideologyID),
			X:            r.X,
			Y:            r.Y,
		})
	}
	return parties, nil
}

func (s *PartyStore) commit(parties []domain.Party) {
	s.mu.Lock()
	s.parties = parties
	s.mu.Unlock()
	s.opts.logger.Debug("parties reloaded", "rows", len(parties))
}

// Seed inserts DefaultParties when storage holds no parties, then reloads.
// It emits no change events.
func (s *PartyStore) Seed(ctx context.Context) error {
	rows, err := s.gw.ListParties(ctx)
	if err != nil {
		return fmt.Errorf("seed parties: %w", err)
	}
	if len(rows) > 0 {
		return s.Reload(ctx)
	}
	var seedErr error
	for i, e := range DefaultParties {
		row := domain.PartyRow{Name: e.Name, IdeologyID: s.ideologies.NearestID(e.X, e.Y), X: e.X, Y: e.Y}
		if _, err := s.gw.InsertParty(ctx, row); err != nil {
			seedErr = &domain.PartialSeedError{Kind: domain.KindParty, Seeded: i, Total: len(DefaultParties), Err: err}
			s.opts.logger.Error("party seed stopped", "seeded", i, "total", len(DefaultParties), "error", err)
			break
		}
	}
	if err := s.Reload(ctx); err != nil && seedErr == nil {
		return err
	}
	return seedErr
}

// All returns the parties in load order.
func (s *PartyStore) All() []domain.Party {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Party(nil), s.parties...)
}

// Len returns the number of loaded parties.
func (s *PartyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.parties)
}

// ByID returns the party with the given id.
func (s *PartyStore) ByID(id int) (domain.Party, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.parties {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Party{}, false
}

// ByRow returns the party at position i in load order.
func (s *PartyStore) ByRow(i int) (domain.Party, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.parties) {
		return domain.Party{}, false
	}
	return s.parties[i], true
}

// NearestID returns the id of the party closest to (x, y), or domain.NoID
// when no party is loaded.
func (s *PartyStore) NearestID(x, y int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return spatial.Nearest(x, y, spatial.FromParties(s.parties))
}
