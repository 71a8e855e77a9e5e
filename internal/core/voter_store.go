package core

import (
	"context"
	"fmt"
	"sync"

	"ideospace/pkg/domain"
)

// partyIndex is the read side of PartyStore used by VoterStore.
type partyIndex interface {
	NearestID(x, y int) int
	ByID(id int) (domain.Party, bool)
}

// VoterStore owns voter records. Each voter carries two independent links
// computed from the same coordinates: the nearest ideology and the nearest
// party.
type VoterStore struct {
	gw         domain.Gateway
	ideologies ideologyIndex
	parties    partyIndex
	events     Publisher
	opts       options

	mu     sync.RWMutex
	voters []domain.Voter
}

// NewVoterStore returns an empty store. events may be nil, in which case
// callers must Reload after writing.
func NewVoterStore(gw domain.Gateway, ideologies ideologyIndex, parties partyIndex, events Publisher, opts ...Option) *VoterStore {
	return &VoterStore{gw: gw, ideologies: ideologies, parties: parties, events: events, opts: buildOptions(opts)}
}

func (s *VoterStore) classify(id int, name string, x, y int) domain.VoterRow {
	return domain.VoterRow{
		ID:         id,
		Name:       name,
		IdeologyID: s.ideologies.NearestID(x, y),
		PartyID:    s.parties.NearestID(x, y),
		X:          x,
		Y:          y,
	}
}

// Create persists a new voter with both links computed now and returns
// its id.
func (s *VoterStore) Create(ctx context.Context, name string, x, y int) (int, error) {
	start := s.opts.now()
	row := s.classify(0, name, x, y)
	id, err := s.gw.InsertVoter(ctx, row)
	s.opts.observe(ctx, "voter.create", start, err)
	if err != nil {
		s.opts.logger.Warn("voter create failed", "name", name, "error", err)
		return domain.NoID, fmt.Errorf("create voter %q: %w", name, err)
	}
	s.opts.logger.Debug("voter created", "id", id, "ideology_id", row.IdeologyID, "party_id", row.PartyID)
	return id, s.emit(ctx, domain.VoterCreated, id)
}

// Update recomputes both links for the new position and overwrites the row.
func (s *VoterStore) Update(ctx context.Context, id int, name string, x, y int) error {
	start := s.opts.now()
	err := s.gw.UpdateVoter(ctx, s.classify(id, name, x, y))
	s.opts.observe(ctx, "voter.update", start, err)
	if err != nil {
		s.opts.logger.Warn("voter update failed", "id", id, "error", err)
		return fmt.Errorf("update voter %d: %w", id, err)
	}
	return s.emit(ctx, domain.VoterUpdated, id)
}

// Delete removes the row.
func (s *VoterStore) Delete(ctx context.Context, id int) error {
	start := s.opts.now()
	err := s.gw.DeleteVoter(ctx, id)
	s.opts.observe(ctx, "voter.delete", start, err)
	if err != nil {
		s.opts.logger.Warn("voter delete failed", "id", id, "error", err)
		return fmt.Errorf("delete voter %d: %w", id, err)
	}
	return s.emit(ctx, domain.VoterDeleted, id)
}

func (s *VoterStore) emit(ctx context.Context, t domain.EventType, id int) error {
	if s.events == nil {
		return nil
	}
	return s.events.Publish(ctx, domain.Event{Type: t, Kind: domain.KindVoter, ID: id})
}

// Reload replaces the in-memory list with the persisted rows. Ideology and
// party names are resolved through the owning stores as they stand now;
// links to records that no longer exist are cleared to domain.NoID with
// an empty party name.
func (s *VoterStore) Reload(ctx context.Context) error {
	voters, err := s.load(ctx, s.parties.ByID)
	if err != nil {
		return err
	}
	s.commit(voters)
	return nil
}

// load reads the persisted rows and resolves party links through partyOf,
// which lets a caller resolve against a party list it has not committed
// yet.
func (s *VoterStore) load(ctx context.Context, partyOf func(id int) (domain.Party, bool)) (voters []domain.Voter, err error) {
	start := s.opts.now()
	defer func() { s.opts.observe(ctx, "voter.reload", start, err) }()

	rows, err := s.gw.ListVoters(ctx)
	if err != nil {
		return nil, fmt.Errorf("reload voters: %w", err)
	}
	voters = make([]domain.Voter, 0, len(rows))
	for _, r := range rows {
		v := domain.Voter{
			ID:         r.ID,
			Name:       r.Name,
			IdeologyID: r.IdeologyID,
			PartyID:    domain.NoID,
			X:          r.X,
			Y:          r.Y,
		}
		if v.IdeologyID != domain.NoID && !s.ideologies.Exists(v.IdeologyID) {
			v.IdeologyID = domain.NoID
		}
		v.IdeologyName = s.ideologies.NameOf(v.IdeologyID)
		if r.PartyID != domain.NoID {
			if p, ok := partyOf(r.PartyID); ok {
				v.PartyID = p.ID
				v.PartyName = p.Name
			}
		}
		voters = append(voters, v)
	}
	return voters, nil
}

func (s *VoterStore) commit(voters []domain.Voter) {
	s.mu.Lock()
	s.voters = voters
	s.mu.Unlock()
	s.opts.logger.Debug("voters reloaded", "rows", len(voters))
}

// Seed inserts DefaultVoters when storage holds no voters, then reloads.
// Party links are computed against the parties loaded now. It emits no
// change events.
func (s *VoterStore) Seed(ctx context.Context) error {
	rows, err := s.gw.ListVoters(ctx)
	if err != nil {
		return fmt.Errorf("seed voters: %w", err)
	}
	if len(rows) > 0 {
		return s.Reload(ctx)
	}
	var seedErr error
	for i, e := range DefaultVoters {
		if _, err := s.gw.InsertVoter(ctx, s.classify(0, e.Name, e.X, e.Y)); err != nil {
			seedErr = &domain.PartialSeedError{Kind: domain.KindVoter, Seeded: i, Total: len(DefaultVoters), Err: err}
			s.opts.logger.Error("voter seed stopped", "seeded", i, "total", len(DefaultVoters), "error", err)
			break
		}
	}
	if err := s.Reload(ctx); err != nil && seedErr == nil {
		return err
	}
	return seedErr
}

// All returns the voters in load order.
func (s *VoterStore) All() []domain.Voter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Voter(nil), s.voters...)
}

// ByID returns the voter with the given id.
func (s *VoterStore) ByID(id int) (domain.Voter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.voters {
		if v.ID == id {
			return v, true
		}
	}
	return domain.Voter{}, false
}

// ByRow returns the voter at position i in load order.
func (s *VoterStore) ByRow(i int) (domain.Voter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.voters) {
		return domain.Voter{}, false
	}
	return s.voters[i], true
}

// CountByParty groups loaded voters by party id. Unassigned voters are
// counted under domain.NoID.
func (s *VoterStore) CountByParty() map[int]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[int]int)
	for _, v := range s.voters {
		counts[v.PartyID]++
	}
	return counts
}

// CountByIdeology groups loaded voters by ideology id.
func (s *VoterStore) CountByIdeology() map[int]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[int]int)
	for _, v := range s.voters {
		counts[v.IdeologyID]++
	}
	return counts
}

// Total counts every loaded voter, assigned or not.
func (s *VoterStore) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.voters)
}
