// Package memory provides an in-memory implementation of the persistence
// gateway used for tests and ephemeral environments. It mirrors the SQL
// backends, including SET NULL on delete for link columns.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ideospace/pkg/domain"
)

// Compile-time contract assertion ensuring Store adheres to the domain gateway.
var _ domain.Gateway = (*Store)(nil)

// Op names a gateway operation for fault injection.
type Op string

// Gateway operations that can be made to fail.
const (
	OpListIdeologies Op = "list_ideologies"
	OpInsertIdeology Op = "insert_ideology"
	OpListParties    Op = "list_parties"
	OpInsertParty    Op = "insert_party"
	OpUpdateParty    Op = "update_party"
	OpDeleteParty    Op = "delete_party"
	OpListVoters     Op = "list_voters"
	OpInsertVoter    Op = "insert_voter"
	OpUpdateVoter    Op = "update_voter"
	OpDeleteVoter    Op = "delete_voter"
)

type fault struct {
	after int
	err   error
}

type memoryState struct {
	ideologies map[int]domain.Ideology
	parties    map[int]domain.PartyRow
	voters     map[int]domain.VoterRow
	nextID     map[domain.EntityKind]int
}

// Snapshot captures a point-in-time copy of the stored rows.
type Snapshot struct {
	Ideologies []domain.Ideology `json:"ideologies"`
	Parties    []domain.PartyRow `json:"parties"`
	Voters     []domain.VoterRow `json:"voters"`
}

func newMemoryState() memoryState {
	return memoryState{
		ideologies: make(map[int]domain.Ideology),
		parties:    make(map[int]domain.PartyRow),
		voters:     make(map[int]domain.VoterRow),
		nextID:     map[domain.EntityKind]int{domain.KindIdeology: 1, domain.KindParty: 1, domain.KindVoter: 1},
	}
}

// Store is a goroutine-safe in-memory gateway. Ids are allocated from 1
// and never reused, like an AUTOINCREMENT column.
type Store struct {
	mu     sync.Mutex
	state  memoryState
	faults map[Op]*fault
	closed bool
}

// NewStore returns an empty in-memory gateway.
func NewStore() *Store {
	return &Store{state: newMemoryState(), faults: make(map[Op]*fault)}
}

// FailOn makes op fail with err once it has succeeded `after` more times.
// The fault stays armed until ClearFaults is called.
func (s *Store) FailOn(op Op, after int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = &fault{after: after, err: err}
}

// ClearFaults disarms every injected fault.
func (s *Store) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = make(map[Op]*fault)
}

// ExportState returns a copy of all rows in ascending id order.
func (s *Store) ExportState() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Ideologies: sortedValues(s.state.ideologies),
		Parties:    sortedValues(s.state.parties),
		Voters:     sortedValues(s.state.voters),
	}
}

// ImportState replaces all rows with the snapshot contents. Id counters
// continue after the highest imported id.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := newMemoryState()
	for _, i := range snapshot.Ideologies {
		state.ideologies[i.ID] = i
		bump(state.nextID, domain.KindIdeology, i.ID)
	}
	for _, p := range snapshot.Parties {
		state.parties[p.ID] = p
		bump(state.nextID, domain.KindParty, p.ID)
	}
	for _, v := range snapshot.Voters {
		state.voters[v.ID] = v
		bump(state.nextID, domain.KindVoter, v.ID)
	}
	s.state = state
}

func bump(next map[domain.EntityKind]int, kind domain.EntityKind, id int) {
	if id >= next[kind] {
		next[kind] = id + 1
	}
}

// check must be called with s.mu held.
func (s *Store) check(op Op, write bool) error {
	if s.closed {
		return fmt.Errorf("%s: store closed: %w", op, domain.ErrPersistenceUnavailable)
	}
	f, ok := s.faults[op]
	if !ok {
		return nil
	}
	if f.after > 0 {
		f.after--
		return nil
	}
	if write {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrWriteFailed, f.err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistenceUnavailable, f.err)
}

func (s *Store) allocate(kind domain.EntityKind) int {
	id := s.state.nextID[kind]
	s.state.nextID[kind] = id + 1
	return id
}

// ListIdeologies returns every ideology in ascending id order.
func (s *Store) ListIdeologies(_ context.Context) ([]domain.Ideology, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(OpListIdeologies, false); err != nil {
		return nil, err
	}
	return sortedValues(s.state.ideologies), nil
}

// InsertIdeology stores a new ideology; names must be unique.
func (s *Store) InsertIdeology(_ context.Context, ideology domain.Ideology) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(OpInsertIdeology, true); err != nil {
		return domain.NoID, err
	}
	for _, existing := range s.state.ideologies {
		if existing.Name == ideology.Name {
			return domain.NoID, fmt.Errorf("insert ideology %q: duplicate name: %w", ideology.Name, domain.ErrWriteFailed)
		}
	}
	ideology.ID = s.allocate(domain.KindIdeology)
	s.state.ideologies[ideology.ID] = ideology
	return ideology.ID, nil
}

// DeleteIdeology removes an ideology and clears links to it. It is not
// part of the gateway contract; ideologies are read-only to the core.
func (s *Store) DeleteIdeology(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.ideologies[id]; !ok {
		return fmt.Errorf("delete ideology: %w: %w", domain.ErrWriteFailed, domain.NotFoundError{Kind: domain.KindIdeology, ID: id})
	}
	delete(s.state.ideologies, id)
	for pid, p := range s.state.parties {
		if p.IdeologyID == id {
			p.IdeologyID = domain.NoID
			s.state.parties[pid] = p
		}
	}
	for vid, v := range s.state.voters {
		if v.IdeologyID == id {
			v.IdeologyID = domain.NoID
			s.state.voters[vid] = v
		}
	}
	return nil
}

// ListParties returns every party row in ascending id order.
func (s *Store) ListParties(_ context.Context) ([]domain.PartyRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(OpListParties, false); err != nil {
		return nil, err
	}
	return sortedValues(s.state.parties), nil
}

// InsertParty stores a new party row and returns its id.
func (s *Store) InsertParty(_ context.Context, row domain.PartyRow) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(OpInsertParty, true); err != nil {
		return domain.NoID, err
	}
	if err := s.checkIdeologyRef(row.IdeologyID); err != nil {
		return domain.NoID, fmt.Errorf("insert party: %w", err)
	}
	row.ID = s.allocate(domain.KindParty)
	s.state.parties[row.ID] = row
	return row.ID, nil
}

// UpdateParty overwrites an existing party row.
func (s *Store) UpdateParty(_ context.Context, row domain.PartyRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(OpUpdateParty, true); err != nil {
		return err
	}
	if _, ok := s.state.parties[row.ID]; !ok {
		return fmt.Errorf("update party: %w: %w", domain.ErrWriteFailed, domain.NotFoundError{Kind: domain.KindParty, ID: row.ID})
	}
	if err := s.checkIdeologyRef(row.IdeologyID); err != nil {
		return fmt.Errorf("update party: %w", err)
	}
	s.state.parties[row.ID] = row
	return nil
}

// DeleteParty removes a party and sets party links on voters to NoID.
func (s *Store) DeleteParty(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(OpDeleteParty, true); err != nil {
		return err
	}
	if _, ok := s.state.parties[id]; !ok {
		return fmt.Errorf("delete party: %w: %w", domain.ErrWriteFailed, domain.NotFoundError{Kind: domain.KindParty, ID: id})
	}
	delete(s.state.parties, id)
	for vid, v := range s.state.voters {
		if v.PartyID == id {
			v.PartyID = domain.NoID
			s.state.voters[vid] = v
		}
	}
	return nil
}

// ListVoters returns every voter row in ascending id order.
func (s *Store) ListVoters(_ context.Context) ([]domain.VoterRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(OpListVoters, false); err != nil {
		return nil, err
	}
	return sortedValues(s.state.voters), nil
}

// InsertVoter stores a new voter row and returns its id.
func (s *Store) InsertVoter(_ context.Context, row domain.VoterRow) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(OpInsertVoter, true); err != nil {
		return domain.NoID, err
	}
	if err := s.checkVoterRefs(row); err != nil {
		return domain.NoID, fmt.Errorf("insert voter: %w", err)
	}
	row.ID = s.allocate(domain.KindVoter)
	s.state.voters[row.ID] = row
	return row.ID, nil
}

// UpdateVoter overwrites an existing voter row.
func (s *Store) UpdateVoter(_ context.Context, row domain.VoterRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(OpUpdateVoter, true); err != nil {
		return err
	}
	if _, ok := s.state.voters[row.ID]; !ok {
		return fmt.Errorf("update voter: %w: %w", domain.ErrWriteFailed, domain.NotFoundError{Kind: domain.KindVoter, ID: row.ID})
	}
	if err := s.checkVoterRefs(row); err != nil {
		return fmt.Errorf("update voter: %w", err)
	}
	s.state.voters[row.ID] = row
	return nil
}

// DeleteVoter removes a voter row.
func (s *Store) DeleteVoter(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(OpDeleteVoter, true); err != nil {
		return err
	}
	if _, ok := s.state.voters[id]; !ok {
		return fmt.Errorf("delete voter: %w: %w", domain.ErrWriteFailed, domain.NotFoundError{Kind: domain.KindVoter, ID: id})
	}
	delete(s.state.voters, id)
	return nil
}

// Close marks the store unavailable; later calls fail with
// domain.ErrPersistenceUnavailable.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// foreign keys behave like the SQL schema: NoID is NULL, anything else must exist.
func (s *Store) checkIdeologyRef(id int) error {
	if id == domain.NoID {
		return nil
	}
	if _, ok := s.state.ideologies[id]; !ok {
		return fmt.Errorf("foreign key: %w: %w", domain.ErrWriteFailed, domain.NotFoundError{Kind: domain.KindIdeology, ID: id})
	}
	return nil
}

func (s *Store) checkVoterRefs(row domain.VoterRow) error {
	if err := s.checkIdeologyRef(row.IdeologyID); err != nil {
		return err
	}
	if row.PartyID == domain.NoID {
		return nil
	}
	if _, ok := s.state.parties[row.PartyID]; !ok {
		return fmt.Errorf("foreign key: %w: %w", domain.ErrWriteFailed, domain.NotFoundError{Kind: domain.KindParty, ID: row.PartyID})
	}
	return nil
}

func sortedValues[T any](m map[int]T) []T {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}
