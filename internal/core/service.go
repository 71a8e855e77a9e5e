package core

import (
	"context"
	"errors"
	"fmt"

	"ideospace/pkg/domain"
)

// Service is the collaborator-facing surface of the core: listings,
// classification previews, mutations, popularity and the notification
// feed. It assumes a single control goroutine, like the stores it wraps.
type Service struct {
	gw         domain.Gateway
	bus        *Bus
	ideologies *IdeologyStore
	parties    *PartyStore
	voters     *VoterStore
	popularity *PopularityAggregator
	propagator *Propagator
	opts       options
}

// NewService wires the stores and propagator over gw and loads them in
// dependency order: ideologies, parties, voters.
//
// Seeding that stops partway does not abort construction: the Service is
// returned together with an error that unwraps to *domain.PartialSeedError.
// Any other failure returns a nil Service.
func NewService(ctx context.Context, gw domain.Gateway, opts ...Option) (*Service, error) {
	if gw == nil {
		return nil, fmt.Errorf("new service: nil gateway")
	}
	o := buildOptions(opts)
	bus := NewBus()
	ideologies := NewIdeologyStore(gw, opts...)
	parties := NewPartyStore(gw, ideologies, bus, opts...)
	voters := NewVoterStore(gw, ideologies, parties, bus, opts...)
	s := &Service{
		gw:         gw,
		bus:        bus,
		ideologies: ideologies,
		parties:    parties,
		voters:     voters,
		popularity: NewPopularityAggregator(voters, parties),
		propagator: NewPropagator(bus, parties, voters, opts...),
		opts:       o,
	}

	var partial []error
	steps := []func(context.Context) error{ideologies.Load, parties.Reload, voters.Reload}
	if o.seedDefaults {
		steps = []func(context.Context) error{ideologies.Load, parties.Seed, voters.Seed}
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			var seedErr *domain.PartialSeedError
			if !errors.As(err, &seedErr) {
				return nil, err
			}
			partial = append(partial, err)
		}
	}
	o.logger.Info("ideology space loaded",
		"ideologies", len(ideologies.All()), "parties", parties.Len(), "voters", voters.Total())
	return s, errors.Join(partial...)
}

// Close releases the persistence handle.
func (s *Service) Close() error { return s.gw.Close() }

// Ideologies exposes the ideology store.
func (s *Service) Ideologies() *IdeologyStore { return s.ideologies }

// Parties exposes the party store.
func (s *Service) Parties() *PartyStore { return s.parties }

// Voters exposes the voter store.
func (s *Service) Voters() *VoterStore { return s.voters }

// Subscribe registers h on the notification feed. Store events are
// reserved for propagation and are rejected with domain.ErrNotFeedEvent.
func (s *Service) Subscribe(t domain.EventType, h Handler) (unsubscribe func(), err error) {
	if !t.IsFeed() {
		return nil, fmt.Errorf("subscribe %s: %w", t, domain.ErrNotFeedEvent)
	}
	return s.bus.Subscribe(t, h), nil
}

// ListIdeologies returns every ideology in load order.
func (s *Service) ListIdeologies() []domain.Ideology { return s.ideologies.All() }

// ListParties returns every party in load order.
func (s *Service) ListParties() []domain.Party { return s.parties.All() }

// ListVoters returns every voter in load order.
func (s *Service) ListVoters() []domain.Voter { return s.voters.All() }

// PartyAt returns the party shown at row i.
func (s *Service) PartyAt(i int) (domain.Party, bool) { return s.parties.ByRow(i) }

// VoterAt returns the voter shown at row i.
func (s *Service) VoterAt(i int) (domain.Voter, bool) { return s.voters.ByRow(i) }

// FindClosestIdeologyID previews the ideology a position would be linked to.
func (s *Service) FindClosestIdeologyID(x, y int) int { return s.ideologies.NearestID(x, y) }

// FindClosestPartyID previews the party a voter at this position would be
// linked to.
func (s *Service) FindClosestPartyID(x, y int) int { return s.parties.NearestID(x, y) }

// CreateParty persists a party. When the write succeeds but propagation
// fails, the new id is returned with an error wrapping domain.ErrPropagation.
func (s *Service) CreateParty(ctx context.Context, name string, x, y int) (int, error) {
	return s.parties.Create(ctx, name, x, y)
}

// UpdateParty rewrites a party's name and position.
func (s *Service) UpdateParty(ctx context.Context, id int, name string, x, y int) error {
	return s.parties.Update(ctx, id, name, x, y)
}

// DeleteParty removes a party.
func (s *Service) DeleteParty(ctx context.Context, id int) error {
	return s.parties.Delete(ctx, id)
}

// CreateVoter persists a voter.
func (s *Service) CreateVoter(ctx context.Context, name string, x, y int) (int, error) {
	return s.voters.Create(ctx, name, x, y)
}

// UpdateVoter rewrites a voter's name and position.
func (s *Service) UpdateVoter(ctx context.Context, id int, name string, x, y int) error {
	return s.voters.Update(ctx, id, name, x, y)
}

// DeleteVoter removes a voter.
func (s *Service) DeleteVoter(ctx context.Context, id int) error {
	return s.voters.Delete(ctx, id)
}

// Popularity returns the percentage of all voters linked to partyID.
func (s *Service) Popularity(partyID int) float64 { return s.popularity.Popularity(partyID) }

// PopularityReport returns every party with its popularity.
func (s *Service) PopularityReport() []PartyPopularity { return s.popularity.Report() }

// VotersByIdeology returns voter counts keyed by ideology id.
func (s *Service) VotersByIdeology() map[int]int { return s.voters.CountByIdeology() }
