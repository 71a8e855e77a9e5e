package core

import (
	"context"
	"fmt"

	"ideospace/pkg/domain"
)

// Propagator keeps dependent stores consistent after a store write.
//
// Party events read parties then voters, since voters display cached
// party names, and swap both lists only when both reads succeeded. Voter
// events reload voters only, unless an earlier party propagation failed,
// in which case both stores are settled again. Once the stores are settled
// the matching Entity* notification and ExternalDataChanged are published,
// so subscribers always read settled state.
type Propagator struct {
	bus          *Bus
	parties      *PartyStore
	voters       *VoterStore
	partiesStale bool
	opts         options
}

// NewPropagator subscribes the propagation handlers on bus. It should be
// created before any other subscriber of store events so its handlers run
// first.
func NewPropagator(bus *Bus, parties *PartyStore, voters *VoterStore, opts ...Option) *Propagator {
	p := &Propagator{bus: bus, parties: parties, voters: voters, opts: buildOptions(opts)}
	for _, t := range []domain.EventType{domain.PartyCreated, domain.PartyUpdated, domain.PartyDeleted} {
		bus.Subscribe(t, p.onPartyChange)
	}
	for _, t := range []domain.EventType{domain.VoterCreated, domain.VoterUpdated, domain.VoterDeleted} {
		bus.Subscribe(t, p.onVoterChange)
	}
	return p
}

func (p *Propagator) onPartyChange(ctx context.Context, event domain.Event) (err error) {
	start := p.opts.now()
	defer func() { p.opts.observe(ctx, "propagate.party", start, err) }()

	if err := p.settleAll(ctx); err != nil {
		return p.fail(event, err)
	}
	p.notify(ctx, event)
	return nil
}

func (p *Propagator) onVoterChange(ctx context.Context, event domain.Event) (err error) {
	start := p.opts.now()
	defer func() { p.opts.observe(ctx, "propagate.voter", start, err) }()

	if p.partiesStale {
		err = p.settleAll(ctx)
	} else {
		err = p.voters.Reload(ctx)
	}
	if err != nil {
		return p.fail(event, err)
	}
	p.notify(ctx, event)
	return nil
}

// settleAll reads both stores and commits them together. Voter party
// names are resolved against the freshly read parties.
func (p *Propagator) settleAll(ctx context.Context) error {
	parties, err := p.parties.load(ctx)
	if err != nil {
		p.partiesStale = true
		return err
	}
	voters, err := p.voters.load(ctx, partyLookup(parties))
	if err != nil {
		p.partiesStale = true
		return err
	}
	p.parties.commit(parties)
	p.voters.commit(voters)
	p.partiesStale = false
	return nil
}

func partyLookup(parties []domain.Party) func(id int) (domain.Party, bool) {
	byID := make(map[int]domain.Party, len(parties))
	for _, party := range parties {
		byID[party.ID] = party
	}
	return func(id int) (domain.Party, bool) {
		party, ok := byID[id]
		return party, ok
	}
}

func (p *Propagator) fail(event domain.Event, err error) error {
	p.opts.logger.Error("propagation failed", "event", string(event.Type), "id", event.ID, "error", err)
	return fmt.Errorf("%s %d: %w: %w", event.Type, event.ID, domain.ErrPropagation, err)
}

// notify publishes the feed events for a settled mutation. Subscriber
// failures are logged; the mutation itself already succeeded.
func (p *Propagator) notify(ctx context.Context, event domain.Event) {
	feed := domain.Event{Type: feedType(event.Type), Kind: event.Kind, ID: event.ID}
	if err := p.bus.Publish(ctx, feed); err != nil {
		p.opts.logger.Warn("subscriber failed", "event", string(feed.Type), "id", feed.ID, "error", err)
	}
	if err := p.bus.Publish(ctx, domain.Event{Type: domain.ExternalDataChanged}); err != nil {
		p.opts.logger.Warn("subscriber failed", "event", string(domain.ExternalDataChanged), "error", err)
	}
}

func feedType(t domain.EventType) domain.EventType {
	switch t {
	case domain.PartyCreated, domain.VoterCreated:
		return domain.EntityCreated
	case domain.PartyUpdated, domain.VoterUpdated:
		return domain.EntityUpdated
	default:
		return domain.EntityDeleted
	}
}
