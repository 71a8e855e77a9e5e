package core

import "ideospace/pkg/domain"

type voterCounter interface {
	CountByParty() map[int]int
	Total() int
}

type partyLister interface {
	All() []domain.Party
}

// PartyPopularity pairs a party with its share of all voters.
type PartyPopularity struct {
	Party      domain.Party `json:"party"`
	Voters     int          `json:"voters"`
	Popularity float64      `json:"popularity"`
}

// PopularityAggregator derives party popularity from the voter store on
// every read; nothing is cached.
type PopularityAggregator struct {
	voters  voterCounter
	parties partyLister
}

// NewPopularityAggregator builds an aggregator over the given stores.
func NewPopularityAggregator(voters voterCounter, parties partyLister) *PopularityAggregator {
	return &PopularityAggregator{voters: voters, parties: parties}
}

// Popularity returns the percentage of all voters whose party link equals
// partyID, or 0 when there are no voters. Unassigned voters count towards
// the total, so popularities across parties need not sum to 100.
func (a *PopularityAggregator) Popularity(partyID int) float64 {
	return share(a.voters.CountByParty()[partyID], a.voters.Total())
}

// Report returns every loaded party with its voter count and popularity,
// in party load order.
func (a *PopularityAggregator) Report() []PartyPopularity {
	counts := a.voters.CountByParty()
	total := a.voters.Total()
	parties := a.parties.All()
	out := make([]PartyPopularity, 0, len(parties))
	for _, p := range parties {
		out = append(out, PartyPopularity{Party: p, Voters: counts[p.ID], Popularity: share(counts[p.ID], total)})
	}
	return out
}

func share(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * float64(count) / float64(total)
}
