// Package spatial classifies points in ideology space by nearest neighbour.
package spatial

import "ideospace/pkg/domain"

// Candidate is a reference point that a query can be assigned to.
type Candidate struct {
	ID int
	X  int
	Y  int
}

// Nearest returns the id of the candidate with the smallest squared
// Euclidean distance to (x, y), or domain.NoID when candidates is empty.
// Candidates are scanned in order and the running minimum only moves on a
// strict improvement, so ties go to the earliest candidate.
func Nearest(x, y int, candidates []Candidate) int {
	best := domain.NoID
	var bestDist int64
	for i, c := range candidates {
		d := SquaredDistance(x, y, c.X, c.Y)
		if i == 0 || d < bestDist {
			best = c.ID
			bestDist = d
		}
	}
	return best
}

// SquaredDistance returns dx² + dy², computed in int64 so coordinates up
// to ±2^30 cannot overflow.
func SquaredDistance(x1, y1, x2, y2 int) int64 {
	dx := int64(x1) - int64(x2)
	dy := int64(y1) - int64(y2)
	return dx*dx + dy*dy
}

// FromIdeologies projects ideologies to candidates, preserving order.
func FromIdeologies(ideologies []domain.Ideology) []Candidate {
	out := make([]Candidate, 0, len(ideologies))
	for _, i := range ideologies {
		out = append(out, Candidate{ID: i.ID, X: i.X, Y: i.Y})
	}
	return out
}

// FromParties projects parties to candidates, preserving order.
func FromParties(parties []domain.Party) []Candidate {
	out := make([]Candidate, 0, len(parties))
	for _, p := range parties {
		out = append(out, Candidate{ID: p.ID, X: p.X, Y: p.Y})
	}
	return out
}
