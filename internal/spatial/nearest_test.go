package spatial

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideospace/pkg/domain"
)

func TestNearest_EmptyReturnsSentinel(t *testing.T) {
	assert.Equal(t, domain.NoID, Nearest(0, 0, nil))
	assert.Equal(t, domain.NoID, Nearest(12, -7, []Candidate{}))
}

func TestNearest_TieGoesToFirstInOrder(t *testing.T) {
	a := Candidate{ID: 1, X: 10, Y: 0}
	b := Candidate{ID: 2, X: -10, Y: 0}

	assert.Equal(t, 1, Nearest(0, 0, []Candidate{a, b}))
	assert.Equal(t, 2, Nearest(0, 0, []Candidate{b, a}))
}

func TestNearest_PicksClosest(t *testing.T) {
	cands := []Candidate{
		{ID: 1, X: 0, Y: 0},
		{ID: 2, X: -50, Y: -50},
		{ID: 3, X: -80, Y: 40},
		{ID: 4, X: 60, Y: -30},
		{ID: 5, X: 70, Y: 60},
	}
	cases := []struct {
		name string
		x, y int
		want int
	}{
		{"origin", 0, 0, 1},
		{"green cluster", -46, -53, 2},
		{"left cluster", -85, 38, 3},
		{"liberal cluster", 72, -40, 4},
		{"conservative cluster", 77, 66, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Nearest(tc.x, tc.y, cands))
		})
	}
}

func TestNearest_MatchesBruteForceMinimum(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 200; iter++ {
		n := 1 + rng.Intn(12)
		cands := make([]Candidate, n)
		for i := range cands {
			cands[i] = Candidate{ID: i + 1, X: rng.Intn(201) - 100, Y: rng.Intn(201) - 100}
		}
		qx, qy := rng.Intn(201)-100, rng.Intn(201)-100

		got := Nearest(qx, qy, cands)
		require.NotEqual(t, domain.NoID, got)

		var gotDist int64 = -1
		minDist := SquaredDistance(qx, qy, cands[0].X, cands[0].Y)
		for _, c := range cands {
			d := SquaredDistance(qx, qy, c.X, c.Y)
			if d < minDist {
				minDist = d
			}
			if c.ID == got {
				gotDist = d
			}
		}
		require.Equal(t, minDist, gotDist, "iteration %d", iter)
	}
}

func TestSquaredDistance_NoOverflowAtExtremes(t *testing.T) {
	const big = 1 << 29
	assert.Equal(t, int64(8)*int64(big)*int64(big), SquaredDistance(big, big, -big, -big))
}

func TestProjections_PreserveOrder(t *testing.T) {
	ideologies := []domain.Ideology{{ID: 3, X: 1, Y: 2}, {ID: 1, X: 3, Y: 4}}
	assert.Equal(t, []Candidate{{ID: 3, X: 1, Y: 2}, {ID: 1, X: 3, Y: 4}}, FromIdeologies(ideologies))

	parties := []domain.Party{{ID: 9, X: -1, Y: 0}}
	assert.Equal(t, []Candidate{{ID: 9, X: -1, Y: 0}}, FromParties(parties))
	assert.Empty(t, FromParties(nil))
}
