// Package gatewaytest holds the behavioural contract every domain.Gateway
// implementation must satisfy. Backend packages run it from their tests.
package gatewaytest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideospace/pkg/domain"
)

// IdeologyDeleter is implemented by gateways that can drop reference data.
type IdeologyDeleter interface {
	DeleteIdeology(ctx context.Context, id int) error
}

// Factory returns a fresh, empty gateway. Cleanup is the factory's job.
type Factory func(t *testing.T) domain.Gateway

// Run exercises gw against the shared contract.
func Run(t *testing.T, open Factory) {
	t.Helper()
	t.Run("ids are generated and listed in order", func(t *testing.T) {
		ctx := context.Background()
		gw := open(t)
		a, err := gw.InsertIdeology(ctx, domain.Ideology{Name: "Left", X: -10, Y: 0})
		require.NoError(t, err)
		b, err := gw.InsertIdeology(ctx, domain.Ideology{Name: "Right", X: 10, Y: 0})
		require.NoError(t, err)
		assert.Greater(t, b, a)

		got, err := gw.ListIdeologies(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, domain.Ideology{ID: a, Name: "Left", X: -10, Y: 0}, got[0])
		assert.Equal(t, domain.Ideology{ID: b, Name: "Right", X: 10, Y: 0}, got[1])
	})

	t.Run("party round trip with and without ideology link", func(t *testing.T) {
		ctx := context.Background()
		gw := open(t)
		ideology := mustIdeology(t, gw, "Centre", 0, 0)

		linked, err := gw.InsertParty(ctx, domain.PartyRow{Name: "Linked", IdeologyID: ideology, X: 1, Y: 2})
		require.NoError(t, err)
		unlinked, err := gw.InsertParty(ctx, domain.PartyRow{Name: "Loose", IdeologyID: domain.NoID, X: -3, Y: 4})
		require.NoError(t, err)

		rows, err := gw.ListParties(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.PartyRow{
			{ID: linked, Name: "Linked", IdeologyID: ideology, X: 1, Y: 2},
			{ID: unlinked, Name: "Loose", IdeologyID: domain.NoID, X: -3, Y: 4},
		}, rows)

		require.NoError(t, gw.UpdateParty(ctx, domain.PartyRow{ID: unlinked, Name: "Tight", IdeologyID: ideology, X: 7, Y: 7}))
		rows, err = gw.ListParties(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.PartyRow{ID: unlinked, Name: "Tight", IdeologyID: ideology, X: 7, Y: 7}, rows[1])
	})

	t.Run("voter round trip", func(t *testing.T) {
		ctx := context.Background()
		gw := open(t)
		ideology := mustIdeology(t, gw, "Centre", 0, 0)
		party, err := gw.InsertParty(ctx, domain.PartyRow{Name: "P", IdeologyID: ideology})
		require.NoError(t, err)

		id, err := gw.InsertVoter(ctx, domain.VoterRow{Name: "V", IdeologyID: ideology, PartyID: party, X: 5, Y: -5})
		require.NoError(t, err)
		require.NoError(t, gw.UpdateVoter(ctx, domain.VoterRow{ID: id, Name: "W", IdeologyID: ideology, PartyID: domain.NoID, X: 6, Y: -6}))

		rows, err := gw.ListVoters(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.VoterRow{{ID: id, Name: "W", IdeologyID: ideology, PartyID: domain.NoID, X: 6, Y: -6}}, rows)

		require.NoError(t, gw.DeleteVoter(ctx, id))
		rows, err = gw.ListVoters(ctx)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("deleting a party clears voter links", func(t *testing.T) {
		ctx := context.Background()
		gw := open(t)
		ideology := mustIdeology(t, gw, "Centre", 0, 0)
		party, err := gw.InsertParty(ctx, domain.PartyRow{Name: "P", IdeologyID: ideology})
		require.NoError(t, err)
		keep, err := gw.InsertParty(ctx, domain.PartyRow{Name: "Q", IdeologyID: ideology})
		require.NoError(t, err)
		v1, err := gw.InsertVoter(ctx, domain.VoterRow{Name: "a", IdeologyID: ideology, PartyID: party})
		require.NoError(t, err)
		v2, err := gw.InsertVoter(ctx, domain.VoterRow{Name: "b", IdeologyID: ideology, PartyID: keep})
		require.NoError(t, err)

		require.NoError(t, gw.DeleteParty(ctx, party))

		rows, err := gw.ListVoters(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, v1, rows[0].ID)
		assert.Equal(t, domain.NoID, rows[0].PartyID)
		assert.Equal(t, v2, rows[1].ID)
		assert.Equal(t, keep, rows[1].PartyID)
	})

	t.Run("deleting an ideology clears links", func(t *testing.T) {
		ctx := context.Background()
		gw := open(t)
		deleter, ok := gw.(IdeologyDeleter)
		if !ok {
			t.Skip("gateway cannot delete ideologies")
		}
		gone := mustIdeology(t, gw, "Gone", 0, 0)
		_, err := gw.InsertParty(ctx, domain.PartyRow{Name: "P", IdeologyID: gone})
		require.NoError(t, err)
		_, err = gw.InsertVoter(ctx, domain.VoterRow{Name: "V", IdeologyID: gone, PartyID: domain.NoID})
		require.NoError(t, err)

		require.NoError(t, deleter.DeleteIdeology(ctx, gone))

		parties, err := gw.ListParties(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.NoID, parties[0].IdeologyID)
		voters, err := gw.ListVoters(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.NoID, voters[0].IdeologyID)
	})

	t.Run("writes to missing rows fail", func(t *testing.T) {
		ctx := context.Background()
		gw := open(t)
		err := gw.UpdateParty(ctx, domain.PartyRow{ID: 99, Name: "ghost", IdeologyID: domain.NoID})
		assertMissing(t, err, domain.KindParty, 99)
		assertMissing(t, gw.DeleteParty(ctx, 99), domain.KindParty, 99)
		err = gw.UpdateVoter(ctx, domain.VoterRow{ID: 42, Name: "ghost", IdeologyID: domain.NoID, PartyID: domain.NoID})
		assertMissing(t, err, domain.KindVoter, 42)
		assertMissing(t, gw.DeleteVoter(ctx, 42), domain.KindVoter, 42)
	})

	t.Run("dangling links are rejected", func(t *testing.T) {
		ctx := context.Background()
		gw := open(t)
		_, err := gw.InsertParty(ctx, domain.PartyRow{Name: "P", IdeologyID: 12345})
		require.ErrorIs(t, err, domain.ErrWriteFailed)
		_, err = gw.InsertVoter(ctx, domain.VoterRow{Name: "V", IdeologyID: domain.NoID, PartyID: 12345})
		require.ErrorIs(t, err, domain.ErrWriteFailed)
	})

	t.Run("closed gateway is unavailable", func(t *testing.T) {
		ctx := context.Background()
		gw := open(t)
		require.NoError(t, gw.Close())
		_, err := gw.ListIdeologies(ctx)
		require.ErrorIs(t, err, domain.ErrPersistenceUnavailable)
		_, err = gw.InsertParty(ctx, domain.PartyRow{Name: "late", IdeologyID: domain.NoID})
		require.ErrorIs(t, err, domain.ErrPersistenceUnavailable)
	})
}

func mustIdeology(t *testing.T, gw domain.Gateway, name string, x, y int) int {
	t.Helper()
	id, err := gw.InsertIdeology(context.Background(), domain.Ideology{Name: name, X: x, Y: y})
	require.NoError(t, err)
	return id
}

func assertMissing(t *testing.T, err error, kind domain.EntityKind, id int) {
	t.Helper()
	require.ErrorIs(t, err, domain.ErrWriteFailed)
	var nf domain.NotFoundError
	require.True(t, errors.As(err, &nf), "expected NotFoundError, got %v", err)
	assert.Equal(t, kind, nf.Kind)
	assert.Equal(t, id, nf.ID)
}
