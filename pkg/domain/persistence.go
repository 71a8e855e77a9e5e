package domain

import "context"

// PartyRow is the persisted shape of a party. Cached names are not stored.
type PartyRow struct {
	ID         int
	Name       string
	IdeologyID int
	X          int
	Y          int
}

// VoterRow is the persisted shape of a voter.
type VoterRow struct {
	ID         int
	Name       string
	IdeologyID int
	PartyID    int
	X          int
	Y          int
}

// Gateway is the persistence handle injected into every store. Rows are
// listed in ascending id order. A link column holding NoID is stored as
// NULL; deleting an ideology or party sets referencing link columns to NULL.
//
// Read failures wrap ErrPersistenceUnavailable. Write failures wrap
// ErrWriteFailed, or ErrPersistenceUnavailable when the backend cannot be
// reached at all.
type Gateway interface {
	ListIdeologies(ctx context.Context) ([]Ideology, error)
	InsertIdeology(ctx context.Context, ideology Ideology) (int, error)

	ListParties(ctx context.Context) ([]PartyRow, error)
	InsertParty(ctx context.Context, row PartyRow) (int, error)
	UpdateParty(ctx context.Context, row PartyRow) error
	DeleteParty(ctx context.Context, id int) error

	ListVoters(ctx context.Context) ([]VoterRow, error)
	InsertVoter(ctx context.Context, row VoterRow) (int, error)
	UpdateVoter(ctx context.Context, row VoterRow) error
	DeleteVoter(ctx context.Context, id int) error

	Close() error
}
