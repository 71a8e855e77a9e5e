// Package domain defines the records positioned in ideology space, the
// change events emitted when they mutate, and the persistence contract
// used by ideospace stores.
package domain

// EntityKind identifies the kind of record stored in the core domain.
type EntityKind string

// Supported entity kinds used in events and persistence errors.
const (
	// KindIdeology identifies a fixed reference point in ideology space.
	KindIdeology EntityKind = "ideology"
	// KindParty identifies a party record.
	KindParty EntityKind = "party"
	// KindVoter identifies a voter record.
	KindVoter EntityKind = "voter"
)

// NoID marks an absent link. It is never a valid persisted id.
const NoID = -1

// UnknownIdeology is the name reported for an ideology id that matches no
// current record.
const UnknownIdeology = "Unknown"

// Ideology is a named reference point. The set is seeded once and treated
// as read-only afterwards.
type Ideology struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// Party is a party record with its cached ideology link.
//
// IdeologyID is either NoID or the id of the nearest ideology at the time
// the row was last written. IdeologyName is resolved when the owning store
// loads the row and is not kept as a live join.
type Party struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	IdeologyID   int    `json:"ideology_id"`
	IdeologyName string `json:"ideology_name"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
}

// Voter is a voter record with two independent cached links: the nearest
// ideology and the nearest party, both computed from the same coordinates.
type Voter struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	IdeologyID   int    `json:"ideology_id"`
	IdeologyName string `json:"ideology_name"`
	PartyID      int    `json:"party_id"`
	PartyName    string `json:"party_name"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
}

// HasParty reports whether the voter is assigned to a party.
func (v Voter) HasParty() bool { return v.PartyID != NoID }
