package domain

// EventType names a change event carried by the in-process bus.
type EventType string

// Store change events, emitted by a store after a successful write.
const (
	PartyCreated EventType = "party.created"
	PartyUpdated EventType = "party.updated"
	PartyDeleted EventType = "party.deleted"
	VoterCreated EventType = "voter.created"
	VoterUpdated EventType = "voter.updated"
	VoterDeleted EventType = "voter.deleted"
)

// Notification feed consumed by presentation collaborators. These are
// published only once dependent stores have settled.
const (
	EntityCreated       EventType = "entity.created"
	EntityUpdated       EventType = "entity.updated"
	EntityDeleted       EventType = "entity.deleted"
	ExternalDataChanged EventType = "data.changed"
)

// Event is a typed change notification. Kind and ID are zero-valued for
// ExternalDataChanged.
type Event struct {
	Type EventType
	Kind EntityKind
	ID   int
}

// IsFeed reports whether t belongs to the notification feed published
// after stores have settled.
func (t EventType) IsFeed() bool {
	switch t {
	case EntityCreated, EntityUpdated, EntityDeleted, ExternalDataChanged:
		return true
	}
	return false
}
