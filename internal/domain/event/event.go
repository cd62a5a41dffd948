package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeItemCreated    Type = "item_created"
	TypeItemUpdated    Type = "item_updated"
	TypeItemDeleted    Type = "item_deleted"
	TypeItemShared     Type = "item_shared"
	TypeItemUnshared   Type = "item_unshared"
	TypeProfileChanged Type = "profile_changed"
)

// Channel is a domain-scoped Postgres NOTIFY channel.
// All event types within a domain share one LISTEN connection.
type Channel string

const (
	ChannelItem    Channel = "item"
	ChannelShare   Channel = "share"
	ChannelProfile Channel = "profile"
)

// Channels lists every channel a replica listens on.
var Channels = []Channel{ChannelItem, ChannelShare, ChannelProfile}

var typeToChannel = map[Type]Channel{
	TypeItemCreated:    ChannelItem,
	TypeItemUpdated:    ChannelItem,
	TypeItemDeleted:    ChannelItem,
	TypeItemShared:     ChannelShare,
	TypeItemUnshared:   ChannelShare,
	TypeProfileChanged: ChannelProfile,
}

// ChannelFor returns the domain channel for a given event type.
func ChannelFor(t Type) Channel { return typeToChannel[t] }

// Event carries identifiers only, not full state.
// ActorID is the principal whose action caused the change; Audience lists the
// other principals whose cached views are affected (share recipients).
type Event struct {
	Type      Type        `json:"type"`
	EntityID  uuid.UUID   `json:"entity_id"`
	ActorID   uuid.UUID   `json:"actor_id"`
	Audience  []uuid.UUID `json:"audience,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func New(eventType Type, entityID, actorID uuid.UUID, audience ...uuid.UUID) Event {
	return Event{
		Type:      eventType,
		EntityID:  entityID,
		ActorID:   actorID,
		Audience:  audience,
		Timestamp: time.Now().UTC(),
	}
}
