package entities

import (
	"time"

	"github.com/google/uuid"
)

// InteractionAction represents the kind of user interaction recorded
type InteractionAction string

const (
	InteractionActionView       InteractionAction = "VIEW"
	InteractionActionSearch     InteractionAction = "SEARCH"
	InteractionActionFavorite   InteractionAction = "FAVORITE"
	InteractionActionContact    InteractionAction = "CONTACT"
	InteractionActionLeaseStart InteractionAction = "LEASE_START"
)

// InteractionHistory is a write-once event log entry
type InteractionHistory struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"userId"`
	DomainID  *uuid.UUID        `json:"domainId,omitempty"`
	ListingID *uuid.UUID        `json:"listingId,omitempty"`
	Action    InteractionAction `json:"action"`
	Metadata  string            `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}
