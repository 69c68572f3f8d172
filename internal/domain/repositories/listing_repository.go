package repositories

import (
	"context"

	"domainlease.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// ListingRepository defines listing data operations.
//
// UpdateStatus is a conditional transition: the row is updated only when its
// current status still equals `from`, which makes two racing transitions on
// the same listing mutually exclusive. The loser observes ErrInvalidState
// (row exists, wrong state) and must not retry blindly.
type ListingRepository interface {
	Create(ctx context.Context, listing *entities.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Listing, error)
	GetByDomainID(ctx context.Context, domainID uuid.UUID) (*entities.Listing, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to entities.ListingStatus) error
	Update(ctx context.Context, listing *entities.Listing) error
	SetBinding(ctx context.Context, id uuid.UUID, contractAddress, tokenID string) error
	ClearBinding(ctx context.Context, id uuid.UUID) error
	MarkUnbindPending(ctx context.Context, id uuid.UUID, pending bool) error
	ListUnbindPending(ctx context.Context, limit int) ([]*entities.Listing, error)
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, filter *entities.ListingFilter) ([]*entities.Listing, int64, error)
	ListExpirable(ctx context.Context, limit int) ([]*entities.Listing, error)
}
