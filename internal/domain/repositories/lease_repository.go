package repositories

import (
	"context"
	"time"

	"domainlease.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// LeaseRepository defines lease data operations.
//
// UpdateStatus is conditional on the lease still being in `from`; the first
// caller to transition wins and concurrent losers observe ErrInvalidState.
type LeaseRepository interface {
	Create(ctx context.Context, lease *entities.Lease) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Lease, error)
	GetActiveByListingID(ctx context.Context, listingID uuid.UUID) (*entities.Lease, error)
	CountActiveByListingID(ctx context.Context, listingID uuid.UUID) (int64, error)
	GetByLesseeID(ctx context.Context, lesseeID uuid.UUID, limit, offset int) ([]*entities.Lease, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to entities.LeaseStatus, reason string) error
	SetNFTTransferredAt(ctx context.Context, id uuid.UUID, at time.Time) error
	ListActiveEndedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entities.Lease, error)
}
