package repositories

import (
	"context"

	"domainlease.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// TransactionRepository defines ledger operations. The ledger is append-only:
// there is no Update; a refund is a new row referencing the same lease.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entities.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, int64, error)
	GetByLeaseID(ctx context.Context, leaseID uuid.UUID) ([]*entities.Transaction, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
}

// InteractionRepository defines write-once interaction log operations
type InteractionRepository interface {
	Create(ctx context.Context, event *entities.InteractionHistory) error
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.InteractionHistory, int64, error)
}
