package repositories

import (
	"context"

	"domainlease.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByWalletAddress(ctx context.Context, address string) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
	TouchLastActive(ctx context.Context, id uuid.UUID) error
	ExpireProStatus(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, search string) ([]*entities.User, error)
}
