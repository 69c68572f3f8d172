package repositories

import (
	"context"

	"domainlease.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// DomainRepository defines domain data operations
type DomainRepository interface {
	Create(ctx context.Context, domain *entities.Domain) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Domain, error)
	GetByName(ctx context.Context, name string) (*entities.Domain, error)
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*entities.Domain, error)
	UpdateVerificationStatus(ctx context.Context, id uuid.UUID, status entities.DomainVerificationStatus) error
}
