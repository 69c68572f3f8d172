package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"domainlease.backend/internal/domain/entities"
	domainerrors "domainlease.backend/internal/domain/errors"
	"domainlease.backend/internal/infrastructure/models"
	"domainlease.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
)

// DomainRepository implements domain data operations
type DomainRepository struct {
	db *gorm.DB
}

// NewDomainRepository creates a new domain repository
func NewDomainRepository(db *gorm.DB) *DomainRepository {
	return &DomainRepository{db: db}
}

// Create creates a new domain record
func (r *DomainRepository) Create(ctx context.Context, domain *entities.Domain) error {
	if domain.ID == uuid.Nil {
		domain.ID = utils.GenerateUUIDv7()
	}
	now := time.Now()
	if domain.CreatedAt.IsZero() {
		domain.CreatedAt = now
	}
	domain.UpdatedAt = now

	name := strings.ToLower(domain.Name)
	m := &models.Domain{
		ID:                 domain.ID,
		Name:               name,
		Suffix:             domain.Suffix,
		Type:               string(domain.Type),
		OwnerID:            domain.OwnerID,
		VerificationStatus: string(domain.VerificationStatus),
		ExistingSiteURL:    domain.ExistingSiteURL.Ptr(),
		SEOMetrics:         domain.SEOMetrics.Ptr(),
		CreatedAt:          domain.CreatedAt,
		UpdatedAt:          domain.UpdatedAt,
	}
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") ||
			strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a domain by ID
func (r *DomainRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Domain, error) {
	var m models.Domain
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return domainToEntity(&m), nil
}

// GetByName gets a domain by its unique name
func (r *DomainRepository) GetByName(ctx context.Context, name string) (*entities.Domain, error) {
	var m models.Domain
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("name = ?", strings.ToLower(name)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return domainToEntity(&m), nil
}

// GetByOwnerID lists all domains owned by a user
func (r *DomainRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*entities.Domain, error) {
	var ms []models.Domain
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	out := make([]*entities.Domain, 0, len(ms))
	for i := range ms {
		out = append(out, domainToEntity(&ms[i]))
	}
	return out, nil
}

// UpdateVerificationStatus is invoked by the verification collaborator only
func (r *DomainRepository) UpdateVerificationStatus(ctx context.Context, id uuid.UUID, status entities.DomainVerificationStatus) error {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.Domain{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"verification_status": string(status),
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func domainToEntity(m *models.Domain) *entities.Domain {
	return &entities.Domain{
		ID:                 m.ID,
		Name:               m.Name,
		Suffix:             m.Suffix,
		Type:               entities.DomainType(m.Type),
		OwnerID:            m.OwnerID,
		VerificationStatus: entities.DomainVerificationStatus(m.VerificationStatus),
		ExistingSiteURL:    null.StringFromPtr(m.ExistingSiteURL),
		SEOMetrics:         null.StringFromPtr(m.SEOMetrics),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
