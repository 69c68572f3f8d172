package repositories

import (
	"context"
	"errors"
	"time"

	"domainlease.backend/internal/domain/entities"
	domainerrors "domainlease.backend/internal/domain/errors"
	"domainlease.backend/internal/infrastructure/models"
	"domainlease.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
)

// LeaseRepository implements lease data operations
type LeaseRepository struct {
	db *gorm.DB
}

// NewLeaseRepository creates a new lease repository
func NewLeaseRepository(db *gorm.DB) *LeaseRepository {
	return &LeaseRepository{db: db}
}

// Create creates a new lease. EndDate must be strictly after StartDate.
func (r *LeaseRepository) Create(ctx context.Context, lease *entities.Lease) error {
	if !lease.EndDate.After(lease.StartDate) {
		return domainerrors.BadRequest("lease end date must be after start date")
	}
	if lease.ID == uuid.Nil {
		lease.ID = utils.GenerateUUIDv7()
	}
	now := time.Now()
	if lease.CreatedAt.IsZero() {
		lease.CreatedAt = now
	}
	lease.UpdatedAt = now

	m := leaseToModel(lease)
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

// GetByID gets a lease by ID
func (r *LeaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Lease, error) {
	var m models.Lease
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return leaseToEntity(&m), nil
}

// GetActiveByListingID returns the single active lease for a listing
func (r *LeaseRepository) GetActiveByListingID(ctx context.Context, listingID uuid.UUID) (*entities.Lease, error) {
	var m models.Lease
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("listing_id = ? AND status = ?", listingID, string(entities.LeaseStatusActive)).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return leaseToEntity(&m), nil
}

// CountActiveByListingID counts active leases referencing a listing
func (r *LeaseRepository) CountActiveByListingID(ctx context.Context, listingID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.Lease{}).
		Where("listing_id = ? AND status = ?", listingID, string(entities.LeaseStatusActive)).
		Count(&count).Error
	return count, err
}

// GetByLesseeID lists a lessee's leases, newest first
func (r *LeaseRepository) GetByLesseeID(ctx context.Context, lesseeID uuid.UUID, limit, offset int) ([]*entities.Lease, int64, error) {
	query := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Lease{}).Where("lessee_id = ?", lesseeID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var ms []models.Lease
	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*entities.Lease, 0, len(ms))
	for i := range ms {
		out = append(out, leaseToEntity(&ms[i]))
	}
	return out, total, nil
}

// UpdateStatus transitions a lease from one status to another. Lease status
// is monotonic; the conditional WHERE enforces it under concurrency, so the
// second of two racing terminal transitions observes ErrInvalidState.
func (r *LeaseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entities.LeaseStatus, reason string) error {
	updates := map[string]interface{}{
		"status":     string(to),
		"version":    gorm.Expr("version + 1"),
		"updated_at": time.Now(),
	}
	if reason != "" {
		updates["termination_reason"] = reason
	}

	result := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.Lease{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domainerrors.ErrInvalidState
	}
	return nil
}

// SetNFTTransferredAt records when the lease token reached the lessee
func (r *LeaseRepository) SetNFTTransferredAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.Lease{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"nft_transferred_at": at,
			"updated_at":         time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ListActiveEndedBefore returns active leases whose end date has passed
func (r *LeaseRepository) ListActiveEndedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entities.Lease, error) {
	var ms []models.Lease
	q := GetDB(ctx, r.db).WithContext(ctx).
		Where("status = ? AND end_date < ?", string(entities.LeaseStatusActive), cutoff).
		Order("end_date ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}

	out := make([]*entities.Lease, 0, len(ms))
	for i := range ms {
		out = append(out, leaseToEntity(&ms[i]))
	}
	return out, nil
}

func leaseToModel(l *entities.Lease) *models.Lease {
	return &models.Lease{
		ID:                l.ID,
		ListingID:         l.ListingID,
		LesseeID:          l.LesseeID,
		StartDate:         l.StartDate,
		EndDate:           l.EndDate,
		PaymentAmount:     l.PaymentAmount,
		PaymentCurrency:   l.PaymentCurrency,
		Status:            string(l.Status),
		NFTTransferredAt:  l.NFTTransferredAt,
		EscrowTxRef:       l.EscrowTxRef.Ptr(),
		AutoRenew:         l.AutoRenew,
		TerminationReason: l.TerminationReason.Ptr(),
		Version:           l.Version,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

func leaseToEntity(m *models.Lease) *entities.Lease {
	return &entities.Lease{
		ID:                m.ID,
		ListingID:         m.ListingID,
		LesseeID:          m.LesseeID,
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
		PaymentAmount:     m.PaymentAmount,
		PaymentCurrency:   m.PaymentCurrency,
		Status:            entities.LeaseStatus(m.Status),
		NFTTransferredAt:  m.NFTTransferredAt,
		EscrowTxRef:       null.StringFromPtr(m.EscrowTxRef),
		AutoRenew:         m.AutoRenew,
		TerminationReason: null.StringFromPtr(m.TerminationReason),
		Version:           m.Version,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
