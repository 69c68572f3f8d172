package repositories

import (
	"context"
	"encoding/json"
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

// ListingRepository implements listing data operations
type ListingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new listing repository
func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// Create creates a new listing
func (r *ListingRepository) Create(ctx context.Context, listing *entities.Listing) error {
	if listing.ID == uuid.Nil {
		listing.ID = utils.GenerateUUIDv7()
	}
	now := time.Now()
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = now
	}
	listing.UpdatedAt = now

	m, err := listingToModel(listing)
	if err != nil {
		return err
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

// GetByID gets a listing by ID
func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Listing, error) {
	var m models.Listing
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return listingToEntity(&m), nil
}

// liveStatuses are the listing states that occupy a domain's single
// marketplace slot. Terminal rows (CANCELLED, EXPIRED) stay readable but
// never block a fresh listing.
var liveStatuses = []string{
	string(entities.ListingStatusActive),
	string(entities.ListingStatusLeased),
}

// GetByDomainID gets the live listing for a domain, if any. Terminal rows
// for the domain are ignored.
func (r *ListingRepository) GetByDomainID(ctx context.Context, domainID uuid.UUID) (*entities.Listing, error) {
	var m models.Listing
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("domain_id = ? AND status IN ?", domainID, liveStatuses).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return listingToEntity(&m), nil
}

// UpdateStatus transitions a listing from one status to another. The WHERE
// clause on the current status makes racing transitions mutually exclusive:
// when zero rows match, the row either vanished (ErrNotFound) or another
// writer got there first (ErrInvalidState).
func (r *ListingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entities.ListingStatus) error {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     string(to),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.classifyMiss(ctx, id)
	}
	return nil
}

// Update updates mutable listing fields with an optimistic version check
func (r *ListingRepository) Update(ctx context.Context, listing *entities.Listing) error {
	tags, err := json.Marshal(listing.Tags)
	if err != nil {
		return err
	}
	result := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ? AND version = ?", listing.ID, listing.Version).
		Updates(map[string]interface{}{
			"price_amount":   listing.PriceAmount,
			"price_currency": listing.PriceCurrency,
			"duration_days":  listing.DurationDays,
			"lease_type":     string(listing.LeaseType),
			"tags":           string(tags),
			"version":        gorm.Expr("version + 1"),
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, listing.ID); err != nil {
			return err
		}
		return domainerrors.ErrConcurrentModification
	}
	listing.Version++
	return nil
}

// SetBinding records an issued lease token on the listing. Refuses to
// overwrite an existing binding so a partial bind can never clobber a live
// token reference.
func (r *ListingRepository) SetBinding(ctx context.Context, id uuid.UUID, contractAddress, tokenID string) error {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ? AND nft_contract IS NULL", id).
		Updates(map[string]interface{}{
			"nft_contract": contractAddress,
			"nft_token_id": tokenID,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domainerrors.ErrBindingConflict
	}
	return nil
}

// ClearBinding removes the token binding fields after a successful burn
func (r *ListingRepository) ClearBinding(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"nft_contract":   nil,
			"nft_token_id":   nil,
			"unbind_pending": false,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// MarkUnbindPending flags or clears the deferred-unbind marker
func (r *ListingRepository) MarkUnbindPending(ctx context.Context, id uuid.UUID, pending bool) error {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"unbind_pending": pending,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ListUnbindPending returns listings whose on-chain unbind still needs a retry
func (r *ListingRepository) ListUnbindPending(ctx context.Context, limit int) ([]*entities.Listing, error) {
	var ms []models.Listing
	q := GetDB(ctx, r.db).WithContext(ctx).
		Where("unbind_pending = ? AND nft_contract IS NOT NULL", true).
		Order("updated_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}
	return listingsToEntities(ms), nil
}

// IncrementViewCount bumps the view counter without touching the version
func (r *ListingRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + 1")).Error
}

// Search filters listings and returns a page plus the total match count
func (r *ListingRepository) Search(ctx context.Context, filter *entities.ListingFilter) ([]*entities.Listing, int64, error) {
	query := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Listing{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	} else {
		// Marketplace browsing shows live rows only; terminal listings
		// remain readable by id or by an explicit status filter.
		query = query.Where("status IN ?", liveStatuses)
	}
	if filter.LeaseType != "" {
		query = query.Where("lease_type = ?", filter.LeaseType)
	}
	if filter.MinPrice != nil {
		query = query.Where("price_amount >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price_amount <= ?", *filter.MaxPrice)
	}
	if filter.Suffix != "" {
		query = query.Where("domain_id IN (?)",
			GetDB(ctx, r.db).Model(&models.Domain{}).Select("id").Where("suffix = ?", filter.Suffix))
	}
	if filter.Query != "" {
		term := "%" + filter.Query + "%"
		query = query.Where("domain_id IN (?)",
			GetDB(ctx, r.db).Model(&models.Domain{}).Select("id").Where("name LIKE ?", term))
	}
	for _, tag := range filter.Tags {
		// Tags are stored as a JSON array of strings.
		query = query.Where("tags LIKE ?", `%"`+tag+`"%`)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at"
	switch filter.SortBy {
	case "price":
		order = "price_amount"
	case "views":
		order = "view_count"
	case "duration":
		order = "duration_days"
	case "", "created":
		// default
	default:
		return nil, 0, domainerrors.BadRequest("unsupported sort field: " + filter.SortBy)
	}
	if filter.SortDesc {
		order += " DESC"
	}
	query = query.Order(order)

	if filter.Limit > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.Limit
		}
		query = query.Limit(filter.Limit).Offset(offset)
	}

	var ms []models.Listing
	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	return listingsToEntities(ms), total, nil
}

// ListExpirable returns non-terminal listings older than their duration window
func (r *ListingRepository) ListExpirable(ctx context.Context, limit int) ([]*entities.Listing, error) {
	var ms []models.Listing
	q := GetDB(ctx, r.db).WithContext(ctx).
		Where("status = ?", string(entities.ListingStatusActive)).
		Where("created_at < ?", time.Now().Add(-24*time.Hour)). // coarse pre-filter, exact check in the job
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}
	return listingsToEntities(ms), nil
}

func (r *ListingRepository) classifyMiss(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return domainerrors.ErrInvalidState
}

func listingToModel(l *entities.Listing) (*models.Listing, error) {
	tags, err := json.Marshal(l.Tags)
	if err != nil {
		return nil, err
	}
	return &models.Listing{
		ID:            l.ID,
		DomainID:      l.DomainID,
		LessorID:      l.LessorID,
		PriceAmount:   l.PriceAmount,
		PriceCurrency: l.PriceCurrency,
		DurationDays:  l.DurationDays,
		LeaseType:     string(l.LeaseType),
		Status:        string(l.Status),
		NFTContract:   l.NFTContract.Ptr(),
		NFTTokenID:    l.NFTTokenID.Ptr(),
		UnbindPending: l.UnbindPending,
		ViewCount:     l.ViewCount,
		Tags:          string(tags),
		Version:       l.Version,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}, nil
}

func listingToEntity(m *models.Listing) *entities.Listing {
	var tags []string
	_ = json.Unmarshal([]byte(m.Tags), &tags)
	return &entities.Listing{
		ID:            m.ID,
		DomainID:      m.DomainID,
		LessorID:      m.LessorID,
		PriceAmount:   m.PriceAmount,
		PriceCurrency: m.PriceCurrency,
		DurationDays:  m.DurationDays,
		LeaseType:     entities.LeaseType(m.LeaseType),
		Status:        entities.ListingStatus(m.Status),
		NFTContract:   null.StringFromPtr(m.NFTContract),
		NFTTokenID:    null.StringFromPtr(m.NFTTokenID),
		UnbindPending: m.UnbindPending,
		ViewCount:     m.ViewCount,
		Tags:          tags,
		Version:       m.Version,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func listingsToEntities(ms []models.Listing) []*entities.Listing {
	out := make([]*entities.Listing, 0, len(ms))
	for i := range ms {
		out = append(out, listingToEntity(&ms[i]))
	}
	return out
}
