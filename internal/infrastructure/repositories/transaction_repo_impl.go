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
	"gorm.io/gorm"
)

// TransactionRepository implements ledger operations
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create appends a ledger entry
func (r *TransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = utils.GenerateUUIDv7()
	}
	now := time.Now()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	tx.UpdatedAt = now

	m := &models.Transaction{
		ID:        tx.ID,
		UserID:    tx.UserID,
		LeaseID:   tx.LeaseID,
		Type:      string(tx.Type),
		Amount:    tx.Amount,
		Currency:  tx.Currency,
		Status:    string(tx.Status),
		CreatedAt: tx.CreatedAt,
		UpdatedAt: tx.UpdatedAt,
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

// GetByID gets a ledger entry by ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	var m models.Transaction
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return transactionToEntity(&m), nil
}

// GetByUserID lists a user's ledger entries, newest first
func (r *TransactionRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, int64, error) {
	query := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var ms []models.Transaction
	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*entities.Transaction, 0, len(ms))
	for i := range ms {
		out = append(out, transactionToEntity(&ms[i]))
	}
	return out, total, nil
}

// GetByLeaseID lists all ledger entries for a lease
func (r *TransactionRepository) GetByLeaseID(ctx context.Context, leaseID uuid.UUID) ([]*entities.Transaction, error) {
	var ms []models.Transaction
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("lease_id = ?", leaseID).
		Order("created_at ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	out := make([]*entities.Transaction, 0, len(ms))
	for i := range ms {
		out = append(out, transactionToEntity(&ms[i]))
	}
	return out, nil
}

// MarkCompleted moves a pending entry to COMPLETED. Terminal rows stay put.
func (r *TransactionRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	return r.finalize(ctx, id, entities.TransactionStatusCompleted)
}

// MarkFailed moves a pending entry to FAILED. Terminal rows stay put.
func (r *TransactionRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return r.finalize(ctx, id, entities.TransactionStatusFailed)
}

func (r *TransactionRepository) finalize(ctx context.Context, id uuid.UUID, status entities.TransactionStatus) error {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, string(entities.TransactionStatusPending)).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		})
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

func transactionToEntity(m *models.Transaction) *entities.Transaction {
	return &entities.Transaction{
		ID:        m.ID,
		UserID:    m.UserID,
		LeaseID:   m.LeaseID,
		Type:      entities.TransactionType(m.Type),
		Amount:    m.Amount,
		Currency:  m.Currency,
		Status:    entities.TransactionStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// InteractionRepository implements the write-once interaction log
type InteractionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository creates a new interaction repository
func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// Create appends an interaction event
func (r *InteractionRepository) Create(ctx context.Context, event *entities.InteractionHistory) error {
	if event.ID == uuid.Nil {
		event.ID = utils.GenerateUUIDv7()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	metadata := event.Metadata
	if metadata == "" {
		metadata = "{}"
	}

	m := &models.InteractionHistory{
		ID:        event.ID,
		UserID:    event.UserID,
		DomainID:  event.DomainID,
		ListingID: event.ListingID,
		Action:    string(event.Action),
		Metadata:  metadata,
		CreatedAt: event.CreatedAt,
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

// GetByUserID lists a user's interaction events, newest first
func (r *InteractionRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.InteractionHistory, int64, error) {
	query := GetDB(ctx, r.db).WithContext(ctx).Model(&models.InteractionHistory{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var ms []models.InteractionHistory
	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*entities.InteractionHistory, 0, len(ms))
	for i := range ms {
		m := ms[i]
		out = append(out, &entities.InteractionHistory{
			ID:        m.ID,
			UserID:    m.UserID,
			DomainID:  m.DomainID,
			ListingID: m.ListingID,
			Action:    entities.InteractionAction(m.Action),
			Metadata:  m.Metadata,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, total, nil
}
