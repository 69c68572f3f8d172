package repositories

import (
	"context"
	"encoding/json"
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

// UserRepository implements user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	if user.ID == uuid.Nil {
		user.ID = utils.GenerateUUIDv7()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	suffixes, err := json.Marshal(user.PreferredSuffixes)
	if err != nil {
		return err
	}

	m := &models.User{
		ID:                 user.ID,
		Email:              user.Email.Ptr(),
		WalletAddress:      normalizedAddressPtr(user.WalletAddress),
		PasswordHash:       user.PasswordHash,
		Role:               string(user.Role),
		IsPro:              user.IsPro,
		ProExpiresAt:       user.ProExpiresAt,
		EmailVerified:      user.EmailVerified,
		ICANNVerified:      user.ICANNVerified,
		KYCVerified:        user.KYCVerified,
		BudgetMin:          user.BudgetMin.Ptr(),
		BudgetMax:          user.BudgetMax.Ptr(),
		PreferredSuffixes:  string(suffixes),
		CommunicationStyle: user.CommunicationStyle.Ptr(),
		LastActiveAt:       user.LastActiveAt,
		CreatedAt:          user.CreatedAt,
		UpdatedAt:          user.UpdatedAt,
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return userToEntity(&m), nil
}

// GetByEmail gets a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return userToEntity(&m), nil
}

// GetByWalletAddress gets a user by wallet address (case-insensitive)
func (r *UserRepository) GetByWalletAddress(ctx context.Context, address string) (*entities.User, error) {
	var m models.User
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("wallet_address = ?", strings.ToLower(address)).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return userToEntity(&m), nil
}

// Update updates user profile fields
func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	suffixes, err := json.Marshal(user.PreferredSuffixes)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"role":                string(user.Role),
		"is_pro":              user.IsPro,
		"pro_expires_at":      user.ProExpiresAt,
		"email_verified":      user.EmailVerified,
		"icann_verified":      user.ICANNVerified,
		"kyc_verified":        user.KYCVerified,
		"budget_min":          user.BudgetMin.Ptr(),
		"budget_max":          user.BudgetMax.Ptr(),
		"preferred_suffixes":  string(suffixes),
		"communication_style": user.CommunicationStyle.Ptr(),
		"password_hash":       user.PasswordHash,
		"updated_at":          time.Now(),
	}

	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// TouchLastActive stamps the last-active timestamp on login
func (r *UserRepository) TouchLastActive(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_active_at", time.Now()).Error
}

// ExpireProStatus clears the pro flag once the subscription window has passed
func (r *UserRepository) ExpireProStatus(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND is_pro = ? AND pro_expires_at < ?", id, true, time.Now()).
		Update("is_pro", false).Error
}

// List lists users with optional search filter
func (r *UserRepository) List(ctx context.Context, search string) ([]*entities.User, error) {
	var ms []models.User
	query := GetDB(ctx, r.db).WithContext(ctx).Order("created_at DESC")

	if search != "" {
		term := "%" + search + "%"
		query = query.Where("email LIKE ? OR wallet_address LIKE ?", term, term)
	}

	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}

	users := make([]*entities.User, 0, len(ms))
	for i := range ms {
		users = append(users, userToEntity(&ms[i]))
	}
	return users, nil
}

func normalizedAddressPtr(addr null.String) *string {
	if !addr.Valid || addr.String == "" {
		return nil
	}
	lower := strings.ToLower(addr.String)
	return &lower
}

func userToEntity(m *models.User) *entities.User {
	var suffixes []string
	_ = json.Unmarshal([]byte(m.PreferredSuffixes), &suffixes)
	return &entities.User{
		ID:                 m.ID,
		Email:              null.StringFromPtr(m.Email),
		WalletAddress:      null.StringFromPtr(m.WalletAddress),
		PasswordHash:       m.PasswordHash,
		Role:               entities.UserRole(m.Role),
		IsPro:              m.IsPro,
		ProExpiresAt:       m.ProExpiresAt,
		EmailVerified:      m.EmailVerified,
		ICANNVerified:      m.ICANNVerified,
		KYCVerified:        m.KYCVerified,
		BudgetMin:          null.Float64FromPtr(m.BudgetMin),
		BudgetMax:          null.Float64FromPtr(m.BudgetMax),
		PreferredSuffixes:  suffixes,
		CommunicationStyle: null.StringFromPtr(m.CommunicationStyle),
		LastActiveAt:       m.LastActiveAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
