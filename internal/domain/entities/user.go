package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// UserRole represents which side of the marketplace a user acts on
type UserRole string

const (
	UserRoleLessor UserRole = "LESSOR"
	UserRoleLessee UserRole = "LESSEE"
	UserRoleBoth   UserRole = "BOTH"
	UserRoleAdmin  UserRole = "ADMIN"
)

// User represents a user entity
type User struct {
	ID                 uuid.UUID    `json:"id"`
	Email              null.String  `json:"email,omitempty"`
	WalletAddress      null.String  `json:"walletAddress,omitempty"`
	PasswordHash       string       `json:"-"`
	Role               UserRole     `json:"role"`
	IsPro              bool         `json:"isPro"`
	ProExpiresAt       *time.Time   `json:"proExpiresAt,omitempty"`
	EmailVerified      bool         `json:"emailVerified"`
	ICANNVerified      bool         `json:"icannVerified"`
	KYCVerified        bool         `json:"kycVerified"`
	BudgetMin          null.Float64 `json:"budgetMin,omitempty"`
	BudgetMax          null.Float64 `json:"budgetMax,omitempty"`
	PreferredSuffixes  []string     `json:"preferredSuffixes,omitempty"`
	CommunicationStyle null.String  `json:"communicationStyle,omitempty"`
	LastActiveAt       *time.Time   `json:"lastActiveAt,omitempty"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
	DeletedAt          *time.Time   `json:"-"`
}

// ProActive reports whether a pro subscription is currently in effect.
func (u *User) ProActive(now time.Time) bool {
	if !u.IsPro {
		return false
	}
	if u.ProExpiresAt == nil {
		return true
	}
	return u.ProExpiresAt.After(now)
}

// CreateUserInput represents input for registering a user
type CreateUserInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=LESSOR LESSEE BOTH"`
}

// LoginInput represents input for email/password login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// WalletLoginInput represents input for wallet-signature login.
// Message is the exact text that was personal-signed by the wallet.
type WalletLoginInput struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
	Message       string `json:"message" binding:"required"`
	Signature     string `json:"signature" binding:"required"`
}

// UpdateProfileInput represents input for profile updates
type UpdateProfileInput struct {
	Role               string   `json:"role" binding:"omitempty,oneof=LESSOR LESSEE BOTH"`
	BudgetMin          *float64 `json:"budgetMin"`
	BudgetMax          *float64 `json:"budgetMax"`
	PreferredSuffixes  []string `json:"preferredSuffixes"`
	CommunicationStyle string   `json:"communicationStyle"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	SessionID    string `json:"sessionId,omitempty"`
	User         *User  `json:"user"`
}

// ChangePasswordInput represents input for changing user password.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required,min=8"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}
