package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Email              *string    `gorm:"type:varchar(255);uniqueIndex"`
	WalletAddress      *string    `gorm:"type:varchar(64);uniqueIndex"`
	PasswordHash       string     `gorm:"type:varchar(255)"`
	Role               string     `gorm:"type:varchar(20);not null;default:'LESSEE'"`
	IsPro              bool       `gorm:"not null;default:false"`
	ProExpiresAt       *time.Time `gorm:"type:timestamp"`
	EmailVerified      bool       `gorm:"not null;default:false"`
	ICANNVerified      bool       `gorm:"column:icann_verified;not null;default:false"`
	KYCVerified        bool       `gorm:"column:kyc_verified;not null;default:false"`
	BudgetMin          *float64   `gorm:"type:decimal(18,2)"`
	BudgetMax          *float64   `gorm:"type:decimal(18,2)"`
	PreferredSuffixes  string     `gorm:"type:text;default:'[]'"`
	CommunicationStyle *string    `gorm:"type:varchar(50)"`
	LastActiveAt       *time.Time `gorm:"type:timestamp"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}
