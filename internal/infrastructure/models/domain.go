package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Domain struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name               string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Suffix             string    `gorm:"type:varchar(64);not null;index"`
	Type               string    `gorm:"type:varchar(10);not null"`
	OwnerID            uuid.UUID `gorm:"type:uuid;not null;index"`
	VerificationStatus string    `gorm:"type:varchar(20);not null;default:'PENDING'"`
	ExistingSiteURL    *string   `gorm:"type:varchar(500)"`
	SEOMetrics         *string   `gorm:"column:seo_metrics;type:jsonb"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`

	Owner User `gorm:"foreignKey:OwnerID"`
}
