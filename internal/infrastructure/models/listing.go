package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Listing struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	DomainID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_listings_domain_live,where:status = 'ACTIVE' OR status = 'LEASED'"`
	LessorID      uuid.UUID `gorm:"type:uuid;not null;index"`
	PriceAmount   float64   `gorm:"type:decimal(18,2);not null"`
	PriceCurrency string    `gorm:"type:varchar(10);not null;default:'USD'"`
	DurationDays  int       `gorm:"not null"`
	LeaseType     string    `gorm:"type:varchar(20);not null;default:'FIXED'"`
	Status        string    `gorm:"type:varchar(20);not null;index"`
	NFTContract   *string   `gorm:"column:nft_contract;type:varchar(64)"`
	NFTTokenID    *string   `gorm:"column:nft_token_id;type:varchar(100)"`
	UnbindPending bool      `gorm:"not null;default:false;index"`
	ViewCount     int64     `gorm:"not null;default:0"`
	Tags          string    `gorm:"type:text;default:'[]'"`
	Version       int64     `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`

	Domain Domain `gorm:"foreignKey:DomainID"`
	Lessor User   `gorm:"foreignKey:LessorID"`
}
