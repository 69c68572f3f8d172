package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Lease struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ListingID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	LesseeID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	StartDate         time.Time  `gorm:"not null"`
	EndDate           time.Time  `gorm:"not null"`
	PaymentAmount     float64    `gorm:"type:decimal(18,2);not null"`
	PaymentCurrency   string     `gorm:"type:varchar(10);not null;default:'USD'"`
	Status            string     `gorm:"type:varchar(20);not null;index"`
	NFTTransferredAt  *time.Time `gorm:"column:nft_transferred_at"`
	EscrowTxRef       *string    `gorm:"type:varchar(255)"`
	AutoRenew         bool       `gorm:"not null;default:false"`
	TerminationReason *string    `gorm:"type:varchar(500)"`
	Version           int64      `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`

	Listing Listing `gorm:"foreignKey:ListingID"`
	Lessee  User    `gorm:"foreignKey:LesseeID"`
}

type Transaction struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	LeaseID   *uuid.UUID `gorm:"type:uuid;index"`
	Type      string     `gorm:"type:varchar(20);not null;index"`
	Amount    float64    `gorm:"type:decimal(18,2);not null"`
	Currency  string     `gorm:"type:varchar(10);not null;default:'USD'"`
	Status    string     `gorm:"type:varchar(20);not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Lease *Lease `gorm:"foreignKey:LeaseID"`
}

type InteractionHistory struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	DomainID  *uuid.UUID `gorm:"type:uuid;index"`
	ListingID *uuid.UUID `gorm:"type:uuid;index"`
	Action    string     `gorm:"type:varchar(20);not null;index"`
	Metadata  string     `gorm:"type:jsonb;default:'{}'"`
	CreatedAt time.Time
}
