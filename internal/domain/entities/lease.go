package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// LeaseStatus represents lease lifecycle state
type LeaseStatus string

const (
	LeaseStatusActive     LeaseStatus = "ACTIVE"
	LeaseStatusCompleted  LeaseStatus = "COMPLETED"
	LeaseStatusTerminated LeaseStatus = "TERMINATED"
	LeaseStatusDisputed   LeaseStatus = "DISPUTED"
)

// Terminal reports whether no further transitions are allowed.
// DISPUTED freezes the lease pending external resolution, so it is
// terminal from the state machine's point of view.
func (s LeaseStatus) Terminal() bool {
	return s != LeaseStatusActive
}

// Lease represents an accepted agreement between lessor and lessee
type Lease struct {
	ID                uuid.UUID   `json:"id"`
	ListingID         uuid.UUID   `json:"listingId"`
	LesseeID          uuid.UUID   `json:"lesseeId"`
	StartDate         time.Time   `json:"startDate"`
	EndDate           time.Time   `json:"endDate"`
	PaymentAmount     float64     `json:"paymentAmount"`
	PaymentCurrency   string      `json:"paymentCurrency"`
	Status            LeaseStatus `json:"status"`
	NFTTransferredAt  *time.Time  `json:"nftTransferredAt,omitempty"`
	EscrowTxRef       null.String `json:"escrowTxRef,omitempty"`
	AutoRenew         bool        `json:"autoRenew"`
	TerminationReason null.String `json:"terminationReason,omitempty"`
	Version           int64       `json:"-"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
	DeletedAt         *time.Time  `json:"-"`

	Listing *Listing `json:"listing,omitempty"`
	Lessee  *User    `json:"lessee,omitempty"`
}

// CreateLeaseInput represents input for committing to a listing
type CreateLeaseInput struct {
	ListingID   string `json:"listingId" binding:"required,uuid"`
	AutoRenew   bool   `json:"autoRenew"`
	WithNFT     bool   `json:"withNft"`
	EscrowTxRef string `json:"escrowTxRef"`
	// Restrictions and AgreementHash are forwarded verbatim to the
	// lease token contract when WithNFT is set.
	Restrictions  string `json:"restrictions"`
	AgreementHash string `json:"agreementHash"`
}

// CompleteLeaseInput represents input for completing a lease
type CompleteLeaseInput struct {
	AgreedByBothParties bool `json:"agreedByBothParties"`
}

// TerminateLeaseInput represents input for terminating a lease
type TerminateLeaseInput struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}
