package entities

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents ledger entry type
type TransactionType string

const (
	TransactionTypeLeasePayment TransactionType = "LEASE_PAYMENT"
	TransactionTypePlatformFee  TransactionType = "PLATFORM_FEE"
	TransactionTypeRefund       TransactionType = "REFUND"
	TransactionTypeWithdrawal   TransactionType = "WITHDRAWAL"
)

// TransactionStatus represents ledger entry status
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusRefunded  TransactionStatus = "REFUNDED"
)

// Transaction is an append-only ledger entry. Rows are never mutated after
// reaching a terminal status; a refund creates a new REFUND row instead.
type Transaction struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"userId"`
	LeaseID   *uuid.UUID        `json:"leaseId,omitempty"`
	Type      TransactionType   `json:"type"`
	Amount    float64           `json:"amount"`
	Currency  string            `json:"currency"`
	Status    TransactionStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}
