package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// DomainType distinguishes traditional DNS names from on-chain names
type DomainType string

const (
	DomainTypeWeb2 DomainType = "WEB2"
	DomainTypeWeb3 DomainType = "WEB3"
)

// DomainVerificationStatus represents ownership verification progress
type DomainVerificationStatus string

const (
	DomainVerificationPending  DomainVerificationStatus = "PENDING"
	DomainVerificationVerified DomainVerificationStatus = "VERIFIED"
	DomainVerificationFailed   DomainVerificationStatus = "FAILED"
)

// Domain represents a domain name owned by a lessor
type Domain struct {
	ID                 uuid.UUID                `json:"id"`
	Name               string                   `json:"name"`
	Suffix             string                   `json:"suffix"`
	Type               DomainType               `json:"type"`
	OwnerID            uuid.UUID                `json:"ownerId"`
	VerificationStatus DomainVerificationStatus `json:"verificationStatus"`
	ExistingSiteURL    null.String              `json:"existingSiteUrl,omitempty"`
	SEOMetrics         null.String              `json:"seoMetrics,omitempty"`
	CreatedAt          time.Time                `json:"createdAt"`
	UpdatedAt          time.Time                `json:"updatedAt"`
	DeletedAt          *time.Time               `json:"-"`

	Owner *User `json:"owner,omitempty"`
}

// RegisterDomainInput represents input for registering a domain
type RegisterDomainInput struct {
	Name            string `json:"name" binding:"required,fqdn"`
	Type            string `json:"type" binding:"required,oneof=WEB2 WEB3"`
	ExistingSiteURL string `json:"existingSiteUrl" binding:"omitempty,url"`
	SEOMetrics      string `json:"seoMetrics"`
}

// UpdateDomainVerificationInput is applied by the verification collaborator only.
type UpdateDomainVerificationInput struct {
	Status string `json:"status" binding:"required,oneof=PENDING VERIFIED FAILED"`
}
