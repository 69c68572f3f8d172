package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// ListingStatus represents listing lifecycle state
type ListingStatus string

const (
	ListingStatusActive    ListingStatus = "ACTIVE"
	ListingStatusLeased    ListingStatus = "LEASED"
	ListingStatusExpired   ListingStatus = "EXPIRED"
	ListingStatusCancelled ListingStatus = "CANCELLED"
)

// Terminal reports whether no further transitions are allowed.
func (s ListingStatus) Terminal() bool {
	return s == ListingStatusExpired || s == ListingStatusCancelled
}

// LeaseType represents the pricing model of a listing
type LeaseType string

const (
	LeaseTypeFixed     LeaseType = "FIXED"
	LeaseTypeAuction   LeaseType = "AUCTION"
	LeaseTypeRentToOwn LeaseType = "RENT_TO_OWN"
)

// Listing represents a lessor's offer terms for a domain
type Listing struct {
	ID            uuid.UUID     `json:"id"`
	DomainID      uuid.UUID     `json:"domainId"`
	LessorID      uuid.UUID     `json:"lessorId"`
	PriceAmount   float64       `json:"priceAmount"`
	PriceCurrency string        `json:"priceCurrency"`
	DurationDays  int           `json:"durationDays"`
	LeaseType     LeaseType     `json:"leaseType"`
	Status        ListingStatus `json:"status"`
	NFTContract   null.String   `json:"nftContract,omitempty"`
	NFTTokenID    null.String   `json:"nftTokenId,omitempty"`
	UnbindPending bool          `json:"-"`
	ViewCount     int64         `json:"viewCount"`
	Tags          []string      `json:"tags,omitempty"`
	Version       int64         `json:"-"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	DeletedAt     *time.Time    `json:"-"`

	Domain *Domain `json:"domain,omitempty"`
	Lessor *User   `json:"lessor,omitempty"`
}

// HasBinding reports whether a lease token is currently bound to the listing.
func (l *Listing) HasBinding() bool {
	return l.NFTContract.Valid && l.NFTContract.String != ""
}

// CreateListingInput represents input for publishing a listing
type CreateListingInput struct {
	DomainID      string   `json:"domainId" binding:"required,uuid"`
	PriceAmount   float64  `json:"priceAmount" binding:"required"`
	PriceCurrency string   `json:"priceCurrency" binding:"omitempty,oneof=USD EUR ETH USDC"`
	DurationDays  int      `json:"durationDays" binding:"required"`
	LeaseType     string   `json:"leaseType" binding:"omitempty,oneof=FIXED AUCTION RENT_TO_OWN"`
	Tags          []string `json:"tags" binding:"omitempty,max=10,dive,min=1,max=40"`
}

// ListingFilter holds search parameters for listings
type ListingFilter struct {
	Status    string   `form:"status"`
	LeaseType string   `form:"leaseType"`
	MinPrice  *float64 `form:"minPrice"`
	MaxPrice  *float64 `form:"maxPrice"`
	Suffix    string   `form:"suffix"`
	Tags      []string `form:"tags"`
	Query     string   `form:"q"`
	SortBy    string   `form:"sortBy"`
	SortDesc  bool     `form:"sortDesc"`
	Page      int      `form:"page"`
	Limit     int      `form:"limit"`
}
