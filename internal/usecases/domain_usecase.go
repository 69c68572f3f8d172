package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"domainlease.backend/internal/domain/entities"
	domainerrors "domainlease.backend/internal/domain/errors"
	"domainlease.backend/internal/domain/repositories"
)

// DomainUsecase handles domain portfolio business logic
type DomainUsecase struct {
	domainRepo  repositories.DomainRepository
	listingRepo repositories.ListingRepository
}

// NewDomainUsecase creates a new domain usecase
func NewDomainUsecase(domainRepo repositories.DomainRepository, listingRepo repositories.ListingRepository) *DomainUsecase {
	return &DomainUsecase{
		domainRepo:  domainRepo,
		listingRepo: listingRepo,
	}
}

// Register adds a domain to the caller's portfolio. The name is normalized
// to lowercase; verification starts PENDING and listings stay blocked until
// a collaborator marks the domain VERIFIED.
func (u *DomainUsecase) Register(ctx context.Context, ownerID uuid.UUID, input *entities.RegisterDomainInput) (*entities.Domain, error) {
	name := strings.ToLower(strings.TrimSpace(input.Name))

	suffix := domainSuffix(name)
	if suffix == "" {
		return nil, domainerrors.BadRequest("domain name has no suffix")
	}

	domain := &entities.Domain{
		Name:               name,
		Suffix:             suffix,
		Type:               entities.DomainType(input.Type),
		OwnerID:            ownerID,
		VerificationStatus: entities.DomainVerificationPending,
	}
	if input.ExistingSiteURL != "" {
		domain.ExistingSiteURL.SetValid(input.ExistingSiteURL)
	}
	if input.SEOMetrics != "" {
		domain.SEOMetrics.SetValid(input.SEOMetrics)
	}

	if err := u.domainRepo.Create(ctx, domain); err != nil {
		return nil, err
	}
	return domain, nil
}

// GetByID returns a domain. Portfolio details are visible to everyone;
// listings carry the public surface anyway.
func (u *DomainUsecase) GetByID(ctx context.Context, id uuid.UUID) (*entities.Domain, error) {
	return u.domainRepo.GetByID(ctx, id)
}

// ListMine returns the caller's domain portfolio
func (u *DomainUsecase) ListMine(ctx context.Context, ownerID uuid.UUID) ([]*entities.Domain, error) {
	return u.domainRepo.GetByOwnerID(ctx, ownerID)
}

// UpdateVerification records the verification collaborator's verdict.
// Admin-only at the transport layer. A domain with a live listing cannot be
// downgraded; the listing has to close first.
func (u *DomainUsecase) UpdateVerification(ctx context.Context, id uuid.UUID, input *entities.UpdateDomainVerificationInput) (*entities.Domain, error) {
	status := entities.DomainVerificationStatus(input.Status)

	if status != entities.DomainVerificationVerified {
		listing, err := u.listingRepo.GetByDomainID(ctx, id)
		if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
			return nil, err
		}
		if listing != nil {
			return nil, domainerrors.InvalidState("domain has a live listing")
		}
	}

	if err := u.domainRepo.UpdateVerificationStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return u.domainRepo.GetByID(ctx, id)
}

// domainSuffix returns the last label of the name, the grouping key used by
// search: "example.io" yields "io".
func domainSuffix(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return ""
	}
	return name[idx+1:]
}
