package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"domainlease.backend/internal/domain/entities"
	domainerrors "domainlease.backend/internal/domain/errors"
	"domainlease.backend/internal/domain/repositories"
	"domainlease.backend/pkg/logger"
	"domainlease.backend/pkg/redis"
	"domainlease.backend/pkg/utils"
)

// ListingUsecase handles listing lifecycle business logic
type ListingUsecase struct {
	listingRepo     repositories.ListingRepository
	domainRepo      repositories.DomainRepository
	interactionRepo repositories.InteractionRepository
}

// NewListingUsecase creates a new listing usecase
func NewListingUsecase(
	listingRepo repositories.ListingRepository,
	domainRepo repositories.DomainRepository,
	interactionRepo repositories.InteractionRepository,
) *ListingUsecase {
	return &ListingUsecase{
		listingRepo:     listingRepo,
		domainRepo:      domainRepo,
		interactionRepo: interactionRepo,
	}
}

// Publish creates an ACTIVE listing for a verified domain owned by the caller.
// A domain carries at most one live listing; the partial unique index on
// domain_id rejects the race where two publishes slip past the read check.
func (u *ListingUsecase) Publish(ctx context.Context, lessorID uuid.UUID, input *entities.CreateListingInput) (*entities.Listing, error) {
	domainID, err := uuid.Parse(input.DomainID)
	if err != nil {
		return nil, domainerrors.BadRequest("invalid domain id")
	}

	domain, err := u.domainRepo.GetByID(ctx, domainID)
	if err != nil {
		return nil, err
	}
	if domain.OwnerID != lessorID {
		return nil, domainerrors.Forbidden("caller does not own the domain")
	}
	if domain.VerificationStatus != entities.DomainVerificationVerified {
		return nil, domainerrors.InvalidState("domain ownership is not verified")
	}

	if input.PriceAmount <= 0 {
		return nil, domainerrors.BadRequest("price must be positive")
	}
	if input.DurationDays <= 0 {
		return nil, domainerrors.BadRequest("duration must be positive")
	}

	existing, err := u.listingRepo.GetByDomainID(ctx, domainID)
	if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domainerrors.Conflict("domain already has a live listing")
	}

	listing := &entities.Listing{
		DomainID:      domainID,
		LessorID:      lessorID,
		PriceAmount:   input.PriceAmount,
		PriceCurrency: input.PriceCurrency,
		DurationDays:  input.DurationDays,
		LeaseType:     entities.LeaseType(input.LeaseType),
		Status:        entities.ListingStatusActive,
		Tags:          input.Tags,
	}
	if listing.PriceCurrency == "" {
		listing.PriceCurrency = "USD"
	}
	if listing.LeaseType == "" {
		listing.LeaseType = entities.LeaseTypeFixed
	}

	if err := u.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}
	listing.Domain = domain
	return listing, nil
}

// Cancel withdraws an ACTIVE listing. A LEASED listing cannot be cancelled;
// the lease has to end first. The cancelled row stays readable, it just no
// longer occupies the domain's marketplace slot.
func (u *ListingUsecase) Cancel(ctx context.Context, lessorID, listingID uuid.UUID) error {
	listing, err := u.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.LessorID != lessorID {
		return domainerrors.Forbidden("caller does not own the listing")
	}
	return u.listingRepo.UpdateStatus(ctx, listingID, entities.ListingStatusActive, entities.ListingStatusCancelled)
}

// GetByID returns a listing and records the view. View counting is
// best-effort; a read never fails because the counters did.
func (u *ListingUsecase) GetByID(ctx context.Context, listingID uuid.UUID, viewerID *uuid.UUID) (*entities.Listing, error) {
	listing, err := u.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if domain, derr := u.domainRepo.GetByID(ctx, listing.DomainID); derr == nil {
		listing.Domain = domain
	} else {
		logger.WithContext(ctx).Warn("listing domain lookup failed",
			zap.String("listingId", listingID.String()), zap.Error(derr))
	}

	if err := u.listingRepo.IncrementViewCount(ctx, listingID); err != nil {
		logger.WithContext(ctx).Warn("view count increment failed", zap.Error(err))
	} else {
		listing.ViewCount++
	}
	if _, err := redis.Incr(ctx, fmt.Sprintf("listing:views:%s", listingID)); err != nil {
		logger.WithContext(ctx).Debug("redis view counter unavailable", zap.Error(err))
	}

	if viewerID != nil {
		u.recordInteraction(ctx, *viewerID, &listing.DomainID, &listing.ID, entities.InteractionActionView, nil)
	}
	return listing, nil
}

// Search returns listings matching the filter plus pagination metadata.
// Authenticated searches land in the interaction log for recommendations.
func (u *ListingUsecase) Search(ctx context.Context, filter *entities.ListingFilter, userID *uuid.UUID) ([]*entities.Listing, *utils.PaginationMeta, error) {
	params := utils.GetPaginationParams(filter.Page, filter.Limit)
	filter.Page = params.Page
	filter.Limit = params.Limit

	listings, total, err := u.listingRepo.Search(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	if userID != nil {
		u.recordInteraction(ctx, *userID, nil, nil, entities.InteractionActionSearch, map[string]any{
			"q":      filter.Query,
			"suffix": filter.Suffix,
			"status": filter.Status,
		})
	}

	meta := utils.CalculateMeta(total, params.Page, params.Limit)
	return listings, &meta, nil
}

// Release moves a LEASED listing back to ACTIVE after its lease ended.
// Releasing a listing that is already ACTIVE is a no-op, so a retried
// completion cannot fail here.
func (u *ListingUsecase) Release(ctx context.Context, listingID uuid.UUID) error {
	err := u.listingRepo.UpdateStatus(ctx, listingID, entities.ListingStatusLeased, entities.ListingStatusActive)
	if !errors.Is(err, domainerrors.ErrInvalidState) {
		return err
	}
	listing, getErr := u.listingRepo.GetByID(ctx, listingID)
	if getErr != nil {
		return getErr
	}
	if listing.Status == entities.ListingStatusActive {
		return nil
	}
	return err
}

// Expire retires an ACTIVE listing that outlived its advertised duration.
// Used by the background sweep; losing the race to a concurrent lease is
// fine, the lease wins.
func (u *ListingUsecase) Expire(ctx context.Context, listingID uuid.UUID) error {
	return u.listingRepo.UpdateStatus(ctx, listingID, entities.ListingStatusActive, entities.ListingStatusExpired)
}

func (u *ListingUsecase) recordInteraction(ctx context.Context, userID uuid.UUID, domainID, listingID *uuid.UUID, action entities.InteractionAction, metadata map[string]any) {
	event := &entities.InteractionHistory{
		UserID:    userID,
		DomainID:  domainID,
		ListingID: listingID,
		Action:    action,
	}
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			event.Metadata = string(raw)
		}
	}
	if err := u.interactionRepo.Create(ctx, event); err != nil {
		logger.WithContext(ctx).Warn("interaction log write failed",
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
}
