package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"domainlease.backend/internal/domain/entities"
	domainerrors "domainlease.backend/internal/domain/errors"
	"domainlease.backend/internal/domain/repositories"
	"domainlease.backend/internal/infrastructure/email"
	"domainlease.backend/internal/metrics"
	"domainlease.backend/pkg/logger"
	"domainlease.backend/pkg/utils"
)

// PlatformFeeRate is the marketplace cut recorded as a separate ledger row.
const PlatformFeeRate = 0.05

// LeaseUsecase handles lease lifecycle business logic
type LeaseUsecase struct {
	leaseRepo       repositories.LeaseRepository
	listingRepo     repositories.ListingRepository
	domainRepo      repositories.DomainRepository
	userRepo        repositories.UserRepository
	txRepo          repositories.TransactionRepository
	interactionRepo repositories.InteractionRepository
	uow             repositories.UnitOfWork
	binding         *TokenBindingService
	mailer          email.Sender
}

// NewLeaseUsecase creates a new lease usecase
func NewLeaseUsecase(
	leaseRepo repositories.LeaseRepository,
	listingRepo repositories.ListingRepository,
	domainRepo repositories.DomainRepository,
	userRepo repositories.UserRepository,
	txRepo repositories.TransactionRepository,
	interactionRepo repositories.InteractionRepository,
	uow repositories.UnitOfWork,
	binding *TokenBindingService,
	mailer email.Sender,
) *LeaseUsecase {
	return &LeaseUsecase{
		leaseRepo:       leaseRepo,
		listingRepo:     listingRepo,
		domainRepo:      domainRepo,
		userRepo:        userRepo,
		txRepo:          txRepo,
		interactionRepo: interactionRepo,
		uow:             uow,
		binding:         binding,
		mailer:          mailer,
	}
}

// CreateLease commits a lessee to an ACTIVE listing. The lease insert, listing
// transition, ledger rows and token binding all run in one unit of work: if
// any step fails the listing stays ACTIVE and no lease exists. Two concurrent
// commits race on the conditional ACTIVE→LEASED update and exactly one wins;
// the loser gets ErrInvalidState.
func (u *LeaseUsecase) CreateLease(ctx context.Context, lesseeID uuid.UUID, input *entities.CreateLeaseInput) (*entities.Lease, error) {
	listingID, err := uuid.Parse(input.ListingID)
	if err != nil {
		return nil, domainerrors.BadRequest("invalid listing id")
	}

	listing, err := u.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != entities.ListingStatusActive {
		return nil, domainerrors.InvalidState("listing is not open for lease")
	}
	if listing.LessorID == lesseeID {
		return nil, domainerrors.Forbidden("cannot lease your own listing")
	}

	lessee, err := u.userRepo.GetByID(ctx, lesseeID)
	if err != nil {
		return nil, err
	}
	lessor, err := u.userRepo.GetByID(ctx, listing.LessorID)
	if err != nil {
		return nil, err
	}
	domain, err := u.domainRepo.GetByID(ctx, listing.DomainID)
	if err != nil {
		return nil, err
	}

	if input.WithNFT {
		if !lessee.WalletAddress.Valid || !lessor.WalletAddress.Valid {
			return nil, domainerrors.BadRequest("token issuance requires wallet addresses on both parties")
		}
	}

	now := time.Now()
	lease := &entities.Lease{
		ListingID:       listingID,
		LesseeID:        lesseeID,
		StartDate:       now,
		EndDate:         now.AddDate(0, 0, listing.DurationDays),
		PaymentAmount:   listing.PriceAmount,
		PaymentCurrency: listing.PriceCurrency,
		Status:          entities.LeaseStatusActive,
		AutoRenew:       input.AutoRenew,
	}
	if input.EscrowTxRef != "" {
		lease.EscrowTxRef.SetValid(input.EscrowTxRef)
	}

	err = u.uow.Do(ctx, func(ctx context.Context) error {
		if err := u.listingRepo.UpdateStatus(ctx, listingID, entities.ListingStatusActive, entities.ListingStatusLeased); err != nil {
			return err
		}
		if err := u.leaseRepo.Create(ctx, lease); err != nil {
			return err
		}

		payment := &entities.Transaction{
			UserID:   lesseeID,
			LeaseID:  &lease.ID,
			Type:     entities.TransactionTypeLeasePayment,
			Amount:   lease.PaymentAmount,
			Currency: lease.PaymentCurrency,
			Status:   entities.TransactionStatusPending,
		}
		if err := u.txRepo.Create(ctx, payment); err != nil {
			return err
		}
		fee := &entities.Transaction{
			UserID:   listing.LessorID,
			LeaseID:  &lease.ID,
			Type:     entities.TransactionTypePlatformFee,
			Amount:   lease.PaymentAmount * PlatformFeeRate,
			Currency: lease.PaymentCurrency,
			Status:   entities.TransactionStatusPending,
		}
		if err := u.txRepo.Create(ctx, fee); err != nil {
			return err
		}

		if input.WithNFT {
			token, err := u.binding.Bind(ctx, listing, &BindRequest{
				DomainName:    domain.Name,
				LessorWallet:  lessor.WalletAddress.String,
				LesseeWallet:  lessee.WalletAddress.String,
				Start:         lease.StartDate,
				End:           lease.EndDate,
				PriceAmount:   lease.PaymentAmount,
				PriceCurrency: lease.PaymentCurrency,
				Restrictions:  input.Restrictions,
				AgreementHash: input.AgreementHash,
			})
			if err != nil {
				return err
			}
			if err := u.leaseRepo.SetNFTTransferredAt(ctx, lease.ID, time.Now()); err != nil {
				return err
			}
			logger.WithContext(ctx).Info("lease token bound",
				zap.String("lease_id", lease.ID.String()),
				zap.String("token_id", token.TokenID.String()),
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.LeasesCreatedTotal.WithLabelValues(string(listing.LeaseType)).Inc()
	u.recordLeaseStart(ctx, lesseeID, listing, lease)
	u.notify(ctx, lessor.Email.String, "Your domain has been leased",
		fmt.Sprintf("<p>%s is now leased until %s.</p>", domain.Name, lease.EndDate.Format("2006-01-02")))

	listing.Status = entities.ListingStatusLeased
	lease.Listing = listing
	return lease, nil
}

// Complete closes a lease by mutual agreement or after its end date. The
// listing goes back to ACTIVE and the payment row is finalized.
func (u *LeaseUsecase) Complete(ctx context.Context, callerID, leaseID uuid.UUID, input *entities.CompleteLeaseInput) (*entities.Lease, error) {
	lease, listing, err := u.loadForTransition(ctx, callerID, leaseID, false)
	if err != nil {
		return nil, err
	}
	if !input.AgreedByBothParties && time.Now().Before(lease.EndDate) {
		return nil, domainerrors.BadRequest("lease can only complete early by mutual agreement")
	}

	err = u.uow.Do(ctx, func(ctx context.Context) error {
		if err := u.leaseRepo.UpdateStatus(ctx, leaseID, entities.LeaseStatusActive, entities.LeaseStatusCompleted, ""); err != nil {
			return err
		}
		if err := u.listingRepo.UpdateStatus(ctx, listing.ID, entities.ListingStatusLeased, entities.ListingStatusActive); err != nil {
			return err
		}
		return u.finalizePayments(ctx, leaseID)
	})
	if err != nil {
		return nil, err
	}

	metrics.LeasesClosedTotal.WithLabelValues(string(entities.LeaseStatusCompleted)).Inc()
	u.binding.UnbindBestEffort(ctx, listing)

	lease.Status = entities.LeaseStatusCompleted
	return lease, nil
}

// Terminate ends a lease early for cause. Either party or an administrator
// may invoke it. The listing is released, a pending refund row is appended,
// and the bound token gets a best-effort unbind.
func (u *LeaseUsecase) Terminate(ctx context.Context, callerID, leaseID uuid.UUID, input *entities.TerminateLeaseInput) (*entities.Lease, error) {
	lease, listing, err := u.loadForTransition(ctx, callerID, leaseID, true)
	if err != nil {
		return nil, err
	}

	err = u.uow.Do(ctx, func(ctx context.Context) error {
		if err := u.leaseRepo.UpdateStatus(ctx, leaseID, entities.LeaseStatusActive, entities.LeaseStatusTerminated, input.Reason); err != nil {
			return err
		}
		if err := u.listingRepo.UpdateStatus(ctx, listing.ID, entities.ListingStatusLeased, entities.ListingStatusActive); err != nil {
			return err
		}
		refund := &entities.Transaction{
			UserID:   lease.LesseeID,
			LeaseID:  &lease.ID,
			Type:     entities.TransactionTypeRefund,
			Amount:   lease.PaymentAmount,
			Currency: lease.PaymentCurrency,
			Status:   entities.TransactionStatusPending,
		}
		return u.txRepo.Create(ctx, refund)
	})
	if err != nil {
		return nil, err
	}

	metrics.LeasesClosedTotal.WithLabelValues(string(entities.LeaseStatusTerminated)).Inc()
	u.binding.UnbindBestEffort(ctx, listing)

	lease.Status = entities.LeaseStatusTerminated
	lease.TerminationReason.SetValid(input.Reason)
	return lease, nil
}

// Dispute freezes an ACTIVE lease pending external resolution. The listing
// stays LEASED and the bound token stays put until the dispute resolves.
func (u *LeaseUsecase) Dispute(ctx context.Context, callerID, leaseID uuid.UUID) (*entities.Lease, error) {
	lease, _, err := u.loadForTransition(ctx, callerID, leaseID, false)
	if err != nil {
		return nil, err
	}

	if err := u.leaseRepo.UpdateStatus(ctx, leaseID, entities.LeaseStatusActive, entities.LeaseStatusDisputed, ""); err != nil {
		return nil, err
	}

	metrics.LeasesClosedTotal.WithLabelValues(string(entities.LeaseStatusDisputed)).Inc()
	lease.Status = entities.LeaseStatusDisputed
	return lease, nil
}

// GetByID returns a lease visible to its lessee or the listing's lessor.
func (u *LeaseUsecase) GetByID(ctx context.Context, callerID, leaseID uuid.UUID) (*entities.Lease, error) {
	lease, err := u.leaseRepo.GetByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	listing, err := u.listingRepo.GetByID(ctx, lease.ListingID)
	if err != nil {
		return nil, err
	}
	if lease.LesseeID != callerID && listing.LessorID != callerID {
		return nil, domainerrors.Forbidden("not a party to this lease")
	}
	lease.Listing = listing
	return lease, nil
}

// ListMine returns the caller's leases as lessee, newest first.
func (u *LeaseUsecase) ListMine(ctx context.Context, lesseeID uuid.UUID, page, limit int) ([]*entities.Lease, *utils.PaginationMeta, error) {
	params := utils.GetPaginationParams(page, limit)
	leases, total, err := u.leaseRepo.GetByLesseeID(ctx, lesseeID, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, nil, err
	}
	meta := utils.CalculateMeta(total, params.Page, params.Limit)
	return leases, &meta, nil
}

// loadForTransition loads the lease and its listing and checks the caller is
// a party. When adminOverride is set an ADMIN caller is admitted as well.
// Transitions themselves stay conditional on ACTIVE at the row level, so
// this read is advisory only.
func (u *LeaseUsecase) loadForTransition(ctx context.Context, callerID, leaseID uuid.UUID, adminOverride bool) (*entities.Lease, *entities.Listing, error) {
	lease, err := u.leaseRepo.GetByID(ctx, leaseID)
	if err != nil {
		return nil, nil, err
	}
	listing, err := u.listingRepo.GetByID(ctx, lease.ListingID)
	if err != nil {
		return nil, nil, err
	}
	if lease.LesseeID != callerID && listing.LessorID != callerID {
		if !adminOverride {
			return nil, nil, domainerrors.Forbidden("not a party to this lease")
		}
		caller, err := u.userRepo.GetByID(ctx, callerID)
		if err != nil {
			return nil, nil, err
		}
		if caller.Role != entities.UserRoleAdmin {
			return nil, nil, domainerrors.Forbidden("not a party to this lease")
		}
	}
	if lease.Status.Terminal() {
		return nil, nil, domainerrors.InvalidState("lease is already closed")
	}
	return lease, listing, nil
}

func (u *LeaseUsecase) finalizePayments(ctx context.Context, leaseID uuid.UUID) error {
	rows, err := u.txRepo.GetByLeaseID(ctx, leaseID)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if row.Status != entities.TransactionStatusPending {
			continue
		}
		if err := u.txRepo.MarkCompleted(ctx, row.ID); err != nil && !errors.Is(err, domainerrors.ErrInvalidState) {
			return err
		}
	}
	return nil
}

func (u *LeaseUsecase) recordLeaseStart(ctx context.Context, lesseeID uuid.UUID, listing *entities.Listing, lease *entities.Lease) {
	event := &entities.InteractionHistory{
		UserID:    lesseeID,
		DomainID:  &listing.DomainID,
		ListingID: &listing.ID,
		Action:    entities.InteractionActionLeaseStart,
		Metadata:  fmt.Sprintf(`{"leaseId":%q}`, lease.ID.String()),
	}
	if err := u.interactionRepo.Create(ctx, event); err != nil {
		logger.WithContext(ctx).Warn("interaction log write failed", zap.Error(err))
	}
}

func (u *LeaseUsecase) notify(ctx context.Context, to, subject, body string) {
	if to == "" {
		return
	}
	if err := u.mailer.Send(ctx, to, subject, body); err != nil {
		logger.WithContext(ctx).Warn("notification email failed",
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}
