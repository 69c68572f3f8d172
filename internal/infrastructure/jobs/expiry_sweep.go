package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"domainlease.backend/internal/domain/entities"
	domainerrors "domainlease.backend/internal/domain/errors"
	"domainlease.backend/internal/domain/repositories"
	"domainlease.backend/internal/metrics"
	"domainlease.backend/internal/usecases"
	"domainlease.backend/pkg/logger"
)

// ExpirySweep runs the periodic housekeeping pass:
//   - ACTIVE listings that outlived their advertised duration expire
//   - ACTIVE leases past their end date complete and release their listing
//   - flagged unbind retries get another attempt against the contract
//
// Every transition goes through the same conditional updates the API uses,
// so a sweep racing a user request resolves to one winner.
type ExpirySweep struct {
	listingRepo    repositories.ListingRepository
	leaseRepo      repositories.LeaseRepository
	listingUsecase *usecases.ListingUsecase
	binding        *usecases.TokenBindingService
	batchSize      int

	cron *cron.Cron
}

// NewExpirySweep creates a new expiry sweep
func NewExpirySweep(
	listingRepo repositories.ListingRepository,
	leaseRepo repositories.LeaseRepository,
	listingUsecase *usecases.ListingUsecase,
	binding *usecases.TokenBindingService,
	batchSize int,
) *ExpirySweep {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ExpirySweep{
		listingRepo:    listingRepo,
		leaseRepo:      leaseRepo,
		listingUsecase: listingUsecase,
		binding:        binding,
		batchSize:      batchSize,
	}
}

// Start schedules the sweep. The schedule string accepts cron specs and
// @every shorthands.
func (s *ExpirySweep) Start(schedule string) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.Run(ctx)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep to finish
func (s *ExpirySweep) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Run executes one sweep cycle
func (s *ExpirySweep) Run(ctx context.Context) {
	start := time.Now()
	defer func() {
		metrics.SweepCycleDuration.Observe(time.Since(start).Seconds())
	}()

	s.expireListings(ctx)
	s.completeEndedLeases(ctx)
	s.retryUnbinds(ctx)
}

func (s *ExpirySweep) expireListings(ctx context.Context) {
	listings, err := s.listingRepo.ListExpirable(ctx, s.batchSize)
	if err != nil {
		logger.WithContext(ctx).Error("expiry sweep: listing scan failed", zap.Error(err))
		return
	}

	now := time.Now()
	for _, listing := range listings {
		if now.Before(listing.CreatedAt.AddDate(0, 0, listing.DurationDays)) {
			continue
		}
		err := s.listingUsecase.Expire(ctx, listing.ID)
		if err != nil {
			// Losing to a concurrent lease is expected, anything else is not.
			if errors.Is(err, domainerrors.ErrInvalidState) {
				continue
			}
			logger.WithContext(ctx).Error("expiry sweep: listing expire failed",
				zap.String("listing_id", listing.ID.String()),
				zap.Error(err),
			)
			continue
		}
		metrics.SweepProcessedTotal.WithLabelValues("listing_expired").Inc()
	}
}

func (s *ExpirySweep) completeEndedLeases(ctx context.Context) {
	leases, err := s.leaseRepo.ListActiveEndedBefore(ctx, time.Now(), s.batchSize)
	if err != nil {
		logger.WithContext(ctx).Error("expiry sweep: lease scan failed", zap.Error(err))
		return
	}

	for _, lease := range leases {
		if lease.AutoRenew {
			continue
		}
		if err := s.completeLease(ctx, lease); err != nil {
			if errors.Is(err, domainerrors.ErrInvalidState) {
				continue
			}
			logger.WithContext(ctx).Error("expiry sweep: lease completion failed",
				zap.String("lease_id", lease.ID.String()),
				zap.Error(err),
			)
			continue
		}
		metrics.SweepProcessedTotal.WithLabelValues("lease_completed").Inc()
	}
}

func (s *ExpirySweep) completeLease(ctx context.Context, lease *entities.Lease) error {
	if err := s.leaseRepo.UpdateStatus(ctx, lease.ID, entities.LeaseStatusActive, entities.LeaseStatusCompleted, ""); err != nil {
		return err
	}
	if err := s.listingUsecase.Release(ctx, lease.ListingID); err != nil {
		return err
	}
	metrics.LeasesClosedTotal.WithLabelValues(string(entities.LeaseStatusCompleted)).Inc()

	listing, err := s.listingRepo.GetByID(ctx, lease.ListingID)
	if err != nil {
		return err
	}
	s.binding.UnbindBestEffort(ctx, listing)
	return nil
}

func (s *ExpirySweep) retryUnbinds(ctx context.Context) {
	done, err := s.binding.RetryPendingUnbinds(ctx, s.batchSize)
	if err != nil {
		logger.WithContext(ctx).Error("expiry sweep: unbind retry scan failed", zap.Error(err))
		return
	}
	if done > 0 {
		metrics.SweepProcessedTotal.WithLabelValues("unbind_retried").Add(float64(done))
	}
}
