package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"domainlease.backend/internal/domain/entities"
	domainerrors "domainlease.backend/internal/domain/errors"
)

func TestUnitOfWork_CommitsOnSuccess(t *testing.T) {
	db := newTestDB(t)
	createAllTables(t, db)
	uow := NewUnitOfWork(db)
	userRepo := NewUserRepository(db)
	domainRepo := NewDomainRepository(db)
	ctx := context.Background()

	err := uow.Do(ctx, func(ctx context.Context) error {
		user := &entities.User{Email: null.StringFrom("uow@example.com"), Role: entities.UserRoleBoth}
		if err := userRepo.Create(ctx, user); err != nil {
			return err
		}
		return domainRepo.Create(ctx, &entities.Domain{
			Name: "committed.io", Suffix: "io", Type: entities.DomainTypeWeb2,
			OwnerID: user.ID, VerificationStatus: entities.DomainVerificationPending,
		})
	})
	require.NoError(t, err)

	_, err = domainRepo.GetByName(ctx, "committed.io")
	assert.NoError(t, err)
}

func TestUnitOfWork_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	createAllTables(t, db)
	uow := NewUnitOfWork(db)
	userRepo := NewUserRepository(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := uow.Do(ctx, func(ctx context.Context) error {
		user := &entities.User{Email: null.StringFrom("rollback@example.com"), Role: entities.UserRoleBoth}
		if err := userRepo.Create(ctx, user); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = userRepo.GetByEmail(ctx, "rollback@example.com")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUnitOfWork_NestedDoSharesTransaction(t *testing.T) {
	db := newTestDB(t)
	createAllTables(t, db)
	uow := NewUnitOfWork(db)
	userRepo := NewUserRepository(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := uow.Do(ctx, func(outer context.Context) error {
		inner := uow.Do(outer, func(ctx context.Context) error {
			return userRepo.Create(ctx, &entities.User{
				Email: null.StringFrom("nested@example.com"), Role: entities.UserRoleBoth,
			})
		})
		require.NoError(t, inner)
		// The outer failure must undo the inner write too.
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = userRepo.GetByEmail(ctx, "nested@example.com")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestListings_OneLivePerDomain(t *testing.T) {
	db := newTestDB(t)
	createAllTables(t, db)
	repo := NewListingRepository(db)
	ctx := context.Background()

	domainID := uuid.New()
	first := &entities.Listing{
		DomainID: domainID, LessorID: uuid.New(), PriceAmount: 10, PriceCurrency: "USD",
		DurationDays: 30, LeaseType: entities.LeaseTypeFixed, Status: entities.ListingStatusActive,
	}
	require.NoError(t, repo.Create(ctx, first))

	// The partial unique index rejects a second live listing for the domain.
	second := &entities.Listing{
		DomainID: domainID, LessorID: uuid.New(), PriceAmount: 20, PriceCurrency: "USD",
		DurationDays: 30, LeaseType: entities.LeaseTypeFixed, Status: entities.ListingStatusActive,
	}
	assert.Error(t, repo.Create(ctx, second))

	// Cancelling the first frees the slot; the terminal row stays readable.
	require.NoError(t, repo.UpdateStatus(ctx, first.ID, entities.ListingStatusActive, entities.ListingStatusCancelled))
	second.ID = uuid.Nil
	assert.NoError(t, repo.Create(ctx, second))

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ListingStatusCancelled, got.Status)

	// The live lookup sees the replacement, not the cancelled row.
	live, err := repo.GetByDomainID(ctx, domainID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, live.ID)
}
