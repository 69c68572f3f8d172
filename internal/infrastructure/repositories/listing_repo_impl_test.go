package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domainlease.backend/internal/domain/entities"
	domainerrors "domainlease.backend/internal/domain/errors"
)

func seedListing(t *testing.T, repo *ListingRepository, status entities.ListingStatus) *entities.Listing {
	t.Helper()
	listing := &entities.Listing{
		DomainID:      uuid.New(),
		LessorID:      uuid.New(),
		PriceAmount:   120,
		PriceCurrency: "USD",
		DurationDays:  30,
		LeaseType:     entities.LeaseTypeFixed,
		Status:        status,
		Tags:          []string{"dev", "startup"},
	}
	require.NoError(t, repo.Create(context.Background(), listing))
	return listing
}

func TestListingRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	createListingTable(t, db)
	repo := NewListingRepository(db)

	listing := seedListing(t, repo, entities.ListingStatusActive)

	got, err := repo.GetByID(context.Background(), listing.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.DomainID, got.DomainID)
	assert.Equal(t, entities.ListingStatusActive, got.Status)
	assert.Equal(t, []string{"dev", "startup"}, got.Tags)
	assert.False(t, got.HasBinding())

	_, err = repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestListingRepository_UpdateStatus_FirstWriterWins(t *testing.T) {
	db := newTestDB(t)
	createListingTable(t, db)
	repo := NewListingRepository(db)
	ctx := context.Background()

	listing := seedListing(t, repo, entities.ListingStatusActive)

	require.NoError(t, repo.UpdateStatus(ctx, listing.ID, entities.ListingStatusActive, entities.ListingStatusLeased))

	// The same transition again loses: row exists but is no longer ACTIVE.
	err := repo.UpdateStatus(ctx, listing.ID, entities.ListingStatusActive, entities.ListingStatusLeased)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidState)

	// Unknown listing reports not-found, not invalid-state.
	err = repo.UpdateStatus(ctx, uuid.New(), entities.ListingStatusActive, entities.ListingStatusLeased)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	got, err := repo.GetByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ListingStatusLeased, got.Status)
	assert.Equal(t, int64(1), got.Version)
}

func TestListingRepository_Update_VersionConflict(t *testing.T) {
	db := newTestDB(t)
	createListingTable(t, db)
	repo := NewListingRepository(db)
	ctx := context.Background()

	listing := seedListing(t, repo, entities.ListingStatusActive)

	listing.PriceAmount = 150
	require.NoError(t, repo.Update(ctx, listing))
	assert.Equal(t, int64(1), listing.Version)

	// A writer holding the old version loses.
	stale := *listing
	stale.Version = 0
	stale.PriceAmount = 99
	err := repo.Update(ctx, &stale)
	assert.ErrorIs(t, err, domainerrors.ErrConcurrentModification)

	got, err := repo.GetByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(150), got.PriceAmount)
}

func TestListingRepository_SetBinding_Conflict(t *testing.T) {
	db := newTestDB(t)
	createListingTable(t, db)
	repo := NewListingRepository(db)
	ctx := context.Background()

	listing := seedListing(t, repo, entities.ListingStatusLeased)

	require.NoError(t, repo.SetBinding(ctx, listing.ID, "0xabc", "42"))

	// A second bind on the same listing conflicts.
	err := repo.SetBinding(ctx, listing.ID, "0xdef", "43")
	assert.ErrorIs(t, err, domainerrors.ErrBindingConflict)

	got, err := repo.GetByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.True(t, got.HasBinding())
	assert.Equal(t, "0xabc", got.NFTContract.String)
	assert.Equal(t, "42", got.NFTTokenID.String)

	// Clearing reopens the slot.
	require.NoError(t, repo.ClearBinding(ctx, listing.ID))
	require.NoError(t, repo.SetBinding(ctx, listing.ID, "0xdef", "43"))
}

func TestListingRepository_UnbindPendingQueue(t *testing.T) {
	db := newTestDB(t)
	createListingTable(t, db)
	repo := NewListingRepository(db)
	ctx := context.Background()

	listing := seedListing(t, repo, entities.ListingStatusActive)
	require.NoError(t, repo.SetBinding(ctx, listing.ID, "0xabc", "7"))
	require.NoError(t, repo.MarkUnbindPending(ctx, listing.ID, true))

	pending, err := repo.ListUnbindPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, listing.ID, pending[0].ID)
	assert.True(t, pending[0].UnbindPending)

	// ClearBinding drops the retry flag with the token columns.
	require.NoError(t, repo.ClearBinding(ctx, listing.ID))
	pending, err = repo.ListUnbindPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestListingRepository_Search(t *testing.T) {
	db := newTestDB(t)
	createAllTables(t, db)
	listingRepo := NewListingRepository(db)
	domainRepo := NewDomainRepository(db)
	ctx := context.Background()

	owner := uuid.New()
	domains := []*entities.Domain{
		{Name: "coffeeshop.io", Suffix: "io", Type: entities.DomainTypeWeb2, OwnerID: owner},
		{Name: "carparts.com", Suffix: "com", Type: entities.DomainTypeWeb2, OwnerID: owner},
		{Name: "crypto.eth", Suffix: "eth", Type: entities.DomainTypeWeb3, OwnerID: owner},
	}
	prices := []float64{50, 500, 5000}
	for i, d := range domains {
		require.NoError(t, domainRepo.Create(ctx, d))
		listing := &entities.Listing{
			DomainID:      d.ID,
			LessorID:      owner,
			PriceAmount:   prices[i],
			PriceCurrency: "USD",
			DurationDays:  30,
			LeaseType:     entities.LeaseTypeFixed,
			Status:        entities.ListingStatusActive,
		}
		require.NoError(t, listingRepo.Create(ctx, listing))
	}

	// Price range
	minPrice, maxPrice := 100.0, 1000.0
	got, total, err := listingRepo.Search(ctx, &entities.ListingFilter{
		MinPrice: &minPrice, MaxPrice: &maxPrice, Page: 1, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, got, 1)
	assert.Equal(t, float64(500), got[0].PriceAmount)

	// Suffix filter goes through the domains table
	got, total, err = listingRepo.Search(ctx, &entities.ListingFilter{Suffix: "eth", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// Name query
	got, total, err = listingRepo.Search(ctx, &entities.ListingFilter{Query: "car", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// Sort whitelist rejects unknown columns
	_, _, err = listingRepo.Search(ctx, &entities.ListingFilter{SortBy: "password_hash", Page: 1, Limit: 10})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	// Sorted by price descending
	got, _, err = listingRepo.Search(ctx, &entities.ListingFilter{SortBy: "price", SortDesc: true, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, float64(5000), got[0].PriceAmount)
}

func TestListingRepository_SearchSkipsTerminalByDefault(t *testing.T) {
	db := newTestDB(t)
	createListingTable(t, db)
	repo := NewListingRepository(db)
	ctx := context.Background()

	live := seedListing(t, repo, entities.ListingStatusActive)
	cancelled := seedListing(t, repo, entities.ListingStatusCancelled)

	got, total, err := repo.Search(ctx, &entities.ListingFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, got, 1)
	assert.Equal(t, live.ID, got[0].ID)

	// Terminal rows stay reachable through an explicit status filter.
	got, total, err = repo.Search(ctx, &entities.ListingFilter{
		Status: string(entities.ListingStatusCancelled), Page: 1, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, got, 1)
	assert.Equal(t, cancelled.ID, got[0].ID)
}

func TestListingRepository_IncrementViewCount(t *testing.T) {
	db := newTestDB(t)
	createListingTable(t, db)
	repo := NewListingRepository(db)
	ctx := context.Background()

	listing := seedListing(t, repo, entities.ListingStatusActive)
	require.NoError(t, repo.IncrementViewCount(ctx, listing.ID))
	require.NoError(t, repo.IncrementViewCount(ctx, listing.ID))

	got, err := repo.GetByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ViewCount)
}
