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

func TestDomainRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	createDomainTable(t, db)
	repo := NewDomainRepository(db)
	ctx := context.Background()

	domain := &entities.Domain{
		Name:               "ShopFront.IO",
		Suffix:             "io",
		Type:               entities.DomainTypeWeb2,
		OwnerID:            uuid.New(),
		VerificationStatus: entities.DomainVerificationPending,
	}
	require.NoError(t, repo.Create(ctx, domain))

	// Names are normalized to lowercase on write and on lookup.
	got, err := repo.GetByName(ctx, "SHOPFRONT.io")
	require.NoError(t, err)
	assert.Equal(t, domain.ID, got.ID)
	assert.Equal(t, "shopfront.io", got.Name)

	_, err = repo.GetByName(ctx, "missing.io")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestDomainRepository_Create_DuplicateName(t *testing.T) {
	db := newTestDB(t)
	createDomainTable(t, db)
	repo := NewDomainRepository(db)
	ctx := context.Background()

	first := &entities.Domain{
		Name: "taken.com", Suffix: "com", Type: entities.DomainTypeWeb2,
		OwnerID: uuid.New(), VerificationStatus: entities.DomainVerificationPending,
	}
	require.NoError(t, repo.Create(ctx, first))

	dup := &entities.Domain{
		Name: "Taken.COM", Suffix: "com", Type: entities.DomainTypeWeb2,
		OwnerID: uuid.New(), VerificationStatus: entities.DomainVerificationPending,
	}
	err := repo.Create(ctx, dup)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestDomainRepository_GetByOwnerID(t *testing.T) {
	db := newTestDB(t)
	createDomainTable(t, db)
	repo := NewDomainRepository(db)
	ctx := context.Background()

	owner := uuid.New()
	for _, name := range []string{"one.io", "two.io"} {
		require.NoError(t, repo.Create(ctx, &entities.Domain{
			Name: name, Suffix: "io", Type: entities.DomainTypeWeb2,
			OwnerID: owner, VerificationStatus: entities.DomainVerificationPending,
		}))
	}
	require.NoError(t, repo.Create(ctx, &entities.Domain{
		Name: "other.io", Suffix: "io", Type: entities.DomainTypeWeb2,
		OwnerID: uuid.New(), VerificationStatus: entities.DomainVerificationPending,
	}))

	domains, err := repo.GetByOwnerID(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, domains, 2)
}

func TestDomainRepository_UpdateVerificationStatus(t *testing.T) {
	db := newTestDB(t)
	createDomainTable(t, db)
	repo := NewDomainRepository(db)
	ctx := context.Background()

	domain := &entities.Domain{
		Name: "verifyme.dev", Suffix: "dev", Type: entities.DomainTypeWeb2,
		OwnerID: uuid.New(), VerificationStatus: entities.DomainVerificationPending,
	}
	require.NoError(t, repo.Create(ctx, domain))

	require.NoError(t, repo.UpdateVerificationStatus(ctx, domain.ID, entities.DomainVerificationVerified))

	got, err := repo.GetByID(ctx, domain.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.DomainVerificationVerified, got.VerificationStatus)

	err = repo.UpdateVerificationStatus(ctx, uuid.New(), entities.DomainVerificationFailed)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
