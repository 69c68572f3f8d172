package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"domainlease.backend/internal/domain/entities"
	domainerrors "domainlease.backend/internal/domain/errors"
	"domainlease.backend/internal/infrastructure/blockchain"
	"domainlease.backend/internal/usecases"
)

func bindRequest() *usecases.BindRequest {
	now := time.Now()
	return &usecases.BindRequest{
		DomainName:    "coffeeshop.io",
		LessorWallet:  "0x2222",
		LesseeWallet:  "0x1111",
		Start:         now,
		End:           now.AddDate(0, 0, 30),
		PriceAmount:   200,
		PriceCurrency: "USD",
	}
}

func TestBind_RecordsToken(t *testing.T) {
	listingRepo := new(MockListingRepository)
	binder := new(MockTokenBinder)
	svc := usecases.NewTokenBindingService(listingRepo, binder)
	listing := &entities.Listing{ID: uuid.New()}
	token := &blockchain.IssuedToken{ContractAddress: "0xc0ffee", TokenID: bigInt(7), TxHash: "0xbeef"}

	binder.On("IssueLeaseToken", mock.Anything, "coffeeshop.io", "0x2222", "0x1111",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(token, nil)
	listingRepo.On("SetBinding", mock.Anything, listing.ID, "0xc0ffee", "7").Return(nil)

	got, err := svc.Bind(context.Background(), listing, bindRequest())
	require.NoError(t, err)
	assert.Equal(t, token, got)
	assert.Equal(t, "0xc0ffee", listing.NFTContract.String)
	assert.Equal(t, "7", listing.NFTTokenID.String)
}

func TestBind_AlreadyBound(t *testing.T) {
	listingRepo := new(MockListingRepository)
	binder := new(MockTokenBinder)
	svc := usecases.NewTokenBindingService(listingRepo, binder)
	listing := &entities.Listing{
		ID:          uuid.New(),
		NFTContract: null.StringFrom("0xc0ffee"),
		NFTTokenID:  null.StringFrom("7"),
	}

	_, err := svc.Bind(context.Background(), listing, bindRequest())
	assert.ErrorIs(t, err, domainerrors.ErrBindingConflict)
	binder.AssertNotCalled(t, "IssueLeaseToken",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBind_ConflictAfterMint(t *testing.T) {
	listingRepo := new(MockListingRepository)
	binder := new(MockTokenBinder)
	svc := usecases.NewTokenBindingService(listingRepo, binder)
	listing := &entities.Listing{ID: uuid.New()}
	token := &blockchain.IssuedToken{ContractAddress: "0xc0ffee", TokenID: bigInt(7), TxHash: "0xbeef"}

	binder.On("IssueLeaseToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(token, nil)
	// A concurrent bind won the conditional update.
	listingRepo.On("SetBinding", mock.Anything, listing.ID, "0xc0ffee", "7").
		Return(domainerrors.ErrBindingConflict)

	_, err := svc.Bind(context.Background(), listing, bindRequest())
	assert.ErrorIs(t, err, domainerrors.ErrBindingConflict)
	assert.False(t, listing.HasBinding())
}

func TestUnbind_NoBindingIsNoop(t *testing.T) {
	listingRepo := new(MockListingRepository)
	binder := new(MockTokenBinder)
	svc := usecases.NewTokenBindingService(listingRepo, binder)

	err := svc.Unbind(context.Background(), &entities.Listing{ID: uuid.New()})
	require.NoError(t, err)
	binder.AssertNotCalled(t, "TerminateLeaseToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnbind_MalformedTokenID(t *testing.T) {
	listingRepo := new(MockListingRepository)
	binder := new(MockTokenBinder)
	svc := usecases.NewTokenBindingService(listingRepo, binder)
	listing := &entities.Listing{
		ID:          uuid.New(),
		NFTContract: null.StringFrom("0xc0ffee"),
		NFTTokenID:  null.StringFrom("not-a-number"),
	}

	err := svc.Unbind(context.Background(), listing)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	binder.AssertNotCalled(t, "TerminateLeaseToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnbindBestEffort_FlagsRetryOnFailure(t *testing.T) {
	listingRepo := new(MockListingRepository)
	binder := new(MockTokenBinder)
	svc := usecases.NewTokenBindingService(listingRepo, binder)
	listing := &entities.Listing{
		ID:          uuid.New(),
		NFTContract: null.StringFrom("0xc0ffee"),
		NFTTokenID:  null.StringFrom("7"),
	}

	binder.On("TerminateLeaseToken", mock.Anything, "0xc0ffee", bigInt(7)).
		Return(errors.Join(domainerrors.ErrTransient, errors.New("rpc timeout")))
	listingRepo.On("MarkUnbindPending", mock.Anything, listing.ID, true).Return(nil)

	svc.UnbindBestEffort(context.Background(), listing)

	listingRepo.AssertCalled(t, "MarkUnbindPending", mock.Anything, listing.ID, true)
	assert.True(t, listing.HasBinding())
}

func TestRetryPendingUnbinds(t *testing.T) {
	listingRepo := new(MockListingRepository)
	binder := new(MockTokenBinder)
	svc := usecases.NewTokenBindingService(listingRepo, binder)

	good := &entities.Listing{
		ID:            uuid.New(),
		NFTContract:   null.StringFrom("0xc0ffee"),
		NFTTokenID:    null.StringFrom("7"),
		UnbindPending: true,
	}
	bad := &entities.Listing{
		ID:            uuid.New(),
		NFTContract:   null.StringFrom("0xc0ffee"),
		NFTTokenID:    null.StringFrom("8"),
		UnbindPending: true,
	}

	listingRepo.On("ListUnbindPending", mock.Anything, 10).
		Return([]*entities.Listing{good, bad}, nil)
	binder.On("TerminateLeaseToken", mock.Anything, "0xc0ffee", bigInt(7)).Return(nil)
	binder.On("TerminateLeaseToken", mock.Anything, "0xc0ffee", bigInt(8)).
		Return(errors.New("still down"))
	listingRepo.On("ClearBinding", mock.Anything, good.ID).Return(nil)

	done, err := svc.RetryPendingUnbinds(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, done)
	assert.False(t, good.HasBinding())
	assert.True(t, bad.HasBinding())
}
