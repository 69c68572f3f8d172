package usecases_test

import (
	"context"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"domainlease.backend/internal/domain/entities"
	domainerrors "domainlease.backend/internal/domain/errors"
	"domainlease.backend/internal/usecases"
	"domainlease.backend/pkg/crypto"
	"domainlease.backend/pkg/jwt"
	"domainlease.backend/pkg/redis"
)

const testSessionKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

type authFixture struct {
	userRepo *MockUserRepository
	mailer   *MockSender
	jwt      *jwt.JWTService
	usecase  *usecases.AuthUsecase
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store, err := redis.NewSessionStore(testSessionKey)
	require.NoError(t, err)

	f := &authFixture{
		userRepo: new(MockUserRepository),
		mailer:   new(MockSender),
		jwt:      jwt.NewJWTService("test-secret", 15*time.Minute, 24*time.Hour),
	}
	f.usecase = usecases.NewAuthUsecase(f.userRepo, f.jwt, store, f.mailer)
	return f
}

func TestRegister_Success(t *testing.T) {
	f := newAuthFixture(t)

	f.userRepo.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(nil, domainerrors.ErrNotFound)
	f.userRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entities.User).ID = uuid.New()
		}).Return(nil)
	f.mailer.On("Send", mock.Anything, "alice@example.com", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.usecase.Register(context.Background(), &entities.CreateUserInput{
		Email:    "Alice@Example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, entities.UserRoleBoth, resp.User.Role)

	claims, err := f.jwt.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestRegister_EmailTaken(t *testing.T) {
	f := newAuthFixture(t)

	f.userRepo.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&entities.User{ID: uuid.New()}, nil)

	_, err := f.usecase.Register(context.Background(), &entities.CreateUserInput{
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
	f.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	hash, err := crypto.HashPassword("right password")
	require.NoError(t, err)
	user := &entities.User{ID: uuid.New(), Email: null.StringFrom("bob@example.com"), PasswordHash: hash}

	f.userRepo.On("GetByEmail", mock.Anything, "bob@example.com").Return(user, nil)

	_, err = f.usecase.Login(context.Background(), &entities.LoginInput{
		Email: "bob@example.com", Password: "wrong password",
	})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	f := newAuthFixture(t)

	f.userRepo.On("GetByEmail", mock.Anything, "nobody@example.com").
		Return(nil, domainerrors.ErrNotFound)

	_, err := f.usecase.Login(context.Background(), &entities.LoginInput{
		Email: "nobody@example.com", Password: "whatever!",
	})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestLogin_Success_TouchesActivity(t *testing.T) {
	f := newAuthFixture(t)
	hash, err := crypto.HashPassword("right password")
	require.NoError(t, err)
	user := &entities.User{ID: uuid.New(), Email: null.StringFrom("bob@example.com"), PasswordHash: hash}

	f.userRepo.On("GetByEmail", mock.Anything, "bob@example.com").Return(user, nil)
	f.userRepo.On("TouchLastActive", mock.Anything, user.ID).Return(nil)

	resp, err := f.usecase.Login(context.Background(), &entities.LoginInput{
		Email: "Bob@example.com", Password: "right password",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	f.userRepo.AssertCalled(t, "TouchLastActive", mock.Anything, user.ID)
}

func TestLogin_ExpiredProIsDowngraded(t *testing.T) {
	f := newAuthFixture(t)
	hash, err := crypto.HashPassword("right password")
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour)
	user := &entities.User{
		ID: uuid.New(), Email: null.StringFrom("pro@example.com"),
		PasswordHash: hash, IsPro: true, ProExpiresAt: &past,
	}

	f.userRepo.On("GetByEmail", mock.Anything, "pro@example.com").Return(user, nil)
	f.userRepo.On("ExpireProStatus", mock.Anything, user.ID).Return(nil)
	f.userRepo.On("TouchLastActive", mock.Anything, user.ID).Return(nil)

	resp, err := f.usecase.Login(context.Background(), &entities.LoginInput{
		Email: "pro@example.com", Password: "right password",
	})
	require.NoError(t, err)
	assert.False(t, resp.User.IsPro)
}

func TestWalletLogin_FullFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	address := ethcrypto.PubkeyToAddress(key.PublicKey).Hex()

	nonce, err := f.usecase.WalletLoginNonce(ctx, address)
	require.NoError(t, err)
	require.NotEmpty(t, nonce)

	message := fmt.Sprintf("Sign in to the marketplace\nNonce: %s", nonce)
	sig, err := ethcrypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)

	// First wallet login creates the account on the fly.
	f.userRepo.On("GetByWalletAddress", mock.Anything, mock.Anything).
		Return(nil, domainerrors.ErrNotFound)
	f.userRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entities.User).ID = uuid.New()
		}).Return(nil)
	f.userRepo.On("TouchLastActive", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.usecase.WalletLogin(ctx, &entities.WalletLoginInput{
		WalletAddress: address,
		Message:       message,
		Signature:     hex.EncodeToString(sig),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, entities.UserRoleBoth, resp.User.Role)

	// The nonce is single use.
	_, err = f.usecase.WalletLogin(ctx, &entities.WalletLoginInput{
		WalletAddress: address,
		Message:       message,
		Signature:     hex.EncodeToString(sig),
	})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestWalletLogin_WrongSigner(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	otherKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	address := ethcrypto.PubkeyToAddress(key.PublicKey).Hex()

	nonce, err := f.usecase.WalletLoginNonce(ctx, address)
	require.NoError(t, err)

	message := "Nonce: " + nonce
	sig, err := ethcrypto.Sign(accounts.TextHash([]byte(message)), otherKey)
	require.NoError(t, err)

	_, err = f.usecase.WalletLogin(ctx, &entities.WalletLoginInput{
		WalletAddress: address,
		Message:       message,
		Signature:     hex.EncodeToString(sig),
	})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestWalletLoginNonce_MalformedAddress(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.usecase.WalletLoginNonce(context.Background(), "not-an-address")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestRefresh_RotatesTokens(t *testing.T) {
	f := newAuthFixture(t)
	user := &entities.User{ID: uuid.New(), Email: null.StringFrom("bob@example.com"), Role: entities.UserRoleBoth}
	pair, err := f.jwt.GenerateTokenPair(user.ID, user.Email.String, string(user.Role))
	require.NoError(t, err)

	f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	resp, err := f.usecase.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestRefresh_DeletedAccount(t *testing.T) {
	f := newAuthFixture(t)
	userID := uuid.New()
	pair, err := f.jwt.GenerateTokenPair(userID, "gone@example.com", "BOTH")
	require.NoError(t, err)

	f.userRepo.On("GetByID", mock.Anything, userID).Return(nil, domainerrors.ErrNotFound)

	_, err = f.usecase.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestRefresh_GarbageToken(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.usecase.Refresh(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestUpdateProfile_BudgetOrder(t *testing.T) {
	f := newAuthFixture(t)
	user := &entities.User{ID: uuid.New(), Role: entities.UserRoleBoth}

	f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	lo, hi := 500.0, 100.0
	_, err := f.usecase.UpdateProfile(context.Background(), user.ID, &entities.UpdateProfileInput{
		BudgetMin: &lo, BudgetMax: &hi,
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	f.userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	f := newAuthFixture(t)
	hash, err := crypto.HashPassword("old password")
	require.NoError(t, err)
	user := &entities.User{ID: uuid.New(), PasswordHash: hash}

	f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	err = f.usecase.ChangePassword(context.Background(), user.ID, &entities.ChangePasswordInput{
		CurrentPassword: "not the old one",
		NewPassword:     "new password",
	})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestChangePassword_WalletOnlyAccount(t *testing.T) {
	f := newAuthFixture(t)
	user := &entities.User{ID: uuid.New(), WalletAddress: null.StringFrom("0x1111")}

	f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	err := f.usecase.ChangePassword(context.Background(), user.ID, &entities.ChangePasswordInput{
		CurrentPassword: "anything at all",
		NewPassword:     "new password",
	})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}
