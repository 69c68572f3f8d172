package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"domainlease.backend/internal/domain/entities"
	domainerrors "domainlease.backend/internal/domain/errors"
	"domainlease.backend/internal/domain/repositories"
	"domainlease.backend/internal/infrastructure/email"
	"domainlease.backend/pkg/crypto"
	"domainlease.backend/pkg/jwt"
	"domainlease.backend/pkg/logger"
	"domainlease.backend/pkg/redis"
	"domainlease.backend/pkg/utils"
)

const (
	sessionTTL       = 7 * 24 * time.Hour
	loginNonceTTL    = 5 * time.Minute
	loginNoncePrefix = "login:nonce:"
)

// AuthUsecase handles authentication business logic
type AuthUsecase struct {
	userRepo     repositories.UserRepository
	jwtService   *jwt.JWTService
	sessionStore *redis.SessionStore
	mailer       email.Sender
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	userRepo repositories.UserRepository,
	jwtService *jwt.JWTService,
	sessionStore *redis.SessionStore,
	mailer email.Sender,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:     userRepo,
		jwtService:   jwtService,
		sessionStore: sessionStore,
		mailer:       mailer,
	}
}

// Register registers a new user with email and password
func (u *AuthUsecase) Register(ctx context.Context, input *entities.CreateUserInput) (*entities.AuthResponse, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(input.Email))

	_, err := u.userRepo.GetByEmail(ctx, emailAddr)
	if err == nil {
		return nil, domainerrors.Conflict("email already registered")
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		PasswordHash: passwordHash,
		Role:         entities.UserRole(input.Role),
	}
	user.Email.SetValid(emailAddr)
	if user.Role == "" {
		user.Role = entities.UserRoleBoth
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	u.sendWelcome(ctx, emailAddr)
	return u.issueSession(ctx, user)
}

// Login authenticates with email and password
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	user, err := u.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	if !crypto.CheckPassword(input.Password, user.PasswordHash) {
		return nil, domainerrors.Unauthorized("invalid credentials")
	}

	u.reconcileProStatus(ctx, user)
	if err := u.userRepo.TouchLastActive(ctx, user.ID); err != nil {
		logger.WithContext(ctx).Warn("last-active touch failed", zap.Error(err))
	}

	return u.issueSession(ctx, user)
}

// WalletLoginNonce issues a single-use nonce the wallet must include in the
// signed login message. Nonces live in redis for five minutes.
func (u *AuthUsecase) WalletLoginNonce(ctx context.Context, address string) (string, error) {
	if err := validateWalletAddress(address); err != nil {
		return "", err
	}
	nonce, err := crypto.GenerateLoginNonce()
	if err != nil {
		return "", err
	}
	key := loginNoncePrefix + strings.ToLower(address)
	if err := redis.Set(ctx, key, nonce, loginNonceTTL); err != nil {
		return "", domainerrors.Transient("nonce store unavailable", err)
	}
	return nonce, nil
}

// WalletLogin authenticates by EIP-191 personal-sign. The signed message must
// contain the nonce issued by WalletLoginNonce; first-time wallets get a user
// created on the fly.
func (u *AuthUsecase) WalletLogin(ctx context.Context, input *entities.WalletLoginInput) (*entities.AuthResponse, error) {
	address := strings.ToLower(strings.TrimSpace(input.WalletAddress))

	key := loginNoncePrefix + address
	nonce, err := redis.Get(ctx, key)
	if err != nil || nonce == "" {
		return nil, domainerrors.Unauthorized("login nonce missing or expired")
	}
	if !strings.Contains(input.Message, nonce) {
		return nil, domainerrors.Unauthorized("signed message does not carry the issued nonce")
	}

	if err := crypto.VerifyWalletSignature(input.WalletAddress, input.Message, input.Signature); err != nil {
		return nil, domainerrors.Unauthorized("signature verification failed")
	}

	// Single use: burn the nonce before issuing tokens.
	if err := redis.Del(ctx, key); err != nil {
		logger.WithContext(ctx).Warn("nonce delete failed", zap.Error(err))
	}

	user, err := u.userRepo.GetByWalletAddress(ctx, address)
	if errors.Is(err, domainerrors.ErrNotFound) {
		user = &entities.User{Role: entities.UserRoleBoth}
		user.WalletAddress.SetValid(address)
		if err := u.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	u.reconcileProStatus(ctx, user)
	if err := u.userRepo.TouchLastActive(ctx, user.ID); err != nil {
		logger.WithContext(ctx).Warn("last-active touch failed", zap.Error(err))
	}

	return u.issueSession(ctx, user)
}

// Refresh exchanges a valid refresh token for a new token pair
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*entities.AuthResponse, error) {
	claims, err := u.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid refresh token")
	}

	user, err := u.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.Unauthorized("account no longer exists")
		}
		return nil, err
	}

	return u.issueSession(ctx, user)
}

// Logout drops the server-side session
func (u *AuthUsecase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return u.sessionStore.DeleteSession(ctx, sessionID)
}

// GetUserByID returns the user profile
func (u *AuthUsecase) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.reconcileProStatus(ctx, user)
	return user, nil
}

// UpdateProfile applies profile changes for the caller
func (u *AuthUsecase) UpdateProfile(ctx context.Context, id uuid.UUID, input *entities.UpdateProfileInput) (*entities.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.BudgetMin != nil && input.BudgetMax != nil && *input.BudgetMin > *input.BudgetMax {
		return nil, domainerrors.BadRequest("budget minimum exceeds maximum")
	}

	if input.Role != "" {
		user.Role = entities.UserRole(input.Role)
	}
	if input.BudgetMin != nil {
		user.BudgetMin.SetValid(*input.BudgetMin)
	}
	if input.BudgetMax != nil {
		user.BudgetMax.SetValid(*input.BudgetMax)
	}
	if input.PreferredSuffixes != nil {
		user.PreferredSuffixes = input.PreferredSuffixes
	}
	if input.CommunicationStyle != "" {
		user.CommunicationStyle.SetValid(input.CommunicationStyle)
	}

	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword rotates the caller's password after checking the current one
func (u *AuthUsecase) ChangePassword(ctx context.Context, id uuid.UUID, input *entities.ChangePasswordInput) error {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.PasswordHash == "" || !crypto.CheckPassword(input.CurrentPassword, user.PasswordHash) {
		return domainerrors.Unauthorized("current password is incorrect")
	}

	hash, err := crypto.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return u.userRepo.Update(ctx, user)
}

func (u *AuthUsecase) issueSession(ctx context.Context, user *entities.User) (*entities.AuthResponse, error) {
	pair, err := u.jwtService.GenerateTokenPair(user.ID, user.Email.String, string(user.Role))
	if err != nil {
		return nil, err
	}

	sessionID := utils.GenerateUUIDv7().String()
	sessionErr := u.sessionStore.CreateSession(ctx, sessionID, &redis.SessionData{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, sessionTTL)
	if sessionErr != nil {
		// Tokens are self-contained; a session miss only disables logout-all.
		logger.WithContext(ctx).Warn("session store write failed", zap.Error(sessionErr))
		sessionID = ""
	}

	return &entities.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		SessionID:    sessionID,
		User:         user,
	}, nil
}

// reconcileProStatus lazily downgrades an expired pro subscription on read.
func (u *AuthUsecase) reconcileProStatus(ctx context.Context, user *entities.User) {
	if !user.IsPro || user.ProActive(time.Now()) {
		return
	}
	if err := u.userRepo.ExpireProStatus(ctx, user.ID); err != nil {
		logger.WithContext(ctx).Warn("pro status expiry failed", zap.Error(err))
		return
	}
	user.IsPro = false
}

func (u *AuthUsecase) sendWelcome(ctx context.Context, to string) {
	body := "<p>Welcome aboard. Register a domain or browse listings to get started.</p>"
	if err := u.mailer.Send(ctx, to, "Welcome to the marketplace", body); err != nil {
		logger.WithContext(ctx).Warn("welcome email failed", zap.Error(err))
	}
}

func validateWalletAddress(address string) error {
	address = strings.TrimSpace(address)
	if len(address) != 42 || !strings.HasPrefix(address, "0x") {
		return domainerrors.BadRequest(fmt.Sprintf("malformed wallet address %q", address))
	}
	return nil
}
