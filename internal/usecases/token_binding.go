package usecases

import (
	"context"
	"encoding/hex"
	"math/big"
	"strings"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"domainlease.backend/internal/domain/entities"
	domainerrors "domainlease.backend/internal/domain/errors"
	"domainlease.backend/internal/domain/repositories"
	"domainlease.backend/internal/infrastructure/blockchain"
	"domainlease.backend/internal/metrics"
	"domainlease.backend/pkg/logger"
)

// TokenBinder abstracts the lease-right token contract
type TokenBinder interface {
	IssueLeaseToken(
		ctx context.Context,
		domainName string,
		lessor, lessee string,
		start, end time.Time,
		priceWei *big.Int,
		restrictions string,
		agreementHash [32]byte,
	) (*blockchain.IssuedToken, error)
	TerminateLeaseToken(ctx context.Context, contractAddress string, tokenID *big.Int) error
}

// TokenBindingService keeps the listing's token columns in step with the
// lease-right contract. A listing holds at most one bound token; the
// conditional SetBinding update enforces that, so two concurrent binds
// resolve to exactly one winner.
type TokenBindingService struct {
	listingRepo repositories.ListingRepository
	binder      TokenBinder
}

// NewTokenBindingService creates a new token binding service
func NewTokenBindingService(listingRepo repositories.ListingRepository, binder TokenBinder) *TokenBindingService {
	return &TokenBindingService{
		listingRepo: listingRepo,
		binder:      binder,
	}
}

// BindRequest carries the contract call arguments for minting a lease token
type BindRequest struct {
	DomainName    string
	LessorWallet  string
	LesseeWallet  string
	Start, End    time.Time
	PriceAmount   float64
	PriceCurrency string
	Restrictions  string
	AgreementHash string
}

// Bind mints a lease token and records it on the listing. When called inside
// a unit-of-work scope the SetBinding write joins the surrounding transaction,
// so a later rollback also discards the binding columns. The minted token is
// then orphaned on chain; that is accepted and logged.
func (s *TokenBindingService) Bind(ctx context.Context, listing *entities.Listing, req *BindRequest) (*blockchain.IssuedToken, error) {
	if listing.HasBinding() {
		return nil, domainerrors.BindingConflict("listing already has a bound lease token")
	}

	token, err := s.binder.IssueLeaseToken(ctx,
		req.DomainName,
		req.LessorWallet,
		req.LesseeWallet,
		req.Start,
		req.End,
		toWei(req.PriceAmount, req.PriceCurrency),
		req.Restrictions,
		hashAgreement(req.AgreementHash),
	)
	if err != nil {
		metrics.TokenBindingsTotal.WithLabelValues("bind", "error").Inc()
		return nil, err
	}

	if err := s.listingRepo.SetBinding(ctx, listing.ID, token.ContractAddress, token.TokenID.String()); err != nil {
		metrics.TokenBindingsTotal.WithLabelValues("bind", "conflict").Inc()
		logger.WithContext(ctx).Warn("lease token minted but binding rejected, token orphaned",
			zap.String("listing_id", listing.ID.String()),
			zap.String("token_id", token.TokenID.String()),
			zap.String("tx_hash", token.TxHash),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.TokenBindingsTotal.WithLabelValues("bind", "success").Inc()
	listing.NFTContract.SetValid(token.ContractAddress)
	listing.NFTTokenID.SetValid(token.TokenID.String())
	return token, nil
}

// Unbind terminates the bound token and clears the listing's token columns.
// A listing without a binding unbinds trivially.
func (s *TokenBindingService) Unbind(ctx context.Context, listing *entities.Listing) error {
	if !listing.HasBinding() {
		return nil
	}

	tokenID, ok := new(big.Int).SetString(listing.NFTTokenID.String, 10)
	if !ok {
		metrics.TokenBindingsTotal.WithLabelValues("unbind", "error").Inc()
		return domainerrors.InternalError(domainerrors.NewError("malformed bound token id", domainerrors.ErrInvalidInput))
	}

	if err := s.binder.TerminateLeaseToken(ctx, listing.NFTContract.String, tokenID); err != nil {
		metrics.TokenBindingsTotal.WithLabelValues("unbind", "error").Inc()
		return err
	}

	if err := s.listingRepo.ClearBinding(ctx, listing.ID); err != nil {
		metrics.TokenBindingsTotal.WithLabelValues("unbind", "error").Inc()
		return err
	}

	metrics.TokenBindingsTotal.WithLabelValues("unbind", "success").Inc()
	listing.NFTContract.Valid = false
	listing.NFTTokenID.Valid = false
	listing.UnbindPending = false
	return nil
}

// UnbindBestEffort tries to unbind and, on a retryable failure, flags the
// listing for the background retry sweep instead of failing the caller.
// Lease teardown must not be blocked by a flaky chain.
func (s *TokenBindingService) UnbindBestEffort(ctx context.Context, listing *entities.Listing) {
	err := s.Unbind(ctx, listing)
	if err == nil {
		return
	}

	logger.WithContext(ctx).Warn("lease token unbind failed, flagging for retry",
		zap.String("listing_id", listing.ID.String()),
		zap.Error(err),
	)
	if markErr := s.listingRepo.MarkUnbindPending(ctx, listing.ID, true); markErr != nil {
		logger.WithContext(ctx).Error("failed to flag unbind retry",
			zap.String("listing_id", listing.ID.String()),
			zap.Error(markErr),
		)
	}
}

// RetryPendingUnbinds drains the unbind retry queue, one attempt per listing.
// Returns how many listings were successfully unbound.
func (s *TokenBindingService) RetryPendingUnbinds(ctx context.Context, limit int) (int, error) {
	pending, err := s.listingRepo.ListUnbindPending(ctx, limit)
	if err != nil {
		return 0, err
	}
	metrics.UnbindRetryQueueDepth.Set(float64(len(pending)))

	done := 0
	for _, listing := range pending {
		if err := s.Unbind(ctx, listing); err != nil {
			logger.WithContext(ctx).Warn("unbind retry failed",
				zap.String("listing_id", listing.ID.String()),
				zap.Error(err),
			)
			continue
		}
		done++
	}
	return done, nil
}

// hashAgreement accepts either a 32-byte hex digest or raw agreement text,
// which gets keccak-hashed.
func hashAgreement(s string) [32]byte {
	var out [32]byte
	trimmed := strings.TrimPrefix(s, "0x")
	if raw, err := hex.DecodeString(trimmed); err == nil && len(raw) == 32 {
		copy(out[:], raw)
		return out
	}
	copy(out[:], ethcrypto.Keccak256([]byte(s)))
	return out
}

// toWei converts a listing price to the uint256 the contract records. Only
// ETH amounts scale to 18 decimals; fiat prices are recorded in cents.
func toWei(amount float64, currency string) *big.Int {
	switch strings.ToUpper(currency) {
	case "ETH":
		wei, _ := new(big.Float).Mul(big.NewFloat(amount), big.NewFloat(1e18)).Int(nil)
		return wei
	default:
		return big.NewInt(int64(amount * 100))
	}
}
