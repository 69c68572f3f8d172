package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	domainerrors "domainlease.backend/internal/domain/errors"
)

// LeaseTokenABI covers the subset of the lease-right ERC721 contract the
// backend drives: minting a lease token and terminating (burning) it.
var LeaseTokenABI = mustParseABI(`[
	{"inputs":[{"internalType":"string","name":"domainName","type":"string"},{"internalType":"address","name":"lessor","type":"address"},{"internalType":"address","name":"lessee","type":"address"},{"internalType":"uint256","name":"startDate","type":"uint256"},{"internalType":"uint256","name":"endDate","type":"uint256"},{"internalType":"uint256","name":"priceWei","type":"uint256"},{"internalType":"string","name":"restrictions","type":"string"},{"internalType":"bytes32","name":"agreementHash","type":"bytes32"}],"name":"issueLease","outputs":[{"internalType":"uint256","name":"tokenId","type":"uint256"}],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"internalType":"uint256","name":"tokenId","type":"uint256"}],"name":"terminateLease","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"internalType":"uint256","name":"tokenId","type":"uint256"}],"name":"ownerOf","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"anonymous":false,"inputs":[{"indexed":true,"internalType":"address","name":"from","type":"address"},{"indexed":true,"internalType":"address","name":"to","type":"address"},{"indexed":true,"internalType":"uint256","name":"tokenId","type":"uint256"}],"name":"Transfer","type":"event"}
]`)

var transferEventTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

var (
	dialTokenClient    = ethclient.DialContext
	transactLeaseToken = func(client *ethclient.Client, contractAddress string, auth *bind.TransactOpts, method string, args ...interface{}) (*types.Transaction, error) {
		contract := bind.NewBoundContract(common.HexToAddress(contractAddress), LeaseTokenABI, client, client, client)
		return contract.Transact(auth, method, args...)
	}
	waitForReceipt = func(ctx context.Context, client *ethclient.Client, tx *types.Transaction) (*types.Receipt, error) {
		return bind.WaitMined(ctx, client, tx)
	}
)

// IssuedToken describes a minted lease-right token
type IssuedToken struct {
	ContractAddress string
	TokenID         *big.Int
	TxHash          string
}

// LeaseTokenService drives the lease-right ERC721 contract. Failures are
// classified as transient (network, timeout; retryable by the caller) or
// permanent (contract revert; never retried).
type LeaseTokenService struct {
	rpcURL          string
	contractAddress string
	ownerPrivateKey string
	callTimeout     time.Duration
}

// NewLeaseTokenService creates a new lease token service
func NewLeaseTokenService(rpcURL, contractAddress, ownerPrivateKey string, callTimeout time.Duration) *LeaseTokenService {
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	return &LeaseTokenService{
		rpcURL:          rpcURL,
		contractAddress: contractAddress,
		ownerPrivateKey: strings.TrimSpace(ownerPrivateKey),
		callTimeout:     callTimeout,
	}
}

// IssueLeaseToken mints a lease-right token for the domain and returns the
// contract address and token id recovered from the mint Transfer event.
func (s *LeaseTokenService) IssueLeaseToken(
	ctx context.Context,
	domainName string,
	lessor, lessee string,
	start, end time.Time,
	priceWei *big.Int,
	restrictions string,
	agreementHash [32]byte,
) (*IssuedToken, error) {
	if !common.IsHexAddress(lessee) {
		return nil, domainerrors.NewAppError(422, domainerrors.CodeBadRequest, "invalid lessee address", domainerrors.ErrPermanent)
	}
	if !common.IsHexAddress(lessor) {
		return nil, domainerrors.NewAppError(422, domainerrors.CodeBadRequest, "invalid lessor address", domainerrors.ErrPermanent)
	}
	if !end.After(start) {
		return nil, domainerrors.NewAppError(422, domainerrors.CodeBadRequest, "lease end must be after start", domainerrors.ErrPermanent)
	}

	receipt, txHash, err := s.execute(ctx, "issueLease",
		domainName,
		common.HexToAddress(lessor),
		common.HexToAddress(lessee),
		big.NewInt(start.Unix()),
		big.NewInt(end.Unix()),
		priceWei,
		restrictions,
		agreementHash,
	)
	if err != nil {
		return nil, err
	}

	tokenID, err := tokenIDFromReceipt(receipt, common.HexToAddress(s.contractAddress))
	if err != nil {
		return nil, classify(err)
	}

	return &IssuedToken{
		ContractAddress: s.contractAddress,
		TokenID:         tokenID,
		TxHash:          txHash,
	}, nil
}

// TerminateLeaseToken burns a previously issued lease token
func (s *LeaseTokenService) TerminateLeaseToken(ctx context.Context, contractAddress string, tokenID *big.Int) error {
	if tokenID == nil {
		return domainerrors.NewAppError(422, domainerrors.CodeBadRequest, "missing token id", domainerrors.ErrPermanent)
	}
	_, _, err := s.executeAt(ctx, contractAddress, "terminateLease", tokenID)
	return err
}

func (s *LeaseTokenService) execute(ctx context.Context, method string, args ...interface{}) (*types.Receipt, string, error) {
	return s.executeAt(ctx, s.contractAddress, method, args...)
}

func (s *LeaseTokenService) executeAt(ctx context.Context, contractAddress, method string, args ...interface{}) (*types.Receipt, string, error) {
	if s.ownerPrivateKey == "" {
		return nil, "", domainerrors.NewAppError(500, domainerrors.CodeInternal, "contract owner key not configured", domainerrors.ErrPermanent)
	}

	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	client, err := dialTokenClient(ctx, s.rpcURL)
	if err != nil {
		return nil, "", classify(err)
	}
	defer client.Close()

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(s.ownerPrivateKey, "0x"))
	if err != nil {
		return nil, "", domainerrors.NewAppError(500, domainerrors.CodeInternal, "invalid contract owner key", domainerrors.ErrPermanent)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, "", classify(err)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(privateKey, chainID)
	if err != nil {
		return nil, "", classify(err)
	}
	auth.Context = ctx

	tx, err := transactLeaseToken(client, contractAddress, auth, method, args...)
	if err != nil {
		return nil, "", classify(err)
	}

	receipt, err := waitForReceipt(ctx, client, tx)
	if err != nil {
		return nil, "", classify(err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, "", domainerrors.NewAppError(502, domainerrors.CodeInternal,
			fmt.Sprintf("contract call %s reverted", method), domainerrors.ErrPermanent)
	}

	return receipt, tx.Hash().Hex(), nil
}

func tokenIDFromReceipt(receipt *types.Receipt, contract common.Address) (*big.Int, error) {
	for _, lg := range receipt.Logs {
		if lg.Address != contract {
			continue
		}
		if len(lg.Topics) != 4 || lg.Topics[0] != transferEventTopic {
			continue
		}
		// Mint: Transfer(0x0, lessee, tokenId)
		if lg.Topics[1] != (common.Hash{}) {
			continue
		}
		return new(big.Int).SetBytes(lg.Topics[3].Bytes()), nil
	}
	return nil, errors.New("no mint Transfer event in receipt")
}

// classify maps raw collaborator errors onto the transient/permanent split.
// Context expiry and dial failures are retryable; reverts are not.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domainerrors.Transient("blockchain call timed out", err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "execution reverted"),
		strings.Contains(msg, "revert"),
		strings.Contains(msg, "invalid opcode"):
		return domainerrors.NewAppError(502, domainerrors.CodeInternal, "contract call reverted: "+err.Error(),
			errors.Join(domainerrors.ErrPermanent, err))
	default:
		return domainerrors.Transient("blockchain collaborator unavailable", err)
	}
}

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
