package crypto

import (
	"encoding/hex"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrInvalidSignature = errors.New("invalid wallet signature")
)

// RecoverSigner recovers the address that personal-signed message. The
// signature is the 65-byte r||s||v hex produced by eth_sign / personal_sign
// (v may be 27/28 or 0/1).
func RecoverSigner(message, signatureHex string) (common.Address, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(signatureHex, "0x"))
	if err != nil {
		return common.Address{}, ErrInvalidSignature
	}
	if len(sig) != 65 {
		return common.Address{}, ErrInvalidSignature
	}

	// Normalize the recovery id
	if sig[64] >= 27 {
		sig = append([]byte(nil), sig...)
		sig[64] -= 27
	}
	if sig[64] > 1 {
		return common.Address{}, ErrInvalidSignature
	}

	pubKey, err := ethcrypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, ErrInvalidSignature
	}
	return ethcrypto.PubkeyToAddress(*pubKey), nil
}

// VerifyWalletSignature checks that signatureHex over message was produced
// by the given wallet address
func VerifyWalletSignature(address, message, signatureHex string) error {
	if !common.IsHexAddress(address) {
		return ErrInvalidSignature
	}
	recovered, err := RecoverSigner(message, signatureHex)
	if err != nil {
		return err
	}
	if recovered != common.HexToAddress(address) {
		return ErrInvalidSignature
	}
	return nil
}
