package crypto_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domainlease.backend/pkg/crypto"
)

func signPersonal(t *testing.T, message string) (address, signatureHex string) {
	t.Helper()
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	sig, err := ethcrypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)
	return ethcrypto.PubkeyToAddress(key.PublicKey).Hex(), hex.EncodeToString(sig)
}

func TestRecoverSigner(t *testing.T) {
	const message = "Sign in to DomainLease\n\nNonce: deadbeef"
	address, sigHex := signPersonal(t, message)

	recovered, err := crypto.RecoverSigner(message, sigHex)
	require.NoError(t, err)
	assert.Equal(t, address, recovered.Hex())

	// Wallets prefix the hex and report v as 27/28; both forms recover.
	raw, err := hex.DecodeString(sigHex)
	require.NoError(t, err)
	raw[64] += 27
	recovered, err = crypto.RecoverSigner(message, "0x"+hex.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, address, recovered.Hex())
}

func TestRecoverSigner_Malformed(t *testing.T) {
	_, err := crypto.RecoverSigner("msg", "zz-not-hex")
	assert.ErrorIs(t, err, crypto.ErrInvalidSignature)

	_, err = crypto.RecoverSigner("msg", "deadbeef")
	assert.ErrorIs(t, err, crypto.ErrInvalidSignature)

	// 65 bytes but an impossible recovery id.
	bad := make([]byte, 65)
	bad[64] = 9
	_, err = crypto.RecoverSigner("msg", hex.EncodeToString(bad))
	assert.ErrorIs(t, err, crypto.ErrInvalidSignature)
}

func TestVerifyWalletSignature(t *testing.T) {
	const message = "Sign in to DomainLease\n\nNonce: cafebabe"
	address, sigHex := signPersonal(t, message)

	require.NoError(t, crypto.VerifyWalletSignature(address, message, sigHex))

	// Address comparison is checksum-insensitive.
	require.NoError(t, crypto.VerifyWalletSignature(strings.ToLower(address), message, sigHex))

	// A different message or signer does not verify.
	assert.ErrorIs(t, crypto.VerifyWalletSignature(address, "tampered message", sigHex), crypto.ErrInvalidSignature)

	otherAddress, _ := signPersonal(t, message)
	assert.ErrorIs(t, crypto.VerifyWalletSignature(otherAddress, message, sigHex), crypto.ErrInvalidSignature)

	assert.ErrorIs(t, crypto.VerifyWalletSignature("not-an-address", message, sigHex), crypto.ErrInvalidSignature)
}
