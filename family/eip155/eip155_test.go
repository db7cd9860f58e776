package eip155

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/zeebo/assert"
)

func TestValidateAddress(t *testing.T) {
	f := New()

	assert.True(t, f.ValidateAddress("eip155:1", "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"))
	assert.False(t, f.ValidateAddress("eip155:1", "742d35Cc6634C0532925a3b844Bc454e4438f44e"))
	assert.False(t, f.ValidateAddress("eip155:1", "0x742d35"))
	assert.False(t, f.ValidateAddress("eip155:1", ""))
	assert.False(t, f.ValidateAddress("eip155:1", "0xZZZd35Cc6634C0532925a3b844Bc454e4438f44e"))
}

func TestVerifySignature(t *testing.T) {
	f := New()

	key, err := crypto.GenerateKey()
	assert.NoError(t, err)
	addr := crypto.PubkeyToAddress(key.PublicKey)

	message := "griffin-intent:0x1234"
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	assert.NoError(t, err)
	// present the signature the way wallets do
	sig[64] += 27
	sigHex := "0x" + hex.EncodeToString(sig)

	ok, err := f.VerifySignature(context.Background(), "eip155:1", sigHex, message, addr.Hex())
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.VerifySignature(context.Background(), "eip155:1", sigHex, "different message", addr.Hex())
	assert.NoError(t, err)
	assert.False(t, ok)

	other, err := crypto.GenerateKey()
	assert.NoError(t, err)
	ok, err = f.VerifySignature(context.Background(), "eip155:1", sigHex, message,
		crypto.PubkeyToAddress(other.PublicKey).Hex())
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = f.VerifySignature(context.Background(), "eip155:1", "0x1234", message, addr.Hex())
	assert.Error(t, err)
}
