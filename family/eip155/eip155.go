// Package eip155 implements the EVM chain-family capabilities. Signatures
// follow the personal-sign scheme (EIP-191): the signer is recovered from the
// prefixed message hash and compared against the claimed address.
package eip155

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Family implements family.AddressValidator and family.SignatureVerifier for
// eip155 chains.
type Family struct{}

func New() *Family {
	return &Family{}
}

// ValidateAddress checks the address is 20 hex-encoded bytes with 0x prefix.
func (f *Family) ValidateAddress(chainID, address string) bool {
	return common.IsHexAddress(address)
}

// VerifySignature recovers the signer of a personal-sign message and compares
// it to signerAddress. Recovery is local, no RPC round trip is needed.
func (f *Family) VerifySignature(ctx context.Context, chainID, signature, message, signerAddress string) (bool, error) {
	if !common.IsHexAddress(signerAddress) {
		return false, fmt.Errorf("invalid signer address %q", signerAddress)
	}

	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return false, fmt.Errorf("signature is not hex encoded: %w", err)
	}
	if len(sig) != 65 {
		return false, fmt.Errorf("signature must be 65 bytes, got %d", len(sig))
	}

	// Wallets emit V as 27/28, SigToPub expects 0/1.
	recoverySig := make([]byte, 65)
	copy(recoverySig, sig)
	if recoverySig[64] >= 27 {
		recoverySig[64] -= 27
	}

	digest := accounts.TextHash([]byte(message))
	pubKey, err := crypto.SigToPub(digest, recoverySig)
	if err != nil {
		return false, fmt.Errorf("failed to recover signer: %w", err)
	}

	recovered := crypto.PubkeyToAddress(*pubKey)
	return recovered == common.HexToAddress(signerAddress), nil
}
