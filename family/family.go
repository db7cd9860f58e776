// Package family dispatches per-chain-family capabilities. A chain family is
// the namespace grouping of chains sharing an address format and signing
// scheme; the family tag is the prefix of a namespaced chain id (the
// "starknet" in "starknet:sepolia"). Implementations are registered once at
// startup and looked up by tag, which keeps prefix matching out of the
// business logic.
package family

import (
	"context"
	"strings"
)

// AddressValidator checks whether an address is well formed for a chain.
type AddressValidator interface {
	ValidateAddress(chainID, address string) bool
}

// SignatureVerifier verifies a signed authorization message against the
// signer address. Implementations may call chain RPC and honor ctx.
type SignatureVerifier interface {
	VerifySignature(ctx context.Context, chainID, signature, message, signerAddress string) (bool, error)
}

// Capabilities bundles the per-family implementations.
type Capabilities struct {
	Addresses  AddressValidator
	Signatures SignatureVerifier
}

// Registry maps a family tag to its capabilities.
type Registry struct {
	families map[string]Capabilities
}

// NewRegistry creates an empty family registry.
func NewRegistry() *Registry {
	return &Registry{families: make(map[string]Capabilities)}
}

// Register binds a family tag (e.g. "starknet", "eip155") to its
// capabilities, replacing any previous binding.
func (r *Registry) Register(tag string, caps Capabilities) {
	r.families[tag] = caps
}

// For resolves the capabilities for a namespaced chain id. The second return
// is false when the family is unknown.
func (r *Registry) For(chainID string) (Capabilities, bool) {
	caps, ok := r.families[Tag(chainID)]
	return caps, ok
}

// Tag extracts the family tag from a namespaced chain id. Ids without a
// namespace separator map to the empty tag.
func Tag(chainID string) string {
	if idx := strings.Index(chainID, ":"); idx >= 0 {
		return chainID[:idx]
	}
	return ""
}
