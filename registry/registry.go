// Package registry holds the catalog of supported chains and their tradable
// tokens. The registry is an explicitly constructed dependency: callers build
// it, populate it once at startup, and inject it where needed. There are no
// package-level globals and no background population, so a ready registry is
// always complete.
package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/griffin-labs/griffin-orchestrator/apperr"
	"github.com/griffin-labs/griffin-orchestrator/models"
)

// TokenSource supplies the token catalog for one chain. Sources are queried
// during Populate; the registry is not considered ready until every source
// has answered or failed.
type TokenSource interface {
	// Name identifies the source in logs.
	Name() string
	// Tokens returns the catalog for the chain the source was built for.
	Tokens(ctx context.Context) ([]models.TokenInfo, error)
}

// ChainRegistry is the authoritative list of supported chains and tokens.
// Reads are safe under concurrent access; the catalog is effectively
// immutable after Populate.
type ChainRegistry struct {
	mu     sync.RWMutex
	chains map[string]models.ChainInfo
	order  []string // chain ids in registration order
	// chainId -> lowercase token address -> TokenInfo
	tokens  map[string]map[string]models.TokenInfo
	sources map[string][]TokenSource
	ready   bool
}

// NewChainRegistry creates an empty registry for the given chains.
func NewChainRegistry(chains []models.ChainInfo) *ChainRegistry {
	r := &ChainRegistry{
		chains:  make(map[string]models.ChainInfo, len(chains)),
		tokens:  make(map[string]map[string]models.TokenInfo),
		sources: make(map[string][]TokenSource),
	}
	for _, chain := range chains {
		if _, exists := r.chains[chain.ChainID]; exists {
			continue
		}
		r.chains[chain.ChainID] = chain
		r.order = append(r.order, chain.ChainID)
		r.tokens[chain.ChainID] = make(map[string]models.TokenInfo)
	}
	return r
}

// AddTokenSource attaches a token source to a chain. Must be called before
// Populate.
func (r *ChainRegistry) AddTokenSource(chainID string, source TokenSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[chainID] = append(r.sources[chainID], source)
}

// Populate fills the token catalog from every registered source and marks the
// registry ready. It is an explicit, awaited initialization step: callers
// must not serve requests until it returns.
func (r *ChainRegistry) Populate(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for chainID, sources := range r.sources {
		if _, known := r.chains[chainID]; !known {
			return fmt.Errorf("token source registered for unknown chain %s", chainID)
		}
		for _, source := range sources {
			tokens, err := source.Tokens(ctx)
			if err != nil {
				return fmt.Errorf("token source %s for chain %s: %w", source.Name(), chainID, err)
			}
			for _, token := range tokens {
				token.ChainID = chainID
				r.tokens[chainID][strings.ToLower(token.Address)] = token
			}
		}
	}
	r.ready = true
	return nil
}

// Ready reports whether Populate has completed.
func (r *ChainRegistry) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}

// GetSupportedChains returns the full chain catalog in registration order.
func (r *ChainRegistry) GetSupportedChains() []models.ChainInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chains := make([]models.ChainInfo, 0, len(r.order))
	for _, id := range r.order {
		chains = append(chains, r.chains[id])
	}
	return chains
}

// GetChainInfo returns the chain or false when unknown.
func (r *ChainRegistry) GetChainInfo(chainID string) (models.ChainInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chain, ok := r.chains[chainID]
	return chain, ok
}

// IsChainSupported reports whether the chain is registered.
func (r *ChainRegistry) IsChainSupported(chainID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.chains[chainID]
	return ok
}

// GetSupportedTokens returns the token catalog. With a chainID it filters to
// that chain and fails with NO_TOKENS_FOUND when the filtered set is empty;
// this is a populated-registry precondition, not a chain-validity check. An
// empty chainID returns the full catalog regardless of per-chain emptiness.
func (r *ChainRegistry) GetSupportedTokens(chainID string) ([]models.TokenInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if chainID != "" {
		chainTokens := r.tokens[chainID]
		if len(chainTokens) == 0 {
			return nil, apperr.NotFound(apperr.CodeNoTokensFound, "No tokens found for chain").
				WithDetails(map[string]any{"chainId": chainID})
		}
		return collectTokens(chainTokens), nil
	}

	var all []models.TokenInfo
	for _, id := range r.order {
		all = append(all, collectTokens(r.tokens[id])...)
	}
	return all, nil
}

// IsTokenSupported reports whether the token is registered on the chain.
// Address comparison is case-insensitive.
func (r *ChainRegistry) IsTokenSupported(tokenAddress, chainID string) bool {
	_, ok := r.GetTokenInfo(tokenAddress, chainID)
	return ok
}

// GetTokenInfo looks up a token by case-insensitive address on a chain.
func (r *ChainRegistry) GetTokenInfo(tokenAddress, chainID string) (models.TokenInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chainTokens, ok := r.tokens[chainID]
	if !ok {
		return models.TokenInfo{}, false
	}
	token, ok := chainTokens[strings.ToLower(tokenAddress)]
	return token, ok
}

func collectTokens(m map[string]models.TokenInfo) []models.TokenInfo {
	tokens := make([]models.TokenInfo, 0, len(m))
	for _, token := range m {
		tokens = append(tokens, token)
	}
	return tokens
}
