package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zeebo/assert"

	"github.com/griffin-labs/griffin-orchestrator/apperr"
	"github.com/griffin-labs/griffin-orchestrator/models"
)

func testChains() []models.ChainInfo {
	return []models.ChainInfo{
		{ChainID: "starknet:sepolia", Name: "Starknet Sepolia", Symbol: "STRK", IsTestnet: true},
		{ChainID: "eip155:1", Name: "Ethereum", Symbol: "ETH"},
		{ChainID: "eip155:137", Name: "Polygon", Symbol: "POL"},
	}
}

func usdcToken() models.TokenInfo {
	return models.TokenInfo{
		Address:  "0x53C91253BC9682c04929cA02ED00b3E423f6710D2ee7e0D5EBB06F3eCF368A8",
		Symbol:   "USDC",
		Name:     "USD Coin",
		Decimals: 6,
	}
}

func TestRegistryPopulate(t *testing.T) {
	reg := NewChainRegistry(testChains())
	assert.False(t, reg.Ready())

	reg.AddTokenSource("starknet:sepolia", NewStaticSource([]models.TokenInfo{usdcToken()}))
	assert.NoError(t, reg.Populate(context.Background()))
	assert.True(t, reg.Ready())

	tokens, err := reg.GetSupportedTokens("starknet:sepolia")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(tokens))
	// the registry stamps the owning chain onto each token
	assert.Equal(t, "starknet:sepolia", tokens[0].ChainID)
}

func TestRegistryPopulateFailures(t *testing.T) {
	reg := NewChainRegistry(testChains())
	reg.AddTokenSource("cosmos:hub", NewStaticSource(nil))
	assert.Error(t, reg.Populate(context.Background()))
	assert.False(t, reg.Ready())

	reg = NewChainRegistry(testChains())
	reg.AddTokenSource("eip155:1", NewFetcherSource("broken", &failingFetcher{}))
	assert.Error(t, reg.Populate(context.Background()))
	assert.False(t, reg.Ready())
}

func TestGetSupportedChainsOrder(t *testing.T) {
	reg := NewChainRegistry(testChains())
	chains := reg.GetSupportedChains()
	assert.Equal(t, 3, len(chains))
	assert.Equal(t, "starknet:sepolia", chains[0].ChainID)
	assert.Equal(t, "eip155:1", chains[1].ChainID)
	assert.Equal(t, "eip155:137", chains[2].ChainID)

	assert.True(t, reg.IsChainSupported("eip155:1"))
	assert.False(t, reg.IsChainSupported("eip155:10"))

	chain, ok := reg.GetChainInfo("starknet:sepolia")
	assert.True(t, ok)
	assert.True(t, chain.IsTestnet)
}

func TestTokenLookupCaseInsensitive(t *testing.T) {
	reg := NewChainRegistry(testChains())
	reg.AddTokenSource("starknet:sepolia", NewStaticSource([]models.TokenInfo{usdcToken()}))
	assert.NoError(t, reg.Populate(context.Background()))

	lower := "0x53c91253bc9682c04929ca02ed00b3e423f6710d2ee7e0d5ebb06f3ecf368a8"
	assert.True(t, reg.IsTokenSupported(lower, "starknet:sepolia"))
	assert.True(t, reg.IsTokenSupported(usdcToken().Address, "starknet:sepolia"))
	assert.False(t, reg.IsTokenSupported(lower, "eip155:1"))

	token, ok := reg.GetTokenInfo(lower, "starknet:sepolia")
	assert.True(t, ok)
	assert.Equal(t, "USDC", token.Symbol)
	assert.Equal(t, 6, token.Decimals)
}

func TestGetSupportedTokensEmptyChain(t *testing.T) {
	reg := NewChainRegistry(testChains())
	reg.AddTokenSource("starknet:sepolia", NewStaticSource([]models.TokenInfo{usdcToken()}))
	assert.NoError(t, reg.Populate(context.Background()))

	_, err := reg.GetSupportedTokens("eip155:1")
	assert.Error(t, err)
	var appErr *apperr.Error
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.CodeNoTokensFound, appErr.Code)

	// empty chain id returns the full catalog even when some chains are empty
	all, err := reg.GetSupportedTokens("")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(all))
}

func TestParseTokenListDir(t *testing.T) {
	dir := t.TempDir()
	body := `[{"address":"0xabc","symbol":"AAA","name":"Token A","decimals":18},
	          {"address":"0xdef","symbol":"BBB","name":"Token B","decimals":6}]`
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "tokens.json"), []byte(body), 0o644))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))

	tokens, err := parseTokenListDir(dir)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(tokens))
	assert.Equal(t, "AAA", tokens[0].Symbol)

	assert.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o644))
	_, err = parseTokenListDir(dir)
	assert.Error(t, err)
}

type failingFetcher struct{}

func (f *failingFetcher) FetchTokens(ctx context.Context) ([]models.TokenInfo, error) {
	return nil, errors.New("upstream unavailable")
}
