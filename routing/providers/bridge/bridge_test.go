package bridge

import (
	"context"
	"testing"

	"github.com/zeebo/assert"

	"github.com/griffin-labs/griffin-orchestrator/config"
	"github.com/griffin-labs/griffin-orchestrator/models"
)

func acrossConfig() config.BridgeProviderConfig {
	return config.BridgeProviderConfig{
		Name:                 "across",
		QuoteCurrency:        "usd",
		BridgeFee:            "0.5",
		GasFee:               "1.2",
		ProtocolFee:          "0.1",
		TransferFeeRate:      "0.01",
		EstimatedTimeSeconds: 120,
	}
}

func TestNewProviderRejectsBadFees(t *testing.T) {
	cfg := acrossConfig()
	cfg.BridgeFee = "cheap"
	_, err := NewProvider(cfg)
	assert.Error(t, err)

	cfg = acrossConfig()
	cfg.GasFee = "-1"
	_, err = NewProvider(cfg)
	assert.Error(t, err)
}

func TestSupports(t *testing.T) {
	p, err := NewProvider(acrossConfig())
	assert.NoError(t, err)

	// no chains declared: any cross-chain pair
	assert.True(t, p.Supports("starknet:sepolia", "eip155:1"))
	assert.False(t, p.Supports("eip155:1", "eip155:1"))

	cfg := acrossConfig()
	cfg.Chains = []string{"eip155:1", "eip155:137"}
	p, err = NewProvider(cfg)
	assert.NoError(t, err)
	assert.True(t, p.Supports("eip155:1", "eip155:137"))
	assert.False(t, p.Supports("eip155:1", "starknet:sepolia"))
}

func TestQuote(t *testing.T) {
	p, err := NewProvider(acrossConfig())
	assert.NoError(t, err)

	quotes, err := p.Quote(context.Background(), models.QuoteRequest{
		FromChain: "eip155:1",
		ToChain:   "eip155:137",
		FromToken: "0xaaa",
		ToToken:   "0xaaa",
		Amount:    "100",
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(quotes))

	q := quotes[0]
	assert.Equal(t, 1, len(q.Steps))
	assert.Equal(t, models.StepTypeBridge, q.Steps[0].Type)
	// 1% of 100 retained
	assert.Equal(t, "99", q.Steps[0].EstimatedOutput)
	// 0.5 + 1.2 + 0.1 + 1
	assert.Equal(t, "2.8", q.TotalCost.String())
	assert.Equal(t, "usd", q.CostCurrency)
	assert.Equal(t, 120, q.EstimatedTime)
}

func TestQuoteAmountTooSmall(t *testing.T) {
	cfg := acrossConfig()
	cfg.TransferFeeRate = "1"
	p, err := NewProvider(cfg)
	assert.NoError(t, err)

	_, err = p.Quote(context.Background(), models.QuoteRequest{Amount: "100"})
	assert.Error(t, err)

	_, err = p.Quote(context.Background(), models.QuoteRequest{Amount: "many"})
	assert.Error(t, err)
}
