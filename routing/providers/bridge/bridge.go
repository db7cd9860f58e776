// Package bridge implements bridge quote providers with declared fee
// schedules. Each configured bridge (across, stargate, orbiter) becomes one
// provider; fees and transfer times come from configuration rather than a
// live quote API.
package bridge

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/griffin-labs/griffin-orchestrator/config"
	"github.com/griffin-labs/griffin-orchestrator/models"
	"github.com/griffin-labs/griffin-orchestrator/routing"
)

// Provider is one bridge with a static fee schedule.
type Provider struct {
	name            string
	quoteCurrency   string
	bridgeFee       decimal.Decimal
	gasFee          decimal.Decimal
	protocolFee     decimal.Decimal
	transferFeeRate decimal.Decimal
	estimatedTime   int
	chains          map[string]bool
}

// NewProvider builds a bridge provider from its config block.
func NewProvider(cfg config.BridgeProviderConfig) (*Provider, error) {
	bridgeFee, err := parseFee(cfg.BridgeFee, "bridge_fee", cfg.Name)
	if err != nil {
		return nil, err
	}
	gasFee, err := parseFee(cfg.GasFee, "gas_fee", cfg.Name)
	if err != nil {
		return nil, err
	}
	protocolFee, err := parseFee(cfg.ProtocolFee, "protocol_fee", cfg.Name)
	if err != nil {
		return nil, err
	}
	transferFeeRate, err := parseFee(cfg.TransferFeeRate, "transfer_fee_rate", cfg.Name)
	if err != nil {
		return nil, err
	}

	chainSet := make(map[string]bool, len(cfg.Chains))
	for _, chainID := range cfg.Chains {
		chainSet[chainID] = true
	}
	return &Provider{
		name:            cfg.Name,
		quoteCurrency:   cfg.QuoteCurrency,
		bridgeFee:       bridgeFee,
		gasFee:          gasFee,
		protocolFee:     protocolFee,
		transferFeeRate: transferFeeRate,
		estimatedTime:   cfg.EstimatedTimeSeconds,
		chains:          chainSet,
	}, nil
}

func parseFee(value, field, provider string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bridge %s: failed to parse %s: %w", provider, field, err)
	}
	if parsed.IsNegative() {
		return decimal.Zero, fmt.Errorf("bridge %s: %s must not be negative", provider, field)
	}
	return parsed, nil
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Kind() models.StepType { return models.StepTypeBridge }

// Supports accepts every cross-chain pair when no chains are declared.
func (p *Provider) Supports(fromChain, toChain string) bool {
	if fromChain == toChain {
		return false
	}
	if len(p.chains) == 0 {
		return true
	}
	return p.chains[fromChain] && p.chains[toChain]
}

// Quote produces one bridge candidate. The transfer fee is retained from the
// amount; the flat fees make up the candidate's cost.
func (p *Provider) Quote(ctx context.Context, req models.QuoteRequest) ([]routing.RawQuote, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount %q: %w", req.Amount, err)
	}

	transferFee := amount.Mul(p.transferFeeRate)
	output := amount.Sub(transferFee)
	if !output.IsPositive() {
		return nil, fmt.Errorf("amount %s does not cover the transfer fee", req.Amount)
	}
	total := p.bridgeFee.Add(p.gasFee).Add(p.protocolFee).Add(transferFee)

	return []routing.RawQuote{{
		Provider: p.name,
		Steps: []models.RouteStep{{
			Type:            models.StepTypeBridge,
			Provider:        p.name,
			FromChain:       req.FromChain,
			ToChain:         req.ToChain,
			FromToken:       req.FromToken,
			ToToken:         req.ToToken,
			Amount:          req.Amount,
			EstimatedOutput: output.String(),
			Fees: models.FeeInfo{
				GasFee:      p.gasFee.String(),
				ProtocolFee: p.protocolFee.String(),
				BridgeFee:   p.bridgeFee.String(),
				ServiceFee:  transferFee.String(),
				Total:       total.String(),
			},
		}},
		TotalCost:     total,
		CostCurrency:  p.quoteCurrency,
		EstimatedTime: p.estimatedTime,
		GasEstimate: models.GasEstimate{
			GasPrice:  "0",
			TotalCost: p.gasFee.String(),
		},
	}}, nil
}
