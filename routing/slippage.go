package routing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CalculateMinOutput applies a slippage tolerance to an expected output.
// slippageBps is basis points (e.g. 100 = 1%).
// minOutput = expected * (10000 - slippageBps) / 10000
func CalculateMinOutput(expectedOutput string, slippageBps uint32) (string, error) {
	if slippageBps > 10000 {
		return "", fmt.Errorf("slippage %d bps exceeds 100%%", slippageBps)
	}
	expected, err := decimal.NewFromString(expectedOutput)
	if err != nil {
		return "", fmt.Errorf("failed to parse expected output: %w", err)
	}
	factor := decimal.NewFromInt(10000 - int64(slippageBps)).
		Div(decimal.NewFromInt(10000))
	return expected.Mul(factor).String(), nil
}

// SlippageToBps converts a fractional tolerance (0.005 = 0.5%) to basis
// points, clamping into [0, 10000].
func SlippageToBps(tolerance float64) uint32 {
	if tolerance <= 0 {
		return 0
	}
	if tolerance >= 1 {
		return 10000
	}
	return uint32(tolerance * 10000)
}
