package routing

import "github.com/shopspring/decimal"

// PriceSource converts amounts between a provider's quote currency and the
// engine's reference cost unit.
type PriceSource interface {
	// Rate returns the multiplier converting one unit of currency into the
	// reference unit. The second return is false when no rate is known.
	Rate(currency string) (decimal.Decimal, bool)
}

// StaticPriceSource serves conversion rates from configuration.
type StaticPriceSource struct {
	unit  string
	rates map[string]decimal.Decimal
}

// NewStaticPriceSource parses the configured currency -> unit rates.
// Unparseable entries are skipped.
func NewStaticPriceSource(unit string, rates map[string]string) *StaticPriceSource {
	parsed := make(map[string]decimal.Decimal, len(rates))
	for currency, rate := range rates {
		value, err := decimal.NewFromString(rate)
		if err != nil || !value.IsPositive() {
			routingLog.Warn().Str("currency", currency).Str("rate", rate).
				Msg("skipping unparseable conversion rate")
			continue
		}
		parsed[currency] = value
	}
	return &StaticPriceSource{unit: unit, rates: parsed}
}

// Unit returns the reference unit name.
func (s *StaticPriceSource) Unit() string { return s.unit }

func (s *StaticPriceSource) Rate(currency string) (decimal.Decimal, bool) {
	if currency == s.unit {
		return decimal.NewFromInt(1), true
	}
	rate, ok := s.rates[currency]
	return rate, ok
}
