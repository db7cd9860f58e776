// Package routing implements route discovery and ranking: quote providers are
// queried in parallel, their candidates normalized into one cost unit and
// returned sorted ascending by total cost.
package routing

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/griffin-labs/griffin-orchestrator/models"
)

var routingLog zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	routingLog = zerolog.New(out).With().Timestamp().Str("component", "routing").Logger()
}

// SetLogger allows setting a custom logger
func SetLogger(l zerolog.Logger) {
	routingLog = l
}

// RawQuote is one provider candidate before ranking. TotalCost is expressed
// in CostCurrency; the engine converts it into the reference unit.
type RawQuote struct {
	Provider      string
	QuoteID       string
	Steps         []models.RouteStep
	TotalCost     decimal.Decimal
	CostCurrency  string
	EstimatedTime int
	GasEstimate   models.GasEstimate
}

// QuoteProvider is the adapter every quote source implements. Quote must
// honor ctx; a failing provider contributes zero candidates, it never aborts
// the discovery call.
type QuoteProvider interface {
	// Name identifies the provider in routes, logs and metrics.
	Name() string
	// Kind reports whether the provider produces swap or bridge steps.
	Kind() models.StepType
	// Supports reports whether the provider can serve the chain pair.
	Supports(fromChain, toChain string) bool
	// Quote returns candidate quotes for the request.
	Quote(ctx context.Context, req models.QuoteRequest) ([]RawQuote, error)
}
