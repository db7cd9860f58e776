package routing

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/griffin-labs/griffin-orchestrator/metrics"
	"github.com/griffin-labs/griffin-orchestrator/models"
)

// QuoteCache fronts provider queries with a short-lived cache. A nil cache
// disables caching.
type QuoteCache interface {
	GetJSON(ctx context.Context, key string, v any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

// Engine discovers and ranks routes. Same-chain requests fan out to the swap
// providers; cross-chain requests compose an optional leading swap with one
// bridge step per bridge provider.
type Engine struct {
	providers       []QuoteProvider
	prices          *StaticPriceSource
	cache           QuoteCache
	validity        time.Duration
	cacheTTL        time.Duration
	queryTimeout    time.Duration
	defaultSlippage float64
}

// NewEngine wires the discovery engine over the given providers. A cacheTTL
// of zero falls back to the validity window.
func NewEngine(providers []QuoteProvider, prices *StaticPriceSource, cache QuoteCache,
	validity, cacheTTL, queryTimeout time.Duration, defaultSlippage float64) *Engine {
	if cacheTTL <= 0 {
		cacheTTL = validity
	}
	return &Engine{
		providers:       providers,
		prices:          prices,
		cache:           cache,
		validity:        validity,
		cacheTTL:        cacheTTL,
		queryTimeout:    queryTimeout,
		defaultSlippage: defaultSlippage,
	}
}

// candidate is a composed route before final ranking.
type candidate struct {
	quoteID       string
	steps         []models.RouteStep
	cost          decimal.Decimal
	costUnit      string
	estimatedTime int
	gas           models.GasEstimate
}

// FindBestRoutes returns viable routes sorted ascending by normalized total
// cost. An empty slice means no viable route; the caller decides how to
// surface that.
func (e *Engine) FindBestRoutes(ctx context.Context, req models.QuoteRequest) ([]models.RouteInfo, error) {
	start := time.Now()
	defer func() {
		metrics.RouteDiscoveryDuration.Observe(time.Since(start).Seconds())
	}()

	if req.SlippageTolerance <= 0 {
		req.SlippageTolerance = e.defaultSlippage
	}

	if cached, ok := e.cachedRoutes(ctx, req); ok {
		return cached, nil
	}

	var candidates []candidate
	if req.FromChain == req.ToChain {
		candidates = e.sameChainCandidates(ctx, req)
	} else {
		candidates = e.crossChainCandidates(ctx, req)
	}

	// stable: equal-cost candidates keep provider insertion order
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].cost.Cmp(candidates[j].cost) < 0
	})

	now := time.Now().UTC()
	slippageBps := SlippageToBps(req.SlippageTolerance)
	routes := make([]models.RouteInfo, 0, len(candidates))
	for _, cand := range candidates {
		routes = append(routes, models.RouteInfo{
			ID:                uuid.NewString(),
			ProviderQuoteID:   cand.quoteID,
			Steps:             applyMinOutputs(cand.steps, slippageBps),
			TotalCost:         cand.cost.String(),
			CostUnit:          cand.costUnit,
			EstimatedTime:     cand.estimatedTime,
			SlippageTolerance: req.SlippageTolerance,
			GasEstimate:       cand.gas,
			CreatedAt:         now,
			ExpiresAt:         now.Add(e.validity),
		})
	}

	metrics.RoutesFound.Observe(float64(len(routes)))
	routingLog.Info().
		Str("fromChain", req.FromChain).
		Str("toChain", req.ToChain).
		Int("routes", len(routes)).
		Dur("elapsed", time.Since(start)).
		Msg("route discovery finished")

	if len(routes) > 0 {
		e.storeRoutes(ctx, req, routes)
	}
	return routes, nil
}

// sameChainCandidates queries every swap provider serving the chain in
// parallel. A provider failure only removes its own contribution.
func (e *Engine) sameChainCandidates(ctx context.Context, req models.QuoteRequest) []candidate {
	quotes := e.fanOut(ctx, models.StepTypeSwap, req, req)
	candidates := make([]candidate, 0, len(quotes))
	for _, quote := range quotes {
		candidates = append(candidates, e.toCandidate(quote))
	}
	return candidates
}

// fanOut queries every provider of the given kind serving pairReq's chain
// pair in parallel, with queryReq as the actual quote request. Results keep
// provider registration order so equal-cost ranking stays deterministic.
func (e *Engine) fanOut(ctx context.Context, kind models.StepType, pairReq, queryReq models.QuoteRequest) []RawQuote {
	var selected []QuoteProvider
	for _, provider := range e.providers {
		if provider.Kind() == kind && provider.Supports(pairReq.FromChain, pairReq.ToChain) {
			selected = append(selected, provider)
		}
	}

	results := make([][]RawQuote, len(selected))
	var wg sync.WaitGroup
	for i, provider := range selected {
		wg.Add(1)
		go func(slot int, p QuoteProvider) {
			defer wg.Done()
			results[slot] = e.queryProvider(ctx, p, queryReq)
		}(i, provider)
	}
	wg.Wait()

	var quotes []RawQuote
	for _, r := range results {
		quotes = append(quotes, r...)
	}
	return quotes
}

// crossChainCandidates builds one candidate per bridge provider: an optional
// leading swap converting fromToken to toToken on the source chain, then the
// bridge hop. The swap's estimated output feeds the bridge input.
func (e *Engine) crossChainCandidates(ctx context.Context, req models.QuoteRequest) []candidate {
	bridgeAmount := req.Amount
	var lead *candidate

	if req.FromToken != req.ToToken {
		swapReq := models.QuoteRequest{
			FromChain:         req.FromChain,
			ToChain:           req.FromChain,
			FromToken:         req.FromToken,
			ToToken:           req.ToToken,
			Amount:            req.Amount,
			SlippageTolerance: req.SlippageTolerance,
		}
		swaps := e.sameChainCandidates(ctx, swapReq)
		if len(swaps) == 0 {
			routingLog.Warn().
				Str("fromChain", req.FromChain).
				Str("fromToken", req.FromToken).
				Msg("no swap available for cross-chain conversion leg")
			return nil
		}
		best := swaps[0]
		for _, s := range swaps[1:] {
			if s.cost.Cmp(best.cost) < 0 {
				best = s
			}
		}
		lead = &best
		bridgeAmount = best.steps[len(best.steps)-1].EstimatedOutput
	}

	bridgeReq := models.QuoteRequest{
		FromChain:         req.FromChain,
		ToChain:           req.ToChain,
		FromToken:         req.ToToken,
		ToToken:           req.ToToken,
		Amount:            bridgeAmount,
		SlippageTolerance: req.SlippageTolerance,
	}

	quotes := e.fanOut(ctx, models.StepTypeBridge, req, bridgeReq)
	candidates := make([]candidate, 0, len(quotes))
	for _, quote := range quotes {
		candidates = append(candidates, e.compose(lead, quote))
	}
	return candidates
}

// queryProvider runs one provider query under the per-provider timeout and
// isolates failures.
func (e *Engine) queryProvider(ctx context.Context, p QuoteProvider, req models.QuoteRequest) []RawQuote {
	queryCtx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	start := time.Now()
	quotes, err := p.Quote(queryCtx, req)
	metrics.ProviderQuoteDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderErrors.WithLabelValues(p.Name()).Inc()
		routingLog.Warn().Err(err).Str("provider", p.Name()).
			Msg("provider query failed, continuing without it")
		return nil
	}
	return quotes
}

// toCandidate normalizes a raw quote's cost into the reference unit. Quotes
// with no known conversion rate keep their native total and are flagged
// through costUnit.
func (e *Engine) toCandidate(quote RawQuote) candidate {
	cost, unit := e.normalize(quote.TotalCost, quote.CostCurrency)
	return candidate{
		quoteID:       quote.QuoteID,
		steps:         quote.Steps,
		cost:          cost,
		costUnit:      unit,
		estimatedTime: quote.EstimatedTime,
		gas:           quote.GasEstimate,
	}
}

// compose joins an optional leading swap candidate with a bridge quote.
func (e *Engine) compose(lead *candidate, bridge RawQuote) candidate {
	composed := e.toCandidate(bridge)
	if lead == nil {
		return composed
	}
	steps := make([]models.RouteStep, 0, len(lead.steps)+len(composed.steps))
	steps = append(steps, lead.steps...)
	steps = append(steps, composed.steps...)
	composed.steps = steps
	composed.cost = composed.cost.Add(lead.cost)
	composed.estimatedTime += lead.estimatedTime
	if lead.costUnit != composed.costUnit {
		// mixed units cannot claim the reference unit
		composed.costUnit = ""
	}
	return composed
}

// applyMinOutputs stamps each step with the minimum acceptable output under
// the route's slippage tolerance. Steps whose estimated output cannot be
// parsed keep an empty MinOutput.
func applyMinOutputs(steps []models.RouteStep, slippageBps uint32) []models.RouteStep {
	stamped := make([]models.RouteStep, len(steps))
	copy(stamped, steps)
	for i := range stamped {
		min, err := CalculateMinOutput(stamped[i].EstimatedOutput, slippageBps)
		if err != nil {
			routingLog.Warn().Err(err).Str("provider", stamped[i].Provider).
				Msg("could not derive minimum output for step")
			continue
		}
		stamped[i].MinOutput = min
	}
	return stamped
}

func (e *Engine) normalize(total decimal.Decimal, currency string) (decimal.Decimal, string) {
	if rate, ok := e.prices.Rate(currency); ok {
		return total.Mul(rate), e.prices.Unit()
	}
	return total, currency
}

func (e *Engine) cachedRoutes(ctx context.Context, req models.QuoteRequest) ([]models.RouteInfo, bool) {
	if e.cache == nil {
		return nil, false
	}
	var routes []models.RouteInfo
	found, err := e.cache.GetJSON(ctx, quoteCacheKey(req), &routes)
	if err != nil {
		routingLog.Warn().Err(err).Msg("quote cache lookup failed")
		return nil, false
	}
	if !found || len(routes) == 0 || routes[0].Expired(time.Now().UTC()) {
		metrics.QuoteCacheHits.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.QuoteCacheHits.WithLabelValues("hit").Inc()
	return routes, true
}

func (e *Engine) storeRoutes(ctx context.Context, req models.QuoteRequest, routes []models.RouteInfo) {
	if e.cache == nil {
		return
	}
	if err := e.cache.SetJSON(ctx, quoteCacheKey(req), routes, e.cacheTTL); err != nil {
		routingLog.Warn().Err(err).Msg("quote cache store failed")
	}
}

func quoteCacheKey(req models.QuoteRequest) string {
	return fmt.Sprintf("quotes:%s:%s:%s:%s:%s",
		req.FromChain, req.ToChain, req.FromToken, req.ToToken, req.Amount)
}
