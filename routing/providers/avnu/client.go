// Package avnu queries the AVNU aggregator API for Starknet swap quotes and
// the Starknet token catalog.
package avnu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/griffin-labs/griffin-orchestrator/models"
	"github.com/griffin-labs/griffin-orchestrator/routing"
)

// quoteCurrency is the currency of every cost figure AVNU reports.
const quoteCurrency = "usd"

// Client is the AVNU quote provider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	chains     map[string]bool
	// tokens fetched from the catalog endpoint are attributed to this chain
	tokenChain string
}

// NewClient creates the AVNU client for the given chains.
func NewClient(baseURL, apiKey string, chains []string) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("failed to parse AVNU base URL: %w", err)
	}
	chainSet := make(map[string]bool, len(chains))
	for _, chainID := range chains {
		chainSet[chainID] = true
	}
	tokenChain := ""
	if len(chains) > 0 {
		tokenChain = chains[0]
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		chains:     chainSet,
		tokenChain: tokenChain,
	}, nil
}

func (c *Client) Name() string { return "avnu" }

func (c *Client) Kind() models.StepType { return models.StepTypeSwap }

func (c *Client) Supports(fromChain, toChain string) bool {
	return fromChain == toChain && c.chains[fromChain]
}

type quoteResponse struct {
	QuoteID       string  `json:"quoteId"`
	SellAmount    string  `json:"sellAmount"`
	BuyAmount     string  `json:"buyAmount"`
	GasFeesInUsd  float64 `json:"gasFeesInUsd"`
	AvnuFeesInUsd float64 `json:"avnuFeesInUsd"`
	GasPrice      string  `json:"gasPrice,omitempty"`
	EstimatedGas  string  `json:"estimatedAmount,omitempty"`
}

// Quote fetches swap quotes for the token pair. Each AVNU quote becomes one
// single-step swap candidate.
func (c *Client) Quote(ctx context.Context, req models.QuoteRequest) ([]routing.RawQuote, error) {
	fullURL := fmt.Sprintf("%s/swap/v2/quotes?sellTokenAddress=%s&buyTokenAddress=%s&sellAmount=%s&size=3",
		c.baseURL,
		url.QueryEscape(req.FromToken),
		url.QueryEscape(req.ToToken),
		url.QueryEscape(req.Amount),
	)

	var quotes []quoteResponse
	if err := c.getJSON(ctx, fullURL, &quotes); err != nil {
		return nil, err
	}

	raw := make([]routing.RawQuote, 0, len(quotes))
	for _, q := range quotes {
		gasFee := decimal.NewFromFloat(q.GasFeesInUsd)
		protocolFee := decimal.NewFromFloat(q.AvnuFeesInUsd)
		total := gasFee.Add(protocolFee)

		raw = append(raw, routing.RawQuote{
			Provider: c.Name(),
			QuoteID:  q.QuoteID,
			Steps: []models.RouteStep{{
				Type:            models.StepTypeSwap,
				Provider:        c.Name(),
				FromChain:       req.FromChain,
				ToChain:         req.FromChain,
				FromToken:       req.FromToken,
				ToToken:         req.ToToken,
				Amount:          req.Amount,
				EstimatedOutput: q.BuyAmount,
				Fees: models.FeeInfo{
					GasFee:      gasFee.String(),
					ProtocolFee: protocolFee.String(),
					Total:       total.String(),
				},
			}},
			TotalCost:     total,
			CostCurrency:  quoteCurrency,
			EstimatedTime: 60,
			GasEstimate: models.GasEstimate{
				GasPrice:  q.GasPrice,
				TotalCost: gasFee.String(),
			},
		})
	}
	return raw, nil
}

type tokenPage struct {
	Content []struct {
		Address  string `json:"address"`
		Symbol   string `json:"symbol"`
		Name     string `json:"name"`
		Decimals int    `json:"decimals"`
		LogoURI  string `json:"logoUri"`
	} `json:"content"`
	TotalPages int `json:"totalPages"`
}

// FetchTokens pulls the Starknet token catalog, paging through the endpoint.
// It satisfies the registry token fetcher contract.
func (c *Client) FetchTokens(ctx context.Context) ([]models.TokenInfo, error) {
	var tokens []models.TokenInfo
	for page := 0; ; page++ {
		fullURL := fmt.Sprintf("%s/v1/starknet/tokens?page=%d&size=100", c.baseURL, page)
		var body tokenPage
		if err := c.getJSON(ctx, fullURL, &body); err != nil {
			return nil, err
		}
		for _, t := range body.Content {
			tokens = append(tokens, models.TokenInfo{
				Address:  t.Address,
				Symbol:   t.Symbol,
				Name:     t.Name,
				Decimals: t.Decimals,
				ChainID:  c.tokenChain,
				LogoURL:  t.LogoURI,
			})
		}
		if page+1 >= body.TotalPages {
			break
		}
	}
	return tokens, nil
}

func (c *Client) getJSON(ctx context.Context, fullURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("avnu request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("avnu returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode avnu response: %w", err)
	}
	return nil
}
