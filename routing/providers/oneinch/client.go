// Package oneinch queries the 1inch aggregation API for EVM swap quotes.
package oneinch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/griffin-labs/griffin-orchestrator/models"
	"github.com/griffin-labs/griffin-orchestrator/routing"
)

const quoteCurrency = "usd"

// Client is the 1inch quote provider for eip155 chains.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	chains     map[string]bool
}

// NewClient creates the 1inch client for the given eip155 chains.
func NewClient(baseURL, apiKey string, chains []string) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("failed to parse 1inch base URL: %w", err)
	}
	chainSet := make(map[string]bool, len(chains))
	for _, chainID := range chains {
		chainSet[chainID] = true
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		chains:     chainSet,
	}, nil
}

func (c *Client) Name() string { return "1inch" }

func (c *Client) Kind() models.StepType { return models.StepTypeSwap }

func (c *Client) Supports(fromChain, toChain string) bool {
	return fromChain == toChain && c.chains[fromChain]
}

type quoteResponse struct {
	DstAmount string `json:"dstAmount"`
	Gas       int64  `json:"gas"`
	GasPrice  string `json:"gasPrice,omitempty"`
	FeeInUsd  string `json:"feeInUsd,omitempty"`
}

// Quote fetches one swap quote for the token pair. The 1inch quote endpoint
// is keyed by the numeric chain id, the suffix of the eip155 namespace.
func (c *Client) Quote(ctx context.Context, req models.QuoteRequest) ([]routing.RawQuote, error) {
	numericID := strings.TrimPrefix(req.FromChain, "eip155:")
	fullURL := fmt.Sprintf("%s/swap/v6.0/%s/quote?src=%s&dst=%s&amount=%s&includeGas=true",
		c.baseURL,
		url.QueryEscape(numericID),
		url.QueryEscape(req.FromToken),
		url.QueryEscape(req.ToToken),
		url.QueryEscape(req.Amount),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("1inch request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("1inch returned status %d", resp.StatusCode)
	}
	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode 1inch response: %w", err)
	}

	gasFee := decimal.Zero
	if body.FeeInUsd != "" {
		if parsed, err := decimal.NewFromString(body.FeeInUsd); err == nil {
			gasFee = parsed
		}
	}

	return []routing.RawQuote{{
		Provider: c.Name(),
		Steps: []models.RouteStep{{
			Type:            models.StepTypeSwap,
			Provider:        c.Name(),
			FromChain:       req.FromChain,
			ToChain:         req.FromChain,
			FromToken:       req.FromToken,
			ToToken:         req.ToToken,
			Amount:          req.Amount,
			EstimatedOutput: body.DstAmount,
			Fees: models.FeeInfo{
				GasFee: gasFee.String(),
				Total:  gasFee.String(),
			},
		}},
		TotalCost:     gasFee,
		CostCurrency:  quoteCurrency,
		EstimatedTime: 60,
		GasEstimate: models.GasEstimate{
			GasLimit:  fmt.Sprintf("%d", body.Gas),
			GasPrice:  body.GasPrice,
			TotalCost: gasFee.String(),
		},
	}}, nil
}
