// Package models holds the shared data model for the orchestrator: chains,
// tokens, intents, routes and transactions, plus the request/response bodies
// of the public API.
package models

import "time"

// ChainInfo describes one supported chain. The ChainId is an opaque namespaced
// string (e.g. "starknet:sepolia", "eip155:1"); the namespace prefix selects
// the chain family used for address validation, signature verification and
// quote providers.
type ChainInfo struct {
	ChainID       string `json:"chainId"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	RPCURL        string `json:"rpcUrl"`
	BlockExplorer string `json:"blockExplorer"`
	IsTestnet     bool   `json:"isTestnet"`
}

// TokenInfo describes one tradable token on a chain. Address uniqueness is
// per-chain and case-insensitive.
type TokenInfo struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
	ChainID  string `json:"chainId"`
	LogoURL  string `json:"logoUrl,omitempty"`
}

// IntentStatus is the finite lifecycle state of an Intent.
type IntentStatus string

const (
	IntentStatusPending   IntentStatus = "pending"
	IntentStatusVerified  IntentStatus = "verified"
	IntentStatusExecuting IntentStatus = "executing"
	IntentStatusCompleted IntentStatus = "completed"
	IntentStatusFailed    IntentStatus = "failed"
	IntentStatusCancelled IntentStatus = "cancelled"
)

// IsTerminal reports whether the status is a lifecycle end state. Terminal
// intents are never mutated again.
func (s IntentStatus) IsTerminal() bool {
	switch s {
	case IntentStatusCompleted, IntentStatusFailed, IntentStatusCancelled:
		return true
	}
	return false
}

// CanCancel reports whether an intent in this status may be cancelled.
func (s IntentStatus) CanCancel() bool {
	return s == IntentStatusPending || s == IntentStatusVerified
}

// Intent is a user's declared request to move/convert value. Owned exclusively
// by the intent store keyed by ID and mutated only through state-machine
// transitions; never deleted, only marked cancelled or failed.
type Intent struct {
	ID           string            `json:"id"`
	UserAddress  string            `json:"userAddress"`
	FromChain    string            `json:"fromChain"`
	ToChain      string            `json:"toChain"`
	FromToken    string            `json:"fromToken"`
	ToToken      string            `json:"toToken"`
	Amount       string            `json:"amount"`
	Recipient    string            `json:"recipient"`
	Status       IntentStatus      `json:"status"`
	Route        *RouteInfo        `json:"route,omitempty"`
	Transactions []TransactionInfo `json:"transactions"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	CompletedAt  *time.Time        `json:"completedAt,omitempty"`
	Metadata     map[string]string `json:"metadata"`
}

// StepType identifies the kind of a route step.
type StepType string

const (
	StepTypeSwap   StepType = "swap"
	StepTypeBridge StepType = "bridge"
)

// FeeInfo breaks a step's cost into its components. All fields are decimal
// strings in the provider's quote currency.
type FeeInfo struct {
	GasFee      string `json:"gasFee"`
	ProtocolFee string `json:"protocolFee,omitempty"`
	BridgeFee   string `json:"bridgeFee,omitempty"`
	ServiceFee  string `json:"serviceFee,omitempty"`
	Total       string `json:"total"`
}

// GasEstimate carries the gas projection for a route.
type GasEstimate struct {
	GasLimit    string `json:"gasLimit,omitempty"`
	GasPrice    string `json:"gasPrice"`
	ServiceCost string `json:"serviceCost,omitempty"`
	TotalCost   string `json:"totalCost"`
}

// RouteStep is one hop of a route. Steps are ordered: the estimated output of
// step i becomes the input amount of step i+1.
type RouteStep struct {
	Type            StepType `json:"type"`
	Provider        string   `json:"provider"`
	FromChain       string   `json:"fromChain"`
	ToChain         string   `json:"toChain"`
	FromToken       string   `json:"fromToken"`
	ToToken         string   `json:"toToken"`
	Amount          string   `json:"amount"`
	EstimatedOutput string   `json:"estimatedOutput"`
	// Minimum acceptable output after applying the route's slippage
	// tolerance to EstimatedOutput.
	MinOutput string  `json:"minOutput,omitempty"`
	Fees      FeeInfo `json:"fees"`
}

// RouteInfo is an executable plan for an intent: an ordered, non-empty step
// sequence with a normalized total cost and a validity window. A route must
// not be applied to an intent after ExpiresAt.
type RouteInfo struct {
	ID                string      `json:"id"`
	ProviderQuoteID   string      `json:"providerQuoteId,omitempty"`
	Steps             []RouteStep `json:"steps"`
	TotalCost         string      `json:"totalCost"`
	CostUnit          string      `json:"costUnit,omitempty"`
	EstimatedTime     int         `json:"estimatedTime"`
	SlippageTolerance float64     `json:"slippageTolerance"`
	GasEstimate       GasEstimate `json:"gasEstimate"`
	CreatedAt         time.Time   `json:"createdAt"`
	ExpiresAt         time.Time   `json:"expiresAt"`
}

// Expired reports whether the route's validity window has passed.
func (r *RouteInfo) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// TransactionStatus tracks a submitted transaction. Statuses only advance
// pending -> submitted -> {confirmed, failed}.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusSubmitted TransactionStatus = "submitted"
	TransactionStatusConfirmed TransactionStatus = "confirmed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// TransactionInfo records one on-chain transaction produced while executing
// an intent. Records are appended as execution progresses; only status and
// timestamps advance, nothing is rewritten retroactively.
type TransactionInfo struct {
	ID            string            `json:"id"`
	IntentID      string            `json:"intentId"`
	ChainID       string            `json:"chainId"`
	Hash          string            `json:"hash,omitempty"`
	Status        TransactionStatus `json:"status"`
	Type          StepType          `json:"type"`
	GasUsed       string            `json:"gasUsed,omitempty"`
	GasPrice      string            `json:"gasPrice,omitempty"`
	BlockNumber   uint64            `json:"blockNumber,omitempty"`
	Confirmations int               `json:"confirmations"`
	CreatedAt     time.Time         `json:"createdAt"`
	SubmittedAt   *time.Time        `json:"submittedAt,omitempty"`
	ConfirmedAt   *time.Time        `json:"confirmedAt,omitempty"`
	FailureReason string            `json:"failureReason,omitempty"`
}
