package models

// CreateIntentRequest - POST /api/v1/intents body
type CreateIntentRequest struct {
	FromChain   string `json:"fromChain"`
	ToChain     string `json:"toChain"`
	FromToken   string `json:"fromToken"`
	ToToken     string `json:"toToken"`
	Amount      string `json:"amount"`
	Recipient   string `json:"recipient"`
	UserAddress string `json:"userAddress"`
	Signature   string `json:"signature,omitempty"`
	Message     string `json:"message,omitempty"`
}

// IntentResponse is the public view of an intent returned by the API.
type IntentResponse struct {
	IntentID            string            `json:"intentId"`
	Status              IntentStatus      `json:"status"`
	CreatedAt           string            `json:"createdAt"`
	EstimatedCompletion string            `json:"estimatedCompletion,omitempty"`
	Route               *RouteInfo        `json:"route,omitempty"`
	Transactions        []TransactionInfo `json:"transactions"`
}

// QuoteRequest - POST /api/v1/quotes body, also derived from an intent when
// execution starts.
type QuoteRequest struct {
	FromChain         string  `json:"fromChain"`
	ToChain           string  `json:"toChain"`
	FromToken         string  `json:"fromToken"`
	ToToken           string  `json:"toToken"`
	Amount            string  `json:"amount"`
	SlippageTolerance float64 `json:"slippageTolerance,omitempty"`
}

// QuoteResponse lists discovered routes sorted ascending by total cost.
// BestRoute is the first (cheapest) element.
type QuoteResponse struct {
	Routes    []RouteInfo `json:"routes"`
	BestRoute *RouteInfo  `json:"bestRoute,omitempty"`
	Timestamp string      `json:"timestamp"`
	ExpiresAt string      `json:"expiresAt"`
}

// ErrorBody is the uniform error envelope for every failure response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code alongside the message.
type ErrorDetail struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp string         `json:"timestamp"`
	RequestID string         `json:"requestId,omitempty"`
}
