package config

// OrchestratorConfig is the root TOML configuration for the service.
type OrchestratorConfig struct {
	Server    ServerConfig    `toml:"server"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Redis     RedisConfig     `toml:"redis"`
	Routing   RoutingConfig   `toml:"routing"`
	Providers ProvidersConfig `toml:"providers"`
	Chains    []ChainConfig   `toml:"chains"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`

	// rate limiting
	RatePerMinute         int `toml:"rate_per_minute"`
	MaxConcurrentRequests int `toml:"max_concurrent_requests"`

	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`
}

// TelemetryConfig mirrors the OpenTelemetry bootstrap options.
type TelemetryConfig struct {
	ServiceName    string `toml:"service_name"`
	ServiceVersion string `toml:"service_version"`
	Environment    string `toml:"environment"` // PROD, DEV, TEST, LOCAL

	EnableTracing bool   `toml:"enable_tracing"`
	UseOTLPTraces bool   `toml:"use_otlp_traces"`
	OTLPTracesURL string `toml:"otlp_traces_url"`

	EnableMetrics  bool   `toml:"enable_metrics"`
	UsePrometheus  bool   `toml:"use_prometheus"`
	UseOTLPMetrics bool   `toml:"use_otlp_metrics"`
	OTLPMetricsURL string `toml:"otlp_metrics_url"`

	EnableLogs  bool   `toml:"enable_logs"`
	UseOTLPLogs bool   `toml:"use_otlp_logs"`
	OTLPLogsURL string `toml:"otlp_logs_url"`

	InsecureOTLP bool `toml:"insecure_otlp"`

	// Development mode uses stdout exporters
	DevelopmentMode bool `toml:"development_mode"`
}

// RedisConfig configures the quote cache. An empty URL disables caching.
type RedisConfig struct {
	URL        string `toml:"url"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

// RoutingConfig tunes the route discovery engine.
type RoutingConfig struct {
	// Route validity window, default 5 minutes.
	ValidityWindowSeconds int `toml:"validity_window_seconds"`
	// Per-provider quote query timeout.
	QueryTimeoutSeconds int `toml:"query_timeout_seconds"`
	// Default slippage tolerance when a request omits it (0..1).
	DefaultSlippage float64 `toml:"default_slippage"`
	// Reference unit every candidate cost is normalized into before ranking.
	CostUnit string `toml:"cost_unit"`
	// Static conversion rates: quote currency -> cost unit.
	Rates map[string]string `toml:"rates"`
}

// ProvidersConfig lists the configured quote providers.
type ProvidersConfig struct {
	Avnu    AvnuConfig             `toml:"avnu"`
	OneInch OneInchConfig          `toml:"oneinch"`
	Bridges []BridgeProviderConfig `toml:"bridges"`
}

// AvnuConfig configures the Starknet swap quote provider.
type AvnuConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	// Chains this provider serves (namespaced chain ids).
	Chains []string `toml:"chains"`
}

// OneInchConfig configures the EVM swap quote provider.
type OneInchConfig struct {
	BaseURL string   `toml:"base_url"`
	APIKey  string   `toml:"api_key"`
	Chains  []string `toml:"chains"`
}

// BridgeProviderConfig declares one bridge provider and its fee schedule.
// Fees are decimal strings in the provider's quote currency.
type BridgeProviderConfig struct {
	Name          string `toml:"name"`
	QuoteCurrency string `toml:"quote_currency"`
	BridgeFee     string `toml:"bridge_fee"`
	GasFee        string `toml:"gas_fee"`
	ProtocolFee   string `toml:"protocol_fee"`
	// Portion of the amount retained by the bridge (e.g. "0.01" for 1%).
	TransferFeeRate string `toml:"transfer_fee_rate"`
	// Estimated transfer time in seconds.
	EstimatedTimeSeconds int `toml:"estimated_time_seconds"`
	// Chain pairs served; empty means any cross-chain pair.
	Chains []string `toml:"chains"`
}

// ChainConfig declares one supported chain and its token catalog sources.
type ChainConfig struct {
	ID            string        `toml:"id"`
	Name          string        `toml:"name"`
	Symbol        string        `toml:"symbol"`
	RPCURL        string        `toml:"rpc_url"`
	BlockExplorer string        `toml:"block_explorer"`
	Testnet       bool          `toml:"testnet"`
	Tokens        []TokenConfig `toml:"tokens"`
	// Optional remote token list (git URL handled by go-getter).
	TokenListURL string `toml:"token_list_url"`
}

// TokenConfig declares one statically registered token.
type TokenConfig struct {
	Address  string `toml:"address"`
	Symbol   string `toml:"symbol"`
	Name     string `toml:"name"`
	Decimals int    `toml:"decimals"`
	LogoURL  string `toml:"logo_url"`
}
