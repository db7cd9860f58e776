package config

import (
	"testing"

	"github.com/zeebo/assert"
)

func TestLoadGoodConfig(t *testing.T) {
	cfg, err := NewDefaultLoader().Load("testdata/good_config.toml")
	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 120, cfg.Server.RatePerMinute)

	assert.Equal(t, 300, cfg.Routing.ValidityWindowSeconds)
	assert.Equal(t, "usd", cfg.Routing.CostUnit)
	assert.Equal(t, "2000", cfg.Routing.Rates["eth"])

	assert.Equal(t, 2, len(cfg.Providers.Bridges))
	assert.Equal(t, "across", cfg.Providers.Bridges[0].Name)
	assert.Equal(t, 120, cfg.Providers.Bridges[0].EstimatedTimeSeconds)

	assert.Equal(t, 2, len(cfg.Chains))
	assert.Equal(t, "starknet:sepolia", cfg.Chains[0].ID)
	assert.Equal(t, 1, len(cfg.Chains[0].Tokens))
	assert.Equal(t, "USDC", cfg.Chains[0].Tokens[0].Symbol)
}

func TestLoadAppliesDefaults(t *testing.T) {
	reader := &stubReader{body: []byte(`
[[chains]]
id = "eip155:1"
name = "Ethereum"
symbol = "ETH"
`)}
	cfg, err := NewLoader(reader).Load("config.toml")
	assert.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 60, cfg.Server.RequestTimeoutSeconds)
	assert.Equal(t, 300, cfg.Routing.ValidityWindowSeconds)
	assert.Equal(t, 10, cfg.Routing.QueryTimeoutSeconds)
	assert.Equal(t, 0.005, cfg.Routing.DefaultSlippage)
	assert.Equal(t, "griffin-orchestrator", cfg.Telemetry.ServiceName)
}

func TestLoadRejectsBadConfigs(t *testing.T) {
	_, err := NewDefaultLoader().Load("testdata/good_config.json")
	assert.Error(t, err)

	_, err = NewDefaultLoader().Load("testdata/missing.toml")
	assert.Error(t, err)

	// chain id without a namespace prefix
	_, err = NewDefaultLoader().Load("testdata/bad_chain_config.toml")
	assert.Error(t, err)

	// no chains at all
	_, err = NewLoader(&stubReader{body: []byte(`[server]`)}).Load("config.toml")
	assert.Error(t, err)

	// out-of-range slippage
	_, err = NewLoader(&stubReader{body: []byte(`
[routing]
default_slippage = 1.5

[[chains]]
id = "eip155:1"
name = "Ethereum"
symbol = "ETH"
`)}).Load("config.toml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://override:6379/1")
	t.Setenv("AVNU_API_KEY", "secret")
	t.Setenv("STARKNET_SEPOLIA_RPC_URL", "https://rpc.example.org")

	cfg, err := NewDefaultLoader().Load("testdata/good_config.toml")
	assert.NoError(t, err)

	assert.Equal(t, "redis://override:6379/1", cfg.Redis.URL)
	assert.Equal(t, "secret", cfg.Providers.Avnu.APIKey)
	assert.Equal(t, "https://rpc.example.org", cfg.Chains[0].RPCURL)
	// unrelated chains keep their configured endpoint
	assert.Equal(t, "https://eth.example.org", cfg.Chains[1].RPCURL)
}

func TestRPCEnvKey(t *testing.T) {
	assert.Equal(t, "STARKNET_SEPOLIA_RPC_URL", rpcEnvKey("starknet:sepolia"))
	assert.Equal(t, "EIP155_1_RPC_URL", rpcEnvKey("eip155:1"))
}

// stubReader serves an in-memory config body.
type stubReader struct {
	body []byte
}

func (r *stubReader) ReadFile(path string) ([]byte, error) {
	return r.body, nil
}
