package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// LoadDotEnv loads a .env file when present. Missing files are fine, real
// environments set variables directly.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, using environment variables")
	}
}

// applyEnvOverrides lets the environment override secrets and endpoint URLs
// so config files stay checked-in safe.
func applyEnvOverrides(cfg *OrchestratorConfig) {
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("AVNU_API_KEY"); v != "" {
		cfg.Providers.Avnu.APIKey = v
	}
	if v := os.Getenv("AVNU_BASE_URL"); v != "" {
		cfg.Providers.Avnu.BaseURL = v
	}
	if v := os.Getenv("ONEINCH_API_KEY"); v != "" {
		cfg.Providers.OneInch.APIKey = v
	}
	if v := os.Getenv("ONEINCH_BASE_URL"); v != "" {
		cfg.Providers.OneInch.BaseURL = v
	}

	// Per-chain RPC override: <FAMILY>_<NETWORK>_RPC_URL, e.g.
	// STARKNET_SEPOLIA_RPC_URL for "starknet:sepolia".
	for i := range cfg.Chains {
		key := rpcEnvKey(cfg.Chains[i].ID)
		if v := os.Getenv(key); v != "" {
			cfg.Chains[i].RPCURL = v
		}
	}
}

func rpcEnvKey(chainID string) string {
	key := strings.NewReplacer(":", "_", "-", "_").Replace(chainID)
	return strings.ToUpper(key) + "_RPC_URL"
}
