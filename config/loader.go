// Package config loads the orchestrator TOML configuration with environment
// overrides for secrets and endpoint URLs.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// FileReader defines the interface for reading files
type FileReader interface {
	// ReadFile reads the file at the given path and returns the contents
	ReadFile(path string) ([]byte, error)
}

// DefaultFileReader implements FileReader using os.ReadFile
type DefaultFileReader struct{}

func (d *DefaultFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader wraps a FileReader to provide dependency injection for config loading
type Loader struct {
	fileReader FileReader
}

// NewLoader creates a new Loader with the given FileReader
func NewLoader(fileReader FileReader) *Loader {
	return &Loader{fileReader: fileReader}
}

// NewDefaultLoader creates a Loader with the default file reader
func NewDefaultLoader() *Loader {
	return NewLoader(&DefaultFileReader{})
}

// Load reads and unmarshals the config at configPath, applies environment
// overrides and fills defaults.
func (l *Loader) Load(configPath string) (*OrchestratorConfig, error) {
	if !strings.HasSuffix(configPath, ".toml") {
		return nil, fmt.Errorf("config file must be a toml file")
	}
	body, err := l.fileReader.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg OrchestratorConfig
	if err := toml.Unmarshal(body, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *OrchestratorConfig) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.RequestTimeoutSeconds == 0 {
		cfg.Server.RequestTimeoutSeconds = 60
	}
	if cfg.Routing.ValidityWindowSeconds == 0 {
		cfg.Routing.ValidityWindowSeconds = 300
	}
	if cfg.Routing.QueryTimeoutSeconds == 0 {
		cfg.Routing.QueryTimeoutSeconds = 10
	}
	if cfg.Routing.DefaultSlippage == 0 {
		cfg.Routing.DefaultSlippage = 0.005
	}
	if cfg.Redis.TTLSeconds == 0 {
		cfg.Redis.TTLSeconds = 300
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "griffin-orchestrator"
	}
	if cfg.Telemetry.ServiceVersion == "" {
		cfg.Telemetry.ServiceVersion = "0.1.0"
	}
}

func validate(cfg *OrchestratorConfig) error {
	if len(cfg.Chains) == 0 {
		return fmt.Errorf("no chains configured")
	}
	seen := make(map[string]bool, len(cfg.Chains))
	for _, chain := range cfg.Chains {
		if chain.ID == "" {
			return fmt.Errorf("chain with empty id")
		}
		if !strings.Contains(chain.ID, ":") {
			return fmt.Errorf("chain id %q is not namespaced (expected family:network)", chain.ID)
		}
		if seen[chain.ID] {
			return fmt.Errorf("duplicate chain id %q", chain.ID)
		}
		seen[chain.ID] = true
	}
	if cfg.Routing.DefaultSlippage < 0 || cfg.Routing.DefaultSlippage > 1 {
		return fmt.Errorf("default_slippage must be within [0, 1]")
	}
	return nil
}
