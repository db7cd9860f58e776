package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/griffin-labs/griffin-orchestrator/api"
	"github.com/griffin-labs/griffin-orchestrator/cache"
	"github.com/griffin-labs/griffin-orchestrator/config"
	"github.com/griffin-labs/griffin-orchestrator/execution"
	"github.com/griffin-labs/griffin-orchestrator/family"
	"github.com/griffin-labs/griffin-orchestrator/family/eip155"
	"github.com/griffin-labs/griffin-orchestrator/family/starknet"
	"github.com/griffin-labs/griffin-orchestrator/health"
	"github.com/griffin-labs/griffin-orchestrator/intent"
	"github.com/griffin-labs/griffin-orchestrator/models"
	"github.com/griffin-labs/griffin-orchestrator/registry"
	"github.com/griffin-labs/griffin-orchestrator/routing"
	"github.com/griffin-labs/griffin-orchestrator/routing/providers/avnu"
	"github.com/griffin-labs/griffin-orchestrator/routing/providers/bridge"
	"github.com/griffin-labs/griffin-orchestrator/routing/providers/oneinch"
)

var log zerolog.Logger

func init() {
	// Initialize zerolog with console writer
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log = zerolog.New(out).With().Timestamp().Logger()

	// Share the logger with the other packages
	api.SetLogger(log)
	intent.SetLogger(log.With().Str("component", "intent").Logger())
	routing.SetLogger(log.With().Str("component", "routing").Logger())
	execution.SetLogger(log.With().Str("component", "execution").Logger())
}

func main() {
	configPath := flag.String("config", "./orchestrator.toml", "config file for the orchestrator")
	flag.Parse()

	config.LoadDotEnv()

	log.Info().Str("config", *configPath).Msg("Starting Griffin Orchestrator")

	cfg, err := config.NewDefaultLoader().Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Chain registry and token catalog
	chains := make([]models.ChainInfo, 0, len(cfg.Chains))
	for _, chain := range cfg.Chains {
		chains = append(chains, models.ChainInfo{
			ChainID:       chain.ID,
			Name:          chain.Name,
			Symbol:        chain.Symbol,
			RPCURL:        chain.RPCURL,
			BlockExplorer: chain.BlockExplorer,
			IsTestnet:     chain.Testnet,
		})
	}
	reg := registry.NewChainRegistry(chains)

	for _, chain := range cfg.Chains {
		if len(chain.Tokens) > 0 {
			tokens := make([]models.TokenInfo, 0, len(chain.Tokens))
			for _, token := range chain.Tokens {
				tokens = append(tokens, models.TokenInfo{
					Address:  token.Address,
					Symbol:   token.Symbol,
					Name:     token.Name,
					Decimals: token.Decimals,
					ChainID:  chain.ID,
					LogoURL:  token.LogoURL,
				})
			}
			reg.AddTokenSource(chain.ID, registry.NewStaticSource(tokens))
		}
		if chain.TokenListURL != "" {
			dst := os.TempDir() + "/griffin-token-lists/" + chain.ID
			reg.AddTokenSource(chain.ID, registry.NewGitSource(chain.TokenListURL, dst))
		}
	}

	// Quote providers
	var providers []routing.QuoteProvider

	var avnuClient *avnu.Client
	if cfg.Providers.Avnu.BaseURL != "" {
		avnuClient, err = avnu.NewClient(cfg.Providers.Avnu.BaseURL,
			cfg.Providers.Avnu.APIKey, cfg.Providers.Avnu.Chains)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create AVNU client")
		}
		providers = append(providers, avnuClient)
		for _, chainID := range cfg.Providers.Avnu.Chains {
			reg.AddTokenSource(chainID, registry.NewFetcherSource("avnu", avnuClient))
		}
		log.Info().Str("url", cfg.Providers.Avnu.BaseURL).Msg("AVNU provider initialized")
	}

	if cfg.Providers.OneInch.BaseURL != "" {
		oneInchClient, err := oneinch.NewClient(cfg.Providers.OneInch.BaseURL,
			cfg.Providers.OneInch.APIKey, cfg.Providers.OneInch.Chains)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create 1inch client")
		}
		providers = append(providers, oneInchClient)
		log.Info().Str("url", cfg.Providers.OneInch.BaseURL).Msg("1inch provider initialized")
	}

	for _, bridgeCfg := range cfg.Providers.Bridges {
		bridgeProvider, err := bridge.NewProvider(bridgeCfg)
		if err != nil {
			log.Fatal().Err(err).Str("bridge", bridgeCfg.Name).Msg("Failed to create bridge provider")
		}
		providers = append(providers, bridgeProvider)
	}
	log.Info().Int("count", len(providers)).Msg("Quote providers initialized")

	// Populate the token catalog before serving traffic
	populateCtx, populateCancel := context.WithTimeout(ctx, 2*time.Minute)
	if err := reg.Populate(populateCtx); err != nil {
		populateCancel()
		log.Fatal().Err(err).Msg("Failed to populate chain registry")
	}
	populateCancel()
	log.Info().Int("chains", len(reg.GetSupportedChains())).Msg("Chain registry populated")

	// Quote cache
	var quoteCache routing.QuoteCache
	var redisCache *cache.Redis
	if cfg.Redis.URL != "" {
		redisCache, err = cache.NewRedis(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		quoteCache = redisCache
		log.Info().Msg("Quote cache enabled")
	}

	// Route discovery engine
	prices := routing.NewStaticPriceSource(cfg.Routing.CostUnit, cfg.Routing.Rates)
	engine := routing.NewEngine(
		providers,
		prices,
		quoteCache,
		time.Duration(cfg.Routing.ValidityWindowSeconds)*time.Second,
		time.Duration(cfg.Redis.TTLSeconds)*time.Second,
		time.Duration(cfg.Routing.QueryTimeoutSeconds)*time.Second,
		cfg.Routing.DefaultSlippage,
	)

	// Chain families
	starknetRPCs := make(map[string]string)
	for _, chain := range cfg.Chains {
		if family.Tag(chain.ID) == "starknet" {
			starknetRPCs[chain.ID] = chain.RPCURL
		}
	}
	families := family.NewRegistry()
	snFamily := starknet.New(starknetRPCs)
	families.Register("starknet", family.Capabilities{Addresses: snFamily, Signatures: snFamily})
	evmFamily := eip155.New()
	families.Register("eip155", family.Capabilities{Addresses: evmFamily, Signatures: evmFamily})

	// Intent lifecycle
	store := intent.NewMemoryStore()
	dispatcher := execution.NewAsyncDispatcher(store, execution.NoopExecutor{}, 60*time.Second)
	intents := intent.NewService(store, reg, families, engine, dispatcher, cfg.Routing.DefaultSlippage)

	// Health probes
	checker := health.NewChecker(5 * time.Second)
	probeClient := &http.Client{Timeout: 5 * time.Second}
	if redisCache != nil {
		checker.Register("cache", true, health.PingCheck(redisCache))
	}
	for _, chain := range cfg.Chains {
		if chain.RPCURL != "" {
			checker.Register("rpc:"+chain.ID, false, health.HTTPCheck(probeClient, chain.RPCURL))
		}
	}
	if cfg.Providers.Avnu.BaseURL != "" {
		checker.Register("provider:avnu", false, health.HTTPCheck(probeClient, cfg.Providers.Avnu.BaseURL))
	}
	if cfg.Providers.OneInch.BaseURL != "" {
		checker.Register("provider:1inch", false, health.HTTPCheck(probeClient, cfg.Providers.OneInch.BaseURL))
	}

	// HTTP server
	handlers := api.NewHandlers(intents, engine, reg, checker)
	server, err := api.NewServer(ctx, cfg, handlers, reg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create API server")
	}

	// Setup signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Server error")
			sigCh <- syscall.SIGTERM
		}
	}()

	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}

	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing redis")
		}
	}
}
