package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	getter "github.com/hashicorp/go-getter"

	"github.com/griffin-labs/griffin-orchestrator/models"
)

// StaticSource serves tokens declared directly in the config file.
type StaticSource struct {
	tokens []models.TokenInfo
}

// NewStaticSource creates a source over a fixed token list.
func NewStaticSource(tokens []models.TokenInfo) *StaticSource {
	return &StaticSource{tokens: tokens}
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) Tokens(ctx context.Context) ([]models.TokenInfo, error) {
	return s.tokens, nil
}

// TokenFetcher is implemented by provider clients that expose a token list
// endpoint (e.g. the AVNU API).
type TokenFetcher interface {
	FetchTokens(ctx context.Context) ([]models.TokenInfo, error)
}

// FetcherSource adapts a provider token endpoint into a TokenSource.
type FetcherSource struct {
	name    string
	fetcher TokenFetcher
}

// NewFetcherSource wraps a provider client's token endpoint.
func NewFetcherSource(name string, fetcher TokenFetcher) *FetcherSource {
	return &FetcherSource{name: name, fetcher: fetcher}
}

func (s *FetcherSource) Name() string { return s.name }

func (s *FetcherSource) Tokens(ctx context.Context) ([]models.TokenInfo, error) {
	return s.fetcher.FetchTokens(ctx)
}

// GitSource downloads a token list directory (JSON files) from a git
// repository and parses every *.json file in it.
type GitSource struct {
	url string
	dst string
}

// NewGitSource creates a source for a go-getter compatible URL, e.g.
// "github.com/org/token-lists//starknet".
func NewGitSource(url, dst string) *GitSource {
	return &GitSource{url: url, dst: dst}
}

func (s *GitSource) Name() string { return "git:" + s.url }

func (s *GitSource) Tokens(ctx context.Context) ([]models.TokenInfo, error) {
	deadline := time.Now().Add(120 * time.Second)
	dlCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	client := getter.Client{
		Ctx:  dlCtx,
		Src:  s.url,
		Dst:  s.dst,
		Mode: getter.ClientModeDir,
		Detectors: []getter.Detector{
			&getter.GitHubDetector{},
		},
		Getters: map[string]getter.Getter{
			"git": &getter.GitGetter{},
		},
	}
	if err := client.Get(); err != nil {
		return nil, fmt.Errorf("failed to download token list: %w", err)
	}

	return parseTokenListDir(s.dst)
}

func parseTokenListDir(dir string) ([]models.TokenInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read token list dir: %w", err)
	}

	var tokens []models.TokenInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		body, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		var fileTokens []models.TokenInfo
		if err := json.Unmarshal(body, &fileTokens); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", entry.Name(), err)
		}
		tokens = append(tokens, fileTokens...)
	}
	return tokens, nil
}
