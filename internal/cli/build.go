package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ppiankov/finfact/internal/cache"
	"github.com/ppiankov/finfact/internal/classify"
	"github.com/ppiankov/finfact/internal/model"
	"github.com/ppiankov/finfact/internal/registry"
	"github.com/ppiankov/finfact/internal/source"
	"github.com/ppiankov/finfact/internal/websearch"
	"github.com/ppiankov/finfact/internal/worker"
)

// oracleAPIKey pulls the API key for the selected oracle backend from the
// environment. Keys never come from the config file.
func oracleAPIKey(cfg *model.Config) error {
	switch cfg.Classifier.Oracle {
	case "openai":
		cfg.Classifier.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Classifier.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.Classifier.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.Classifier.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.Classifier.BaseURL = baseURL
		}
	}
	return nil
}

// buildStore creates the layered lookup cache, or returns nil when caching
// is disabled
func buildStore(cfg *model.Config) cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}

	dir := cfg.Cache.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			// Memory-only fallback when no home directory exists
			return cache.NewMemory(cfg.Cache.MemoryTTL, cfg.Cache.MemoryTTL)
		}
		dir = filepath.Join(home, ".finfact", "cache")
	}

	return cache.NewLayered(cfg.Cache.MemoryTTL, dir, cfg.Cache.DiskTTL)
}

// buildRegistry assembles the provider chain in fallback order:
// Yahoo Finance, then Alpha Vantage, then web search. Disabled sources are
// skipped; order among the enabled ones is fixed.
func buildRegistry(cfg *model.Config) (*registry.Registry, error) {
	if err := oracleAPIKey(cfg); err != nil {
		return nil, err
	}

	catalog := model.NewCatalog()
	oracle, err := classify.NewOracle(classify.ConfigFromModel(cfg.Classifier), catalog)
	if err != nil {
		return nil, fmt.Errorf("create oracle: %w", err)
	}

	store := buildStore(cfg)
	classifier := classify.NewClassifier(oracle, catalog, store, cfg.Cache.MemoryTTL)
	limiter := worker.NewLimiter(cfg.HTTP.RatePerHost, cfg.HTTP.Burst)

	var logW io.Writer
	if cfg.Output.Verbose {
		logW = os.Stderr
	}
	reg := registry.New(logW)

	if cfg.Sources.Yahoo.Enabled {
		yahoo := source.NewYahoo(cfg.HTTP, cfg.Sources.Yahoo.BaseURL, limiter)
		reg.Register(registry.NewSourceProvider(classifier, yahoo, store, cfg.Cache.DiskTTL))
	}

	if cfg.Sources.Alpha.Enabled {
		if cfg.Sources.Alpha.APIKey == "" {
			cfg.Sources.Alpha.APIKey = os.Getenv("ALPHAVANTAGE_API_KEY")
		}
		if cfg.Sources.Alpha.APIKey == "" {
			return nil, fmt.Errorf("ALPHAVANTAGE_API_KEY environment variable not set")
		}
		alpha := source.NewAlpha(cfg.HTTP, cfg.Sources.Alpha.BaseURL, cfg.Sources.Alpha.APIKey, limiter)
		reg.Register(registry.NewSourceProvider(classifier, alpha, store, cfg.Cache.DiskTTL))
	}

	if cfg.Search.Enabled {
		if cfg.Search.APIKey == "" {
			cfg.Search.APIKey = os.Getenv("TAVILY_API_KEY")
		}
		if cfg.Search.APIKey == "" {
			return nil, fmt.Errorf("TAVILY_API_KEY environment variable not set")
		}
		client := websearch.NewClient(cfg.HTTP, cfg.Search, limiter)
		reg.Register(websearch.NewProvider(cfg.HTTP, client))
	}

	if len(reg.Names()) == 0 {
		return nil, fmt.Errorf("no data providers enabled")
	}

	return reg, nil
}
