package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/finfact/internal/model"
)

// Oracle maps an attribute phrase to a raw metric key string.
// Implementations may be probabilistic (LLM-backed); the Classifier owns the
// policy that constrains and validates their answers.
type Oracle interface {
	// Name returns the oracle backend name
	Name() string

	// MapAttribute returns a single metric key string for the attribute text.
	// systemPolicy carries the priority rules and the synonym table.
	MapAttribute(ctx context.Context, systemPolicy, attributeText string) (string, error)

	// IsAvailable checks if the backend is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// Config holds oracle configuration
type Config struct {
	// Oracle backend: "rules", "openai", "anthropic", "ollama"
	Oracle string

	// Model name (backend-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g. Ollama, test servers)
	BaseURL string

	// Timeout for API requests, seconds
	Timeout int

	// MaxTokens for the response; a key name needs very few
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Oracle:    "rules",
		Timeout:   30,
		MaxTokens: 20,
	}
}

// NewOracle creates an oracle backend based on configuration.
// The rules backend is fully offline and is the default.
func NewOracle(config Config, catalog *model.Catalog) (Oracle, error) {
	switch strings.ToLower(config.Oracle) {
	case "openai":
		return NewOpenAIOracle(config)

	case "anthropic", "claude":
		return NewAnthropicOracle(config)

	case "ollama":
		return NewOllamaOracle(config)

	case "rules", "":
		return NewRulesOracle(catalog), nil

	default:
		return nil, fmt.Errorf("unknown oracle backend: %s (supported: rules, openai, anthropic, ollama)", config.Oracle)
	}
}

// ConfigFromModel converts model.ClassifierConfig to classify.Config
func ConfigFromModel(mc model.ClassifierConfig) Config {
	return Config{
		Oracle:    mc.Oracle,
		Model:     mc.Model,
		APIKey:    mc.APIKey,
		BaseURL:   mc.BaseURL,
		Timeout:   mc.Timeout,
		MaxTokens: mc.MaxTokens,
	}
}
