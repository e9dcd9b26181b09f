package classify

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIOracle implements the Oracle interface over OpenAI chat models
type OpenAIOracle struct {
	client *openai.Client
	config Config
}

// NewOpenAIOracle creates a new OpenAI oracle
func NewOpenAIOracle(config Config) (*OpenAIOracle, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIOracle{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the oracle backend name
func (o *OpenAIOracle) Name() string {
	return "openai"
}

// IsAvailable checks if the backend is properly configured
func (o *OpenAIOracle) IsAvailable(ctx context.Context) bool {
	_, err := o.client.ListModels(ctx)
	if err != nil {
		// Log the actual error for debugging (this helps users diagnose API key issues)
		fmt.Fprintf(os.Stderr, "OpenAI API check failed: %v\n", err)
		return false
	}
	return true
}

// MapAttribute asks the model for a single metric key name
func (o *OpenAIOracle) MapAttribute(ctx context.Context, systemPolicy, attributeText string) (string, error) {
	model := o.config.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := o.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 20
	}

	timeout := time.Duration(o.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPolicy,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: attributeText,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0, // Classification must be as deterministic as the model allows
	}

	resp, err := o.client.CreateChatCompletion(ctxWithTimeout, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
