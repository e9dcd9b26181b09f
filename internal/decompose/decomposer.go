// Package decompose splits free text into atomic, verifiable claims that
// the lookup pipeline can answer one at a time.
package decompose

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ppiankov/finfact/internal/model"
	"github.com/sashabaranov/go-openai"
)

// Config holds decomposer configuration
type Config struct {
	Model   string
	APIKey  string
	BaseURL string
	Timeout int // seconds
}

// Decomposer extracts atomic claims via OpenAI function calling
type Decomposer struct {
	client *openai.Client
	config Config
}

const extractFunctionName = "extract_atomic_claims"

// claimsSchema is the JSON schema for the extraction function
var claimsSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "claims": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "target": {
            "type": "string",
            "description": "The subject entity (e.g. 'Tesla', 'US GDP')"
          },
          "ticker": {
            "type": "string",
            "description": "The stock ticker if public (e.g. 'TSLA'). Empty string if private."
          },
          "attribute": {
            "type": "string",
            "description": "The specific property being claimed (e.g. 'Q3 Revenue', 'Stock Price')"
          },
          "claimed_value": {
            "type": "string",
            "description": "The value stated in the text (e.g. '+5%', '$150')"
          }
        },
        "required": ["target", "ticker", "attribute", "claimed_value"]
      }
    }
  },
  "required": ["claims"]
}`)

// NewDecomposer creates a new decomposer
func NewDecomposer(config Config) (*Decomposer, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &Decomposer{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Decompose breaks the statement into atomic claims, extracting tickers for
// public companies so the data providers can be consulted
func (d *Decomposer) Decompose(ctx context.Context, text string) ([]model.Claim, error) {
	modelName := d.config.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	timeout := time.Duration(d.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are The Fact Decomposer. Isolate verifiable units of information. Always extract the stock ticker for public companies so the data providers can be consulted.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		Tools: []openai.Tool{
			{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        extractFunctionName,
					Description: "Breaks complex text into isolated, verifiable atomic claims. Extracts tickers for public companies.",
					Parameters:  claimsSchema,
				},
			},
		},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: extractFunctionName},
		},
	}

	resp, err := d.client.CreateChatCompletion(ctxWithTimeout, req)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("no tool call in decomposer response")
	}

	var parsed struct {
		Claims []model.Claim `json:"claims"`
	}
	args := resp.Choices[0].Message.ToolCalls[0].Function.Arguments
	if err := json.Unmarshal([]byte(args), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal claims: %w", err)
	}

	return parsed.Claims, nil
}
