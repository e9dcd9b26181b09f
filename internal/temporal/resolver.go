// Package temporal resolves relative and implicit time references in a
// statement against today's date. Its output can strengthen the classifier's
// temporal override as an optional hint.
package temporal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ppiankov/finfact/internal/model"
	"github.com/sashabaranov/go-openai"
)

// Config holds resolver configuration
type Config struct {
	Model   string
	APIKey  string
	BaseURL string
	Timeout int // seconds
}

// Resolver extracts temporal anchors via OpenAI function calling
type Resolver struct {
	client *openai.Client
	config Config
	now    func() time.Time // Injectable for tests
}

const temporalFunctionName = "extract_temporal_logic"

var temporalSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "time_anchors": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "entity_or_concept": {"type": "string"},
          "time_type": {
            "type": "string",
            "enum": ["explicit_date", "implicit_era", "relative_time", "timeless"]
          },
          "inferred_timeframe": {
            "type": "string",
            "description": "The calculated year/date. E.g. if today is 2026 and the user says 'last year', return '2025'."
          },
          "reasoning": {"type": "string"}
        },
        "required": ["entity_or_concept", "time_type", "inferred_timeframe"]
      }
    },
    "consistency_check": {
      "type": "string",
      "enum": ["Consistent", "Conflict/Anachronism Detected", "Timeless"]
    },
    "explanation": {"type": "string"}
  },
  "required": ["time_anchors", "consistency_check", "explanation"]
}`)

// NewResolver creates a new temporal resolver
func NewResolver(config Config) (*Resolver, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &Resolver{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		now:    time.Now,
	}, nil
}

// Resolve extracts and resolves the temporal anchors in the statement
func (r *Resolver) Resolve(ctx context.Context, text string) (*model.TemporalAnalysis, error) {
	modelName := r.config.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	timeout := time.Duration(r.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	today := r.now().Format("2006-01-02")
	system := fmt.Sprintf("You are a Temporal Reasoning Engine. CRITICAL CONTEXT: Today's date is %s. All relative dates (like 'last year', 'recent', 'next month') MUST be calculated relative to this date.", today)

	req := openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: system,
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
					Name:        temporalFunctionName,
					Description: "Extracts explicit dates, infers implicit eras, and resolves relative time.",
					Parameters:  temporalSchema,
				},
			},
		},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: temporalFunctionName},
		},
	}

	resp, err := r.client.CreateChatCompletion(ctxWithTimeout, req)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("no tool call in temporal response")
	}

	var analysis model.TemporalAnalysis
	args := resp.Choices[0].Message.ToolCalls[0].Function.Arguments
	if err := json.Unmarshal([]byte(args), &analysis); err != nil {
		return nil, fmt.Errorf("unmarshal temporal analysis: %w", err)
	}

	return &analysis, nil
}

// TimeframeFor returns the inferred timeframe matching the concept, or the
// first dated anchor when nothing matches. Timeless anchors never produce
// a timeframe.
func TimeframeFor(analysis *model.TemporalAnalysis, concept string) string {
	if analysis == nil {
		return ""
	}

	var first string
	for _, anchor := range analysis.TimeAnchors {
		if anchor.TimeType == model.TimeTimeless {
			continue
		}
		if first == "" {
			first = anchor.InferredTimeframe
		}
		if anchor.EntityOrConcept == concept {
			return anchor.InferredTimeframe
		}
	}
	return first
}
