package decompose

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func toolCallResponse(t *testing.T, name, arguments string) []byte {
	t.Helper()

	resp := openai.ChatCompletionResponse{
		ID:     "chatcmpl-123",
		Object: "chat.completion",
		Model:  "gpt-4o-mini",
		Choices: []openai.ChatCompletionChoice{
			{
				Message: openai.ChatCompletionMessage{
					Role: "assistant",
					ToolCalls: []openai.ToolCall{
						{
							Type: openai.ToolTypeFunction,
							Function: openai.FunctionCall{
								Name:      name,
								Arguments: arguments,
							},
						},
					},
				},
				FinishReason: "tool_calls",
			},
		},
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return data
}

func TestDecomposer_Decompose(t *testing.T) {
	args := `{"claims":[
		{"target":"Tesla","ticker":"TSLA","attribute":"revenue growth","claimed_value":"+20%"},
		{"target":"Hometown Bakery","ticker":"","attribute":"annual sales","claimed_value":"$2M"}
	]}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Tools) != 1 || req.Tools[0].Function.Name != extractFunctionName {
			t.Errorf("expected forced %s tool, got %+v", extractFunctionName, req.Tools)
		}

		_, _ = w.Write(toolCallResponse(t, extractFunctionName, args))
	}))
	defer server.Close()

	dec, err := NewDecomposer(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewDecomposer failed: %v", err)
	}

	claims, err := dec.Decompose(context.Background(), "Tesla grew revenue 20% while Hometown Bakery made $2M")
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}

	if len(claims) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(claims))
	}
	if claims[0].Ticker != "TSLA" || !claims[0].HasTicker() {
		t.Errorf("first claim should carry ticker TSLA: %+v", claims[0])
	}
	if claims[1].HasTicker() {
		t.Errorf("private entity should have no ticker: %+v", claims[1])
	}
	if claims[1].Attribute != "annual sales" {
		t.Errorf("attribute = %q", claims[1].Attribute)
	}
}

func TestDecomposer_NoToolCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "no tools here"}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	dec, err := NewDecomposer(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewDecomposer failed: %v", err)
	}

	if _, err := dec.Decompose(context.Background(), "anything"); err == nil {
		t.Error("expected error when the model skips the tool call")
	}
}

func TestNewDecomposer_RequiresKey(t *testing.T) {
	if _, err := NewDecomposer(Config{}); err == nil {
		t.Error("expected error without an API key")
	}
}
