package classify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppiankov/finfact/internal/model"
	"github.com/sashabaranov/go-openai"
)

func TestNewOracle(t *testing.T) {
	catalog := model.NewCatalog()

	tests := []struct {
		oracle  string
		apiKey  string
		name    string
		wantErr bool
	}{
		{"rules", "", "rules", false},
		{"", "", "rules", false}, // empty defaults to rules
		{"openai", "sk-test", "openai", false},
		{"openai", "", "", true}, // key required
		{"anthropic", "sk-ant-test", "anthropic", false},
		{"claude", "sk-ant-test", "anthropic", false},
		{"ollama", "", "ollama", false},
		{"bogus", "", "", true},
	}

	for _, tt := range tests {
		o, err := NewOracle(Config{Oracle: tt.oracle, APIKey: tt.apiKey}, catalog)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NewOracle(%q) expected error", tt.oracle)
			}
			continue
		}
		if err != nil {
			t.Errorf("NewOracle(%q) failed: %v", tt.oracle, err)
			continue
		}
		if o.Name() != tt.name {
			t.Errorf("NewOracle(%q).Name() = %q, want %q", tt.oracle, o.Name(), tt.name)
		}
	}
}

func TestOpenAIOracle_MapAttribute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("wrong Authorization header: %s", r.Header.Get("Authorization"))
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Temperature != 0 {
			t.Errorf("expected temperature 0, got %v", req.Temperature)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("expected system+user messages, got %+v", req.Messages)
		}

		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: " market_cap \n"}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	oracle, err := NewOpenAIOracle(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("NewOpenAIOracle failed: %v", err)
	}

	raw, err := oracle.MapAttribute(context.Background(), "policy", "company valuation")
	if err != nil {
		t.Fatalf("MapAttribute failed: %v", err)
	}
	if raw != "market_cap" {
		t.Errorf("answer = %q, want market_cap", raw)
	}
}

func TestAnthropicOracle_MapAttribute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("wrong x-api-key header: %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Error("missing anthropic-version header")
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.System == "" {
			t.Error("expected the policy in the system field")
		}

		_, _ = w.Write([]byte(`{
			"id": "msg_123",
			"type": "message",
			"role": "assistant",
			"content": [{"type": "text", "text": "dividend_yield"}],
			"model": "claude-3-5-haiku-20241022",
			"stop_reason": "end_turn"
		}`))
	}))
	defer server.Close()

	oracle, err := NewAnthropicOracle(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("NewAnthropicOracle failed: %v", err)
	}

	raw, err := oracle.MapAttribute(context.Background(), "policy", "dividend payout")
	if err != nil {
		t.Fatalf("MapAttribute failed: %v", err)
	}
	if raw != "dividend_yield" {
		t.Errorf("answer = %q, want dividend_yield", raw)
	}
}

func TestAnthropicOracle_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	oracle, err := NewAnthropicOracle(Config{APIKey: "bad-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("NewAnthropicOracle failed: %v", err)
	}

	_, err = oracle.MapAttribute(context.Background(), "policy", "stock price")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "invalid x-api-key") {
		t.Errorf("error should carry the API message, got %v", err)
	}
}

func TestOllamaOracle_MapAttribute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[{"name":"llama3.2"}]}`))
		case "/api/generate":
			var req ollamaRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if req.Stream {
				t.Error("expected stream false")
			}
			if req.Options.Temperature != 0 {
				t.Errorf("expected temperature 0, got %v", req.Options.Temperature)
			}
			_, _ = w.Write([]byte(`{"model":"llama3.2","response":"volume","done":true}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	oracle, err := NewOllamaOracle(Config{BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("NewOllamaOracle failed: %v", err)
	}

	if !oracle.IsAvailable(context.Background()) {
		t.Error("expected ollama to be available")
	}

	raw, err := oracle.MapAttribute(context.Background(), "policy", "shares traded")
	if err != nil {
		t.Fatalf("MapAttribute failed: %v", err)
	}
	if raw != "volume" {
		t.Errorf("answer = %q, want volume", raw)
	}
}
