package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppiankov/finfact/internal/model"
)

func testConfigs(serverURL string) (model.HTTPConfig, model.SearchConfig) {
	cfg := model.DefaultConfig()
	search := cfg.Search
	search.BaseURL = serverURL
	search.APIKey = "test-key"
	return cfg.HTTP, search
}

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("expected path /search, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}

		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.APIKey != "test-key" {
			t.Errorf("expected api_key test-key, got %s", req.APIKey)
		}
		if !req.IncludeAnswer {
			t.Error("expected include_answer true")
		}
		if req.Query != "US GDP growth 2024" {
			t.Errorf("unexpected query: %s", req.Query)
		}

		_, _ = w.Write([]byte(`{
			"answer": "US GDP grew 2.8% in 2024.",
			"results": [
				{"title": "BEA release", "url": "https://example.com/gdp", "content": "GDP increased 2.8 percent"}
			]
		}`))
	}))
	defer server.Close()

	httpCfg, searchCfg := testConfigs(server.URL)
	client := NewClient(httpCfg, searchCfg, nil)

	answer, results, err := client.Search(context.Background(), "US GDP growth 2024")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if answer != "US GDP grew 2.8% in 2024." {
		t.Errorf("answer = %q", answer)
	}
	if len(results) != 1 || results[0].URL != "https://example.com/gdp" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestClient_Search_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"invalid api key"}`))
	}))
	defer server.Close()

	httpCfg, searchCfg := testConfigs(server.URL)
	client := NewClient(httpCfg, searchCfg, nil)

	_, _, err := client.Search(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestProvider_TryFetch_Answer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		// The ticker is prepended to the attribute phrase
		if req.Query != "TSLA projected deliveries" {
			t.Errorf("unexpected query: %s", req.Query)
		}

		_, _ = w.Write([]byte(`{"answer": "Analysts project 2.1M deliveries.", "results": []}`))
	}))
	defer server.Close()

	httpCfg, searchCfg := testConfigs(server.URL)
	provider := NewProvider(httpCfg, NewClient(httpCfg, searchCfg, nil))

	if provider.Name() != "websearch" {
		t.Errorf("name = %q", provider.Name())
	}

	val, err := provider.TryFetch(context.Background(), "TSLA", "projected deliveries")
	if err != nil {
		t.Fatalf("TryFetch failed: %v", err)
	}
	if val != "Analysts project 2.1M deliveries." {
		t.Errorf("value = %q", val)
	}
}

func TestProvider_TryFetch_SnippetsWhenNoAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"answer": "",
			"results": [
				{"title": "a", "url": "https://example.com/a", "content": "first snippet"},
				{"title": "b", "url": "https://example.com/b", "content": "second snippet"},
				{"title": "c", "url": "https://example.com/c", "content": "third snippet"}
			]
		}`))
	}))
	defer server.Close()

	httpCfg, searchCfg := testConfigs(server.URL)
	provider := NewProvider(httpCfg, NewClient(httpCfg, searchCfg, nil))

	// No ticker: the attribute phrase alone is the query
	val, err := provider.TryFetch(context.Background(), "", "US GDP growth 2024")
	if err != nil {
		t.Fatalf("TryFetch failed: %v", err)
	}

	// At most two snippets make the answer
	want := "first snippet\nsecond snippet"
	if val != want {
		t.Errorf("value = %q, want %q", val, want)
	}
}

func TestProvider_TryFetch_NothingFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"answer": "", "results": []}`))
	}))
	defer server.Close()

	httpCfg, searchCfg := testConfigs(server.URL)
	provider := NewProvider(httpCfg, NewClient(httpCfg, searchCfg, nil))

	_, err := provider.TryFetch(context.Background(), "GOOGL", "ceo shoe size")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPageReader_ReadText(t *testing.T) {
	pageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
		case "/public/report":
			_, _ = w.Write([]byte(`<html><head><style>body{}</style></head><body>
				<script>var x = 1;</script>
				<h1>Q4 Results</h1><p>Revenue was $62.75B.</p>
			</body></html>`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer pageServer.Close()

	cfg := model.DefaultConfig()
	reader := newPageReader(cfg.HTTP)

	text, err := reader.readText(context.Background(), pageServer.URL+"/public/report", 500)
	if err != nil {
		t.Fatalf("readText failed: %v", err)
	}
	if !strings.Contains(text, "Q4 Results") || !strings.Contains(text, "$62.75B") {
		t.Errorf("visible text missing content: %q", text)
	}
	if strings.Contains(text, "var x") || strings.Contains(text, "body{}") {
		t.Errorf("script/style leaked into text: %q", text)
	}

	// Robots disallow blocks the fetch
	if _, err := reader.readText(context.Background(), pageServer.URL+"/private/secret", 500); err == nil {
		t.Error("expected robots.txt to block /private/")
	}

	// Truncation
	text, err = reader.readText(context.Background(), pageServer.URL+"/public/report", 5)
	if err != nil {
		t.Fatalf("readText failed: %v", err)
	}
	if len(text) > 5 {
		t.Errorf("expected truncation to 5 chars, got %d", len(text))
	}
}
