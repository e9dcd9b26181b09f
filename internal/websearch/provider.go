package websearch

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/finfact/internal/model"
)

// Provider is the web search fallback, registered after all data providers.
// Unlike them it performs no metric classification: the attribute phrase
// becomes the query verbatim.
type Provider struct {
	client *Client
	pages  *pageReader
}

// NewProvider creates the web search provider
func NewProvider(httpCfg model.HTTPConfig, client *Client) *Provider {
	return &Provider{
		client: client,
		pages:  newPageReader(httpCfg),
	}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "websearch"
}

// TryFetch answers the query from search results. Preference order: the
// API's synthesized answer, then result content snippets, then the visible
// text of the top allowed page.
func (p *Provider) TryFetch(ctx context.Context, ticker, attributeText string) (string, error) {
	query := attributeText
	if ticker != "" {
		query = ticker + " " + attributeText
	}

	answer, results, err := p.client.Search(ctx, query)
	if err != nil {
		return "", fmt.Errorf("websearch: %q: %w", query, model.ErrNotFound)
	}

	if answer != "" {
		return answer, nil
	}

	var snippets []string
	for _, r := range results {
		if content := strings.TrimSpace(r.Content); content != "" {
			snippets = append(snippets, content)
		}
		if len(snippets) == 2 {
			break
		}
	}
	if len(snippets) > 0 {
		return strings.Join(snippets, "\n"), nil
	}

	for _, r := range results {
		text, err := p.pages.readText(ctx, r.URL, 500)
		if err != nil {
			continue
		}
		if text != "" {
			return text, nil
		}
	}

	return "", fmt.Errorf("websearch: %q: %w", query, model.ErrNotFound)
}
