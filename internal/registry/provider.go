// Package registry owns the ordered provider list and the lookup facade the
// rest of the system calls.
package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/finfact/internal/cache"
	"github.com/ppiankov/finfact/internal/classify"
	"github.com/ppiankov/finfact/internal/model"
	"github.com/ppiankov/finfact/internal/source"
)

// MetricProvider answers a ticker+attribute query from one backing data
// source. A provider that cannot answer returns model.ErrNotFound; only
// model.ErrClassifierUnavailable is allowed to mean anything else.
type MetricProvider interface {
	// Name returns the provider name
	Name() string

	// TryFetch attempts to resolve the attribute for the ticker
	TryFetch(ctx context.Context, ticker, attributeText string) (string, error)
}

// SourceProvider composes the attribute classifier with one metric fetcher.
// Several SourceProviders may share a classifier; its memo keeps the oracle
// from being asked twice for the same phrase during fallback.
type SourceProvider struct {
	classifier *classify.Classifier
	fetcher    source.Fetcher
	results    cache.Cache // nil disables result caching
	resultTTL  time.Duration
}

// NewSourceProvider creates a provider over a classifier and a fetcher
func NewSourceProvider(classifier *classify.Classifier, fetcher source.Fetcher, results cache.Cache, resultTTL time.Duration) *SourceProvider {
	return &SourceProvider{
		classifier: classifier,
		fetcher:    fetcher,
		results:    results,
		resultTTL:  resultTTL,
	}
}

// Name returns the provider name
func (p *SourceProvider) Name() string {
	return p.fetcher.Name()
}

// TryFetch classifies the attribute and fetches the metric from the backing
// source. Formatted values are cached per (source, ticker, key).
func (p *SourceProvider) TryFetch(ctx context.Context, ticker, attributeText string) (string, error) {
	// No data source here resolves non-ticker entities; such claims belong
	// to web search
	if ticker == "" {
		return "", model.ErrNotFound
	}

	key, err := p.classifier.Classify(ctx, attributeText)
	if err != nil {
		return "", err // Keeps ErrClassifierUnavailable distinguishable
	}
	if key == model.KeyUnknown {
		return "", fmt.Errorf("attribute %q unmapped: %w", attributeText, model.ErrNotFound)
	}

	cacheKey := cache.Key(p.Name() + ":" + strings.ToUpper(ticker) + ":" + string(key))
	if p.results != nil {
		if val, found := p.results.Get(cacheKey); found {
			return string(val), nil
		}
	}

	val, err := p.fetcher.Fetch(ctx, ticker, key)
	if err != nil {
		return "", err
	}

	if p.results != nil {
		_ = p.results.Set(cacheKey, []byte(val), p.resultTTL)
	}

	return val, nil
}
