package classify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/finfact/internal/cache"
	"github.com/ppiankov/finfact/internal/model"
)

// Classifier maps an attribute phrase to exactly one MetricKey. It delegates
// the text-to-key decision to an Oracle but owns the policy around it:
// validation of the answer against the closed key set, and the temporal
// override that forces the historical variant when the phrase carries a date
// cue. Results are memoized so fallback providers sharing a classifier do
// not re-ask the oracle for the same phrase.
type Classifier struct {
	oracle  Oracle
	catalog *model.Catalog
	policy  string

	memo    cache.Cache // nil disables memoization
	memoTTL time.Duration
}

// NewClassifier creates a classifier over the given oracle and catalog
func NewClassifier(oracle Oracle, catalog *model.Catalog, memo cache.Cache, memoTTL time.Duration) *Classifier {
	return &Classifier{
		oracle:  oracle,
		catalog: catalog,
		policy:  BuildPolicyPrompt(catalog),
		memo:    memo,
		memoTTL: memoTTL,
	}
}

// Classify maps the attribute phrase to a metric key. Oracle transport
// failures surface as model.ErrClassifierUnavailable, never as KeyUnknown,
// so callers can distinguish "no such metric" from "could not ask".
func (c *Classifier) Classify(ctx context.Context, attributeText string) (model.MetricKey, error) {
	return c.classify(ctx, attributeText, "")
}

// ClassifyWithHint additionally accepts a resolved timeframe (e.g. "2022")
// from the temporal resolver. A non-empty hint counts as a temporal marker
// even when the phrase itself carries none. This is the entry point for
// callers that hold a structured timeframe; the CLI instead folds the
// timeframe into the phrase text so the hint travels through the provider
// chain unchanged.
func (c *Classifier) ClassifyWithHint(ctx context.Context, attributeText, timeframe string) (model.MetricKey, error) {
	return c.classify(ctx, attributeText, timeframe)
}

func (c *Classifier) classify(ctx context.Context, attributeText, timeframe string) (model.MetricKey, error) {
	memoKey := cache.Key("classify:" + strings.ToLower(attributeText) + "|" + timeframe)
	if c.memo != nil {
		if val, found := c.memo.Get(memoKey); found {
			return model.ParseMetricKey(string(val)), nil
		}
	}

	raw, err := c.oracle.MapAttribute(ctx, c.policy, attributeText)
	if err != nil {
		return model.KeyUnknown, fmt.Errorf("%w: %v", model.ErrClassifierUnavailable, err)
	}

	// Anything outside the closed set collapses to unknown rather than
	// propagating an invalid key downstream
	key := model.ParseMetricKey(raw)

	// Temporal override: a date cue beats the topic match even when the
	// oracle picked the current-only sibling
	if key != model.KeyUnknown && (timeframe != "" || HasTemporalMarker(attributeText)) {
		if spec, err := c.catalog.Spec(key); err == nil && spec.HistoricalVariant != "" {
			key = spec.HistoricalVariant
		}
	}

	if c.memo != nil {
		_ = c.memo.Set(memoKey, []byte(key), c.memoTTL)
	}

	return key, nil
}

// OracleName returns the active oracle backend name
func (c *Classifier) OracleName() string {
	return c.oracle.Name()
}
