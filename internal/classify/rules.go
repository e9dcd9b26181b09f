package classify

import (
	"context"
	"strings"

	"github.com/ppiankov/finfact/internal/model"
)

// RulesOracle is the deterministic, offline oracle backend. It applies the
// same priority policy the LLM prompts describe: a temporal cue first, then
// the longest synonym match across the catalog. Ties go to catalog order.
type RulesOracle struct {
	catalog *model.Catalog
}

// NewRulesOracle creates a rules oracle over the given catalog
func NewRulesOracle(catalog *model.Catalog) *RulesOracle {
	return &RulesOracle{catalog: catalog}
}

// Name returns the oracle backend name
func (o *RulesOracle) Name() string {
	return "rules"
}

// IsAvailable always reports true; the rules oracle needs no network
func (o *RulesOracle) IsAvailable(ctx context.Context) bool {
	return true
}

// MapAttribute maps the phrase to a key by synonym matching. The key's own
// name (underscores spaced) counts as a synonym, so the bare phrase "price"
// matches the price key. The longest match wins so "net income" beats
// "income" and "target price" beats "price".
func (o *RulesOracle) MapAttribute(ctx context.Context, systemPolicy, attributeText string) (string, error) {
	lower := strings.ToLower(attributeText)

	best := model.KeyUnknown
	bestLen := 0
	match := func(key model.MetricKey, candidate string) {
		if len(candidate) > bestLen && strings.Contains(lower, candidate) {
			best = key
			bestLen = len(candidate)
		}
	}
	for _, spec := range o.catalog.Specs() {
		match(spec.Key, strings.ReplaceAll(string(spec.Key), "_", " "))
		for _, syn := range spec.Synonyms {
			match(spec.Key, syn)
		}
	}

	if best == model.KeyUnknown {
		return string(model.KeyUnknown), nil
	}

	// Temporal override, mirroring rule 1 of the policy prompt
	if HasTemporalMarker(lower) {
		if spec, err := o.catalog.Spec(best); err == nil && spec.HistoricalVariant != "" {
			best = spec.HistoricalVariant
		}
	}

	return string(best), nil
}
