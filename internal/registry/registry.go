package registry

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ppiankov/finfact/internal/model"
)

// Registry holds the ordered, append-only provider list and implements
// first-match-wins fallback. Providers are registered once at startup and
// the list is never mutated at call time.
type Registry struct {
	providers []MetricProvider
	logW      io.Writer // nil disables diagnostics
}

// New creates an empty registry. logW receives advisory diagnostics
// (typically os.Stderr in verbose mode); pass nil to silence them.
func New(logW io.Writer) *Registry {
	return &Registry{logW: logW}
}

// Register appends a provider to the fallback order
func (r *Registry) Register(p MetricProvider) {
	r.providers = append(r.providers, p)
}

// Names returns the registered provider names in fallback order
func (r *Registry) Names() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

// Lookup tries each provider in registration order and returns the first
// non-empty result. Providers after the first success are never invoked.
// A classifier outage on the final provider propagates distinctly so the
// caller can retry instead of concluding the value does not exist; every
// other failure degrades to fallback. Exhaustion returns model.ErrNotFound.
func (r *Registry) Lookup(ctx context.Context, ticker, attributeText string) (string, error) {
	r.logf("looking up %q for %s (%d providers)", attributeText, tickerLabel(ticker), len(r.providers))

	for i, p := range r.providers {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		val, err := p.TryFetch(ctx, ticker, attributeText)
		if err == nil && val != "" {
			r.logf("found via %s", p.Name())
			return val, nil
		}

		if err != nil {
			isLast := i == len(r.providers)-1
			if isLast && errors.Is(err, model.ErrClassifierUnavailable) {
				return "", err
			}
			r.logf("provider %s: %v", p.Name(), err)
		}
	}

	r.logf("data not found in any connected provider")
	return "", model.ErrNotFound
}

func (r *Registry) logf(format string, args ...interface{}) {
	if r.logW == nil {
		return
	}
	fmt.Fprintf(r.logW, "registry: "+format+"\n", args...)
}

func tickerLabel(ticker string) string {
	if ticker == "" {
		return "(no ticker)"
	}
	return ticker
}
