// Package source contains the Metric Fetchers: one adapter per backing data
// source, each translating (ticker, MetricKey) into a formatted value string.
package source

import (
	"context"

	"github.com/ppiankov/finfact/internal/model"
)

// Fetcher retrieves and formats one metric from one backing data source.
// An unknown ticker or a missing dataset is an expected outcome and returns
// model.ErrNotFound; transport failures are recovered to the same error so
// the registry's fallback contract holds.
type Fetcher interface {
	// Name returns the data source name
	Name() string

	// Fetch retrieves the metric for the ticker. Precondition: key is not
	// model.KeyUnknown.
	Fetch(ctx context.Context, ticker string, key model.MetricKey) (string, error)
}
