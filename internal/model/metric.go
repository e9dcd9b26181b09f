package model

import "strings"

// MetricKey identifies a single canonical financial metric
type MetricKey string

const (
	KeyPrice           MetricKey = "price"
	KeyHistoricalPrice MetricKey = "historical_price"
	KeyMarketCap       MetricKey = "market_cap"
	KeyPERatio         MetricKey = "pe_ratio"
	KeyDividendYield   MetricKey = "dividend_yield"
	KeyVolume          MetricKey = "volume"
	KeyHighLow         MetricKey = "high_low"
	KeyCompanyInfo     MetricKey = "company_info"
	KeyFinancialHealth MetricKey = "financial_health"
	KeyAnalystRating   MetricKey = "analyst_rating"
	KeyTotalRevenue    MetricKey = "total_revenue"
	KeyNetIncome       MetricKey = "net_income"
	KeyFutureEstimates MetricKey = "future_estimates"
	KeyUnknown         MetricKey = "unknown"
)

// MetricSpec describes one canonical metric: the phrases that map to it and
// whether it has current and/or historical readings
type MetricSpec struct {
	Key                MetricKey
	Synonyms           []string
	SupportsCurrent    bool
	SupportsHistorical bool

	// HistoricalVariant is the key a temporal cue redirects to.
	// Empty for current-only metrics.
	HistoricalVariant MetricKey
}

// Catalog is the static table of metric specs. Built once at startup,
// read-only afterwards.
type Catalog struct {
	specs []MetricSpec
	byKey map[MetricKey]MetricSpec
}

// NewCatalog builds the standard metric catalog.
// Adding a metric means adding one spec here and one fetch case per source.
func NewCatalog() *Catalog {
	specs := []MetricSpec{
		{
			Key:               KeyPrice,
			Synonyms:          []string{"stock", "stock price", "current price", "value", "trading"},
			SupportsCurrent:   true,
			HistoricalVariant: KeyHistoricalPrice,
		},
		{
			Key:                KeyHistoricalPrice,
			Synonyms:           []string{"price in 2022", "value last year", "price history"},
			SupportsHistorical: true,
			HistoricalVariant:  KeyHistoricalPrice,
		},
		{
			Key:             KeyMarketCap,
			Synonyms:        []string{"market cap", "valuation", "market value", "cap"},
			SupportsCurrent: true,
		},
		{
			Key:             KeyPERatio,
			Synonyms:        []string{"p/e", "pe ratio", "price to earnings"},
			SupportsCurrent: true,
		},
		{
			Key:             KeyDividendYield,
			Synonyms:        []string{"dividend", "yield", "payout"},
			SupportsCurrent: true,
		},
		{
			Key:             KeyVolume,
			Synonyms:        []string{"trading volume", "shares traded", "volume"},
			SupportsCurrent: true,
		},
		{
			Key:             KeyHighLow,
			Synonyms:        []string{"52 week high", "52 week low", "range"},
			SupportsCurrent: true,
		},
		{
			Key:             KeyCompanyInfo,
			Synonyms:        []string{"sector", "industry", "what do they do", "profile", "employees"},
			SupportsCurrent: true,
		},
		{
			Key:             KeyFinancialHealth,
			Synonyms:        []string{"cash", "debt", "balance sheet", "safe", "liabilities"},
			SupportsCurrent: true,
		},
		{
			Key:             KeyAnalystRating,
			Synonyms:        []string{"buy or sell", "rating", "recommendation", "target price"},
			SupportsCurrent: true,
		},
		{
			Key:                KeyTotalRevenue,
			Synonyms:           []string{"sales", "revenue", "income", "how much money do they make"},
			SupportsCurrent:    true,
			SupportsHistorical: true,
			HistoricalVariant:  KeyTotalRevenue,
		},
		{
			Key:                KeyNetIncome,
			Synonyms:           []string{"profit", "earnings", "net profit", "net income", "profitable", "losing money"},
			SupportsCurrent:    true,
			SupportsHistorical: true,
			HistoricalVariant:  KeyNetIncome,
		},
		{
			Key:             KeyFutureEstimates,
			Synonyms:        []string{"forecast", "projected revenue", "future growth", "estimates", "next year"},
			SupportsCurrent: true,
		},
	}

	byKey := make(map[MetricKey]MetricSpec, len(specs))
	for _, s := range specs {
		byKey[s.Key] = s
	}

	return &Catalog{specs: specs, byKey: byKey}
}

// Specs returns all metric specs in catalog order
func (c *Catalog) Specs() []MetricSpec {
	return c.specs
}

// Spec returns the spec for a key, or ErrUnknownMetric if the key is not
// in the closed set
func (c *Catalog) Spec(key MetricKey) (MetricSpec, error) {
	spec, ok := c.byKey[key]
	if !ok {
		return MetricSpec{}, ErrUnknownMetric
	}
	return spec, nil
}

// ParseMetricKey validates a raw string (e.g. an oracle response) against the
// closed key set. Unrecognized strings map to KeyUnknown, never to an error.
func ParseMetricKey(s string) MetricKey {
	key := MetricKey(strings.ToLower(strings.TrimSpace(s)))
	switch key {
	case KeyPrice, KeyHistoricalPrice, KeyMarketCap, KeyPERatio,
		KeyDividendYield, KeyVolume, KeyHighLow, KeyCompanyInfo,
		KeyFinancialHealth, KeyAnalystRating, KeyTotalRevenue,
		KeyNetIncome, KeyFutureEstimates:
		return key
	default:
		return KeyUnknown
	}
}
