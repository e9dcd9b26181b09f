package model

// Claim is an atomic, verifiable assertion decomposed from free text
type Claim struct {
	Target       string `json:"target"`        // Subject entity (e.g. "Tesla", "US GDP")
	Ticker       string `json:"ticker"`        // Stock ticker if public, empty if private
	Attribute    string `json:"attribute"`     // Property being claimed (e.g. "Q3 Revenue")
	ClaimedValue string `json:"claimed_value"` // Value stated in the text (e.g. "+5%")
}

// HasTicker reports whether the claim resolves to a tradable instrument.
// Claims without a ticker cannot be answered by the data providers and are
// routed to web search instead.
func (c Claim) HasTicker() bool {
	return c.Ticker != "" && c.Ticker != "null"
}

// TimeType classifies how a temporal anchor was expressed
type TimeType string

const (
	TimeExplicitDate TimeType = "explicit_date"
	TimeImplicitEra  TimeType = "implicit_era"
	TimeRelative     TimeType = "relative_time"
	TimeTimeless     TimeType = "timeless"
)

// TimeAnchor is one resolved temporal reference within a statement
type TimeAnchor struct {
	EntityOrConcept   string   `json:"entity_or_concept"`
	TimeType          TimeType `json:"time_type"`
	InferredTimeframe string   `json:"inferred_timeframe"` // Calculated year/date, e.g. "2025"
	Reasoning         string   `json:"reasoning,omitempty"`
}

// TemporalAnalysis is the full temporal resolution of a statement
type TemporalAnalysis struct {
	TimeAnchors      []TimeAnchor `json:"time_anchors"`
	ConsistencyCheck string       `json:"consistency_check"` // "Consistent", "Conflict/Anachronism Detected", "Timeless"
	Explanation      string       `json:"explanation"`
}
