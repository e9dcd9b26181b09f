package classify

import (
	"fmt"
	"strings"

	"github.com/ppiankov/finfact/internal/model"
)

// BuildPolicyPrompt constructs the system policy text for LLM-backed oracles.
// The priority rules mirror the Classifier's own post-validation: a temporal
// cue forces the historical-capable key before any topic matching happens.
func BuildPolicyPrompt(catalog *model.Catalog) string {
	var b strings.Builder

	b.WriteString(`You are a financial attribute mapper. Map user text to these exact keys.

PRIORITY RULES (follow in order):
1. TIME CHECK: Does the user mention a specific year (e.g. "2021", "2023"), a month ("March"), or words like "last year", "history", "past"?
   -> If YES and they want price, return "historical_price".
   -> If YES and they want revenue/income, return "total_revenue" or "net_income".
2. TOPIC CHECK: If no specific past time is mentioned, match the text against the list below and consider the synonyms.
   (e.g. "profitable" -> "net_income", "debt" -> "financial_health")

[
`)

	for _, spec := range catalog.Specs() {
		qualifier := ""
		switch {
		case spec.SupportsCurrent && spec.SupportsHistorical:
			qualifier = "Current AND Historical. "
		case !spec.SupportsCurrent && spec.SupportsHistorical:
			qualifier = "Historical Only. "
		case spec.Key != model.KeyPrice && spec.Key != model.KeyCompanyInfo &&
			spec.Key != model.KeyFinancialHealth && spec.Key != model.KeyAnalystRating &&
			spec.Key != model.KeyFutureEstimates:
			qualifier = "Current Only. "
		}

		quoted := make([]string, len(spec.Synonyms))
		for i, s := range spec.Synonyms {
			quoted[i] = fmt.Sprintf("%q", s)
		}
		fmt.Fprintf(&b, "  %q, (%sSynonyms: %s)\n", string(spec.Key), qualifier, strings.Join(quoted, ", "))
	}

	b.WriteString(`  "unknown"
]
RETURN ONLY THE KEY NAME.`)

	return b.String()
}
