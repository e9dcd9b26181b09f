package source

import (
	"fmt"
	"sort"
	"strings"
)

// Formatting helpers shared by the fetchers. Monetary values render in
// billions with two decimals; percentages are scaled by 100 with two
// decimals. %.2f rounds half to even, which all fetchers rely on.

// Dollars formats a plain dollar amount
func Dollars(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// Billions formats a monetary amount in billions, e.g. "$391.04B"
func Billions(v float64) string {
	return fmt.Sprintf("$%.2fB", v/1e9)
}

// BillionsWord formats a monetary amount in billions with the spelled-out
// unit, e.g. "$3012.45 Billion"
func BillionsWord(v float64) string {
	return fmt.Sprintf("$%.2f Billion", v/1e9)
}

// Percent formats a ratio as a percentage, e.g. 0.0044 -> "0.44%"
func Percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// GroupThousands renders an integer with comma separators, e.g. 12345678 ->
// "12,345,678"
func GroupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// SeriesPoint is one (period, value) pair of a time series
type SeriesPoint struct {
	Period string // ISO date, e.g. "2024-09-30"
	Value  float64
}

// Series renders a monetary time series sorted by period descending, e.g.
// "Annual Revenue: [2024-09-30: $391.04B, 2023-09-30: $383.29B]"
func Series(label string, points []SeriesPoint) string {
	if len(points) == 0 {
		return ""
	}

	sorted := make([]SeriesPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Period > sorted[j].Period
	})

	parts := make([]string, len(sorted))
	for i, p := range sorted {
		parts[i] = fmt.Sprintf("%s: %s", p.Period, Billions(p.Value))
	}

	return fmt.Sprintf("%s: [%s]", label, strings.Join(parts, ", "))
}
