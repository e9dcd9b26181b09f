package source

import "testing"

func TestDollars(t *testing.T) {
	tests := []struct {
		in       float64
		expected string
	}{
		{201.34, "$201.34"},
		{201.345, "$201.34"}, // half rounds to even
		{201.355, "$201.35"}, // binary value sits just below the half
		{0, "$0.00"},
	}

	for _, tt := range tests {
		if got := Dollars(tt.in); got != tt.expected {
			t.Errorf("Dollars(%v) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}

func TestBillions(t *testing.T) {
	if got := Billions(391_040_000_000); got != "$391.04B" {
		t.Errorf("Billions = %q, want $391.04B", got)
	}
	if got := BillionsWord(3_012_450_000_000); got != "$3012.45 Billion" {
		t.Errorf("BillionsWord = %q, want $3012.45 Billion", got)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(0.0044); got != "0.44%" {
		t.Errorf("Percent(0.0044) = %q, want 0.44%%", got)
	}
	if got := Percent(0.1567); got != "15.67%" {
		t.Errorf("Percent(0.1567) = %q, want 15.67%%", got)
	}
}

func TestGroupThousands(t *testing.T) {
	tests := []struct {
		in       int64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{12345678, "12,345,678"},
		{-54321, "-54,321"},
	}

	for _, tt := range tests {
		if got := GroupThousands(tt.in); got != tt.expected {
			t.Errorf("GroupThousands(%d) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}

func TestSeries(t *testing.T) {
	points := []SeriesPoint{
		{Period: "2023-09-30", Value: 383_290_000_000},
		{Period: "2024-09-30", Value: 391_040_000_000},
	}

	got := Series("Annual Revenue", points)
	want := "Annual Revenue: [2024-09-30: $391.04B, 2023-09-30: $383.29B]"
	if got != want {
		t.Errorf("Series = %q, want %q", got, want)
	}

	if got := Series("Annual Revenue", nil); got != "" {
		t.Errorf("empty series should render empty, got %q", got)
	}
}
