package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ppiankov/finfact/internal/model"
)

// alphaTestServer routes by the function query parameter
func alphaTestServer(t *testing.T, bodies map[string]string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/query" {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("apikey") != "test-key" {
			t.Errorf("missing or wrong apikey: %s", r.URL.Query().Get("apikey"))
		}

		body, ok := bodies[r.URL.Query().Get("function")]
		if !ok {
			// Unknown symbols come back as an empty object, not an error
			body = `{}`
		}
		_, _ = w.Write([]byte(body))
	}))
}

func newTestAlpha(serverURL string) *Alpha {
	cfg := model.DefaultConfig()
	return NewAlpha(cfg.HTTP, serverURL, "test-key", nil)
}

func TestAlpha_Fetch_Price(t *testing.T) {
	server := alphaTestServer(t, map[string]string{
		"GLOBAL_QUOTE": `{"Global Quote":{"01. symbol":"IBM","05. price":"244.1500","06. volume":"3572160"}}`,
	})
	defer server.Close()

	a := newTestAlpha(server.URL)
	val, err := a.Fetch(context.Background(), "IBM", model.KeyPrice)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	want := "$244.15 (Current)"
	if val != want {
		t.Errorf("price = %q, want %q", val, want)
	}
}

func TestAlpha_Fetch_Volume(t *testing.T) {
	server := alphaTestServer(t, map[string]string{
		"GLOBAL_QUOTE": `{"Global Quote":{"01. symbol":"IBM","05. price":"244.1500","06. volume":"3572160"}}`,
	})
	defer server.Close()

	a := newTestAlpha(server.URL)
	val, err := a.Fetch(context.Background(), "IBM", model.KeyVolume)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	want := "Volume: 3,572,160 shares (Avg: N/A)"
	if val != want {
		t.Errorf("volume = %q, want %q", val, want)
	}
}

func TestAlpha_Fetch_Overview(t *testing.T) {
	server := alphaTestServer(t, map[string]string{
		"OVERVIEW": `{
			"Symbol":"IBM",
			"Sector":"TECHNOLOGY",
			"Industry":"COMPUTER & OFFICE EQUIPMENT",
			"MarketCapitalization":"225390000000",
			"PERatio":"37.5",
			"ForwardPE":"None",
			"DividendYield":"0.0274",
			"52WeekHigh":"266.45",
			"52WeekLow":"157.33",
			"AnalystTargetPrice":"251.00",
			"QuarterlyRevenueGrowthYOY":"0.015",
			"QuarterlyEarningsGrowthYOY":"None"
		}`,
	})
	defer server.Close()

	a := newTestAlpha(server.URL)
	ctx := context.Background()

	tests := []struct {
		key  model.MetricKey
		want string
	}{
		{model.KeyMarketCap, "$225.39 Billion (Current)"},
		{model.KeyPERatio, "Trailing P/E: 37.50 | Forward P/E: N/A"},
		{model.KeyDividendYield, "Dividend Yield: 2.74% (Payout Ratio: N/A)"},
		{model.KeyHighLow, "52-Week High: $266.45 | Low: $157.33"},
		{model.KeyCompanyInfo, "Sector: TECHNOLOGY | Industry: COMPUTER & OFFICE EQUIPMENT | Employees: N/A"},
		{model.KeyFutureEstimates, "Revenue Growth (YoY): 1.50% | Earnings Growth: N/A | Target Price: $251.00"},
	}

	for _, tt := range tests {
		val, err := a.Fetch(ctx, "IBM", tt.key)
		if err != nil {
			t.Errorf("Fetch(%s) failed: %v", tt.key, err)
			continue
		}
		if val != tt.want {
			t.Errorf("Fetch(%s) = %q, want %q", tt.key, val, tt.want)
		}
	}
}

func TestAlpha_Fetch_TotalRevenue(t *testing.T) {
	server := alphaTestServer(t, map[string]string{
		"INCOME_STATEMENT": `{
			"symbol":"IBM",
			"annualReports":[
				{"fiscalDateEnding":"2023-12-31","totalRevenue":"61860000000","netIncome":"7502000000"},
				{"fiscalDateEnding":"2024-12-31","totalRevenue":"62750000000","netIncome":"6020000000"}
			],
			"quarterlyReports":[
				{"fiscalDateEnding":"2024-12-31","totalRevenue":"17550000000","netIncome":"None"}
			]
		}`,
	})
	defer server.Close()

	a := newTestAlpha(server.URL)
	val, err := a.Fetch(context.Background(), "IBM", model.KeyTotalRevenue)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	want := "Annual Revenue: [2024-12-31: $62.75B, 2023-12-31: $61.86B] | Quarterly Revenue: [2024-12-31: $17.55B]"
	if val != want {
		t.Errorf("revenue = %q, want %q", val, want)
	}

	// The quarterly net income is "None", so only the annual series renders
	val, err = a.Fetch(context.Background(), "IBM", model.KeyNetIncome)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	want = "Annual Net Income: [2024-12-31: $6.02B, 2023-12-31: $7.50B]"
	if val != want {
		t.Errorf("net income = %q, want %q", val, want)
	}
}

func TestAlpha_Fetch_HistoricalPrice(t *testing.T) {
	server := alphaTestServer(t, map[string]string{
		"TIME_SERIES_MONTHLY": `{"Monthly Time Series":{
			"2024-12-31":{"4. close":"219.82"},
			"2024-06-28":{"4. close":"173.06"},
			"2023-12-29":{"4. close":"163.55"},
			"2022-12-30":{"4. close":"140.89"}
		}}`,
	})
	defer server.Close()

	a := newTestAlpha(server.URL)
	val, err := a.Fetch(context.Background(), "IBM", model.KeyHistoricalPrice)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	want := "Price History: [Year-End 2024: $219.82, Year-End 2023: $163.55, Year-End 2022: $140.89]"
	if val != want {
		t.Errorf("price history = %q, want %q", val, want)
	}
}

func TestAlpha_Fetch_UnsupportedMetrics(t *testing.T) {
	server := alphaTestServer(t, nil)
	defer server.Close()

	a := newTestAlpha(server.URL)

	// No Alpha Vantage dataset backs these; the registry must fall through
	for _, key := range []model.MetricKey{model.KeyFinancialHealth, model.KeyAnalystRating} {
		_, err := a.Fetch(context.Background(), "IBM", key)
		if !errors.Is(err, model.ErrNotFound) {
			t.Errorf("Fetch(%s): expected ErrNotFound, got %v", key, err)
		}
	}
}

func TestAlpha_Fetch_UnknownSymbol(t *testing.T) {
	server := alphaTestServer(t, nil) // every function returns {}
	defer server.Close()

	a := newTestAlpha(server.URL)
	_, err := a.Fetch(context.Background(), "NOPE", model.KeyPrice)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown symbol, got %v", err)
	}
}

func TestAlphaFloat(t *testing.T) {
	tests := []struct {
		in    string
		val   float64
		valid bool
	}{
		{"123.45", 123.45, true},
		{" 0.0274 ", 0.0274, true},
		{"None", 0, false},
		{"-", 0, false},
		{"", 0, false},
		{"n/a", 0, false},
	}

	for _, tt := range tests {
		val, ok := alphaFloat(tt.in)
		if ok != tt.valid || (ok && val != tt.val) {
			t.Errorf("alphaFloat(%q) = (%v, %v), want (%v, %v)", tt.in, val, ok, tt.val, tt.valid)
		}
	}
}
