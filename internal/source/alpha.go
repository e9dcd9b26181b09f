package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/finfact/internal/model"
	"github.com/ppiankov/finfact/internal/util"
	"github.com/ppiankov/finfact/internal/worker"
)

const defaultAlphaBaseURL = "https://www.alphavantage.co"

// Alpha fetches metrics from the Alpha Vantage API. It backs the second
// provider in the fallback order and answers a subset of the catalog;
// metrics it cannot serve return model.ErrNotFound so the registry moves on.
type Alpha struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxBytes   int64
	limiter    *worker.Limiter
}

// Alpha Vantage response structures. All numeric fields arrive as strings.

type alphaGlobalQuoteResponse struct {
	GlobalQuote alphaGlobalQuote `json:"Global Quote"`
}

type alphaGlobalQuote struct {
	Symbol string `json:"01. symbol"`
	Price  string `json:"05. price"`
	Volume string `json:"06. volume"`
}

type alphaOverview struct {
	Symbol                     string `json:"Symbol"`
	Sector                     string `json:"Sector"`
	Industry                   string `json:"Industry"`
	MarketCapitalization       string `json:"MarketCapitalization"`
	PERatio                    string `json:"PERatio"`
	ForwardPE                  string `json:"ForwardPE"`
	DividendYield              string `json:"DividendYield"`
	FiftyTwoWeekHigh           string `json:"52WeekHigh"`
	FiftyTwoWeekLow            string `json:"52WeekLow"`
	AnalystTargetPrice         string `json:"AnalystTargetPrice"`
	QuarterlyRevenueGrowthYOY  string `json:"QuarterlyRevenueGrowthYOY"`
	QuarterlyEarningsGrowthYOY string `json:"QuarterlyEarningsGrowthYOY"`
}

type alphaIncomeResponse struct {
	Symbol           string              `json:"symbol"`
	AnnualReports    []alphaIncomeReport `json:"annualReports"`
	QuarterlyReports []alphaIncomeReport `json:"quarterlyReports"`
}

type alphaIncomeReport struct {
	FiscalDateEnding string `json:"fiscalDateEnding"`
	TotalRevenue     string `json:"totalRevenue"`
	NetIncome        string `json:"netIncome"`
}

type alphaMonthlyResponse struct {
	Series map[string]alphaMonthlyBar `json:"Monthly Time Series"`
}

type alphaMonthlyBar struct {
	Close string `json:"4. close"`
}

// NewAlpha creates an Alpha Vantage fetcher
func NewAlpha(httpCfg model.HTTPConfig, baseURL, apiKey string, limiter *worker.Limiter) *Alpha {
	if baseURL == "" {
		baseURL = defaultAlphaBaseURL
	}

	timeout := httpCfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	maxBytes := httpCfg.MaxBodyBytes
	if maxBytes == 0 {
		maxBytes = 2_000_000
	}

	return &Alpha{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
			},
		},
		maxBytes: maxBytes,
		limiter:  limiter,
	}
}

// Name returns the data source name
func (a *Alpha) Name() string {
	return "alphavantage"
}

// Fetch retrieves and formats the metric. Ticker validation piggybacks on
// the metric call itself: Alpha Vantage returns an empty object for symbols
// it does not know.
func (a *Alpha) Fetch(ctx context.Context, ticker string, key model.MetricKey) (string, error) {
	if key == model.KeyUnknown {
		return "", model.ErrUnknownMetric
	}

	var out string
	var err error
	switch key {
	case model.KeyPrice, model.KeyVolume:
		out, err = a.fromGlobalQuote(ctx, ticker, key)

	case model.KeyMarketCap, model.KeyPERatio, model.KeyDividendYield,
		model.KeyHighLow, model.KeyCompanyInfo, model.KeyFutureEstimates:
		out, err = a.fromOverview(ctx, ticker, key)

	case model.KeyHistoricalPrice:
		out, err = a.priceHistory(ctx, ticker)

	case model.KeyTotalRevenue, model.KeyNetIncome:
		out, err = a.fromIncomeStatement(ctx, ticker, key)

	default:
		// financial_health and analyst_rating have no Alpha Vantage dataset
		return "", model.ErrNotFound
	}

	if err != nil {
		return "", fmt.Errorf("alphavantage: %s for %q: %w", key, ticker, model.ErrNotFound)
	}
	return out, nil
}

func (a *Alpha) fromGlobalQuote(ctx context.Context, ticker string, key model.MetricKey) (string, error) {
	var resp alphaGlobalQuoteResponse
	if err := a.query(ctx, "GLOBAL_QUOTE", ticker, &resp); err != nil {
		return "", err
	}
	if resp.GlobalQuote.Symbol == "" {
		return "", fmt.Errorf("symbol %s not known", ticker)
	}

	switch key {
	case model.KeyPrice:
		price, err := strconv.ParseFloat(resp.GlobalQuote.Price, 64)
		if err != nil {
			return "", fmt.Errorf("parse price: %w", err)
		}
		return fmt.Sprintf("%s (Current)", Dollars(price)), nil

	default: // volume
		vol, err := strconv.ParseInt(resp.GlobalQuote.Volume, 10, 64)
		if err != nil {
			return "", fmt.Errorf("parse volume: %w", err)
		}
		return fmt.Sprintf("Volume: %s shares (Avg: N/A)", GroupThousands(vol)), nil
	}
}

func (a *Alpha) fromOverview(ctx context.Context, ticker string, key model.MetricKey) (string, error) {
	var ov alphaOverview
	if err := a.query(ctx, "OVERVIEW", ticker, &ov); err != nil {
		return "", err
	}
	if ov.Symbol == "" {
		return "", fmt.Errorf("symbol %s not known", ticker)
	}

	switch key {
	case model.KeyMarketCap:
		mcap, ok := alphaFloat(ov.MarketCapitalization)
		if !ok {
			return "", fmt.Errorf("market cap missing")
		}
		return fmt.Sprintf("%s (Current)", BillionsWord(mcap)), nil

	case model.KeyPERatio:
		return fmt.Sprintf("Trailing P/E: %s | Forward P/E: %s",
			alphaOrNA(ov.PERatio, plain), alphaOrNA(ov.ForwardPE, plain)), nil

	case model.KeyDividendYield:
		if _, ok := alphaFloat(ov.DividendYield); !ok {
			return "", fmt.Errorf("dividend yield missing")
		}
		return fmt.Sprintf("Dividend Yield: %s (Payout Ratio: N/A)",
			alphaOrNA(ov.DividendYield, Percent)), nil

	case model.KeyHighLow:
		return fmt.Sprintf("52-Week High: %s | Low: %s",
			alphaOrNA(ov.FiftyTwoWeekHigh, Dollars), alphaOrNA(ov.FiftyTwoWeekLow, Dollars)), nil

	case model.KeyCompanyInfo:
		return fmt.Sprintf("Sector: %s | Industry: %s | Employees: N/A",
			strOrNA(ov.Sector), strOrNA(ov.Industry)), nil

	default: // future_estimates
		return fmt.Sprintf("Revenue Growth (YoY): %s | Earnings Growth: %s | Target Price: %s",
			alphaOrNA(ov.QuarterlyRevenueGrowthYOY, Percent),
			alphaOrNA(ov.QuarterlyEarningsGrowthYOY, Percent),
			alphaOrNA(ov.AnalystTargetPrice, Dollars)), nil
	}
}

func (a *Alpha) fromIncomeStatement(ctx context.Context, ticker string, key model.MetricKey) (string, error) {
	var resp alphaIncomeResponse
	if err := a.query(ctx, "INCOME_STATEMENT", ticker, &resp); err != nil {
		return "", err
	}
	if len(resp.AnnualReports) == 0 && len(resp.QuarterlyReports) == 0 {
		return "", fmt.Errorf("no income statements for %s", ticker)
	}

	field := func(r alphaIncomeReport) string { return r.TotalRevenue }
	annualLabel, quarterlyLabel := "Annual Revenue", "Quarterly Revenue"
	if key == model.KeyNetIncome {
		field = func(r alphaIncomeReport) string { return r.NetIncome }
		annualLabel, quarterlyLabel = "Annual Net Income", "Quarterly Net Income"
	}

	var parts []string
	if s := alphaSeries(resp.AnnualReports, annualLabel, field); s != "" {
		parts = append(parts, s)
	}
	if s := alphaSeries(resp.QuarterlyReports, quarterlyLabel, field); s != "" {
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no usable income data for %s", ticker)
	}

	return strings.Join(parts, " | "), nil
}

func alphaSeries(reports []alphaIncomeReport, label string, field func(alphaIncomeReport) string) string {
	var points []SeriesPoint
	for _, r := range reports {
		val, ok := alphaFloat(field(r))
		if !ok || r.FiscalDateEnding == "" {
			continue
		}
		points = append(points, SeriesPoint{Period: r.FiscalDateEnding, Value: val})
	}
	return Series(label, points)
}

// priceHistory renders the 5 most recent year-end closes from the monthly series
func (a *Alpha) priceHistory(ctx context.Context, ticker string) (string, error) {
	var resp alphaMonthlyResponse
	if err := a.query(ctx, "TIME_SERIES_MONTHLY", ticker, &resp); err != nil {
		return "", err
	}
	if len(resp.Series) == 0 {
		return "", fmt.Errorf("no monthly series for %s", ticker)
	}

	// Keep the latest-dated close per calendar year; the map keys are ISO
	// dates so string comparison orders correctly
	type yearClose struct {
		date  string
		close float64
	}
	byYear := make(map[string]yearClose)
	for date, bar := range resp.Series {
		if len(date) < 4 {
			continue
		}
		val, ok := alphaFloat(bar.Close)
		if !ok {
			continue
		}
		year := date[:4]
		if prev, exists := byYear[year]; !exists || date > prev.date {
			byYear[year] = yearClose{date: date, close: val}
		}
	}

	years := make([]string, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	if len(years) > 5 {
		years = years[:5]
	}

	parts := make([]string, len(years))
	for i, year := range years {
		parts[i] = fmt.Sprintf("Year-End %s: %s", year, Dollars(byYear[year].close))
	}

	return fmt.Sprintf("Price History: [%s]", strings.Join(parts, ", ")), nil
}

func (a *Alpha) query(ctx context.Context, function, ticker string, out interface{}) error {
	endpoint := fmt.Sprintf("%s/query?function=%s&symbol=%s&apikey=%s",
		a.baseURL, url.QueryEscape(function), url.QueryEscape(ticker), url.QueryEscape(a.apiKey))

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx, endpoint); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, a.maxBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

// alphaFloat parses an Alpha Vantage numeric string; "None", "-" and ""
// mark absent data
func alphaFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func alphaOrNA(s string, format func(float64) string) string {
	v, ok := alphaFloat(s)
	if !ok {
		return "N/A"
	}
	return format(v)
}

