package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/finfact/internal/model"
	"github.com/ppiankov/finfact/internal/util"
	"github.com/ppiankov/finfact/internal/worker"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// Yahoo fetches metrics from the Yahoo Finance chart and quoteSummary APIs.
// It is the first provider in the default fallback order.
type Yahoo struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	limiter    *worker.Limiter // nil disables throttling
}

// NewYahoo creates a Yahoo Finance fetcher
func NewYahoo(httpCfg model.HTTPConfig, baseURL string, limiter *worker.Limiter) *Yahoo {
	if baseURL == "" {
		baseURL = defaultYahooBaseURL
	}

	timeout := httpCfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	maxBytes := httpCfg.MaxBodyBytes
	if maxBytes == 0 {
		maxBytes = 2_000_000
	}

	return &Yahoo{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
			},
		},
		userAgent: httpCfg.UserAgent,
		maxBytes:  maxBytes,
		limiter:   limiter,
	}
}

// Name returns the data source name
func (y *Yahoo) Name() string {
	return "yahoo"
}

// Fetch retrieves and formats the metric. An unresolvable ticker, a missing
// dataset, or any transport failure comes back as model.ErrNotFound so the
// registry can fall through to the next provider.
func (y *Yahoo) Fetch(ctx context.Context, ticker string, key model.MetricKey) (string, error) {
	if key == model.KeyUnknown {
		return "", model.ErrUnknownMetric
	}

	// Resolve the ticker first; an unknown symbol is expected, not an error
	chart, err := y.chart(ctx, ticker, "1d", "1d")
	if err != nil {
		return "", fmt.Errorf("yahoo: ticker %q: %w", ticker, model.ErrNotFound)
	}

	switch key {
	case model.KeyPrice:
		return fmt.Sprintf("%s (Current)", Dollars(chart.meta.RegularMarketPrice)), nil

	case model.KeyHistoricalPrice:
		return y.priceHistory(ctx, ticker)

	default:
		result, err := y.quoteSummary(ctx, ticker, modulesFor(key))
		if err != nil {
			return "", fmt.Errorf("yahoo: %s for %q: %w", key, ticker, model.ErrNotFound)
		}
		return y.render(key, result)
	}
}

// modulesFor maps a metric key to the quoteSummary modules it reads
func modulesFor(key model.MetricKey) string {
	switch key {
	case model.KeyMarketCap, model.KeyPERatio, model.KeyDividendYield,
		model.KeyVolume, model.KeyHighLow:
		return "summaryDetail"
	case model.KeyCompanyInfo:
		return "assetProfile"
	case model.KeyFinancialHealth, model.KeyAnalystRating, model.KeyFutureEstimates:
		return "financialData"
	case model.KeyTotalRevenue, model.KeyNetIncome:
		return "incomeStatementHistory,incomeStatementHistoryQuarterly"
	default:
		return ""
	}
}

// render formats one quoteSummary result for the requested key. Missing
// sub-fields degrade to "N/A"; a wholly missing module is a not-found.
func (y *Yahoo) render(key model.MetricKey, res *yahooQuoteSummaryResult) (string, error) {
	switch key {
	case model.KeyMarketCap:
		sd := res.SummaryDetail
		if sd == nil || sd.MarketCap == nil {
			return "", model.ErrNotFound
		}
		return fmt.Sprintf("%s (Current)", BillionsWord(sd.MarketCap.Raw)), nil

	case model.KeyVolume:
		sd := res.SummaryDetail
		if sd == nil || sd.Volume == nil {
			return "", model.ErrNotFound
		}
		avg := "N/A"
		if sd.AverageVolume10days != nil {
			avg = GroupThousands(int64(sd.AverageVolume10days.Raw))
		}
		return fmt.Sprintf("Volume: %s shares (Avg: %s)", GroupThousands(int64(sd.Volume.Raw)), avg), nil

	case model.KeyPERatio:
		sd := res.SummaryDetail
		if sd == nil || (sd.TrailingPE == nil && sd.ForwardPE == nil) {
			return "", model.ErrNotFound
		}
		return fmt.Sprintf("Trailing P/E: %s | Forward P/E: %s",
			numOrNA(sd.TrailingPE, plain), numOrNA(sd.ForwardPE, plain)), nil

	case model.KeyDividendYield:
		sd := res.SummaryDetail
		if sd == nil || sd.DividendYield == nil {
			return "", model.ErrNotFound
		}
		return fmt.Sprintf("Dividend Yield: %s (Payout Ratio: %s)",
			Percent(sd.DividendYield.Raw), numOrNA(sd.PayoutRatio, Percent)), nil

	case model.KeyHighLow:
		sd := res.SummaryDetail
		if sd == nil || (sd.FiftyTwoWeekHigh == nil && sd.FiftyTwoWeekLow == nil) {
			return "", model.ErrNotFound
		}
		return fmt.Sprintf("52-Week High: %s | Low: %s",
			numOrNA(sd.FiftyTwoWeekHigh, Dollars), numOrNA(sd.FiftyTwoWeekLow, Dollars)), nil

	case model.KeyCompanyInfo:
		ap := res.AssetProfile
		if ap == nil {
			return "", model.ErrNotFound
		}
		employees := "N/A"
		if ap.FullTimeEmployees > 0 {
			employees = GroupThousands(int64(ap.FullTimeEmployees))
		}
		return fmt.Sprintf("Sector: %s | Industry: %s | Employees: %s",
			strOrNA(ap.Sector), strOrNA(ap.Industry), employees), nil

	case model.KeyFinancialHealth:
		fd := res.FinancialData
		if fd == nil || (fd.TotalCash == nil && fd.TotalDebt == nil) {
			return "", model.ErrNotFound
		}
		return fmt.Sprintf("Total Cash: %s | Total Debt: %s | Cash per Share: %s",
			numOrNA(fd.TotalCash, Billions), numOrNA(fd.TotalDebt, Billions),
			numOrNA(fd.TotalCashPerShare, Dollars)), nil

	case model.KeyAnalystRating:
		fd := res.FinancialData
		if fd == nil || fd.RecommendationKey == "" {
			return "", model.ErrNotFound
		}
		return fmt.Sprintf("Consensus: %s | Target Price: %s | Analysts: %s",
			strings.ToUpper(fd.RecommendationKey),
			numOrNA(fd.TargetMeanPrice, Dollars),
			numOrNA(fd.NumberOfAnalystOpinions, integer)), nil

	case model.KeyFutureEstimates:
		fd := res.FinancialData
		if fd == nil || (fd.RevenueGrowth == nil && fd.EarningsGrowth == nil) {
			return "", model.ErrNotFound
		}
		return fmt.Sprintf("Revenue Growth (YoY): %s | Earnings Growth: %s | Target Price: %s",
			numOrNA(fd.RevenueGrowth, Percent), numOrNA(fd.EarningsGrowth, Percent),
			numOrNA(fd.TargetMeanPrice, Dollars)), nil

	case model.KeyTotalRevenue:
		return renderIncome(res, "Annual Revenue", "Quarterly Revenue",
			func(s yahooIncomeStatement) *yNum { return s.TotalRevenue })

	case model.KeyNetIncome:
		return renderIncome(res, "Annual Net Income", "Quarterly Net Income",
			func(s yahooIncomeStatement) *yNum { return s.NetIncome })

	default:
		return "", model.ErrNotFound
	}
}

// renderIncome renders annual and quarterly income statement series
func renderIncome(res *yahooQuoteSummaryResult, annualLabel, quarterlyLabel string,
	field func(yahooIncomeStatement) *yNum) (string, error) {

	var parts []string
	if s := incomeSeries(res.IncomeStatementHistory, annualLabel, field); s != "" {
		parts = append(parts, s)
	}
	if s := incomeSeries(res.IncomeStatementHistoryQuarterly, quarterlyLabel, field); s != "" {
		parts = append(parts, s)
	}

	if len(parts) == 0 {
		return "", model.ErrNotFound
	}
	return strings.Join(parts, " | "), nil
}

func incomeSeries(hist *yahooIncomeHistory, label string, field func(yahooIncomeStatement) *yNum) string {
	if hist == nil {
		return ""
	}

	var points []SeriesPoint
	for _, stmt := range hist.Statements {
		val := field(stmt)
		if stmt.EndDate == nil || val == nil {
			continue
		}
		points = append(points, SeriesPoint{Period: stmt.EndDate.Fmt, Value: val.Raw})
	}

	return Series(label, points)
}

// priceHistory renders the 5 most recent year-end closes
func (y *Yahoo) priceHistory(ctx context.Context, ticker string) (string, error) {
	chart, err := y.chart(ctx, ticker, "5y", "1mo")
	if err != nil {
		return "", fmt.Errorf("yahoo: price history for %q: %w", ticker, model.ErrNotFound)
	}

	// Last observed close per calendar year
	yearEnd := make(map[int]float64)
	for i, ts := range chart.timestamps {
		if i >= len(chart.closes) || chart.closes[i] == nil {
			continue
		}
		year := time.Unix(ts, 0).UTC().Year()
		yearEnd[year] = *chart.closes[i]
	}

	if len(yearEnd) == 0 {
		return "", fmt.Errorf("yahoo: price history for %q: %w", ticker, model.ErrNotFound)
	}

	years := make([]int, 0, len(yearEnd))
	for year := range yearEnd {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	if len(years) > 5 {
		years = years[:5]
	}

	parts := make([]string, len(years))
	for i, year := range years {
		parts[i] = fmt.Sprintf("Year-End %d: %s", year, Dollars(yearEnd[year]))
	}

	return fmt.Sprintf("Price History: [%s]", strings.Join(parts, ", ")), nil
}

// chartData is the subset of the chart response the fetcher consumes
type chartData struct {
	meta struct {
		Currency           string
		Symbol             string
		RegularMarketPrice float64
	}
	timestamps []int64
	closes     []*float64
}

// chart calls the v8 chart endpoint; it doubles as ticker validation
func (y *Yahoo) chart(ctx context.Context, ticker, rangeStr, interval string) (*chartData, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s&includePrePost=false",
		y.baseURL, url.PathEscape(ticker), url.QueryEscape(interval), url.QueryEscape(rangeStr))

	var resp yahooChartResponse
	if err := y.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s - %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no result in chart response for %s", ticker)
	}

	result := resp.Chart.Result[0]
	data := &chartData{timestamps: result.Timestamp}
	data.meta.Currency = result.Meta.Currency
	data.meta.Symbol = result.Meta.Symbol
	data.meta.RegularMarketPrice = result.Meta.RegularMarketPrice
	if len(result.Indicators.Quote) > 0 {
		data.closes = result.Indicators.Quote[0].Close
	}

	return data, nil
}

// quoteSummary calls the v10 quoteSummary endpoint for the given modules
func (y *Yahoo) quoteSummary(ctx context.Context, ticker, modules string) (*yahooQuoteSummaryResult, error) {
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		y.baseURL, url.PathEscape(ticker), url.QueryEscape(modules))

	var resp yahooQuoteSummaryResponse
	if err := y.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s - %s",
			resp.QuoteSummary.Error.Code, resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no result in quoteSummary response for %s", ticker)
	}

	return &resp.QuoteSummary.Result[0], nil
}

func (y *Yahoo) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	if y.limiter != nil {
		if err := y.limiter.Wait(ctx, endpoint); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", y.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, y.maxBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

// Field rendering helpers

func numOrNA(n *yNum, format func(float64) string) string {
	if n == nil {
		return "N/A"
	}
	return format(n.Raw)
}

func strOrNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func plain(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func integer(v float64) string {
	return fmt.Sprintf("%d", int64(v))
}
