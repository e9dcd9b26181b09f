package source

// Yahoo Finance API response structures. Numeric fields arrive as
// {"raw": 123.4, "fmt": "123.40"} objects; pointers mark absent data.

type yNum struct {
	Raw float64 `json:"raw"`
	Fmt string  `json:"fmt"`
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				ExchangeName       string  `json:"exchangeName"`
				InstrumentType     string  `json:"instrumentType"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"` // Pointers to handle nulls
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooAPIError `json:"error"`
	} `json:"chart"`
}

type yahooAPIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yahooQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []yahooQuoteSummaryResult `json:"result"`
		Error  *yahooAPIError            `json:"error"`
	} `json:"quoteSummary"`
}

type yahooQuoteSummaryResult struct {
	SummaryDetail                   *yahooSummaryDetail  `json:"summaryDetail"`
	AssetProfile                    *yahooAssetProfile   `json:"assetProfile"`
	FinancialData                   *yahooFinancialData  `json:"financialData"`
	IncomeStatementHistory          *yahooIncomeHistory  `json:"incomeStatementHistory"`
	IncomeStatementHistoryQuarterly *yahooIncomeHistory  `json:"incomeStatementHistoryQuarterly"`
}

type yahooSummaryDetail struct {
	MarketCap           *yNum `json:"marketCap"`
	TrailingPE          *yNum `json:"trailingPE"`
	ForwardPE           *yNum `json:"forwardPE"`
	DividendYield       *yNum `json:"dividendYield"`
	PayoutRatio         *yNum `json:"payoutRatio"`
	Volume              *yNum `json:"volume"`
	AverageVolume10days *yNum `json:"averageVolume10days"`
	FiftyTwoWeekHigh    *yNum `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow     *yNum `json:"fiftyTwoWeekLow"`
}

type yahooAssetProfile struct {
	Sector            string `json:"sector"`
	Industry          string `json:"industry"`
	FullTimeEmployees int    `json:"fullTimeEmployees"`
}

type yahooFinancialData struct {
	TotalCash               *yNum  `json:"totalCash"`
	TotalDebt               *yNum  `json:"totalDebt"`
	TotalCashPerShare       *yNum  `json:"totalCashPerShare"`
	RecommendationKey       string `json:"recommendationKey"`
	TargetMeanPrice         *yNum  `json:"targetMeanPrice"`
	NumberOfAnalystOpinions *yNum  `json:"numberOfAnalystOpinions"`
	RevenueGrowth           *yNum  `json:"revenueGrowth"`
	EarningsGrowth          *yNum  `json:"earningsGrowth"`
}

type yahooIncomeHistory struct {
	Statements []yahooIncomeStatement `json:"incomeStatementHistory"`
}

type yahooIncomeStatement struct {
	EndDate      *yNum `json:"endDate"` // Fmt carries the ISO date
	TotalRevenue *yNum `json:"totalRevenue"`
	NetIncome    *yNum `json:"netIncome"`
}
