package models

// Statement line items arrive from the data source as flat JSON objects
// with inconsistent nulls. Decoding into these typed rows is the single
// normalization boundary: a JSON null leaves the float64 at 0, so all
// downstream arithmetic sees zeros, never missing values.

// IncomeStatement holds the income-statement line items the deriver uses.
type IncomeStatement struct {
	Date             string  `json:"date"` // YYYY-MM-DD
	FiscalYear       string  `json:"fiscalYear"`
	Revenue          float64 `json:"revenue"`
	EBITDA           float64 `json:"ebitda"`
	OperatingIncome  float64 `json:"operatingIncome"`
	EBIT             float64 `json:"ebit"`
	NetIncome        float64 `json:"netIncome"`
	IncomeTaxExpense float64 `json:"incomeTaxExpense"`
	InterestExpense  float64 `json:"interestExpense"`
}

// Year returns the 4-digit fiscal year label, preferring the date field.
func (s *IncomeStatement) Year() string {
	if len(s.Date) >= 4 {
		return s.Date[:4]
	}
	return s.FiscalYear
}

// OperatingEBIT prefers operating income, falling back to reported EBIT.
func (s *IncomeStatement) OperatingEBIT() float64 {
	if s.OperatingIncome != 0 {
		return s.OperatingIncome
	}
	return s.EBIT
}

// BalanceSheet holds the balance-sheet line items the deriver uses.
type BalanceSheet struct {
	Date                    string  `json:"date"`
	FiscalYear              string  `json:"fiscalYear"`
	TotalDebt               float64 `json:"totalDebt"`
	CashAndCashEquivalents  float64 `json:"cashAndCashEquivalents"`
	TotalStockholdersEquity float64 `json:"totalStockholdersEquity"`
	TotalAssets             float64 `json:"totalAssets"`
}

// CashFlowStatement holds the cash-flow line items the deriver uses.
type CashFlowStatement struct {
	Date               string  `json:"date"`
	FiscalYear         string  `json:"fiscalYear"`
	OperatingCashFlow  float64 `json:"operatingCashFlow"`
	CapitalExpenditure float64 `json:"capitalExpenditure"`
}

// StatementSet bundles the three statement lists for a ticker, each
// ordered most-recent-year first as returned by the source.
type StatementSet struct {
	Income   []IncomeStatement   `json:"income"`
	Balance  []BalanceSheet      `json:"balance"`
	CashFlow []CashFlowStatement `json:"cash_flow"`
}

// AlignedYears returns the number of positions usable for derivation:
// the minimum of the three list lengths.
func (s *StatementSet) AlignedYears() int {
	n := len(s.Income)
	if len(s.Balance) < n {
		n = len(s.Balance)
	}
	if len(s.CashFlow) < n {
		n = len(s.CashFlow)
	}
	return n
}

// LatestYear returns the most recent fiscal year label across the
// aligned window, or "" when no statements are present.
func (s *StatementSet) LatestYear() string {
	if s.AlignedYears() == 0 {
		return ""
	}
	return s.Income[0].Year()
}

// MarketInputs carries the market-side scalars the deriver needs for
// EPS and valuation ratios. Zero values mean "not supplied".
type MarketInputs struct {
	MarketCap         float64 `json:"market_cap"`
	SharesOutstanding float64 `json:"shares_outstanding"`
	CurrentPrice      float64 `json:"current_price"`
}
