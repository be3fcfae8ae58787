package research

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bobmcallan/equitas/internal/common"
	"github.com/bobmcallan/equitas/internal/interfaces"
	"github.com/bobmcallan/equitas/internal/models"
)

// stubClient serves canned payloads and counts fetches per endpoint.
type stubClient struct {
	priceCalls     int
	statementCalls int

	bars   []models.PriceBar
	stmts  *models.StatementSet
	profil *models.CompanyProfile
	quote  *models.Quote
	float  *models.SharesFloat
	grades *models.GradesConsensus
}

func (s *stubClient) GetStatements(_ context.Context, _, _ string, _ int) (*models.StatementSet, error) {
	s.statementCalls++
	if s.stmts == nil {
		return nil, errors.New("no statements")
	}
	return s.stmts, nil
}
func (s *stubClient) GetHistoricalPrices(_ context.Context, _, _, _ string) ([]models.PriceBar, error) {
	s.priceCalls++
	if s.bars == nil {
		return nil, errors.New("no bars")
	}
	return s.bars, nil
}
func (s *stubClient) GetProfile(_ context.Context, _ string) (*models.CompanyProfile, error) {
	if s.profil == nil {
		return nil, errors.New("no profile")
	}
	return s.profil, nil
}
func (s *stubClient) GetSharesFloat(_ context.Context, _ string) (*models.SharesFloat, error) {
	if s.float == nil {
		return nil, errors.New("no float")
	}
	return s.float, nil
}
func (s *stubClient) GetQuote(_ context.Context, _ string) (*models.Quote, error) {
	if s.quote == nil {
		return nil, errors.New("no quote")
	}
	return s.quote, nil
}
func (s *stubClient) GetGradesConsensus(_ context.Context, _ string) (*models.GradesConsensus, error) {
	if s.grades == nil {
		return nil, errors.New("no grades")
	}
	return s.grades, nil
}

// memResearch is an in-memory ResearchStore.
type memResearch struct {
	snapshots map[string]*models.CompanySnapshot
	series    map[string]*models.PricePerformanceSeries
	panels    map[string]*models.MetricsPanel
	news      map[string]*models.CompanyNews
	reports   map[string]*models.EquityReport
}

func newMemResearch() *memResearch {
	return &memResearch{
		snapshots: make(map[string]*models.CompanySnapshot),
		series:    make(map[string]*models.PricePerformanceSeries),
		panels:    make(map[string]*models.MetricsPanel),
		news:      make(map[string]*models.CompanyNews),
		reports:   make(map[string]*models.EquityReport),
	}
}

func (m *memResearch) GetSnapshot(_ context.Context, ticker, asOf string) (*models.CompanySnapshot, error) {
	if s, ok := m.snapshots[ticker+"_"+asOf]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("no snapshot")
}
func (m *memResearch) GetLatestSnapshot(_ context.Context, ticker string) (*models.CompanySnapshot, error) {
	var best *models.CompanySnapshot
	for _, s := range m.snapshots {
		if s.Ticker == ticker && (best == nil || s.AsOfDate > best.AsOfDate) {
			best = s
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no snapshot")
	}
	return best, nil
}
func (m *memResearch) SaveSnapshot(_ context.Context, s *models.CompanySnapshot) error {
	m.snapshots[s.Ticker+"_"+s.AsOfDate] = s
	return nil
}
func (m *memResearch) GetPriceSeries(_ context.Context, ticker, start, end string) (*models.PricePerformanceSeries, error) {
	if s, ok := m.series[ticker+"_"+start+"_"+end]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("no series")
}
func (m *memResearch) GetLatestPriceSeries(_ context.Context, ticker string) (*models.PricePerformanceSeries, error) {
	for _, s := range m.series {
		if s.Ticker == ticker {
			return s, nil
		}
	}
	return nil, fmt.Errorf("no series")
}
func (m *memResearch) SavePriceSeries(_ context.Context, s *models.PricePerformanceSeries) error {
	m.series[s.Ticker+"_"+s.StartDate+"_"+s.EndDate] = s
	return nil
}
func (m *memResearch) GetPanel(_ context.Context, ticker string) (*models.MetricsPanel, error) {
	if p, ok := m.panels[ticker]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("no panel")
}
func (m *memResearch) SavePanel(_ context.Context, p *models.MetricsPanel) error {
	m.panels[p.Ticker] = p
	return nil
}
func (m *memResearch) GetNews(_ context.Context, ticker string) (*models.CompanyNews, error) {
	if n, ok := m.news[ticker]; ok {
		return n, nil
	}
	return nil, fmt.Errorf("no news")
}
func (m *memResearch) SaveNews(_ context.Context, n *models.CompanyNews) error {
	m.news[n.Ticker] = n
	return nil
}
func (m *memResearch) GetReport(_ context.Context, ticker string) (*models.EquityReport, error) {
	if r, ok := m.reports[ticker]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("no report")
}
func (m *memResearch) SaveReport(_ context.Context, r *models.EquityReport) error {
	m.reports[r.Ticker] = r
	return nil
}

type memManager struct{ research *memResearch }

func (m *memManager) ResearchStore() interfaces.ResearchStore { return m.research }
func (m *memManager) FileStore() interfaces.FileStore         { return nil }
func (m *memManager) Close() error                            { return nil }

func testBars() []models.PriceBar {
	return []models.PriceBar{
		{Date: "2025-01-01", Close: 50, Volume: 1000},
		{Date: "2025-01-02", Close: 52, ChangePercent: 4, Volume: 1100},
		{Date: "2025-01-03", Close: 51, ChangePercent: -1.9, Volume: 900},
	}
}

func newResearchService(client *stubClient, store *memResearch) *Service {
	return NewService(
		client,
		nil, // no news source
		nil, // capability unused in collect paths
		nil, // forecast service unused in collect paths
		&memManager{research: store},
		common.NewDefaultConfig(),
		common.NewSilentLogger(),
	)
}

func newResearchServiceWithNews(client *stubClient, news interfaces.NewsClient, store *memResearch) *Service {
	return NewService(
		client,
		news,
		nil,
		nil,
		&memManager{research: store},
		common.NewDefaultConfig(),
		common.NewSilentLogger(),
	)
}

func TestCollectPricePerformanceFetchesAndCaches(t *testing.T) {
	client := &stubClient{bars: testBars()}
	store := newMemResearch()
	svc := newResearchService(client, store)
	ctx := context.Background()

	series, err := svc.CollectPricePerformance(ctx, "TEST", false)
	if err != nil {
		t.Fatalf("CollectPricePerformance failed: %v", err)
	}
	if client.priceCalls != 2 {
		t.Errorf("price fetches = %d, want 2 (subject + benchmark)", client.priceCalls)
	}
	if series.StockData[0].RebasedClose != 100 {
		t.Errorf("first rebased close = %f, want 100", series.StockData[0].RebasedClose)
	}
	if series.BaseIndex != "SPY" {
		t.Errorf("benchmark = %q, want config default SPY", series.BaseIndex)
	}

	// Second call is served from cache.
	if _, err := svc.CollectPricePerformance(ctx, "TEST", false); err != nil {
		t.Fatalf("cached CollectPricePerformance failed: %v", err)
	}
	if client.priceCalls != 2 {
		t.Errorf("price fetches = %d, cache should have served", client.priceCalls)
	}

	// Force bypasses the gate.
	if _, err := svc.CollectPricePerformance(ctx, "TEST", true); err != nil {
		t.Fatalf("forced CollectPricePerformance failed: %v", err)
	}
	if client.priceCalls != 4 {
		t.Errorf("price fetches = %d, force should re-fetch both legs", client.priceCalls)
	}
}

func TestCollectCompanySnapshot(t *testing.T) {
	client := &stubClient{
		bars:   testBars(),
		profil: &models.CompanyProfile{Ticker: "TEST", MarketCap: 3000e6, Currency: "USD", Exchange: "NASDAQ"},
		quote:  &models.Quote{Price: 30, YearHigh: 35, YearLow: 20, AvgVolume: 1e6},
		float:  &models.SharesFloat{SharesOutstanding: 100e6, FreeFloatPct: 85},
		grades: &models.GradesConsensus{Buy: 10, Consensus: "Buy", Total: 15},
	}
	store := newMemResearch()
	svc := newResearchService(client, store)

	snapshot, err := svc.CollectCompanySnapshot(context.Background(), "TEST", false)
	if err != nil {
		t.Fatalf("CollectCompanySnapshot failed: %v", err)
	}
	if !SnapshotComplete(snapshot) {
		t.Error("assembled snapshot should pass the gate")
	}
	if *snapshot.SharesOutstanding != 100e6 {
		t.Errorf("shares = %f", *snapshot.SharesOutstanding)
	}
	if *snapshot.AvgVolume3MUSD != 1e6*30 {
		t.Errorf("avg usd volume = %f, want shares*price", *snapshot.AvgVolume3MUSD)
	}
	if snapshot.ConsensusRating != "Buy" {
		t.Errorf("consensus = %q", snapshot.ConsensusRating)
	}
}

func TestCollectCompanySnapshotWithoutFloatEndpoint(t *testing.T) {
	client := &stubClient{
		bars:   testBars(),
		profil: &models.CompanyProfile{Ticker: "TEST", MarketCap: 3000e6, Currency: "USD"},
		quote:  &models.Quote{Price: 30, YearHigh: 35, YearLow: 20, AvgVolume: 1e6},
		// float and grades endpoints unavailable
	}
	store := newMemResearch()
	svc := newResearchService(client, store)

	snapshot, err := svc.CollectCompanySnapshot(context.Background(), "TEST", false)
	if err != nil {
		t.Fatalf("CollectCompanySnapshot failed: %v", err)
	}
	if snapshot.SharesOutstanding == nil || *snapshot.SharesOutstanding != 100e6 {
		t.Errorf("shares should derive from cap/price, got %v", snapshot.SharesOutstanding)
	}
	if snapshot.FreeFloatPct != nil {
		t.Error("free float should stay nil without the endpoint")
	}
	if !SnapshotComplete(snapshot) {
		t.Error("snapshot without free float still passes the gate")
	}
}

func TestCollectKeyMetricsPreservesForecastRows(t *testing.T) {
	client := &stubClient{
		stmts: &models.StatementSet{
			Income:   []models.IncomeStatement{{Date: "2024-12-31", Revenue: 1200e6, EBITDA: 360e6, NetIncome: 180e6}},
			Balance:  []models.BalanceSheet{{Date: "2024-12-31", TotalStockholdersEquity: 900e6, TotalAssets: 2000e6}},
			CashFlow: []models.CashFlowStatement{{Date: "2024-12-31", OperatingCashFlow: 250e6, CapitalExpenditure: -80e6}},
		},
	}
	store := newMemResearch()

	cached := models.NewMetricsPanel("TEST")
	cached.Metrics["2025"] = &models.FiscalYearMetrics{Revenue: 1280, Source: models.MetricSourceGenerated}
	store.panels["TEST"] = cached

	svc := newResearchService(client, store)

	panel, err := svc.CollectKeyMetrics(context.Background(), "TEST", models.MarketInputs{}, true)
	if err != nil {
		t.Fatalf("CollectKeyMetrics failed: %v", err)
	}
	if panel.Metrics["2024"] == nil {
		t.Fatal("derived actual year missing")
	}
	if panel.Metrics["2025"] == nil || panel.Metrics["2025"].Source != models.MetricSourceGenerated {
		t.Error("cached forecast row beyond latest actual should survive re-derivation")
	}
}

// stubNews serves canned articles and counts fetches.
type stubNews struct {
	calls    int
	articles []models.NewsArticle
	err      error
}

func (s *stubNews) GetCompanyNews(_ context.Context, _, _, _ string) ([]models.NewsArticle, error) {
	s.calls++
	return s.articles, s.err
}

func TestCollectCompanyNewsFetchesAndMerges(t *testing.T) {
	news := &stubNews{articles: []models.NewsArticle{
		{URL: "https://example.com/a", Headline: "Q4 beat", Source: "Wire", PublishedAt: "2025-06-29 10:00:00"},
		{URL: "https://example.com/b", Headline: "Guidance raised", Source: "Wire", PublishedAt: "2025-06-30 09:00:00"},
		{URL: "https://example.com/a", Headline: "Q4 beat (dup)", Source: "Wire", PublishedAt: "2025-06-29 10:00:00"},
	}}
	store := newMemResearch()
	svc := newResearchServiceWithNews(&stubClient{}, news, store)
	ctx := context.Background()

	got, err := svc.CollectCompanyNews(ctx, "TEST", false)
	if err != nil {
		t.Fatalf("CollectCompanyNews failed: %v", err)
	}
	if len(got.Articles) != 2 {
		t.Fatalf("articles = %d, want 2 after URL dedupe", len(got.Articles))
	}
	if got.Articles[0].Headline != "Q4 beat" {
		t.Errorf("first write should win on duplicate URL, got %q", got.Articles[0].Headline)
	}

	recent := got.Recent(1)
	if len(recent) != 1 || recent[0].URL != "https://example.com/b" {
		t.Errorf("Recent should order newest first, got %+v", recent)
	}

	// Same-day cache serves without a second fetch.
	if _, err := svc.CollectCompanyNews(ctx, "TEST", false); err != nil {
		t.Fatalf("cached CollectCompanyNews failed: %v", err)
	}
	if news.calls != 1 {
		t.Errorf("news fetches = %d, same-day cache should have served", news.calls)
	}

	// Force re-fetches and merges into the existing record.
	if _, err := svc.CollectCompanyNews(ctx, "TEST", true); err != nil {
		t.Fatalf("forced CollectCompanyNews failed: %v", err)
	}
	if news.calls != 2 {
		t.Errorf("news fetches = %d, force should re-fetch", news.calls)
	}
	if len(store.news["TEST"].Articles) != 2 {
		t.Errorf("forced merge should not duplicate, got %d articles", len(store.news["TEST"].Articles))
	}
}

func TestCollectCompanyNewsWithoutSource(t *testing.T) {
	svc := newResearchService(&stubClient{}, newMemResearch())

	got, err := svc.CollectCompanyNews(context.Background(), "TEST", false)
	if err != nil {
		t.Fatalf("nil news client must not error: %v", err)
	}
	if got != nil {
		t.Errorf("nil news client should yield nil news, got %+v", got)
	}
}

func TestCollectKeyMetricsServesCache(t *testing.T) {
	client := &stubClient{}
	store := newMemResearch()
	cached := models.NewMetricsPanel("TEST")
	cached.Metrics["2024"] = &models.FiscalYearMetrics{Revenue: 1200}
	store.panels["TEST"] = cached

	svc := newResearchService(client, store)

	panel, err := svc.CollectKeyMetrics(context.Background(), "TEST", models.MarketInputs{}, false)
	if err != nil {
		t.Fatalf("CollectKeyMetrics failed: %v", err)
	}
	if client.statementCalls != 0 {
		t.Errorf("statement fetches = %d, cache should have served", client.statementCalls)
	}
	if panel.Metrics["2024"].Revenue != 1200 {
		t.Errorf("cached revenue = %f", panel.Metrics["2024"].Revenue)
	}
}
