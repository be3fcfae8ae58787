package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/equitas/internal/common"
	"github.com/bobmcallan/equitas/internal/interfaces"
	"github.com/bobmcallan/equitas/internal/models"
)

// Record kinds, one per logical slice.
const (
	kindSnapshot    = "company_data"
	kindPriceSeries = "price_performance"
	kindPanel       = "key_metrics"
	kindNews        = "news"
	kindReport      = "report"
)

// ResearchEntry is one persisted JSON blob. Key is the deterministic
// composite string for the record kind; SortKey orders records of the
// same kind within a ticker (as-of date for snapshots, end date for
// price series).
type ResearchEntry struct {
	Key       string `badgerhold:"key"`
	Kind      string `badgerhold:"index"`
	Ticker    string `badgerhold:"index"`
	SortKey   string
	Value     []byte
	CreatedAt time.Time
}

type researchStorage struct {
	store  *Store
	logger *common.Logger
}

// NewResearchStorage creates a ResearchStore backed by BadgerHold.
func NewResearchStorage(store *Store, logger *common.Logger) *researchStorage {
	return &researchStorage{store: store, logger: logger}
}

// Composite keys mirror the cache identity tuples of each record kind.

func snapshotKey(ticker, asOfDate string) string {
	return fmt.Sprintf("%s_%s", ticker, asOfDate)
}

func priceSeriesKey(ticker, startDate, endDate string) string {
	return fmt.Sprintf("%s_%s_%s", ticker, startDate, endDate)
}

func panelKey(ticker string) string {
	return fmt.Sprintf("%s_key_metrics", ticker)
}

func newsKey(ticker string) string {
	return fmt.Sprintf("%s_news", ticker)
}

func reportKey(ticker string) string {
	return fmt.Sprintf("%s_report", ticker)
}

// put marshals and upserts one entry. Replace-on-conflict: last writer
// wins, whole blob, no versioning.
func (s *researchStorage) put(kind, key, ticker, sortKey string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s '%s': %w", kind, key, err)
	}

	entry := ResearchEntry{
		Key:       key,
		Kind:      kind,
		Ticker:    ticker,
		SortKey:   sortKey,
		Value:     data,
		CreatedAt: time.Now(),
	}
	if err := s.store.db.Upsert(key, &entry); err != nil {
		return fmt.Errorf("save %s '%s': %w", kind, key, common.ErrPersistence)
	}
	return nil
}

// get loads and unmarshals one entry by key.
func (s *researchStorage) get(kind, key string, out interface{}) error {
	var entry ResearchEntry
	if err := s.store.db.Get(key, &entry); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("no cached %s for key '%s'", kind, key)
		}
		return fmt.Errorf("get %s '%s': %w", kind, key, err)
	}
	if err := json.Unmarshal(entry.Value, out); err != nil {
		return fmt.Errorf("decode %s '%s': %w", kind, key, err)
	}
	return nil
}

// latest loads the entry with the highest SortKey for a ticker and kind.
func (s *researchStorage) latest(kind, ticker string, out interface{}) error {
	var entries []ResearchEntry
	query := badgerhold.Where("Kind").Eq(kind).Index("Kind").And("Ticker").Eq(ticker)
	if err := s.store.db.Find(&entries, query); err != nil {
		return fmt.Errorf("find %s for '%s': %w", kind, ticker, err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no cached %s for ticker '%s'", kind, ticker)
	}

	best := entries[0]
	for _, e := range entries[1:] {
		if e.SortKey > best.SortKey {
			best = e
		}
	}
	if err := json.Unmarshal(best.Value, out); err != nil {
		return fmt.Errorf("decode %s '%s': %w", kind, best.Key, err)
	}
	return nil
}

func (s *researchStorage) GetSnapshot(_ context.Context, ticker, asOfDate string) (*models.CompanySnapshot, error) {
	var snapshot models.CompanySnapshot
	if err := s.get(kindSnapshot, snapshotKey(ticker, asOfDate), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (s *researchStorage) GetLatestSnapshot(_ context.Context, ticker string) (*models.CompanySnapshot, error) {
	var snapshot models.CompanySnapshot
	if err := s.latest(kindSnapshot, ticker, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (s *researchStorage) SaveSnapshot(_ context.Context, snapshot *models.CompanySnapshot) error {
	key := snapshotKey(snapshot.Ticker, snapshot.AsOfDate)
	return s.put(kindSnapshot, key, snapshot.Ticker, snapshot.AsOfDate, snapshot)
}

func (s *researchStorage) GetPriceSeries(_ context.Context, ticker, startDate, endDate string) (*models.PricePerformanceSeries, error) {
	var series models.PricePerformanceSeries
	if err := s.get(kindPriceSeries, priceSeriesKey(ticker, startDate, endDate), &series); err != nil {
		return nil, err
	}
	return &series, nil
}

func (s *researchStorage) GetLatestPriceSeries(_ context.Context, ticker string) (*models.PricePerformanceSeries, error) {
	var series models.PricePerformanceSeries
	if err := s.latest(kindPriceSeries, ticker, &series); err != nil {
		return nil, err
	}
	return &series, nil
}

func (s *researchStorage) SavePriceSeries(_ context.Context, series *models.PricePerformanceSeries) error {
	key := priceSeriesKey(series.Ticker, series.StartDate, series.EndDate)
	return s.put(kindPriceSeries, key, series.Ticker, series.EndDate, series)
}

func (s *researchStorage) GetPanel(_ context.Context, ticker string) (*models.MetricsPanel, error) {
	var panel models.MetricsPanel
	if err := s.get(kindPanel, panelKey(ticker), &panel); err != nil {
		return nil, err
	}
	if panel.Ticker == "" {
		panel.Ticker = ticker
	}
	return &panel, nil
}

func (s *researchStorage) SavePanel(_ context.Context, panel *models.MetricsPanel) error {
	panel.UpdatedAt = time.Now()
	return s.put(kindPanel, panelKey(panel.Ticker), panel.Ticker, "", panel)
}

func (s *researchStorage) GetNews(_ context.Context, ticker string) (*models.CompanyNews, error) {
	var news models.CompanyNews
	if err := s.get(kindNews, newsKey(ticker), &news); err != nil {
		return nil, err
	}
	return &news, nil
}

func (s *researchStorage) SaveNews(_ context.Context, news *models.CompanyNews) error {
	return s.put(kindNews, newsKey(news.Ticker), news.Ticker, news.EndDate, news)
}

func (s *researchStorage) GetReport(_ context.Context, ticker string) (*models.EquityReport, error) {
	var report models.EquityReport
	if err := s.get(kindReport, reportKey(ticker), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *researchStorage) SaveReport(_ context.Context, report *models.EquityReport) error {
	return s.put(kindReport, reportKey(report.Ticker), report.Ticker, "", report)
}

// Ensure researchStorage implements ResearchStore
var _ interfaces.ResearchStore = (*researchStorage)(nil)
