package fmp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bobmcallan/equitas/internal/common"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient("test-key", WithBaseURL(server.URL), WithRateLimit(1000))
	return client, server
}

func TestGetStatements(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("apikey"); got != "test-key" {
			t.Errorf("apikey = %q, want test-key", got)
		}
		if got := r.URL.Query().Get("symbol"); got != "TEST" {
			t.Errorf("symbol = %q, want TEST", got)
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/income-statement":
			w.Write([]byte(`[{"date":"2024-12-31","revenue":1200000000,"ebitda":360000000,"netIncome":180000000}]`))
		case "/balance-sheet-statement":
			w.Write([]byte(`[{"date":"2024-12-31","totalDebt":500000000,"cashAndCashEquivalents":200000000}]`))
		case "/cash-flow-statement":
			w.Write([]byte(`[{"date":"2024-12-31","operatingCashFlow":250000000,"capitalExpenditure":-80000000}]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	set, err := client.GetStatements(context.Background(), "TEST", "annual", 3)
	if err != nil {
		t.Fatalf("GetStatements failed: %v", err)
	}
	if set.AlignedYears() != 1 {
		t.Errorf("aligned years = %d, want 1", set.AlignedYears())
	}
	if set.Income[0].Revenue != 1200000000 {
		t.Errorf("revenue = %f", set.Income[0].Revenue)
	}
	if set.LatestYear() != "2024" {
		t.Errorf("latest year = %q, want 2024", set.LatestYear())
	}
}

func TestGetStatementsEmpty(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := client.GetStatements(context.Background(), "NONE", "annual", 3)
	if err == nil {
		t.Fatal("expected error for empty statements")
	}
	if !errors.Is(err, common.ErrDataUnavailable) {
		t.Errorf("error should wrap ErrDataUnavailable, got %v", err)
	}
}

func TestGetHistoricalPricesWrappedPayload(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"TEST","historical":[
			{"date":"2025-01-02","close":51,"changePercent":2.0,"volume":1000},
			{"date":"2025-01-01","close":50,"changePercent":0,"volume":900}
		]}`))
	}))
	defer server.Close()

	bars, err := client.GetHistoricalPrices(context.Background(), "TEST", "2025-01-01", "2025-01-02")
	if err != nil {
		t.Fatalf("GetHistoricalPrices failed: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("bars = %d, want 2", len(bars))
	}
	if bars[0].Date != "2025-01-01" {
		t.Errorf("bars should be sorted oldest first, got %s", bars[0].Date)
	}
}

func TestGetHistoricalPricesBareArrayPayload(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"date":"2025-01-01","close":50,"volume":900},
			{"date":"2025-01-02","close":51,"volume":1000}
		]`))
	}))
	defer server.Close()

	bars, err := client.GetHistoricalPrices(context.Background(), "TEST", "2025-01-01", "2025-01-02")
	if err != nil {
		t.Fatalf("GetHistoricalPrices failed: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("bars = %d, want 2", len(bars))
	}
}

func TestGetProfile(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"symbol":"TEST","mktCap":3000000000,"currency":"USD","exchangeShortName":"NASDAQ"}]`))
	}))
	defer server.Close()

	profile, err := client.GetProfile(context.Background(), "TEST")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.MarketCap != 3000000000 {
		t.Errorf("market cap = %f", profile.MarketCap)
	}
	if profile.Currency != "USD" {
		t.Errorf("currency = %q", profile.Currency)
	}
}

func TestAPIError(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer server.Close()

	_, err := client.GetQuote(context.Background(), "TEST")
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error should be an APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", apiErr.StatusCode)
	}
}

func TestGetGradesConsensus(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"strongBuy":5,"buy":10,"hold":4,"sell":1,"strongSell":0,"consensus":"Buy","total":20}]`))
	}))
	defer server.Close()

	grades, err := client.GetGradesConsensus(context.Background(), "TEST")
	if err != nil {
		t.Fatalf("GetGradesConsensus failed: %v", err)
	}
	counts := grades.RatingCounts()
	if counts["buy"] != 10 || counts["strongBuy"] != 5 {
		t.Errorf("rating counts = %v", counts)
	}
	if grades.Consensus != "Buy" {
		t.Errorf("consensus = %q", grades.Consensus)
	}
}
