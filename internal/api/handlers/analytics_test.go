package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ndewijer/Option-Ledger-Backend/internal/model"
	"github.com/ndewijer/Option-Ledger-Backend/internal/service"
	"github.com/ndewijer/Option-Ledger-Backend/internal/testutil"
)

func TestAnalyticsHandler_Analyze(t *testing.T) {
	setupHandler := func(t *testing.T) *AnalyticsHandler {
		t.Helper()
		svcs := testutil.NewTestServices(t, nil)
		testutil.NewContract().WithID("call").
			Trade(model.SideBuy, testutil.Day(2024, time.March, 1), 3, 5).
			Trade(model.SideSell, testutil.Day(2024, time.March, 15), 4, 5).
			Build(t, svcs.Ledger)
		testutil.NewContract().WithID("put").Put().
			Trade(model.SideSell, testutil.Day(2024, time.January, 10), 2, 2).
			Build(t, svcs.Ledger)
		return NewAnalyticsHandler(svcs.Analytics)
	}

	t.Run("returns report for all trades", func(t *testing.T) {
		handler := setupHandler(t)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/analytics", map[string]string{"range": "all"})
		w := httptest.NewRecorder()

		handler.Analyze(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var report service.AnalysisReport
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&report)

		if report.TradeCount != 3 {
			t.Errorf("Expected 3 trades, got %d", report.TradeCount)
		}
		if report.OpenContracts != 1 || report.ClosedContracts != 1 {
			t.Errorf("Expected 1 open and 1 closed contract, got %d and %d", report.OpenContracts, report.ClosedContracts)
		}
		if report.Distribution.CallProfitLoss != 5 {
			t.Errorf("Expected call P&L 5, got %v", report.Distribution.CallProfitLoss)
		}
	})

	t.Run("filters custom range and type", func(t *testing.T) {
		handler := setupHandler(t)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/analytics", map[string]string{
			"range": "custom",
			"start": "2024-01-01",
			"end":   "2024-01-31",
			"type":  "put",
		})
		w := httptest.NewRecorder()

		handler.Analyze(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var report service.AnalysisReport
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&report)

		if report.TradeCount != 1 {
			t.Errorf("Expected 1 trade, got %d", report.TradeCount)
		}
		if report.Start == nil || report.Start.String() != "2024-01-01" {
			t.Errorf("Expected start 2024-01-01, got %v", report.Start)
		}
	})

	tests := []struct {
		name   string
		params map[string]string
	}{
		{"unknown range", map[string]string{"range": "decade"}},
		{"custom range without dates", map[string]string{"range": "custom"}},
		{"start after end", map[string]string{"range": "custom", "start": "2024-02-01", "end": "2024-01-01"}},
		{"unknown type", map[string]string{"type": "straddle"}},
		{"unknown direction", map[string]string{"direction": "hold"}},
	}

	for _, tt := range tests {
		t.Run("returns 400 for "+tt.name, func(t *testing.T) {
			handler := setupHandler(t)

			req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/analytics", tt.params)
			w := httptest.NewRecorder()

			handler.Analyze(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}
