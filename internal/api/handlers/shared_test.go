package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ndewijer/Option-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Option-Ledger-Backend/internal/apperrors"
)

// TestParseJSON tests the parseJSON helper function.
// This is an internal test (package handlers, not handlers_test) because
// parseJSON is unexported.
func TestParseJSON(t *testing.T) {
	type payload struct {
		Symbol string `json:"symbol"`
	}

	t.Run("decodes a valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"symbol":"AAPL"}`))

		got, err := parseJSON[payload](req)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if got.Symbol != "AAPL" {
			t.Errorf("Expected symbol AAPL, got '%s'", got.Symbol)
		}
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"symbol":`))

		if _, err := parseJSON[payload](req); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})

	t.Run("rejects an empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)

		if _, err := parseJSON[payload](req); err == nil {
			t.Error("Expected error for empty body")
		}
	})
}

// TestErrorStatus tests the mapping of service errors to HTTP statuses.
//
// WHY: Handlers rely on wrapped sentinel errors; a wrapped not-found must still
// become a 404 and unknown failures must never leak as client errors.
func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: c1", apperrors.ErrContractNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: t1", apperrors.ErrTradeNotFound), http.StatusNotFound},
		{apperrors.ErrStockNotFound, http.StatusNotFound},
		{apperrors.ErrWatchContractNotFound, http.StatusNotFound},
		{apperrors.ErrDuplicateEntry, http.StatusConflict},
		{fmt.Errorf("%w: strikePrice", apperrors.ErrMissingDescriptor), http.StatusBadRequest},
		{apperrors.ErrInvalidTrade, http.StatusBadRequest},
		{apperrors.ErrPositionFlat, http.StatusBadRequest},
		{apperrors.ErrInvalidFilter, http.StatusBadRequest},
		{apperrors.ErrInvalidDateRange, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := errorStatus(tt.err); got != tt.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

// TestRespondMutation tests how mutation results are reported.
//
// WHY: A mutation whose persist failed was still applied in memory, so the
// client must see the result together with a warning instead of an error.
func TestRespondMutation(t *testing.T) {
	t.Run("success has no warning", func(t *testing.T) {
		w := httptest.NewRecorder()

		respondMutation(w, http.StatusCreated, map[string]string{"id": "c1"}, nil, "failed")

		if w.Code != http.StatusCreated {
			t.Errorf("Expected 201, got %d", w.Code)
		}

		var resp response.MutationResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Warning != "" {
			t.Errorf("Expected no warning, got '%s'", resp.Warning)
		}
		if resp.Data == nil {
			t.Error("Expected data to be set")
		}
	})

	t.Run("persist failure keeps status and adds warning", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := fmt.Errorf("%w: %w", apperrors.ErrPersistFailed, errors.New("disk full"))

		respondMutation(w, http.StatusCreated, map[string]string{"id": "c1"}, err, "failed")

		if w.Code != http.StatusCreated {
			t.Errorf("Expected 201, got %d", w.Code)
		}

		var resp response.MutationResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&resp)
		if !strings.Contains(resp.Warning, "disk full") {
			t.Errorf("Expected warning to mention the cause, got '%s'", resp.Warning)
		}
	})

	t.Run("other errors are reported as errors", func(t *testing.T) {
		w := httptest.NewRecorder()

		respondMutation(w, http.StatusCreated, nil, fmt.Errorf("%w: c9", apperrors.ErrContractNotFound), "failed")

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}

		var resp response.ErrorResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Error != apperrors.ErrContractNotFound.Error() {
			t.Errorf("Expected error '%s', got '%s'", apperrors.ErrContractNotFound.Error(), resp.Error)
		}
	})
}
