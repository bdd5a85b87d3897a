package validation

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ndewijer/Option-Ledger-Backend/internal/api/request"
)

func validTrade() request.CreateTradeRequest {
	return request.CreateTradeRequest{
		Contract: &request.ContractRequest{
			UnderlyingSymbol: "AAPL",
			StrikePrice:      180,
			ExpirationDate:   "2024-12-20",
			OptionType:       "call",
		},
		Date:     "2024-03-01",
		Side:     "buy",
		Premium:  3.45,
		Quantity: 5,
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *validation.Error, got %v", err)
	}
	return verr.Fields
}

func TestValidateID(t *testing.T) {
	valid := []string{"1702300000000", "contract-1702300000000", "0b7c7d4e-5f7a-4b8e-9a59-1c2d3e4f5a6b"}
	for _, id := range valid {
		if err := ValidateID(id); err != nil {
			t.Errorf("Expected %q to be valid, got %v", id, err)
		}
	}

	invalid := []string{"", "a b", "a/b", strings.Repeat("x", 129)}
	for _, id := range invalid {
		if err := ValidateID(id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Expected ErrInvalidID for %q, got %v", id, err)
		}
	}
}

func TestValidateCreateTrade(t *testing.T) {
	t.Run("valid new contract", func(t *testing.T) {
		if err := ValidateCreateTrade(validTrade()); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("existing contract without descriptor", func(t *testing.T) {
		req := validTrade()
		req.ContractID = "c1"
		req.Contract = nil
		if err := ValidateCreateTrade(req); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("new contract without descriptor", func(t *testing.T) {
		req := validTrade()
		req.Contract = nil
		fields := fieldErrors(t, ValidateCreateTrade(req))
		if _, ok := fields["contract"]; !ok {
			t.Errorf("Expected contract error, got %v", fields)
		}
	})

	t.Run("collects every field error", func(t *testing.T) {
		req := request.CreateTradeRequest{
			Contract: &request.ContractRequest{OptionType: "straddle", ExpirationDate: "soon"},
			Date:     "03/01/2024",
			Side:     "hold",
			Premium:  -1,
			Quantity: 0,
		}
		fields := fieldErrors(t, ValidateCreateTrade(req))

		for _, f := range []string{
			"date", "side", "premium", "quantity",
			"contract.underlyingSymbol", "contract.strikePrice", "contract.expirationDate", "contract.optionType",
		} {
			if _, ok := fields[f]; !ok {
				t.Errorf("Expected error for %s, got %v", f, fields)
			}
		}
	})
}

func TestValidateUpdateTradeAndClose(t *testing.T) {
	if err := ValidateUpdateTrade(request.UpdateTradeRequest{Date: "2024-03-01", Side: "SELL", Premium: 0, Quantity: 1}); err != nil {
		t.Errorf("Expected zero premium to be valid, got %v", err)
	}

	fields := fieldErrors(t, ValidateUpdateTrade(request.UpdateTradeRequest{}))
	if len(fields) != 3 {
		t.Errorf("Expected date, side and quantity errors, got %v", fields)
	}

	if err := ValidateClosePosition(request.ClosePositionRequest{Date: "2024-03-01", Premium: 1.2}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	fields = fieldErrors(t, ValidateClosePosition(request.ClosePositionRequest{Premium: math.Inf(1)}))
	if _, ok := fields["premium"]; !ok {
		t.Errorf("Expected premium error, got %v", fields)
	}
}

func TestValidateWatchlist(t *testing.T) {
	if err := ValidateCreateStock(request.CreateStockRequest{Symbol: "aapl"}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if err := ValidateCreateStock(request.CreateStockRequest{Symbol: "AA PL"}); err == nil {
		t.Error("Expected error for symbol with a space")
	}

	valid := request.WatchContractRequest{StrikePrice: 180, ExpirationDate: "2024-12-20", OptionType: "PUT", Premium: "$2.18"}
	if err := ValidateWatchContract(valid); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	fields := fieldErrors(t, ValidateWatchContract(request.WatchContractRequest{ID: "a b", Premium: "free"}))
	for _, f := range []string{"id", "strikePrice", "expirationDate", "type", "premium"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("Expected error for %s, got %v", f, fields)
		}
	}
}

func TestError_MessageIsOrdered(t *testing.T) {
	err := &Error{Fields: map[string]string{
		"side":     "must be buy or sell",
		"date":     "is required",
		"quantity": "must be positive",
	}}

	want := "date: is required; quantity: must be positive; side: must be buy or sell"
	for range 5 {
		if got := err.Error(); got != want {
			t.Fatalf("Expected %q, got %q", want, got)
		}
	}
}
