package validation

import (
	"strings"

	"github.com/ndewijer/Option-Ledger-Backend/internal/accounting"
	"github.com/ndewijer/Option-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Option-Ledger-Backend/internal/model"
)

// ValidateCreateStock validates a request to follow a stock.
func ValidateCreateStock(req request.CreateStockRequest) error {
	errors := make(map[string]string)

	symbol := strings.TrimSpace(req.Symbol)
	switch {
	case symbol == "":
		errors["symbol"] = "symbol is required"
	case len(symbol) > 12 || strings.ContainsAny(symbol, " /\\"):
		errors["symbol"] = "symbol must be a ticker without spaces"
	}

	if len(req.Name) > 100 {
		errors["name"] = "name must be 100 characters or less"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateWatchContract validates a watched contract.
//
// Required fields:
//   - strikePrice: Must be positive
//   - expirationDate: Must be in YYYY-MM-DD format
//   - type: Must be CALL or PUT (any case)
//
// Optional fields (validated if provided):
//   - id: Must be a valid ID
//   - premium: Must parse as a non-negative price ("3.45" or "$3.45")
func ValidateWatchContract(req request.WatchContractRequest) error {
	errors := make(map[string]string)

	if req.ID != "" {
		if err := ValidateID(req.ID); err != nil {
			errors["id"] = err.Error()
		}
	}

	if !(req.StrikePrice > 0) {
		errors["strikePrice"] = "strikePrice must be positive"
	}

	dateErrors(errors, "expirationDate", req.ExpirationDate)

	if strings.TrimSpace(req.OptionType) == "" {
		errors["type"] = "type is required"
	} else if _, err := model.ParseOptionType(req.OptionType); err != nil {
		errors["type"] = err.Error()
	}

	if p := strings.TrimSpace(req.Premium); p != "" {
		if _, ok := accounting.ParsePremium(p); !ok {
			errors["premium"] = "premium must be a non-negative price"
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
