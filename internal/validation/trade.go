package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/ndewijer/Option-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Option-Ledger-Backend/internal/model"
)

// ValidateCreateTrade validates a trade creation request.
//
// Required fields:
//   - date: Must be in YYYY-MM-DD format
//   - side: Must be BUY or SELL (any case)
//   - premium: Must be a non-negative number
//   - quantity: Must be positive
//   - contractId: Must be a valid ID if provided
//   - contract: Required when contractId is empty; see ValidateContract
//
// Whether a non-empty contractId needs a contract depends on the ledger and is
// checked there. Returns a validation Error with field-specific error messages
// if validation fails.
func ValidateCreateTrade(req request.CreateTradeRequest) error {
	errors := make(map[string]string)

	if req.ContractID != "" {
		if err := ValidateID(req.ContractID); err != nil {
			errors["contractId"] = err.Error()
		}
	} else if req.Contract == nil {
		errors["contract"] = "contract is required for a new contract"
	}

	if req.Contract != nil {
		for field, msg := range contractErrors(*req.Contract) {
			errors["contract."+field] = msg
		}
	}

	tradeErrors(errors, req.Date, req.Side, req.Premium, req.Quantity)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateUpdateTrade validates a trade edit. All fields are required, since
// an edit replaces the trade.
func ValidateUpdateTrade(req request.UpdateTradeRequest) error {
	errors := make(map[string]string)

	tradeErrors(errors, req.Date, req.Side, req.Premium, req.Quantity)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateClosePosition validates a close request.
func ValidateClosePosition(req request.ClosePositionRequest) error {
	errors := make(map[string]string)

	dateErrors(errors, "date", req.Date)
	premiumErrors(errors, req.Premium)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateContract validates the descriptor of a new contract.
func ValidateContract(req request.ContractRequest) error {
	if errors := contractErrors(req); len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func contractErrors(req request.ContractRequest) map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(req.UnderlyingSymbol) == "" && strings.TrimSpace(req.Symbol) == "" {
		errors["underlyingSymbol"] = "underlyingSymbol is required"
	}

	if !(req.StrikePrice > 0) || math.IsInf(req.StrikePrice, 0) {
		errors["strikePrice"] = "strikePrice must be positive"
	}

	dateErrors(errors, "expirationDate", req.ExpirationDate)

	if strings.TrimSpace(req.OptionType) == "" {
		errors["optionType"] = "optionType is required"
	} else if _, err := model.ParseOptionType(req.OptionType); err != nil {
		errors["optionType"] = err.Error()
	}

	return errors
}

func tradeErrors(errors map[string]string, date, side string, premium float64, quantity int64) {
	dateErrors(errors, "date", date)

	if strings.TrimSpace(side) == "" {
		errors["side"] = "side is required"
	} else if _, err := model.ParseSide(side); err != nil {
		errors["side"] = err.Error()
	}

	premiumErrors(errors, premium)

	if quantity <= 0 {
		errors["quantity"] = "quantity must be positive"
	}
}

func dateErrors(errors map[string]string, field, date string) {
	if strings.TrimSpace(date) == "" {
		errors[field] = field + " is required"
		return
	}
	if _, err := model.ParseDate(date); err != nil {
		errors[field] = err.Error()
	}
}

func premiumErrors(errors map[string]string, premium float64) {
	if math.IsNaN(premium) || math.IsInf(premium, 0) || premium < 0 {
		errors["premium"] = "premium must be a non-negative number"
	}
}
