package request

import (
	"strings"

	"github.com/ndewijer/Option-Ledger-Backend/internal/model"
	"github.com/ndewijer/Option-Ledger-Backend/internal/service"
)

type CreateStockRequest struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// WatchContractRequest adds or edits a watched contract. ID is optional on
// create; it lets the caller reuse the id of an existing ledger contract.
type WatchContractRequest struct {
	ID             string  `json:"id,omitempty"`
	Symbol         string  `json:"symbol"`
	StrikePrice    float64 `json:"strikePrice"`
	ExpirationDate string  `json:"expirationDate"`
	OptionType     string  `json:"type"`
	Premium        string  `json:"premium"`
}

// Input converts the request into a watchlist contract. The request must have
// passed validation.ValidateWatchContract.
func (r WatchContractRequest) Input() (service.WatchContractInput, error) {
	expiration, err := model.ParseDate(r.ExpirationDate)
	if err != nil {
		return service.WatchContractInput{}, err
	}
	optionType, err := model.ParseOptionType(r.OptionType)
	if err != nil {
		return service.WatchContractInput{}, err
	}
	return service.WatchContractInput{
		ID:             strings.TrimSpace(r.ID),
		Symbol:         strings.TrimSpace(r.Symbol),
		StrikePrice:    r.StrikePrice,
		ExpirationDate: expiration,
		OptionType:     optionType,
		Premium:        strings.TrimSpace(r.Premium),
	}, nil
}
