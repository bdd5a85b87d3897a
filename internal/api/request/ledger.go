package request

import (
	"strings"

	"github.com/ndewijer/Option-Ledger-Backend/internal/model"
)

// CreateTradeRequest records a trade. Contract is required when ContractID
// names a contract the ledger does not track yet, or is empty.
type CreateTradeRequest struct {
	ContractID string           `json:"contractId"`
	Contract   *ContractRequest `json:"contract,omitempty"`
	Date       string           `json:"date"`
	Side       string           `json:"side"`
	Premium    float64          `json:"premium"`
	Quantity   int64            `json:"quantity"`
	IsClosing  bool             `json:"isClosing"`
}

// ContractRequest describes the option contract of a first trade.
type ContractRequest struct {
	UnderlyingSymbol string  `json:"underlyingSymbol"`
	Symbol           string  `json:"symbol"`
	StrikePrice      float64 `json:"strikePrice"`
	ExpirationDate   string  `json:"expirationDate"`
	OptionType       string  `json:"optionType"`
}

type UpdateTradeRequest struct {
	Date      string  `json:"date"`
	Side      string  `json:"side"`
	Premium   float64 `json:"premium"`
	Quantity  int64   `json:"quantity"`
	IsClosing bool    `json:"isClosing"`
}

type ClosePositionRequest struct {
	Date    string  `json:"date"`
	Premium float64 `json:"premium"`
}

// TradeInput converts the request into a ledger trade. The request must have
// passed validation.ValidateCreateTrade.
func (r CreateTradeRequest) TradeInput() (model.TradeInput, error) {
	return tradeInput(r.Date, r.Side, r.Premium, r.Quantity, r.IsClosing)
}

// TradeInput converts the request into a ledger trade.
func (r UpdateTradeRequest) TradeInput() (model.TradeInput, error) {
	return tradeInput(r.Date, r.Side, r.Premium, r.Quantity, r.IsClosing)
}

// Descriptor converts the request into the static contract fields.
func (r ContractRequest) Descriptor() (model.ContractDescriptor, error) {
	expiration, err := model.ParseDate(r.ExpirationDate)
	if err != nil {
		return model.ContractDescriptor{}, err
	}
	optionType, err := model.ParseOptionType(r.OptionType)
	if err != nil {
		return model.ContractDescriptor{}, err
	}
	return model.ContractDescriptor{
		UnderlyingSymbol: strings.TrimSpace(r.UnderlyingSymbol),
		Symbol:           strings.TrimSpace(r.Symbol),
		StrikePrice:      r.StrikePrice,
		ExpirationDate:   expiration,
		OptionType:       optionType,
	}, nil
}

func tradeInput(date, side string, premium float64, quantity int64, isClosing bool) (model.TradeInput, error) {
	d, err := model.ParseDate(date)
	if err != nil {
		return model.TradeInput{}, err
	}
	s, err := model.ParseSide(side)
	if err != nil {
		return model.TradeInput{}, err
	}
	return model.TradeInput{
		Date:      d,
		Side:      s,
		Premium:   premium,
		Quantity:  quantity,
		IsClosing: isClosing,
	}, nil
}
