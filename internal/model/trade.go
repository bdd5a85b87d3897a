package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Side is the direction of a trade execution.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide accepts "BUY"/"SELL" in any letter case.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case SideBuy:
		return SideBuy, nil
	case SideSell:
		return SideSell, nil
	}
	return "", fmt.Errorf("invalid side: %q", s)
}

// Opposite returns the side that closes a position opened with s.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// UnmarshalJSON normalizes the legacy lowercase values written by the mobile app.
func (s *Side) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		*s = ""
		return nil
	}
	parsed, err := ParseSide(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// OptionType is CALL or PUT.
type OptionType string

const (
	OptionCall OptionType = "CALL"
	OptionPut  OptionType = "PUT"
)

// ParseOptionType accepts "CALL"/"PUT" in any letter case.
func ParseOptionType(s string) (OptionType, error) {
	switch OptionType(strings.ToUpper(strings.TrimSpace(s))) {
	case OptionCall:
		return OptionCall, nil
	case OptionPut:
		return OptionPut, nil
	}
	return "", fmt.Errorf("invalid option type: %q", s)
}

// UnmarshalJSON normalizes the legacy lowercase values written by the mobile app.
func (t *OptionType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		*t = ""
		return nil
	}
	parsed, err := ParseOptionType(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TradeRecord is a single buy or sell execution on one option contract.
// IsClosing is informational only; the accounting derives open/close behavior
// from the running position sign.
type TradeRecord struct {
	ID        string  `json:"id"`
	Date      Date    `json:"date"`
	Side      Side    `json:"side"`
	Premium   float64 `json:"premium"`
	Quantity  int64   `json:"quantity"`
	IsClosing bool    `json:"isClosing"`
}

// UnmarshalJSON accepts records persisted by the mobile app, which stored the
// side under "type" and carried a redundant "totalValue".
func (r *TradeRecord) UnmarshalJSON(data []byte) error {
	type alias TradeRecord
	aux := struct {
		*alias
		LegacyType Side `json:"type"`
	}{alias: (*alias)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.Side == "" {
		r.Side = aux.LegacyType
	}
	return nil
}

// TradeInput carries the caller-supplied fields of a new trade. ID is only set
// by importers that need a stable id; the ledger generates one otherwise.
type TradeInput struct {
	ID        string
	Date      Date
	Side      Side
	Premium   float64
	Quantity  int64
	IsClosing bool
}

// ContractDescriptor holds the static metadata of an option contract.
// It is supplied by the caller on the first trade of a previously untracked contract.
type ContractDescriptor struct {
	UnderlyingSymbol string     `json:"underlyingSymbol"`
	Symbol           string     `json:"symbol"`
	StrikePrice      float64    `json:"strikePrice"`
	ExpirationDate   Date       `json:"expirationDate"`
	OptionType       OptionType `json:"optionType"`
}

// PositionSnapshot is the output of the accounting algorithm for one contract.
// AveragePrice is signed: net-short positions can carry a negative value.
type PositionSnapshot struct {
	NetQuantity       int64   `json:"netQuantity"`
	AveragePrice      float64 `json:"averagePrice"`
	CurrentValue      float64 `json:"currentValue"`
	ProfitLoss        float64 `json:"profitLoss"`
	ProfitLossPercent float64 `json:"profitLossPercent"`
}

// IsOpen reports whether the snapshot has open exposure.
func (s PositionSnapshot) IsOpen() bool {
	return s.NetQuantity != 0
}

// ContractGroup is the ledger for one option contract: its trades plus the
// derived position fields. The derived fields are always recomputed from
// TradeRecords and are never an input to the next computation.
type ContractGroup struct {
	ID string `json:"id"`
	ContractDescriptor
	TradeRecords []TradeRecord `json:"tradeRecords"`
	PositionSnapshot
}

// UnmarshalJSON accepts groups persisted by the mobile app, which used
// "strike", "expiration" and "type" for the descriptor fields.
func (g *ContractGroup) UnmarshalJSON(data []byte) error {
	type alias ContractGroup
	aux := struct {
		*alias
		LegacyStrike     *float64   `json:"strike"`
		LegacyExpiration *Date      `json:"expiration"`
		LegacyType       OptionType `json:"type"`
	}{alias: (*alias)(g)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if g.StrikePrice == 0 && aux.LegacyStrike != nil {
		g.StrikePrice = *aux.LegacyStrike
	}
	if g.ExpirationDate.IsZero() && aux.LegacyExpiration != nil {
		g.ExpirationDate = *aux.LegacyExpiration
	}
	if g.OptionType == "" {
		g.OptionType = aux.LegacyType
	}
	return nil
}

// FindTrade returns the index of the trade with the given id, or -1.
func (g *ContractGroup) FindTrade(tradeID string) int {
	for i, r := range g.TradeRecords {
		if r.ID == tradeID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the group so callers cannot mutate ledger state.
func (g ContractGroup) Clone() ContractGroup {
	records := make([]TradeRecord, len(g.TradeRecords))
	copy(records, g.TradeRecords)
	g.TradeRecords = records
	return g
}

// PortfolioTotals aggregates position snapshots across all contracts.
type PortfolioTotals struct {
	TotalProfitLoss        float64 `json:"totalProfitLoss"`
	TotalProfitLossPercent float64 `json:"totalProfitLossPercent"`
	TotalCurrentValue      float64 `json:"totalCurrentValue"`
}
