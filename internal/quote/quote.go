// Package quote defines the premium source port and the helpers shared by the
// quote provider clients.
package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Option-Ledger-Backend/internal/model"
)

// ErrNoData indicates that the provider has no quote for the contract.
// It is a normal outcome, not a failure.
var ErrNoData = errors.New("no quote data")

// OptionRef identifies a listed option contract.
type OptionRef struct {
	Underlying string
	Expiration model.Date
	OptionType model.OptionType
	Strike     float64
}

// Quote is a contract premium as returned by a provider. Everything except
// Premium is optional pass-through data.
type Quote struct {
	Premium      float64
	Bid          *float64
	Ask          *float64
	Volume       *int64
	OpenInterest *int64
	Greeks       *model.Greeks
	Source       string
}

// PremiumSource returns the current premium of an option contract.
type PremiumSource interface {
	Name() string
	ContractPremium(ctx context.Context, ref OptionRef) (Quote, error)
}

// StockQuote is the latest price of an underlying plus its rolling statistics.
type StockQuote struct {
	Symbol        string
	Name          string
	Price         float64
	Change        float64
	ChangePercent float64
	Stats         *StockStats
}

// StockStats are computed from daily closes, newest last.
type StockStats struct {
	FiveDayAvg      float64
	FiveDayLow      float64
	FiveDayHigh     float64
	FiftyTwoWeekAvg float64
	FiftyTwoWeekLow float64
}

// StockSource returns the latest quote of an underlying.
type StockSource interface {
	StockQuote(ctx context.Context, symbol string) (StockQuote, error)
}

var thousand = decimal.NewFromInt(1000)

// OCCSymbol builds the OCC option symbol, e.g. AAPL250117C00150000:
// underlying, expiration as YYMMDD, C or P, strike * 1000 padded to 8 digits.
func OCCSymbol(ref OptionRef) string {
	typeChar := "C"
	if ref.OptionType == model.OptionPut {
		typeChar = "P"
	}
	strike := decimal.NewFromFloat(ref.Strike).Mul(thousand).Round(0).IntPart()

	return fmt.Sprintf("%s%s%s%08d",
		strings.ToUpper(strings.TrimSpace(ref.Underlying)),
		ref.Expiration.Format("060102"),
		typeChar,
		strike,
	)
}

// BuildOptionTicker returns the Polygon option ticker, e.g. O:AAPL250117C00150000.
func BuildOptionTicker(ref OptionRef) string {
	return "O:" + OCCSymbol(ref)
}

// Validate reports whether ref has everything a provider needs.
func (ref OptionRef) Validate() error {
	switch {
	case strings.TrimSpace(ref.Underlying) == "":
		return errors.New("underlying symbol is required")
	case ref.Expiration.IsZero():
		return errors.New("expiration date is required")
	case ref.OptionType != model.OptionCall && ref.OptionType != model.OptionPut:
		return fmt.Errorf("invalid option type: %q", ref.OptionType)
	case ref.Strike <= 0:
		return errors.New("strike must be positive")
	}
	return nil
}
