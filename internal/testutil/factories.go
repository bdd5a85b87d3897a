package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/ndewijer/Option-Ledger-Backend/internal/model"
	"github.com/ndewijer/Option-Ledger-Backend/internal/service"
)

// ContractBuilder provides a fluent interface for creating test contracts
// through the ledger service.
//
// Example usage:
//
//	// Long call with defaults
//	g := testutil.NewContract().Buy(3.45, 5).Build(t, ledger)
//
//	// Short put that was partly covered
//	g := testutil.NewContract().
//	    WithUnderlying("TSLA").
//	    Put().
//	    Sell(2.18, 3).
//	    Buy(1.10, 1).
//	    Build(t, ledger)
type ContractBuilder struct {
	ID         string
	Descriptor model.ContractDescriptor
	Trades     []model.TradeInput
}

// NewContract creates a ContractBuilder for an AAPL 180 call expiring in 90 days.
func NewContract() *ContractBuilder {
	return &ContractBuilder{
		ID: MakeID(),
		Descriptor: model.ContractDescriptor{
			UnderlyingSymbol: "AAPL",
			StrikePrice:      180,
			ExpirationDate:   model.NewDate(time.Now().AddDate(0, 0, 90)),
			OptionType:       model.OptionCall,
		},
	}
}

// WithID sets a custom contract ID.
func (b *ContractBuilder) WithID(id string) *ContractBuilder {
	b.ID = id
	return b
}

// WithUnderlying sets the underlying symbol.
func (b *ContractBuilder) WithUnderlying(symbol string) *ContractBuilder {
	b.Descriptor.UnderlyingSymbol = symbol
	return b
}

// WithStrike sets the strike price.
func (b *ContractBuilder) WithStrike(strike float64) *ContractBuilder {
	b.Descriptor.StrikePrice = strike
	return b
}

// WithExpiration sets the expiration date.
func (b *ContractBuilder) WithExpiration(d model.Date) *ContractBuilder {
	b.Descriptor.ExpirationDate = d
	return b
}

// Put makes the contract a put.
func (b *ContractBuilder) Put() *ContractBuilder {
	b.Descriptor.OptionType = model.OptionPut
	return b
}

// Buy adds a buy trade dated today.
func (b *ContractBuilder) Buy(premium float64, qty int64) *ContractBuilder {
	return b.Trade(model.SideBuy, DaysAgo(0), premium, qty)
}

// Sell adds a sell trade dated today.
func (b *ContractBuilder) Sell(premium float64, qty int64) *ContractBuilder {
	return b.Trade(model.SideSell, DaysAgo(0), premium, qty)
}

// Trade adds a trade with an explicit date.
func (b *ContractBuilder) Trade(side model.Side, date model.Date, premium float64, qty int64) *ContractBuilder {
	b.Trades = append(b.Trades, model.TradeInput{Date: date, Side: side, Premium: premium, Quantity: qty})
	return b
}

// Build records the trades in ledger and returns the resulting group.
// A builder without trades records a single buy of 1 at 1.00.
func (b *ContractBuilder) Build(t *testing.T, ledger *service.LedgerService) model.ContractGroup {
	t.Helper()

	trades := b.Trades
	if len(trades) == 0 {
		trades = []model.TradeInput{{Date: DaysAgo(0), Side: model.SideBuy, Premium: 1, Quantity: 1}}
	}

	var g model.ContractGroup
	for i, in := range trades {
		descriptor := &b.Descriptor
		if i > 0 {
			descriptor = nil
		}
		var err error
		g, _, err = ledger.AppendTrade(context.Background(), b.ID, descriptor, in)
		if err != nil {
			t.Fatalf("Failed to record test trade: %v", err)
		}
	}
	return g
}
