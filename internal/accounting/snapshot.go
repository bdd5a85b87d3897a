// Package accounting implements the position accounting engine: the cash-flow
// snapshot of a single contract, portfolio aggregation, and premium resolution.
// Everything in this package is pure and synchronous.
package accounting

import (
	"math"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Option-Ledger-Backend/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Flow is the result of walking a contract's trades in date order.
//
//   - Position: signed unit count (BUY adds, SELL subtracts)
//   - CashFlow: signed cash movement (BUY pays premium*qty, SELL collects it)
//   - TotalBuyCost: sum of premium*qty over BUY records
type Flow struct {
	Position     int64
	CashFlow     decimal.Decimal
	TotalBuyCost decimal.Decimal
}

// SortByDate returns a copy of records ordered by date ascending.
// The sort is stable, so trades on the same day keep their insertion order.
func SortByDate(records []model.TradeRecord) []model.TradeRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b model.TradeRecord) int {
		return a.Date.Compare(b.Date.Time)
	})
	return sorted
}

// Walk folds the trades into a single running position and cash flow.
// A trade that crosses zero (long to short or back) needs no special case:
// the position sign simply flips mid-walk.
func Walk(records []model.TradeRecord) Flow {
	var f Flow
	for _, r := range SortByDate(records) {
		notional := finite(r.Premium).Mul(decimal.NewFromInt(r.Quantity))
		switch r.Side {
		case model.SideBuy:
			f.Position += r.Quantity
			f.CashFlow = f.CashFlow.Sub(notional)
			f.TotalBuyCost = f.TotalBuyCost.Add(notional)
		case model.SideSell:
			f.Position -= r.Quantity
			f.CashFlow = f.CashFlow.Add(notional)
		}
	}
	return f
}

// ComputeSnapshot computes the position snapshot of one contract from its raw
// trades and an optional mark. A nil or unusable mark (NaN, infinite, negative)
// falls back to the average price.
//
// The average price is signed: for a net-short position it is cashFlow/netQuantity,
// which is negative for an ordinary short. The fallback mark is its magnitude,
// since a premium is never negative; for net-long positions this equals the
// average price itself and in every case leaves the unrealized P&L at zero.
//
// Callers never pass an empty slice (a contract without trades does not exist);
// if they do, the zero snapshot is returned.
func ComputeSnapshot(records []model.TradeRecord, mark *float64) model.PositionSnapshot {
	if len(records) == 0 {
		return model.PositionSnapshot{}
	}

	flow := Walk(records)
	net := decimal.NewFromInt(flow.Position)
	absNet := net.Abs()

	avg := decimal.Zero
	switch {
	case flow.Position > 0:
		avg = flow.CashFlow.Neg().Div(net)
	case flow.Position < 0:
		avg = flow.CashFlow.Div(net)
	}

	effective := avg.Abs()
	if m, ok := usableMark(mark); ok {
		effective = m
	}

	currentValue := absNet.Mul(effective)

	var profitLoss, costBase decimal.Decimal
	switch {
	case flow.Position == 0:
		profitLoss = flow.CashFlow
		costBase = flow.TotalBuyCost
	case flow.Position > 0:
		profitLoss = currentValue.Sub(avg.Mul(net))
		costBase = avg.Mul(net).Abs()
	default:
		profitLoss = avg.Abs().Mul(absNet).Sub(currentValue)
		costBase = avg.Mul(net).Abs()
	}

	return model.PositionSnapshot{
		NetQuantity:       flow.Position,
		AveragePrice:      avg.InexactFloat64(),
		CurrentValue:      currentValue.InexactFloat64(),
		ProfitLoss:        profitLoss.InexactFloat64(),
		ProfitLossPercent: percent(profitLoss, costBase),
	}
}

// Apply recomputes the derived fields of g in place from its trade records.
func Apply(g *model.ContractGroup, mark *float64) {
	g.PositionSnapshot = ComputeSnapshot(g.TradeRecords, mark)
}

// percent returns 100*part/base, or 0 when base is zero.
func percent(part, base decimal.Decimal) float64 {
	if base.IsZero() {
		return 0
	}
	return part.Mul(hundred).Div(base).InexactFloat64()
}

func usableMark(mark *float64) (decimal.Decimal, bool) {
	if mark == nil || !isFinite(*mark) || *mark < 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(*mark), true
}

// finite converts f to a decimal, mapping NaN and infinities to zero.
func finite(f float64) decimal.Decimal {
	if !isFinite(f) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
