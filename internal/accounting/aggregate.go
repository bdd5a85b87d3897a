package accounting

import (
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Option-Ledger-Backend/internal/model"
)

// Aggregate combines the snapshots of all groups into portfolio totals.
//
// Closed groups contribute their realized P&L to the numerator but nothing to
// the cost basis; open groups contribute |averagePrice * netQuantity|.
func Aggregate(groups []model.ContractGroup) model.PortfolioTotals {
	var totalValue, totalPL, costBasis decimal.Decimal

	for _, g := range groups {
		totalValue = totalValue.Add(finite(g.CurrentValue))
		totalPL = totalPL.Add(finite(g.ProfitLoss))
		if g.IsOpen() {
			costBasis = costBasis.Add(finite(g.AveragePrice).Mul(decimal.NewFromInt(g.NetQuantity)).Abs())
		}
	}

	return model.PortfolioTotals{
		TotalProfitLoss:        totalPL.InexactFloat64(),
		TotalProfitLossPercent: percent(totalPL, costBasis),
		TotalCurrentValue:      totalValue.InexactFloat64(),
	}
}

// Partition splits groups into open (netQuantity != 0) and closed sets,
// preserving the relative order within each set.
func Partition(groups []model.ContractGroup) (open, closed []model.ContractGroup) {
	open = make([]model.ContractGroup, 0, len(groups))
	closed = make([]model.ContractGroup, 0)
	for _, g := range groups {
		if g.IsOpen() {
			open = append(open, g)
		} else {
			closed = append(closed, g)
		}
	}
	return open, closed
}

// OpenFirst returns groups with all open positions ahead of closed ones.
func OpenFirst(groups []model.ContractGroup) []model.ContractGroup {
	open, closed := Partition(groups)
	return append(open, closed...)
}
