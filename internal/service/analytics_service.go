package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Option-Ledger-Backend/internal/accounting"
	"github.com/ndewijer/Option-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Option-Ledger-Backend/internal/model"
)

// Date ranges accepted by AnalysisFilter.Range.
const (
	RangeAll      = "all"
	RangeToday    = "today"
	RangeWeek     = "week"
	RangeMonth    = "month"
	RangeQuarter  = "quarter"
	RangeHalfYear = "halfyear"
	RangeYear     = "year"
	RangeCustom   = "custom"
)

// AnalysisFilter selects the trades an analysis covers. Empty fields mean
// the defaults: the last month, all contract types, both directions.
type AnalysisFilter struct {
	Range        string
	Start        model.Date // custom range only
	End          model.Date // custom range only
	ContractType string     // all, call, put
	Direction    string     // all, buy, sell
}

// AnalysisReport is the analytics screen payload.
type AnalysisReport struct {
	Range           string                `json:"range"`
	Start           *model.Date           `json:"start,omitempty"`
	End             model.Date            `json:"end"`
	Totals          model.PortfolioTotals `json:"totals"`
	OpenContracts   int                   `json:"openContracts"`
	ClosedContracts int                   `json:"closedContracts"`
	TradeCount      int                   `json:"tradeCount"`
	Distribution    Distribution          `json:"distribution"`
}

// Distribution splits current value and P&L between calls and puts.
type Distribution struct {
	CallValue      float64 `json:"callValue"`
	PutValue       float64 `json:"putValue"`
	CallPercent    float64 `json:"callPercent"`
	PutPercent     float64 `json:"putPercent"`
	CallProfitLoss float64 `json:"callProfitLoss"`
	PutProfitLoss  float64 `json:"putProfitLoss"`
}

// AnalyticsService reports on a filtered view of the ledger.
type AnalyticsService struct {
	ledger *LedgerService
	now    func() time.Time
}

// NewAnalyticsService creates an AnalyticsService over ledger.
func NewAnalyticsService(ledger *LedgerService) *AnalyticsService {
	return &AnalyticsService{ledger: ledger, now: time.Now}
}

// Analyze re-snapshots every contract from the trades that pass filter,
// marked with the ledger's current quotes, and aggregates the result.
// Contracts with no matching trades are left out.
func (s *AnalyticsService) Analyze(filter AnalysisFilter) (AnalysisReport, error) {
	start, end, err := s.window(filter)
	if err != nil {
		return AnalysisReport{}, err
	}

	optionType, err := parseTypeFilter(filter.ContractType)
	if err != nil {
		return AnalysisReport{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidFilter, err)
	}
	side, err := parseDirectionFilter(filter.Direction)
	if err != nil {
		return AnalysisReport{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidFilter, err)
	}

	marks := s.ledger.Marks()
	var (
		selected   []model.ContractGroup
		tradeCount int
	)
	for _, g := range s.ledger.Groups() {
		if optionType != "" && g.OptionType != optionType {
			continue
		}
		var trades []model.TradeRecord
		for _, r := range g.TradeRecords {
			if side != "" && r.Side != side {
				continue
			}
			if start != nil && r.Date.Before(start.Time) {
				continue
			}
			if r.Date.After(end.Time) {
				continue
			}
			trades = append(trades, r)
		}
		if len(trades) == 0 {
			continue
		}
		g.TradeRecords = trades
		accounting.Apply(&g, accounting.Mark(g.ID, marks))
		selected = append(selected, g)
		tradeCount += len(trades)
	}

	open, closed := accounting.Partition(selected)
	report := AnalysisReport{
		Range:           rangeName(filter.Range),
		Start:           start,
		End:             end,
		Totals:          accounting.Aggregate(selected),
		OpenContracts:   len(open),
		ClosedContracts: len(closed),
		TradeCount:      tradeCount,
		Distribution:    distribution(selected),
	}
	return report, nil
}

// window resolves the filter range to an inclusive [start, end] day window.
// A nil start means unbounded.
func (s *AnalyticsService) window(filter AnalysisFilter) (*model.Date, model.Date, error) {
	today := model.NewDate(s.now())
	from := func(t time.Time) *model.Date {
		d := model.NewDate(t)
		return &d
	}

	switch rangeName(filter.Range) {
	case RangeAll:
		return nil, today, nil
	case RangeToday:
		return from(today.Time), today, nil
	case RangeWeek:
		return from(today.AddDate(0, 0, -7)), today, nil
	case RangeMonth:
		return from(today.AddDate(0, -1, 0)), today, nil
	case RangeQuarter:
		return from(today.AddDate(0, -3, 0)), today, nil
	case RangeHalfYear:
		return from(today.AddDate(0, -6, 0)), today, nil
	case RangeYear:
		return from(time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)), today, nil
	case RangeCustom:
		if filter.Start.IsZero() || filter.End.IsZero() {
			return nil, model.Date{}, fmt.Errorf("%w: custom range needs start and end", apperrors.ErrInvalidDateRange)
		}
		if filter.Start.After(filter.End.Time) {
			return nil, model.Date{}, fmt.Errorf("%w: start is after end", apperrors.ErrInvalidDateRange)
		}
		start := filter.Start
		return &start, filter.End, nil
	}
	return nil, model.Date{}, fmt.Errorf("%w: unknown range %q", apperrors.ErrInvalidDateRange, filter.Range)
}

func rangeName(r string) string {
	r = strings.ToLower(strings.TrimSpace(r))
	if r == "" {
		return RangeMonth
	}
	return r
}

func parseTypeFilter(v string) (model.OptionType, error) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "all") {
		return "", nil
	}
	return model.ParseOptionType(v)
}

func parseDirectionFilter(v string) (model.Side, error) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "all") {
		return "", nil
	}
	return model.ParseSide(v)
}

func distribution(groups []model.ContractGroup) Distribution {
	var callValue, putValue, callPL, putPL decimal.Decimal
	for _, g := range groups {
		value := decimal.NewFromFloat(g.CurrentValue)
		pl := decimal.NewFromFloat(g.ProfitLoss)
		if g.OptionType == model.OptionPut {
			putValue = putValue.Add(value)
			putPL = putPL.Add(pl)
		} else {
			callValue = callValue.Add(value)
			callPL = callPL.Add(pl)
		}
	}

	d := Distribution{
		CallValue:      callValue.InexactFloat64(),
		PutValue:       putValue.InexactFloat64(),
		CallProfitLoss: callPL.InexactFloat64(),
		PutProfitLoss:  putPL.InexactFloat64(),
	}
	if total := callValue.Add(putValue); !total.IsZero() {
		hundred := decimal.NewFromInt(100)
		d.CallPercent = callValue.Mul(hundred).Div(total).Round(2).InexactFloat64()
		d.PutPercent = putValue.Mul(hundred).Div(total).Round(2).InexactFloat64()
	}
	return d
}
