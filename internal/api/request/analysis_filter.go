package request

import (
	"fmt"
	"strings"

	"github.com/ndewijer/Option-Ledger-Backend/internal/model"
	"github.com/ndewijer/Option-Ledger-Backend/internal/service"
)

var validRanges = map[string]bool{
	service.RangeAll: true, service.RangeToday: true, service.RangeWeek: true,
	service.RangeMonth: true, service.RangeQuarter: true, service.RangeHalfYear: true,
	service.RangeYear: true, service.RangeCustom: true,
}

// ParseAnalysisFilter extracts and validates analytics filters from query parameters.
// All parameters are optional.
//
// Validation rules:
//   - range: all, today, week, month, quarter, halfyear, year or custom (defaults to month)
//   - start/end: YYYY-MM-DD, both required for a custom range, start not after end
//   - type: all, call or put (defaults to all)
//   - direction: all, buy or sell (defaults to all)
func ParseAnalysisFilter(rangeParam, startParam, endParam, typeParam, directionParam string) (service.AnalysisFilter, error) {
	filter := service.AnalysisFilter{
		Range:        strings.ToLower(strings.TrimSpace(rangeParam)),
		ContractType: strings.ToLower(strings.TrimSpace(typeParam)),
		Direction:    strings.ToLower(strings.TrimSpace(directionParam)),
	}

	if filter.Range == "" {
		filter.Range = service.RangeMonth
	}
	if !validRanges[filter.Range] {
		return service.AnalysisFilter{}, fmt.Errorf("invalid range: %s", rangeParam)
	}

	switch filter.ContractType {
	case "", "all", "call", "put":
	default:
		return service.AnalysisFilter{}, fmt.Errorf("invalid type: %s", typeParam)
	}

	switch filter.Direction {
	case "", "all", "buy", "sell":
	default:
		return service.AnalysisFilter{}, fmt.Errorf("invalid direction: %s", directionParam)
	}

	if filter.Range != service.RangeCustom {
		return filter, nil
	}

	if startParam == "" || endParam == "" {
		return service.AnalysisFilter{}, fmt.Errorf("start and end are required for a custom range")
	}
	start, err := model.ParseDate(startParam)
	if err != nil {
		return service.AnalysisFilter{}, fmt.Errorf("invalid start: %w", err)
	}
	end, err := model.ParseDate(endParam)
	if err != nil {
		return service.AnalysisFilter{}, fmt.Errorf("invalid end: %w", err)
	}
	if start.After(end.Time) {
		return service.AnalysisFilter{}, fmt.Errorf("start must not be after end")
	}
	filter.Start = start
	filter.End = end

	return filter, nil
}
