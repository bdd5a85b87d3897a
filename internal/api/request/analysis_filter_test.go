package request

import (
	"testing"
)

func TestParseAnalysisFilter(t *testing.T) {
	t.Run("default values when no parameters provided", func(t *testing.T) {
		filter, err := ParseAnalysisFilter("", "", "", "", "")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if filter.Range != "month" {
			t.Errorf("Expected default Range 'month', got '%s'", filter.Range)
		}
		if filter.ContractType != "" || filter.Direction != "" {
			t.Errorf("Expected empty type and direction, got '%s' and '%s'", filter.ContractType, filter.Direction)
		}
	})

	t.Run("normalizes case", func(t *testing.T) {
		filter, err := ParseAnalysisFilter("Quarter", "", "", "PUT", "Sell")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if filter.Range != "quarter" || filter.ContractType != "put" || filter.Direction != "sell" {
			t.Errorf("Unexpected filter: %+v", filter)
		}
	})

	t.Run("custom range", func(t *testing.T) {
		filter, err := ParseAnalysisFilter("custom", "2024-01-01", "2024-03-31", "", "")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if filter.Start.String() != "2024-01-01" {
			t.Errorf("Expected start 2024-01-01, got %s", filter.Start)
		}
		if filter.End.String() != "2024-03-31" {
			t.Errorf("Expected end 2024-03-31, got %s", filter.End)
		}
	})

	t.Run("start and end ignored outside custom range", func(t *testing.T) {
		filter, err := ParseAnalysisFilter("week", "garbage", "", "", "")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !filter.Start.IsZero() {
			t.Errorf("Expected zero start, got %s", filter.Start)
		}
	})

	t.Run("invalid parameters", func(t *testing.T) {
		cases := []struct {
			name                                 string
			rng, start, end, contract, direction string
		}{
			{name: "unknown range", rng: "decade"},
			{name: "unknown type", contract: "straddle"},
			{name: "unknown direction", direction: "hold"},
			{name: "custom without dates", rng: "custom"},
			{name: "custom bad start", rng: "custom", start: "01/01/2024", end: "2024-02-01"},
			{name: "custom bad end", rng: "custom", start: "2024-01-01", end: "tomorrow"},
			{name: "custom reversed", rng: "custom", start: "2024-03-01", end: "2024-02-01"},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if _, err := ParseAnalysisFilter(tc.rng, tc.start, tc.end, tc.contract, tc.direction); err == nil {
					t.Errorf("Expected error for %s", tc.name)
				}
			})
		}
	})
}
