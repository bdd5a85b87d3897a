package accounting

import (
	"strconv"
	"strings"
)

var premiumReplacer = strings.NewReplacer("$", "", ",", "", " ", "")

// ParsePremium parses a premium as the watchlist stores it ("3.45", "$3.45",
// "$1,234.50"). It reports false for anything that is not a finite,
// non-negative number.
func ParsePremium(raw string) (float64, bool) {
	cleaned := premiumReplacer.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || !isFinite(v) || v < 0 {
		return 0, false
	}
	return v, true
}

// ResolvePremium returns the live premium for contractID from quotes.
// A false result is the normal "no quote" outcome and means the caller marks
// the position at its average price.
func ResolvePremium(contractID string, quotes map[string]string) (float64, bool) {
	raw, ok := quotes[contractID]
	if !ok {
		return 0, false
	}
	return ParsePremium(raw)
}

// Mark is ResolvePremium in the form ComputeSnapshot takes.
func Mark(contractID string, quotes map[string]string) *float64 {
	v, ok := ResolvePremium(contractID, quotes)
	if !ok {
		return nil
	}
	return &v
}
