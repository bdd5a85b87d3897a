package validation

import (
	"fmt"
	"strings"
	"unicode"
)

// Common validation errors
var (
	ErrInvalidID = fmt.Errorf("invalid ID format")
)

// maxIDLength bounds caller-supplied ids. Ledger ids are UUIDs, but records
// imported from the app carry timestamp or "contract-<ms>" ids.
const maxIDLength = 128

// ValidateID checks that id is non-empty, reasonably short and free of
// whitespace and path separators.
func ValidateID(id string) error {
	if id == "" || len(id) > maxIDLength {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if strings.ContainsAny(id, "/\\?#") || strings.IndexFunc(id, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
