package apperrors

import "errors"

// Domain entity errors represent missing entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrContractNotFound indicates that no contract group exists for the given ID.
	ErrContractNotFound = errors.New("contract not found")

	// ErrTradeNotFound indicates that no trade record with the given ID exists in the ledger.
	ErrTradeNotFound = errors.New("trade not found")

	// ErrStockNotFound indicates that the watchlist holds no stock with the given ID.
	ErrStockNotFound = errors.New("stock not found")

	// ErrWatchContractNotFound indicates that the watchlist holds no contract with the given ID.
	ErrWatchContractNotFound = errors.New("watchlist contract not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrPositionFlat indicates that a close was requested for a contract whose
	// net quantity is already zero.
	ErrPositionFlat = errors.New("position is already closed")

	// ErrMissingDescriptor indicates that the first trade of an untracked contract
	// was submitted without its symbol, strike, expiration or option type.
	ErrMissingDescriptor = errors.New("contract descriptor is required for a new contract")

	// ErrInvalidTrade indicates that a trade reached the ledger with a non-positive
	// quantity, a negative or non-finite premium, a missing date or an unknown side.
	ErrInvalidTrade = errors.New("invalid trade")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrDuplicateEntry indicates that an entity with the same unique key already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	ErrInvalidSymbol = errors.New("symbol is required")

	// ErrInvalidFilter indicates an unknown contract type or direction filter value.
	ErrInvalidFilter = errors.New("invalid filter")
)

// Operation failure errors represent collaborator failures.
// The in-memory state stays valid when one of these is returned.
var (
	// ErrPersistFailed indicates that the ledger or watchlist could not be written
	// to the store. The mutation itself was applied in memory.
	ErrPersistFailed = errors.New("failed to persist state")

	// ErrQuoteUnavailable indicates that no quote source returned data.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrImportNotConfigured indicates that no IBKR Flex token or query id is set.
	ErrImportNotConfigured = errors.New("IBKR import is not configured")
)
