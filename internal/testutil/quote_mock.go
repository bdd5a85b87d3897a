package testutil

import (
	"context"
	"sync"

	"github.com/ndewijer/Option-Ledger-Backend/internal/quote"
)

// MockPremiumSource is a quote.PremiumSource returning predefined premiums
// keyed by OCC symbol (e.g. AAPL241220C00180000). Unknown contracts return
// quote.ErrNoData.
type MockPremiumSource struct {
	mu sync.Mutex
	// Quotes holds the quote to return per OCC symbol
	Quotes map[string]quote.Quote
	// Errors holds an error to return per OCC symbol
	Errors map[string]error
	// Calls tracks how many lookups were made
	Calls int
	// Hook, when set, runs before each lookup
	Hook func(ref quote.OptionRef)
}

// NewMockPremiumSource creates an empty mock premium source.
func NewMockPremiumSource() *MockPremiumSource {
	return &MockPremiumSource{
		Quotes: make(map[string]quote.Quote),
		Errors: make(map[string]error),
	}
}

func (m *MockPremiumSource) Name() string { return "mock" }

// WithPremium configures the premium returned for ref.
func (m *MockPremiumSource) WithPremium(ref quote.OptionRef, premium float64) *MockPremiumSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Quotes[quote.OCCSymbol(ref)] = quote.Quote{Premium: premium, Source: "mock"}
	return m
}

// WithError configures the error returned for ref.
func (m *MockPremiumSource) WithError(ref quote.OptionRef, err error) *MockPremiumSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[quote.OCCSymbol(ref)] = err
	return m
}

func (m *MockPremiumSource) ContractPremium(ctx context.Context, ref quote.OptionRef) (quote.Quote, error) {
	m.mu.Lock()
	m.Calls++
	hook := m.Hook
	symbol := quote.OCCSymbol(ref)
	q, ok := m.Quotes[symbol]
	err := m.Errors[symbol]
	m.mu.Unlock()

	if hook != nil {
		hook(ref)
	}
	if err := ctx.Err(); err != nil {
		return quote.Quote{}, err
	}
	if err != nil {
		return quote.Quote{}, err
	}
	if !ok {
		return quote.Quote{}, quote.ErrNoData
	}
	return q, nil
}

// MockStockSource is a quote.StockSource returning predefined stock quotes.
type MockStockSource struct {
	mu     sync.Mutex
	Quotes map[string]quote.StockQuote
	Err    error
}

// NewMockStockSource creates an empty mock stock source.
func NewMockStockSource() *MockStockSource {
	return &MockStockSource{Quotes: make(map[string]quote.StockQuote)}
}

// WithQuote configures the quote returned for q.Symbol.
func (m *MockStockSource) WithQuote(q quote.StockQuote) *MockStockSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Quotes[q.Symbol] = q
	return m
}

func (m *MockStockSource) StockQuote(_ context.Context, symbol string) (quote.StockQuote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return quote.StockQuote{}, m.Err
	}
	q, ok := m.Quotes[symbol]
	if !ok {
		return quote.StockQuote{}, quote.ErrNoData
	}
	return q, nil
}
