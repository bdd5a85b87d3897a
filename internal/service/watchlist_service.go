package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Option-Ledger-Backend/internal/accounting"
	"github.com/ndewijer/Option-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Option-Ledger-Backend/internal/metrics"
	"github.com/ndewijer/Option-Ledger-Backend/internal/model"
	"github.com/ndewijer/Option-Ledger-Backend/internal/quote"
	"github.com/ndewijer/Option-Ledger-Backend/internal/repository"
)

// WatchlistStore persists the watchlist as one value.
type WatchlistStore interface {
	Load(ctx context.Context) ([]model.Stock, error)
	Save(ctx context.Context, stocks []model.Stock) error
}

// WatchContractInput carries the caller-supplied fields of a watched contract.
type WatchContractInput struct {
	ID             string
	Symbol         string
	StrikePrice    float64
	ExpirationDate model.Date
	OptionType     model.OptionType
	Premium        string
}

// WatchTarget is a watched contract in the form a quote provider needs.
type WatchTarget struct {
	ContractID string
	Ref        quote.OptionRef
}

// WatchlistService manages the followed stocks and their option contracts.
// Contract premiums held here are the quotes the ledger marks against.
type WatchlistService struct {
	mu     sync.RWMutex
	store  WatchlistStore
	stocks []model.Stock
	log    zerolog.Logger
	newID  func() string
}

// NewWatchlistService creates an empty watchlist backed by store.
func NewWatchlistService(store WatchlistStore, log zerolog.Logger) *WatchlistService {
	return &WatchlistService{
		store: store,
		log:   log,
		newID: uuid.NewString,
	}
}

// Load replaces the in-memory watchlist with the persisted one.
func (s *WatchlistService) Load(ctx context.Context) error {
	stocks, err := s.store.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.stocks = nil
		return fmt.Errorf("failed to load watchlist: %w", err)
	}
	s.stocks = stocks
	s.log.Info().Int("stocks", len(stocks)).Msg("Watchlist loaded")
	return nil
}

// List returns a copy of the watchlist.
func (s *WatchlistService) List() []model.Stock {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Stock, len(s.stocks))
	for i, st := range s.stocks {
		out[i] = cloneStock(st)
	}
	return out
}

// AddStock follows a new underlying. The stock id is the lowercase symbol.
func (s *WatchlistService) AddStock(ctx context.Context, symbol, name string) (model.Stock, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return model.Stock{}, apperrors.ErrInvalidSymbol
	}
	if strings.TrimSpace(name) == "" {
		name = symbol
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.stocks {
		if strings.EqualFold(st.Symbol, symbol) {
			return model.Stock{}, fmt.Errorf("%w: %s is already on the watchlist", apperrors.ErrDuplicateEntry, symbol)
		}
	}

	stock := model.Stock{
		ID:            strings.ToLower(symbol),
		Symbol:        symbol,
		Name:          strings.TrimSpace(name),
		CurrentPrice:  "--",
		Change:        "--",
		ChangePercent: "--",
		IsUp:          true,
		Contracts:     []model.WatchContract{},
	}
	s.stocks = append(s.stocks, stock)

	return cloneStock(stock), s.persist(ctx)
}

// RemoveStock unfollows a stock together with its contracts.
func (s *WatchlistService) RemoveStock(ctx context.Context, stockID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.stockIndex(stockID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrStockNotFound, stockID)
	}
	s.stocks = append(s.stocks[:idx], s.stocks[idx+1:]...)

	return s.persist(ctx)
}

// AddContract starts watching an option contract on a followed stock. The
// contract id, when given, must be unique across the watchlist; the ledger
// uses the same id for the matching contract group.
func (s *WatchlistService) AddContract(ctx context.Context, stockID string, in WatchContractInput) (model.WatchContract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.stockIndex(stockID)
	if idx < 0 {
		return model.WatchContract{}, fmt.Errorf("%w: %s", apperrors.ErrStockNotFound, stockID)
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = s.newID()
	} else if si, _ := s.contractIndex(id); si >= 0 {
		return model.WatchContract{}, fmt.Errorf("%w: contract %s", apperrors.ErrDuplicateEntry, id)
	}

	stock := &s.stocks[idx]
	c := buildWatchContract(id, stock.Symbol, in)
	stock.Contracts = append(stock.Contracts, c)

	return c, s.persist(ctx)
}

// UpdateContract replaces the fields of a watched contract, keeping its id.
// An empty premium keeps the previous one.
func (s *WatchlistService) UpdateContract(ctx context.Context, contractID string, in WatchContractInput) (model.WatchContract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	si, ci := s.contractIndex(contractID)
	if si < 0 {
		return model.WatchContract{}, fmt.Errorf("%w: %s", apperrors.ErrWatchContractNotFound, contractID)
	}

	stock := &s.stocks[si]
	prev := stock.Contracts[ci]
	c := buildWatchContract(contractID, stock.Symbol, in)
	if c.Premium == "" {
		c.Premium = prev.Premium
	}
	c.Greeks = prev.Greeks
	stock.Contracts[ci] = c

	return c, s.persist(ctx)
}

// RemoveContract stops watching a contract.
func (s *WatchlistService) RemoveContract(ctx context.Context, contractID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	si, ci := s.contractIndex(contractID)
	if si < 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrWatchContractNotFound, contractID)
	}
	stock := &s.stocks[si]
	stock.Contracts = append(stock.Contracts[:ci], stock.Contracts[ci+1:]...)

	return s.persist(ctx)
}

// Targets returns every watched contract that can be priced, and the symbols
// of all followed stocks. Contracts with an unparseable strike or expiration
// are skipped with a warning.
func (s *WatchlistService) Targets() ([]WatchTarget, []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var targets []WatchTarget
	symbols := make([]string, 0, len(s.stocks))
	for _, st := range s.stocks {
		symbols = append(symbols, st.Symbol)
		for _, c := range st.Contracts {
			ref, err := optionRef(st.Symbol, c)
			if err != nil {
				s.log.Warn().Err(err).Str("contract", c.ID).Msg("Skipping unpriceable watchlist contract")
				continue
			}
			targets = append(targets, WatchTarget{ContractID: c.ID, Ref: ref})
		}
	}
	return targets, symbols
}

// ApplyQuotes writes fetched premiums, Greeks and stock prices into the
// watchlist with a single persist. Contracts and stocks missing from the maps
// keep their previous values.
func (s *WatchlistService) ApplyQuotes(ctx context.Context, contractQuotes map[string]quote.Quote, stockQuotes map[string]quote.StockQuote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.stocks {
		st := &s.stocks[i]
		if sq, ok := stockQuotes[st.Symbol]; ok {
			applyStockQuote(st, sq)
		}
		for j := range st.Contracts {
			c := &st.Contracts[j]
			q, ok := contractQuotes[c.ID]
			if !ok {
				continue
			}
			c.Premium = formatMoney(q.Premium)
			if q.Greeks != nil {
				g := *q.Greeks
				c.Greeks = &g
			}
		}
	}

	return s.persist(ctx)
}

// Premiums returns the raw premium string of every watched contract by id.
// This is the quotes map the ledger resolves marks from.
func (s *WatchlistService) Premiums() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string)
	for _, st := range s.stocks {
		for _, c := range st.Contracts {
			if c.Premium != "" {
				out[c.ID] = c.Premium
			}
		}
	}
	return out
}

func (s *WatchlistService) persist(ctx context.Context) error {
	if err := s.store.Save(ctx, s.stocks); err != nil {
		metrics.PersistFailures.WithLabelValues(repository.WatchlistKey).Inc()
		s.log.Error().Err(err).Msg("Failed to persist watchlist, keeping in-memory state")
		return fmt.Errorf("%w: %w", apperrors.ErrPersistFailed, err)
	}
	return nil
}

func (s *WatchlistService) stockIndex(stockID string) int {
	for i := range s.stocks {
		if s.stocks[i].ID == stockID {
			return i
		}
	}
	return -1
}

func (s *WatchlistService) contractIndex(contractID string) (stockIdx, contractIdx int) {
	for i := range s.stocks {
		if j := s.stocks[i].FindContract(contractID); j >= 0 {
			return i, j
		}
	}
	return -1, -1
}

func buildWatchContract(id, underlying string, in WatchContractInput) model.WatchContract {
	symbol := strings.TrimSpace(in.Symbol)
	if symbol == "" {
		symbol = displaySymbol(model.ContractDescriptor{
			UnderlyingSymbol: underlying,
			StrikePrice:      in.StrikePrice,
			ExpirationDate:   in.ExpirationDate,
			OptionType:       in.OptionType,
		})
	}

	premium := strings.TrimSpace(in.Premium)
	if v, ok := accounting.ParsePremium(premium); ok {
		premium = formatMoney(v)
	}

	return model.WatchContract{
		ID:             id,
		Symbol:         symbol,
		StrikePrice:    strconv.FormatFloat(in.StrikePrice, 'f', 2, 64),
		ExpirationDate: in.ExpirationDate.String(),
		Premium:        premium,
		OptionType:     in.OptionType,
	}
}

func optionRef(underlying string, c model.WatchContract) (quote.OptionRef, error) {
	strike, ok := accounting.ParsePremium(c.StrikePrice)
	if !ok {
		return quote.OptionRef{}, fmt.Errorf("invalid strike %q", c.StrikePrice)
	}
	exp, err := model.ParseDate(c.ExpirationDate)
	if err != nil {
		return quote.OptionRef{}, err
	}
	ref := quote.OptionRef{
		Underlying: underlying,
		Expiration: exp,
		OptionType: c.OptionType,
		Strike:     strike,
	}
	return ref, ref.Validate()
}

func applyStockQuote(st *model.Stock, q quote.StockQuote) {
	if q.Name != "" {
		st.Name = q.Name
	}
	st.CurrentPrice = formatMoney(q.Price)
	st.Change = fmt.Sprintf("%+.2f", q.Change)
	st.ChangePercent = fmt.Sprintf("%+.2f%%", q.ChangePercent)
	st.IsUp = q.Change >= 0
	if q.Stats != nil {
		st.Details = &model.StockDetails{
			FiveDayAvg:      formatMoney(q.Stats.FiveDayAvg),
			FiveDayLow:      formatMoney(q.Stats.FiveDayLow),
			FiveDayHigh:     formatMoney(q.Stats.FiveDayHigh),
			FiftyTwoWeekAvg: formatMoney(q.Stats.FiftyTwoWeekAvg),
			FiftyTwoWeekLow: formatMoney(q.Stats.FiftyTwoWeekLow),
		}
	}
}

func formatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func cloneStock(st model.Stock) model.Stock {
	contracts := make([]model.WatchContract, len(st.Contracts))
	copy(contracts, st.Contracts)
	st.Contracts = contracts
	if st.Details != nil {
		d := *st.Details
		st.Details = &d
	}
	return st
}
