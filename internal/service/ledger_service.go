package service

import (
	"context"
	"fmt"
	"maps"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Option-Ledger-Backend/internal/accounting"
	"github.com/ndewijer/Option-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Option-Ledger-Backend/internal/metrics"
	"github.com/ndewijer/Option-Ledger-Backend/internal/model"
	"github.com/ndewijer/Option-Ledger-Backend/internal/repository"
)

// LedgerStore persists the full ledger as one value.
type LedgerStore interface {
	Load(ctx context.Context) ([]model.ContractGroup, error)
	Save(ctx context.Context, groups []model.ContractGroup) error
}

// LedgerService owns the contract groups and keeps their derived fields
// consistent with their trade records.
//
// Every mutation runs mutate, recompute and persist under one lock, so a
// reader never sees a half-applied change. A failed write keeps the
// in-memory state and is reported wrapped in apperrors.ErrPersistFailed;
// the next successful write reconciles the store.
type LedgerService struct {
	mu     sync.RWMutex
	store  LedgerStore
	groups []model.ContractGroup
	marks  map[string]string
	seq    uint64
	log    zerolog.Logger
	newID  func() string
}

// NewLedgerService creates an empty ledger backed by store. Call Load to
// read the persisted state.
func NewLedgerService(store LedgerStore, log zerolog.Logger) *LedgerService {
	return &LedgerService{
		store: store,
		marks: make(map[string]string),
		log:   log,
		newID: uuid.NewString,
	}
}

// Load replaces the in-memory ledger with the persisted one. Every group is
// recomputed from its raw trades; groups without trades are dropped. When the
// store cannot be read the ledger is left empty and the error is returned.
func (s *LedgerService) Load(ctx context.Context) error {
	groups, err := s.store.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.groups = nil
		s.updateGauge()
		return fmt.Errorf("failed to load ledger: %w", err)
	}

	loaded := make([]model.ContractGroup, 0, len(groups))
	for _, g := range groups {
		if len(g.TradeRecords) == 0 {
			s.log.Warn().Str("contract", g.ID).Msg("Dropping stored contract without trades")
			continue
		}
		if g.ID == "" {
			g.ID = s.newID()
		}
		if g.UnderlyingSymbol == "" {
			g.UnderlyingSymbol = underlyingFromSymbol(g.Symbol)
		}
		for i := range g.TradeRecords {
			if g.TradeRecords[i].ID == "" {
				g.TradeRecords[i].ID = s.newID()
			}
		}
		s.recompute(&g)
		loaded = append(loaded, g)
	}
	s.groups = loaded
	s.updateGauge()

	s.log.Info().Int("contracts", len(loaded)).Msg("Ledger loaded")
	return nil
}

// AppendTrade records a new trade on contractID. When the contract is not yet
// tracked a group is created from descriptor, which is then required. An
// empty contractID creates a new contract with a generated id.
func (s *LedgerService) AppendTrade(ctx context.Context, contractID string, descriptor *model.ContractDescriptor, in model.TradeInput) (model.ContractGroup, model.TradeRecord, error) {
	if err := checkTrade(in); err != nil {
		return model.ContractGroup{}, model.TradeRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in.ID != "" {
		if gi, _ := s.locateTrade(in.ID); gi >= 0 {
			return model.ContractGroup{}, model.TradeRecord{}, fmt.Errorf("%w: trade %s", apperrors.ErrDuplicateEntry, in.ID)
		}
	}

	idx := s.indexOf(contractID)
	if idx < 0 {
		if err := checkDescriptor(descriptor); err != nil {
			return model.ContractGroup{}, model.TradeRecord{}, err
		}
		if contractID == "" {
			contractID = s.newID()
		}
		d := *descriptor
		if d.UnderlyingSymbol == "" {
			d.UnderlyingSymbol = underlyingFromSymbol(d.Symbol)
		}
		d.UnderlyingSymbol = strings.ToUpper(d.UnderlyingSymbol)
		if d.Symbol == "" {
			d.Symbol = displaySymbol(d)
		}
		// Newest contracts first.
		s.groups = append([]model.ContractGroup{{ID: contractID, ContractDescriptor: d}}, s.groups...)
		idx = 0
		s.log.Info().Str("contract", contractID).Str("symbol", d.Symbol).Msg("Contract created")
	}

	g := &s.groups[idx]
	trade := s.newTrade(in)
	g.TradeRecords = append(g.TradeRecords, trade)
	s.recompute(g)
	metrics.LedgerMutations.WithLabelValues("append").Inc()

	result := g.Clone()
	return result, trade, s.persist(ctx)
}

// UpdateTrade edits a trade by deleting it and recording a new one, with a new
// id, in the same contract. The contract is recomputed and persisted once.
func (s *LedgerService) UpdateTrade(ctx context.Context, tradeID string, in model.TradeInput) (model.ContractGroup, model.TradeRecord, error) {
	if err := checkTrade(in); err != nil {
		return model.ContractGroup{}, model.TradeRecord{}, err
	}
	in.ID = ""

	s.mu.Lock()
	defer s.mu.Unlock()

	gi, ti := s.locateTrade(tradeID)
	if gi < 0 {
		return model.ContractGroup{}, model.TradeRecord{}, fmt.Errorf("%w: %s", apperrors.ErrTradeNotFound, tradeID)
	}

	g := &s.groups[gi]
	g.TradeRecords = append(g.TradeRecords[:ti], g.TradeRecords[ti+1:]...)
	trade := s.newTrade(in)
	g.TradeRecords = append(g.TradeRecords, trade)
	s.recompute(g)
	metrics.LedgerMutations.WithLabelValues("update").Inc()

	result := g.Clone()
	return result, trade, s.persist(ctx)
}

// DeleteTrade removes a trade from whichever contract holds it. A contract
// left without trades is removed. Deleting an unknown trade is a logged no-op,
// so a repeated delete is harmless.
func (s *LedgerService) DeleteTrade(ctx context.Context, tradeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	gi, ti := s.locateTrade(tradeID)
	if gi < 0 {
		s.log.Info().Str("trade", tradeID).Msg("Delete of unknown trade ignored")
		return nil
	}

	g := &s.groups[gi]
	g.TradeRecords = append(g.TradeRecords[:ti], g.TradeRecords[ti+1:]...)
	if len(g.TradeRecords) == 0 {
		s.log.Info().Str("contract", g.ID).Msg("Last trade deleted, removing contract")
		s.groups = append(s.groups[:gi], s.groups[gi+1:]...)
	} else {
		s.recompute(g)
	}
	metrics.LedgerMutations.WithLabelValues("delete").Inc()

	return s.persist(ctx)
}

// ClosePosition records a closing trade for the full open quantity of a
// contract, on the side opposite to the current position.
func (s *LedgerService) ClosePosition(ctx context.Context, contractID string, date model.Date, premium float64) (model.ContractGroup, model.TradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(contractID)
	if idx < 0 {
		return model.ContractGroup{}, model.TradeRecord{}, fmt.Errorf("%w: %s", apperrors.ErrContractNotFound, contractID)
	}
	g := &s.groups[idx]
	if !g.IsOpen() {
		return model.ContractGroup{}, model.TradeRecord{}, fmt.Errorf("%w: %s", apperrors.ErrPositionFlat, contractID)
	}

	opening := model.SideBuy
	if g.NetQuantity < 0 {
		opening = model.SideSell
	}
	in := model.TradeInput{
		Date:      date,
		Side:      opening.Opposite(),
		Premium:   premium,
		Quantity:  abs(g.NetQuantity),
		IsClosing: true,
	}
	if err := checkTrade(in); err != nil {
		return model.ContractGroup{}, model.TradeRecord{}, err
	}

	trade := s.newTrade(in)
	g.TradeRecords = append(g.TradeRecords, trade)
	s.recompute(g)
	metrics.LedgerMutations.WithLabelValues("close").Inc()

	result := g.Clone()
	return result, trade, s.persist(ctx)
}

// RecomputeAll makes quotes the current marks and recomputes every contract
// from its raw trades. Calling it twice with the same quotes yields the same
// ledger.
func (s *LedgerService) RecomputeAll(ctx context.Context, quotes map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recomputeAllLocked(quotes)
	return s.persist(ctx)
}

// RecomputeFrom is RecomputeAll with the quotes read from premiums under the
// ledger lock, so a refresh commit cannot land between the read and the
// recompute.
func (s *LedgerService) RecomputeFrom(ctx context.Context, premiums func() map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recomputeAllLocked(premiums())
	return s.persist(ctx)
}

// BeginRefresh issues the sequence number of a new refresh. Only the most
// recently issued number can commit.
func (s *LedgerService) BeginRefresh() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	return s.seq
}

// IsCurrent reports whether seq is still the most recently issued refresh.
func (s *LedgerService) IsCurrent(seq uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return seq == s.seq
}

// CommitRefresh applies the quotes of refresh seq. A refresh that has been
// superseded by a newer BeginRefresh is discarded and reports false.
func (s *LedgerService) CommitRefresh(ctx context.Context, seq uint64, quotes map[string]string) (bool, error) {
	return s.CommitRefreshWith(ctx, seq, func() (map[string]string, error) {
		return quotes, nil
	})
}

// CommitRefreshWith is CommitRefresh with the quotes produced by apply. apply
// runs under the ledger lock and only while seq is still current, so work it
// does (such as writing the watchlist) cannot interleave with a newer commit.
// When apply fails the ledger is left unchanged.
func (s *LedgerService) CommitRefreshWith(ctx context.Context, seq uint64, apply func() (map[string]string, error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		s.log.Debug().Uint64("seq", seq).Uint64("latest", s.seq).Msg("Discarding superseded refresh")
		return false, nil
	}

	quotes, err := apply()
	if err != nil {
		return false, err
	}

	s.recomputeAllLocked(quotes)
	return true, s.persist(ctx)
}

// Groups returns a copy of every contract group in ledger order (newest first).
func (s *LedgerService) Groups() []model.ContractGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.ContractGroup, len(s.groups))
	for i, g := range s.groups {
		out[i] = g.Clone()
	}
	return out
}

// Group returns a copy of one contract group.
func (s *LedgerService) Group(contractID string) (model.ContractGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(contractID)
	if idx < 0 {
		return model.ContractGroup{}, fmt.Errorf("%w: %s", apperrors.ErrContractNotFound, contractID)
	}
	return s.groups[idx].Clone(), nil
}

// FindTrade returns the trade with the given id and the contract holding it.
func (s *LedgerService) FindTrade(tradeID string) (model.ContractGroup, model.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gi, ti := s.locateTrade(tradeID)
	if gi < 0 {
		return model.ContractGroup{}, model.TradeRecord{}, fmt.Errorf("%w: %s", apperrors.ErrTradeNotFound, tradeID)
	}
	return s.groups[gi].Clone(), s.groups[gi].TradeRecords[ti], nil
}

// Positions returns open and closed contracts separately.
func (s *LedgerService) Positions() (open, closed []model.ContractGroup) {
	return accounting.Partition(s.Groups())
}

// Totals aggregates all contracts.
func (s *LedgerService) Totals() model.PortfolioTotals {
	return accounting.Aggregate(s.Groups())
}

// Marks returns a copy of the current quotes by contract id.
func (s *LedgerService) Marks() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.marks)
}

func (s *LedgerService) recomputeAllLocked(quotes map[string]string) {
	s.marks = maps.Clone(quotes)
	if s.marks == nil {
		s.marks = make(map[string]string)
	}
	for i := range s.groups {
		s.recompute(&s.groups[i])
	}
	metrics.LedgerMutations.WithLabelValues("recompute").Inc()
}

// recompute derives g's snapshot from its raw trades and the current mark.
func (s *LedgerService) recompute(g *model.ContractGroup) {
	accounting.Apply(g, accounting.Mark(g.ID, s.marks))
}

func (s *LedgerService) persist(ctx context.Context) error {
	s.updateGauge()
	if err := s.store.Save(ctx, s.groups); err != nil {
		metrics.PersistFailures.WithLabelValues(repository.LedgerKey).Inc()
		s.log.Error().Err(err).Msg("Failed to persist ledger, keeping in-memory state")
		return fmt.Errorf("%w: %w", apperrors.ErrPersistFailed, err)
	}
	return nil
}

func (s *LedgerService) updateGauge() {
	open := 0
	for _, g := range s.groups {
		if g.IsOpen() {
			open++
		}
	}
	metrics.OpenContracts.Set(float64(open))
}

func (s *LedgerService) newTrade(in model.TradeInput) model.TradeRecord {
	id := in.ID
	if id == "" {
		id = s.newID()
	}
	return model.TradeRecord{
		ID:        id,
		Date:      in.Date,
		Side:      in.Side,
		Premium:   in.Premium,
		Quantity:  in.Quantity,
		IsClosing: in.IsClosing,
	}
}

func (s *LedgerService) indexOf(contractID string) int {
	if contractID == "" {
		return -1
	}
	for i := range s.groups {
		if s.groups[i].ID == contractID {
			return i
		}
	}
	return -1
}

func (s *LedgerService) locateTrade(tradeID string) (groupIdx, tradeIdx int) {
	if tradeID == "" {
		return -1, -1
	}
	for i := range s.groups {
		if j := s.groups[i].FindTrade(tradeID); j >= 0 {
			return i, j
		}
	}
	return -1, -1
}

func checkTrade(in model.TradeInput) error {
	switch {
	case in.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be positive", apperrors.ErrInvalidTrade)
	case math.IsNaN(in.Premium) || math.IsInf(in.Premium, 0) || in.Premium < 0:
		return fmt.Errorf("%w: premium must be a non-negative number", apperrors.ErrInvalidTrade)
	case in.Side != model.SideBuy && in.Side != model.SideSell:
		return fmt.Errorf("%w: side must be BUY or SELL", apperrors.ErrInvalidTrade)
	case in.Date.IsZero():
		return fmt.Errorf("%w: date is required", apperrors.ErrInvalidTrade)
	}
	return nil
}

func checkDescriptor(d *model.ContractDescriptor) error {
	if d == nil {
		return apperrors.ErrMissingDescriptor
	}
	var missing []string
	if strings.TrimSpace(d.UnderlyingSymbol) == "" && strings.TrimSpace(d.Symbol) == "" {
		missing = append(missing, "underlyingSymbol")
	}
	if !(d.StrikePrice > 0) || math.IsInf(d.StrikePrice, 0) {
		missing = append(missing, "strikePrice")
	}
	if d.ExpirationDate.IsZero() {
		missing = append(missing, "expirationDate")
	}
	if d.OptionType != model.OptionCall && d.OptionType != model.OptionPut {
		missing = append(missing, "optionType")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrMissingDescriptor, strings.Join(missing, ", "))
	}
	return nil
}

// displaySymbol renders the label the app showed, e.g. "AAPL 12/15/23 180.00 CALL".
func displaySymbol(d model.ContractDescriptor) string {
	return fmt.Sprintf("%s %s %.2f %s",
		d.UnderlyingSymbol,
		d.ExpirationDate.Format("01/02/06"),
		d.StrikePrice,
		d.OptionType,
	)
}

func underlyingFromSymbol(symbol string) string {
	fields := strings.Fields(symbol)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
