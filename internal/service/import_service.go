package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Option-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Option-Ledger-Backend/internal/ibkr"
	"github.com/ndewijer/Option-Ledger-Backend/internal/model"
	"github.com/ndewijer/Option-Ledger-Backend/internal/quote"
)

var flexDateLayouts = []string{"20060102", model.DateLayout}

// ImportResult summarizes one Flex statement import.
type ImportResult struct {
	Trades    int      `json:"trades"`
	Imported  int      `json:"imported"`
	Skipped   int      `json:"skipped"`
	Ignored   int      `json:"ignored"`
	Failed    int      `json:"failed"`
	Contracts []string `json:"contracts"`
}

// ImportService records option executions from an IBKR Flex statement in the
// ledger. Every execution keeps its IBKR transaction id, so importing the same
// statement twice records nothing new.
type ImportService struct {
	ledger  *LedgerService
	client  ibkr.Client
	token   string
	queryID int
	log     zerolog.Logger
}

// NewImportService creates an ImportService. An empty token or zero queryID
// leaves the import unconfigured.
func NewImportService(ledger *LedgerService, client ibkr.Client, token string, queryID int, log zerolog.Logger) *ImportService {
	return &ImportService{
		ledger:  ledger,
		client:  client,
		token:   token,
		queryID: queryID,
		log:     log,
	}
}

// Configured reports whether a Flex token and query id are set.
func (s *ImportService) Configured() bool {
	return s.client != nil && s.token != "" && s.queryID != 0
}

// Import downloads the Flex statement and appends its option trades, oldest
// first. Executions matching a tracked contract are added to it; others create
// a new contract. A persist failure does not stop the import and is returned
// wrapped in ErrPersistFailed.
func (s *ImportService) Import(ctx context.Context) (ImportResult, error) {
	if !s.Configured() {
		return ImportResult{}, apperrors.ErrImportNotConfigured
	}

	report, err := s.client.RequestFlexReport(ctx, s.token, s.queryID)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to fetch flex statement: %w", err)
	}

	trades := report.Trades()
	slices.SortStableFunc(trades, func(a, b ibkr.Trade) int {
		return cmp.Or(cmp.Compare(a.TradeDate, b.TradeDate), cmp.Compare(a.TransactionID, b.TransactionID))
	})

	contracts := s.contractIndex()
	touched := map[string]bool{}
	result := ImportResult{Contracts: []string{}}
	var persistErr error

	for _, t := range trades {
		if !t.IsOption() || t.IsCancellation() {
			result.Ignored++
			continue
		}
		result.Trades++

		descriptor, in, err := flexTrade(t)
		if err != nil {
			result.Failed++
			s.log.Warn().Err(err).Int64("transaction", t.TransactionID).Msg("Skipping unreadable flex trade")
			continue
		}

		occ := quote.OCCSymbol(quote.OptionRef{
			Underlying: descriptor.UnderlyingSymbol,
			Expiration: descriptor.ExpirationDate,
			OptionType: descriptor.OptionType,
			Strike:     descriptor.StrikePrice,
		})
		contractID, known := contracts[occ]
		if !known {
			contractID = "ibkr-" + strings.ToLower(occ)
		}

		g, _, err := s.ledger.AppendTrade(ctx, contractID, &descriptor, in)
		switch {
		case errors.Is(err, apperrors.ErrDuplicateEntry):
			result.Skipped++
			continue
		case err != nil && !errors.Is(err, apperrors.ErrPersistFailed):
			result.Failed++
			s.log.Warn().Err(err).Int64("transaction", t.TransactionID).Msg("Failed to import flex trade")
			continue
		case err != nil:
			persistErr = err
		}

		result.Imported++
		contracts[occ] = g.ID
		if !touched[g.ID] {
			touched[g.ID] = true
			result.Contracts = append(result.Contracts, g.ID)
		}
	}

	s.log.Info().
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("Flex statement imported")

	return result, persistErr
}

// contractIndex maps the OCC symbol of every tracked contract to its id.
func (s *ImportService) contractIndex() map[string]string {
	index := map[string]string{}
	for _, g := range s.ledger.Groups() {
		index[quote.OCCSymbol(quote.OptionRef{
			Underlying: g.UnderlyingSymbol,
			Expiration: g.ExpirationDate,
			OptionType: g.OptionType,
			Strike:     g.StrikePrice,
		})] = g.ID
	}
	return index
}

// flexTrade converts a Flex option execution. The trade id is derived from the
// IBKR transaction id.
func flexTrade(t ibkr.Trade) (model.ContractDescriptor, model.TradeInput, error) {
	expiry, err := parseFlexDate(t.Expiry)
	if err != nil {
		return model.ContractDescriptor{}, model.TradeInput{}, fmt.Errorf("invalid expiry: %w", err)
	}
	tradeDate, err := parseFlexDate(t.TradeDate)
	if err != nil {
		return model.ContractDescriptor{}, model.TradeInput{}, fmt.Errorf("invalid trade date: %w", err)
	}

	var optionType model.OptionType
	switch t.PutCall {
	case "C":
		optionType = model.OptionCall
	case "P":
		optionType = model.OptionPut
	default:
		return model.ContractDescriptor{}, model.TradeInput{}, fmt.Errorf("invalid putCall: %q", t.PutCall)
	}

	fields := strings.Fields(t.BuySell)
	if len(fields) == 0 {
		return model.ContractDescriptor{}, model.TradeInput{}, errors.New("missing buySell")
	}
	side, err := model.ParseSide(fields[0])
	if err != nil {
		return model.ContractDescriptor{}, model.TradeInput{}, err
	}

	qty := math.Abs(t.Quantity)
	if qty != math.Trunc(qty) {
		return model.ContractDescriptor{}, model.TradeInput{}, fmt.Errorf("fractional quantity: %v", t.Quantity)
	}

	if t.TransactionID == 0 {
		return model.ContractDescriptor{}, model.TradeInput{}, errors.New("missing transactionID")
	}

	underlying := t.UnderlyingSymbol
	if underlying == "" {
		underlying, _, _ = strings.Cut(strings.TrimSpace(t.Symbol), " ")
	}

	descriptor := model.ContractDescriptor{
		UnderlyingSymbol: strings.ToUpper(underlying),
		StrikePrice:      t.Strike,
		ExpirationDate:   expiry,
		OptionType:       optionType,
	}
	in := model.TradeInput{
		ID:        "ibkr-" + strconv.FormatInt(t.TransactionID, 10),
		Date:      tradeDate,
		Side:      side,
		Premium:   math.Abs(t.TradePrice),
		Quantity:  int64(qty),
		IsClosing: t.OpenCloseIndicator == "C",
	}
	return descriptor, in, nil
}

func parseFlexDate(s string) (model.Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range flexDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.NewDate(t), nil
		}
	}
	return model.Date{}, fmt.Errorf("unrecognized date %q", s)
}
