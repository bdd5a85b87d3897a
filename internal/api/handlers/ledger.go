package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Option-Ledger-Backend/internal/accounting"
	"github.com/ndewijer/Option-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Option-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Option-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Option-Ledger-Backend/internal/model"
	"github.com/ndewijer/Option-Ledger-Backend/internal/service"
	"github.com/ndewijer/Option-Ledger-Backend/internal/validation"
)

// LedgerHandler handles HTTP requests for the trade ledger.
// It parses and validates requests and delegates to the LedgerService; quote
// refreshes are delegated to the RefreshService and re-marking to the
// MarkService.
type LedgerHandler struct {
	ledgerService  *service.LedgerService
	refreshService *service.RefreshService
	markService    *service.MarkService
}

// NewLedgerHandler creates a new LedgerHandler. refreshService may be nil, in
// which case the refresh endpoint reports 503.
func NewLedgerHandler(ledgerService *service.LedgerService, refreshService *service.RefreshService, markService *service.MarkService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService:  ledgerService,
		refreshService: refreshService,
		markService:    markService,
	}
}

// TradeResult is the response to a trade mutation: the trade that was written
// and the recomputed contract it belongs to.
type TradeResult struct {
	Contract model.ContractGroup `json:"contract"`
	Trade    model.TradeRecord   `json:"trade"`
}

// Contracts handles GET requests to list contracts with their derived position.
// Open contracts are listed before closed ones.
//
// Endpoint: GET /api/ledger/contracts?status=all|open|closed
// Response: 200 OK with array of ContractGroup
// Error: 400 Bad Request if status is unknown
func (h *LedgerHandler) Contracts(w http.ResponseWriter, r *http.Request) {
	var groups []model.ContractGroup
	switch strings.ToLower(r.URL.Query().Get("status")) {
	case "", "all":
		groups = accounting.OpenFirst(h.ledgerService.Groups())
	case "open":
		groups, _ = h.ledgerService.Positions()
	case "closed":
		_, groups = h.ledgerService.Positions()
	default:
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidFilter.Error(), "status must be all, open or closed")
		return
	}

	if groups == nil {
		groups = []model.ContractGroup{}
	}
	response.RespondJSON(w, http.StatusOK, groups)
}

// Contract handles GET requests to retrieve one contract with its trades.
//
// Endpoint: GET /api/ledger/contracts/{id}
// Response: 200 OK with ContractGroup
// Error: 400 Bad Request if the ID is invalid (validated by middleware)
// Error: 404 Not Found if the contract is not in the ledger
func (h *LedgerHandler) Contract(w http.ResponseWriter, r *http.Request) {
	group, err := h.ledgerService.Group(chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "failed to retrieve contract")
		return
	}

	response.RespondJSON(w, http.StatusOK, group)
}

// Totals handles GET requests for the portfolio totals across all contracts.
//
// Endpoint: GET /api/ledger/totals
// Response: 200 OK with PortfolioTotals
func (h *LedgerHandler) Totals(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.ledgerService.Totals())
}

// CreateTrade handles POST requests to record a trade. The first trade of an
// untracked contract must carry the contract descriptor.
//
// Endpoint: POST /api/ledger/trades
// Request Body: CreateTradeRequest
// Response: 201 Created with TradeResult, with a warning if it was not persisted
// Error: 400 Bad Request if validation fails or the descriptor is missing
// Error: 500 Internal Server Error if the trade cannot be recorded
func (h *LedgerHandler) CreateTrade(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateTradeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTrade(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	in, err := req.TradeInput()
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	var descriptor *model.ContractDescriptor
	if req.Contract != nil {
		d, err := req.Contract.Descriptor()
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
			return
		}
		descriptor = &d
	}

	group, trade, err := h.ledgerService.AppendTrade(r.Context(), req.ContractID, descriptor, in)
	respondMutation(w, http.StatusCreated, TradeResult{Contract: group, Trade: trade}, err, "failed to create trade")
}

// UpdateTrade handles PUT requests to edit a trade. The edited trade replaces
// the old one under a new ID.
//
// Endpoint: PUT /api/ledger/trades/{id}
// Request Body: UpdateTradeRequest
// Response: 200 OK with TradeResult, with a warning if it was not persisted
// Error: 400 Bad Request if the ID is invalid (validated by middleware) or validation fails
// Error: 404 Not Found if the trade is not in the ledger
func (h *LedgerHandler) UpdateTrade(w http.ResponseWriter, r *http.Request) {
	tradeID := chi.URLParam(r, "id")

	req, err := parseJSON[request.UpdateTradeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateTrade(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	in, err := req.TradeInput()
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	group, trade, err := h.ledgerService.UpdateTrade(r.Context(), tradeID, in)
	respondMutation(w, http.StatusOK, TradeResult{Contract: group, Trade: trade}, err, "failed to update trade")
}

// DeleteTrade handles DELETE requests to remove a trade. Deleting a trade
// that does not exist succeeds, so retries are safe.
//
// Endpoint: DELETE /api/ledger/trades/{id}
// Response: 204 No Content on successful deletion
// Response: 200 OK with a warning if the deletion was not persisted
// Error: 400 Bad Request if the ID is invalid (validated by middleware)
func (h *LedgerHandler) DeleteTrade(w http.ResponseWriter, r *http.Request) {
	err := h.ledgerService.DeleteTrade(r.Context(), chi.URLParam(r, "id"))
	if err == nil {
		response.RespondJSON(w, http.StatusNoContent, nil)
		return
	}
	respondMutation(w, http.StatusOK, nil, err, "failed to delete trade")
}

// ClosePosition handles POST requests to close the open quantity of a contract
// at the given premium.
//
// Endpoint: POST /api/ledger/contracts/{id}/close
// Request Body: ClosePositionRequest (date, premium)
// Response: 201 Created with TradeResult, with a warning if it was not persisted
// Error: 400 Bad Request if validation fails or the position is already flat
// Error: 404 Not Found if the contract is not in the ledger
func (h *LedgerHandler) ClosePosition(w http.ResponseWriter, r *http.Request) {
	contractID := chi.URLParam(r, "id")

	req, err := parseJSON[request.ClosePositionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateClosePosition(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	date, err := model.ParseDate(req.Date)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	group, trade, err := h.ledgerService.ClosePosition(r.Context(), contractID, date, req.Premium)
	respondMutation(w, http.StatusCreated, TradeResult{Contract: group, Trade: trade}, err, "failed to close position")
}

// Refresh handles POST requests to fetch fresh premiums for the watchlist and
// re-mark the ledger. A refresh overtaken by a newer one reports
// superseded=true and changes nothing.
//
// Endpoint: POST /api/ledger/refresh
// Response: 200 OK with RefreshResult, with a warning if it was not persisted
// Error: 503 Service Unavailable if no quote source is configured
// Error: 500 Internal Server Error if the refresh fails
func (h *LedgerHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.refreshService == nil {
		response.RespondError(w, http.StatusServiceUnavailable, apperrors.ErrQuoteUnavailable.Error(), "no quote source configured")
		return
	}

	result, err := h.refreshService.Refresh(r.Context())
	if err != nil && !errors.Is(err, apperrors.ErrPersistFailed) {
		response.RespondError(w, http.StatusInternalServerError, "failed to refresh quotes", err.Error())
		return
	}
	respondMutation(w, http.StatusOK, result, err, "failed to refresh quotes")
}

// Recompute handles POST requests to re-mark every contract from the premiums
// the watchlist holds now, without fetching quotes.
//
// Endpoint: POST /api/ledger/recompute
// Response: 200 OK with array of ContractGroup (open first), with a warning if
// it was not persisted
// Error: 503 Service Unavailable if no watchlist is wired
func (h *LedgerHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	if h.markService == nil {
		response.RespondError(w, http.StatusServiceUnavailable, "recompute unavailable", "no watchlist configured")
		return
	}

	err := h.markService.Remark(r.Context())

	groups := accounting.OpenFirst(h.ledgerService.Groups())
	if groups == nil {
		groups = []model.ContractGroup{}
	}
	respondMutation(w, http.StatusOK, groups, err, "failed to recompute ledger")
}
