package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Option-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Option-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Option-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Option-Ledger-Backend/internal/service"
	"github.com/ndewijer/Option-Ledger-Backend/internal/validation"
)

// WatchlistHandler handles HTTP requests for followed stocks and the option
// contracts watched on them. Contract changes re-mark the ledger through the
// MarkService.
type WatchlistHandler struct {
	watchlistService *service.WatchlistService
	markService      *service.MarkService
}

// NewWatchlistHandler creates a new WatchlistHandler with the provided service dependencies.
func NewWatchlistHandler(watchlistService *service.WatchlistService, markService *service.MarkService) *WatchlistHandler {
	return &WatchlistHandler{
		watchlistService: watchlistService,
		markService:      markService,
	}
}

// Watchlist handles GET requests to list followed stocks with their contracts.
//
// Endpoint: GET /api/watchlist
// Response: 200 OK with array of Stock
func (h *WatchlistHandler) Watchlist(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.watchlistService.List())
}

// AddStock handles POST requests to follow a stock.
//
// Endpoint: POST /api/watchlist/stocks
// Request Body: CreateStockRequest (symbol, name)
// Response: 201 Created with Stock, with a warning if it was not persisted
// Error: 400 Bad Request if validation fails
// Error: 409 Conflict if the stock is already followed
func (h *WatchlistHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateStockRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateStock(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	stock, err := h.watchlistService.AddStock(r.Context(), req.Symbol, req.Name)
	respondMutation(w, http.StatusCreated, stock, err, "failed to add stock")
}

// RemoveStock handles DELETE requests to unfollow a stock and its contracts.
//
// Endpoint: DELETE /api/watchlist/stocks/{id}
// Response: 204 No Content on successful deletion
// Response: 200 OK with a warning if the deletion was not persisted
// Error: 404 Not Found if the stock is not followed
func (h *WatchlistHandler) RemoveStock(w http.ResponseWriter, r *http.Request) {
	err := h.watchlistService.RemoveStock(r.Context(), chi.URLParam(r, "id"))
	err = h.remark(r, err)
	if err == nil {
		response.RespondJSON(w, http.StatusNoContent, nil)
		return
	}
	respondMutation(w, http.StatusOK, nil, err, "failed to remove stock")
}

// AddContract handles POST requests to watch a contract on a followed stock.
//
// Endpoint: POST /api/watchlist/stocks/{id}/contracts
// Request Body: WatchContractRequest
// Response: 201 Created with WatchContract, with a warning if it was not persisted
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the stock is not followed
// Error: 409 Conflict if a contract with the same ID is already watched
func (h *WatchlistHandler) AddContract(w http.ResponseWriter, r *http.Request) {
	stockID := chi.URLParam(r, "id")

	in, ok := parseWatchContract(w, r)
	if !ok {
		return
	}

	contract, err := h.watchlistService.AddContract(r.Context(), stockID, in)
	err = h.remark(r, err)
	respondMutation(w, http.StatusCreated, contract, err, "failed to add contract")
}

// UpdateContract handles PUT requests to edit a watched contract. An empty
// premium keeps the current one.
//
// Endpoint: PUT /api/watchlist/contracts/{id}
// Request Body: WatchContractRequest
// Response: 200 OK with WatchContract, with a warning if it was not persisted
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the contract is not watched
func (h *WatchlistHandler) UpdateContract(w http.ResponseWriter, r *http.Request) {
	contractID := chi.URLParam(r, "id")

	in, ok := parseWatchContract(w, r)
	if !ok {
		return
	}

	contract, err := h.watchlistService.UpdateContract(r.Context(), contractID, in)
	err = h.remark(r, err)
	respondMutation(w, http.StatusOK, contract, err, "failed to update contract")
}

// RemoveContract handles DELETE requests to stop watching a contract.
//
// Endpoint: DELETE /api/watchlist/contracts/{id}
// Response: 204 No Content on successful deletion
// Response: 200 OK with a warning if the deletion was not persisted
// Error: 404 Not Found if the contract is not watched
func (h *WatchlistHandler) RemoveContract(w http.ResponseWriter, r *http.Request) {
	err := h.watchlistService.RemoveContract(r.Context(), chi.URLParam(r, "id"))
	err = h.remark(r, err)
	if err == nil {
		response.RespondJSON(w, http.StatusNoContent, nil)
		return
	}
	respondMutation(w, http.StatusOK, nil, err, "failed to remove contract")
}

// remark re-marks the ledger after a watchlist change that was applied in
// memory, including one that failed to persist. err is the change's result.
func (h *WatchlistHandler) remark(r *http.Request, err error) error {
	if h.markService == nil || (err != nil && !errors.Is(err, apperrors.ErrPersistFailed)) {
		return err
	}
	return errors.Join(err, h.markService.Remark(r.Context()))
}

func parseWatchContract(w http.ResponseWriter, r *http.Request) (service.WatchContractInput, bool) {
	req, err := parseJSON[request.WatchContractRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return service.WatchContractInput{}, false
	}

	if err := validation.ValidateWatchContract(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return service.WatchContractInput{}, false
	}

	in, err := req.Input()
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return service.WatchContractInput{}, false
	}
	return in, true
}
