package handlers

import (
	"errors"
	"net/http"

	"github.com/ndewijer/Option-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Option-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Option-Ledger-Backend/internal/service"
)

// ImportHandler handles HTTP requests for importing broker statements.
type ImportHandler struct {
	importService *service.ImportService
}

// NewImportHandler creates a new ImportHandler. importService may be nil, in
// which case the import endpoint reports 503.
func NewImportHandler(importService *service.ImportService) *ImportHandler {
	return &ImportHandler{
		importService: importService,
	}
}

// Import handles POST requests to download the configured IBKR Flex statement
// and record its option trades. Importing the same statement again records
// nothing new.
//
// Endpoint: POST /api/ledger/import
// Response: 200 OK with ImportResult, with a warning if it was not persisted
// Error: 503 Service Unavailable if no Flex token or query id is configured
// Error: 502 Bad Gateway if the statement could not be downloaded
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	if h.importService == nil || !h.importService.Configured() {
		response.RespondError(w, http.StatusServiceUnavailable, apperrors.ErrImportNotConfigured.Error(), "set IBKR_FLEX_TOKEN and IBKR_FLEX_QUERY_ID")
		return
	}

	result, err := h.importService.Import(r.Context())
	if err != nil && !errors.Is(err, apperrors.ErrPersistFailed) {
		response.RespondError(w, http.StatusBadGateway, "failed to import flex statement", err.Error())
		return
	}
	respondMutation(w, http.StatusOK, result, err, "failed to import flex statement")
}
