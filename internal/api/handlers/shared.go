package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ndewijer/Option-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Option-Ledger-Backend/internal/apperrors"
)

const maxBodyBytes = 1 << 20

// parseJSON decodes the request body into T.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T
	if r.Body == nil {
		return req, errors.New("request body is required")
	}

	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid JSON: %w", err)
	}
	return req, nil
}

// errorStatus maps a service error to the HTTP status it is reported with.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrContractNotFound),
		errors.Is(err, apperrors.ErrTradeNotFound),
		errors.Is(err, apperrors.ErrStockNotFound),
		errors.Is(err, apperrors.ErrWatchContractNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicateEntry):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrMissingDescriptor),
		errors.Is(err, apperrors.ErrInvalidTrade),
		errors.Is(err, apperrors.ErrPositionFlat),
		errors.Is(err, apperrors.ErrInvalidSymbol),
		errors.Is(err, apperrors.ErrInvalidFilter),
		errors.Is(err, apperrors.ErrInvalidDateRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err with the status errorStatus picks. Known
// errors use their own message; anything else uses fallback.
func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	status := errorStatus(err)
	message := fallback
	if status != http.StatusInternalServerError {
		message = rootMessage(err)
	}
	response.RespondError(w, status, message, err.Error())
}

// respondMutation writes the result of a mutation. A persist failure still
// reports success, since the change was applied in memory, and carries the
// failure as a warning.
func respondMutation(w http.ResponseWriter, status int, data interface{}, err error, fallback string) {
	if err != nil && !errors.Is(err, apperrors.ErrPersistFailed) {
		respondServiceError(w, err, fallback)
		return
	}

	resp := response.MutationResponse{Data: data}
	if err != nil {
		resp.Warning = err.Error()
	}
	response.RespondJSON(w, status, resp)
}

func rootMessage(err error) string {
	for _, sentinel := range []error{
		apperrors.ErrContractNotFound,
		apperrors.ErrTradeNotFound,
		apperrors.ErrStockNotFound,
		apperrors.ErrWatchContractNotFound,
		apperrors.ErrDuplicateEntry,
		apperrors.ErrMissingDescriptor,
		apperrors.ErrInvalidTrade,
		apperrors.ErrPositionFlat,
		apperrors.ErrInvalidSymbol,
		apperrors.ErrInvalidFilter,
		apperrors.ErrInvalidDateRange,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
