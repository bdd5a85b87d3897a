package handlers

import (
	"net/http"

	"github.com/ndewijer/Option-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Option-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Option-Ledger-Backend/internal/service"
)

// AnalyticsHandler handles HTTP requests for the analytics screen.
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler with the provided service dependency.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// Analyze handles GET requests for a filtered performance report.
// Contracts are re-evaluated from the trades inside the window only.
//
// Endpoint: GET /api/analytics
// Query Parameters:
//   - range: all, today, week, month, quarter, halfyear, year or custom (default month)
//   - start, end: YYYY-MM-DD, required when range=custom
//   - type: all, call or put
//   - direction: all, buy or sell
//
// Response: 200 OK with AnalysisReport
// Error: 400 Bad Request if a filter is invalid
// Error: 500 Internal Server Error if the report cannot be built
func (h *AnalyticsHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter, err := request.ParseAnalysisFilter(q.Get("range"), q.Get("start"), q.Get("end"), q.Get("type"), q.Get("direction"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}

	report, err := h.analyticsService.Analyze(filter)
	if err != nil {
		respondServiceError(w, err, "failed to build analysis")
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}
