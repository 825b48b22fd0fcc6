package handler

import (
	"encoding/json"
	"go-ledger-api/common"
	"go-ledger-api/service"
	"net/http"
	"strconv"
)

const defaultMonthsBack = 6

// SummaryHandler serves the read-only dashboard projections.
type SummaryHandler struct {
	service *service.SummaryService
}

func NewSummaryHandler(s *service.SummaryService) *SummaryHandler {
	return &SummaryHandler{service: s}
}

// GetSummary godoc
// @Summary      Dashboard summary
// @Description  Aggregate balances, income, expenses and recent activity for the owner.
// @Tags         summary
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  service.AccountSummary
// @Router       /api/summary [get]
func (h *SummaryHandler) GetSummary(w http.ResponseWriter, r *http.Request) *common.AppError {
	ownerID, appErr := ownerFromContext(r)
	if appErr != nil {
		return appErr
	}

	summary, err := h.service.AccountSummary(r.Context(), ownerID)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not compute summary", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(summary)
	return nil
}

// GetSpendingByCategory godoc
// @Summary      Spending grouped by category
// @Tags         summary
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Router       /api/summary/categories [get]
func (h *SummaryHandler) GetSpendingByCategory(w http.ResponseWriter, r *http.Request) *common.AppError {
	ownerID, appErr := ownerFromContext(r)
	if appErr != nil {
		return appErr
	}

	totals, err := h.service.SpendingByCategory(r.Context(), ownerID)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not compute category spending", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(totals)
	return nil
}

// GetMonthOverMonth godoc
// @Summary      Month-over-month net flow
// @Tags         summary
// @Produce      json
// @Security     BearerAuth
// @Param        months query int false "Trailing months to include (default 6)"
// @Success      200  {array}  service.MonthlyFlow
// @Router       /api/summary/months [get]
func (h *SummaryHandler) GetMonthOverMonth(w http.ResponseWriter, r *http.Request) *common.AppError {
	ownerID, appErr := ownerFromContext(r)
	if appErr != nil {
		return appErr
	}

	monthsBack, err := strconv.Atoi(r.URL.Query().Get("months"))
	if err != nil || monthsBack < 1 {
		monthsBack = defaultMonthsBack
	}

	flows, svcErr := h.service.MonthOverMonth(r.Context(), ownerID, monthsBack)
	if svcErr != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not compute monthly flows", svcErr)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(flows)
	return nil
}
