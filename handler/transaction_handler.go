package handler

import (
	"encoding/json"
	"go-ledger-api/common"
	"go-ledger-api/model"
	"go-ledger-api/repository"
	"net/http"
	"strconv"
)

// TransactionHandler serves the transaction log: paginated history and
// filtered listings.
type TransactionHandler struct {
	repo repository.ITransactionRepository
}

func NewTransactionHandler(repo repository.ITransactionRepository) *TransactionHandler {
	return &TransactionHandler{repo: repo}
}

// ListTransactions godoc
// @Summary      List transactions
// @Description  Returns the owner's transactions newest first. With kind, category or q parameters a filtered (unpaginated) listing is returned instead.
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page number, 1-based"
// @Param        page_size query int false "Page size (max 100)"
// @Param        kind query string false "Transaction kind filter"
// @Param        category query string false "Category filter"
// @Param        q query string false "Free-text search over description and counterparty"
// @Success      200  {object}  model.TransactionPage
// @Router       /api/transactions [get]
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) *common.AppError {
	ownerID, appErr := ownerFromContext(r)
	if appErr != nil {
		return appErr
	}

	query := r.URL.Query()
	filter := model.TransactionFilter{
		Kind:     model.TransactionKind(query.Get("kind")),
		Category: query.Get("category"),
		Search:   query.Get("q"),
	}

	w.Header().Set("Content-Type", "application/json")

	if filter.Kind != "" || filter.Category != "" || filter.Search != "" {
		matches, err := h.repo.Filter(r.Context(), ownerID, filter)
		if err != nil {
			return common.NewAppError(http.StatusInternalServerError, "Could not retrieve transactions", err)
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(matches)
		return nil
	}

	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("page_size"))

	result, err := h.repo.List(r.Context(), ownerID, page, pageSize)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve transactions", err)
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
	return nil
}
