package handler

import (
	"encoding/json"
	"errors"
	"go-ledger-api/common"
	"go-ledger-api/model"
	"go-ledger-api/service"
	"net/http"
)

// TransferHandler holds dependencies for money-movement handlers.
type TransferHandler struct {
	service *service.TransferService
}

func NewTransferHandler(s *service.TransferService) *TransferHandler {
	return &TransferHandler{service: s}
}

// CreateInternalTransfer godoc
// @Summary      Transfer money between own accounts
// @Description  Atomically debits one account, credits another and records both transaction legs.
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        transfer body model.InternalTransferRequest true "Transfer details"
// @Success      201  {object}  model.TransferReceipt
// @Failure      400  {object}  common.AppError "Insufficient funds, same account, invalid amount"
// @Failure      404  {object}  common.AppError "Sender or receiver account not found"
// @Router       /api/transfers [post]
func (h *TransferHandler) CreateInternalTransfer(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.InternalTransferRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	ownerID, appErr := ownerFromContext(r)
	if appErr != nil {
		return appErr
	}

	receipt, err := h.service.TransferInternal(r.Context(), ownerID, req)
	if err != nil {
		return mapTransferError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(receipt)
	return nil
}

// CreateExternalTransfer godoc
// @Summary      Send money to an external recipient
// @Description  Debits the source account and records one outbound transaction. Card payments are tokenized via the payment provider first.
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        transfer body model.ExternalTransferRequest true "External transfer details"
// @Success      201  {object}  model.Transaction
// @Failure      400  {object}  common.AppError
// @Failure      502  {object}  common.AppError "Payment provider failure"
// @Router       /api/transfers/external [post]
func (h *TransferHandler) CreateExternalTransfer(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.ExternalTransferRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	ownerID, appErr := ownerFromContext(r)
	if appErr != nil {
		return appErr
	}

	transaction, err := h.service.TransferExternal(r.Context(), ownerID, req)
	if err != nil {
		return mapTransferError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(transaction)
	return nil
}

// CreateManualEntry godoc
// @Summary      Record a manual ledger entry
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        entry body model.ManualEntryRequest true "Manual entry details"
// @Success      201  {object}  model.Transaction
// @Failure      400  {object}  common.AppError
// @Router       /api/transactions [post]
func (h *TransferHandler) CreateManualEntry(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.ManualEntryRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	ownerID, appErr := ownerFromContext(r)
	if appErr != nil {
		return appErr
	}

	transaction, err := h.service.RecordManualEntry(r.Context(), ownerID, req)
	if err != nil {
		return mapTransferError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(transaction)
	return nil
}

// mapTransferError translates transfer-engine errors onto HTTP statuses.
func mapTransferError(err error) *common.AppError {
	switch {
	case errors.Is(err, service.ErrSenderAccountNotFound),
		errors.Is(err, service.ErrReceiverAccountNotFound),
		errors.Is(err, service.ErrAccountNotFound):
		return common.NewAppError(http.StatusNotFound, err.Error(), err)
	case errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrSameAccountTransfer),
		errors.Is(err, service.ErrInvalidAmount):
		return common.NewAppError(http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, service.ErrPaymentMethod):
		return common.NewAppError(http.StatusBadGateway, err.Error(), err)
	default:
		return common.NewAppError(http.StatusInternalServerError, "Could not process transfer", err)
	}
}
