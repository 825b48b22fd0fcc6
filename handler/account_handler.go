package handler

import (
	"encoding/json"
	"errors"
	"go-ledger-api/common"
	"go-ledger-api/logger"
	"go-ledger-api/model"
	"go-ledger-api/service"
	"net/http"

	"github.com/sirupsen/logrus"
)

type AccountHandler struct {
	service *service.AccountService
}

func NewAccountHandler(service *service.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// CreateAccount godoc
// @Summary      Add a financial account
// @Description  Creates a new account for the authenticated owner with an optional initial balance.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        account body model.CreateAccountRequest true "Account details"
// @Success      201  {object}  model.Account
// @Failure      400  {object}  common.AppError
// @Router       /api/accounts [post]
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.CreateAccountRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	ownerID, appErr := ownerFromContext(r)
	if appErr != nil {
		return appErr
	}

	log := logger.Log.WithFields(logrus.Fields{
		"owner_id":     ownerID,
		"display_name": req.DisplayName,
	})
	log.Info("Create account request received")

	account, err := h.service.CreateAccount(r.Context(), ownerID, req)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			return common.NewAppError(http.StatusBadRequest, err.Error(), err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not create account", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(account)
	return nil
}

// ListAccounts godoc
// @Summary      List the owner's accounts
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  model.Account
// @Router       /api/accounts [get]
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) *common.AppError {
	ownerID, appErr := ownerFromContext(r)
	if appErr != nil {
		return appErr
	}

	accounts, err := h.service.ListAccounts(r.Context(), ownerID)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve accounts", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(accounts)
	return nil
}

// GetAccount godoc
// @Summary      Get one account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        accountId path string true "Account ID"
// @Success      200  {object}  model.Account
// @Failure      404  {object}  common.AppError
// @Router       /api/accounts/{accountId} [get]
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	ownerID, appErr := ownerFromContext(r)
	if appErr != nil {
		return appErr
	}

	accountID := r.PathValue("accountId")
	account, err := h.service.GetAccount(r.Context(), ownerID, accountID)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return common.NewAppError(http.StatusNotFound, err.Error(), err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve account", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(account)
	return nil
}
