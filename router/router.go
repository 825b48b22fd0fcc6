package router

import (
	"go-ledger-api/handler"
	"net/http"
)

func NewRouter(
	userHandler *handler.UserHandler,
	accountHandler *handler.AccountHandler,
	transferHandler *handler.TransferHandler,
	transactionHandler *handler.TransactionHandler,
	summaryHandler *handler.SummaryHandler,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)

	if userHandler != nil {
		mux.Handle("POST /register", handler.ErrorHandlingMiddleware(userHandler.Register))
		mux.Handle("POST /login", handler.ErrorHandlingMiddleware(userHandler.Login))
	}

	api := http.NewServeMux()
	if userHandler != nil {
		api.Handle("GET /api/me", handler.ErrorHandlingMiddleware(userHandler.Me))
	}
	if accountHandler != nil {
		api.Handle("POST /api/accounts", handler.ErrorHandlingMiddleware(accountHandler.CreateAccount))
		api.Handle("GET /api/accounts", handler.ErrorHandlingMiddleware(accountHandler.ListAccounts))
		api.Handle("GET /api/accounts/{accountId}", handler.ErrorHandlingMiddleware(accountHandler.GetAccount))
	}
	if transferHandler != nil {
		api.Handle("POST /api/transfers", handler.ErrorHandlingMiddleware(transferHandler.CreateInternalTransfer))
		api.Handle("POST /api/transfers/external", handler.ErrorHandlingMiddleware(transferHandler.CreateExternalTransfer))
		api.Handle("POST /api/transactions", handler.ErrorHandlingMiddleware(transferHandler.CreateManualEntry))
	}
	if transactionHandler != nil {
		api.Handle("GET /api/transactions", handler.ErrorHandlingMiddleware(transactionHandler.ListTransactions))
	}
	if summaryHandler != nil {
		api.Handle("GET /api/summary", handler.ErrorHandlingMiddleware(summaryHandler.GetSummary))
		api.Handle("GET /api/summary/categories", handler.ErrorHandlingMiddleware(summaryHandler.GetSpendingByCategory))
		api.Handle("GET /api/summary/months", handler.ErrorHandlingMiddleware(summaryHandler.GetMonthOverMonth))
	}

	mux.Handle("/api/", handler.AuthMiddleware(api))

	return mux
}
