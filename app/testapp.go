// file: app/testapp.go

package app

import (
	"net/http"
	"time"

	"go-ledger-api/handler"
	"go-ledger-api/notify"
	"go-ledger-api/payment"
	"go-ledger-api/repository"
	"go-ledger-api/router"
	"go-ledger-api/service"
	"go-ledger-api/storage"
)

// TestApp wires the full handler stack around a caller-supplied store and
// cache so integration tests can exercise real HTTP round trips without the
// process-level setup in Run.
type TestApp struct {
	Router http.Handler
	Hub    *notify.Hub
	Auth   *service.AuthService
	Users  *repository.UserRepository
}

func NewTestApp(store storage.Store, cache service.ICacheClient, tokenizer payment.Tokenizer) *TestApp {
	hub := notify.NewHub()
	if tokenizer == nil {
		tokenizer = payment.NewSimTokenizer(0, 0)
	}

	ledgerRepo := repository.NewLedgerRepository(store)
	accountRepo := repository.NewAccountRepository(ledgerRepo)
	transactionRepo := repository.NewTransactionRepository(ledgerRepo)
	userRepo := repository.NewUserRepository()

	authService := service.NewAuthService(userRepo)
	accountService := service.NewAccountService(accountRepo, cache, hub)
	transferService := service.NewTransferService(ledgerRepo, tokenizer, hub, 2*time.Second)
	summaryService := service.NewSummaryService(ledgerRepo)

	r := router.NewRouter(
		handler.NewUserHandler(authService),
		handler.NewAccountHandler(accountService),
		handler.NewTransferHandler(transferService),
		handler.NewTransactionHandler(transactionRepo),
		handler.NewSummaryHandler(summaryService),
	)

	return &TestApp{
		Router: r,
		Hub:    hub,
		Auth:   authService,
		Users:  userRepo,
	}
}
