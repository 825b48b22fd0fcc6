// File: app/app.go
package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-ledger-api/config"
	"go-ledger-api/db"
	"go-ledger-api/handler"
	"go-ledger-api/logger"
	"go-ledger-api/notify"
	"go-ledger-api/payment"
	"go-ledger-api/repository"
	"go-ledger-api/router"
	"go-ledger-api/service"
	"go-ledger-api/storage"
)

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	store, cleanup, err := newStore()
	if err != nil {
		logger.Log.Fatalf("Error setting up ledger storage: %v", err)
	}
	defer cleanup()

	var cache service.ICacheClient
	if config.AppConfig.Redis.Enabled {
		redisClient, err := db.ConnectRedis()
		if err != nil {
			logger.Log.Fatalf("Error connecting to Redis: %v", err)
		}
		defer redisClient.Close()
		cache = redisClient
	}

	hub := notify.NewHub()
	tokenizer := payment.NewSimTokenizer(
		time.Duration(config.AppConfig.Payment.LatencyMs)*time.Millisecond,
		config.AppConfig.Payment.FailRate,
	)

	// --- Wiring All Layers Together ---
	ledgerRepo := repository.NewLedgerRepository(store)
	accountRepo := repository.NewAccountRepository(ledgerRepo)
	transactionRepo := repository.NewTransactionRepository(ledgerRepo)
	userRepo := repository.NewUserRepository()

	authService := service.NewAuthService(userRepo)
	accountService := service.NewAccountService(accountRepo, cache, hub)
	transferService := service.NewTransferService(ledgerRepo, tokenizer, hub,
		time.Duration(config.AppConfig.Payment.TimeoutMs)*time.Millisecond)
	summaryService := service.NewSummaryService(ledgerRepo)

	userHandler := handler.NewUserHandler(authService)
	accountHandler := handler.NewAccountHandler(accountService)
	transferHandler := handler.NewTransferHandler(transferService)
	transactionHandler := handler.NewTransactionHandler(transactionRepo)
	summaryHandler := handler.NewSummaryHandler(summaryService)

	r := router.NewRouter(userHandler, accountHandler, transferHandler, transactionHandler, summaryHandler)

	// Keep the account cache honest across transfers.
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go accountService.WatchChanges(watchCtx)

	// --- Start the Server with Graceful Shutdown ---
	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}

// newStore builds the configured ledger store. The cleanup function closes
// any underlying connection.
func newStore() (storage.Store, func(), error) {
	switch config.AppConfig.Storage.Backend {
	case "postgres":
		database, err := db.Connect()
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(database); err != nil {
			database.Close()
			return nil, nil, err
		}
		return storage.NewPostgresStore(database), func() { database.Close() }, nil
	default:
		fileStore, err := storage.NewFileStore(config.AppConfig.Storage.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return fileStore, func() {}, nil
	}
}
