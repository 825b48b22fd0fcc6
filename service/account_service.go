// file: service/account_service.go

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-ledger-api/logger"
	"go-ledger-api/model"
	"go-ledger-api/notify"
	"go-ledger-api/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const accountCacheTTL = 10 * time.Minute

// AccountService manages the owner's accounts, with an optional cache-aside
// layer over listing. Pass a nil cache to disable caching.
type AccountService struct {
	repo  repository.IAccountRepository
	cache ICacheClient
	hub   *notify.Hub
}

func NewAccountService(repo repository.IAccountRepository, cache ICacheClient, hub *notify.Hub) *AccountService {
	return &AccountService{
		repo:  repo,
		cache: cache,
		hub:   hub,
	}
}

func accountCacheKey(ownerID string) string {
	return fmt.Sprintf("accounts:%s", ownerID)
}

// CreateAccount validates the initial balance, persists the account and
// invalidates the owner's account cache.
func (s *AccountService) CreateAccount(ctx context.Context, ownerID string, req model.CreateAccountRequest) (*model.Account, error) {
	balance := decimal.Zero
	if req.InitialBalance != "" {
		parsed, err := decimal.NewFromString(req.InitialBalance)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a valid balance", model.ErrValidation, req.InitialBalance)
		}
		balance = parsed
	}

	logger.Log.WithFields(logrus.Fields{
		"owner_id":     ownerID,
		"display_name": req.DisplayName,
	}).Info("Create account request")

	account := &model.Account{
		DisplayName:     req.DisplayName,
		InstitutionName: req.InstitutionName,
		AccountNumber:   req.AccountNumber,
		RoutingCode:     req.RoutingCode,
		Balance:         balance,
	}
	if err := s.repo.CreateAccount(ctx, ownerID, account); err != nil {
		return nil, err
	}

	s.InvalidateOwner(ownerID)
	if s.hub != nil {
		s.hub.Publish(notify.Change{OwnerID: ownerID, Kind: "account"})
	}
	return account, nil
}

// ListAccounts lists the owner's accounts, utilizing a cache-aside strategy.
func (s *AccountService) ListAccounts(ctx context.Context, ownerID string) ([]*model.Account, error) {
	cacheKey := accountCacheKey(ownerID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var accounts []*model.Account
			if err := json.Unmarshal([]byte(cached), &accounts); err == nil {
				return accounts, nil
			}
		}
	}

	accounts, err := s.repo.GetAccountsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(accounts); err == nil {
			s.cache.Set(ctx, cacheKey, data, accountCacheTTL)
		}
	}
	return accounts, nil
}

// GetAccount returns one of the owner's accounts.
func (s *AccountService) GetAccount(ctx context.Context, ownerID, accountID string) (*model.Account, error) {
	return s.repo.GetAccount(ctx, ownerID, accountID)
}

// InvalidateOwner drops the owner's cached account listing. Wired to the
// change hub so transfers (which move balances) also refresh the cache.
func (s *AccountService) InvalidateOwner(ownerID string) {
	if s.cache == nil {
		return
	}
	s.cache.Del(context.Background(), accountCacheKey(ownerID))
}

// WatchChanges invalidates cached listings whenever any mutation for the
// owner is published. Runs until the context is canceled.
func (s *AccountService) WatchChanges(ctx context.Context) {
	if s.hub == nil || s.cache == nil {
		return
	}
	changes, cancel := s.hub.Watch()
	defer cancel()

	for {
		select {
		case c, ok := <-changes:
			if !ok {
				return
			}
			s.InvalidateOwner(c.OwnerID)
		case <-ctx.Done():
			return
		}
	}
}
