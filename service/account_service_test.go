package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"go-ledger-api/model"
	"go-ledger-api/notify"
	"go-ledger-api/repository"
	"go-ledger-api/storage"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache implements ICacheClient over a map so cache-aside behavior can
// be asserted without a Redis server.
type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
	gets int
	sets int
	dels int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (c *fakeCache) Get(ctx context.Context, key string) *redis.StringCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if val, ok := c.data[key]; ok {
		return redis.NewStringResult(val, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	case string:
		c.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dels++
	for _, k := range keys {
		delete(c.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func newAccountFixture(t *testing.T, cache ICacheClient) (*AccountService, *notify.Hub) {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ledgers := repository.NewLedgerRepository(store)
	hub := notify.NewHub()
	return NewAccountService(repository.NewAccountRepository(ledgers), cache, hub), hub
}

func TestAccountService_CreateAccountParsesBalance(t *testing.T) {
	svc, _ := newAccountFixture(t, nil)
	ctx := context.Background()

	account, err := svc.CreateAccount(ctx, "owner-1", model.CreateAccountRequest{
		DisplayName:     "Checking",
		InstitutionName: "First Bank",
		AccountNumber:   "12345678",
		InitialBalance:  "1000.00",
	})
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("1000.00")))
	assert.NotEmpty(t, account.ID)

	_, err = svc.CreateAccount(ctx, "owner-1", model.CreateAccountRequest{
		DisplayName:     "Broken",
		InstitutionName: "First Bank",
		AccountNumber:   "12345678",
		InitialBalance:  "not-a-number",
	})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestAccountService_ListUsesCacheAside(t *testing.T) {
	cache := newFakeCache()
	svc, _ := newAccountFixture(t, cache)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, "owner-1", model.CreateAccountRequest{
		DisplayName:     "Checking",
		InstitutionName: "First Bank",
		AccountNumber:   "12345678",
	})
	require.NoError(t, err)

	// First list misses and fills the cache.
	first, err := svc.ListAccounts(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, cache.sets)

	// Second list is served from the cache.
	second, err := svc.ListAccounts(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets)

	cached, ok := cache.data["accounts:owner-1"]
	require.True(t, ok)
	var decoded []*model.Account
	require.NoError(t, json.Unmarshal([]byte(cached), &decoded))
	require.Len(t, decoded, 1)
}

func TestAccountService_CreateInvalidatesCache(t *testing.T) {
	cache := newFakeCache()
	svc, _ := newAccountFixture(t, cache)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, "owner-1", model.CreateAccountRequest{
		DisplayName: "A", InstitutionName: "B", AccountNumber: "12345",
	})
	require.NoError(t, err)

	_, err = svc.ListAccounts(ctx, "owner-1")
	require.NoError(t, err)
	_, ok := cache.data["accounts:owner-1"]
	require.True(t, ok)

	_, err = svc.CreateAccount(ctx, "owner-1", model.CreateAccountRequest{
		DisplayName: "C", InstitutionName: "D", AccountNumber: "67890",
	})
	require.NoError(t, err)

	_, ok = cache.data["accounts:owner-1"]
	assert.False(t, ok, "cache entry must be invalidated on create")

	accounts, err := svc.ListAccounts(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
}

func TestAccountService_WatchChangesInvalidates(t *testing.T) {
	cache := newFakeCache()
	svc, hub := newAccountFixture(t, cache)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go svc.WatchChanges(ctx)
	// Give the watcher a moment to subscribe.
	time.Sleep(10 * time.Millisecond)

	cache.data["accounts:owner-1"] = "[]"
	hub.Publish(notify.Change{OwnerID: "owner-1", Kind: "transaction"})

	assert.Eventually(t, func() bool {
		cache.mu.Lock()
		defer cache.mu.Unlock()
		_, ok := cache.data["accounts:owner-1"]
		return !ok
	}, time.Second, 10*time.Millisecond, "watcher should drop the cached listing")
}
