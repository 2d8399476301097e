package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/iho/textileledger/internal/domain"
)

// setIfNewer writes the balance hash unless the cached version is greater.
// KEYS[1] balance key; ARGV version, quantity, count, ttl in milliseconds.
var setIfNewer = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'version')
if current and current > ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[1], 'version', ARGV[1], 'quantity', ARGV[2], 'count', ARGV[3])
local ttl = tonumber(ARGV[4])
if ttl > 0 then
	redis.call('PEXPIRE', KEYS[1], ttl)
end
return 1
`)

// BalanceCache implements usecase.BalanceCache using Redis. Each entry is a
// hash holding the balance and the version of the transaction it came from.
type BalanceCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewBalanceCache creates a new BalanceCache. Entries expire after ttl.
func NewBalanceCache(client *redis.Client, ttl time.Duration) *BalanceCache {
	return &BalanceCache{
		client: client,
		prefix: "balance:",
		ttl:    ttl,
	}
}

// Get returns the cached balance of itemID, or nil on a miss.
func (c *BalanceCache) Get(ctx context.Context, itemID string) (*domain.Balance, error) {
	fields, err := c.client.HGetAll(ctx, c.prefix+itemID).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	quantity, qErr := decimal.NewFromString(fields["quantity"])
	count, cErr := strconv.ParseInt(fields["count"], 10, 64)
	if qErr != nil || cErr != nil {
		// Unreadable entries are dropped and treated as a miss.
		_ = c.client.Del(ctx, c.prefix+itemID).Err()
		return nil, nil
	}

	return &domain.Balance{Quantity: quantity, Count: count}, nil
}

// Set stores the balance of itemID unless a newer version is already cached.
func (c *BalanceCache) Set(ctx context.Context, itemID string, balance domain.Balance, version string) error {
	_, err := c.set(ctx, itemID, balance, version)
	return err
}

func (c *BalanceCache) set(ctx context.Context, itemID string, balance domain.Balance, version string) (bool, error) {
	stored, err := setIfNewer.Run(ctx, c.client, []string{c.prefix + itemID},
		version,
		balance.Quantity.String(),
		strconv.FormatInt(balance.Count, 10),
		c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// Invalidate removes the cached balance of itemID.
func (c *BalanceCache) Invalidate(ctx context.Context, itemID string) error {
	return c.client.Del(ctx, c.prefix+itemID).Err()
}
