package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/tablebooking/config"
	"github.com/Domenick1991/tablebooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client    *redis.Client
	tablesTTL time.Duration
}

func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

// NewRedisCache wraps a client owned by the caller; closing it is the caller's job.
func NewRedisCache(client *redis.Client, tablesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    client,
		tablesTTL: tablesTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) GetTables(ctx context.Context) ([]domain.Table, error) {
	data, err := c.client.Get(ctx, tablesKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var tables []domain.Table
	if err := json.Unmarshal(data, &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

func (c *RedisCache) SetTables(ctx context.Context, tables []domain.Table) error {
	payload, err := json.Marshal(tables)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, tablesKey(), payload, c.tablesTTL).Err()
}

// AcquireTableLock stores holderID under the slot key only if the key is absent.
// SET NX PX is a single command, so concurrent callers are totally ordered by Redis.
func (c *RedisCache) AcquireTableLock(ctx context.Context, key domain.SlotKey, holderID string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, tableLockKey(key), holderID, ttl).Result()
}

func (c *RedisCache) ReleaseTableLock(ctx context.Context, key domain.SlotKey) error {
	return c.client.Del(ctx, tableLockKey(key)).Err()
}

// LockedTables reads the lock keys of every given table in one MGET and returns
// the ids that currently have a holder.
func (c *RedisCache) LockedTables(ctx context.Context, date, timeSlot string, tableIDs []string) (map[string]struct{}, error) {
	locked := make(map[string]struct{})
	if len(tableIDs) == 0 {
		return locked, nil
	}

	keys := make([]string, len(tableIDs))
	for i, id := range tableIDs {
		keys[i] = tableLockKey(domain.SlotKey{TableID: id, Date: date, TimeSlot: timeSlot})
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		if v != nil {
			locked[tableIDs[i]] = struct{}{}
		}
	}
	return locked, nil
}

func tablesKey() string {
	return "cache:tables"
}

var keyEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// tableLockKey is injective over slots: the table id is escaped so it holds no
// ':', the date is fixed width and the time slot is the tail.
func tableLockKey(key domain.SlotKey) string {
	return fmt.Sprintf("lock:table:%s:date:%s:slot:%s", keyEscaper.Replace(key.TableID), key.Date, key.TimeSlot)
}
