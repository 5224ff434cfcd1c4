package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Domenick1991/tablebooking/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, time.Minute), mr
}

var slot = domain.SlotKey{TableID: "t1", Date: "2026-01-05", TimeSlot: "18:00-20:00"}

func TestRedisCache_AcquireTableLock(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	ok, err := c.AcquireTableLock(ctx, slot, "user-a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.AcquireTableLock(ctx, slot, "user-b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	holder, err := mr.Get("lock:table:t1:date:2026-01-05:slot:18:00-20:00")
	require.NoError(t, err)
	assert.Equal(t, "user-a", holder)
}

func TestRedisCache_LockExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	ok, err := c.AcquireTableLock(ctx, slot, "user-a", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(31 * time.Second)

	ok, err = c.AcquireTableLock(ctx, slot, "user-b", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisCache_ReleaseTableLockIsIdempotent(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	ok, err := c.AcquireTableLock(ctx, slot, "user-a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, c.ReleaseTableLock(ctx, slot))
	require.NoError(t, c.ReleaseTableLock(ctx, slot))

	ok, err = c.AcquireTableLock(ctx, slot, "user-b", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisCache_ConcurrentAcquireHasSingleWinner(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	const n = 50
	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := c.AcquireTableLock(ctx, slot, fmt.Sprintf("user-%d", i), time.Minute)
			if assert.NoError(t, err) && ok {
				atomic.AddInt32(&wins, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
}

func TestRedisCache_LockedTables(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, err := c.AcquireTableLock(ctx, domain.SlotKey{TableID: "t2", Date: slot.Date, TimeSlot: slot.TimeSlot}, "u", time.Minute)
	require.NoError(t, err)
	// same table, other slot: must not count
	_, err = c.AcquireTableLock(ctx, domain.SlotKey{TableID: "t1", Date: slot.Date, TimeSlot: "20:00-22:00"}, "u", time.Minute)
	require.NoError(t, err)

	locked, err := c.LockedTables(ctx, slot.Date, slot.TimeSlot, []string{"t1", "t2", "t3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"t2": {}}, locked)

	locked, err = c.LockedTables(ctx, slot.Date, slot.TimeSlot, nil)
	require.NoError(t, err)
	assert.Empty(t, locked)
}

func TestRedisCache_Tables(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	cached, err := c.GetTables(ctx)
	require.NoError(t, err)
	assert.Nil(t, cached)

	tables := []domain.Table{{ID: "t1", Name: "Window", Capacity: 4}}
	require.NoError(t, c.SetTables(ctx, tables))

	cached, err = c.GetTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, tables, cached)

	mr.FastForward(2 * time.Minute)
	cached, err = c.GetTables(ctx)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestRedisCache_DistinctSlotsDoNotShareLock(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	pairs := [][2]domain.SlotKey{
		{
			{TableID: "t1", Date: "2026-01-05", TimeSlot: "18:00-20:00"},
			{TableID: "t1", Date: "2026-01-05", TimeSlot: "18:00-20:00:slot:x"},
		},
		{
			{TableID: "t1", Date: "2026-01-05", TimeSlot: "x:date:2026-01-06:slot:y"},
			{TableID: "t1:date:2026-01-05:slot:x", Date: "2026-01-06", TimeSlot: "y"},
		},
		{
			{TableID: "a%3Ab", Date: "2026-01-05", TimeSlot: "s"},
			{TableID: "a:b", Date: "2026-01-05", TimeSlot: "s"},
		},
	}

	for i, pair := range pairs {
		t.Run(fmt.Sprintf("pair %d", i), func(t *testing.T) {
			assert.NotEqual(t, tableLockKey(pair[0]), tableLockKey(pair[1]))

			ok, err := c.AcquireTableLock(ctx, pair[0], "user-a", time.Minute)
			require.NoError(t, err)
			require.True(t, ok)

			ok, err = c.AcquireTableLock(ctx, pair[1], "user-b", time.Minute)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}
