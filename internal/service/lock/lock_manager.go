package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/tablebooking/internal/domain"
	"go.uber.org/zap"
)

// releaseTimeout bounds a release that runs after the caller's context is gone.
const releaseTimeout = 3 * time.Second

type LockUseCase interface {
	Acquire(ctx context.Context, key domain.SlotKey, holderID string) error
	Release(ctx context.Context, key domain.SlotKey) error
}

type Store interface {
	AcquireTableLock(ctx context.Context, key domain.SlotKey, holderID string, ttl time.Duration) (bool, error)
	ReleaseTableLock(ctx context.Context, key domain.SlotKey) error
}

// Manager hands out short-lived holds on a table for one slot. A hold lives for
// exactly one TTL window; there is no refresh and no sweeper, the store forgets
// abandoned holds on its own.
type Manager struct {
	store Store
	ttl   time.Duration
	log   *zap.Logger
}

func NewManager(store Store, ttl time.Duration, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{store: store, ttl: ttl, log: log}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Acquire returns domain.ErrLockConflict when someone else already holds the key.
// Conflicts are never retried.
func (m *Manager) Acquire(ctx context.Context, key domain.SlotKey, holderID string) error {
	if holderID == "" {
		return domain.ErrUnauthenticated
	}
	if err := key.Validate(); err != nil {
		return err
	}

	ok, err := m.store.AcquireTableLock(ctx, key, holderID, m.ttl)
	if err != nil {
		m.log.Error("acquire table lock", append(slotFields(key), zap.Error(err))...)
		return fmt.Errorf("%w: acquire lock: %w", domain.ErrStorage, err)
	}
	if !ok {
		m.log.Debug("table lock held by another user", append(slotFields(key), zap.String("holder", holderID))...)
		return domain.ErrLockConflict
	}

	m.log.Info("table lock acquired", append(slotFields(key), zap.String("holder", holderID), zap.Duration("ttl", m.ttl))...)
	return nil
}

// Release drops the hold. Releasing a missing or expired hold is a no-op.
func (m *Manager) Release(ctx context.Context, key domain.SlotKey) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if err := m.store.ReleaseTableLock(ctx, key); err != nil {
		m.log.Error("release table lock", append(slotFields(key), zap.Error(err))...)
		return fmt.Errorf("%w: release lock: %w", domain.ErrStorage, err)
	}
	return nil
}

// WithRelease runs fn and then releases the hold on key whatever fn returned.
// The release survives cancellation of ctx. Its own failure is logged and does
// not replace fn's result.
func (m *Manager) WithRelease(ctx context.Context, key domain.SlotKey, fn func(ctx context.Context) error) error {
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		_ = m.Release(releaseCtx, key)
	}()
	return fn(ctx)
}

func slotFields(key domain.SlotKey) []zap.Field {
	return []zap.Field{
		zap.String("table_id", key.TableID),
		zap.String("date", key.Date),
		zap.String("time_slot", key.TimeSlot),
	}
}

var _ LockUseCase = (*Manager)(nil)
