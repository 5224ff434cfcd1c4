package availability

import (
	"context"
	"fmt"

	"github.com/Domenick1991/tablebooking/internal/domain"
	"golang.org/x/sync/errgroup"
)

type AvailabilityUseCase interface {
	Available(ctx context.Context, query Query) ([]domain.Table, error)
}

type TableSource interface {
	List(ctx context.Context) ([]domain.Table, error)
}

type ReservationReader interface {
	ReservedTables(ctx context.Context, date, timeSlot string, tableIDs []string) (map[string]struct{}, error)
}

type LockReader interface {
	LockedTables(ctx context.Context, date, timeSlot string, tableIDs []string) (map[string]struct{}, error)
}

// Query selects a slot. MinCapacity <= 0 disables the capacity filter.
type Query struct {
	Date        string
	TimeSlot    string
	MinCapacity int
}

func (q Query) Validate() error {
	if err := domain.ValidateDate(q.Date); err != nil {
		return err
	}
	if q.TimeSlot == "" {
		return domain.ErrMissingTimeSlot
	}
	return nil
}

// Service answers which tables can be booked for a slot right now. The answer
// may be stale by the time the caller tries to lock a table; the lock and the
// reservation index are what actually decide.
type Service struct {
	tables       TableSource
	reservations ReservationReader
	locks        LockReader
}

func NewService(tables TableSource, reservations ReservationReader, locks LockReader) *Service {
	return &Service{tables: tables, reservations: reservations, locks: locks}
}

func (s *Service) Available(ctx context.Context, query Query) ([]domain.Table, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	all, err := s.tables.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	candidates := make([]domain.Table, 0, len(all))
	for _, t := range all {
		if query.MinCapacity > 0 && t.Capacity < query.MinCapacity {
			continue
		}
		candidates = append(candidates, t)
	}
	if len(candidates) == 0 {
		return candidates, nil
	}

	ids := make([]string, len(candidates))
	for i, t := range candidates {
		ids[i] = t.ID
	}

	var reserved, locked map[string]struct{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reserved, err = s.reservations.ReservedTables(gctx, query.Date, query.TimeSlot, ids)
		if err != nil {
			return fmt.Errorf("reserved tables: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		locked, err = s.locks.LockedTables(gctx, query.Date, query.TimeSlot, ids)
		if err != nil {
			return fmt.Errorf("%w: locked tables: %w", domain.ErrStorage, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	available := make([]domain.Table, 0, len(candidates))
	for _, t := range candidates {
		if _, ok := reserved[t.ID]; ok {
			continue
		}
		if _, ok := locked[t.ID]; ok {
			continue
		}
		available = append(available, t)
	}
	return available, nil
}

var _ AvailabilityUseCase = (*Service)(nil)
