// Package memory holds an in-process reservation store for tests of the booking
// and availability services. It mirrors the constraints of the Postgres schema.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/tablebooking/internal/domain"
	"github.com/Domenick1991/tablebooking/internal/repository"
)

type ReservationRepository struct {
	mu   sync.Mutex
	rows map[string]domain.Reservation
	now  func() time.Time
}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{rows: make(map[string]domain.Reservation), now: time.Now}
}

func (r *ReservationRepository) Create(_ context.Context, reservation *domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reservation.Status != domain.ReservationStatusCancelled {
		for _, row := range r.rows {
			if row.Status != domain.ReservationStatusCancelled && row.Key() == reservation.Key() {
				return domain.ErrAlreadyBooked
			}
		}
	}

	now := r.now()
	reservation.CreatedAt = now
	reservation.UpdatedAt = now
	r.rows[reservation.ID] = *reservation
	return nil
}

func (r *ReservationRepository) GetByID(_ context.Context, id string) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	return &row, nil
}

func (r *ReservationRepository) UpdateStatus(_ context.Context, id string, status domain.ReservationStatus) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	if status != domain.ReservationStatusCancelled && row.Status == domain.ReservationStatusCancelled {
		for otherID, other := range r.rows {
			if otherID != id && other.Status != domain.ReservationStatusCancelled && other.Key() == row.Key() {
				return nil, domain.ErrAlreadyBooked
			}
		}
	}
	row.Status = status
	row.UpdatedAt = r.now()
	r.rows[id] = row
	return &row, nil
}

func (r *ReservationRepository) ListByUser(_ context.Context, userID string) ([]domain.Reservation, error) {
	return r.list(func(row domain.Reservation) bool { return row.UserID == userID }), nil
}

func (r *ReservationRepository) ListAll(_ context.Context) ([]domain.Reservation, error) {
	return r.list(func(domain.Reservation) bool { return true }), nil
}

func (r *ReservationRepository) ReservedTables(_ context.Context, date, timeSlot string, tableIDs []string) (map[string]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := make(map[string]struct{}, len(tableIDs))
	for _, id := range tableIDs {
		wanted[id] = struct{}{}
	}

	reserved := make(map[string]struct{})
	for _, row := range r.rows {
		if row.Status != domain.ReservationStatusConfirmed || row.Date != date || row.TimeSlot != timeSlot {
			continue
		}
		if _, ok := wanted[row.TableID]; ok {
			reserved[row.TableID] = struct{}{}
		}
	}
	return reserved, nil
}

// CountLive returns the number of non-cancelled rows for key.
func (r *ReservationRepository) CountLive(key domain.SlotKey) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, row := range r.rows {
		if row.Status != domain.ReservationStatusCancelled && row.Key() == key {
			n++
		}
	}
	return n
}

func (r *ReservationRepository) list(keep func(domain.Reservation) bool) []domain.Reservation {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Reservation, 0)
	for _, row := range r.rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

var _ repository.ReservationRepository = (*ReservationRepository)(nil)
