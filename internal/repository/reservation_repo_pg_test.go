package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/Domenick1991/tablebooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reservationRowColumns = []string{"id", "table_id", "user_id", "reservation_date", "time_slot", "status", "created_at", "updated_at"}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, pool.ExpectationsWereMet()) })
	return pool
}

func TestPGReservationRepository_Create(t *testing.T) {
	pool := newMockPool(t)
	repo := NewReservationRepository(pool)
	createdAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	reservation := &domain.Reservation{
		ID: "res-1", TableID: "t1", UserID: "alice", Date: "2026-01-05", TimeSlot: "18:00-20:00",
		Status: domain.ReservationStatusConfirmed,
	}
	pool.ExpectQuery(regexp.QuoteMeta("INSERT INTO reservations")).
		WithArgs("res-1", "t1", "alice", "2026-01-05", "18:00-20:00", domain.ReservationStatusConfirmed).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(createdAt, createdAt))

	require.NoError(t, repo.Create(context.Background(), reservation))
	assert.Equal(t, createdAt, reservation.CreatedAt)
	assert.Equal(t, createdAt, reservation.UpdatedAt)
}

func TestPGReservationRepository_CreateErrors(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "Live reservation exists", err: &pgconn.PgError{Code: "23505", ConstraintName: "reservations_live_slot_uniq"}, expected: domain.ErrAlreadyBooked},
		{name: "Unknown table", err: &pgconn.PgError{Code: "23503"}, expected: domain.ErrUnknownTable},
		{name: "Connection lost", err: errors.New("conn closed"), expected: domain.ErrStorage},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pool := newMockPool(t)
			repo := NewReservationRepository(pool)

			pool.ExpectQuery(regexp.QuoteMeta("INSERT INTO reservations")).
				WithArgs("res-2", "t1", "bob", "2026-01-05", "18:00-20:00", domain.ReservationStatusConfirmed).
				WillReturnError(tc.err)

			err := repo.Create(context.Background(), &domain.Reservation{
				ID: "res-2", TableID: "t1", UserID: "bob", Date: "2026-01-05", TimeSlot: "18:00-20:00",
				Status: domain.ReservationStatusConfirmed,
			})
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestPGReservationRepository_GetByID(t *testing.T) {
	pool := newMockPool(t)
	repo := NewReservationRepository(pool)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	pool.ExpectQuery(regexp.QuoteMeta("FROM reservations WHERE id=$1")).
		WithArgs("res-1").
		WillReturnRows(pgxmock.NewRows(reservationRowColumns).
			AddRow("res-1", "t1", "alice", "2026-01-05", "18:00-20:00", domain.ReservationStatusConfirmed, now, now))
	pool.ExpectQuery(regexp.QuoteMeta("FROM reservations WHERE id=$1")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "res-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, domain.ReservationStatusConfirmed, got.Status)

	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestPGReservationRepository_UpdateStatus(t *testing.T) {
	pool := newMockPool(t)
	repo := NewReservationRepository(pool)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	pool.ExpectQuery(regexp.QuoteMeta("UPDATE reservations SET status=$1")).
		WithArgs(domain.ReservationStatusCancelled, "res-1").
		WillReturnRows(pgxmock.NewRows(reservationRowColumns).
			AddRow("res-1", "t1", "alice", "2026-01-05", "18:00-20:00", domain.ReservationStatusCancelled, now, now))

	got, err := repo.UpdateStatus(context.Background(), "res-1", domain.ReservationStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusCancelled, got.Status)
}

func TestPGReservationRepository_ListByUser(t *testing.T) {
	pool := newMockPool(t)
	repo := NewReservationRepository(pool)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	pool.ExpectQuery(regexp.QuoteMeta("WHERE user_id=$1 ORDER BY created_at DESC")).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows(reservationRowColumns).
			AddRow("res-2", "t2", "alice", "2026-01-06", "18:00-20:00", domain.ReservationStatusConfirmed, now, now).
			AddRow("res-1", "t1", "alice", "2026-01-05", "18:00-20:00", domain.ReservationStatusCancelled, now, now))

	got, err := repo.ListByUser(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "res-2", got[0].ID)
	assert.Equal(t, "res-1", got[1].ID)
}

func TestPGReservationRepository_ListAllEmpty(t *testing.T) {
	pool := newMockPool(t)
	repo := NewReservationRepository(pool)

	pool.ExpectQuery(regexp.QuoteMeta("FROM reservations ORDER BY created_at DESC")).
		WillReturnRows(pgxmock.NewRows(reservationRowColumns))

	got, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPGReservationRepository_ReservedTables(t *testing.T) {
	pool := newMockPool(t)
	repo := NewReservationRepository(pool)
	tableIDs := []string{"t1", "t2", "t3"}

	pool.ExpectQuery(regexp.QuoteMeta("AND status=$3 AND table_id = ANY($4)")).
		WithArgs("2026-01-05", "18:00-20:00", domain.ReservationStatusConfirmed, tableIDs).
		WillReturnRows(pgxmock.NewRows([]string{"table_id"}).AddRow("t1").AddRow("t3"))

	reserved, err := repo.ReservedTables(context.Background(), "2026-01-05", "18:00-20:00", tableIDs)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"t1": {}, "t3": {}}, reserved)
}

func TestPGReservationRepository_ReservedTablesSkipsEmptyCandidates(t *testing.T) {
	pool := newMockPool(t)
	repo := NewReservationRepository(pool)

	reserved, err := repo.ReservedTables(context.Background(), "2026-01-05", "18:00-20:00", nil)
	require.NoError(t, err)
	assert.Empty(t, reserved)
}

func TestPGTableRepository_List(t *testing.T) {
	pool := newMockPool(t)
	repo := NewTableRepository(pool)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	pool.ExpectQuery(regexp.QuoteMeta("FROM restaurant_tables ORDER BY id")).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "capacity", "location", "view", "image", "created_at", "updated_at"}).
			AddRow("t1", "Window", 4, "Main hall", "Street", "t1.jpg", now, now))

	tables, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, 4, tables[0].Capacity)
}
