package repository

import (
	"context"

	"github.com/Domenick1991/tablebooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

// DB is the part of *pgxpool.Pool the repositories use.
type DB interface {
	execer
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ReservationRepository interface {
	// Create inserts the reservation. It returns domain.ErrAlreadyBooked when a
	// live reservation already exists for the same table, date and slot.
	Create(ctx context.Context, reservation *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) (*domain.Reservation, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Reservation, error)
	ListAll(ctx context.Context) ([]domain.Reservation, error)
	// ReservedTables returns the subset of tableIDs with a CONFIRMED reservation for the slot.
	ReservedTables(ctx context.Context, date, timeSlot string, tableIDs []string) (map[string]struct{}, error)
}

type PGReservationRepository struct {
	db DB
}

func NewReservationRepository(db DB) ReservationRepository {
	return &PGReservationRepository{db: db}
}

const reservationColumns = `id, table_id, user_id, reservation_date, time_slot, status, created_at, updated_at`

func (r *PGReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	err := r.db.QueryRow(ctx, `INSERT INTO reservations (id, table_id, user_id, reservation_date, time_slot, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		reservation.ID, reservation.TableID, reservation.UserID, reservation.Date, reservation.TimeSlot, reservation.Status).
		Scan(&reservation.CreatedAt, &reservation.UpdatedAt)
	return mapError(err, nil)
}

func (r *PGReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id=$1`, id)
	return scanReservation(row)
}

func (r *PGReservationRepository) UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `UPDATE reservations SET status=$1, updated_at=now() WHERE id=$2 RETURNING `+reservationColumns, status, id)
	return scanReservation(row)
}

func (r *PGReservationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, mapError(err, nil)
	}
	return collectReservations(rows)
}

func (r *PGReservationRepository) ListAll(ctx context.Context) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reservationColumns+` FROM reservations ORDER BY created_at DESC`)
	if err != nil {
		return nil, mapError(err, nil)
	}
	return collectReservations(rows)
}

func (r *PGReservationRepository) ReservedTables(ctx context.Context, date, timeSlot string, tableIDs []string) (map[string]struct{}, error) {
	reserved := make(map[string]struct{})
	if len(tableIDs) == 0 {
		return reserved, nil
	}

	rows, err := r.db.Query(ctx, `SELECT table_id FROM reservations
		WHERE reservation_date=$1 AND time_slot=$2 AND status=$3 AND table_id = ANY($4)`,
		date, timeSlot, domain.ReservationStatusConfirmed, tableIDs)
	if err != nil {
		return nil, mapError(err, nil)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapError(err, nil)
		}
		reserved[id] = struct{}{}
	}
	return reserved, mapError(rows.Err(), nil)
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := row.Scan(&res.ID, &res.TableID, &res.UserID, &res.Date, &res.TimeSlot, &res.Status, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return nil, mapError(err, domain.ErrReservationNotFound)
	}
	return &res, nil
}

func collectReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	defer rows.Close()

	reservations := make([]domain.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *res)
	}
	return reservations, mapError(rows.Err(), nil)
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
