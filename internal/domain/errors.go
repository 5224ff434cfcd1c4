package domain

import (
	"errors"
	"fmt"
)

// Contention
var (
	// ErrLockConflict is returned when another holder already has the table for the slot
	ErrLockConflict = errors.New("table is already held for this slot")

	// ErrAlreadyBooked is returned when a reservation already exists for the table and slot
	ErrAlreadyBooked = errors.New("table is already booked for this slot")
)

// Validation
var (
	ErrValidation      = errors.New("validation failed")
	ErrMissingTableID  = fmt.Errorf("%w: tableId is required", ErrValidation)
	ErrMissingDate     = fmt.Errorf("%w: date is required", ErrValidation)
	ErrInvalidDate     = fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	ErrMissingTimeSlot = fmt.Errorf("%w: timeSlot is required", ErrValidation)
	ErrUnknownTable    = fmt.Errorf("%w: unknown table", ErrValidation)
)

// Authorization
var (
	ErrUnauthenticated = errors.New("user identity is required")
	ErrForbidden       = errors.New("operation not permitted for this user")
)

var (
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrStorage wraps unexpected failures of the reservation or lock store
	ErrStorage = errors.New("storage failure")
)

// IsContention reports whether err is an expected outcome of racing for a table.
func IsContention(err error) bool {
	return errors.Is(err, ErrLockConflict) || errors.Is(err, ErrAlreadyBooked)
}
