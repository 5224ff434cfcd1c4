package domain

import "time"

// DateLayout is the only accepted form of a reservation date.
const DateLayout = "2006-01-02"

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
)

type Reservation struct {
	ID        string
	TableID   string
	UserID    string
	Date      string
	TimeSlot  string
	Status    ReservationStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SlotKey identifies one table for one date and time slot. The time slot is an
// opaque label and is never parsed.
type SlotKey struct {
	TableID  string
	Date     string
	TimeSlot string
}

func (k SlotKey) Validate() error {
	if k.TableID == "" {
		return ErrMissingTableID
	}
	if err := ValidateDate(k.Date); err != nil {
		return err
	}
	if k.TimeSlot == "" {
		return ErrMissingTimeSlot
	}
	return nil
}

func (r *Reservation) Key() SlotKey {
	return SlotKey{TableID: r.TableID, Date: r.Date, TimeSlot: r.TimeSlot}
}

// ValidateDate accepts a calendar day in DateLayout.
func ValidateDate(date string) error {
	if date == "" {
		return ErrMissingDate
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return ErrInvalidDate
	}
	return nil
}
