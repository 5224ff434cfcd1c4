package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/tablebooking/internal/kafka"
	"go.uber.org/zap"
)

// Sender turns reservation events into guest notifications. Delivery is a log
// line until a mail provider is configured.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.ReservationEvent) error {
	subject, err := Subject(event)
	if err != nil {
		s.log.Warn("skip notification", zap.Error(err), zap.String("reservation_id", event.ReservationID))
		return nil
	}
	s.log.Info("send notification",
		zap.String("user_id", event.UserID),
		zap.String("subject", subject),
		zap.String("reservation_id", event.ReservationID))
	return nil
}

func Subject(event kafka.ReservationEvent) (string, error) {
	switch event.Type {
	case kafka.EventReservationConfirmed:
		return fmt.Sprintf("Your table %s is booked for %s, %s", event.TableID, event.Date, event.TimeSlot), nil
	case kafka.EventReservationCancelled:
		return fmt.Sprintf("Your booking of table %s for %s, %s was cancelled", event.TableID, event.Date, event.TimeSlot), nil
	default:
		return "", fmt.Errorf("unknown event type %q", event.Type)
	}
}
