package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/tablebooking/internal/domain"
	"github.com/Domenick1991/tablebooking/internal/kafka"
	"github.com/Domenick1991/tablebooking/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	Book(ctx context.Context, identity domain.Identity, key domain.SlotKey) (*domain.Reservation, error)
	Cancel(ctx context.Context, identity domain.Identity, reservationID string) (*domain.Reservation, error)
	ListMine(ctx context.Context, identity domain.Identity) ([]domain.Reservation, error)
	ListAll(ctx context.Context, identity domain.Identity) ([]domain.Reservation, error)
}

// LockReleaser runs a commit attempt and always drops the hold afterwards.
type LockReleaser interface {
	WithRelease(ctx context.Context, key domain.SlotKey, fn func(ctx context.Context) error) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	reservations       repository.ReservationRepository
	locks              LockReleaser
	producer           Producer
	reservationsTopic  string
	notificationsTopic string
	log                *zap.Logger
	newID              func() string
	now                func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithProducer(producer Producer, reservationsTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.reservationsTopic = reservationsTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithLogger(log *zap.Logger) BookingServiceOption {
	return func(s *BookingService) {
		if log != nil {
			s.log = log
		}
	}
}

func NewBookingService(reservations repository.ReservationRepository, locks LockReleaser, opts ...BookingServiceOption) *BookingService {
	service := &BookingService{
		reservations: reservations,
		locks:        locks,
		log:          zap.NewNop(),
		newID:        uuid.NewString,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Book commits a held table as a CONFIRMED reservation. The caller is expected
// to hold the lock already; the unique index on the reservation store is what
// settles races the lock missed. The hold is released on every outcome.
func (s *BookingService) Book(ctx context.Context, identity domain.Identity, key domain.SlotKey) (*domain.Reservation, error) {
	if !identity.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if err := key.Validate(); err != nil {
		return nil, err
	}

	var committed *domain.Reservation
	err := s.locks.WithRelease(ctx, key, func(ctx context.Context) error {
		reservation := &domain.Reservation{
			ID:       s.newID(),
			TableID:  key.TableID,
			UserID:   identity.UserID,
			Date:     key.Date,
			TimeSlot: key.TimeSlot,
			Status:   domain.ReservationStatusConfirmed,
		}
		if err := s.reservations.Create(ctx, reservation); err != nil {
			return err
		}
		committed = reservation
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, domain.ErrAlreadyBooked):
		s.log.Info("booking lost race", zap.String("user_id", identity.UserID), zap.String("table_id", key.TableID),
			zap.String("date", key.Date), zap.String("time_slot", key.TimeSlot))
		return nil, err
	case errors.Is(err, domain.ErrValidation):
		return nil, err
	default:
		s.log.Error("commit reservation", zap.Error(err), zap.String("table_id", key.TableID))
		if !errors.Is(err, domain.ErrStorage) {
			err = fmt.Errorf("%w: %w", domain.ErrStorage, err)
		}
		return nil, err
	}

	s.log.Info("reservation confirmed", zap.String("reservation_id", committed.ID), zap.String("user_id", committed.UserID),
		zap.String("table_id", committed.TableID), zap.String("date", committed.Date), zap.String("time_slot", committed.TimeSlot))
	s.publish(ctx, kafka.EventReservationConfirmed, committed)
	return committed, nil
}

// Cancel moves a reservation to CANCELLED. Only its owner or an admin may do so.
// Cancelling twice returns the cancelled reservation unchanged.
func (s *BookingService) Cancel(ctx context.Context, identity domain.Identity, reservationID string) (*domain.Reservation, error) {
	if !identity.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	current, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !identity.CanManage(current) {
		return nil, domain.ErrForbidden
	}
	if current.Status == domain.ReservationStatusCancelled {
		return current, nil
	}

	updated, err := s.reservations.UpdateStatus(ctx, reservationID, domain.ReservationStatusCancelled)
	if err != nil {
		return nil, err
	}

	s.log.Info("reservation cancelled", zap.String("reservation_id", updated.ID), zap.String("cancelled_by", identity.UserID))
	s.publish(ctx, kafka.EventReservationCancelled, updated)
	return updated, nil
}

func (s *BookingService) ListMine(ctx context.Context, identity domain.Identity) ([]domain.Reservation, error) {
	if !identity.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return s.reservations.ListByUser(ctx, identity.UserID)
}

func (s *BookingService) ListAll(ctx context.Context, identity domain.Identity) ([]domain.Reservation, error) {
	if !identity.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if !identity.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.reservations.ListAll(ctx)
}

// publish is best effort: the reservation is already durable.
func (s *BookingService) publish(ctx context.Context, eventType string, reservation *domain.Reservation) {
	if s.producer == nil || s.reservationsTopic == "" {
		return
	}
	event := kafka.ReservationEvent{
		Type:          eventType,
		ReservationID: reservation.ID,
		TableID:       reservation.TableID,
		UserID:        reservation.UserID,
		Date:          reservation.Date,
		TimeSlot:      reservation.TimeSlot,
		Status:        string(reservation.Status),
		OccurredAt:    s.now().UTC(),
	}

	topics := []string{s.reservationsTopic}
	if s.notificationsTopic != "" {
		topics = append(topics, s.notificationsTopic)
	}
	for _, topic := range topics {
		if err := s.producer.Publish(ctx, topic, reservation.ID, event); err != nil {
			s.log.Warn("publish reservation event", zap.Error(err), zap.String("topic", topic),
				zap.String("type", eventType), zap.String("reservation_id", reservation.ID))
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
