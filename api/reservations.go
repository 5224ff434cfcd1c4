package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/tablebooking/internal/domain"
	"github.com/Domenick1991/tablebooking/internal/service/booking"
	"github.com/Domenick1991/tablebooking/internal/service/lock"
	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	locks    lock.LockUseCase
	bookings booking.BookingUseCase
}

type slotRequest struct {
	TableID  string `json:"tableId"`
	Date     string `json:"date"`
	TimeSlot string `json:"timeSlot"`
}

func (r slotRequest) key() domain.SlotKey {
	return domain.SlotKey{TableID: r.TableID, Date: r.Date, TimeSlot: r.TimeSlot}
}

type reservationResponse struct {
	ID        string `json:"id"`
	TableID   string `json:"tableId"`
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	TimeSlot  string `json:"timeSlot"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toReservationResponse(r *domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:        r.ID,
		TableID:   r.TableID,
		UserID:    r.UserID,
		Date:      r.Date,
		TimeSlot:  r.TimeSlot,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}

func toReservationResponses(reservations []domain.Reservation) []reservationResponse {
	out := make([]reservationResponse, len(reservations))
	for i := range reservations {
		out[i] = toReservationResponse(&reservations[i])
	}
	return out
}

func NewReservationHandler(locks lock.LockUseCase, bookings booking.BookingUseCase) *ReservationHandler {
	return &ReservationHandler{locks: locks, bookings: bookings}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.POST("/lock", h.lock)
	router.POST("/unlock", h.unlock)
	router.POST("/book", h.book)
	router.PUT("/cancel/:id", h.cancel)
	router.GET("/my", h.mine)
	router.GET("/all", h.all)
}

func bindSlot(c *gin.Context) (slotRequest, bool) {
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error()))
		return req, false
	}
	return req, true
}

func (h *ReservationHandler) lock(c *gin.Context) {
	req, ok := bindSlot(c)
	if !ok {
		return
	}
	if err := h.locks.Acquire(c.Request.Context(), req.key(), identityFrom(c).UserID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "table held"})
}

func (h *ReservationHandler) unlock(c *gin.Context) {
	req, ok := bindSlot(c)
	if !ok {
		return
	}
	if err := h.locks.Release(c.Request.Context(), req.key()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "table released"})
}

func (h *ReservationHandler) book(c *gin.Context) {
	identity := identityFrom(c)
	if !identity.Authenticated() {
		writeError(c, domain.ErrUnauthenticated)
		return
	}
	req, ok := bindSlot(c)
	if !ok {
		return
	}

	reservation, err := h.bookings.Book(c.Request.Context(), identity, req.key())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toReservationResponse(reservation))
}

func (h *ReservationHandler) cancel(c *gin.Context) {
	reservation, err := h.bookings.Cancel(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(reservation))
}

func (h *ReservationHandler) mine(c *gin.Context) {
	reservations, err := h.bookings.ListMine(c.Request.Context(), identityFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReservationResponses(reservations))
}

func (h *ReservationHandler) all(c *gin.Context) {
	reservations, err := h.bookings.ListAll(c.Request.Context(), identityFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReservationResponses(reservations))
}
