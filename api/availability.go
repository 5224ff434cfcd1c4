package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Domenick1991/tablebooking/internal/domain"
	"github.com/Domenick1991/tablebooking/internal/service/availability"
	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	service availability.AvailabilityUseCase
}

func NewAvailabilityHandler(service availability.AvailabilityUseCase) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

func (h *AvailabilityHandler) Register(router *gin.RouterGroup) {
	router.GET("/availability", h.list)
}

func (h *AvailabilityHandler) list(c *gin.Context) {
	query := availability.Query{
		Date:     c.Query("date"),
		TimeSlot: c.Query("timeSlot"),
	}
	if guests := c.Query("guests"); guests != "" {
		n, err := strconv.Atoi(guests)
		if err != nil {
			writeError(c, fmt.Errorf("%w: guests must be an integer", domain.ErrValidation))
			return
		}
		query.MinCapacity = n
	}

	tables, err := h.service.Available(c.Request.Context(), query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}
