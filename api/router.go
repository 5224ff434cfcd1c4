package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Availability *AvailabilityHandler
	Reservations *ReservationHandler
	// Health checks keyed by dependency name.
	Health map[string]Pinger
}

func NewRouter(h Handlers, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(Recovery(log), RequestLogger(log))

	router.GET("/healthz", health(h.Health))

	group := router.Group("/api", Identity())
	h.Availability.Register(group)
	h.Reservations.Register(group.Group("/reservations"))

	return router
}

func health(checks map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		report := make(map[string]string, len(checks))
		for name, pinger := range checks {
			if err := pinger.Ping(c.Request.Context()); err != nil {
				status = http.StatusServiceUnavailable
				report[name] = err.Error()
				continue
			}
			report[name] = "ok"
		}
		c.JSON(status, report)
	}
}
