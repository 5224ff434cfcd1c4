package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/tablebooking/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	identityKey = "identity"
)

// Identity resolves the caller from headers set by the authentication proxy.
// A missing user id leaves the request anonymous; handlers decide whether
// that is acceptable.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := domain.Identity{
			UserID: strings.TrimSpace(c.GetHeader(HeaderUserID)),
			Role:   domain.RoleUser,
		}
		if domain.Role(strings.ToUpper(strings.TrimSpace(c.GetHeader(HeaderUserRole)))) == domain.RoleAdmin {
			identity.Role = domain.RoleAdmin
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

func identityFrom(c *gin.Context) domain.Identity {
	if v, ok := c.Get(identityKey); ok {
		if identity, ok := v.(domain.Identity); ok {
			return identity
		}
	}
	return domain.Identity{}
}

// RequestLogger logs every request. Client errors are logged at info so that
// contention does not show up as a fault.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", c.GetHeader("X-Request-ID")),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		if status >= http.StatusInternalServerError {
			log.Error("request failed", fields...)
			return
		}
		log.Info("request processed", fields...)
	}
}

// Recovery turns a panic into a 500 response.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("panic recovered in API request",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method))
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			}
		}()
		c.Next()
	}
}
