package http

import (
	"net/http"
	"strings"
	"time"

	"parenting-server/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	sessionIDKey       = "session_id"
	sessionTokenHeader = "X-Session-Token"
)

// SessionTokenVerifier проверяет токен доступа к сессии.
type SessionTokenVerifier interface {
	VerifyFor(token string, sessionID uuid.UUID) error
}

// ZapLogger логирует запросы через zap. /health и /metrics не логируются.
func ZapLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if path == "/health" || path == "/metrics" {
			c.Next()
			return
		}

		c.Next()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", requestID),
		}
		if len(c.Errors) > 0 {
			for _, ginErr := range c.Errors.ByType(gin.ErrorTypeAny) {
				log.Error("Request error", append(fields, zap.Error(ginErr.Err))...)
			}
			return
		}
		status := c.Writer.Status()
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("Server error", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("Client error", fields...)
		default:
			log.Info("Request completed", fields...)
		}
	}
}

// sessionAuth проверяет, что токен запроса выдан для сессии из пути,
// и кладет разобранный ID сессии в контекст.
func sessionAuth(verifier SessionTokenVerifier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, domain.ErrorResponse{Code: domain.ErrCodeBadRequest, Message: "Invalid session ID"})
			return
		}
		if err := verifier.VerifyFor(tokenFromRequest(c), id); err != nil {
			log.Debug("Session token rejected", zap.String("sessionID", id.String()), zap.Error(err))
			handleServiceError(c, err, log)
			return
		}
		c.Set(sessionIDKey, id)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return strings.TrimSpace(c.GetHeader(sessionTokenHeader))
}

func sessionIDFrom(c *gin.Context) uuid.UUID {
	id, _ := c.Get(sessionIDKey)
	sessionID, _ := id.(uuid.UUID)
	return sessionID
}
