package http

import (
	"errors"
	"net/http"

	"parenting-server/internal/domain"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleServiceError переводит ошибку сервиса в HTTP-ответ.
func handleServiceError(c *gin.Context, err error, log *zap.Logger) {
	var statusCode int
	var errResp domain.ErrorResponse

	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrNotFound):
		statusCode = http.StatusNotFound
		errResp = domain.ErrorResponse{Code: domain.ErrCodeNotFound, Message: "Session not found"}
	case errors.Is(err, domain.ErrOutcomeNotFound):
		statusCode = http.StatusNotFound
		errResp = domain.ErrorResponse{Code: domain.ErrCodeNotFound, Message: "Outcome not found"}
	case errors.Is(err, domain.ErrEmptyResponse):
		statusCode = http.StatusBadRequest
		errResp = domain.ErrorResponse{Code: domain.ErrCodeValidation, Message: "Response must not be empty"}
	case errors.Is(err, domain.ErrResponseTooLong):
		statusCode = http.StatusBadRequest
		errResp = domain.ErrorResponse{Code: domain.ErrCodeValidation, Message: err.Error()}
	case errors.Is(err, domain.ErrBadRequest):
		statusCode = http.StatusBadRequest
		errResp = domain.ErrorResponse{Code: domain.ErrCodeBadRequest, Message: err.Error()}
	case errors.Is(err, domain.ErrSessionConcluded):
		statusCode = http.StatusConflict
		errResp = domain.ErrorResponse{Code: domain.ErrCodeSessionConcluded, Message: "The game is over. Reset the session to play again"}
	case errors.Is(err, domain.ErrSessionInProgress):
		statusCode = http.StatusConflict
		errResp = domain.ErrorResponse{Code: domain.ErrCodeSessionInProgress, Message: "The game is still in progress"}
	case errors.Is(err, domain.ErrEvaluationInProgress):
		statusCode = http.StatusConflict
		errResp = domain.ErrorResponse{Code: domain.ErrCodeEvaluationInProgress, Message: "A response for this session is already being evaluated"}
	case errors.Is(err, domain.ErrTokenExpired):
		statusCode = http.StatusUnauthorized
		errResp = domain.ErrorResponse{Code: domain.ErrCodeTokenExpired, Message: "Session token has expired"}
	case errors.Is(err, domain.ErrTokenInvalid):
		statusCode = http.StatusUnauthorized
		errResp = domain.ErrorResponse{Code: domain.ErrCodeTokenInvalid, Message: "Session token is invalid"}
	case errors.Is(err, domain.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		errResp = domain.ErrorResponse{Code: domain.ErrCodeUnauthorized, Message: "Session token is required"}
	case errors.Is(err, domain.ErrSessionMismatch):
		statusCode = http.StatusForbidden
		errResp = domain.ErrorResponse{Code: domain.ErrCodeForbidden, Message: "Token does not grant access to this session"}
	default:
		log.Error("Unhandled internal error in handleServiceError", zap.Error(err), zap.String("path", c.FullPath()))
		statusCode = http.StatusInternalServerError
		errResp = domain.ErrorResponse{Code: domain.ErrCodeInternal, Message: "An unexpected internal error occurred"}
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}
