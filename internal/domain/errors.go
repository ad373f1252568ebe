package domain

import "errors"

// Application-wide standard errors
var (
	ErrNotFound        = errors.New("resource not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrOutcomeNotFound = errors.New("outcome not found")

	// Session token errors
	ErrUnauthorized    = errors.New("unauthorized")
	ErrTokenInvalid    = errors.New("token is invalid")
	ErrTokenExpired    = errors.New("token has expired")
	ErrSessionMismatch = errors.New("token does not belong to this session")

	// Gameplay errors
	ErrSessionConcluded     = errors.New("session is already concluded")
	ErrSessionInProgress    = errors.New("session is still in progress")
	ErrEmptyResponse        = errors.New("response text is empty")
	ErrResponseTooLong      = errors.New("response text is too long")
	ErrEvaluationInProgress = errors.New("an evaluation is already running for this session")
	ErrUnknownCommand       = errors.New("unknown session command")

	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
)

// Error codes returned to API clients.
const (
	ErrCodeBadRequest           = "BAD_REQUEST"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeTokenInvalid         = "TOKEN_INVALID"
	ErrCodeTokenExpired         = "TOKEN_EXPIRED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeSessionConcluded     = "SESSION_CONCLUDED"
	ErrCodeSessionInProgress    = "SESSION_IN_PROGRESS"
	ErrCodeEvaluationInProgress = "EVALUATION_IN_PROGRESS"
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeInternal             = "INTERNAL_ERROR"
)

// ErrorResponse - стандартная структура для ответа об ошибке в формате JSON.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
