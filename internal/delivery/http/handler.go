// Package http - HTTP API игры на gin.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"parenting-server/internal/domain"
	"parenting-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionTokens выпускает и проверяет токены сессий.
type SessionTokens interface {
	SessionTokenVerifier
	Issue(sessionID uuid.UUID) (string, time.Time, error)
}

// GameHandler обрабатывает HTTP запросы игры.
type GameHandler struct {
	service service.GameService
	tokens  SessionTokens
	logger  *zap.Logger
}

// NewGameHandler создает новый GameHandler.
func NewGameHandler(s service.GameService, tokens SessionTokens, logger *zap.Logger) *GameHandler {
	return &GameHandler{
		service: s,
		tokens:  tokens,
		logger:  logger.Named("GameHandler"),
	}
}

// RegisterRoutes регистрирует маршруты игры.
func (h *GameHandler) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api")
	{
		api.GET("/scenarios", h.listScenarios)
		api.GET("/outcomes/recent", h.recentOutcomes)
		api.GET("/outcomes/stats", h.outcomeStats)
		api.GET("/outcomes/:code", h.getOutcome)
		api.POST("/sessions", h.createSession)
	}

	sessions := api.Group("/sessions/:id", sessionAuth(h.tokens, h.logger))
	{
		sessions.GET("", h.getSession)
		sessions.DELETE("", h.endSession)
		sessions.POST("/responses", h.submitResponse)
		sessions.POST("/reset", h.resetSession)
		sessions.GET("/result", h.getResult)
		sessions.GET("/history", h.getHistory)
	}
}

// @Summary Новая игра
// @Tags sessions
// @Param request body createSessionRequest false "Имя ребенка"
// @Success 201 {object} createSessionResponse
// @Router /api/sessions [post]
func (h *GameHandler) createSession(c *gin.Context) {
	var req createSessionRequest
	// Тело необязательно.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, domain.ErrorResponse{Code: domain.ErrCodeBadRequest, Message: "Invalid request data: " + err.Error()})
			return
		}
	}

	session, err := h.service.CreateSession(c.Request.Context(), req.ChildName)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	token, expiresAt, err := h.tokens.Issue(session.ID)
	if err != nil {
		handleServiceError(c, fmt.Errorf("issue session token: %w", err), h.logger)
		return
	}

	c.JSON(http.StatusCreated, createSessionResponse{
		Session:        newSessionView(session),
		Token:          token,
		TokenExpiresAt: expiresAt,
	})
}

// @Summary Состояние игры
// @Tags sessions
// @Success 200 {object} SessionView
// @Router /api/sessions/{id} [get]
func (h *GameHandler) getSession(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), sessionIDFrom(c))
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, newSessionView(session))
}

// @Summary Ответ родителя на текущий сценарий
// @Description Оценивает ответ и продвигает игру. Если оценка не удалась, раунд не засчитывается, а в поле notice приходит сообщение.
// @Tags sessions
// @Param request body submitResponseRequest true "Ответ"
// @Success 200 {object} SessionView
// @Failure 409 {object} domain.ErrorResponse "Игра завершена или оценка уже идет"
// @Router /api/sessions/{id}/responses [post]
func (h *GameHandler) submitResponse(c *gin.Context) {
	var req submitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, domain.ErrorResponse{Code: domain.ErrCodeValidation, Message: "Field 'response' is required"})
		return
	}

	session, err := h.service.SubmitResponse(c.Request.Context(), sessionIDFrom(c), req.Response)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Клиент ушел, отвечать некому.
			c.Abort()
			return
		}
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, newSessionView(session))
}

// @Summary Начать заново
// @Tags sessions
// @Success 200 {object} SessionView
// @Router /api/sessions/{id}/reset [post]
func (h *GameHandler) resetSession(c *gin.Context) {
	session, err := h.service.ResetSession(c.Request.Context(), sessionIDFrom(c))
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, newSessionView(session))
}

// @Summary Завершить и удалить сессию
// @Tags sessions
// @Success 204
// @Router /api/sessions/{id} [delete]
func (h *GameHandler) endSession(c *gin.Context) {
	if err := h.service.EndSession(c.Request.Context(), sessionIDFrom(c)); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Итог игры
// @Tags sessions
// @Success 200 {object} resultResponse
// @Failure 409 {object} domain.ErrorResponse "Игра еще идет"
// @Router /api/sessions/{id}/result [get]
func (h *GameHandler) getResult(c *gin.Context) {
	result, err := h.service.GetResult(c.Request.Context(), sessionIDFrom(c))
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, resultResponse{GameResult: *result, TraitList: traitViews(result.Traits, nil)})
}

func (h *GameHandler) getHistory(c *gin.Context) {
	history, err := h.service.GetHistory(c.Request.Context(), sessionIDFrom(c))
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rounds": history})
}

func (h *GameHandler) listScenarios(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"scenarios": h.service.ListScenarios()})
}

// @Summary Описание исхода по коду
// @Tags outcomes
// @Success 200 {object} domain.Outcome
// @Failure 404 {object} domain.ErrorResponse
// @Router /api/outcomes/{code} [get]
func (h *GameHandler) getOutcome(c *gin.Context) {
	outcome, err := h.service.GetOutcome(domain.OutcomeCode(c.Param("code")))
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *GameHandler) recentOutcomes(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, domain.ErrorResponse{Code: domain.ErrCodeBadRequest, Message: "Invalid limit"})
		return
	}
	games, err := h.service.RecentOutcomes(c.Request.Context(), limit)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

func (h *GameHandler) outcomeStats(c *gin.Context) {
	counts, err := h.service.OutcomeStats(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	c.JSON(http.StatusOK, outcomeStatsResponse{Counts: counts, Total: total})
}
