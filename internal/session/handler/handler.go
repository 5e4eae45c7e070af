package handler

import (
	"github.com/fekuna/omnipos-pricing-service/internal/auth"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/response"
	"github.com/fekuna/omnipos-pricing-service/internal/session"
	"github.com/fekuna/omnipos-pricing-service/internal/session/dto"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	uc     session.UseCase
	logger logger.ZapLogger
}

func NewSessionHandler(uc session.UseCase, log logger.ZapLogger) *SessionHandler {
	return &SessionHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *SessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/sessions")
	{
		sessions.GET("", h.List)
		sessions.GET("/current", h.Current)
		sessions.GET("/:id", h.Get)
		sessions.POST("", auth.RequireActor(), h.Create)
		sessions.PATCH("/:id/date", auth.RequireActor(), h.UpdateDate)
		sessions.PATCH("/:id/budget", auth.RequireActor(), h.UpdateBudget)
		sessions.POST("/:id/open", auth.RequireActor(), h.Open)
		sessions.POST("/:id/close", auth.RequireActor(), h.Close)
	}
}

func (h *SessionHandler) Create(c *gin.Context) {
	var input dto.CreateSessionInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}
	input.UserID = auth.GetUserID(c)

	s, err := h.uc.Create(c.Request.Context(), &input)
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Created(c, s)
}

func (h *SessionHandler) List(c *gin.Context) {
	filters := &dto.SessionFilters{
		Status: model.SessionStatus(c.Query("status")),
		From:   c.Query("from"),
		To:     c.Query("to"),
	}

	sessions, err := h.uc.List(c.Request.Context(), filters)
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, sessions)
}

func (h *SessionHandler) Current(c *gin.Context) {
	s, err := h.uc.Current(c.Request.Context())
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, s)
}

func (h *SessionHandler) Get(c *gin.Context) {
	s, err := h.uc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, s)
}

func (h *SessionHandler) UpdateDate(c *gin.Context) {
	var input dto.UpdateDateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	s, err := h.uc.UpdateDate(c.Request.Context(), c.Param("id"), input.DateKey)
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, s)
}

func (h *SessionHandler) UpdateBudget(c *gin.Context) {
	var input dto.UpdateBudgetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	input.SessionID = c.Param("id")

	s, err := h.uc.UpdateBudget(c.Request.Context(), &input)
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, s)
}

func (h *SessionHandler) Open(c *gin.Context) {
	s, err := h.uc.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, s)
}

func (h *SessionHandler) Close(c *gin.Context) {
	s, err := h.uc.Close(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, s)
}
