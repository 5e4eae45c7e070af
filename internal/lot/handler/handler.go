package handler

import (
	"github.com/fekuna/omnipos-pricing-service/internal/auth"
	"github.com/fekuna/omnipos-pricing-service/internal/lot"
	"github.com/fekuna/omnipos-pricing-service/internal/lot/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type LotHandler struct {
	uc     lot.UseCase
	logger logger.ZapLogger
}

func NewLotHandler(uc lot.UseCase, log logger.ZapLogger) *LotHandler {
	return &LotHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *LotHandler) RegisterRoutes(rg *gin.RouterGroup) {
	lots := rg.Group("/lots")
	{
		lots.GET("", h.List)
		lots.GET("/:id", h.Get)
		lots.POST("/:id/weigh", auth.RequireActor(), h.Weigh)
	}
}

func (h *LotHandler) List(c *gin.Context) {
	lots, err := h.uc.List(c.Request.Context(), &dto.LotFilters{
		SessionID: c.Query("session_id"),
		VariantID: c.Query("variant_id"),
	})
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, lots)
}

func (h *LotHandler) Get(c *gin.Context) {
	l, err := h.uc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, l)
}

func (h *LotHandler) Weigh(c *gin.Context) {
	var input dto.WeighLotInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	input.LotID = c.Param("id")
	input.UserID = auth.GetUserID(c)

	result, err := h.uc.Weigh(c.Request.Context(), &input)
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, result)
}
