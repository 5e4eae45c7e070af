package handler

import (
	"github.com/fekuna/omnipos-pricing-service/internal/auth"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/response"
	"github.com/fekuna/omnipos-pricing-service/internal/setting"
	"github.com/fekuna/omnipos-pricing-service/internal/setting/dto"
	"github.com/gin-gonic/gin"
)

type SettingHandler struct {
	uc     setting.UseCase
	logger logger.ZapLogger
}

func NewSettingHandler(uc setting.UseCase, log logger.ZapLogger) *SettingHandler {
	return &SettingHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *SettingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	settings := rg.Group("/settings/pricing")
	{
		settings.GET("", h.Get)
		settings.PUT("/margin", auth.RequireActor(), h.SetMargin)
		settings.PUT("/round-step", auth.RequireActor(), h.SetRoundStep)
	}
}

func (h *SettingHandler) Get(c *gin.Context) {
	cfg, err := h.uc.Snapshot(c.Request.Context())
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, dto.PricingSettingsResult{MarginPct: cfg.MarginPct, RoundStep: cfg.RoundStep})
}

func (h *SettingHandler) SetMargin(c *gin.Context) {
	var input dto.UpdateMarginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.uc.SetMargin(c.Request.Context(), input.Value)
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, result)
}

func (h *SettingHandler) SetRoundStep(c *gin.Context) {
	var input dto.UpdateRoundStepInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.uc.SetRoundStep(c.Request.Context(), input.Value)
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, result)
}
