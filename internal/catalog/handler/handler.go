package handler

import (
	"github.com/fekuna/omnipos-pricing-service/internal/auth"
	"github.com/fekuna/omnipos-pricing-service/internal/catalog"
	"github.com/fekuna/omnipos-pricing-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	uc     catalog.UseCase
	logger logger.ZapLogger
}

func NewCatalogHandler(uc catalog.UseCase, log logger.ZapLogger) *CatalogHandler {
	return &CatalogHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/variants/:id", h.GetVariant)
	rg.PUT("/variants/:id/unit-config", auth.RequireActor(), h.UpdateUnitConfig)
	rg.GET("/suppliers/:id", h.GetSupplier)
}

func (h *CatalogHandler) GetVariant(c *gin.Context) {
	v, err := h.uc.GetVariant(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, v)
}

func (h *CatalogHandler) GetSupplier(c *gin.Context) {
	s, err := h.uc.GetSupplier(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, s)
}

func (h *CatalogHandler) UpdateUnitConfig(c *gin.Context) {
	var input dto.UpdateUnitConfigInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	input.VariantID = c.Param("id")

	result, err := h.uc.UpdateUnitConfig(c.Request.Context(), &input)
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, result)
}
