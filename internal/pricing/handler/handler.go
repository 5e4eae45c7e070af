package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-pricing-service/internal/auth"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/response"
	"github.com/fekuna/omnipos-pricing-service/internal/pricing"
	"github.com/fekuna/omnipos-pricing-service/internal/pricing/dto"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PricingHandler struct {
	uc     pricing.UseCase
	logger logger.ZapLogger
}

func NewPricingHandler(uc pricing.UseCase, log logger.ZapLogger) *PricingHandler {
	return &PricingHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *PricingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	prices := rg.Group("/sessions/:id/prices")
	{
		prices.GET("", h.List)
		prices.GET("/pending", h.ListPending)
		prices.GET("/export", h.Export)
		prices.GET("/:variantId", h.Get)
		prices.POST("/recompute", auth.RequireActor(), h.Recompute)
		prices.PUT("/:variantId/manual", auth.RequireActor(), h.SetManual)
		prices.DELETE("/:variantId/manual", auth.RequireActor(), h.ClearManual)
	}
}

type recomputeRequest struct {
	VariantID string `json:"variant_id"`
}

func (h *PricingHandler) List(c *gin.Context) {
	filters := &dto.DailyPriceFilters{SessionID: c.Param("id")}
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filters.Statuses = append(filters.Statuses, model.PriceStatus(strings.ToUpper(strings.TrimSpace(s))))
		}
	}
	filters.OnlyReady, _ = strconv.ParseBool(c.DefaultQuery("only_ready", "false"))
	filters.IncludeCosts, _ = strconv.ParseBool(c.DefaultQuery("include_costs", "false"))

	views, err := h.uc.ListDailyPrices(c.Request.Context(), filters)
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, views)
}

func (h *PricingHandler) ListPending(c *gin.Context) {
	pending, err := h.uc.ListPending(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, pending)
}

func (h *PricingHandler) Get(c *gin.Context) {
	view, err := h.uc.GetDailyPrice(c.Request.Context(), c.Param("id"), c.Param("variantId"))
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, view)
}

func (h *PricingHandler) Export(c *gin.Context) {
	data, err := h.uc.ExportBoard(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}

	filename := "prices_" + c.Param("id") + ".xlsx"
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Data(http.StatusOK, xlsxContentType, data)
}

// Recompute reprices one variant when variant_id is given, else the whole session.
func (h *PricingHandler) Recompute(c *gin.Context) {
	var req recomputeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	if req.VariantID != "" {
		dp, err := h.uc.Recompute(c.Request.Context(), c.Param("id"), req.VariantID)
		if err != nil {
			response.AppError(c, h.logger, err)
			return
		}
		response.Success(c, dp)
		return
	}

	prices, err := h.uc.RecomputeAll(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, prices)
}

func (h *PricingHandler) SetManual(c *gin.Context) {
	var input dto.SetManualInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	input.SessionID = c.Param("id")
	input.VariantID = c.Param("variantId")
	input.UserID = auth.GetUserID(c)

	dp, err := h.uc.SetManual(c.Request.Context(), &input)
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, dp)
}

func (h *PricingHandler) ClearManual(c *gin.Context) {
	dp, err := h.uc.ClearManual(c.Request.Context(), c.Param("id"), c.Param("variantId"))
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, dp)
}
