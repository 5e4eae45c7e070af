package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-pricing-service/internal/auth"
	"github.com/fekuna/omnipos-pricing-service/internal/item"
	"github.com/fekuna/omnipos-pricing-service/internal/item/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type ItemHandler struct {
	uc     item.UseCase
	logger logger.ZapLogger
}

func NewItemHandler(uc item.UseCase, log logger.ZapLogger) *ItemHandler {
	return &ItemHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/sessions/:id/items")
	{
		items.GET("", h.List)
		items.POST("", auth.RequireActor(), h.Add)
		items.PATCH("/:itemId", auth.RequireActor(), h.UpdatePlan)
		items.DELETE("/:itemId", auth.RequireActor(), h.Remove)
		items.POST("/:itemId/reserve", auth.RequireActor(), h.Reserve)
		items.POST("/:itemId/release", auth.RequireActor(), h.Release)
		items.POST("/:itemId/cancel", auth.RequireActor(), h.Cancel)
		items.POST("/:itemId/confirm", auth.RequireActor(), h.Confirm)
	}
}

func (h *ItemHandler) List(c *gin.Context) {
	items, err := h.uc.ListItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, items)
}

func (h *ItemHandler) Add(c *gin.Context) {
	var input dto.AddItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	input.SessionID = c.Param("id")
	input.UserID = auth.GetUserID(c)

	it, err := h.uc.AddItem(c.Request.Context(), &input)
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Created(c, it)
}

func (h *ItemHandler) UpdatePlan(c *gin.Context) {
	var input dto.UpdatePlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	input.SessionID = c.Param("id")
	input.ItemID = c.Param("itemId")

	it, err := h.uc.UpdatePlan(c.Request.Context(), &input)
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, it)
}

func (h *ItemHandler) Remove(c *gin.Context) {
	if err := h.uc.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("itemId")); err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ItemHandler) Reserve(c *gin.Context) {
	var input dto.ReserveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	input.SessionID = c.Param("id")
	input.ItemID = c.Param("itemId")
	input.UserID = auth.GetUserID(c)

	it, err := h.uc.Reserve(c.Request.Context(), &input)
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, it)
}

func (h *ItemHandler) Release(c *gin.Context) {
	it, err := h.uc.Release(c.Request.Context(), c.Param("id"), c.Param("itemId"), auth.GetUserID(c))
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, it)
}

func (h *ItemHandler) Cancel(c *gin.Context) {
	it, err := h.uc.Cancel(c.Request.Context(), c.Param("id"), c.Param("itemId"), auth.GetUserID(c))
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Success(c, it)
}

func (h *ItemHandler) Confirm(c *gin.Context) {
	var input dto.ConfirmInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	input.SessionID = c.Param("id")
	input.ItemID = c.Param("itemId")
	input.UserID = auth.GetUserID(c)

	result, err := h.uc.Confirm(c.Request.Context(), &input)
	if err != nil {
		response.AppError(c, h.logger, err)
		return
	}
	response.Created(c, result)
}
