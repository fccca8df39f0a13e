package api

import (
	"net/http"

	"deliwaste/server/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ItemController struct {
	itemService *services.ItemService
	log         *zap.Logger
}

func NewItemController(itemService *services.ItemService, log *zap.Logger) *ItemController {
	return &ItemController{itemService: itemService, log: log}
}

// ListItems GET /api/v1/items?include_inactive=true
func (ic *ItemController) ListItems(c *gin.Context) {
	includeInactive, ok := queryBool(c, "include_inactive", true)
	if !ok {
		badRequest(c, "invalid include_inactive", "include_inactive must be true or false")
		return
	}

	items, err := ic.itemService.ListItems(c.Request.Context(), includeInactive)
	if err != nil {
		respondError(c, ic.log, "failed to list items", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// CreateItem POST /api/v1/items
func (ic *ItemController) CreateItem(c *gin.Context) {
	var req services.CreateItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err.Error())
		return
	}

	item, err := ic.itemService.CreateItem(c.Request.Context(), req)
	if err != nil {
		respondError(c, ic.log, "failed to create item", err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateItem PUT /api/v1/items, id in the body.
func (ic *ItemController) UpdateItem(c *gin.Context) {
	var req services.UpdateItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err.Error())
		return
	}

	item, err := ic.itemService.UpdateItem(c.Request.Context(), req)
	if err != nil {
		respondError(c, ic.log, "failed to update item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}
