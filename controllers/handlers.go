package controllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/YagooSRV/Azure-Partiel-2a3/services"
	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

// Handler holds the application's dependencies, making them explicit.
type Handler struct {
	Items  services.ItemStore
	Logger *slog.Logger
}

// NewHandler creates a new handler with its dependencies.
func NewHandler(items services.ItemStore, logger *slog.Logger) *Handler {
	if items == nil {
		panic("controllers: nil ItemStore")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Items:  items,
		Logger: logger,
	}
}

// ItemInput is the request body for create and update.
type ItemInput struct {
	Name string `json:"name" binding:"required" example:"Alice"`
}

type ErrorResponse struct {
	Error string `json:"error" example:"Item not found"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty"`
}

// Check reports liveness and whether the database answers a ping.
//
//	@Summary	Liveness and database reachability
//	@ID			HealthCheck
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Failure	503	{object}	HealthResponse
//	@Router		/health [get]
func (h *Handler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.Items.Ping(ctx); err != nil {
		h.Logger.Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// ## Item Handlers

// ListItems returns every item in store order.
//
//	@Summary	List all items
//	@ID			GetAllPersonnes
//	@Tags		items
//	@Produce	json
//	@Success	200	{array}		models.Item
//	@Failure	500	{object}	ErrorResponse
//	@Router		/items [get]
func (h *Handler) ListItems(c *gin.Context) {
	items, err := h.Items.List(c.Request.Context())
	if err != nil {
		h.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// GetItem returns one item.
//
//	@Summary	Get an item by id
//	@ID			GetPersonne
//	@Tags		items
//	@Produce	json
//	@Param		id	path		int	true	"Item ID"
//	@Success	200	{object}	models.Item
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	500	{object}	ErrorResponse
//	@Router		/items/{id} [get]
func (h *Handler) GetItem(c *gin.Context) {
	itemID, err := h.parseID(c.Param("id"))
	if err != nil {
		h.jsonError(c, http.StatusBadRequest, "Invalid item ID")
		return
	}

	item, err := h.Items.Get(c.Request.Context(), itemID)
	if err != nil {
		h.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// CreateItem inserts a new item and points the Location header at it.
//
//	@Summary	Create an item
//	@ID			CreatePersonne
//	@Tags		items
//	@Accept		json
//	@Produce	json
//	@Param		item	body		ItemInput	true	"Item name"
//	@Success	201		{object}	models.Item
//	@Header		201		{string}	Location	"URL of the new item"
//	@Failure	400		{object}	ErrorResponse
//	@Failure	500		{object}	ErrorResponse
//	@Router		/items [post]
func (h *Handler) CreateItem(c *gin.Context) {
	var body ItemInput
	if err := c.ShouldBindJSON(&body); err != nil {
		h.jsonError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.Items.Create(c.Request.Context(), body.Name)
	if err != nil {
		h.storeError(c, err)
		return
	}

	h.Logger.Info("item created", "id", item.ID)
	c.Header("Location", fmt.Sprintf("/items/%d", item.ID))
	c.JSON(http.StatusCreated, item)
}

// UpdateItem renames an item in place. Concurrent renames are last-writer-wins.
//
//	@Summary	Rename an item
//	@ID			UpdatePersonne
//	@Tags		items
//	@Accept		json
//	@Param		id		path	int			true	"Item ID"
//	@Param		item	body	ItemInput	true	"New name"
//	@Success	204
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	500	{object}	ErrorResponse
//	@Router		/items/{id} [put]
func (h *Handler) UpdateItem(c *gin.Context) {
	itemID, err := h.parseID(c.Param("id"))
	if err != nil {
		h.jsonError(c, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var body ItemInput
	if err := c.ShouldBindJSON(&body); err != nil {
		h.jsonError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.Items.Update(c.Request.Context(), itemID, body.Name); err != nil {
		h.storeError(c, err)
		return
	}

	h.Logger.Info("item updated", "id", itemID)
	c.Status(http.StatusNoContent)
}

// DeleteItem removes an item in one statement.
//
//	@Summary	Delete an item
//	@ID			DeletePersonne
//	@Tags		items
//	@Param		id	path	int	true	"Item ID"
//	@Success	204
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	500	{object}	ErrorResponse
//	@Router		/items/{id} [delete]
func (h *Handler) DeleteItem(c *gin.Context) {
	itemID, err := h.parseID(c.Param("id"))
	if err != nil {
		h.jsonError(c, http.StatusBadRequest, "Invalid item ID")
		return
	}

	if err := h.Items.Delete(c.Request.Context(), itemID); err != nil {
		h.storeError(c, err)
		return
	}

	h.Logger.Info("item deleted", "id", itemID)
	c.Status(http.StatusNoContent)
}

// ## Helper Methods

func (h *Handler) jsonError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, ErrorResponse{Error: message})
}

// storeError maps gateway errors onto status codes. Store failures are
// passed through verbatim.
func (h *Handler) storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		h.jsonError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		h.jsonError(c, http.StatusNotFound, "Item not found")
	default:
		_ = c.Error(err)
		h.jsonError(c, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) parseID(idStr string) (uint, error) {
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, errors.New("id must be positive")
	}
	return uint(id), nil
}
