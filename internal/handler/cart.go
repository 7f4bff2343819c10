package handler

import (
	"net/http"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// CartHandler serves the caller's own cart; the user comes from the session.
type CartHandler struct{ svc service.CartService }

func NewCartHandler(svc service.CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

func (h *CartHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), sessionOf(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CartHandler) Add(c *gin.Context) {
	var req dto.AddToCartRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Add(c.Request.Context(), sessionOf(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateQuantity sets the quantity of one line; zero removes it.
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	id, ok := paramUUID(c, "itemId")
	if !ok {
		return
	}
	var req dto.UpdateCartItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateQuantity(c.Request.Context(), sessionOf(c), id, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CartHandler) Remove(c *gin.Context) {
	id, ok := paramUUID(c, "itemId")
	if !ok {
		return
	}
	resp, err := h.svc.Remove(c.Request.Context(), sessionOf(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context(), sessionOf(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
