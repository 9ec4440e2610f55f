package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bpc-market/storefront-service/internal/logging"
	"github.com/bpc-market/storefront-service/internal/middleware"
	"github.com/bpc-market/storefront-service/internal/service"
)

// AddItemRequest is the body of POST /api/v1/cart/items.
type AddItemRequest struct {
	ProductID string   `json:"product_id"`
	Brand     string   `json:"brand"`
	Quantity  *float64 `json:"quantity"`
}

// UpdateQuantityRequest is the body of PATCH /api/v1/cart/items/:index.
// Quantity is whatever the client typed: a number, a numeric string or junk.
type UpdateQuantityRequest struct {
	Quantity json.RawMessage `json:"quantity"`
}

// UpdateBrandRequest is the body of PATCH /api/v1/cart/items/:index/brand.
type UpdateBrandRequest struct {
	Brand string `json:"brand"`
}

// SetDistrictRequest is the body of PUT /api/v1/cart/district.
type SetDistrictRequest struct {
	District string `json:"district"`
}

type cartResponse struct {
	service.CartView
	Applied  bool `json:"applied"`
	OpenCart bool `json:"open_cart,omitempty"`
}

// GetCart handles GET /api/v1/cart
func (h *Handlers) GetCart(c *gin.Context) {
	view := h.cartService.Get(c.Request.Context(), middleware.SessionID(c))
	c.JSON(http.StatusOK, view)
}

// AddCartItem handles POST /api/v1/cart/items
func (h *Handlers) AddCartItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed to bind request", logging.Fields{"error": err.Error()})
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	qty := 1
	if req.Quantity != nil {
		qty = clampQuantity(*req.Quantity)
	}

	view, applied := h.cartService.Add(c.Request.Context(), middleware.SessionID(c), req.ProductID, req.Brand, qty)
	c.JSON(http.StatusOK, cartResponse{CartView: view, Applied: applied, OpenCart: applied})
}

// UpdateCartItemQuantity handles PATCH /api/v1/cart/items/:index
func (h *Handlers) UpdateCartItemQuantity(c *gin.Context) {
	index, ok := lineIndex(c)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	view, applied := h.cartService.UpdateQuantity(c.Request.Context(), middleware.SessionID(c), index, parseQuantity(req.Quantity))
	c.JSON(http.StatusOK, cartResponse{CartView: view, Applied: applied})
}

// UpdateCartItemBrand handles PATCH /api/v1/cart/items/:index/brand
func (h *Handlers) UpdateCartItemBrand(c *gin.Context) {
	index, ok := lineIndex(c)
	if !ok {
		return
	}

	var req UpdateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	view, applied := h.cartService.UpdateBrand(c.Request.Context(), middleware.SessionID(c), index, req.Brand)
	c.JSON(http.StatusOK, cartResponse{CartView: view, Applied: applied})
}

// RemoveCartItem handles DELETE /api/v1/cart/items/:index
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	index, ok := lineIndex(c)
	if !ok {
		return
	}

	view, applied := h.cartService.Remove(c.Request.Context(), middleware.SessionID(c), index)
	c.JSON(http.StatusOK, cartResponse{CartView: view, Applied: applied})
}

// SetCartDistrict handles PUT /api/v1/cart/district
func (h *Handlers) SetCartDistrict(c *gin.Context) {
	var req SetDistrictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	view := h.cartService.SetDistrict(c.Request.Context(), middleware.SessionID(c), strings.TrimSpace(req.District))
	c.JSON(http.StatusOK, cartResponse{CartView: view, Applied: true})
}

func lineIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid line index"})
		return 0, false
	}
	return index, true
}

// parseQuantity reads a quantity the way a form field would: numbers and
// numeric strings parse, anything else is NaN and the cart treats it as 1.
func parseQuantity(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return math.NaN()
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return math.NaN()
}

func clampQuantity(q float64) int {
	if math.IsNaN(q) || math.IsInf(q, 0) || q < 1 {
		return 1
	}
	if q > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Floor(q))
}
