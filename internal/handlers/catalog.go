package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bpc-market/storefront-service/internal/catalog"
)

// ListProducts handles GET /api/v1/products
func (h *Handlers) ListProducts(c *gin.Context) {
	products := h.catalogService.ListProducts(catalog.Filter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	})

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct handles GET /api/v1/products/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// GetProductPrice handles GET /api/v1/products/:id/price
func (h *Handlers) GetProductPrice(c *gin.Context) {
	price, err := h.catalogService.ResolvePrice(c.Param("id"), c.Query("brand"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, price)
}

// ListCategories handles GET /api/v1/categories
func (h *Handlers) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": h.catalogService.Categories(),
	})
}

// ListDistricts handles GET /api/v1/districts
func (h *Handlers) ListDistricts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"districts": h.catalogService.Districts(),
	})
}
