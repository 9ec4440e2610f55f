package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bpc-market/storefront-service/internal/logging"
	"github.com/bpc-market/storefront-service/internal/middleware"
	"github.com/bpc-market/storefront-service/internal/models"
)

// CreateQuote handles POST /api/v1/quotes
func (h *Handlers) CreateQuote(c *gin.Context) {
	if !h.quoteService.Enabled() {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var req models.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed to bind request", logging.Fields{"error": err.Error()})
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	quote, err := h.quoteService.Create(c.Request.Context(), middleware.SessionID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quote)
}

// GetQuote handles GET /api/v1/quotes/:id
func (h *Handlers) GetQuote(c *gin.Context) {
	quote, err := h.quoteService.Get(c.Request.Context(), middleware.SessionID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}
