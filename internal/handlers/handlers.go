package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bpc-market/storefront-service/internal/config"
	"github.com/bpc-market/storefront-service/internal/errors"
	"github.com/bpc-market/storefront-service/internal/logging"
	"github.com/bpc-market/storefront-service/internal/metrics"
	"github.com/bpc-market/storefront-service/internal/service"
)

// ReadinessCheck reports whether a dependency is usable.
type ReadinessCheck func(ctx context.Context) error

// Handlers holds all HTTP handlers for the storefront service.
type Handlers struct {
	catalogService *service.CatalogService
	cartService    *service.CartService
	quoteService   *service.QuoteService
	metrics        *metrics.Metrics
	config         *config.Config
	logger         *logging.Logger

	checks     map[string]ReadinessCheck
	checkOrder []string
}

// NewHandlers creates a new handlers instance.
func NewHandlers(
	catalogService *service.CatalogService,
	cartService *service.CartService,
	quoteService *service.QuoteService,
	m *metrics.Metrics,
	cfg *config.Config,
	logger *logging.Logger,
) *Handlers {
	return &Handlers{
		catalogService: catalogService,
		cartService:    cartService,
		quoteService:   quoteService,
		metrics:        m,
		config:         cfg,
		logger:         logger.Named("handlers"),
		checks:         make(map[string]ReadinessCheck),
	}
}

// AddReadinessCheck registers a dependency probed by GET /ready.
func (h *Handlers) AddReadinessCheck(name string, check ReadinessCheck) {
	if _, exists := h.checks[name]; !exists {
		h.checkOrder = append(h.checkOrder, name)
	}
	h.checks[name] = check
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if errors.IsNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if validationErr, ok := errors.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   validationErr.Message,
			"field":   validationErr.Field,
			"details": validationErr.Details,
		})
		return
	}

	// Disabled features look like missing routes.
	if err == errors.ErrDisabled {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
