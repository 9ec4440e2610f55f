package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bpc-market/storefront-service/internal/config"
	"github.com/bpc-market/storefront-service/internal/handlers"
	"github.com/bpc-market/storefront-service/internal/logging"
	"github.com/bpc-market/storefront-service/internal/metrics"
	"github.com/bpc-market/storefront-service/internal/middleware"
)

type Server struct {
	config     *config.Config
	router     *gin.Engine
	httpServer *http.Server
	handlers   *handlers.Handlers
	metrics    *metrics.Metrics
	logger     *logging.Logger
}

// New builds the router and the HTTP server around it.
func New(h *handlers.Handlers, m *metrics.Metrics, cfg *config.Config, logger *logging.Logger) *Server {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(logger))
	if m != nil {
		router.Use(m.Middleware())
	}

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
		metrics:  m,
		logger:   logger.Named("server"),
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.Health)
	s.router.GET("/ready", s.handlers.Ready)
	s.router.GET("/live", s.handlers.Live)
	s.router.GET("/version", s.handlers.Version)
	s.router.GET("/metrics", s.handlers.Metrics)

	v1 := s.router.Group("/api/v1")
	v1.Use(middleware.Session(s.config.Session))
	{
		v1.GET("/products", s.handlers.ListProducts)
		v1.GET("/products/:id", s.handlers.GetProduct)
		v1.GET("/products/:id/price", s.handlers.GetProductPrice)
		v1.GET("/categories", s.handlers.ListCategories)
		v1.GET("/districts", s.handlers.ListDistricts)

		v1.GET("/cart", s.handlers.GetCart)
		v1.POST("/cart/items", s.handlers.AddCartItem)
		v1.PATCH("/cart/items/:index", s.handlers.UpdateCartItemQuantity)
		v1.PATCH("/cart/items/:index/brand", s.handlers.UpdateCartItemBrand)
		v1.DELETE("/cart/items/:index", s.handlers.RemoveCartItem)
		v1.PUT("/cart/district", s.handlers.SetCartDistrict)

		v1.POST("/quotes", s.handlers.CreateQuote)
		v1.GET("/quotes/:id", s.handlers.GetQuote)
	}
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start listens until Shutdown is called. It returns http.ErrServerClosed
// after a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info("Starting server", logging.Fields{"addr": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
