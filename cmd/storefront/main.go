package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/bpc-market/storefront-service/internal/clients"
	"github.com/bpc-market/storefront-service/internal/config"
	"github.com/bpc-market/storefront-service/internal/events"
	"github.com/bpc-market/storefront-service/internal/handlers"
	"github.com/bpc-market/storefront-service/internal/logging"
	"github.com/bpc-market/storefront-service/internal/metrics"
	"github.com/bpc-market/storefront-service/internal/repository"
	"github.com/bpc-market/storefront-service/internal/server"
	"github.com/bpc-market/storefront-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("storefront-service", "info").Fatal("Failed to load config", logging.Fields{"error": err.Error()})
	}

	logger := logging.New("storefront-service", cfg.Log.Level)
	defer logger.Sync()

	m := metrics.New()

	// Resources are loaded once; a failure leaves that store empty.
	resources := clients.NewResourceClient(cfg.Catalog.LoadTimeout, logger)
	stores, err := service.LoadStores(context.Background(), resources, cfg.Catalog, logger)
	if err != nil {
		logger.Warn("Starting with incomplete catalog", logging.Fields{"error": err.Error()})
	}
	m.SetCatalogSize(stores.Catalog.Len(), stores.Rates.Len())

	var readiness []namedCheck

	var cartStore repository.CartStateStore
	if cfg.Features.EnableCartPersistence {
		redisStore := repository.NewRedisCartStore(cfg.Redis, logger)
		defer redisStore.Close()
		cartStore = redisStore
		readiness = append(readiness, namedCheck{"redis", redisStore.Ping})
	} else {
		cartStore = repository.NewMemoryCartStore()
	}

	var quoteRepo repository.QuoteRepository = repository.NewMemoryQuoteRepository()
	if cfg.Features.EnableQuotes {
		db, err := initDatabase(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", logging.Fields{"error": err.Error()})
		}
		defer db.Close()

		pgRepo := repository.NewPostgresQuoteRepository(db, logger)
		if err := pgRepo.EnsureSchema(context.Background()); err != nil {
			logger.Fatal("Failed to apply schema", logging.Fields{"error": err.Error()})
		}
		quoteRepo = pgRepo
		readiness = append(readiness, namedCheck{"postgres", db.PingContext})
	}

	var publisher events.Publisher
	if cfg.Features.EnableQuotes && cfg.Features.EnableQuoteEvents {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka, logger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	var notifier clients.NotificationSender
	if cfg.Features.EnableQuotes && cfg.Features.EnableQuoteEmails {
		notifier = clients.NewHTTPNotificationClient(cfg.NotificationService, logger)
	}

	cartService := service.NewCartService(stores, cartStore, m, cfg.Currency, logger)
	quoteService := service.NewQuoteService(cartService, quoteRepo, service.QuoteServiceOptions{
		Enabled:   cfg.Features.EnableQuotes,
		Publisher: publisher,
		Notifier:  notifier,
		Metrics:   m,
	}, logger)
	catalogService := service.NewCatalogService(stores)

	h := handlers.NewHandlers(catalogService, cartService, quoteService, m, cfg, logger)
	for _, c := range readiness {
		h.AddReadinessCheck(c.name, c.check)
	}

	srv := server.New(h, m, cfg, logger)

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go cartService.RunJanitor(janitorCtx, cfg.Session.IdleTimeout/4, cfg.Session.IdleTimeout)

	go func() {
		logger.Info("Server starting", logging.Fields{
			"port":             cfg.Server.Port,
			"products":         stores.Catalog.Len(),
			"rated_districts":  stores.Rates.Len(),
			"cart_persistence": cfg.Features.EnableCartPersistence,
			"quotes":           cfg.Features.EnableQuotes,
			"quote_events":     cfg.Features.EnableQuoteEvents,
			"quote_emails":     cfg.Features.EnableQuoteEmails,
		})
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", logging.Fields{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logging.Fields{"error": err.Error()})
	}
	stopJanitor()
	quoteService.Wait()

	logger.Info("Server exited")
}

type namedCheck struct {
	name  string
	check handlers.ReadinessCheck
}

func initDatabase(cfg *config.Config, logger *logging.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Database connected", logging.Fields{
		"host": cfg.Database.Host,
		"name": cfg.Database.Name,
	})

	return db, nil
}
