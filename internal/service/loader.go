package service

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/bpc-market/storefront-service/internal/catalog"
	"github.com/bpc-market/storefront-service/internal/config"
	"github.com/bpc-market/storefront-service/internal/delivery"
	"github.com/bpc-market/storefront-service/internal/logging"
)

// ResourceFetcher reads a resource by source path or URL.
type ResourceFetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// Stores holds the two read-only stores every request consults. They are
// built once at startup and never mutated.
type Stores struct {
	Catalog *catalog.Catalog
	Rates   *delivery.Table
}

// EmptyStores returns stores with no products and no rates.
func EmptyStores() *Stores {
	return &Stores{Catalog: catalog.Empty(), Rates: delivery.EmptyTable()}
}

// LoadStores fetches the product catalog and the delivery rate table
// concurrently. A resource that fails to load leaves its store empty; the
// returned error reports the first failure and is never fatal to startup.
func LoadStores(ctx context.Context, fetcher ResourceFetcher, cfg config.CatalogConfig, logger *logging.Logger) (*Stores, error) {
	log := logger.Named("loader")
	stores := EmptyStores()

	if cfg.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.LoadTimeout)
		defer cancel()
	}

	// A plain Group: one resource failing must not cancel the other.
	var g errgroup.Group

	g.Go(func() error {
		data, err := fetcher.Fetch(ctx, cfg.ProductsSource)
		if err != nil {
			log.Error("Failed to load product catalog", logging.Fields{
				"source": cfg.ProductsSource,
				"error":  err.Error(),
			})
			return fmt.Errorf("load products: %w", err)
		}
		products, err := catalog.Decode(bytes.NewReader(data))
		if err != nil {
			log.Error("Failed to decode product catalog", logging.Fields{
				"source": cfg.ProductsSource,
				"error":  err.Error(),
			})
			return fmt.Errorf("decode products: %w", err)
		}
		stores.Catalog = catalog.New(products)
		log.Info("Product catalog loaded", logging.Fields{
			"source":   cfg.ProductsSource,
			"products": stores.Catalog.Len(),
		})
		return nil
	})

	g.Go(func() error {
		data, err := fetcher.Fetch(ctx, cfg.DistrictsSource)
		if err != nil {
			log.Error("Failed to load delivery rates", logging.Fields{
				"source": cfg.DistrictsSource,
				"error":  err.Error(),
			})
			return fmt.Errorf("load delivery rates: %w", err)
		}
		rates, err := delivery.Decode(bytes.NewReader(data))
		if err != nil {
			log.Error("Failed to decode delivery rates", logging.Fields{
				"source": cfg.DistrictsSource,
				"error":  err.Error(),
			})
			return fmt.Errorf("decode delivery rates: %w", err)
		}
		stores.Rates = delivery.NewTable(rates)
		log.Info("Delivery rates loaded", logging.Fields{
			"source":    cfg.DistrictsSource,
			"districts": stores.Rates.Len(),
		})
		return nil
	})

	err := g.Wait()
	return stores, err
}
