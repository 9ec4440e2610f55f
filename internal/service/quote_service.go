package service

import (
	"context"
	"sync"
	"time"

	"github.com/bpc-market/storefront-service/internal/clients"
	"github.com/bpc-market/storefront-service/internal/errors"
	"github.com/bpc-market/storefront-service/internal/events"
	"github.com/bpc-market/storefront-service/internal/logging"
	"github.com/bpc-market/storefront-service/internal/metrics"
	"github.com/bpc-market/storefront-service/internal/models"
	"github.com/bpc-market/storefront-service/internal/repository"
)

const emailTimeout = 30 * time.Second

// QuoteService turns a session's cart into a quotation request for the
// sales team.
type QuoteService struct {
	carts     *CartService
	repo      repository.QuoteRepository
	publisher events.Publisher
	notifier  clients.NotificationSender
	metrics   *metrics.Metrics
	enabled   bool
	logger    *logging.Logger
	now       func() time.Time

	wg sync.WaitGroup
}

// QuoteServiceOptions wires the optional collaborators. A nil Publisher or
// Notifier turns that side effect off.
type QuoteServiceOptions struct {
	Enabled   bool
	Publisher events.Publisher
	Notifier  clients.NotificationSender
	Metrics   *metrics.Metrics
}

// NewQuoteService creates a quote service.
func NewQuoteService(carts *CartService, repo repository.QuoteRepository, opts QuoteServiceOptions, logger *logging.Logger) *QuoteService {
	return &QuoteService{
		carts:     carts,
		repo:      repo,
		publisher: opts.Publisher,
		notifier:  opts.Notifier,
		metrics:   opts.Metrics,
		enabled:   opts.Enabled,
		logger:    logger.Named("quote-service"),
		now:       time.Now,
	}
}

// Enabled reports whether quotation requests are accepted.
func (s *QuoteService) Enabled() bool {
	return s != nil && s.enabled
}

// Create validates the request, snapshots the session's cart and stores the
// quote. A district in the request becomes the cart's delivery district,
// unless the request is rejected for an empty cart.
func (s *QuoteService) Create(ctx context.Context, sessionID string, req *models.CreateQuoteRequest) (*models.Quote, error) {
	if !s.Enabled() {
		return nil, errors.ErrDisabled
	}
	if req != nil {
		req.Contact = NormalizeContact(req.Contact)
	}
	if err := ValidateCreateQuoteRequest(req); err != nil {
		return nil, err
	}

	lines, district, totals, ok := s.carts.SnapshotWithDistrict(ctx, sessionID, req.District)
	if !ok {
		return nil, errors.NewValidationError("cart", "cart is empty")
	}

	quote := &models.Quote{
		ID:        repository.GenerateQuoteID(),
		SessionID: sessionID,
		Status:    models.QuoteStatusRequested,
		Contact:   req.Contact,
		District:  district,
		Lines:     lines,
		Totals:    totals,
		Notes:     SanitizeQuoteNotes(req.Notes),
		CreatedAt: s.now().UTC(),
	}

	s.logger.Info("Creating quote", logging.Fields{
		"quote_id":   quote.ID,
		"session_id": sessionID,
		"lines":      len(lines),
		"total":      totals.Total,
	})

	if err := s.repo.Create(ctx, quote); err != nil {
		s.logger.Error("Failed to store quote", logging.Fields{
			"quote_id": quote.ID,
			"error":    err.Error(),
		})
		return nil, err
	}
	s.metrics.QuoteCreated()

	if s.publisher != nil {
		if err := s.publisher.PublishQuoteRequested(ctx, quote); err != nil {
			s.logger.Warn("Failed to publish quote event", logging.Fields{
				"quote_id": quote.ID,
				"error":    err.Error(),
			})
		}
	}

	if s.notifier != nil && quote.Contact.Email != "" {
		s.sendEmailAsync(ctx, quote)
	}

	return quote, nil
}

// sendEmailAsync acknowledges the quote by email without holding up the
// request, then marks the quote as sent.
func (s *QuoteService) sendEmailAsync(ctx context.Context, quote *models.Quote) {
	snapshot := *quote
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), emailTimeout)
		defer cancel()

		if err := s.notifier.SendQuoteEmail(ctx, &snapshot); err != nil {
			s.logger.Warn("Failed to send quote email", logging.Fields{
				"quote_id": snapshot.ID,
				"error":    err.Error(),
			})
			return
		}
		if err := s.repo.UpdateStatus(ctx, snapshot.ID, models.QuoteStatusSent); err != nil {
			s.logger.Warn("Failed to mark quote sent", logging.Fields{
				"quote_id": snapshot.ID,
				"error":    err.Error(),
			})
		}
	}()
}

// Get returns a quote created by the same session. Quotes of other sessions
// are reported as not found.
func (s *QuoteService) Get(ctx context.Context, sessionID, id string) (*models.Quote, error) {
	if !s.Enabled() {
		return nil, errors.ErrDisabled
	}
	quote, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote.SessionID != sessionID {
		return nil, errors.ErrNotFound
	}
	return quote, nil
}

// Wait blocks until pending acknowledgement emails finish.
func (s *QuoteService) Wait() {
	s.wg.Wait()
}
