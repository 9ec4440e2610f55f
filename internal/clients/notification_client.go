package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/bpc-market/storefront-service/internal/config"
	"github.com/bpc-market/storefront-service/internal/logging"
	"github.com/bpc-market/storefront-service/internal/middleware"
	"github.com/bpc-market/storefront-service/internal/models"
	"github.com/bpc-market/storefront-service/internal/money"
)

// QuoteEmailTemplate is the notification-service template for quote acknowledgements.
const QuoteEmailTemplate = "quote_requested"

// NotificationSender delivers quote acknowledgements.
type NotificationSender interface {
	SendQuoteEmail(ctx context.Context, quote *models.Quote) error
}

var (
	_ NotificationSender = (*HTTPNotificationClient)(nil)
	_ NotificationSender = (*MockNotificationClient)(nil)
)

// SendEmailRequest is the notification service's email payload.
type SendEmailRequest struct {
	To       string                 `json:"to"`
	Template string                 `json:"template"`
	Data     map[string]interface{} `json:"data"`
}

// HTTPNotificationClient talks to the notification service over HTTP.
type HTTPNotificationClient struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	logger     *logging.Logger
}

// NewHTTPNotificationClient creates a new HTTP-based notification client.
func NewHTTPNotificationClient(cfg config.ServiceConfig, logger *logging.Logger) *HTTPNotificationClient {
	return &HTTPNotificationClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey: cfg.APIKey,
		logger: logger.Named("notification-client"),
	}
}

// SendQuoteEmail sends the quote acknowledgement to the contact's address.
func (c *HTTPNotificationClient) SendQuoteEmail(ctx context.Context, quote *models.Quote) error {
	req := BuildQuoteEmail(quote)

	c.logger.Debug("Sending email", logging.Fields{
		"quote_id": quote.ID,
		"template": req.Template,
	})

	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/v2/notifications/email", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	c.setHeaders(ctx, httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("Failed to send email", logging.Fields{
			"quote_id": quote.ID,
			"error":    err.Error(),
		})
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	c.logger.Info("Email sent", logging.Fields{"quote_id": quote.ID})
	return nil
}

func (c *HTTPNotificationClient) setHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set(middleware.RequestIDHeader, requestID)
	}
}

// BuildQuoteEmail renders the template data for a quote. Amounts are
// preformatted so the template does no arithmetic.
func BuildQuoteEmail(quote *models.Quote) *SendEmailRequest {
	lines := make([]map[string]interface{}, 0, len(quote.Lines))
	for _, l := range quote.Lines {
		lines = append(lines, map[string]interface{}{
			"name":       l.Name,
			"brand":      l.Brand,
			"qty":        l.Quantity,
			"unit":       l.Unit,
			"unit_price": money.Format(l.UnitPrice),
			"line_total": money.Format(l.LineTotal()),
		})
	}

	return &SendEmailRequest{
		To:       quote.Contact.Email,
		Template: QuoteEmailTemplate,
		Data: map[string]interface{}{
			"quote_id": quote.ID,
			"name":     quote.Contact.Name,
			"phone":    quote.Contact.Phone,
			"district": quote.District,
			"lines":    lines,
			"subtotal": money.Format(quote.Totals.Subtotal),
			"delivery": money.Format(quote.Totals.Delivery),
			"total":    money.Format(quote.Totals.Total),
			"notes":    quote.Notes,
		},
	}
}

// MockNotificationClient is a mock implementation for testing.
type MockNotificationClient struct {
	mu     sync.Mutex
	sent   []*models.Quote
	Err    error
	SentCh chan string
}

// NewMockNotificationClient creates a mock notification client.
func NewMockNotificationClient() *MockNotificationClient {
	return &MockNotificationClient{
		sent:   make([]*models.Quote, 0),
		SentCh: make(chan string, 16),
	}
}

func (m *MockNotificationClient) SendQuoteEmail(ctx context.Context, quote *models.Quote) error {
	m.mu.Lock()
	m.sent = append(m.sent, quote)
	m.mu.Unlock()

	select {
	case m.SentCh <- quote.ID:
	default:
	}
	return m.Err
}

// Sent returns the quotes passed to SendQuoteEmail so far.
func (m *MockNotificationClient) Sent() []*models.Quote {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Quote, len(m.sent))
	copy(out, m.sent)
	return out
}
