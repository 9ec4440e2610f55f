package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/bpc-market/storefront-service/internal/errors"
	"github.com/bpc-market/storefront-service/internal/logging"
	"github.com/bpc-market/storefront-service/internal/models"
)

// QuotesSchema creates the quotes table. Applied by EnsureSchema at startup.
const QuotesSchema = `
CREATE TABLE IF NOT EXISTS quotes (
	id          TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL,
	status      TEXT NOT NULL,
	contact     JSONB NOT NULL,
	district    TEXT NOT NULL DEFAULT '',
	lines       JSONB NOT NULL,
	subtotal    NUMERIC(14, 2) NOT NULL,
	delivery    NUMERIC(14, 2) NOT NULL,
	total       NUMERIC(14, 2) NOT NULL,
	weight_kg   NUMERIC(14, 3) NOT NULL,
	item_count  INTEGER NOT NULL,
	currency    TEXT NOT NULL,
	notes       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS quotes_session_id_idx ON quotes (session_id);
`

// PostgresQuoteRepository implements QuoteRepository using PostgreSQL.
type PostgresQuoteRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewPostgresQuoteRepository creates a new PostgreSQL quote repository.
func NewPostgresQuoteRepository(db *sql.DB, logger *logging.Logger) *PostgresQuoteRepository {
	return &PostgresQuoteRepository{
		db:     db,
		logger: logger.Named("quote-repository"),
	}
}

// EnsureSchema creates the quotes table if it does not exist.
func (r *PostgresQuoteRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, QuotesSchema)
	return err
}

// Create inserts a quote. An empty ID is filled in.
func (r *PostgresQuoteRepository) Create(ctx context.Context, quote *models.Quote) error {
	if quote.ID == "" {
		quote.ID = GenerateQuoteID()
	}
	if quote.CreatedAt.IsZero() {
		quote.CreatedAt = time.Now().UTC()
	}

	r.logger.Debug("Creating quote", logging.Fields{
		"quote_id":   quote.ID,
		"session_id": quote.SessionID,
	})

	contactJSON, err := json.Marshal(quote.Contact)
	if err != nil {
		return err
	}
	linesJSON, err := json.Marshal(quote.Lines)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO quotes (
			id, session_id, status, contact, district, lines,
			subtotal, delivery, total, weight_kg, item_count, currency,
			notes, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14
		)
	`

	_, err = r.db.ExecContext(ctx, query,
		quote.ID,
		quote.SessionID,
		quote.Status,
		contactJSON,
		quote.District,
		linesJSON,
		quote.Totals.Subtotal,
		quote.Totals.Delivery,
		quote.Totals.Total,
		quote.Totals.WeightKg,
		quote.Totals.ItemCount,
		quote.Totals.Currency,
		quote.Notes,
		quote.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create quote", logging.Fields{
			"quote_id": quote.ID,
			"error":    err.Error(),
		})
		return err
	}

	r.logger.Info("Quote created", logging.Fields{
		"quote_id": quote.ID,
		"lines":    len(quote.Lines),
		"total":    quote.Totals.Total,
	})
	return nil
}

// GetByID fetches a quote.
func (r *PostgresQuoteRepository) GetByID(ctx context.Context, id string) (*models.Quote, error) {
	query := `
		SELECT id, session_id, status, contact, district, lines,
		       subtotal, delivery, total, weight_kg, item_count, currency,
		       notes, created_at
		FROM quotes
		WHERE id = $1
	`

	var quote models.Quote
	var contactJSON, linesJSON []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&quote.ID,
		&quote.SessionID,
		&quote.Status,
		&contactJSON,
		&quote.District,
		&linesJSON,
		&quote.Totals.Subtotal,
		&quote.Totals.Delivery,
		&quote.Totals.Total,
		&quote.Totals.WeightKg,
		&quote.Totals.ItemCount,
		&quote.Totals.Currency,
		&quote.Notes,
		&quote.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to fetch quote", logging.Fields{
			"quote_id": id,
			"error":    err.Error(),
		})
		return nil, err
	}

	if err := json.Unmarshal(contactJSON, &quote.Contact); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(linesJSON, &quote.Lines); err != nil {
		return nil, err
	}

	return &quote, nil
}

// UpdateStatus moves a quote to a new status.
func (r *PostgresQuoteRepository) UpdateStatus(ctx context.Context, id string, status models.QuoteStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE quotes SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now().UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to update quote status", logging.Fields{
			"quote_id": id,
			"error":    err.Error(),
		})
		return err
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return errors.ErrNotFound
	}
	return nil
}

// GenerateQuoteID returns a new quote identifier.
func GenerateQuoteID() string {
	return "quote_" + uuid.NewString()
}
