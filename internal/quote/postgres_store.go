package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rafaeljc/cpq/internal/validation"
)

const backendPostgres = "postgres"

// PostgresStore keeps quotes in the 'quotes' table.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a store over an open pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	validation.AssertNotNil(db, "database pool")
	return &PostgresStore{db: db}
}

const quoteColumns = `id::text, configuration, contact_name, contact_email, company, total_price::text, total_discount::text, created_at`

// Append inserts q.
func (s *PostgresStore) Append(ctx context.Context, q *Quote) error {
	defer observeStore(backendPostgres, "append", time.Now())

	configuration, err := json.Marshal(q.Configuration)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	var discount *string
	if q.TotalDiscount != nil {
		d := q.TotalDiscount.String()
		discount = &d
	}

	query := `
		INSERT INTO quotes (id, configuration, contact_name, contact_email, company, total_price, total_discount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8)
	`
	if _, err := s.db.Exec(ctx, query,
		q.ID, configuration, q.ContactName, q.ContactEmail, q.Company,
		q.TotalPrice.String(), discount, q.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to save quote: %w", err)
	}
	return nil
}

// Get returns the quote with id or ErrQuoteNotFound.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Quote, error) {
	defer observeStore(backendPostgres, "get", time.Now())

	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id::text = $1`
	q, err := scanQuote(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return q, nil
}

// List returns every quote ordered by creation.
func (s *PostgresStore) List(ctx context.Context) ([]Quote, error) {
	defer observeStore(backendPostgres, "list", time.Now())

	rows, err := s.db.Query(ctx, `SELECT `+quoteColumns+` FROM quotes ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	quotes := []Quote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	return quotes, nil
}

func scanQuote(row pgx.Row) (*Quote, error) {
	var (
		q             Quote
		id            string
		configuration []byte
		price         string
		discount      *string
	)
	if err := row.Scan(&id, &configuration, &q.ContactName, &q.ContactEmail, &q.Company, &price, &discount, &q.CreatedAt); err != nil {
		return nil, err
	}

	q.ID = id
	if err := json.Unmarshal(configuration, &q.Configuration); err != nil {
		return nil, fmt.Errorf("invalid configuration column: %w", err)
	}

	var err error
	if q.TotalPrice, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("invalid total_price column: %w", err)
	}
	if discount != nil {
		d, err := decimal.NewFromString(*discount)
		if err != nil {
			return nil, fmt.Errorf("invalid total_discount column: %w", err)
		}
		q.TotalDiscount = &d
	}
	q.CreatedAt = q.CreatedAt.UTC()
	return &q, nil
}
