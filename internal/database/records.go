package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/overdosehq/frau-scraper/internal/models"
)

// ErrNotFound is returned when no record exists for a URL.
var ErrNotFound = errors.New("record not found")

// StoredRecord is a product_records row. The full ProductRecord lives in
// the JSONB payload; the scalar columns exist for querying.
type StoredRecord struct {
	URL         string          `db:"url"`
	SKU         *string         `db:"sku"`
	ProductName *string         `db:"product_name"`
	Status      string          `db:"status"`
	Payload     json.RawMessage `db:"payload"`
	ErrorCount  int             `db:"error_count"`
	ScrapedAt   time.Time       `db:"scraped_at"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

const recordsSchema = `
CREATE TABLE IF NOT EXISTS product_records (
	url          TEXT PRIMARY KEY,
	sku          TEXT,
	product_name TEXT,
	status       TEXT NOT NULL,
	payload      JSONB NOT NULL,
	error_count  INT NOT NULL DEFAULT 0,
	scraped_at   TIMESTAMPTZ NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// EnsureSchema creates the product_records table if missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, recordsSchema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// UpsertRecord stores a scraped record, replacing any previous scrape of
// the same URL.
func (db *DB) UpsertRecord(ctx context.Context, record *models.ProductRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	query := `
		INSERT INTO product_records (url, sku, product_name, status, payload, error_count, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (url) DO UPDATE SET
			sku = EXCLUDED.sku,
			product_name = EXCLUDED.product_name,
			status = EXCLUDED.status,
			payload = EXCLUDED.payload,
			error_count = EXCLUDED.error_count,
			scraped_at = EXCLUDED.scraped_at,
			updated_at = CURRENT_TIMESTAMP`

	_, err = db.pool.Exec(ctx, query,
		record.URL, record.SKU, record.ProductName, string(record.Status),
		payload, len(record.ExtractionErrors), record.ScrapedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}

	return nil
}

// GetRecord loads the full record for a URL.
func (db *DB) GetRecord(ctx context.Context, url string) (*models.ProductRecord, error) {
	var payload json.RawMessage
	err := db.pool.QueryRow(ctx,
		`SELECT payload FROM product_records WHERE url = $1`, url,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	var record models.ProductRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record payload: %w", err)
	}
	return &record, nil
}

// ListRecords returns the most recently scraped records.
func (db *DB) ListRecords(ctx context.Context, limit int) ([]*models.ProductRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.pool.Query(ctx,
		`SELECT payload FROM product_records ORDER BY scraped_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []*models.ProductRecord
	for rows.Next() {
		var payload json.RawMessage
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		var record models.ProductRecord
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record payload: %w", err)
		}
		records = append(records, &record)
	}

	return records, rows.Err()
}
