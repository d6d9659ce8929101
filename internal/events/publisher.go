// Package events publishes best-effort notifications when a record has
// been scraped, so downstream consumers (export tooling, dashboards) can
// react without polling the store.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/overdosehq/frau-scraper/internal/models"
)

// DefaultChannel is the redis channel scrape notifications go to.
const DefaultChannel = "records.scraped"

// RecordScrapedEvent is the published payload.
type RecordScrapedEvent struct {
	EventID    string        `json:"event_id"`
	URL        string        `json:"url"`
	SKU        *string       `json:"sku,omitempty"`
	Status     models.Status `json:"status"`
	ErrorCount int           `json:"error_count"`
	Timestamp  time.Time     `json:"timestamp"`
}

type Publisher struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

func NewPublisher(client *redis.Client, channel string, logger *slog.Logger) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		client:  client,
		channel: channel,
		logger:  logger.With("component", "event_publisher"),
	}
}

// PublishRecordScraped publishes a notification for one scraped record.
// Delivery is best effort; the caller logs and continues on error.
func (p *Publisher) PublishRecordScraped(ctx context.Context, record *models.ProductRecord) error {
	event := RecordScrapedEvent{
		EventID:    uuid.New().String(),
		URL:        record.URL,
		SKU:        record.SKU,
		Status:     record.Status,
		ErrorCount: len(record.ExtractionErrors),
		Timestamp:  time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("event published",
		"channel", p.channel,
		"event_id", event.EventID,
		"url", event.URL,
		"status", event.Status,
	)

	return nil
}
