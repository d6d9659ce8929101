package scraper

import (
	"context"
	"log/slog"

	"github.com/overdosehq/frau-scraper/internal/browser"
	"github.com/overdosehq/frau-scraper/internal/database"
	"github.com/overdosehq/frau-scraper/internal/events"
	"github.com/overdosehq/frau-scraper/internal/models"
	"github.com/overdosehq/frau-scraper/internal/ratelimit"
	"github.com/overdosehq/frau-scraper/internal/storage"
)

// Service is the per-URL entry point. It owns the shared browser and
// applies the persistence sinks; store, db and publisher are each
// optional.
type Service struct {
	browser   *browser.Browser
	builder   *Builder
	store     *storage.RecordStore
	db        *database.DB
	publisher *events.Publisher
	limiter   *ratelimit.AdaptiveRateLimiter
	logger    *slog.Logger
}

func NewService(b *browser.Browser, store *storage.RecordStore, db *database.DB, publisher *events.Publisher, limiter *ratelimit.AdaptiveRateLimiter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		browser:   b,
		builder:   NewBuilder(),
		store:     store,
		db:        db,
		publisher: publisher,
		limiter:   limiter,
		logger:    logger.With("component", "scraper_service"),
	}
}

// ScrapeURL scrapes one product URL. Partial data never yields an error;
// unreachable pages come back as a FAILED record. The error return is
// reserved for session setup failures (browser-level problems).
func (s *Service) ScrapeURL(ctx context.Context, url string, persist bool) (*models.ProductRecord, error) {
	session, err := NewPageSession(s.browser, url)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	record := s.builder.Build(ctx, session)

	if s.limiter != nil {
		if record.Status == models.StatusFailed {
			s.limiter.RecordError()
		} else {
			s.limiter.RecordSuccess()
		}
	}

	if persist {
		s.persist(ctx, record)
	}

	return record, nil
}

// ScrapeBatch processes urls sequentially: one URL's full extraction
// completes before the next begins, and a failed URL never stops the
// batch.
func (s *Service) ScrapeBatch(ctx context.Context, urls []string, persist bool) []*models.ProductRecord {
	records := make([]*models.ProductRecord, 0, len(urls))

	for _, url := range urls {
		select {
		case <-ctx.Done():
			s.logger.Warn("batch cancelled", "remaining", len(urls)-len(records))
			return records
		default:
		}

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return records
			}
		}

		record, err := s.ScrapeURL(ctx, url, persist)
		if err != nil {
			s.logger.Error("failed to open session", "url", url, "error", err)
			record = models.NewRecord(url)
			record.Status = models.StatusFailed
			record.AddError("page", "failed to open page session")
		}
		records = append(records, record)
	}

	return records
}

func (s *Service) persist(ctx context.Context, record *models.ProductRecord) {
	if s.store != nil {
		if path, err := s.store.Save(record); err != nil {
			s.logger.Error("failed to save record file", "url", record.URL, "error", err)
		} else {
			s.logger.Info("record saved", "path", path)
		}
	}

	if s.db != nil {
		if err := s.db.UpsertRecord(ctx, record); err != nil {
			s.logger.Error("failed to upsert record", "url", record.URL, "error", err)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRecordScraped(ctx, record); err != nil {
			s.logger.Warn("failed to publish scrape event", "url", record.URL, "error", err)
		}
	}
}
