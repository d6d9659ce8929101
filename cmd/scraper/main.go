package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/overdosehq/frau-scraper/internal/browser"
	"github.com/overdosehq/frau-scraper/internal/config"
	"github.com/overdosehq/frau-scraper/internal/database"
	"github.com/overdosehq/frau-scraper/internal/models"
	"github.com/overdosehq/frau-scraper/internal/ratelimit"
	"github.com/overdosehq/frau-scraper/internal/scraper"
	"github.com/overdosehq/frau-scraper/internal/sitemap"
	"github.com/overdosehq/frau-scraper/internal/storage"
)

func main() {
	var (
		useSitemap = flag.Bool("sitemap", false, "load candidate URLs from the site's sitemap")
		urlsFile   = flag.String("urls", "", "file with one URL per line")
		outDir     = flag.String("out", "outcomes", "directory for per-record JSON files ('' disables)")
		useDB      = flag.Bool("db", false, "also persist records to postgres")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	urls, err := collectURLs(ctx, cfg, *useSitemap, *urlsFile, flag.Args())
	if err != nil {
		logger.Error("failed to collect URLs", "error", err)
		os.Exit(1)
	}

	products := sitemap.ProductURLs(urls)
	logger.Info("classified candidate URLs", "candidates", len(urls), "products", len(products))
	if len(products) == 0 {
		logger.Warn("nothing to scrape")
		return
	}

	var store *storage.RecordStore
	if *outDir != "" {
		store, err = storage.NewRecordStore(*outDir)
		if err != nil {
			logger.Error("failed to open record store", "error", err)
			os.Exit(1)
		}
	}

	var db *database.DB
	if *useDB {
		db, err = database.New(ctx, database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.Name,
			MaxConns: cfg.Database.MaxConns,
		})
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
	}

	b, err := browser.New(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
		UserAgent:      browser.DefaultOptions().UserAgent,
		ExtraHeaders:   browser.DefaultOptions().ExtraHeaders,
	})
	if err != nil {
		logger.Error("failed to start browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	limiter := ratelimit.NewAdaptiveRateLimiter(cfg.Scraper.RateLimitMin, cfg.Scraper.RateLimitMax)
	service := scraper.NewService(b, store, db, nil, limiter, logger)

	records := service.ScrapeBatch(ctx, products, store != nil || db != nil)

	var complete, partial, failed int
	for _, record := range records {
		switch record.Status {
		case models.StatusComplete:
			complete++
		case models.StatusPartial:
			partial++
		default:
			failed++
		}
		logger.Info("scraped",
			"url", record.URL,
			"status", record.Status,
			"errors", len(record.ExtractionErrors),
		)
	}

	logger.Info("batch finished",
		"total", len(records),
		"complete", complete,
		"partial", partial,
		"failed", failed,
	)
}

func collectURLs(ctx context.Context, cfg *config.Config, useSitemap bool, urlsFile string, args []string) ([]string, error) {
	var urls []string

	if useSitemap {
		fetched, err := sitemap.Fetch(ctx, http.DefaultClient, cfg.Scraper.SitemapURL)
		if err != nil {
			return nil, err
		}
		urls = append(urls, fetched...)
	}

	if urlsFile != "" {
		f, err := os.Open(urlsFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				urls = append(urls, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	urls = append(urls, args...)
	return urls, nil
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
