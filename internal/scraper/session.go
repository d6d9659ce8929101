package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"

	"github.com/overdosehq/frau-scraper/internal/browser"
)

// Session is the rendered-page collaborator the extractors work against.
// One session is acquired per URL and used sequentially; only Reveal
// mutates page state, and it is idempotent.
type Session interface {
	// URL returns the page URL the session was opened for.
	URL() string
	// Reachable reports whether navigation succeeded. When false, no
	// extraction should be attempted.
	Reachable() bool
	// Document snapshots the current rendered tree.
	Document() (*goquery.Document, error)
	// Reveal clicks clickSelector (if present), waits for waitSelector to
	// attach within timeout, and returns a fresh snapshot.
	Reveal(ctx context.Context, clickSelector, waitSelector string, timeout time.Duration) (*goquery.Document, error)
	// Fragment fetches an out-of-tree HTML fragment (a data-include URL)
	// and parses it.
	Fragment(ctx context.Context, fragmentURL string) (*goquery.Document, error)
}

// PageSession is the playwright-backed Session used in production.
type PageSession struct {
	url       string
	page      playwright.Page
	browser   *browser.Browser
	client    *http.Client
	reachable bool
	logger    *slog.Logger
}

// NewPageSession opens a page for rawURL. An unreachable page is not an
// error: the session is returned with Reachable() == false so the builder
// can short-circuit and the batch can continue.
func NewPageSession(b *browser.Browser, rawURL string) (*PageSession, error) {
	page, err := b.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	s := &PageSession{
		url:     rawURL,
		page:    page,
		browser: b,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default().With("component", "page_session"),
	}

	if err := b.NavigateWithRetry(page, rawURL, 3); err != nil {
		s.logger.Warn("page unreachable", "url", rawURL, "error", err)
		s.reachable = false
		return s, nil
	}

	s.reachable = true
	return s, nil
}

func (s *PageSession) URL() string {
	return s.url
}

func (s *PageSession) Reachable() bool {
	return s.reachable
}

func (s *PageSession) Document() (*goquery.Document, error) {
	html, err := s.page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read page content: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page content: %w", err)
	}
	return doc, nil
}

func (s *PageSession) Reveal(ctx context.Context, clickSelector, waitSelector string, timeout time.Duration) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.browser.RevealAndWait(s.page, clickSelector, waitSelector, timeout); err != nil {
		return nil, err
	}
	return s.Document()
}

func (s *PageSession) Fragment(ctx context.Context, fragmentURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fragmentURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build fragment request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fragment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fragment returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read fragment body: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse fragment: %w", err)
	}
	return doc, nil
}

// Close releases the underlying page. The browser itself stays open for
// the next URL in the batch.
func (s *PageSession) Close() {
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			s.logger.Debug("failed to close page", "error", err)
		}
	}
}
