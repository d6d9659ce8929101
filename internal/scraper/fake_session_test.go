package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// fakeSession serves fixture HTML instead of a live page so extractor
// behavior can be tested without a browser.
type fakeSession struct {
	url        string
	reachable  bool
	html       string
	revealHTML string
	revealErr  error
	fragments  map[string]string

	revealCalls   int
	fragmentCalls []string
}

func newFakeSession(url, html string) *fakeSession {
	return &fakeSession{
		url:       url,
		reachable: true,
		html:      html,
		fragments: make(map[string]string),
	}
}

func (f *fakeSession) URL() string {
	return f.url
}

func (f *fakeSession) Reachable() bool {
	return f.reachable
}

func (f *fakeSession) Document() (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(f.html))
}

func (f *fakeSession) Reveal(ctx context.Context, clickSelector, waitSelector string, timeout time.Duration) (*goquery.Document, error) {
	f.revealCalls++
	if f.revealErr != nil {
		return nil, f.revealErr
	}
	html := f.revealHTML
	if html == "" {
		html = f.html
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (f *fakeSession) Fragment(ctx context.Context, fragmentURL string) (*goquery.Document, error) {
	f.fragmentCalls = append(f.fragmentCalls, fragmentURL)
	html, ok := f.fragments[fragmentURL]
	if !ok {
		return nil, fmt.Errorf("no fragment registered for %s", fragmentURL)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func mustDoc(html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		panic(err)
	}
	return doc
}

func mustExtractor(pageURL string) *Extractor {
	e, err := NewExtractor(pageURL)
	if err != nil {
		panic(err)
	}
	return e
}
