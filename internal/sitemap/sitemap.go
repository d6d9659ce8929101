// Package sitemap supplies candidate product URLs from the site's URL
// index and classifies them.
package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

// DefaultSitemapURL is the site's URL index document.
const DefaultSitemapURL = "https://www.poltronafrau.com/ww/en/sitemap.xml"

// productPathSegment marks URLs inside the product section. URLs without
// it are never scraped.
const productPathSegment = "/ww/en/products/"

// Category listing pages end in a purely numeric segment before the
// extension, e.g. "armchairs.1234.html".
var categoryPattern = regexp.MustCompile(`\.\d+\.html$`)

// Classification is the outcome of classifying one URL.
type Classification int

const (
	Irrelevant Classification = iota
	Product
	Category
)

func (c Classification) String() string {
	switch c {
	case Product:
		return "product"
	case Category:
		return "category"
	default:
		return "irrelevant"
	}
}

// Classify decides whether a URL denotes a scrapable product page, a
// category listing, or something else entirely. Pure and total: every
// string classifies.
func Classify(rawURL string) Classification {
	if !strings.Contains(rawURL, productPathSegment) {
		return Irrelevant
	}
	if categoryPattern.MatchString(rawURL) {
		return Category
	}
	return Product
}

// ProductURLs filters urls down to scrapable product pages, preserving
// order.
func ProductURLs(urls []string) []string {
	var products []string
	for _, u := range urls {
		if Classify(u) == Product {
			products = append(products, u)
		}
	}
	return products
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	URLs    []struct {
		Loc string `xml:"loc"`
	} `xml:"url"`
}

// Fetch retrieves the sitemap document and returns every <loc> entry in
// document order. Classification is left to the caller.
func Fetch(ctx context.Context, client *http.Client, sitemapURL string) ([]string, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build sitemap request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sitemap returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read sitemap body: %w", err)
	}

	var set urlSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("failed to parse sitemap XML: %w", err)
	}

	urls := make([]string, 0, len(set.URLs))
	for _, entry := range set.URLs {
		loc := strings.TrimSpace(entry.Loc)
		if loc != "" {
			urls = append(urls, loc)
		}
	}

	return urls, nil
}
