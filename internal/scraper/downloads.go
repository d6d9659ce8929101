package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/overdosehq/frau-scraper/internal/models"
)

// The downloads tab content is lazy-loaded; the anchors only attach after
// the tab button is activated.
const (
	downloadsTabSelector   = `button[aria-controls*="downloads"], .cmp-tabs__tab--downloads`
	downloadsReadySelector = "a[data-href]"
)

// Downloads reveals the downloads tab and scans the revealed subtree for
// file anchors. A reveal timeout is not fatal: the initial tree often
// already carries the anchors (they are hidden, not absent), so extraction
// falls back to the current snapshot before reporting a miss.
func (e *Extractor) Downloads(ctx context.Context, s Session, timeout time.Duration) ([]models.Download, bool) {
	doc, err := s.Reveal(ctx, downloadsTabSelector, downloadsReadySelector, timeout)
	if err != nil {
		doc, err = s.Document()
		if err != nil {
			return nil, false
		}
	}

	downloads := e.downloadsFromDoc(doc)
	return downloads, len(downloads) > 0
}

// fileExtensions marks plain hrefs worth treating as downloads when they
// lack the data-href marker.
var fileExtensions = []string{".pdf", ".dwg", ".dxf", ".zip", ".max", ".3ds", ".obj"}

func (e *Extractor) downloadsFromDoc(doc *goquery.Document) []models.Download {
	var downloads []models.Download
	seen := make(map[string]bool)

	collect := func(anchor *goquery.Selection, href string) {
		text := strings.TrimSpace(anchor.Text())
		title := downloadTitle(anchor, href)
		group := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(title, "Download ")))

		if group == "" || strings.Contains(group, "UNDEFINED") {
			return
		}

		url := e.absoluteURL(href)
		key := group + "|" + url
		if seen[key] {
			return
		}
		seen[key] = true

		downloads = append(downloads, models.Download{
			Filename: lastPathSegment(href),
			Group:    group,
			Text:     text,
			URL:      url,
		})
	}

	doc.Find("a[data-href]").Each(func(_ int, anchor *goquery.Selection) {
		if href := strings.TrimSpace(anchor.AttrOr("data-href", "")); href != "" {
			collect(anchor, href)
		}
	})

	doc.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
		href := strings.TrimSpace(anchor.AttrOr("href", ""))
		if href == "" || !hasFileExtension(href) {
			return
		}
		collect(anchor, href)
	})

	return downloads
}

func hasFileExtension(href string) bool {
	lower := strings.ToLower(href)
	for _, ext := range fileExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// downloadTitle resolves the visible label of a download anchor. Accordion
// subitems carry the title closest; header-level downloads keep it on the
// tab button; the filename is the last resort.
func downloadTitle(anchor *goquery.Selection, href string) string {
	ancestors := []string{
		"div.cmp-accordion__subitem",
		"div.flex",
		"button.cmp-accordion__button",
	}
	for _, ancestor := range ancestors {
		title := strings.TrimSpace(anchor.Closest(ancestor).Find("span.cmp-accordion__title").First().Text())
		if title != "" {
			return title
		}
	}

	segment := lastPathSegment(href)
	if idx := strings.LastIndex(segment, "_"); idx >= 0 && idx+1 < len(segment) {
		name := segment[idx+1:]
		if dot := strings.Index(name, "."); dot > 0 {
			name = name[:dot]
		}
		return strings.ToUpper(name)
	}
	return ""
}

func lastPathSegment(href string) string {
	trimmed := strings.TrimRight(href, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
