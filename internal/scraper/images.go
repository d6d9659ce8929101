package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/overdosehq/frau-scraper/internal/models"
)

// Asset folder tokens distinguishing image categories in media URLs. The
// matchers are independent: an image whose URL carries two tokens lands in
// both categories.
const (
	heroFolderToken       = "01_hero"
	productFolderToken    = "02_thumbnails"
	contextualFolderToken = "03_concept"
	dimensionFolderToken  = "08_dimensioni"
)

// heroSelectors are structural locations of the main product image, used
// in addition to the folder token.
var heroSelectors = []string{
	".cmp-producthero__image img",
	".hero img",
}

var placeholderTokens = []string{"placeholder", "loading", "blank", "icon", ".svg"}

// imageSources lists the attributes a lazily-loaded image may carry its
// URL in, in priority order.
var imageSourceAttrs = []string{"src", "data-src", "data-lazy-src"}

func imageURL(sel *goquery.Selection) string {
	for _, attr := range imageSourceAttrs {
		if v := strings.TrimSpace(sel.AttrOr(attr, "")); v != "" {
			return v
		}
	}
	return ""
}

// usableImageURL absolutizes src and rejects placeholders and icons.
func (e *Extractor) usableImageURL(src string) (string, bool) {
	if src == "" {
		return "", false
	}
	abs := e.absoluteURL(src)
	lower := strings.ToLower(abs)
	for _, token := range placeholderTokens {
		if strings.Contains(lower, token) {
			return "", false
		}
	}
	return abs, true
}

// ImagesByCategory collects every image on the page into the fixed
// category set. Lists are deduplicated by value, first occurrence order
// preserved.
func (e *Extractor) ImagesByCategory(doc *goquery.Document) models.ImageSet {
	set := models.ImageSet{
		Hero:       []string{},
		Product:    []string{},
		Contextual: []string{},
		Dimension:  []string{},
	}

	seen := map[string]map[string]bool{
		"hero": {}, "product": {}, "contextual": {}, "dimension": {},
	}

	add := func(category string, list *[]string, url string) {
		if !seen[category][url] {
			seen[category][url] = true
			*list = append(*list, url)
		}
	}

	for _, selector := range heroSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if url, ok := e.usableImageURL(imageURL(sel)); ok {
				add("hero", &set.Hero, url)
			}
		})
	}

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src := imageURL(sel)
		url, ok := e.usableImageURL(src)
		if !ok {
			return
		}
		if strings.Contains(src, heroFolderToken) {
			add("hero", &set.Hero, url)
		}
		if strings.Contains(src, productFolderToken) {
			add("product", &set.Product, url)
		}
		if strings.Contains(src, contextualFolderToken) {
			add("contextual", &set.Contextual, url)
		}
		if strings.Contains(src, dimensionFolderToken) {
			add("dimension", &set.Dimension, url)
		}
	})

	return set
}
