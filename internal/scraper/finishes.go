package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/overdosehq/frau-scraper/internal/models"
)

// Canonical material types. Raw labels outside the known synonym sets pass
// through upper-cased instead of being dropped.
const (
	MaterialWood    = "WOOD"
	MaterialFabric  = "FABRIC"
	MaterialLeather = "LEATHER"
)

var materialSynonyms = []struct {
	canonical string
	tokens    []string
}{
	{MaterialWood, []string{"wood", "legno", "essenz", "timber"}},
	{MaterialFabric, []string{"fabric", "tessut", "textile", "velvet"}},
	{MaterialLeather, []string{"leather", "pelle", "saddle", "cuoio"}},
}

// CanonicalMaterial folds a raw material tab label onto the fixed material
// set. Total: every label maps somewhere.
func CanonicalMaterial(raw string) string {
	lower := strings.ToLower(raw)
	for _, syn := range materialSynonyms {
		for _, token := range syn.tokens {
			if strings.Contains(lower, token) {
				return syn.canonical
			}
		}
	}
	return strings.ToUpper(strings.TrimSpace(raw))
}

// RawFinish is one covering/finish swatch as discovered in a finishes
// fragment, tagged with the raw material and category labels at source.
type RawFinish struct {
	Material string
	Category string
	Caption  string
	Name     string
	URL      string
}

// AssembleFinishes folds raw swatches into the two-level catalog.
// Deterministic and idempotent: leaf order follows discovery order, and
// duplicate (category, color_name) pairs keep the first occurrence.
func AssembleFinishes(entries []RawFinish) models.FinishCatalog {
	catalog := make(models.FinishCatalog)
	seen := make(map[string]bool)

	for _, entry := range entries {
		material := CanonicalMaterial(entry.Material)
		if material == "" {
			continue
		}
		category := strings.TrimSpace(entry.Category)
		if category == "" {
			category = "Unknown Category"
		}

		key := category + "|" + entry.Name
		if seen[key] {
			continue
		}
		seen[key] = true

		if catalog[material] == nil {
			catalog[material] = make(map[string][]models.FinishOption)
		}
		catalog[material][category] = append(catalog[material][category], models.FinishOption{
			ColorCaption: strings.ToUpper(entry.Caption),
			ColorName:    entry.Name,
			ColorURL:     entry.URL,
		})
	}

	return catalog
}

// The finishes grid lives in a separate HTML fragment referenced by a
// data-include attribute on the tab container.
const (
	finishesIncludeSelector  = "#finishes-tab-positioning-bottom[data-include]"
	finishesFallbackSelector = `[data-include*="finishes"]`
)

// Finishes locates the finishes fragment, fetches it, and returns the raw
// swatch list for assembly. A section that never loads yields ok == false
// without aborting anything else.
func (e *Extractor) Finishes(ctx context.Context, s Session, timeout time.Duration) ([]RawFinish, bool) {
	doc, err := s.Document()
	if err != nil {
		return nil, false
	}

	includeURL := doc.Find(finishesIncludeSelector).First().AttrOr("data-include", "")
	if includeURL == "" {
		includeURL = doc.Find(finishesFallbackSelector).First().AttrOr("data-include", "")
	}
	if includeURL == "" {
		return nil, false
	}

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fragment, err := s.Fragment(fetchCtx, e.absoluteURL(includeURL))
	if err != nil {
		return nil, false
	}

	entries := e.finishesFromFragment(fragment)
	return entries, len(entries) > 0
}

func (e *Extractor) finishesFromFragment(fragment *goquery.Document) []RawFinish {
	var entries []RawFinish

	fragment.Find(`ol[role="tablist"] li[role="tab"]`).Each(func(_ int, tab *goquery.Selection) {
		material := strings.TrimSpace(tab.Text())
		tabID := tab.AttrOr("id", "")
		if material == "" || tabID == "" {
			return
		}

		// Panel ids mirror the tab ids without the "-tab" suffix.
		panelID := strings.SplitN(tabID, "-", 2)[0]
		panel := fragment.Find("div[id=\"" + panelID + "\"]").First()
		if panel.Length() == 0 {
			return
		}

		panel.Find("h3.cmp-accordion__header").Each(func(_ int, header *goquery.Selection) {
			category := strings.TrimSpace(header.Find("span.cmp-accordion__title").First().Text())
			item := header.Closest(".cmp-accordion__item")
			if item.Length() == 0 {
				return
			}

			item.Find("div.finishes__grid-cell").Each(func(_ int, cell *goquery.Selection) {
				img := cell.Find("img[data-src]").First()
				if img.Length() == 0 {
					return
				}

				imageURL := img.AttrOr("data-src", "")
				// Renditions live under jcr:content; the asset path is
				// everything before it.
				if idx := strings.Index(imageURL, "/jcr:content"); idx >= 0 {
					imageURL = imageURL[:idx]
				}
				if imageURL == "" {
					return
				}

				caption := strings.TrimSpace(cell.Find("span.cmp-image__title").First().Text())
				name := strings.TrimSpace(cell.NextFiltered("div.finishes__grid-cell-text").Find("div.cmp-text").First().Text())
				if name == "" {
					name = strings.TrimSpace(cell.Find("div.finishes__grid-cell-text div.cmp-text").First().Text())
				}

				entries = append(entries, RawFinish{
					Material: material,
					Category: category,
					Caption:  caption,
					Name:     name,
					URL:      e.absoluteURL(imageURL),
				})
			})
		})
	})

	if len(entries) > 0 {
		return entries
	}

	// Unstructured fragment: fall back to a flat scan so at least the
	// swatch images survive.
	fragment.Find("img[data-src]").Each(func(_ int, img *goquery.Selection) {
		imageURL := img.AttrOr("data-src", "")
		if idx := strings.Index(imageURL, "/jcr:content"); idx >= 0 {
			imageURL = imageURL[:idx]
		}
		if imageURL == "" {
			return
		}
		name := strings.TrimSpace(img.AttrOr("alt", ""))
		if name == "" {
			name = "Finish Item"
		}
		entries = append(entries, RawFinish{
			Material: "Unknown",
			Category: "General",
			Name:     name,
			URL:      e.absoluteURL(imageURL),
		})
	})

	return entries
}
