package scraper

import (
	"encoding/json"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extractor holds the per-field strategy chains for one product page. It
// is stateless apart from the base URL used to absolutize links.
type Extractor struct {
	base *url.URL
}

func NewExtractor(pageURL string) (*Extractor, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	return &Extractor{base: base}, nil
}

var (
	tagPattern      = regexp.MustCompile(`<[^>]+>`)
	nonAlnumPattern = regexp.MustCompile(`[^a-z0-9]+`)
)

// stripTags removes markup and decodes entities from fragment text read
// via innerHTML-style accessors.
func stripTags(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(html.UnescapeString(s), ""))
}

// normalizeForMatch lower-cases and strips non-alphanumerics so names can
// be matched inside URLs and alt text.
func normalizeForMatch(s string) string {
	return nonAlnumPattern.ReplaceAllString(strings.ToLower(s), "")
}

// absoluteURL resolves raw against the page URL. Protocol-relative URLs
// get https.
func (e *Extractor) absoluteURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return e.base.ResolveReference(ref).String()
}

// jsonldBreadcrumb mirrors the embedded BreadcrumbList structured data.
type jsonldBreadcrumb struct {
	ItemListElement []struct {
		Item struct {
			ID   string `json:"@id"`
			Name string `json:"name"`
		} `json:"item"`
	} `json:"itemListElement"`
}

func parseBreadcrumbJSONLD(doc *goquery.Document) (*jsonldBreadcrumb, bool) {
	script := doc.Find("script#jsonldBreadcrumb").First()
	if script.Length() == 0 {
		return nil, false
	}
	var bc jsonldBreadcrumb
	if err := json.Unmarshal([]byte(script.Text()), &bc); err != nil {
		// Malformed structured data is recovered by the DOM fallback.
		return nil, false
	}
	if len(bc.ItemListElement) == 0 {
		return nil, false
	}
	return &bc, true
}

// ProductName extracts the product name. The hero heading is the primary
// pattern; the configurator form attribute and the structured-data trail
// are kept as fallbacks.
func (e *Extractor) ProductName(doc *goquery.Document) (string, string, bool) {
	c := chain{field: "product_name", strategies: []strategy{
		selectorText("hero_heading", "h1.cmp-producthero__productName span"),
		selectorAttr("form_attribute", "form[data-product-name]", "data-product-name"),
		{name: "structured_data", fn: func(doc *goquery.Document) (string, bool) {
			bc, ok := parseBreadcrumbJSONLD(doc)
			if !ok {
				return "", false
			}
			// The last trail item is the product itself.
			return bc.ItemListElement[len(bc.ItemListElement)-1].Item.Name, true
		}},
	}}
	return c.extract(doc)
}

// SKU reads the identifier from the configurator container. The value is
// returned verbatim: no digit-count validation, no normalization.
func (e *Extractor) SKU(doc *goquery.Document) (string, string, bool) {
	c := chain{field: "sku", strategies: []strategy{
		selectorAttr("configurator_container", "div.product.product-configurator-aem", "data-product-sku"),
		selectorAttr("form_attribute", "form[data-product-sku]", "data-product-sku"),
	}}
	return c.extract(doc)
}

// DesignerName extracts the designer's name.
func (e *Extractor) DesignerName(doc *goquery.Document) (string, string, bool) {
	c := chain{field: "designer.name", strategies: []strategy{
		selectorText("hero_heading", "h3.cmp-producthero__productDesigner"),
		selectorAttr("form_attribute", "form[data-product-designer]", "data-product-designer"),
	}}
	return c.extract(doc)
}

// minBioLength filters out captions and labels that share the bio panel's
// selectors.
const minBioLength = 100

// DesignerBio extracts the designer biography from the lazy-loaded panel
// text.
func (e *Extractor) DesignerBio(doc *goquery.Document) (string, string, bool) {
	paragraph := func(name, selector string) strategy {
		return strategy{name: name, fn: func(doc *goquery.Document) (string, bool) {
			var bio string
			doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
				text := stripTags(sel.Text())
				if len(text) >= minBioLength {
					bio = text
					return false
				}
				return true
			})
			return bio, bio != ""
		}}
	}
	c := chain{field: "designer.bio", strategies: []strategy{
		paragraph("panel_text", "div.text.paneltext p"),
		paragraph("panel_text_loose", ".paneltext p"),
		paragraph("panel_text_any", `[class*="paneltext"] p`),
	}}
	return c.extract(doc)
}

// DesignerImage extracts the designer portrait URL. The primary strategies
// probe designer-specific image selectors; the secondary scan walks every
// image on the page and matches "designer" or the designer's normalized
// name in the URL or alt text.
func (e *Extractor) DesignerImage(doc *goquery.Document, designerName string) (string, string, bool) {
	imageSrc := func(sel *goquery.Selection) string {
		if src := sel.AttrOr("src", ""); src != "" {
			return src
		}
		return sel.AttrOr("data-src", "")
	}

	direct := func(name, selector string) strategy {
		return strategy{name: name, fn: func(doc *goquery.Document) (string, bool) {
			sel := doc.Find(selector).First()
			if sel.Length() == 0 {
				return "", false
			}
			return e.absoluteURL(imageSrc(sel)), true
		}}
	}

	normalized := normalizeForMatch(designerName)

	c := chain{field: "designer.image", strategies: []strategy{
		direct("tab_designer_src", `img[src*="tab-designer"]`),
		direct("tab_designer_data_src", `img[data-src*="tab-designer"]`),
		direct("designer_src", `img[src*="designer"]`),
		direct("designer_data_src", `img[data-src*="designer"]`),
		{name: "page_scan", fn: func(doc *goquery.Document) (string, bool) {
			var found string
			doc.Find("img").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
				src := imageSrc(sel)
				if src == "" {
					return true
				}
				haystack := normalizeForMatch(src + sel.AttrOr("alt", ""))
				if strings.Contains(haystack, "designer") ||
					(normalized != "" && strings.Contains(haystack, normalized)) {
					found = e.absoluteURL(src)
					return false
				}
				return true
			})
			return found, found != ""
		}},
	}}
	return c.extract(doc)
}

// Breadcrumbs extracts the navigation path, root first. The structured
// data block is authoritative; a malformed or absent block falls back
// silently to walking the breadcrumb nav.
func (e *Extractor) Breadcrumbs(doc *goquery.Document) ([]string, string, bool) {
	if bc, ok := parseBreadcrumbJSONLD(doc); ok {
		trail := make([]string, 0, len(bc.ItemListElement))
		for _, item := range bc.ItemListElement {
			if name := strings.TrimSpace(item.Item.Name); name != "" {
				trail = append(trail, name)
			}
		}
		if len(trail) > 0 {
			return trail, "structured_data", true
		}
	}

	var trail []string
	doc.Find("nav.cmp-breadcrumb li.cmp-breadcrumb__item").Each(func(_ int, item *goquery.Selection) {
		name := strings.TrimSpace(item.Find(`span[itemprop="name"]`).First().Text())
		if name != "" {
			trail = append(trail, name)
		}
	})
	if len(trail) > 0 {
		return trail, "breadcrumb_nav", true
	}

	return nil, "", false
}

// minDescriptionLength skips decorative one-liners inside the contents
// container.
const minDescriptionLength = 20

// Description extracts the product description, concatenating paragraph
// nodes with a single space.
func (e *Extractor) Description(doc *goquery.Document) (string, string, bool) {
	paragraphs := func(name, selector string) strategy {
		return strategy{name: name, fn: func(doc *goquery.Document) (string, bool) {
			var parts []string
			doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
				text := stripTags(sel.Text())
				if len(text) > minDescriptionLength {
					parts = append(parts, text)
				}
			})
			return strings.Join(parts, " "), len(parts) > 0
		}}
	}
	c := chain{field: "product_description", strategies: []strategy{
		paragraphs("contents_text", ".cmp-productcontents .cmp-text p"),
		paragraphs("contents_any", ".cmp-productcontents p"),
	}}
	return c.extract(doc)
}

// Concept extracts the concept-and-design text from page metadata, with a
// tab-panel fallback for pages that carry it inline.
func (e *Extractor) Concept(doc *goquery.Document) (string, string, bool) {
	meta := func(name, selector string) strategy {
		return strategy{name: name, fn: func(doc *goquery.Document) (string, bool) {
			content := doc.Find(selector).First().AttrOr("content", "")
			if content == "" {
				return "", false
			}
			return stripTags(content), true
		}}
	}
	c := chain{field: "concept_and_design", strategies: []strategy{
		meta("meta_description", `meta[name="description"]`),
		meta("og_description", `meta[property="og:description"]`),
		{name: "tab_panel", fn: func(doc *goquery.Document) (string, bool) {
			selectors := []string{
				`[data-tab="concept"] .text`,
				`[data-tab="conceptdesign"] .text`,
				".concept-design .text",
				".cmp-tabs__panel .text",
			}
			for _, selector := range selectors {
				text := stripTags(doc.Find(selector).First().Text())
				if len(text) > 50 {
					return text, true
				}
			}
			return "", false
		}},
	}}
	return c.extract(doc)
}
