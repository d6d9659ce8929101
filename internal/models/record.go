package models

import (
	"time"
)

// Status describes how complete a scraped record is.
type Status string

const (
	// StatusComplete means both required fields (name and SKU) were found.
	StatusComplete Status = "COMPLETE"
	// StatusPartial means the page was reachable but a required field is missing.
	StatusPartial Status = "PARTIAL"
	// StatusFailed means the page itself could not be reached.
	StatusFailed Status = "FAILED"
)

// Designer holds the designer sub-entity. Each field is independently
// nullable.
type Designer struct {
	Name  *string `json:"name"`
	Bio   *string `json:"bio"`
	Image *string `json:"image"`
}

// ImageSet groups product image URLs by catalog category. An image may
// appear in more than one category.
type ImageSet struct {
	Hero       []string `json:"hero_images"`
	Product    []string `json:"product_images"`
	Contextual []string `json:"contextual_images"`
	Dimension  []string `json:"dimension_images"`
}

// Total counts images across all categories.
func (s ImageSet) Total() int {
	return len(s.Hero) + len(s.Product) + len(s.Contextual) + len(s.Dimension)
}

// Download is one downloadable technical file found on the product page.
type Download struct {
	Filename string `json:"filename"`
	Group    string `json:"group"`
	Text     string `json:"text"`
	URL      string `json:"url"`
}

// FinishOption is a single covering/finish swatch.
type FinishOption struct {
	ColorCaption string `json:"color_caption"`
	ColorName    string `json:"color_name"`
	ColorURL     string `json:"color_url"`
}

// FinishCatalog maps canonical material type -> category label -> finishes,
// in discovery order within each category.
type FinishCatalog map[string]map[string][]FinishOption

// ExtractionError records one field that could not be extracted and why.
type ExtractionError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ProductRecord is the structured result of scraping one product URL. The
// JSON field names are a compatibility contract for downstream consumers;
// the record is built once and not mutated after Status is set.
type ProductRecord struct {
	URL                  string            `json:"url"`
	ProductName          *string           `json:"product_name"`
	SKU                  *string           `json:"sku"`
	Designer             *Designer         `json:"designer"`
	Breadcrumbs          []string          `json:"breadcrumbs"`
	ProductDescription   *string           `json:"product_description"`
	ConceptAndDesign     *string           `json:"concept_and_design"`
	Images               ImageSet          `json:"images"`
	Downloads            []Download        `json:"downloads"`
	CoveringsAndFinishes FinishCatalog     `json:"coverings_and_finishes"`
	ExtractionErrors     []ExtractionError `json:"extraction_errors"`
	Status               Status            `json:"status"`
	ScrapedAt            time.Time         `json:"scraped_at"`
}

// NewRecord returns a record for url with no fields extracted yet.
func NewRecord(url string) *ProductRecord {
	return &ProductRecord{URL: url}
}

// AddError appends an extraction error entry.
func (r *ProductRecord) AddError(field, reason string) {
	r.ExtractionErrors = append(r.ExtractionErrors, ExtractionError{Field: field, Reason: reason})
}

// ComputeStatus applies the completeness rule: FAILED is only set by the
// builder for unreachable pages; otherwise a missing name or SKU degrades
// the record to PARTIAL and anything else is COMPLETE.
func (r *ProductRecord) ComputeStatus() Status {
	if r.Status == StatusFailed {
		return StatusFailed
	}
	if r.ProductName == nil || r.SKU == nil {
		return StatusPartial
	}
	return StatusComplete
}
