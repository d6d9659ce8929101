package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestComputeStatus(t *testing.T) {
	tests := []struct {
		name   string
		record *ProductRecord
		want   Status
	}{
		{
			name: "name and sku present",
			record: &ProductRecord{
				ProductName: strPtr("Vanity Fair"),
				SKU:         strPtr("5527000"),
			},
			want: StatusComplete,
		},
		{
			name:   "missing name",
			record: &ProductRecord{SKU: strPtr("5527000")},
			want:   StatusPartial,
		},
		{
			name:   "missing sku",
			record: &ProductRecord{ProductName: strPtr("Vanity Fair")},
			want:   StatusPartial,
		},
		{
			name:   "both missing",
			record: &ProductRecord{},
			want:   StatusPartial,
		},
		{
			name: "failed is sticky",
			record: &ProductRecord{
				ProductName: strPtr("Vanity Fair"),
				SKU:         strPtr("5527000"),
				Status:      StatusFailed,
			},
			want: StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.ComputeStatus())
		})
	}
}

func TestAddError(t *testing.T) {
	record := NewRecord("https://example.com/p.html")
	record.AddError("sku", "not found")
	record.AddError("designer.bio", "not found")

	require.Len(t, record.ExtractionErrors, 2)
	assert.Equal(t, ExtractionError{Field: "sku", Reason: "not found"}, record.ExtractionErrors[0])
}

func TestRecordJSONFieldNames(t *testing.T) {
	record := NewRecord("https://example.com/p.html")
	record.ProductName = strPtr("Vanity Fair")
	record.Images = ImageSet{Hero: []string{}, Product: []string{}, Contextual: []string{}, Dimension: []string{}}
	record.Status = StatusPartial

	data, err := json.Marshal(record)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))

	// Downstream consumers key on these names.
	for _, key := range []string{
		"url", "product_name", "sku", "designer", "breadcrumbs",
		"product_description", "concept_and_design", "images", "downloads",
		"coverings_and_finishes", "extraction_errors", "status", "scraped_at",
	} {
		assert.Contains(t, raw, key)
	}

	var images map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["images"], &images))
	for _, key := range []string{"hero_images", "product_images", "contextual_images", "dimension_images"} {
		assert.Contains(t, images, key)
	}
}

func TestImageSetTotal(t *testing.T) {
	set := ImageSet{
		Hero:      []string{"a"},
		Product:   []string{"b", "c"},
		Dimension: []string{"d"},
	}
	assert.Equal(t, 4, set.Total())
}
