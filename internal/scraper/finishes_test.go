package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/overdosehq/frau-scraper/internal/models"
)

func TestCanonicalMaterial(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Leather", MaterialLeather},
		{"Pelle Frau", MaterialLeather},
		{"Saddle Extra", MaterialLeather},
		{"Wood finishes", MaterialWood},
		{"Essenze", MaterialWood},
		{"Fabric", MaterialFabric},
		{"Tessuti", MaterialFabric},
		{"Velvet collection", MaterialFabric},
		// Unknown labels pass through upper-cased instead of vanishing.
		{"Marble", "MARBLE"},
		{"  Glass  ", "GLASS"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalMaterial(tt.raw))
		})
	}
}

func TestAssembleFinishes(t *testing.T) {
	entries := []RawFinish{
		{Material: "Pelle Frau", Category: "Color System", Caption: "Heritage", Name: "Crimson", URL: "https://x/crimson.jpg"},
		{Material: "Pelle Frau", Category: "Color System", Caption: "Heritage", Name: "Moss", URL: "https://x/moss.jpg"},
		{Material: "Tessuti", Category: "Curiosa", Caption: "", Name: "Sand", URL: "https://x/sand.jpg"},
		// Duplicate (category, name) keeps the first occurrence.
		{Material: "Pelle Frau", Category: "Color System", Caption: "Other", Name: "Crimson", URL: "https://x/other.jpg"},
	}

	catalog := AssembleFinishes(entries)

	require.Contains(t, catalog, MaterialLeather)
	require.Contains(t, catalog, MaterialFabric)

	leather := catalog[MaterialLeather]["Color System"]
	require.Len(t, leather, 2)
	assert.Equal(t, models.FinishOption{ColorCaption: "HERITAGE", ColorName: "Crimson", ColorURL: "https://x/crimson.jpg"}, leather[0])
	assert.Equal(t, "Moss", leather[1].ColorName)

	fabric := catalog[MaterialFabric]["Curiosa"]
	require.Len(t, fabric, 1)
	assert.Equal(t, "Sand", fabric[0].ColorName)
}

func TestAssembleFinishesIdempotent(t *testing.T) {
	entries := []RawFinish{
		{Material: "Wood", Category: "Oak", Caption: "Natural", Name: "Light Oak", URL: "https://x/oak.jpg"},
		{Material: "Marble", Category: "", Name: "Carrara", URL: "https://x/carrara.jpg"},
	}

	first := AssembleFinishes(entries)
	second := AssembleFinishes(entries)

	assert.Equal(t, first, second)
	assert.Equal(t, "Carrara", first["MARBLE"]["Unknown Category"][0].ColorName)
}

const finishesFragmentHTML = `
<ol role="tablist">
	<li role="tab" id="leather-tab">Pelle Frau Leather</li>
</ol>
<div id="leather">
	<div class="cmp-accordion__item">
		<h3 class="cmp-accordion__header">
			<span class="cmp-accordion__title">Color System</span>
		</h3>
		<div class="finishes__grid-cell">
			<img data-src="/content/dam/finishes/crimson.jpg/jcr:content/renditions/thumb.jpg">
			<span class="cmp-image__title">Heritage</span>
		</div>
		<div class="finishes__grid-cell-text">
			<div class="cmp-text">Crimson</div>
		</div>
	</div>
</div>`

func TestFinishesFetchesFragment(t *testing.T) {
	e := mustExtractor(pageURL)

	s := newFakeSession(pageURL,
		`<div id="finishes-tab-positioning-bottom" data-include="/content/fragments/finishes.html"></div>`)
	s.fragments["https://www.poltronafrau.com/content/fragments/finishes.html"] = finishesFragmentHTML

	entries, ok := e.Finishes(context.Background(), s, time.Second)
	require.True(t, ok)
	require.Len(t, entries, 1)

	assert.Equal(t, "Pelle Frau Leather", entries[0].Material)
	assert.Equal(t, "Color System", entries[0].Category)
	assert.Equal(t, "Heritage", entries[0].Caption)
	assert.Equal(t, "Crimson", entries[0].Name)

	// The rendition suffix is stripped back to the asset path.
	assert.Equal(t, "https://www.poltronafrau.com/content/dam/finishes/crimson.jpg", entries[0].URL)
}

func TestFinishesMissingInclude(t *testing.T) {
	e := mustExtractor(pageURL)

	s := newFakeSession(pageURL, `<div>no finishes section</div>`)

	entries, ok := e.Finishes(context.Background(), s, time.Second)
	assert.False(t, ok)
	assert.Empty(t, entries)
	assert.Empty(t, s.fragmentCalls)
}

func TestFinishesFragmentFetchFailure(t *testing.T) {
	e := mustExtractor(pageURL)

	// Include attribute present, but the fragment never loads.
	s := newFakeSession(pageURL,
		`<div id="finishes-tab-positioning-bottom" data-include="/content/fragments/finishes.html"></div>`)

	entries, ok := e.Finishes(context.Background(), s, time.Second)
	assert.False(t, ok)
	assert.Empty(t, entries)
}

func TestFinishesFlatFragmentFallback(t *testing.T) {
	e := mustExtractor(pageURL)

	s := newFakeSession(pageURL,
		`<div data-include="/content/fragments/finishes.html" class="finishes"></div>`)
	s.fragments["https://www.poltronafrau.com/content/fragments/finishes.html"] = `
		<img data-src="/content/dam/finishes/walnut.jpg" alt="Walnut">`

	entries, ok := e.Finishes(context.Background(), s, time.Second)
	require.True(t, ok)
	require.Len(t, entries, 1)
	assert.Equal(t, "Unknown", entries[0].Material)
	assert.Equal(t, "General", entries[0].Category)
	assert.Equal(t, "Walnut", entries[0].Name)
}
