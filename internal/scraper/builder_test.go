package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/overdosehq/frau-scraper/internal/models"
)

const fullProductHTML = `
<html>
<head>
	<meta name="description" content="A timeless icon of Italian design.">
	<script id="jsonldBreadcrumb" type="application/ld+json">
		{"itemListElement":[
			{"item":{"@id":"/ww/en","name":"Home"}},
			{"item":{"@id":"/ww/en/products","name":"Products"}},
			{"item":{"@id":"/ww/en/products/vanity-fair","name":"Vanity Fair"}}
		]}
	</script>
</head>
<body>
	<h1 class="cmp-producthero__productName"><span>Vanity Fair</span></h1>
	<h3 class="cmp-producthero__productDesigner">Renzo Frau</h3>
	<div class="product product-configurator-aem" data-product-sku="5527000"></div>
	<div class="text paneltext">
		<p>Renzo Frau founded the company in Turin in 1912 and shaped a century of upholstered furniture with his saddle leather craft.</p>
	</div>
	<img src="/content/dam/tab-designer/renzo-frau.jpg">
	<div class="cmp-productcontents">
		<div class="cmp-text">
			<p>An armchair with generous proportions and saddle leather details.</p>
		</div>
	</div>
	<img src="/content/dam/products/vanity/01_hero/front.jpg">
	<div class="cmp-accordion__subitem">
		<span class="cmp-accordion__title">Download 2D DWG</span>
		<a data-href="/content/dam/downloads/vanity_2d.dwg">Vanity Fair 2D</a>
	</div>
	<div id="finishes-tab-positioning-bottom" data-include="/content/fragments/finishes.html"></div>
</body>
</html>`

func TestBuildCompleteRecord(t *testing.T) {
	s := newFakeSession(pageURL, fullProductHTML)
	s.fragments["https://www.poltronafrau.com/content/fragments/finishes.html"] = finishesFragmentHTML

	record := NewBuilder().Build(context.Background(), s)

	assert.Equal(t, models.StatusComplete, record.Status)
	assert.Equal(t, pageURL, record.URL)
	assert.False(t, record.ScrapedAt.IsZero())

	require.NotNil(t, record.ProductName)
	assert.Equal(t, "Vanity Fair", *record.ProductName)
	require.NotNil(t, record.SKU)
	assert.Equal(t, "5527000", *record.SKU)

	require.NotNil(t, record.Designer)
	require.NotNil(t, record.Designer.Name)
	assert.Equal(t, "Renzo Frau", *record.Designer.Name)
	require.NotNil(t, record.Designer.Bio)
	require.NotNil(t, record.Designer.Image)

	assert.Equal(t, []string{"Home", "Products", "Vanity Fair"}, record.Breadcrumbs)
	require.NotNil(t, record.ProductDescription)
	require.NotNil(t, record.ConceptAndDesign)

	assert.Len(t, record.Images.Hero, 1)
	assert.Len(t, record.Downloads, 1)
	assert.Contains(t, record.CoveringsAndFinishes, MaterialLeather)
	assert.Empty(t, record.ExtractionErrors)
}

func TestBuildPartialWhenNameMissing(t *testing.T) {
	html := `<div class="product product-configurator-aem" data-product-sku="5527000"></div>`
	s := newFakeSession(pageURL, html)

	record := NewBuilder().Build(context.Background(), s)

	assert.Equal(t, models.StatusPartial, record.Status)
	assert.Nil(t, record.ProductName)
	require.NotNil(t, record.SKU)

	fields := make([]string, 0, len(record.ExtractionErrors))
	for _, e := range record.ExtractionErrors {
		fields = append(fields, e.Field)
	}
	assert.Contains(t, fields, "product_name")
	assert.NotContains(t, fields, "sku")
}

func TestBuildPartialWhenSKUMissing(t *testing.T) {
	html := `<h1 class="cmp-producthero__productName"><span>Vanity Fair</span></h1>`
	s := newFakeSession(pageURL, html)

	record := NewBuilder().Build(context.Background(), s)

	assert.Equal(t, models.StatusPartial, record.Status)
	require.NotNil(t, record.ProductName)
	assert.Nil(t, record.SKU)
}

func TestBuildFailedWhenUnreachable(t *testing.T) {
	s := newFakeSession(pageURL, fullProductHTML)
	s.reachable = false

	record := NewBuilder().Build(context.Background(), s)

	// Unreachable short-circuits: no extractor runs.
	assert.Equal(t, models.StatusFailed, record.Status)
	assert.Equal(t, pageURL, record.URL)
	assert.Nil(t, record.ProductName)
	assert.Nil(t, record.SKU)
	assert.Nil(t, record.Designer)
	require.Len(t, record.ExtractionErrors, 1)
	assert.Equal(t, "page", record.ExtractionErrors[0].Field)
	assert.Equal(t, 0, s.revealCalls)
}

func TestBuildMissingOptionalFieldsStaysComplete(t *testing.T) {
	// Name and SKU present, everything else absent: PARTIAL is reserved
	// for the two required fields.
	html := `
		<h1 class="cmp-producthero__productName"><span>Vanity Fair</span></h1>
		<div class="product product-configurator-aem" data-product-sku="5527000"></div>`
	s := newFakeSession(pageURL, html)

	record := NewBuilder().Build(context.Background(), s)

	assert.Equal(t, models.StatusComplete, record.Status)
	assert.NotEmpty(t, record.ExtractionErrors)
	assert.NotNil(t, record.CoveringsAndFinishes)
}
