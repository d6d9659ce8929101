package sitemap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Classification
	}{
		{
			name: "product page",
			url:  "https://www.poltronafrau.com/ww/en/products/vanity-fair.html",
			want: Product,
		},
		{
			name: "nested product page",
			url:  "https://www.poltronafrau.com/ww/en/products/sofas/chester-one.html",
			want: Product,
		},
		{
			name: "category listing with numeric segment",
			url:  "https://www.poltronafrau.com/ww/en/products/armchairs.1234.html",
			want: Category,
		},
		{
			name: "hyphenated slug is not a category",
			url:  "https://www.poltronafrau.com/ww/en/products/foo-bar.html",
			want: Product,
		},
		{
			name: "outside the product section",
			url:  "https://www.poltronafrau.com/ww/en/stories/heritage.html",
			want: Irrelevant,
		},
		{
			name: "different locale prefix",
			url:  "https://www.poltronafrau.com/it/it/prodotti/vanity-fair.html",
			want: Irrelevant,
		},
		{
			name: "empty string",
			url:  "",
			want: Irrelevant,
		},
		{
			name: "numeric segment outside the product section stays irrelevant",
			url:  "https://www.poltronafrau.com/ww/en/news/item.42.html",
			want: Irrelevant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.url))
		})
	}
}

func TestClassificationString(t *testing.T) {
	assert.Equal(t, "product", Product.String())
	assert.Equal(t, "category", Category.String())
	assert.Equal(t, "irrelevant", Irrelevant.String())
}

func TestProductURLs(t *testing.T) {
	urls := []string{
		"https://www.poltronafrau.com/ww/en/products/vanity-fair.html",
		"https://www.poltronafrau.com/ww/en/products/armchairs.1234.html",
		"https://www.poltronafrau.com/ww/en/stories/heritage.html",
		"https://www.poltronafrau.com/ww/en/products/chester-one.html",
	}

	got := ProductURLs(urls)

	assert.Equal(t, []string{
		"https://www.poltronafrau.com/ww/en/products/vanity-fair.html",
		"https://www.poltronafrau.com/ww/en/products/chester-one.html",
	}, got)
}

func TestFetch(t *testing.T) {
	const sitemapXML = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
	<url><loc>https://www.poltronafrau.com/ww/en/products/vanity-fair.html</loc></url>
	<url><loc> https://www.poltronafrau.com/ww/en/stories/heritage.html </loc></url>
	<url><loc></loc></url>
</urlset>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(sitemapXML))
	}))
	defer server.Close()

	urls, err := Fetch(context.Background(), server.Client(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://www.poltronafrau.com/ww/en/products/vanity-fair.html",
		"https://www.poltronafrau.com/ww/en/stories/heritage.html",
	}, urls)
}

func TestFetchNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := Fetch(context.Background(), server.Client(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestFetchMalformedXML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<urlset><url><loc>unclosed"))
	}))
	defer server.Close()

	_, err := Fetch(context.Background(), server.Client(), server.URL)
	assert.Error(t, err)
}
