// Package storage writes scraped records to per-record JSON files, the
// flat-file sink used alongside (or instead of) the database.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/overdosehq/frau-scraper/internal/models"
)

var (
	unsafeNameChars = regexp.MustCompile(`[^\w\s-]`)
	nameSeparators  = regexp.MustCompile(`[-\s]+`)
	unsafeSKUChars  = regexp.MustCompile(`[^\w-]`)
)

// RecordStore persists ProductRecords under a single directory, one JSON
// file per record.
type RecordStore struct {
	dir string
	mu  sync.Mutex
}

func NewRecordStore(dir string) (*RecordStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &RecordStore{dir: dir}, nil
}

// Save writes the record as pretty-printed JSON and returns the file
// path. File names follow <name>_<sku>_<timestamp>.json with unsafe
// characters stripped.
func (rs *RecordStore) Save(record *models.ProductRecord) (string, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}

	filename := fmt.Sprintf("%s_%s_%s.json",
		cleanName(record.ProductName),
		cleanSKU(record.SKU),
		time.Now().Format("20060102_150405"),
	)
	path := filepath.Join(rs.dir, filename)

	// Write to temp file first for atomicity
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write record file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("failed to finalize record file: %w", err)
	}

	return path, nil
}

func cleanName(name *string) string {
	if name == nil || *name == "" {
		return "unknown_product"
	}
	cleaned := unsafeNameChars.ReplaceAllString(*name, "")
	cleaned = nameSeparators.ReplaceAllString(cleaned, "-")
	if cleaned == "" {
		return "unknown_product"
	}
	return cleaned
}

func cleanSKU(sku *string) string {
	if sku == nil || *sku == "" {
		return "unknown_sku"
	}
	cleaned := unsafeSKUChars.ReplaceAllString(*sku, "")
	if cleaned == "" {
		return "unknown_sku"
	}
	return cleaned
}
