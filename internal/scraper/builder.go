package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/overdosehq/frau-scraper/internal/models"
)

// DefaultRevealTimeout bounds the wait for lazily-revealed sections
// (downloads tab, finishes fragment).
const DefaultRevealTimeout = 10 * time.Second

// Builder orchestrates the field extractors and the finishes assembler
// into one immutable ProductRecord per session.
type Builder struct {
	revealTimeout time.Duration
	logger        *slog.Logger
}

func NewBuilder() *Builder {
	return &Builder{
		revealTimeout: DefaultRevealTimeout,
		logger:        slog.Default().With("component", "record_builder"),
	}
}

// Build runs every extractor against the session and assembles the record.
// An unreachable page short-circuits: no extractor runs and the record is
// FAILED with only the URL set. All other failures are local: a field
// miss is recorded and extraction continues.
func (b *Builder) Build(ctx context.Context, s Session) *models.ProductRecord {
	record := models.NewRecord(s.URL())
	record.ScrapedAt = time.Now()

	if !s.Reachable() {
		record.Status = models.StatusFailed
		record.AddError("page", "page unreachable")
		return record
	}

	doc, err := s.Document()
	if err != nil {
		b.logger.Error("failed to snapshot page", "url", s.URL(), "error", err)
		record.Status = models.StatusFailed
		record.AddError("page", "failed to read rendered page tree")
		return record
	}

	ext, err := NewExtractor(s.URL())
	if err != nil {
		record.Status = models.StatusFailed
		record.AddError("page", "invalid page URL")
		return record
	}

	if name, strat, ok := ext.ProductName(doc); ok {
		record.ProductName = &name
		b.logger.Debug("extracted product name", "strategy", strat)
	} else {
		record.AddError("product_name", "not found after all strategies")
	}

	if sku, strat, ok := ext.SKU(doc); ok {
		record.SKU = &sku
		b.logger.Debug("extracted sku", "strategy", strat)
	} else {
		record.AddError("sku", "not found after all strategies")
	}

	designer := &models.Designer{}
	designerName := ""
	if name, _, ok := ext.DesignerName(doc); ok {
		designer.Name = &name
		designerName = name
	} else {
		record.AddError("designer.name", "not found")
	}
	if bio, _, ok := ext.DesignerBio(doc); ok {
		designer.Bio = &bio
	} else {
		record.AddError("designer.bio", "not found")
	}
	if image, _, ok := ext.DesignerImage(doc, designerName); ok {
		designer.Image = &image
	} else {
		record.AddError("designer.image", "not found")
	}
	if designer.Name != nil || designer.Bio != nil || designer.Image != nil {
		record.Designer = designer
	}

	if trail, strat, ok := ext.Breadcrumbs(doc); ok {
		record.Breadcrumbs = trail
		b.logger.Debug("extracted breadcrumbs", "strategy", strat, "depth", len(trail))
	} else {
		record.AddError("breadcrumbs", "not found")
	}

	if desc, _, ok := ext.Description(doc); ok {
		record.ProductDescription = &desc
	} else {
		record.AddError("product_description", "not found")
	}

	if concept, _, ok := ext.Concept(doc); ok {
		record.ConceptAndDesign = &concept
	} else {
		record.AddError("concept_and_design", "not found")
	}

	record.Images = ext.ImagesByCategory(doc)

	if downloads, ok := ext.Downloads(ctx, s, b.revealTimeout); ok {
		record.Downloads = downloads
	} else {
		record.AddError("downloads", "section not revealed or empty")
	}

	if raw, ok := ext.Finishes(ctx, s, b.revealTimeout); ok {
		record.CoveringsAndFinishes = AssembleFinishes(raw)
	} else {
		record.CoveringsAndFinishes = models.FinishCatalog{}
		record.AddError("coverings_and_finishes", "section not revealed or empty")
	}

	record.Status = record.ComputeStatus()

	b.logger.Info("record built",
		"url", record.URL,
		"status", record.Status,
		"images", record.Images.Total(),
		"downloads", len(record.Downloads),
		"errors", len(record.ExtractionErrors),
	)

	return record
}
