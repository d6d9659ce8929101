package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/overdosehq/frau-scraper/internal/database"
	"github.com/overdosehq/frau-scraper/internal/jobs"
	"github.com/overdosehq/frau-scraper/internal/scraper"
	"github.com/overdosehq/frau-scraper/internal/sitemap"
)

type Handlers struct {
	service *scraper.Service
	jobs    *jobs.Manager
	db      *database.DB
	logger  *slog.Logger
}

func NewHandlers(service *scraper.Service, jobManager *jobs.Manager, db *database.DB, logger *slog.Logger) *Handlers {
	return &Handlers{
		service: service,
		jobs:    jobManager,
		db:      db,
		logger:  logger,
	}
}

// ScrapeRequest asks for a single product URL to be scraped now.
type ScrapeRequest struct {
	URL     string `json:"url"`
	Persist bool   `json:"persist"`
}

// ScrapeProduct scrapes one URL synchronously and returns the record.
// Partial records come back 200; only a malformed request is an error.
func (h *Handlers) ScrapeProduct(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		h.respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	if sitemap.Classify(req.URL) != sitemap.Product {
		h.respondError(w, http.StatusBadRequest, "not a product page URL")
		return
	}

	record, err := h.service.ScrapeURL(r.Context(), req.URL, req.Persist)
	if err != nil {
		h.logger.Error("failed to scrape", "url", req.URL, "error", err)
		h.respondError(w, http.StatusInternalServerError, "scrape session failed")
		return
	}

	h.respondJSON(w, http.StatusOK, record)
}

// CreateJobRequest submits a batch of URLs.
type CreateJobRequest struct {
	URLs []string `json:"urls"`
}

func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.URLs) == 0 {
		h.respondError(w, http.StatusBadRequest, "urls is required")
		return
	}

	job, err := h.jobs.CreateJob(req.URLs)
	if err != nil {
		h.logger.Error("failed to create job", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	h.respondJSON(w, http.StatusCreated, job)
}

func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.GetJob(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			h.respondError(w, http.StatusNotFound, "job not found")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "failed to get job")
		return
	}

	h.respondJSON(w, http.StatusOK, job)
}

func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.jobs.ListJobs())
}

func (h *Handlers) GetRecord(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		h.respondError(w, http.StatusBadRequest, "url query parameter is required")
		return
	}

	record, err := h.db.GetRecord(r.Context(), url)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "record not found")
			return
		}
		h.logger.Error("failed to get record", "url", url, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get record")
		return
	}

	h.respondJSON(w, http.StatusOK, record)
}

func (h *Handlers) ListRecords(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	records, err := h.db.ListRecords(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list records", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list records")
		return
	}

	h.respondJSON(w, http.StatusOK, records)
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
