// Package jobs tracks batch scrape jobs submitted through the API and
// drains them sequentially through the shared scraper service.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/overdosehq/frau-scraper/internal/models"
	"github.com/overdosehq/frau-scraper/internal/queue"
	"github.com/overdosehq/frau-scraper/internal/scraper"
	"github.com/overdosehq/frau-scraper/internal/sitemap"
)

var ErrJobNotFound = errors.New("job not found")

type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
)

// Job is one batch of product URLs.
type Job struct {
	ID          string     `json:"id"`
	Status      JobStatus  `json:"status"`
	Total       int        `json:"total"`
	Done        int        `json:"done"`
	Complete    int        `json:"complete"`
	Partial     int        `json:"partial"`
	Failed      int        `json:"failed"`
	Skipped     int        `json:"skipped"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type Manager struct {
	service *scraper.Service
	queue   queue.Queue
	persist bool
	logger  *slog.Logger

	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewManager(service *scraper.Service, q queue.Queue, persist bool, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		service: service,
		queue:   q,
		persist: persist,
		logger:  logger.With("component", "job_manager"),
		jobs:    make(map[string]*Job),
	}
}

// CreateJob classifies urls, enqueues the product pages, and returns the
// job. Category and irrelevant URLs are counted as skipped, not errors.
func (m *Manager) CreateJob(urls []string) (*Job, error) {
	job := &Job{
		ID:        uuid.New().String(),
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}

	var tasks []*queue.Task
	for _, url := range urls {
		if sitemap.Classify(url) != sitemap.Product {
			job.Skipped++
			continue
		}
		tasks = append(tasks, &queue.Task{
			ID:        uuid.New().String(),
			JobID:     job.ID,
			URL:       url,
			CreatedAt: time.Now(),
		})
	}
	job.Total = len(tasks)

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	if err := m.queue.PushBatch(tasks); err != nil {
		return nil, err
	}

	m.logger.Info("job created", "id", job.ID, "urls", job.Total, "skipped", job.Skipped)
	return job, nil
}

// GetJob returns a snapshot of the job.
func (m *Manager) GetJob(id string) (*Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	snapshot := *job
	return &snapshot, nil
}

// ListJobs returns snapshots of all known jobs.
func (m *Manager) ListJobs() []*Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := make([]*Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		snapshot := *job
		jobs = append(jobs, &snapshot)
	}
	return jobs
}

// StartWorker drains the queue until the context is cancelled. One task at
// a time: the page session model is strictly sequential.
func (m *Manager) StartWorker(ctx context.Context) {
	m.logger.Info("job worker started")

	for {
		task, err := m.queue.Pop(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, queue.ErrQueueClosed) {
				m.logger.Info("job worker stopped")
				return
			}
			m.logger.Error("failed to pop task", "error", err)
			continue
		}

		m.markRunning(task.JobID)

		record, err := m.service.ScrapeURL(ctx, task.URL, m.persist)
		if err != nil {
			m.logger.Error("failed to scrape task", "url", task.URL, "error", err)
			record = models.NewRecord(task.URL)
			record.Status = models.StatusFailed
		}

		m.recordOutcome(task.JobID, record.Status)
	}
}

func (m *Manager) markRunning(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok || job.Status != StatusPending {
		return
	}
	now := time.Now()
	job.Status = StatusRunning
	job.StartedAt = &now
}

func (m *Manager) recordOutcome(jobID string, status models.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return
	}

	job.Done++
	switch status {
	case models.StatusComplete:
		job.Complete++
	case models.StatusPartial:
		job.Partial++
	default:
		job.Failed++
	}

	if job.Done >= job.Total {
		now := time.Now()
		job.Status = StatusCompleted
		job.CompletedAt = &now
	}
}
