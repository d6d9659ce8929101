package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/overdosehq/frau-scraper/internal/queue"
)

func TestCreateJobClassifiesURLs(t *testing.T) {
	q := queue.NewInMemoryQueue()
	defer q.Close()

	m := NewManager(nil, q, false, nil)

	job, err := m.CreateJob([]string{
		"https://www.poltronafrau.com/ww/en/products/vanity-fair.html",
		"https://www.poltronafrau.com/ww/en/products/armchairs.1234.html",
		"https://www.poltronafrau.com/ww/en/stories/heritage.html",
		"https://www.poltronafrau.com/ww/en/products/chester-one.html",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, job.Status)
	assert.Equal(t, 2, job.Total)
	assert.Equal(t, 2, job.Skipped)
	assert.Equal(t, 2, q.Size())
	assert.NotEmpty(t, job.ID)
	assert.False(t, job.CreatedAt.IsZero())
}

func TestCreateJobAllSkipped(t *testing.T) {
	q := queue.NewInMemoryQueue()
	defer q.Close()

	m := NewManager(nil, q, false, nil)

	job, err := m.CreateJob([]string{"https://example.com/not-a-product"})
	require.NoError(t, err)

	assert.Equal(t, 0, job.Total)
	assert.Equal(t, 1, job.Skipped)
	assert.Equal(t, 0, q.Size())
}

func TestCreateJobTasksCarryJobID(t *testing.T) {
	q := queue.NewInMemoryQueue()
	defer q.Close()

	m := NewManager(nil, q, false, nil)

	job, err := m.CreateJob([]string{"https://www.poltronafrau.com/ww/en/products/vanity-fair.html"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	task, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, job.ID, task.JobID)
	assert.Equal(t, "https://www.poltronafrau.com/ww/en/products/vanity-fair.html", task.URL)
}

func TestGetJobReturnsSnapshot(t *testing.T) {
	q := queue.NewInMemoryQueue()
	defer q.Close()

	m := NewManager(nil, q, false, nil)

	created, err := m.CreateJob([]string{"https://www.poltronafrau.com/ww/en/products/vanity-fair.html"})
	require.NoError(t, err)

	got, err := m.GetJob(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	// Mutating the snapshot must not leak into the manager's state.
	got.Done = 99
	again, err := m.GetJob(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Done)
}

func TestGetJobNotFound(t *testing.T) {
	q := queue.NewInMemoryQueue()
	defer q.Close()

	m := NewManager(nil, q, false, nil)

	_, err := m.GetJob("nope")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestListJobs(t *testing.T) {
	q := queue.NewInMemoryQueue()
	defer q.Close()

	m := NewManager(nil, q, false, nil)
	assert.Empty(t, m.ListJobs())

	_, err := m.CreateJob([]string{"https://www.poltronafrau.com/ww/en/products/a.html"})
	require.NoError(t, err)
	_, err = m.CreateJob([]string{"https://www.poltronafrau.com/ww/en/products/b.html"})
	require.NoError(t, err)

	assert.Len(t, m.ListJobs(), 2)
}

func TestRecordOutcomeCompletesJob(t *testing.T) {
	q := queue.NewInMemoryQueue()
	defer q.Close()

	m := NewManager(nil, q, false, nil)

	job, err := m.CreateJob([]string{
		"https://www.poltronafrau.com/ww/en/products/a.html",
		"https://www.poltronafrau.com/ww/en/products/b.html",
	})
	require.NoError(t, err)

	m.markRunning(job.ID)
	m.recordOutcome(job.ID, "COMPLETE")

	mid, err := m.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, mid.Status)
	assert.Equal(t, 1, mid.Done)
	assert.Equal(t, 1, mid.Complete)
	require.NotNil(t, mid.StartedAt)
	assert.Nil(t, mid.CompletedAt)

	m.recordOutcome(job.ID, "PARTIAL")

	final, err := m.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, final.Status)
	assert.Equal(t, 2, final.Done)
	assert.Equal(t, 1, final.Partial)
	require.NotNil(t, final.CompletedAt)
}
