package jobs

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parchment-ai/parchment/internal/domain"
)

// Queue is an in-memory ingest job queue. Jobs survive only for the life of
// the process; clients poll job status over the API.
type Queue struct {
	mu   sync.Mutex
	jobs map[string]*domain.IngestJob
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{jobs: make(map[string]*domain.IngestJob)}
}

// Enqueue adds a pending ingestion job for the document and returns it.
func (q *Queue) Enqueue(ctx context.Context, sourceID, name, text string) (*domain.IngestJob, error) {
	job := &domain.IngestJob{
		ID:        uuid.New().String(),
		SourceID:  sourceID,
		Name:      name,
		Text:      text,
		Status:    domain.IngestJobStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := domain.ValidateIngestJob(job); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid ingest job", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs[job.ID] = job

	copied := *job
	return &copied, nil
}

// Get returns the job with the given ID.
func (q *Queue) Get(ctx context.Context, jobID string) (*domain.IngestJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.jobs[jobID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

// GetPendingJobs retrieves and claims pending jobs, oldest first. Claimed
// jobs move to processing so a second poller cannot pick them up.
func (q *Queue) GetPendingJobs(ctx context.Context) ([]*domain.IngestJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var pending []*domain.IngestJob
	for _, job := range q.jobs {
		if job.Status == domain.IngestJobStatusPending {
			job.Status = domain.IngestJobStatusProcessing
			copied := *job
			pending = append(pending, &copied)
		}
	}

	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].CreatedAt.Before(pending[j].CreatedAt)
		}
		return pending[i].ID < pending[j].ID
	})
	return pending, nil
}

// UpdateJobStatus updates the status of a job, recording the error message
// and completion time where relevant.
func (q *Queue) UpdateJobStatus(ctx context.Context, jobID string, status domain.IngestJobStatus, errMsg string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.jobs[jobID]
	if !ok {
		return domain.ErrJobNotFound
	}

	job.Status = status
	job.Error = errMsg
	if status == domain.IngestJobStatusCompleted || status == domain.IngestJobStatusFailed {
		now := time.Now().UTC()
		job.ProcessedAt = &now
	}
	return nil
}

// UpdateJobProgress records how many chunks a job has ingested so far.
func (q *Queue) UpdateJobProgress(ctx context.Context, jobID string, chunksTotal, chunksIngested int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.jobs[jobID]
	if !ok {
		return domain.ErrJobNotFound
	}
	job.ChunksTotal = chunksTotal
	job.ChunksIngested = chunksIngested
	return nil
}

// IncrementRetries increments the retry count for a job.
func (q *Queue) IncrementRetries(ctx context.Context, jobID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.jobs[jobID]
	if !ok {
		return domain.ErrJobNotFound
	}
	job.Retries++
	return nil
}
