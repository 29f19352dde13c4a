package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validJob() *IngestJob {
	return &IngestJob{
		ID:        "job-1",
		SourceID:  "doc-1",
		Status:    IngestJobStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

func TestValidateIngestJob(t *testing.T) {
	assert.NoError(t, ValidateIngestJob(validJob()))
}

func TestValidateIngestJob_Nil(t *testing.T) {
	err := ValidateIngestJob(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be nil")
}

func TestValidateIngestJob_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(j *IngestJob)
		wantMsg string
	}{
		{"missing ID", func(j *IngestJob) { j.ID = "" }, "ID is required"},
		{"missing source", func(j *IngestJob) { j.SourceID = "" }, "SourceID is required"},
		{"bad status", func(j *IngestJob) { j.Status = "sleeping" }, "Status is invalid"},
		{"negative retries", func(j *IngestJob) { j.Retries = -1 }, "Retries cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := validJob()
			tt.mutate(job)

			err := ValidateIngestJob(job)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestIngestJobStatuses(t *testing.T) {
	for _, status := range []IngestJobStatus{
		IngestJobStatusPending,
		IngestJobStatusProcessing,
		IngestJobStatusCompleted,
		IngestJobStatusFailed,
	} {
		job := validJob()
		job.Status = status
		assert.NoError(t, ValidateIngestJob(job), string(status))
	}
}
