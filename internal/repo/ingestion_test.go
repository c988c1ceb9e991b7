package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/doc_service/internal/dbtest"
	"github.com/Skotchmaster/doc_service/internal/models"
)

func seedJob(t *testing.T, r *GormRepo, status models.IngestionStatus) *models.IngestionJob {
	t.Helper()
	ctx := context.Background()
	owner := seedUser(t, r, "owner")
	doc := &models.Document{Title: "t", Description: "d", StorageKey: "k", UserID: owner}
	require.NoError(t, r.CreateDocument(ctx, doc))
	job := &models.IngestionJob{DocumentID: doc.ID, Status: status}
	require.NoError(t, r.CreateJob(ctx, job))
	return job
}

func TestCancelJob(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  models.IngestionStatus
		wantErr error
	}{
		{name: "in progress", status: models.IngestionInProgress},
		{name: "pending", status: models.IngestionPending, wantErr: ErrNotFound},
		{name: "completed", status: models.IngestionCompleted, wantErr: ErrNotFound},
		{name: "already canceled", status: models.IngestionCanceled, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := New(dbtest.Open(t))
			job := seedJob(t, r, tt.status)

			got, err := r.CancelJob(context.Background(), job.ID, time.Now())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.IngestionCanceled, got.Status)
			require.NotNil(t, got.UpdatedAt)
			require.NotNil(t, got.Document)
			assert.Equal(t, job.DocumentID, got.Document.ID)
		})
	}
}

func TestUpdateJobStatus(t *testing.T) {
	t.Parallel()

	r := New(dbtest.Open(t))
	ctx := context.Background()
	job := seedJob(t, r, models.IngestionInProgress)

	msg := "boom"
	got, err := r.UpdateJobStatus(ctx, job.ID, models.IngestionFailed, &msg, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.IngestionFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Equal(t, "boom", *got.Error)

	_, err = r.UpdateJobStatus(ctx, job.ID, models.IngestionCompleted, nil, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.UpdateJobStatus(ctx, 999, models.IngestionCompleted, nil, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)

	jobs, err := r.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.IngestionFailed, jobs[0].Status)
}
