package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/doc_service/internal/logging"
	"github.com/Skotchmaster/doc_service/internal/models"
	"github.com/Skotchmaster/doc_service/internal/repo"
)

type Worker interface {
	Ingest(ctx context.Context, documentID, jobID uint) (status string, err error)
}

type IngestionService struct {
	Repo   *repo.GormRepo
	Worker Worker
	Events EventPublisher
	Now    func() time.Time
}

func (s *IngestionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func parseStatus(raw string) (models.IngestionStatus, bool) {
	st := models.IngestionStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch st {
	case models.IngestionPending, models.IngestionInProgress, models.IngestionCompleted,
		models.IngestionFailed, models.IngestionCanceled:
		return st, true
	}
	return "", false
}

// Trigger creates a pending job for documentID and hands it to the worker.
// The job ends up in the status the worker reports, or failed with the error
// text when the call does not succeed.
func (s *IngestionService) Trigger(ctx context.Context, documentID uint) (*models.IngestionJob, error) {
	l := logging.FromContext(ctx).With("svc", "ingestion.trigger", "document_id", documentID)

	if documentID == 0 {
		return nil, fmt.Errorf("%w: documentId is required", ErrValidation)
	}
	ok, err := s.Repo.DocumentExists(ctx, documentID)
	if err != nil {
		l.Error("trigger_error", "status", 500, "error", err)
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: document not found", ErrNotFound)
	}

	job := &models.IngestionJob{DocumentID: documentID, Status: models.IngestionPending}
	if err := s.Repo.CreateJob(ctx, job); err != nil {
		l.Error("trigger_error", "status", 500, "error", err)
		return nil, err
	}

	reported, err := s.Worker.Ingest(ctx, documentID, job.ID)
	if err == nil {
		st, valid := parseStatus(reported)
		if valid {
			job.Status = st
		} else {
			err = fmt.Errorf("worker reported unknown status %q", reported)
		}
	}
	if err != nil {
		msg := err.Error()
		job.Status = models.IngestionFailed
		job.Error = &msg
		l.Warn("worker_call_failed", "job_id", job.ID, "error", err)
	}
	at := s.now()
	job.UpdatedAt = &at

	// The worker has already acted on the job, so its outcome is recorded
	// even when the caller goes away mid-call.
	ctx = context.WithoutCancel(ctx)
	if err := s.Repo.SaveJob(ctx, job); err != nil {
		l.Error("trigger_error", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, TopicIngestionEvents, job.ID, map[string]any{
		"type":       "ingestion_triggered",
		"jobID":      job.ID,
		"documentID": documentID,
		"status":     job.Status,
	})
	l.Info("ingestion_triggered", "job_id", job.ID, "job_status", job.Status)
	return s.Repo.GetJob(ctx, job.ID)
}

func (s *IngestionService) List(ctx context.Context) ([]models.IngestionJob, error) {
	return s.Repo.ListJobs(ctx)
}

func (s *IngestionService) Get(ctx context.Context, id uint) (*models.IngestionJob, error) {
	job, err := s.Repo.GetJob(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: ingestion job not found", ErrNotFound)
		}
		return nil, err
	}
	return job, nil
}

func (s *IngestionService) Cancel(ctx context.Context, id uint) (*models.IngestionJob, error) {
	l := logging.FromContext(ctx).With("svc", "ingestion.cancel", "job_id", id)

	job, err := s.Repo.CancelJob(ctx, id, s.now())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: ingestion job not found or cannot be canceled", ErrNotFound)
		}
		l.Error("cancel_error", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, TopicIngestionEvents, job.ID, map[string]any{
		"type":  "ingestion_canceled",
		"jobID": job.ID,
	})
	l.Info("ingestion_canceled")
	return job, nil
}

// Callback records a status reported by the worker. Jobs that already reached
// a terminal status are left untouched and reported as not found.
func (s *IngestionService) Callback(ctx context.Context, id uint, status, errText string) (*models.IngestionJob, error) {
	l := logging.FromContext(ctx).With("svc", "ingestion.callback", "job_id", id)

	st, ok := parseStatus(status)
	if !ok || st == models.IngestionPending {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	var errPtr *string
	if errText != "" {
		errPtr = &errText
	}

	job, err := s.Repo.UpdateJobStatus(ctx, id, st, errPtr, s.now())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: ingestion job not found or already finished", ErrNotFound)
		}
		l.Error("callback_error", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, TopicIngestionEvents, job.ID, map[string]any{
		"type":   "ingestion_status_changed",
		"jobID":  job.ID,
		"status": job.Status,
	})
	l.Info("ingestion_status_changed", "job_status", job.Status)
	return job, nil
}
