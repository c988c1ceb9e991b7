package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/doc_service/internal/models"
)

var terminalStatuses = []models.IngestionStatus{
	models.IngestionCompleted,
	models.IngestionFailed,
	models.IngestionCanceled,
}

func (r *GormRepo) CreateJob(ctx context.Context, job *models.IngestionJob) error {
	return r.DB.WithContext(ctx).Omit("Document").Create(job).Error
}

func (r *GormRepo) SaveJob(ctx context.Context, job *models.IngestionJob) error {
	return r.DB.WithContext(ctx).Omit("Document").Save(job).Error
}

func (r *GormRepo) ListJobs(ctx context.Context) ([]models.IngestionJob, error) {
	var jobs []models.IngestionJob
	if err := r.DB.WithContext(ctx).Preload("Document").Order("id ASC").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *GormRepo) GetJob(ctx context.Context, id uint) (*models.IngestionJob, error) {
	var job models.IngestionJob
	if err := r.DB.WithContext(ctx).Preload("Document").First(&job, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &job, nil
}

// CancelJob moves an in-progress job to canceled. Any other state, or a
// missing job, yields ErrNotFound.
func (r *GormRepo) CancelJob(ctx context.Context, id uint, at time.Time) (*models.IngestionJob, error) {
	res := r.DB.WithContext(ctx).Model(&models.IngestionJob{}).
		Where("id = ? AND status = ?", id, models.IngestionInProgress).
		Updates(map[string]any{"status": models.IngestionCanceled, "updated_at": at})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetJob(ctx, id)
}

// UpdateJobStatus records a worker-reported status on a job that has not
// reached a terminal state yet.
func (r *GormRepo) UpdateJobStatus(ctx context.Context, id uint, status models.IngestionStatus, errText *string, at time.Time) (*models.IngestionJob, error) {
	res := r.DB.WithContext(ctx).Model(&models.IngestionJob{}).
		Where("id = ? AND status NOT IN ?", id, terminalStatuses).
		Updates(map[string]any{"status": status, "error": errText, "updated_at": at})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetJob(ctx, id)
}
