package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/doc_service/internal/models"
)

func (r *GormRepo) CreateDocument(ctx context.Context, doc *models.Document) error {
	return r.DB.WithContext(ctx).Create(doc).Error
}

func (r *GormRepo) SaveDocument(ctx context.Context, doc *models.Document) error {
	return r.DB.WithContext(ctx).Omit("User").Save(doc).Error
}

func (r *GormRepo) ListDocuments(ctx context.Context, userID uint) ([]models.Document, error) {
	var docs []models.Document
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *GormRepo) DocumentStorageKeys(ctx context.Context, userID uint) ([]string, error) {
	var keys []string
	if err := r.DB.WithContext(ctx).Model(&models.Document{}).Where("user_id = ?", userID).Pluck("storage_key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// GetDocument returns ErrNotFound both for a missing document and for one
// owned by another user.
func (r *GormRepo) GetDocument(ctx context.Context, id, userID uint) (*models.Document, error) {
	var doc models.Document
	if err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&doc).Error; err != nil {
		return nil, notFound(err)
	}
	return &doc, nil
}

func (r *GormRepo) DocumentExists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Document{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) DeleteDocument(ctx context.Context, id, userID uint) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchDocuments is the database fallback for full-text search: a
// case-insensitive substring match on title and description.
func (r *GormRepo) SearchDocuments(ctx context.Context, userID uint, q string, offset, limit int) (int64, []models.Document, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
	base := r.DB.WithContext(ctx).Model(&models.Document{}).
		Where("user_id = ?", userID).
		Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, pattern, pattern).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var docs []models.Document
	if err := base.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&docs).Error; err != nil {
		return 0, nil, err
	}
	return total, docs, nil
}
