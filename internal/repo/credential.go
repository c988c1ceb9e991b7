package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/doc_service/internal/models"
)

func (r *GormRepo) FindByUsername(ctx context.Context, username string) (*models.Credential, error) {
	var cred models.Credential
	if err := r.DB.WithContext(ctx).Preload("User").Where("username = ?", username).First(&cred).Error; err != nil {
		return nil, notFound(err)
	}
	return &cred, nil
}

func (r *GormRepo) FindByEmail(ctx context.Context, email string) (*models.Credential, error) {
	db := r.DB.WithContext(ctx)
	userID := db.Session(&gorm.Session{NewDB: true}).Model(&models.User{}).Select("id").Where("email = ?", email)

	var cred models.Credential
	if err := db.Preload("User").Where("user_id = (?)", userID).First(&cred).Error; err != nil {
		return nil, notFound(err)
	}
	return &cred, nil
}

func (r *GormRepo) FindByID(ctx context.Context, id uint) (*models.Credential, error) {
	var cred models.Credential
	if err := r.DB.WithContext(ctx).Preload("User").First(&cred, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &cred, nil
}

// Create inserts cred.User and cred in one transaction. On success both carry
// their generated ids.
func (r *GormRepo) Create(ctx context.Context, cred *models.Credential) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Credential{}).Where("username = ?", cred.Username).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrUsernameTaken
		}
		if err := tx.Model(&models.User{}).Where("email = ?", cred.User.Email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrEmailTaken
		}

		if err := tx.Create(&cred.User).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return fmt.Errorf("create user: %w", err)
		}
		cred.UserID = cred.User.ID
		if err := tx.Omit(clause.Associations).Create(cred).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrUsernameTaken
			}
			return fmt.Errorf("create credential: %w", err)
		}
		return nil
	})
}

// Save writes every credential column, including nil tokens as NULL.
func (r *GormRepo) Save(ctx context.Context, cred *models.Credential) error {
	if err := r.DB.WithContext(ctx).Omit(clause.Associations).Save(cred).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUsernameTaken
		}
		return err
	}
	return nil
}

// ReplaceAccessToken stores accessToken only while the credential still holds
// refreshToken, so a refresh racing a logout or a newer login loses.
func (r *GormRepo) ReplaceAccessToken(ctx context.Context, id uint, refreshToken, accessToken string) error {
	res := r.DB.WithContext(ctx).Model(&models.Credential{}).
		Where("id = ? AND refresh_token = ?", id, refreshToken).
		Update("access_token", accessToken)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleSession
	}
	return nil
}
