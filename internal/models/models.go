package models

import (
	"time"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                 json:"id"`
	Email     string    `gorm:"uniqueIndex;not null"                     json:"email"`
	Role      Role      `gorm:"type:varchar(16);not null;default:viewer" json:"role"`
	CreatedAt time.Time `                                                json:"created_at"`
}

// Credential is the authentication record of a User. A nil RefreshToken means
// the session is revoked; AccessToken is the only access token accepted for it.
type Credential struct {
	ID           uint    `gorm:"primaryKey;autoIncrement"    json:"id"`
	Username     string  `gorm:"uniqueIndex;not null"        json:"username"`
	PasswordHash string  `gorm:"not null"                    json:"-"`
	AccessToken  *string `gorm:"type:text"                   json:"-"`
	RefreshToken *string `gorm:"type:text"                   json:"-"`
	UserID       uint    `gorm:"uniqueIndex;not null"        json:"-"`
	User         User    `gorm:"constraint:OnDelete:CASCADE" json:"user"`
}

type Document struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"    json:"id"`
	Title       string    `gorm:"not null"                    json:"title"`
	Description string    `gorm:"not null"                    json:"description"`
	StorageKey  string    `gorm:"not null"                    json:"storage_key"`
	URL         string    `                                   json:"url"`
	ContentType string    `                                   json:"content_type"`
	Size        int64     `                                   json:"size"`
	UserID      uint      `gorm:"index;not null"              json:"user_id"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `                                   json:"created_at"`
}

type IngestionStatus string

const (
	IngestionPending    IngestionStatus = "pending"
	IngestionInProgress IngestionStatus = "in_progress"
	IngestionCompleted  IngestionStatus = "completed"
	IngestionFailed     IngestionStatus = "failed"
	IngestionCanceled   IngestionStatus = "canceled"
)

func (s IngestionStatus) Terminal() bool {
	return s == IngestionCompleted || s == IngestionFailed || s == IngestionCanceled
}

type IngestionJob struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"                  json:"id"`
	DocumentID uint            `gorm:"index;not null"                            json:"document_id"`
	Document   *Document       `gorm:"constraint:OnDelete:CASCADE"               json:"document,omitempty"`
	Status     IngestionStatus `gorm:"type:varchar(16);not null;default:pending" json:"status"`
	Error      *string         `                                                 json:"error"`
	CreatedAt  time.Time       `                                                 json:"created_at"`
	UpdatedAt  *time.Time      `gorm:"autoUpdateTime:false"                      json:"updated_at"`
}

func All() []any {
	return []any{&User{}, &Credential{}, &Document{}, &IngestionJob{}}
}
