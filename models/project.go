package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Project represents a portfolio entry with a downloadable archive
type Project struct {
	ID            uuid.UUID      `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Title         string         `json:"title" db:"title" gorm:"type:text;not null;unique"`
	Description   string         `json:"description" db:"description" gorm:"type:text;not null"`
	Tags          pq.StringArray `json:"tags" db:"tags" gorm:"type:text[]"`
	Type          pq.StringArray `json:"type" db:"type" gorm:"type:text[]"`
	Language      pq.StringArray `json:"language" db:"language" gorm:"type:text[]"`
	Sort          string         `json:"sort" db:"sort" gorm:"type:text;not null;default:'Last updated'"`
	FileKey       string         `json:"file_key" db:"file_key" gorm:"type:text;not null"`
	ImageKey      *string        `json:"image_key,omitempty" db:"image_key" gorm:"type:text"`
	DownloadCount int64          `json:"download_count" db:"download_count" gorm:"not null;default:0"`
	AdminID       uuid.UUID      `json:"admin_id" db:"admin_id" gorm:"type:uuid;not null"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at" gorm:"autoCreateTime"`

	Admin *User `json:"admin,omitempty" gorm:"foreignKey:AdminID;references:ID"`
}
