package models

import (
	"time"

	"github.com/google/uuid"
)

// Follow records a social-follow signal a user reported for a platform.
// It is informational only; nothing in the download workflow keys off it.
type Follow struct {
	ID         uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	UserID     uuid.UUID `json:"user_id" db:"user_id" gorm:"type:uuid;not null;index:idx_follow_user;constraint:OnDelete:CASCADE"`
	Platform   string    `json:"platform" db:"platform" gorm:"type:text;not null"`
	IsFollowed bool      `json:"is_followed" db:"is_followed" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}
