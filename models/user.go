package models

import (
	"time"

	"github.com/google/uuid"
)

// Role distinguishes regular visitors from the site owner.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents an account created on first Google sign-in
type User struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Email     string    `json:"email" db:"email" gorm:"type:text;not null;unique"`
	Name      string    `json:"name" db:"name" gorm:"type:text;not null"`
	AvatarURL string    `json:"avatar_url,omitempty" db:"avatar_url" gorm:"type:text"`
	Role      Role      `json:"role" db:"role" gorm:"type:text;not null;default:user"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
}
