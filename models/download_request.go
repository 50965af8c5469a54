package models

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the lifecycle state of a DownloadRequest.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// Terminal reports whether no further transition is permitted from s.
func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Valid reports whether s is one of the known statuses.
func (s RequestStatus) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// DownloadRequest represents one user's ask to obtain a project archive.
// It starts pending and is moved by an admin to approved or rejected,
// both of which are terminal. Re-requesting means a new row, never a
// reset of an old one.
type DownloadRequest struct {
	ID        uuid.UUID     `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	UserID    uuid.UUID     `json:"user_id" db:"user_id" gorm:"type:uuid;not null;index:idx_download_user;constraint:OnDelete:CASCADE"`
	ProjectID uuid.UUID     `json:"project_id" db:"project_id" gorm:"type:uuid;not null;index:idx_download_project;constraint:OnDelete:CASCADE"`
	Status    RequestStatus `json:"status" db:"status" gorm:"type:text;not null;default:pending"`
	CreatedAt time.Time     `json:"created_at" db:"created_at" gorm:"autoCreateTime"`

	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Project *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
}
