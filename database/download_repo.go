package database

import (
	"github.com/google/uuid"

	"github.com/assyifaul/portfolio-backend/errs"
	"github.com/assyifaul/portfolio-backend/models"
	"gorm.io/gorm"
)

type DownloadRepo struct {
	db *gorm.DB
}

func NewDownloadRepo(db *gorm.DB) *DownloadRepo {
	return &DownloadRepo{db}
}

// DownloadFilter narrows a listing. Nil fields are ignored. SortByCreated
// asks for chronological order; otherwise rows come back in whatever order
// the store yields them.
type DownloadFilter struct {
	UserID        *uuid.UUID
	Status        *models.RequestStatus
	SortByCreated bool
}

// Find returns download requests matching the filter, enriched with their
// user and project rows.
func (r *DownloadRepo) Find(filter DownloadFilter) ([]*models.DownloadRequest, error) {
	query := r.db.Preload("User").Preload("Project")
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.SortByCreated {
		query = query.Order("created_at ASC")
	}

	var requests []*models.DownloadRequest
	err := query.Find(&requests).Error
	return requests, err
}

// FindByID returns a download request by its ID with user and project
// preloaded, or nil when no row exists
func (r *DownloadRepo) FindByID(id uuid.UUID) (*models.DownloadRequest, error) {
	var request models.DownloadRequest
	err := r.db.Preload("User").Preload("Project").First(&request, "id = ?", id).Error
	if err != nil {
		if isRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// Add inserts a new download request into the database
func (r *DownloadRepo) Add(request *models.DownloadRequest) error {
	return r.db.Create(request).Error
}

// Approve flips the request to approved and bumps the project's download
// counter in one transaction. The status update is conditional on the row
// still being pending, so racing approvals produce exactly one winner and
// exactly one increment. Returns false when the guard did not match.
func (r *DownloadRepo) Approve(id, projectID uuid.UUID) (bool, error) {
	applied := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.DownloadRequest{}).
			Where("id = ? AND status = ?", id, models.StatusPending).
			Update("status", models.StatusApproved)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true
		return tx.Model(&models.Project{}).
			Where("id = ?", projectID).
			UpdateColumn("download_count", gorm.Expr("download_count + ?", 1)).Error
	})
	if err != nil {
		applied = false
		if isTransient(err) {
			return false, errs.NewTransientStoreError("approve download request", err)
		}
		return false, err
	}
	return applied, nil
}

// Reject flips the request to rejected, conditional on it still being
// pending. No counter side effect. Returns false when the guard did not
// match.
func (r *DownloadRepo) Reject(id uuid.UUID) (bool, error) {
	res := r.db.Model(&models.DownloadRequest{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Update("status", models.StatusRejected)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete hard-deletes a download request by id. The project counter is left
// untouched regardless of the request's status.
func (r *DownloadRepo) Delete(id uuid.UUID) (bool, error) {
	res := r.db.Delete(&models.DownloadRequest{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
