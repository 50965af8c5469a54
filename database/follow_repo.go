package database

import (
	"github.com/google/uuid"

	"github.com/assyifaul/portfolio-backend/models"
	"gorm.io/gorm"
)

type FollowRepo struct {
	db *gorm.DB
}

func NewFollowRepo(db *gorm.DB) *FollowRepo {
	return &FollowRepo{db}
}

// FindAll returns all follow records with their users preloaded
func (r *FollowRepo) FindAll() ([]*models.Follow, error) {
	var follows []*models.Follow
	err := r.db.Preload("User").Find(&follows).Error
	return follows, err
}

// FindByUser returns the follow records of a single user
func (r *FollowRepo) FindByUser(userID uuid.UUID) ([]*models.Follow, error) {
	var follows []*models.Follow
	err := r.db.Where("user_id = ?", userID).Find(&follows).Error
	return follows, err
}

// FindByID returns a follow record by its ID, or nil when no row exists
func (r *FollowRepo) FindByID(id uuid.UUID) (*models.Follow, error) {
	var follow models.Follow
	err := r.db.First(&follow, "id = ?", id).Error
	if err != nil {
		if isRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &follow, nil
}

// Add inserts a new follow record into the database
func (r *FollowRepo) Add(follow *models.Follow) error {
	return r.db.Create(follow).Error
}

// Update updates an existing follow record
func (r *FollowRepo) Update(follow *models.Follow) error {
	return r.db.Save(follow).Error
}

// Delete removes a follow record by id
func (r *FollowRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Follow{}, "id = ?", id).Error
}
