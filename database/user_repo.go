package database

import (
	"github.com/google/uuid"

	"github.com/assyifaul/portfolio-backend/models"
	"gorm.io/gorm"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db}
}

// FindAll returns all users from the database
func (r *UserRepo) FindAll() ([]*models.User, error) {
	var users []*models.User
	err := r.db.Find(&users).Error
	return users, err
}

// FindByID returns a user by its ID, or nil when no row exists
func (r *UserRepo) FindByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "id = ?", id).Error
	if err != nil {
		if isRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail returns a user by email, or nil when no row exists
func (r *UserRepo) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "email = ?", email).Error
	if err != nil {
		if isRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Upsert creates the user on first sign-in or refreshes the profile fields
// the identity provider owns (name, avatar). Email and role are never
// overwritten by a sign-in.
func (r *UserRepo) Upsert(user *models.User) error {
	existing, err := r.FindByEmail(user.Email)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.db.Create(user).Error
	}

	err = r.db.Model(existing).Updates(map[string]interface{}{
		"name":       user.Name,
		"avatar_url": user.AvatarURL,
	}).Error
	if err != nil {
		return err
	}
	*user = *existing
	return nil
}

// UpdateRole sets the role of an existing user
func (r *UserRepo) UpdateRole(id uuid.UUID, role models.Role) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("role", role).Error
}

// Delete removes a user from the database by id; dependent rows cascade
func (r *UserRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.User{}, "id = ?", id).Error
}
