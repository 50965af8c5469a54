package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

type Database struct {
	userRepo     *UserRepo
	projectRepo  *ProjectRepo
	downloadRepo *DownloadRepo
	followRepo   *FollowRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		userRepo:     NewUserRepo(db),
		projectRepo:  NewProjectRepo(db),
		downloadRepo: NewDownloadRepo(db),
		followRepo:   NewFollowRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) DownloadRepo() *DownloadRepo {
	return d.downloadRepo
}

func (d Database) FollowRepo() *FollowRepo {
	return d.followRepo
}

// isRecordNotFound reports whether err is gorm's missing-row error.
func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isTransient reports whether err looks like a connection-level failure that
// a conditional retry could recover from, as opposed to a query error.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "bad conn") ||
		strings.Contains(msg, "broken pipe")
}
