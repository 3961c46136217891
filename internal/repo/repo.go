package repo

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is the neutral miss. Callers decide what a miss means in
// their flow: bad credentials on login, a gone user on token checks, a
// 404 on resource lookups.
var ErrNotFound = errors.New("record not found")

type GormRepo struct {
	DB *gorm.DB
}

func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}
