package repo

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Gigatchad/e-learning/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	// every pooled connection would otherwise see its own empty :memory: db
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Course{}, &models.Lesson{}, &models.Enrollment{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()

	u := &models.User{
		UUID:         uuid.New(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$2a$12$notarealhash",
		Role:         role,
		Active:       true,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}

func seedCourse(t *testing.T, db *gorm.DB, instructorID uint) *models.Course {
	t.Helper()

	c := &models.Course{
		UUID:         uuid.New(),
		Title:        "Intro to Testing",
		InstructorID: instructorID,
		Published:    true,
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("failed to seed course: %v", err)
	}
	return c
}
