package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID         uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	Name         string    `gorm:"not null"                 json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         Role      `gorm:"not null;default:student" json:"role"`
	Active       bool      `gorm:"not null;default:true"    json:"active"`
	RefreshToken *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserView is the subset of User that may leave the service.
type UserView struct {
	UUID   uuid.UUID `json:"uuid"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
	Active bool      `json:"active"`
}

func (u *User) View() UserView {
	return UserView{
		UUID:   u.UUID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Active: u.Active,
	}
}

type Course struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID         uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	Title        string    `gorm:"not null"                 json:"title"`
	InstructorID uint      `gorm:"index;not null"           json:"instructor_id"`
	Published    bool      `gorm:"not null;default:false"   json:"published"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Lesson struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	CourseID    uint   `gorm:"index;not null"           json:"course_id"`
	Title       string `gorm:"not null"                 json:"title"`
	VideoURL    string `gorm:"not null"                 json:"video_url"`
	FreePreview bool   `gorm:"not null;default:false"   json:"free_preview"`
	Position    int    `gorm:"not null;default:0"       json:"position"`
}

type Enrollment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"user_id"`
	CourseID  uint      `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"course_id"`
	Active    bool      `gorm:"not null;default:true"    json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
