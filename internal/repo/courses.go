package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Gigatchad/e-learning/internal/models"
)

func (r *GormRepo) CourseByUUID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	var course models.Course
	if err := r.DB.WithContext(ctx).Where("uuid = ?", id).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &course, nil
}

func (r *GormRepo) LessonByID(ctx context.Context, courseID, lessonID uint) (*models.Lesson, error) {
	var lesson models.Lesson
	err := r.DB.WithContext(ctx).
		Where("id = ? AND course_id = ?", lessonID, courseID).
		First(&lesson).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &lesson, nil
}

// IsEnrolled reports whether userID holds an active enrollment on the
// course. Cancelled enrollments (active=false) do not count.
func (r *GormRepo) IsEnrolled(ctx context.Context, userID, courseID uint) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ? AND active = ?", userID, courseID, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// StudentsByCourse pages through the active roster in enrollment order.
func (r *GormRepo) StudentsByCourse(ctx context.Context, courseID uint, offset, limit int) ([]models.User, int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Enrollment{}).
		Where("course_id = ? AND active = ?", courseID, true).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Select("users.*").
		Joins("JOIN enrollments ON enrollments.user_id = users.id").
		Where("enrollments.course_id = ? AND enrollments.active = ?", courseID, true).
		Order("enrollments.created_at ASC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
