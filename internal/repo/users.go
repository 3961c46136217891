package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Gigatchad/e-learning/internal/domain"
	"github.com/Gigatchad/e-learning/internal/models"
)

// CreateUser inserts a new user row. The unique index on email is the
// final guard against duplicate registrations racing past the
// case-insensitive pre-check in the service layer.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

// FindByEmail matches case-insensitively: Alice@x.com and alice@x.com
// are the same account.
func (r *GormRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Where("lower(email) = lower(?)", email).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByUUID resolves the public identifier embedded in token subjects.
func (r *GormRepo) FindByUUID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("uuid = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SetRefreshToken overwrites the stored token unconditionally. Login and
// registration use this: whatever session existed before is superseded.
func (r *GormRepo) SetRefreshToken(ctx context.Context, userID uint, token string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("refresh_token", token).Error
}

// RotateRefreshToken swaps old for new only if old is still the stored
// value. Zero rows affected means another request already rotated (or a
// logout cleared the slot), so the presented token is stale.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, userID uint, oldToken, newToken string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND refresh_token = ?", userID, oldToken).
		Update("refresh_token", newToken)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTokenMismatch
	}
	return nil
}

// ClearRefreshToken nulls the slot. Idempotent: clearing an already
// empty slot is not an error.
func (r *GormRepo) ClearRefreshToken(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("refresh_token", nil).Error
}

// UpdatePassword stores the new hash and clears the refresh token in the
// same statement, so every device has to log in again.
func (r *GormRepo) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"password_hash": passwordHash,
			"refresh_token": nil,
		}).Error
}

// SetActive flips the account flag by public UUID. Deactivation also
// drops the refresh token so the dead account cannot mint new pairs.
func (r *GormRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.User, error) {
	updates := map[string]any{"active": active}
	if !active {
		updates["refresh_token"] = nil
	}
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("uuid = ?", id).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByUUID(ctx, id)
}
