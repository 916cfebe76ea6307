package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/obsidianatelier/storefront/internal/models"
)

func (r *GormRepo) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureUser returns the user for the email, creating one with the given
// role on first sign-in. An existing user is promoted when role is admin.
func (r *GormRepo) EnsureUser(ctx context.Context, email, role string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", email).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = models.User{Email: email, Role: role}
			return tx.Create(&user).Error
		}
		if err != nil {
			return err
		}
		if role == "admin" && user.Role != "admin" {
			user.Role = "admin"
			return tx.Model(&user).Update("role", "admin").Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) CreateLoginCode(ctx context.Context, code *models.LoginCode) error {
	return r.DB.WithContext(ctx).Create(code).Error
}

func (r *GormRepo) LatestLoginCode(ctx context.Context, email string, now time.Time) (*models.LoginCode, error) {
	var code models.LoginCode
	if err := r.DB.WithContext(ctx).
		Where("email = ? AND consumed = ? AND expires_at > ?", email, false, now).
		Order("created_at DESC").
		First(&code).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *GormRepo) ConsumeLoginCode(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).
		Model(&models.LoginCode{}).
		Where("id = ? AND consumed = ?", id, false).
		Update("consumed", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
