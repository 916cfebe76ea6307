package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/obsidianatelier/storefront/internal/models"
)

// ErrQuotaExhausted reports that the per-user daily counter is already at
// the allowance.
var ErrQuotaExhausted = errors.New("daily quota exhausted")

// CreateTryOnWithQuota inserts the pending record and consumes one unit of
// the (user, day) quota in the same transaction. The counter update is a
// guarded UPDATE so two concurrent submissions cannot both pass a quota of
// one; the fallback INSERT races resolve on the primary key.
func (r *GormRepo) CreateTryOnWithQuota(ctx context.Context, record *models.TryOn, day string, allowance int) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.TryOnQuota{}).
			Where("user_id = ? AND day = ? AND used < ?", record.UserID, day, allowance).
			Update("used", gorm.Expr("used + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var q models.TryOnQuota
			err := tx.Where("user_id = ? AND day = ?", record.UserID, day).First(&q).Error
			if err == nil {
				return ErrQuotaExhausted
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if allowance < 1 {
				return ErrQuotaExhausted
			}
			if err := tx.Create(&models.TryOnQuota{UserID: record.UserID, Day: day, Used: 1}).Error; err != nil {
				return err
			}
		}

		return tx.Create(record).Error
	})
}

func (r *GormRepo) GetTryOn(ctx context.Context, id uuid.UUID) (*models.TryOn, error) {
	var record models.TryOn
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *GormRepo) ListTryOns(ctx context.Context, userID uuid.UUID) ([]models.TryOn, error) {
	var records []models.TryOn
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *GormRepo) CountTryOnsSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).
		Model(&models.TryOn{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// CompleteTryOn moves a pending record to completed. A record already in a
// terminal status is left untouched.
func (r *GormRepo) CompleteTryOn(ctx context.Context, id uuid.UUID, generatedKey string) error {
	return r.terminalUpdate(ctx, id, map[string]any{
		"status":              models.TryOnStatusCompleted,
		"generated_image_key": generatedKey,
	})
}

// FailTryOn moves a pending record to failed with an error message.
func (r *GormRepo) FailTryOn(ctx context.Context, id uuid.UUID, message string) error {
	return r.terminalUpdate(ctx, id, map[string]any{
		"status": models.TryOnStatusFailed,
		"error":  message,
	})
}

func (r *GormRepo) terminalUpdate(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	res := r.DB.WithContext(ctx).
		Model(&models.TryOn{}).
		Where("id = ? AND status = ?", id, models.TryOnStatusPending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
