package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/obsidianatelier/storefront/internal/models"
)

func (r *GormRepo) GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddToCart merges the item into the cart: a line with the same
// (product, size, color) identity takes the quantity increment, otherwise a
// new line is created.
func (r *GormRepo) AddToCart(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ? AND size = ? AND color = ?",
				item.UserID, item.ProductID, item.Size, item.Color).
			Update("quantity", gorm.Expr("quantity + ?", item.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Where("user_id = ? AND product_id = ? AND size = ? AND color = ?",
				item.UserID, item.ProductID, item.Size, item.Color).First(item).Error
		}
		return tx.Create(item).Error
	})
}

// SetQuantity overwrites a line's quantity. Callers pass quantity >= 1; a
// zero quantity is handled by the service as a removal.
func (r *GormRepo) SetQuantity(ctx context.Context, userID, productID uuid.UUID, size, color string, quantity uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ? AND size = ? AND color = ?",
				userID, productID, size, color).
			Update("quantity", quantity)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("user_id = ? AND product_id = ? AND size = ? AND color = ?",
			userID, productID, size, color).First(&item).Error
	}); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) RemoveFromCart(ctx context.Context, userID, productID uuid.UUID, size, color string) error {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND size = ? AND color = ?",
			userID, productID, size, color).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
