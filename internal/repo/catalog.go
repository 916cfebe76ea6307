package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/obsidianatelier/storefront/internal/models"
)

func (r *GormRepo) preloadProduct(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.preloadProduct(r.DB.WithContext(ctx)).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.preloadProduct(r.DB.WithContext(ctx)).Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	if err := r.preloadProduct(r.DB.WithContext(ctx)).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.DB.WithContext(ctx).Create(product).Error
}

// ReplaceProduct overwrites the stored product with the given state. Images
// and variants are replaced wholesale, never merged.
func (r *GormRepo) ReplaceProduct(ctx context.Context, id uuid.UUID, product *models.Product) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Product
		if err := tx.Where("id = ?", id).First(&existing).Error; err != nil {
			return err
		}

		updates := map[string]any{
			"name":              product.Name,
			"slug":              product.Slug,
			"description":       product.Description,
			"description_image": product.DescriptionImage,
			"price":             product.Price,
			"before_price":      product.BeforePrice,
			"category":          product.Category,
		}
		if err := tx.Model(&models.Product{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Variant{}).Error; err != nil {
			return err
		}

		for i := range product.Images {
			product.Images[i].ProductID = id
			if err := tx.Create(&product.Images[i]).Error; err != nil {
				return err
			}
		}
		for i := range product.Variants {
			product.Variants[i].ProductID = id
			if err := tx.Create(&product.Variants[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Variant{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormRepo) GetInventory(ctx context.Context, productID uuid.UUID) ([]models.Variant, error) {
	var variants []models.Variant
	if err := r.DB.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id ASC").
		Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}
