package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/obsidianatelier/storefront/internal/models"
	"github.com/obsidianatelier/storefront/internal/repo"
	"github.com/obsidianatelier/storefront/internal/transport"
)

type CartService struct {
	Repo *repo.GormRepo
}

// Get returns the cart lines and the subtotal, the sum of price x quantity
// over snapshotted prices. Products are not re-fetched.
func (s *CartService) Get(ctx context.Context, userID uuid.UUID) ([]models.CartItem, float64, error) {
	items, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}
	return items, subtotal, nil
}

// Add puts a line into the cart, merging into an existing line with the same
// (product, size, color) identity. Name, price and image are snapshotted from
// the product at add time.
func (s *CartService) Add(ctx context.Context, userID uuid.UUID, req transport.AddCartItemRequest) (*models.CartItem, error) {
	if req.ProductID == uuid.Nil {
		return nil, fmt.Errorf("%w: product_id is required", ErrValidation)
	}
	if req.Size == "" {
		return nil, fmt.Errorf("%w: size is required", ErrValidation)
	}
	if req.Quantity == 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	product, err := s.Repo.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product does not exist", ErrNotFound)
		}
		return nil, err
	}

	if req.Color == "" && HasColorOptions(product.Variants) {
		return nil, fmt.Errorf("%w: color is required for this product", ErrValidation)
	}

	image := ""
	if len(product.Images) > 0 {
		image = product.Images[0].Key
	}

	item := &models.CartItem{
		UserID:    userID,
		ProductID: product.ID,
		Size:      req.Size,
		Color:     req.Color,
		Name:      product.Name,
		Price:     product.Price,
		Image:     image,
		Quantity:  req.Quantity,
	}
	if err := s.Repo.AddToCart(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateQuantity overwrites a line's quantity; anything below one removes
// the line entirely.
func (s *CartService) UpdateQuantity(ctx context.Context, userID uuid.UUID, req transport.UpdateCartQuantityRequest) (*models.CartItem, error) {
	if req.ProductID == uuid.Nil {
		return nil, fmt.Errorf("%w: product_id is required", ErrValidation)
	}
	if req.Size == "" {
		return nil, fmt.Errorf("%w: size is required", ErrValidation)
	}

	if req.Quantity < 1 {
		if err := s.Remove(ctx, userID, req.ProductID, req.Size, req.Color); err != nil {
			return nil, err
		}
		return nil, nil
	}

	item, err := s.Repo.SetQuantity(ctx, userID, req.ProductID, req.Size, req.Color, req.Quantity)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: cart line does not exist", ErrNotFound)
	}
	return item, err
}

func (s *CartService) Remove(ctx context.Context, userID, productID uuid.UUID, size, color string) error {
	err := s.Repo.RemoveFromCart(ctx, userID, productID, size, color)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: cart line does not exist", ErrNotFound)
	}
	return err
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.Repo.ClearCart(ctx, userID)
}
