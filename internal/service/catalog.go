package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/obsidianatelier/storefront/internal/events"
	"github.com/obsidianatelier/storefront/internal/logging"
	"github.com/obsidianatelier/storefront/internal/models"
	"github.com/obsidianatelier/storefront/internal/repo"
	"github.com/obsidianatelier/storefront/internal/search"
	"github.com/obsidianatelier/storefront/internal/transport"
)

type CatalogService struct {
	Repo     *repo.GormRepo
	Indexer  search.Indexer
	Producer events.Publisher
}

// DeriveSlug lower-cases the name and collapses whitespace runs into single
// hyphens. Uniqueness is the storage layer's business, not checked here.
func DeriveSlug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.Repo.GetProduct(ctx, id)
}

func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return s.Repo.GetProductBySlug(ctx, slug)
}

func (s *CatalogService) ListProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.ListProducts(ctx, offset, limit)
}

func (s *CatalogService) GetInventory(ctx context.Context, productID uuid.UUID) ([]models.Variant, error) {
	return s.Repo.GetInventory(ctx, productID)
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.SaveProductRequest) (*models.Product, error) {
	product, err := assembleProduct(req)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.CreateProduct(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: slug %q already in use", ErrConflict, product.Slug)
		}
		return nil, err
	}

	s.afterWrite(ctx, product, "product_created")
	return product, nil
}

// UpdateProduct applies the editor's full desired state: scalar fields plus
// wholesale replacement of images and variants.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req transport.SaveProductRequest) (*models.Product, error) {
	product, err := assembleProduct(req)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.ReplaceProduct(ctx, id, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: slug %q already in use", ErrConflict, product.Slug)
		}
		return nil, err
	}

	stored, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, stored, "product_updated")
	return stored, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	l := logging.FromContext(ctx)
	if s.Indexer != nil {
		if err := s.Indexer.DeleteProduct(ctx, id.String()); err != nil {
			l.Warn("search_deindex_failed", "product_id", id, "error", err)
		}
	}
	if s.Producer != nil {
		event := map[string]any{"type": "product_deleted", "product_id": id.String()}
		if err := s.Producer.Publish(ctx, events.TopicCatalog, id.String(), event); err != nil {
			l.Warn("event_publish_failed", "product_id", id, "error", err)
		}
	}
	return nil
}

// afterWrite re-indexes and publishes. Both are best effort; catalog writes
// never roll back over them.
func (s *CatalogService) afterWrite(ctx context.Context, product *models.Product, eventType string) {
	l := logging.FromContext(ctx)
	if s.Indexer != nil {
		if err := s.Indexer.IndexProduct(ctx, product); err != nil {
			l.Warn("search_index_failed", "product_id", product.ID, "error", err)
		}
	}
	if s.Producer != nil {
		event := map[string]any{
			"type":       eventType,
			"product_id": product.ID.String(),
			"name":       product.Name,
			"slug":       product.Slug,
		}
		if err := s.Producer.Publish(ctx, events.TopicCatalog, product.ID.String(), event); err != nil {
			l.Warn("event_publish_failed", "product_id", product.ID, "error", err)
		}
	}
}

func assembleProduct(req transport.SaveProductRequest) (*models.Product, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if req.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if req.BeforePrice != nil && *req.BeforePrice < req.Price {
		return nil, fmt.Errorf("%w: before_price must not undercut price", ErrValidation)
	}

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = DeriveSlug(req.Name)
	}

	seen := make(map[[2]string]struct{}, len(req.Inventory))
	variants := make([]models.Variant, 0, len(req.Inventory))
	for _, v := range req.Inventory {
		if strings.TrimSpace(v.Size) == "" {
			return nil, fmt.Errorf("%w: variant size is required", ErrValidation)
		}
		if v.Stock < 0 {
			return nil, fmt.Errorf("%w: variant stock must not be negative", ErrValidation)
		}
		key := [2]string{v.Size, v.Color}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate variant (%s, %s)", ErrValidation, v.Size, v.Color)
		}
		seen[key] = struct{}{}
		variants = append(variants, models.Variant{Size: v.Size, Color: v.Color, Stock: v.Stock})
	}

	images := make([]models.ProductImage, 0, len(req.Images))
	for i, key := range req.Images {
		if key == "" {
			continue
		}
		images = append(images, models.ProductImage{Key: key, Position: i})
	}

	return &models.Product{
		Name:             req.Name,
		Slug:             slug,
		Description:      req.Description,
		DescriptionImage: req.DescriptionImage,
		Price:            req.Price,
		BeforePrice:      req.BeforePrice,
		Category:         req.Category,
		Images:           images,
		Variants:         variants,
	}, nil
}
