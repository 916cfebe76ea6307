package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/obsidianatelier/storefront/internal/transport"
)

func validSaveRequest() transport.SaveProductRequest {
	return transport.SaveProductRequest{
		Name:        "Midnight Coat",
		Description: "Wool overcoat",
		Price:       420,
		Category:    "outerwear",
		Images:      []string{"products/coat-front.jpg", "products/coat-back.jpg"},
		Inventory: []transport.VariantInput{
			{Size: "M", Color: "Black", Stock: 2},
			{Size: "L", Color: "Black", Stock: 0},
			{Size: "M", Color: "Grey", Stock: 5},
		},
	}
}

func TestDeriveSlug(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "midnight-coat", DeriveSlug("Midnight Coat"))
	assert.Equal(t, "midnight-coat", DeriveSlug("  Midnight\t Coat  "))
	assert.Equal(t, "coat", DeriveSlug("COAT"))
	assert.Equal(t, "", DeriveSlug("   "))
}

func TestCatalogService_CreateProduct(t *testing.T) {
	t.Parallel()

	producer := &memPublisher{}
	indexer := &memIndexer{}
	svc := &CatalogService{Repo: newTestRepo(t), Indexer: indexer, Producer: producer}
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, validSaveRequest())
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, product.ID)

	assert.Equal(t, "midnight-coat", product.Slug)

	stored, err := svc.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, stored.Images, 2)
	assert.Equal(t, "products/coat-front.jpg", stored.Images[0].Key)
	require.Len(t, stored.Variants, 3)
	assert.Equal(t, "M", stored.Variants[0].Size)
	assert.Equal(t, "Black", stored.Variants[0].Color)

	assert.Equal(t, []string{"product_created"}, producer.types())
	assert.Equal(t, []string{product.ID.String()}, indexer.indexed)
}

func TestCatalogService_CreateProduct_Validation(t *testing.T) {
	t.Parallel()

	svc := &CatalogService{Repo: newTestRepo(t)}
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*transport.SaveProductRequest)
	}{
		{"missing name", func(r *transport.SaveProductRequest) { r.Name = " " }},
		{"zero price", func(r *transport.SaveProductRequest) { r.Price = 0 }},
		{"before price below price", func(r *transport.SaveProductRequest) {
			bp := 100.0
			r.BeforePrice = &bp
		}},
		{"variant without size", func(r *transport.SaveProductRequest) {
			r.Inventory = []transport.VariantInput{{Size: "", Color: "Black", Stock: 1}}
		}},
		{"negative stock", func(r *transport.SaveProductRequest) {
			r.Inventory = []transport.VariantInput{{Size: "M", Color: "Black", Stock: -1}}
		}},
		{"duplicate variant", func(r *transport.SaveProductRequest) {
			r.Inventory = []transport.VariantInput{
				{Size: "M", Color: "Black", Stock: 1},
				{Size: "M", Color: "Black", Stock: 4},
			}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validSaveRequest()
			tc.mutate(&req)
			_, err := svc.CreateProduct(ctx, req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCatalogService_CreateProduct_DuplicateSlug(t *testing.T) {
	t.Parallel()

	svc := &CatalogService{Repo: newTestRepo(t)}
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, validSaveRequest())
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, validSaveRequest())
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCatalogService_UpdateProduct_ReplacesInventoryWholesale(t *testing.T) {
	t.Parallel()

	svc := &CatalogService{Repo: newTestRepo(t)}
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, validSaveRequest())
	require.NoError(t, err)

	req := validSaveRequest()
	req.Slug = "midnight-coat"
	req.Images = []string{"products/coat-new.jpg"}
	req.Inventory = []transport.VariantInput{{Size: "S", Color: "", Stock: 0}}

	updated, err := svc.UpdateProduct(ctx, product.ID, req)
	require.NoError(t, err)

	require.Len(t, updated.Variants, 1)
	assert.Equal(t, "S", updated.Variants[0].Size)
	assert.Equal(t, "", updated.Variants[0].Color)
	assert.Equal(t, 0, updated.Variants[0].Stock)

	require.Len(t, updated.Images, 1)
	assert.Equal(t, "products/coat-new.jpg", updated.Images[0].Key)
}

func TestCatalogService_UpdateProduct_NotFound(t *testing.T) {
	t.Parallel()

	svc := &CatalogService{Repo: newTestRepo(t)}

	_, err := svc.UpdateProduct(context.Background(), uuid.New(), validSaveRequest())
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestCatalogService_DeleteProduct(t *testing.T) {
	t.Parallel()

	indexer := &memIndexer{}
	svc := &CatalogService{Repo: newTestRepo(t), Indexer: indexer}
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, validSaveRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, product.ID))
	assert.Equal(t, []string{product.ID.String()}, indexer.deleted)

	_, err = svc.GetProduct(ctx, product.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	err = svc.DeleteProduct(ctx, product.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestCatalogService_ListProducts_Paginates(t *testing.T) {
	t.Parallel()

	svc := &CatalogService{Repo: newTestRepo(t)}
	ctx := context.Background()

	for _, name := range []string{"Coat One", "Coat Two", "Coat Three"} {
		req := validSaveRequest()
		req.Name = name
		req.Slug = DeriveSlug(name)
		_, err := svc.CreateProduct(ctx, req)
		require.NoError(t, err)
	}

	total, items, err := svc.ListProducts(ctx, 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, items, 2)

	total, items, err = svc.ListProducts(ctx, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, items, 1)
}
