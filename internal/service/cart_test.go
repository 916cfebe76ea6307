package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsidianatelier/storefront/internal/transport"
)

func newCartEnv(t *testing.T) (*CartService, *CatalogService) {
	t.Helper()
	r := newTestRepo(t)
	return &CartService{Repo: r}, &CatalogService{Repo: r}
}

func TestCartService_Add_MergesByIdentity(t *testing.T) {
	t.Parallel()

	cart, catalog := newCartEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	product, err := catalog.CreateProduct(ctx, validSaveRequest())
	require.NoError(t, err)

	add := transport.AddCartItemRequest{ProductID: product.ID, Size: "M", Color: "Black", Quantity: 1}
	_, err = cart.Add(ctx, userID, add)
	require.NoError(t, err)

	add.Quantity = 2
	_, err = cart.Add(ctx, userID, add)
	require.NoError(t, err)

	items, subtotal, err := cart.Get(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.EqualValues(t, 3, items[0].Quantity)
	assert.Equal(t, product.Price*3, subtotal)
}

func TestCartService_Add_DifferentSizeIsItsOwnLine(t *testing.T) {
	t.Parallel()

	cart, catalog := newCartEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	product, err := catalog.CreateProduct(ctx, validSaveRequest())
	require.NoError(t, err)

	_, err = cart.Add(ctx, userID, transport.AddCartItemRequest{ProductID: product.ID, Size: "M", Color: "Black", Quantity: 1})
	require.NoError(t, err)
	_, err = cart.Add(ctx, userID, transport.AddCartItemRequest{ProductID: product.ID, Size: "M", Color: "Grey", Quantity: 1})
	require.NoError(t, err)

	items, _, err := cart.Get(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCartService_Add_SnapshotsProductFields(t *testing.T) {
	t.Parallel()

	cart, catalog := newCartEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	product, err := catalog.CreateProduct(ctx, validSaveRequest())
	require.NoError(t, err)

	item, err := cart.Add(ctx, userID, transport.AddCartItemRequest{ProductID: product.ID, Size: "M", Color: "Black", Quantity: 1})
	require.NoError(t, err)

	assert.Equal(t, product.Name, item.Name)
	assert.Equal(t, product.Price, item.Price)
	assert.Equal(t, "products/coat-front.jpg", item.Image)
}

func TestCartService_Add_Validation(t *testing.T) {
	t.Parallel()

	cart, catalog := newCartEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	product, err := catalog.CreateProduct(ctx, validSaveRequest())
	require.NoError(t, err)

	_, err = cart.Add(ctx, userID, transport.AddCartItemRequest{Size: "M", Quantity: 1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = cart.Add(ctx, userID, transport.AddCartItemRequest{ProductID: product.ID, Quantity: 1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = cart.Add(ctx, userID, transport.AddCartItemRequest{ProductID: product.ID, Size: "M", Color: "Black"})
	assert.ErrorIs(t, err, ErrValidation)

	// the coat comes in colors, so a colorless add is ambiguous
	_, err = cart.Add(ctx, userID, transport.AddCartItemRequest{ProductID: product.ID, Size: "M", Quantity: 1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = cart.Add(ctx, userID, transport.AddCartItemRequest{ProductID: uuid.New(), Size: "M", Color: "Black", Quantity: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartService_UpdateQuantity(t *testing.T) {
	t.Parallel()

	cart, catalog := newCartEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	product, err := catalog.CreateProduct(ctx, validSaveRequest())
	require.NoError(t, err)

	_, err = cart.Add(ctx, userID, transport.AddCartItemRequest{ProductID: product.ID, Size: "M", Color: "Black", Quantity: 2})
	require.NoError(t, err)

	item, err := cart.UpdateQuantity(ctx, userID, transport.UpdateCartQuantityRequest{ProductID: product.ID, Size: "M", Color: "Black", Quantity: 5})
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.EqualValues(t, 5, item.Quantity)

	_, err = cart.UpdateQuantity(ctx, userID, transport.UpdateCartQuantityRequest{ProductID: product.ID, Size: "L", Color: "Black", Quantity: 5})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartService_UpdateQuantity_ZeroRemovesLine(t *testing.T) {
	t.Parallel()

	cart, catalog := newCartEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	product, err := catalog.CreateProduct(ctx, validSaveRequest())
	require.NoError(t, err)

	_, err = cart.Add(ctx, userID, transport.AddCartItemRequest{ProductID: product.ID, Size: "M", Color: "Black", Quantity: 2})
	require.NoError(t, err)

	item, err := cart.UpdateQuantity(ctx, userID, transport.UpdateCartQuantityRequest{ProductID: product.ID, Size: "M", Color: "Black", Quantity: 0})
	require.NoError(t, err)
	assert.Nil(t, item)

	items, subtotal, err := cart.Get(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, subtotal)
}

func TestCartService_Clear(t *testing.T) {
	t.Parallel()

	cart, catalog := newCartEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	otherID := uuid.New()

	product, err := catalog.CreateProduct(ctx, validSaveRequest())
	require.NoError(t, err)

	for _, uid := range []uuid.UUID{userID, otherID} {
		_, err = cart.Add(ctx, uid, transport.AddCartItemRequest{ProductID: product.ID, Size: "M", Color: "Black", Quantity: 1})
		require.NoError(t, err)
	}

	require.NoError(t, cart.Clear(ctx, userID))

	items, _, err := cart.Get(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)

	// the other shopper's cart is untouched
	items, _, err = cart.Get(ctx, otherID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
