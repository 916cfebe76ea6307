package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/obsidianatelier/storefront/internal/checkout"
	"github.com/obsidianatelier/storefront/internal/models"
	"github.com/obsidianatelier/storefront/internal/transport"
)

func completedSession() checkout.WebhookSession {
	return checkout.WebhookSession{
		GuestEmail: "shopper@example.com",
		Total:      840,
		Items: []checkout.WebhookItem{
			{Name: "Midnight Coat", Size: "M", Quantity: 2},
		},
		Shipping: map[string]string{
			"name":        "A Shopper",
			"line1":       "1 High Street",
			"city":        "London",
			"postal_code": "N1 9GU",
			"country":     "GB",
		},
	}
}

func TestOrderService_CreateFromCheckout_Guest(t *testing.T) {
	t.Parallel()

	producer := &memPublisher{}
	svc := &OrderService{Repo: newTestRepo(t), Producer: producer}
	ctx := context.Background()

	order, err := svc.CreateFromCheckout(ctx, completedSession())
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Nil(t, order.UserID)
	assert.Equal(t, "shopper@example.com", order.GuestEmail)
	assert.Equal(t, "London", order.Shipping.City)
	require.Len(t, order.Items, 1)
	assert.EqualValues(t, 2, order.Items[0].Quantity)

	assert.Equal(t, []string{"order_created"}, producer.types())

	stored, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Total, stored.Total)
	require.Len(t, stored.Items, 1)
}

func TestOrderService_CreateFromCheckout_ClearsSignedInCart(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	cart := &CartService{Repo: r}
	catalog := &CatalogService{Repo: r}
	svc := &OrderService{Repo: r, Cart: cart}
	ctx := context.Background()
	userID := uuid.New()

	product, err := catalog.CreateProduct(ctx, validSaveRequest())
	require.NoError(t, err)
	_, err = cart.Add(ctx, userID, transport.AddCartItemRequest{ProductID: product.ID, Size: "M", Color: "Black", Quantity: 2})
	require.NoError(t, err)

	session := completedSession()
	session.GuestEmail = ""
	session.UserID = userID.String()

	order, err := svc.CreateFromCheckout(ctx, session)
	require.NoError(t, err)
	require.NotNil(t, order.UserID)
	assert.Equal(t, userID, *order.UserID)

	items, _, err := cart.Get(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestOrderService_CreateFromCheckout_Validation(t *testing.T) {
	t.Parallel()

	svc := &OrderService{Repo: newTestRepo(t)}
	ctx := context.Background()

	session := completedSession()
	session.Items = nil
	_, err := svc.CreateFromCheckout(ctx, session)
	assert.ErrorIs(t, err, ErrValidation)

	session = completedSession()
	session.Items[0].Quantity = 0
	_, err = svc.CreateFromCheckout(ctx, session)
	assert.ErrorIs(t, err, ErrValidation)

	session = completedSession()
	session.UserID = "not-a-uuid"
	_, err = svc.CreateFromCheckout(ctx, session)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOrderService_SetStatus_AnyDirectionWithinStatusSet(t *testing.T) {
	t.Parallel()

	producer := &memPublisher{}
	svc := &OrderService{Repo: newTestRepo(t), Producer: producer}
	ctx := context.Background()

	order, err := svc.CreateFromCheckout(ctx, completedSession())
	require.NoError(t, err)

	// no transition graph: paid -> delivered -> pending are all accepted
	for _, status := range []string{models.OrderStatusDelivered, models.OrderStatusPending, models.OrderStatusShipped} {
		require.NoError(t, svc.SetStatus(ctx, order.ID, status))

		stored, err := svc.Get(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, status, stored.Status)
	}

	assert.Equal(t,
		[]string{"order_created", "order_status_changed", "order_status_changed", "order_status_changed"},
		producer.types())
}

func TestOrderService_SetStatus_RejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	svc := &OrderService{Repo: newTestRepo(t)}
	ctx := context.Background()

	order, err := svc.CreateFromCheckout(ctx, completedSession())
	require.NoError(t, err)

	err = svc.SetStatus(ctx, order.ID, "refunded")
	assert.ErrorIs(t, err, ErrValidation)

	stored, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, stored.Status)
}

func TestOrderService_SetStatus_UnknownOrder(t *testing.T) {
	t.Parallel()

	svc := &OrderService{Repo: newTestRepo(t)}

	err := svc.SetStatus(context.Background(), uuid.New(), models.OrderStatusShipped)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestOrderService_List_NewestFirst(t *testing.T) {
	t.Parallel()

	svc := &OrderService{Repo: newTestRepo(t)}
	ctx := context.Background()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		order, err := svc.CreateFromCheckout(ctx, completedSession())
		require.NoError(t, err)
		ids = append(ids, order.ID)
		time.Sleep(5 * time.Millisecond)
	}

	total, orders, err := svc.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, orders, 3)
	assert.Equal(t, ids[2], orders[0].ID)
}
