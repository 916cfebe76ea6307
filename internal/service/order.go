package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/obsidianatelier/storefront/internal/checkout"
	"github.com/obsidianatelier/storefront/internal/events"
	"github.com/obsidianatelier/storefront/internal/logging"
	"github.com/obsidianatelier/storefront/internal/models"
	"github.com/obsidianatelier/storefront/internal/repo"
)

type OrderService struct {
	Repo     *repo.GormRepo
	Cart     *CartService
	Producer events.Publisher
}

func (s *OrderService) List(ctx context.Context, offset, limit int) (int64, []models.Order, error) {
	return s.Repo.ListOrders(ctx, offset, limit)
}

func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.Repo.GetOrder(ctx, id)
}

// SetStatus overwrites an order's status. Membership in the status set is
// the only check: any order may be moved to any status, in any direction.
func (s *OrderService) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !models.ValidOrderStatus(status) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	if err := s.Repo.SetOrderStatus(ctx, id, status); err != nil {
		return err
	}

	if s.Producer != nil {
		event := map[string]any{
			"type":     "order_status_changed",
			"order_id": id.String(),
			"status":   status,
		}
		if err := s.Producer.Publish(ctx, events.TopicOrder, id.String(), event); err != nil {
			logging.FromContext(ctx).Warn("event_publish_failed", "order_id", id, "error", err)
		}
	}
	return nil
}

// CreateFromCheckout ingests the processor's session-completed callback:
// the order lands as paid with item and address snapshots, and a signed-in
// shopper's cart is cleared.
func (s *OrderService) CreateFromCheckout(ctx context.Context, session checkout.WebhookSession) (*models.Order, error) {
	if len(session.Items) == 0 {
		return nil, fmt.Errorf("%w: session has no items", ErrValidation)
	}

	items := make([]models.OrderItem, 0, len(session.Items))
	for _, it := range session.Items {
		if it.Quantity == 0 {
			return nil, fmt.Errorf("%w: item quantity must be positive", ErrValidation)
		}
		items = append(items, models.OrderItem{
			Name:     it.Name,
			Size:     it.Size,
			Quantity: it.Quantity,
		})
	}

	order := &models.Order{
		GuestEmail: session.GuestEmail,
		Total:      session.Total,
		Status:     models.OrderStatusPaid,
		Items:      items,
		Shipping: models.Address{
			Name:       session.Shipping["name"],
			Line1:      session.Shipping["line1"],
			Line2:      session.Shipping["line2"],
			City:       session.Shipping["city"],
			PostalCode: session.Shipping["postal_code"],
			Country:    session.Shipping["country"],
		},
	}

	var userID uuid.UUID
	if session.UserID != "" {
		parsed, err := uuid.Parse(session.UserID)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed user id", ErrValidation)
		}
		userID = parsed
		order.UserID = &userID
	}

	if err := s.Repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	l := logging.FromContext(ctx)
	if order.UserID != nil && s.Cart != nil {
		if err := s.Cart.Clear(ctx, userID); err != nil {
			l.Warn("cart_clear_failed", "user_id", userID, "error", err)
		}
	}

	if s.Producer != nil {
		event := map[string]any{
			"type":     "order_created",
			"order_id": order.ID.String(),
			"status":   order.Status,
			"total":    order.Total,
		}
		if err := s.Producer.Publish(ctx, events.TopicOrder, order.ID.String(), event); err != nil {
			l.Warn("event_publish_failed", "order_id", order.ID, "error", err)
		}
	}
	return order, nil
}
