package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/obsidianatelier/storefront/internal/checkout"
	"github.com/obsidianatelier/storefront/internal/logging"
	"github.com/obsidianatelier/storefront/internal/middleware/auth"
	"github.com/obsidianatelier/storefront/internal/service"
	"github.com/obsidianatelier/storefront/internal/transport"
)

type CheckoutHTTP struct {
	Checkout checkout.Service
	Catalog  *service.CatalogService
	Cart     *service.CartService
	Orders   *service.OrderService
}

// CreateSession starts a buy-now checkout for a single product.
func (h *CheckoutHTTP) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.create_session")

	var req transport.CheckoutSessionRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_session_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Size == "" {
		l.Warn("checkout_session_error", "status", 400, "reason", "size is required")
		return echo.NewHTTPError(http.StatusBadRequest, "size is required")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, err := h.Catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		l.Warn("checkout_session_error", "status", 404, "reason", "product not found", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	image := ""
	if len(product.Images) > 0 {
		image = product.Images[0].Key
	}
	items := []checkout.LineItem{{
		Name:      product.Name,
		Size:      req.Size,
		Color:     req.Color,
		UnitPrice: product.Price,
		Quantity:  req.Quantity,
		Image:     image,
	}}

	url, err := h.Checkout.CreateSession(ctx, items, "")
	if err != nil {
		l.Error("checkout_session_error", "status", 502, "reason", "processor rejected session", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "cannot start checkout")
	}

	l.Info("checkout_session_success", "product_id", product.ID)
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

// CreateCartSession starts a checkout covering the signed-in user's cart.
func (h *CheckoutHTTP) CreateCartSession(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.create_cart_session")

	userID, err := auth.UserID(c)
	if err != nil {
		l.Warn("checkout_cart_session_error", "status", 401, "reason", "missing user", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cartItems, _, err := h.Cart.Get(ctx, userID)
	if err != nil {
		l.Error("checkout_cart_session_error", "status", 500, "reason", "cannot load cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load cart")
	}
	if len(cartItems) == 0 {
		l.Warn("checkout_cart_session_error", "status", 400, "reason", "cart is empty")
		return echo.NewHTTPError(http.StatusBadRequest, "cart is empty")
	}

	items := make([]checkout.LineItem, len(cartItems))
	for i, ci := range cartItems {
		items[i] = checkout.LineItem{
			Name:      ci.Name,
			Size:      ci.Size,
			Color:     ci.Color,
			UnitPrice: ci.Price,
			Quantity:  ci.Quantity,
			Image:     ci.Image,
		}
	}

	url, err := h.Checkout.CreateSession(ctx, items, userID.String())
	if err != nil {
		l.Error("checkout_cart_session_error", "status", 502, "reason", "processor rejected session", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "cannot start checkout")
	}

	l.Info("checkout_cart_session_success", "items", len(items))
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

// Webhook receives the processor's completion callback and records the order.
func (h *CheckoutHTTP) Webhook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.webhook")

	var event checkout.WebhookEvent
	if err := c.Bind(&event); err != nil {
		l.Warn("checkout_webhook_error", "status", 400, "reason", "invalid payload", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if event.Type != checkout.EventSessionCompleted {
		l.Info("checkout_webhook_ignored", "event_type", event.Type)
		return c.NoContent(http.StatusNoContent)
	}

	order, err := h.Orders.CreateFromCheckout(ctx, event.Data)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("checkout_webhook_error", "status", 400, "reason", "invalid session payload", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("checkout_webhook_error", "status", 500, "reason", "cannot record order", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot record order")
	}

	l.Info("checkout_webhook_success", "order_id", order.ID, "total", order.Total)
	return c.JSON(http.StatusCreated, map[string]string{"order_id": order.ID.String()})
}
