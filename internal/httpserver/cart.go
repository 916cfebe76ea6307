package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/obsidianatelier/storefront/internal/logging"
	"github.com/obsidianatelier/storefront/internal/middleware/auth"
	"github.com/obsidianatelier/storefront/internal/service"
	"github.com/obsidianatelier/storefront/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, err := auth.UserID(c)
	if err != nil {
		l.Warn("cart_get_error", "status", 401, "reason", "missing user", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	items, subtotal, err := h.Svc.Get(ctx, userID)
	if err != nil {
		l.Error("cart_get_error", "status", 500, "reason", "cannot load cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load cart")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"items":    items,
		"subtotal": subtotal,
	})
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	userID, err := auth.UserID(c)
	if err != nil {
		l.Warn("cart_add_error", "status", 401, "reason", "missing user", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("cart_add_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.Add(ctx, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("cart_add_error", "status", 400, "reason", "invalid body", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNotFound):
			l.Warn("cart_add_error", "status", 404, "reason", "product not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		default:
			l.Error("cart_add_error", "status", 500, "reason", "cannot add item", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot add item")
		}
	}

	l.Info("cart_add_success", "product_id", item.ProductID, "quantity", item.Quantity)
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_quantity")

	userID, err := auth.UserID(c)
	if err != nil {
		l.Warn("cart_update_error", "status", 401, "reason", "missing user", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.UpdateCartQuantityRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("cart_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.UpdateQuantity(ctx, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("cart_update_error", "status", 400, "reason", "invalid body", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNotFound):
			l.Warn("cart_update_error", "status", 404, "reason", "item not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		default:
			l.Error("cart_update_error", "status", 500, "reason", "cannot update item", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot update item")
		}
	}

	if item == nil {
		// quantity dropped to zero, the line is gone
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	userID, err := auth.UserID(c)
	if err != nil {
		l.Warn("cart_remove_error", "status", 401, "reason", "missing user", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	productID, err := uuid.Parse(c.QueryParam("product_id"))
	if err != nil {
		l.Warn("cart_remove_error", "status", 400, "reason", "product_id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "product_id is not a uuid")
	}

	if err := h.Svc.Remove(ctx, userID, productID, c.QueryParam("size"), c.QueryParam("color")); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("cart_remove_error", "status", 404, "reason", "item not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		l.Error("cart_remove_error", "status", 500, "reason", "cannot remove item", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot remove item")
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	userID, err := auth.UserID(c)
	if err != nil {
		l.Warn("cart_clear_error", "status", 401, "reason", "missing user", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := h.Svc.Clear(ctx, userID); err != nil {
		l.Error("cart_clear_error", "status", 500, "reason", "cannot clear cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot clear cart")
	}

	return c.NoContent(http.StatusNoContent)
}
