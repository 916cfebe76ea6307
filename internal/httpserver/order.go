package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/obsidianatelier/storefront/internal/logging"
	"github.com/obsidianatelier/storefront/internal/service"
	"github.com/obsidianatelier/storefront/internal/transport"
	"github.com/obsidianatelier/storefront/internal/util"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, orders, err := h.Svc.List(ctx, offset, limit)
	if err != nil {
		l.Error("order_list_error", "status", 500, "reason", "cannot list orders", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list orders")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": orders,
		"meta": map[string]any{
			"page":  page,
			"size":  limit,
			"total": total,
		},
	})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("order_get_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	order, err := h.Svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("order_get_error", "status", 404, "reason", "order not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		l.Error("order_get_error", "status", 500, "reason", "cannot get order", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get order")
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) SetStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.set_status")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("order_set_status_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	var req transport.SetOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("order_set_status_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.SetStatus(ctx, id, req.Status); err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("order_set_status_error", "status", 400, "reason", "unknown status", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			l.Warn("order_set_status_error", "status", 404, "reason", "order not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		default:
			l.Error("order_set_status_error", "status", 500, "reason", "cannot update order", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot update order")
		}
	}

	l.Info("order_set_status_success", "order_id", id, "order_status", req.Status)
	return c.NoContent(http.StatusNoContent)
}
