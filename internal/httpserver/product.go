package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/obsidianatelier/storefront/internal/logging"
	"github.com/obsidianatelier/storefront/internal/models"
	"github.com/obsidianatelier/storefront/internal/service"
	"github.com/obsidianatelier/storefront/internal/storage"
	"github.com/obsidianatelier/storefront/internal/transport"
	"github.com/obsidianatelier/storefront/internal/util"
)

type ProductHTTP struct {
	Svc   *service.CatalogService
	Store storage.ObjectStore
}

// productView is a product plus its gallery resolved to fetchable URLs.
type productView struct {
	*models.Product
	ImageURLs []string `json:"image_urls,omitempty"`
}

func (h *ProductHTTP) view(c echo.Context, p *models.Product) productView {
	ctx := c.Request().Context()
	urls := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		url, err := h.Store.PresignGet(ctx, img.Key)
		if err != nil {
			continue
		}
		urls = append(urls, url)
	}
	return productView{Product: p, ImageURLs: urls}
}

func (h *ProductHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.ListProducts(ctx, offset, limit)
	if err != nil {
		l.Error("get_products_error", "status", 500, "reason", "cannot list products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list products")
	}

	views := make([]productView, len(items))
	for i := range items {
		views[i] = h.view(c, &items[i])
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": views,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("get_product_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("get_product_error", "status", 404, "reason", "product not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("get_product_error", "status", 500, "reason", "cannot get product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get product")
	}

	return c.JSON(http.StatusOK, h.view(c, product))
}

func (h *ProductHTTP) GetProductBySlug(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_by_slug")

	product, err := h.Svc.GetProductBySlug(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("get_by_slug_error", "status", 404, "reason", "product not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("get_by_slug_error", "status", 500, "reason", "cannot get product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get product")
	}

	return c.JSON(http.StatusOK, h.view(c, product))
}

// GetInventory returns the variant list together with the selector's view of
// it: in-stock colors, in-stock sizes for the selected color, and the
// normalized selection.
func (h *ProductHTTP) GetInventory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_inventory")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("get_inventory_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	variants, err := h.Svc.GetInventory(ctx, id)
	if err != nil {
		l.Error("get_inventory_error", "status", 500, "reason", "cannot get inventory", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get inventory")
	}

	color, size := service.NormalizeSelection(variants, c.QueryParam("color"), c.QueryParam("size"))

	type variantView struct {
		models.Variant
		StockLabel string `json:"stock_label"`
	}
	views := make([]variantView, len(variants))
	for i, v := range variants {
		views[i] = variantView{Variant: v, StockLabel: service.StockLabel(v.Stock)}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"variants":       views,
		"colors":         service.AvailableColors(variants),
		"sizes":          service.AvailableSizes(variants, color),
		"selected_color": color,
		"selected_size":  size,
	})
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.SaveProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrConflict):
			l.Warn("product_create_error", "status", 409, "reason", "slug already in use", "error", err)
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			l.Error("product_create_error", "status", 500, "reason", "cannot save product", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot save product")
		}
	}

	l.Info("product_create_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, h.view(c, product))
}

func (h *ProductHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	var req transport.SaveProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.UpdateProduct(ctx, id, req)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			l.Warn("product_update_error", "status", 404, "reason", "product not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		case errors.Is(err, service.ErrValidation):
			l.Warn("product_update_error", "status", 400, "reason", "invalid body", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrConflict):
			l.Warn("product_update_error", "status", 409, "reason", "slug already in use", "error", err)
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			l.Error("product_update_error", "status", 500, "reason", "cannot save product", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot save product")
		}
	}

	l.Info("product_update_success", "product_id", product.ID)
	return c.JSON(http.StatusOK, h.view(c, product))
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("product_delete_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("product_delete_error", "status", 404, "reason", "product not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("product_delete_error", "status", 500, "reason", "cannot delete product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete product")
	}

	l.Info("product_delete_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}
