package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/obsidianatelier/storefront/internal/logging"
	"github.com/obsidianatelier/storefront/internal/search"
	"github.com/obsidianatelier/storefront/internal/util"
)

type SearchHTTP struct {
	Index *search.ESIndex
}

func (h *SearchHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "search.products")

	if h.Index == nil {
		l.Warn("search_error", "status", 503, "reason", "search backend not configured")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not available")
	}

	query := c.QueryParam("q")
	if query == "" {
		l.Warn("search_error", "status", 400, "reason", "q is required")
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, docs, err := h.Index.Search(ctx, query, offset, limit)
	if err != nil {
		l.Error("search_error", "status", 500, "reason", "search backend failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": docs,
		"meta": map[string]any{
			"page":  page,
			"size":  limit,
			"total": total,
		},
	})
}
