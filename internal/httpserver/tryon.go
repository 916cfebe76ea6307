package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/obsidianatelier/storefront/internal/logging"
	"github.com/obsidianatelier/storefront/internal/middleware/auth"
	"github.com/obsidianatelier/storefront/internal/models"
	"github.com/obsidianatelier/storefront/internal/service"
	"github.com/obsidianatelier/storefront/internal/storage"
)

// photos come in straight off a phone camera, so allow a generous body
const maxPhotoBytes = 15 << 20

type TryOnHTTP struct {
	Svc   *service.TryOnService
	Store storage.ObjectStore
}

// tryOnView attaches presigned URLs so the client never sees raw object keys.
type tryOnView struct {
	*models.TryOn
	UserImageURL      string `json:"user_image_url,omitempty"`
	GeneratedImageURL string `json:"generated_image_url,omitempty"`
}

func (h *TryOnHTTP) view(ctx context.Context, record *models.TryOn) tryOnView {
	v := tryOnView{TryOn: record}
	if url, err := h.Store.PresignGet(ctx, record.UserImageKey); err == nil {
		v.UserImageURL = url
	}
	if record.GeneratedImageKey != "" {
		if url, err := h.Store.PresignGet(ctx, record.GeneratedImageKey); err == nil {
			v.GeneratedImageURL = url
		}
	}
	return v
}

func (h *TryOnHTTP) Submit(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tryon.submit")

	userID, err := auth.UserID(c)
	if err != nil {
		l.Warn("tryon_submit_error", "status", 401, "reason", "missing user", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	productID, err := uuid.Parse(c.FormValue("product_id"))
	if err != nil {
		l.Warn("tryon_submit_error", "status", 400, "reason", "product_id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "product_id is not a uuid")
	}

	header, err := c.FormFile("photo")
	if err != nil {
		l.Warn("tryon_submit_error", "status", 400, "reason", "photo is required", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "photo is required")
	}
	if header.Size > maxPhotoBytes {
		l.Warn("tryon_submit_error", "status", 400, "reason", "photo too large", "size", header.Size)
		return echo.NewHTTPError(http.StatusBadRequest, "photo too large")
	}

	file, err := header.Open()
	if err != nil {
		l.Error("tryon_submit_error", "status", 500, "reason", "cannot open upload", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read photo")
	}
	defer file.Close()

	photo, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes+1))
	if err != nil {
		l.Error("tryon_submit_error", "status", 500, "reason", "cannot read upload", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read photo")
	}

	record, err := h.Svc.Submit(ctx, userID, productID, photo)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuotaExceeded):
			l.Warn("tryon_submit_error", "status", 429, "reason", "daily limit reached", "error", err)
			return echo.NewHTTPError(http.StatusTooManyRequests, "daily try-on limit reached")
		case errors.Is(err, service.ErrValidation):
			l.Warn("tryon_submit_error", "status", 400, "reason", "invalid request", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNotFound):
			l.Warn("tryon_submit_error", "status", 404, "reason", "product not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		default:
			l.Error("tryon_submit_error", "status", 500, "reason", "cannot create try-on", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot create try-on")
		}
	}

	// generation outlives the request; detach from the request context but
	// keep the logger so the worker's output carries the request id
	genCtx := logging.IntoContext(context.Background(), logging.FromContext(ctx))
	go func() {
		if err := h.Svc.Generate(genCtx, record.ID); err != nil {
			logging.FromContext(genCtx).Error("tryon_generate_error", "tryon_id", record.ID, "error", err)
		}
	}()

	l.Info("tryon_submit_success", "tryon_id", record.ID, "product_id", productID)
	return c.JSON(http.StatusAccepted, h.view(ctx, record))
}

func (h *TryOnHTTP) GetTryOn(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tryon.get")

	userID, err := auth.UserID(c)
	if err != nil {
		l.Warn("tryon_get_error", "status", 401, "reason", "missing user", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("tryon_get_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	record, err := h.Svc.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("tryon_get_error", "status", 404, "reason", "try-on not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "try-on not found")
		}
		l.Error("tryon_get_error", "status", 500, "reason", "cannot get try-on", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get try-on")
	}

	return c.JSON(http.StatusOK, h.view(ctx, record))
}

func (h *TryOnHTTP) ListTryOns(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tryon.list")

	userID, err := auth.UserID(c)
	if err != nil {
		l.Warn("tryon_list_error", "status", 401, "reason", "missing user", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	records, err := h.Svc.List(ctx, userID)
	if err != nil {
		l.Error("tryon_list_error", "status", 500, "reason", "cannot list try-ons", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list try-ons")
	}

	views := make([]tryOnView, len(records))
	for i := range records {
		views[i] = h.view(ctx, &records[i])
	}
	return c.JSON(http.StatusOK, views)
}

func (h *TryOnHTTP) GetQuota(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tryon.quota")

	userID, err := auth.UserID(c)
	if err != nil {
		l.Warn("tryon_quota_error", "status", 401, "reason", "missing user", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	quota, err := h.Svc.Quota(ctx, userID)
	if err != nil {
		l.Error("tryon_quota_error", "status", 500, "reason", "cannot compute quota", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot compute quota")
	}

	return c.JSON(http.StatusOK, quota)
}
