package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/obsidianatelier/storefront/internal/logging"
	"github.com/obsidianatelier/storefront/internal/storage"
)

type UploadHTTP struct {
	Store storage.ObjectStore
}

var uploadExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// PresignUpload hands the admin editor a direct-to-bucket upload URL so
// product imagery never streams through the API server.
func (h *UploadHTTP) PresignUpload(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "uploads.presign")

	var req struct {
		ContentType string `json:"content_type"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("presign_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ext, ok := uploadExtensions[req.ContentType]
	if !ok {
		l.Warn("presign_error", "status", 400, "reason", "unsupported content type", "content_type", req.ContentType)
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported content type")
	}

	key := "products/" + uuid.NewString() + ext
	url, err := h.Store.PresignPut(ctx, key, req.ContentType)
	if err != nil {
		l.Error("presign_error", "status", 500, "reason", "cannot presign upload", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot presign upload")
	}

	l.Info("presign_success", "key", key)
	return c.JSON(http.StatusOK, map[string]string{
		"key":        key,
		"upload_url": url,
	})
}
