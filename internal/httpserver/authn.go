package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/obsidianatelier/storefront/internal/logging"
	"github.com/obsidianatelier/storefront/internal/service"
	"github.com/obsidianatelier/storefront/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) RequestCode(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.request_code")

	var req transport.RequestCodeRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("request_code_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.RequestCode(ctx, req.Email); err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("request_code_error", "status", 400, "reason", "invalid email", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("request_code_error", "status", 500, "reason", "cannot send code", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot send code")
	}

	l.Info("request_code_success")
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHTTP) Verify(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.verify")

	var req transport.VerifyCodeRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("verify_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	result, err := h.Svc.Verify(ctx, req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("verify_error", "status", 400, "reason", "invalid body", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUnauthorized):
			l.Warn("verify_error", "status", 401, "reason", "code rejected", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired code")
		default:
			l.Error("verify_error", "status", 500, "reason", "cannot verify code", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot verify code")
		}
	}

	l.Info("verify_success", "user_id", result.User.ID, "role", result.User.Role)
	return c.JSON(http.StatusOK, map[string]any{
		"access_token": result.Token,
		"user":         result.User,
	})
}
